package interactions

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"interactions-gateway/commands"
)

type Outcome string

const (
	OutcomeAck         Outcome = "ack"
	OutcomeReply       Outcome = "reply"
	OutcomeRoutingMiss Outcome = "routing_miss"
	OutcomeFault       Outcome = "fault"
	OutcomeUnsupported Outcome = "unsupported"
)

const (
	msgCommandFailed   = "Command failed. Please try again later."
	msgUnsupported     = "Unsupported interaction type."
	msgUnknownTemplate = "Unknown command: /%s"
)

var errNilReply = errors.New("command returned no reply")

// Registry é o que o dispatcher precisa da tabela de comandos.
type Registry interface {
	Lookup(name string) (commands.Command, bool)
}

// Result é o estado terminal de uma interação autenticada. Reply nunca é nil.
type Result struct {
	Outcome Outcome
	Reply   *discordgo.InteractionResponse
	Command string
	// Err guarda a causa de OutcomeFault; não é exposta ao cliente.
	Err error
}

// Dispatcher assume que a interação já foi autenticada.
type Dispatcher struct {
	Registry Registry
}

func (d Dispatcher) Dispatch(ctx context.Context, i *discordgo.Interaction) Result {
	switch i.Type {
	case discordgo.InteractionPing:
		return Result{Outcome: OutcomeAck, Reply: commands.Pong()}

	case discordgo.InteractionApplicationCommand:
		name, err := commandName(i)
		if err != nil {
			return Result{Outcome: OutcomeFault, Reply: commands.Ephemeral(msgCommandFailed), Err: err}
		}

		cmd, ok := d.Registry.Lookup(name)
		if !ok {
			return Result{
				Outcome: OutcomeRoutingMiss,
				Reply:   commands.Ephemeral(fmt.Sprintf(msgUnknownTemplate, name)),
				Command: name,
			}
		}

		reply, err := execute(ctx, cmd, i)
		if err != nil {
			return Result{Outcome: OutcomeFault, Reply: commands.Ephemeral(msgCommandFailed), Command: name, Err: err}
		}
		return Result{Outcome: OutcomeReply, Reply: reply, Command: name}

	default:
		return Result{Outcome: OutcomeUnsupported, Reply: commands.Ephemeral(msgUnsupported)}
	}
}

// execute isola pânicos do handler: viram erro como qualquer outra falha.
func execute(ctx context.Context, cmd commands.Command, i *discordgo.Interaction) (reply *discordgo.InteractionResponse, err error) {
	defer func() {
		if p := recover(); p != nil {
			reply = nil
			err = fmt.Errorf("command %q panicked: %v", cmd.Name(), p)
		}
	}()

	reply, err = cmd.Execute(ctx, i)
	if err != nil {
		return nil, fmt.Errorf("command %q: %w", cmd.Name(), err)
	}
	if reply == nil {
		return nil, fmt.Errorf("command %q: %w", cmd.Name(), errNilReply)
	}
	return reply, nil
}

// commandName protege contra Data ausente ou de outro tipo, caso em que
// ApplicationCommandData entra em pânico.
func commandName(i *discordgo.Interaction) (name string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("read command data: %v", p)
		}
	}()
	return i.ApplicationCommandData().Name, nil
}

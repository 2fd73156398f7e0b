package interactions

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	"interactions-gateway/commands"
)

type countingRegistry struct {
	reg     *commands.Registry
	lookups int
}

func (c *countingRegistry) Lookup(name string) (commands.Command, bool) {
	c.lookups++
	return c.reg.Lookup(name)
}

func decode(t *testing.T, raw string) *discordgo.Interaction {
	t.Helper()
	var i discordgo.Interaction
	if err := json.Unmarshal([]byte(raw), &i); err != nil {
		t.Fatalf("decode interaction: %v", err)
	}
	return &i
}

func commandInteraction(t *testing.T, name string) *discordgo.Interaction {
	return decode(t, `{"id":"1","type":2,"data":{"id":"9","name":"`+name+`","type":1}}`)
}

func cmd(name string, exec commands.ExecuteFunc) commands.Command {
	return commands.Command{
		Definition: &discordgo.ApplicationCommand{Name: name},
		Execute:    exec,
	}
}

func TestDispatch_PingAcksWithoutLookup(t *testing.T) {
	reg := &countingRegistry{reg: commands.NewRegistry()}
	res := Dispatcher{Registry: reg}.Dispatch(context.Background(), decode(t, `{"id":"1","type":1}`))

	if res.Outcome != OutcomeAck || res.Reply.Type != discordgo.InteractionResponsePong {
		t.Fatalf("expected ack, got %+v", res)
	}
	if reg.lookups != 0 {
		t.Fatalf("expected no registry lookup, got %d", reg.lookups)
	}
}

func TestDispatch_KnownCommandReplies(t *testing.T) {
	reg := commands.NewRegistry(cmd("hello", func(context.Context, *discordgo.Interaction) (*discordgo.InteractionResponse, error) {
		return commands.Message("hi"), nil
	}))

	res := Dispatcher{Registry: reg}.Dispatch(context.Background(), commandInteraction(t, "hello"))
	if res.Outcome != OutcomeReply || res.Command != "hello" {
		t.Fatalf("expected reply for hello, got %+v", res)
	}
	if res.Reply.Data.Content != "hi" {
		t.Fatalf("unexpected content %q", res.Reply.Data.Content)
	}
}

func TestDispatch_UnknownCommandIsEphemeral(t *testing.T) {
	res := Dispatcher{Registry: commands.NewRegistry()}.Dispatch(context.Background(), commandInteraction(t, "missing"))

	if res.Outcome != OutcomeRoutingMiss {
		t.Fatalf("expected routing miss, got %s", res.Outcome)
	}
	if res.Reply.Data.Flags != discordgo.MessageFlagsEphemeral {
		t.Fatalf("expected ephemeral reply")
	}
	if !strings.Contains(res.Reply.Data.Content, "/missing") {
		t.Fatalf("expected content to mention /missing, got %q", res.Reply.Data.Content)
	}
}

func TestDispatch_FaultsBecomeGenericEphemeral(t *testing.T) {
	cases := map[string]commands.ExecuteFunc{
		"error": func(context.Context, *discordgo.Interaction) (*discordgo.InteractionResponse, error) {
			return nil, errors.New("database down")
		},
		"nil": func(context.Context, *discordgo.Interaction) (*discordgo.InteractionResponse, error) {
			return nil, nil
		},
		"panic": func(context.Context, *discordgo.Interaction) (*discordgo.InteractionResponse, error) {
			panic("boom")
		},
	}

	for name, exec := range cases {
		reg := commands.NewRegistry(cmd(name, exec))
		res := Dispatcher{Registry: reg}.Dispatch(context.Background(), commandInteraction(t, name))

		if res.Outcome != OutcomeFault {
			t.Fatalf("%s: expected fault, got %s", name, res.Outcome)
		}
		if res.Err == nil {
			t.Fatalf("%s: expected cause to be kept", name)
		}
		if res.Reply.Data.Content != "Command failed. Please try again later." || res.Reply.Data.Flags != discordgo.MessageFlagsEphemeral {
			t.Fatalf("%s: unexpected reply %+v", name, res.Reply.Data)
		}
		if strings.Contains(res.Reply.Data.Content, "database") || strings.Contains(res.Reply.Data.Content, "boom") {
			t.Fatalf("%s: cause leaked to the client", name)
		}
	}
}

func TestDispatch_UnsupportedType(t *testing.T) {
	res := Dispatcher{Registry: commands.NewRegistry()}.Dispatch(context.Background(), &discordgo.Interaction{Type: discordgo.InteractionModalSubmit})

	if res.Outcome != OutcomeUnsupported || res.Reply.Data.Content != "Unsupported interaction type." {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestDispatch_CommandWithoutDataFaults(t *testing.T) {
	res := Dispatcher{Registry: commands.NewRegistry()}.Dispatch(context.Background(), &discordgo.Interaction{Type: discordgo.InteractionApplicationCommand})
	if res.Outcome != OutcomeFault {
		t.Fatalf("expected fault, got %s", res.Outcome)
	}
}

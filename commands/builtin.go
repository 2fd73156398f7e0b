package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	helpColor = 0x34d9d9
	// espaço de largura zero usado como separador visual no embed
	zeroWidthSpace = "\u200b"
)

// DefaultListTimeout limita a busca do /help para a resposta caber no prazo
// de ~3s que a plataforma dá a uma interação.
const DefaultListTimeout = 2 * time.Second

// ListFunc busca os comandos registrados na plataforma.
type ListFunc func(ctx context.Context) ([]*discordgo.ApplicationCommand, error)

// Default monta a tabela de comandos do bot. list alimenta o /help; com list
// nil o /help usa as definições locais.
func Default(list ListFunc) *Registry {
	var reg *Registry
	if list == nil {
		list = func(context.Context) ([]*discordgo.ApplicationCommand, error) {
			return reg.Definitions(), nil
		}
	}
	reg = NewRegistry(
		Ping(time.Now),
		Help(list, DefaultListTimeout),
		TutorialHere(),
	)
	return reg
}

// Ping mede a latência entre a criação da interação (timestamp embutido no
// snowflake) e agora.
func Ping(now func() time.Time) Command {
	return Command{
		Definition: &discordgo.ApplicationCommand{
			Name:        "ping",
			Description: "pong's you back! (bot check)",
		},
		Execute: func(_ context.Context, i *discordgo.Interaction) (*discordgo.InteractionResponse, error) {
			createdAt, err := discordgo.SnowflakeTimestamp(i.ID)
			if err != nil {
				return nil, fmt.Errorf("parse interaction id: %w", err)
			}
			latency := now().Sub(createdAt)
			if latency < 0 {
				latency = 0
			}
			return Message(fmt.Sprintf("pong! delay: %dms", latency.Milliseconds())), nil
		},
	}
}

// Help lista os comandos registrados. timeout <= 0 desliga o prazo próprio.
func Help(list ListFunc, timeout time.Duration) Command {
	return Command{
		Definition: &discordgo.ApplicationCommand{
			Name:        "help",
			Description: "Returns a list of registered commands",
		},
		Execute: func(ctx context.Context, _ *discordgo.Interaction) (*discordgo.InteractionResponse, error) {
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			registered, err := list(ctx)
			if err != nil {
				return nil, fmt.Errorf("list commands: %w", err)
			}

			fields := make([]*discordgo.MessageEmbedField, 0, len(registered))
			for _, c := range registered {
				fields = append(fields, &discordgo.MessageEmbedField{
					Name:  "/" + c.Name,
					Value: c.Description + "\n " + zeroWidthSpace,
				})
			}

			return &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseChannelMessageWithSource,
				Data: &discordgo.InteractionResponseData{
					Embeds: []*discordgo.MessageEmbed{{
						Color:  helpColor,
						Title:  "Here are the list of registered commands \n " + zeroWidthSpace,
						Fields: fields,
					}},
				},
			}, nil
		},
	}
}

func TutorialHere() Command {
	return Command{
		Definition: &discordgo.ApplicationCommand{
			Name:        "tutorialhere",
			Description: "description of your command",
		},
		Execute: func(_ context.Context, i *discordgo.Interaction) (*discordgo.InteractionResponse, error) {
			username := ""
			if i.Member != nil && i.Member.User != nil {
				username = i.Member.User.Username
			} else if i.User != nil {
				username = i.User.Username
			}
			return Message("Hello World! " + username), nil
		},
	}
}

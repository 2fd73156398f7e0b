package discordapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bwmarrin/discordgo"
)

// Application é o recorte de /oauth2/applications/@me usado no diagnóstico.
type Application struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	VerifyKey string `json:"verify_key"`
}

func commandsPath(appID string) string {
	return fmt.Sprintf("/applications/%s/commands", url.PathEscape(appID))
}

func (c *Client) ListCommands(ctx context.Context, appID string) ([]*discordgo.ApplicationCommand, error) {
	resp, err := c.Do(ctx, http.MethodGet, commandsPath(appID), nil)
	if err != nil {
		return nil, err
	}
	var cmds []*discordgo.ApplicationCommand
	if err := resp.Decode(&cmds); err != nil {
		return nil, err
	}
	return cmds, nil
}

// BulkOverwriteCommands substitui todos os comandos globais. PUT é
// idempotente, então pode passar pelas retentativas de Do.
func (c *Client) BulkOverwriteCommands(ctx context.Context, appID string, defs []*discordgo.ApplicationCommand) ([]*discordgo.ApplicationCommand, error) {
	if defs == nil {
		defs = []*discordgo.ApplicationCommand{}
	}
	resp, err := c.Do(ctx, http.MethodPut, commandsPath(appID), defs)
	if err != nil {
		return nil, err
	}
	var out []*discordgo.ApplicationCommand
	if len(resp.Body) == 0 {
		return out, nil
	}
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CurrentApplication(ctx context.Context) (*Application, error) {
	resp, err := c.Do(ctx, http.MethodGet, "/oauth2/applications/@me", nil)
	if err != nil {
		return nil, err
	}
	var app Application
	if err := resp.Decode(&app); err != nil {
		return nil, err
	}
	return &app, nil
}

// Package admin expõe os endpoints administrativos: registro dos slash
// commands na plataforma e o diagnóstico de configuração.
package admin

import (
	"context"
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"interactions-gateway/auth"
	"interactions-gateway/commands"
	"interactions-gateway/discordapi"
	"interactions-gateway/httpx"
	"interactions-gateway/observability"
)

type CommandWriter interface {
	BulkOverwriteCommands(ctx context.Context, appID string, defs []*discordgo.ApplicationCommand) ([]*discordgo.ApplicationCommand, error)
}

// RegisterHandler publica as definições do registry (PUT bulk overwrite).
// A admissão por rate limit fica no middleware que envolve o handler.
type RegisterHandler struct {
	Registry      *commands.Registry
	API           CommandWriter
	ApplicationID string
	Key           string
	Logger        *zap.Logger
}

type registerResponse struct {
	Error *string `json:"error"`
}

type registerFailure struct {
	Error         string `json:"error"`
	DiscordStatus *int   `json:"discordStatus"`
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqLog := observability.NewRequestLogger(h.Logger, "register-commands", r)
	reqLog.Event("request_received")

	if !auth.Authorized(r.Header.Get("Authorization"), h.Key) {
		reqLog.Warn("unauthorized", zap.Int("status", http.StatusUnauthorized))
		httpx.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	defs := h.Registry.Definitions()
	if _, err := h.API.BulkOverwriteCommands(r.Context(), h.ApplicationID, defs); err != nil {
		status := upstreamStatus(err)
		reqLog.Error("register_failed", err, zap.Int("status", http.StatusInternalServerError), zap.Intp("discordStatus", status))

		httpx.WriteJSON(w, http.StatusInternalServerError, registerFailure{Error: "Error occurred", DiscordStatus: status})
		return
	}

	reqLog.Event("registered", zap.Int("commandCount", len(defs)), zap.Int("status", http.StatusOK))
	httpx.WriteJSON(w, http.StatusOK, registerResponse{})
}

// upstreamStatus devolve o status da plataforma quando houve resposta.
func upstreamStatus(err error) *int {
	var upErr *discordapi.UpstreamError
	if errors.As(err, &upErr) {
		s := upErr.Status
		return &s
	}
	return nil
}

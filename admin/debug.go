package admin

import (
	"context"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"interactions-gateway/auth"
	"interactions-gateway/commands"
	"interactions-gateway/discordapi"
	"interactions-gateway/httpx"
	"interactions-gateway/middleware/ratelimit/domain"
	"interactions-gateway/observability"
)

type DiscordChecker interface {
	ListCommands(ctx context.Context, appID string) ([]*discordgo.ApplicationCommand, error)
	CurrentApplication(ctx context.Context) (*discordapi.Application, error)
}

type StatsSnapshotter interface {
	Snapshot() domain.StatsSnapshot
}

// Setting é uma variável de ambiente exibida (mascarada) no diagnóstico.
type Setting struct {
	Name  string
	Value string
}

// DebugHandler responde 404 em produção e exige o mesmo bearer do registro.
type DebugHandler struct {
	Production    bool
	Key           string
	Settings      []Setting
	ApplicationID string
	PublicKey     string
	Registry      *commands.Registry
	API           DiscordChecker
	Stats         StatsSnapshotter
	Logger        *zap.Logger
	Now           func() time.Time
}

type commandsCheck struct {
	OK                     bool    `json:"ok"`
	Status                 *int    `json:"status"`
	RegisteredCommandCount *int    `json:"registeredCommandCount"`
	Error                  *string `json:"error"`
}

type applicationCheck struct {
	OK               bool    `json:"ok"`
	Status           *int    `json:"status"`
	AppIDFromDiscord *string `json:"appIdFromDiscord"`
	VerifyKeyMatches *bool   `json:"verifyKeyMatches"`
	Error            *string `json:"error"`
}

type debugResponse struct {
	OK      bool `json:"ok"`
	Runtime struct {
		Go        string `json:"go"`
		Timestamp string `json:"timestamp"`
	} `json:"runtime"`
	Env               map[string]bool       `json:"env"`
	Masked            map[string]*string    `json:"masked"`
	LocalCommandNames []string              `json:"localCommandNames"`
	DiscordAPICheck   commandsCheck         `json:"discordApiCheck"`
	ApplicationCheck  applicationCheck      `json:"applicationCheck"`
	RateLimit         *domain.StatsSnapshot `json:"rateLimit,omitempty"`
}

func (h *DebugHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqLog := observability.NewRequestLogger(h.Logger, "debug-endpoint", r)
	reqLog.Event("request_received")

	if h.Production {
		reqLog.Warn("blocked_in_production", zap.Int("status", http.StatusNotFound))
		httpx.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		return
	}

	if !auth.Authorized(r.Header.Get("Authorization"), h.Key) {
		reqLog.Warn("unauthorized", zap.Int("status", http.StatusUnauthorized))
		httpx.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	var resp debugResponse
	resp.OK = true
	resp.Runtime.Go = runtime.Version()
	resp.Runtime.Timestamp = now().UTC().Format(time.RFC3339)
	resp.Env = make(map[string]bool, len(h.Settings))
	resp.Masked = make(map[string]*string, len(h.Settings))
	for _, s := range h.Settings {
		resp.Env[s.Name] = s.Value != ""
		resp.Masked[s.Name] = Mask(s.Value)
	}
	resp.LocalCommandNames = h.Registry.Names()
	if resp.LocalCommandNames == nil {
		resp.LocalCommandNames = []string{}
	}

	resp.DiscordAPICheck = h.checkCommands(r.Context())
	if !resp.DiscordAPICheck.OK {
		reqLog.Warn("commands_check_failed", zap.Intp("status", resp.DiscordAPICheck.Status))
	}
	resp.ApplicationCheck = h.checkApplication(r.Context())
	if !resp.ApplicationCheck.OK {
		reqLog.Warn("application_check_failed", zap.Intp("status", resp.ApplicationCheck.Status))
	}

	if h.Stats != nil {
		snap := h.Stats.Snapshot()
		resp.RateLimit = &snap
	}

	reqLog.Event("success",
		zap.Bool("appCheckOk", resp.ApplicationCheck.OK),
		zap.Bool("commandCheckOk", resp.DiscordAPICheck.OK),
		zap.Int("status", http.StatusOK),
	)
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *DebugHandler) checkCommands(ctx context.Context) commandsCheck {
	cmds, err := h.API.ListCommands(ctx, h.ApplicationID)
	if err != nil {
		msg := err.Error()
		return commandsCheck{Status: upstreamStatus(err), Error: &msg}
	}
	status, count := http.StatusOK, len(cmds)
	return commandsCheck{OK: true, Status: &status, RegisteredCommandCount: &count}
}

func (h *DebugHandler) checkApplication(ctx context.Context) applicationCheck {
	app, err := h.API.CurrentApplication(ctx)
	if err != nil {
		msg := err.Error()
		return applicationCheck{Status: upstreamStatus(err), Error: &msg}
	}

	status := http.StatusOK
	check := applicationCheck{OK: true, Status: &status}
	if app.ID != "" {
		check.AppIDFromDiscord = &app.ID
	}
	if app.VerifyKey != "" {
		matches := strings.EqualFold(app.VerifyKey, h.PublicKey)
		check.VerifyKeyMatches = &matches
	}
	return check
}

// Mask: nil quando vazio, só asteriscos até 8 caracteres, senão os 4
// primeiros e os 4 últimos.
func Mask(value string) *string {
	if value == "" {
		return nil
	}
	var masked string
	if len(value) <= 8 {
		masked = strings.Repeat("*", len(value))
	} else {
		masked = value[:4] + "..." + value[len(value)-4:]
	}
	return &masked
}

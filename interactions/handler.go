package interactions

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"interactions-gateway/httpx"
	"interactions-gateway/observability"
)

const (
	// MaxBodyBytes limita o corpo lido antes da verificação.
	MaxBodyBytes = 1 << 20

	msgInvalidRequest = "Invalid request"
	routeName         = "interactions"
)

var ErrInvalidRequest = errors.New("invalid request")

// Handler atende o webhook: exatamente uma resposta por request, 401 sem
// envelope para tudo que não passar na autenticação.
type Handler struct {
	Verifier   *Verifier
	Dispatcher Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqLog := observability.NewRequestLogger(h.Logger, routeName, r)

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		httpx.WriteText(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
		return
	}

	interaction, err := h.authenticate(w, r)
	if err != nil {
		reqLog.Warn("request_rejected", zap.Int("status", http.StatusUnauthorized), zap.NamedError("reason", err))
		h.Metrics.ObserveInteraction("unauthorized")
		httpx.WriteText(w, http.StatusUnauthorized, msgInvalidRequest)
		return
	}

	res := h.Dispatcher.Dispatch(r.Context(), interaction)

	fields := []zap.Field{
		zap.String("outcome", string(res.Outcome)),
		zap.Uint8("interactionType", uint8(interaction.Type)),
	}
	if res.Command != "" {
		fields = append(fields, zap.String("command", res.Command))
	}
	if res.Outcome == OutcomeFault {
		reqLog.Error("interaction_failed", res.Err, fields...)
	} else {
		reqLog.Event("interaction_handled", fields...)
	}
	h.Metrics.ObserveInteraction(string(res.Outcome))

	httpx.WriteJSON(w, http.StatusOK, res.Reply)
}

// authenticate lê o corpo cru, confere a assinatura e só então decodifica.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (*discordgo.Interaction, error) {
	signature := r.Header.Get(HeaderSignature)
	timestamp := r.Header.Get(HeaderTimestamp)
	if signature == "" || timestamp == "" {
		return nil, errors.Join(ErrInvalidRequest, errors.New("missing signature headers"))
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return nil, errors.Join(ErrInvalidRequest, err)
	}

	if !h.Verifier.Verify(body, signature, timestamp) {
		return nil, errors.Join(ErrInvalidRequest, errors.New("signature mismatch"))
	}

	var interaction discordgo.Interaction
	if err := json.Unmarshal(body, &interaction); err != nil {
		return nil, errors.Join(ErrInvalidRequest, err)
	}
	return &interaction, nil
}

// Package discordapi é o cliente REST de saída: timeout por tentativa,
// retentativas limitadas com backoff e erros tipados ao esgotar.
package discordapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"interactions-gateway/observability"
)

const (
	DefaultBaseURL        = "https://discord.com/api/v10"
	DefaultAttemptTimeout = 5 * time.Second
	DefaultMaxRetries     = 2
	DefaultBaseDelay      = 250 * time.Millisecond
	// limite global da plataforma por bot
	DefaultRequestsPerSecond = 50

	maxResponseBytes = 4 << 20
	userAgent        = "DiscordBot (interactions-gateway, 1.0)"
)

// Doer é satisfeito por *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode interpreta o corpo como JSON.
func (r Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Attempt descreve uma tentativa individual; só é logada e contada.
type Attempt struct {
	Method  string
	Path    string
	Number  int
	Elapsed time.Duration
	Status  int
	Err     error
}

type Client struct {
	baseURL        string
	token          string
	http           Doer
	attemptTimeout time.Duration
	maxRetries     int
	baseDelay      time.Duration
	pacer          *rate.Limiter
	logger         *zap.Logger
	metrics        *observability.Metrics
	onAttempt      func(Attempt)
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.http = d
		}
	}
}

func WithAttemptTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.attemptTimeout = d
		}
	}
}

// WithMaxRetries: retentativas além da primeira tentativa.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.baseDelay = d
		}
	}
}

// WithRequestsPerSecond controla o pacer de saída. rps <= 0 desliga.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.pacer = rate.NewLimiter(rate.Inf, 0)
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.pacer = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithAttemptHook recebe cada tentativa concluída. Opcional.
func WithAttemptHook(fn func(Attempt)) Option {
	return func(c *Client) { c.onAttempt = fn }
}

func New(botToken string, opts ...Option) *Client {
	c := &Client{
		baseURL:        DefaultBaseURL,
		token:          botToken,
		http:           &http.Client{},
		attemptTimeout: DefaultAttemptTimeout,
		maxRetries:     DefaultMaxRetries,
		baseDelay:      DefaultBaseDelay,
		logger:         zap.NewNop(),
	}
	WithRequestsPerSecond(DefaultRequestsPerSecond)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do executa method em path com retentativas. Só use com verbos seguros para
// repetir: leituras e substituições idempotentes (GET, PUT, DELETE).
//
// Retenta 429, 500, 502, 503, 504, falhas de transporte e timeout da
// tentativa. Outros status de erro falham na hora com *UpstreamError.
// Ao esgotar: *UpstreamError com o último status se alguma resposta chegou,
// senão *NetworkError.
func (c *Client) Do(ctx context.Context, method, path string, body any) (Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return Response{}, err
	}

	var (
		attempts   int
		lastStatus int
	)
	bo := &linearBackOff{base: c.baseDelay}

	op := func() (Response, error) {
		attempts++

		if err := c.pacer.Wait(ctx); err != nil {
			return Response{}, backoff.Permanent(&NetworkError{Method: method, Path: path, Attempts: attempts, Err: err})
		}

		start := time.Now()
		resp, err := c.attempt(ctx, method, path, payload)
		c.record(Attempt{Method: method, Path: path, Number: attempts, Elapsed: time.Since(start), Status: resp.Status, Err: err})

		if err != nil {
			if ctx.Err() != nil {
				return Response{}, backoff.Permanent(&NetworkError{Method: method, Path: path, Attempts: attempts, Err: err})
			}
			return Response{}, &NetworkError{Method: method, Path: path, Attempts: attempts, Err: err}
		}

		lastStatus = resp.Status
		if resp.Status >= 200 && resp.Status < 300 {
			return resp, nil
		}

		upErr := &UpstreamError{
			Status:   resp.Status,
			Method:   method,
			Path:     path,
			Message:  errorMessage(resp.Body),
			Attempts: attempts,
		}
		if !retryable(resp.Status) {
			return Response{}, backoff.Permanent(upErr)
		}
		bo.hint = parseRetryAfter(resp.Header.Get("Retry-After"))
		return Response{}, upErr
	}

	resp, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(c.maxRetries+1)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Warn("discord_api_retry",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("attempt", attempts),
				zap.Duration("backoff", next),
				zap.Error(err),
			)
		}),
	)
	if err == nil {
		return resp, nil
	}
	return Response{}, c.finalError(err, method, path, attempts, lastStatus)
}

func (c *Client) finalError(err error, method, path string, attempts, lastStatus int) error {
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Unwrap()
	}

	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		upErr.Attempts = attempts
		return upErr
	}
	if lastStatus != 0 {
		return &UpstreamError{
			Status:   lastStatus,
			Method:   method,
			Path:     path,
			Message:  "retries exhausted: " + err.Error(),
			Attempts: attempts,
		}
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		netErr.Attempts = attempts
		return netErr
	}
	return &NetworkError{Method: method, Path: path, Attempts: attempts, Err: err}
}

// attempt tem o próprio timeout; o corpo é lido antes do cancel para que o
// prazo não vaze para a tentativa seguinte.
func (c *Client) attempt(ctx context.Context, method, path string, payload []byte) (Response, error) {
	actx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(actx, method, c.baseURL+path, body)
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}
	return Response{Status: res.StatusCode, Header: res.Header, Body: raw}, nil
}

func (c *Client) record(a Attempt) {
	c.metrics.ObserveUpstreamAttempt(a.Method, a.Status, a.Elapsed)
	c.logger.Debug("discord_api_attempt",
		zap.String("method", a.Method),
		zap.String("path", a.Path),
		zap.Int("attempt", a.Number),
		zap.Int("status", a.Status),
		zap.Int64("durationMs", a.Elapsed.Milliseconds()),
		zap.Error(a.Err),
	)
	if c.onAttempt != nil {
		c.onAttempt(a)
	}
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return raw, nil
}

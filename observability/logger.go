// Package observability concentra logging estruturado (zap) e métricas
// (Prometheus) do gateway.
package observability

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"interactions-gateway/httpx"
)

// NewLogger cria o logger JSON de produção, ou o console colorido quando
// development=true.
func NewLogger(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// RequestLogger emite uma linha por evento de uma request, sempre com
// route, requestId, ip e durationMs desde a chegada.
type RequestLogger struct {
	log       *zap.Logger
	startedAt time.Time

	IP        string
	RequestID string
}

func NewRequestLogger(base *zap.Logger, route string, r *http.Request) *RequestLogger {
	if base == nil {
		base = zap.NewNop()
	}
	ip := httpx.ClientIP(r)
	requestID := httpx.RequestID(r)
	return &RequestLogger{
		log: base.With(
			zap.String("route", route),
			zap.String("requestId", requestID),
			zap.String("ip", ip),
		),
		startedAt: time.Now(),
		IP:        ip,
		RequestID: requestID,
	}
}

func (l *RequestLogger) Elapsed() time.Duration { return time.Since(l.startedAt) }

func (l *RequestLogger) Event(event string, fields ...zap.Field) {
	l.log.Info(event, l.fields(event, fields)...)
}

func (l *RequestLogger) Warn(event string, fields ...zap.Field) {
	l.log.Warn(event, l.fields(event, fields)...)
}

func (l *RequestLogger) Error(event string, err error, fields ...zap.Field) {
	l.log.Error(event, l.fields(event, append(fields, zap.Error(err)))...)
}

func (l *RequestLogger) fields(event string, fields []zap.Field) []zap.Field {
	return append(fields,
		zap.String("event", event),
		zap.Int64("durationMs", l.Elapsed().Milliseconds()),
	)
}

package logging

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const (
	gameIDKey        contextKey = "game_id"
	correlationIDKey contextKey = "correlation_id"
	requestIDKey     contextKey = "request_id"
)

// contextFields lists the keys WithContext copies into log entries.
var contextFields = []contextKey{gameIDKey, correlationIDKey, requestIDKey}

// ContextWithGameID tags every entry logged through WithContext with the game.
func ContextWithGameID(ctx context.Context, gameID string) context.Context {
	return context.WithValue(ctx, gameIDKey, gameID)
}

func GameIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, gameIDKey)
}

func ContextWithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

func CorrelationIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, correlationIDKey)
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, requestIDKey)
}

func GenerateGameID() string        { return generateID("game") }
func GenerateCorrelationID() string { return generateID("corr") }
func GenerateRequestID() string     { return generateID("req") }

func generateID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func stringValue(ctx context.Context, key contextKey) (string, bool) {
	id, ok := ctx.Value(key).(string)
	return id, ok
}

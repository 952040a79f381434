package services

import "context"

type contextKey string

const (
	queryIndexKey contextKey = "query_index"
	providerKey   contextKey = "provider"
	stageKey      contextKey = "stage"
	requestIDKey  contextKey = "request_id"
)

// WithQueryIndex annotates context with the 0-based position of the query being resolved.
func WithQueryIndex(ctx context.Context, index int) context.Context {
	if index < 0 {
		return ctx
	}
	return context.WithValue(ctx, queryIndexKey, index)
}

// QueryIndexFromContext extracts the query position if present.
func QueryIndexFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(queryIndexKey).(int)
	return v, ok
}

// WithProvider annotates context with the provider source tag handling a lookup.
func WithProvider(ctx context.Context, provider string) context.Context {
	if provider == "" {
		return ctx
	}
	return context.WithValue(ctx, providerKey, provider)
}

// ProviderFromContext returns the provider source tag if present.
func ProviderFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(providerKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name (extract, resolve, render).
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

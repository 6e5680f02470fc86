package audit

import "context"

type contextKey string

const originKey contextKey = "audit_origin"

// Origin describes where a request came from
type Origin struct {
	IPAddress string
	UserAgent string
	RequestID string
}

// WithOrigin stores the request origin in ctx
func WithOrigin(ctx context.Context, o Origin) context.Context {
	if o == (Origin{}) {
		return ctx
	}
	return context.WithValue(ctx, originKey, o)
}

// OriginFromContext returns the request origin stored in ctx, if any
func OriginFromContext(ctx context.Context) Origin {
	o, _ := ctx.Value(originKey).(Origin)
	return o
}

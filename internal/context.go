package internal

import (
	"context"
	"time"
)

// Session is the authenticated identity attached to a request after the
// bearer credential has been validated.
type Session struct {
	UserID string
	Name   string
	Email  string
	Role   string
}

func (s *Session) IsAdmin() bool {
	return s.Role == "Admin"
}

type ctxKey string

const contextSessionKey ctxKey = "session"

func SessionFromContext(ctx context.Context) (*Session, bool) {
	if ctx == nil {
		return nil, false
	}
	s, ok := ctx.Value(contextSessionKey).(*Session)
	return s, ok
}

func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextSessionKey, s)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}

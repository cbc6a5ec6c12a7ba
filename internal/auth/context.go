// Package auth carries the acting user's display name through a request.
// It is an attribution gate for logged_by, not authentication.
package auth

import (
	"context"
	"strings"
)

type contextKey struct{}

// WithUser returns ctx carrying name. Blank names are ignored.
func WithUser(ctx context.Context, name string) context.Context {
	name = strings.TrimSpace(name)
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, name)
}

func FromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(contextKey{}).(string)
	return name, ok
}

// UserName returns the acting user, or "" when none was set.
func UserName(ctx context.Context) string {
	name, _ := FromContext(ctx)
	return name
}

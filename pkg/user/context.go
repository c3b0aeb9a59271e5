package user

import (
	"context"
)

type contextKey string

const scopeKey contextKey = "userScope"

// WithScope attaches a user scope to the context.
func WithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, scopeKey, scope)
}

// ScopeFrom retrieves the user scope from the context. A context without a
// scope resolves to the anonymous on-device identity rather than an error:
// the tracker is usable without signing in.
func ScopeFrom(ctx context.Context) Scope {
	scope, ok := ctx.Value(scopeKey).(Scope)
	if !ok {
		return AnonymousLocal()
	}
	return scope
}

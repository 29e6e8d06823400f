// Package reqctx carries per-request authentication state from the server
// middleware to the views.
package reqctx

import (
	"context"

	"github.com/omriasta/core/internal/core/domain"
)

type contextKey string

const (
	authenticatedKey contextKey = "hub.authenticated"
	userKey          contextKey = "hub.user"
	realIPKey        contextKey = "hub.real_ip"
	localKey         contextKey = "hub.local"
)

// WithAuthenticated records whether the request was authenticated.
func WithAuthenticated(ctx context.Context, authenticated bool) context.Context {
	return context.WithValue(ctx, authenticatedKey, authenticated)
}

// Authenticated reports whether the request was authenticated.
// Requests nobody marked are not authenticated.
func Authenticated(ctx context.Context) bool {
	v, _ := ctx.Value(authenticatedKey).(bool)
	return v
}

// WithUser attaches the authenticated user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// User returns the authenticated user, or nil.
func User(ctx context.Context) *domain.User {
	u, _ := ctx.Value(userKey).(*domain.User)
	return u
}

// WithRealIP records the resolved client address.
func WithRealIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, realIPKey, ip)
}

// RealIP returns the resolved client address, or "" when unknown.
func RealIP(ctx context.Context) string {
	ip, _ := ctx.Value(realIPKey).(string)
	return ip
}

// WithLocal marks a request that arrived on the local socket.
func WithLocal(ctx context.Context) context.Context {
	return context.WithValue(ctx, localKey, true)
}

// Local reports whether the request arrived on the local socket.
func Local(ctx context.Context) bool {
	v, _ := ctx.Value(localKey).(bool)
	return v
}

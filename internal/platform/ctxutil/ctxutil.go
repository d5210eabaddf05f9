// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ctxutil carries per-request values through [context.Context]: the
correlation id, the request logger and the authenticated caller.

Keys are unexported struct types, so no other package can read or shadow
them except through these helpers.
*/
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/panelkit/internal/platform/sec"
)

type (
	requestIDKey struct{}
	loggerKey    struct{}
	userKey      struct{}
)

// SystemActor names changes made without an authenticated caller
// (scheduled cleanup, the operator CLI).
const SystemActor = "system"

// # Request Tracing

// WithRequestID attaches the X-Request-ID correlation value.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID returns the correlation value, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// # Structured Logging

// WithLogger attaches the per-request logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger returns the per-request logger, falling back to [slog.Default].
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// # Identity

// WithAuthUser attaches the authenticated caller.
func WithAuthUser(ctx context.Context, user *sec.AuthClaims) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetAuthUser returns the authenticated caller, or nil for anonymous requests.
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, _ := ctx.Value(userKey{}).(*sec.AuthClaims)
	return claims
}

// Actor returns the caller's user id for audit columns, or [SystemActor].
func Actor(ctx context.Context) string {
	if claims := GetAuthUser(ctx); claims != nil && claims.UserID != "" {
		return claims.UserID
	}
	return SystemActor
}

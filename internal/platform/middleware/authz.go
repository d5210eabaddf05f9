// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/taibuivan/panelkit/internal/platform/apperr"
	"github.com/taibuivan/panelkit/internal/platform/ctxutil"
	"github.com/taibuivan/panelkit/internal/platform/respond"
	"github.com/taibuivan/panelkit/internal/platform/sec"
)

// TokenVerifier turns a bearer token into claims. [sec.TokenService]
// satisfies it; tests pass fakes.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// callerHolder lets AccessLog, which runs before Authenticate, log the
// caller resolved further down the chain.
type callerHolder struct {
	userID string
}

type callerHolderKey struct{}

func withCallerHolder(ctx context.Context, holder *callerHolder) context.Context {
	return context.WithValue(ctx, callerHolderKey{}, holder)
}

// Authenticate verifies an optional bearer token and stores its claims.
//
// Requests without an Authorization header pass through anonymously; a
// malformed or invalid token is rejected with 401 rather than downgraded.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			header := request.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(writer, request)
				return
			}

			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			claims, err := verifier.VerifyToken(strings.TrimSpace(token))
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			if holder, ok := request.Context().Value(callerHolderKey{}).(*callerHolder); ok {
				holder.userID = claims.UserID
			}
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithAuthUser(request.Context(), claims)))
		})
	}
}

// RequireAuth rejects anonymous requests with 401. Mount it after
// [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/panelkit/internal/platform/ctxutil"
	"github.com/taibuivan/panelkit/internal/platform/sec"
)

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetRequestID(ctx))
	assert.Equal(t, "req-1", ctxutil.GetRequestID(ctxutil.WithRequestID(ctx, "req-1")))
}

func TestLogger(t *testing.T) {
	ctx := context.Background()
	assert.Same(t, slog.Default(), ctxutil.GetLogger(ctx))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Same(t, logger, ctxutil.GetLogger(ctxutil.WithLogger(ctx, logger)))

	// A nil logger stored by mistake still yields a usable one.
	assert.Same(t, slog.Default(), ctxutil.GetLogger(ctxutil.WithLogger(ctx, nil)))
}

func TestActor(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, ctxutil.GetAuthUser(ctx))
	assert.Equal(t, ctxutil.SystemActor, ctxutil.Actor(ctx))

	claims := &sec.AuthClaims{UserID: "u-7", Role: string(sec.RoleEditor)}
	ctx = ctxutil.WithAuthUser(ctx, claims)
	assert.Same(t, claims, ctxutil.GetAuthUser(ctx))
	assert.Equal(t, "u-7", ctxutil.Actor(ctx))
}

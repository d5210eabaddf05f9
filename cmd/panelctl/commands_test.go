// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/panelkit/internal/platform/config"
	"github.com/taibuivan/panelkit/internal/platform/constants"
	"github.com/taibuivan/panelkit/internal/platform/sec"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DatabaseDriver: config.DriverSQLite,
		DatabaseURL:    filepath.Join(t.TempDir(), "panel.db"),
		Panel: config.PanelConfig{
			DefaultPerPage:     25,
			MaxPerPage:         100,
			CacheTTL:           time.Minute,
			PolicyFallback:     "deny",
			MaxVersions:        10,
			TrashRetentionDays: 30,
			ExportMaxRecords:   1000,
		},
	}
}

func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	root := newRoot(func() (*config.Config, error) { return cfg, nil }, logger, &out)
	err := root.Run(context.Background(), append([]string{"panelctl"}, args...))
	return out.String(), err
}

func TestMigrateAndListResources(t *testing.T) {
	cfg := testConfig(t)

	out, err := run(t, cfg, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")

	out, err = run(t, cfg, "resources")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "products")
	assert.Contains(t, lines[1], "trash,versions")
	assert.Contains(t, lines[2], "Blog Posts")
	assert.Contains(t, lines[3], "users")
}

func TestRollback(t *testing.T) {
	cfg := testConfig(t)
	_, err := run(t, cfg, "migrate")
	require.NoError(t, err)

	out, err := run(t, cfg, "rollback", "--steps", "2")
	require.NoError(t, err)
	assert.Equal(t, "2 migrations reverted\n", out)

	_, err = run(t, cfg, "rollback", "--steps", "0")
	assert.ErrorContains(t, err, "at least one step")
}

func TestMaintenanceCommands(t *testing.T) {
	cfg := testConfig(t)
	_, err := run(t, cfg, "migrate")
	require.NoError(t, err)

	out, err := run(t, cfg, "trash", "cleanup")
	require.NoError(t, err)
	assert.Contains(t, out, "products: 0 permanently deleted")
	assert.Contains(t, out, "blog-posts: 0 permanently deleted")
	assert.NotContains(t, out, "users:")

	out, err = run(t, cfg, "versions", "prune", "--resource", "products")
	require.NoError(t, err)
	assert.Equal(t, "products: 0 versions pruned\n", out)

	out, err = run(t, cfg, "cache", "clear", "-r", "products")
	require.NoError(t, err)
	assert.Contains(t, out, "cache cleared for 1 resources")

	_, err = run(t, cfg, "trash", "cleanup", "--resource", "widgets")
	assert.ErrorContains(t, err, `unknown resource "widgets"`)
}

func TestCreateUser(t *testing.T) {
	cfg := testConfig(t)
	_, err := run(t, cfg, "migrate")
	require.NoError(t, err)

	out, err := run(t, cfg, "users", "create", "--name", "Root", "--email", "root@example.com", "--password", "s3cret-pass", "--role", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "created user ")

	_, err = run(t, cfg, "users", "create", "--name", "Bad", "--email", "not-an-email", "--password", "s3cret-pass")
	assert.Error(t, err)
}

func writeKeys(t *testing.T) (privatePath, publicPath string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privatePath = filepath.Join(dir, "private.pem")
	publicPath = filepath.Join(dir, "public.pem")

	privatePEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	require.NoError(t, os.WriteFile(privatePath, privatePEM, 0o600))

	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER})
	require.NoError(t, os.WriteFile(publicPath, publicPEM, 0o600))
	return privatePath, publicPath
}

func TestIssueToken(t *testing.T) {
	cfg := testConfig(t)
	cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath = writeKeys(t)

	out, err := run(t, cfg, "token", "issue", "--user", "42", "--role", "editor", "--ttl", "10m")
	require.NoError(t, err)

	tokens, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	require.NoError(t, err)
	claims, err := tokens.VerifyToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, sec.RoleEditor, claims.UserRole())

	_, err = run(t, cfg, "token", "issue", "--user", "42", "--role", "root")
	assert.ErrorContains(t, err, `unknown role "root"`)
}

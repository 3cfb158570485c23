package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/esther/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	t.Setenv("PASSWORD", "")
	return config.Config{
		DBPath:   filepath.Join(t.TempDir(), "data", "esther.db"),
		Location: time.UTC,
	}
}

func runManage(t *testing.T, cfg config.Config, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := run(context.Background(), cfg, logger, args, strings.NewReader(stdin), &out)
	return out.String(), err
}

func TestDatabaseCreate(t *testing.T) {
	cfg := testConfig(t)

	out, err := runManage(t, cfg, "", "database", "create")
	require.NoError(t, err)
	assert.Contains(t, out, "database ready")

	// Running it again is harmless.
	_, err = runManage(t, cfg, "", "database", "create")
	assert.NoError(t, err)
}

func TestAddUserAndList(t *testing.T) {
	cfg := testConfig(t)

	out, err := runManage(t, cfg, "hunter22\n", "adduser", "-email", "Esther@Example.com", "-short-name", "Esther", "-admin")
	require.NoError(t, err)
	assert.Contains(t, out, "<esther@example.com>")

	out, err = runManage(t, cfg, "", "users")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "esther@example.com")
	assert.Contains(t, lines[1], "true")
}

func TestAddUser_Invalid(t *testing.T) {
	cfg := testConfig(t)

	_, err := runManage(t, cfg, "", "adduser", "-email", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email: Invalid email address.")
	assert.Contains(t, err.Error(), "password: This field is required.")
	assert.Contains(t, err.Error(), "short_name: This field is required.")
}

func TestAddUser_Duplicate(t *testing.T) {
	cfg := testConfig(t)

	_, err := runManage(t, cfg, "pw\n", "adduser", "-email", "esther@example.com", "-short-name", "E")
	require.NoError(t, err)

	_, err = runManage(t, cfg, "pw\n", "adduser", "-email", "ESTHER@example.com", "-short-name", "E")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email:")
}

func TestUsage(t *testing.T) {
	cfg := testConfig(t)

	for _, args := range [][]string{nil, {"frobnicate"}, {"database"}} {
		_, err := runManage(t, cfg, "", args...)
		assert.Error(t, err)
	}
}

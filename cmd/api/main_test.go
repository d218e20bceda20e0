package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, k := range []string{"REDIS_URL", "REDIS_ADDR"} {
		t.Setenv(k, "")
	}
	for k, v := range env {
		t.Setenv(k, v)
	}
}

func TestRun_ConfigError(t *testing.T) {
	setEnv(t, map[string]string{"DB_URI": ""})

	err := run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_URI")
}

func TestRun_UnsupportedStore(t *testing.T) {
	setEnv(t, map[string]string{"DB_URI": "mysql://localhost/tasks", "APP_ENV": "test"})

	err := run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app init")
}

func TestRun_ServesUntilCancelled(t *testing.T) {
	setEnv(t, map[string]string{
		"DB_URI":    "sqlite://:memory:",
		"APP_ENV":   "test",
		"HTTP_PORT": "0",
		"LOG_LEVEL": "error",
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

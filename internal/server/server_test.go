package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"repricer/internal/config"
)

func TestNew_AppliesConfig(t *testing.T) {
	srv := New(config.ServerConfig{Port: 9090, WriteTimeout: 2 * time.Minute}, http.NotFoundHandler(), zap.NewNop())

	assert.Equal(t, ":9090", srv.httpServer.Addr)
	assert.Equal(t, 2*time.Minute, srv.httpServer.WriteTimeout)
}

func TestNew_DefaultWriteTimeout(t *testing.T) {
	srv := New(config.ServerConfig{Port: 9090}, http.NotFoundHandler(), zap.NewNop())

	assert.Equal(t, 10*time.Second, srv.httpServer.WriteTimeout)
}

func TestServer_StartAndShutdown(t *testing.T) {
	srv := New(config.ServerConfig{Port: 0}, http.NotFoundHandler(), zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	// Shutdown may race Start; either way Start must return nil.
	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

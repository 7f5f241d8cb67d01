package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	netserver "github.com/pwledger/server/internal/server"
)

func TestHTTPServer_Address(t *testing.T) {
	srv := NewHTTPServer(http.NewServeMux(), "127.0.0.1:8080")
	assert.Equal(t, "127.0.0.1:8080", srv.Address())
}

func TestHTTPServer_StartAndStop(t *testing.T) {
	srv := NewHTTPServer(http.NewServeMux(), "127.0.0.1:0")

	done := make(chan error, 1)
	go func() {
		done <- srv.Start(netserver.NewPlainListener())
	}()

	// Give Serve a moment to pick up the listener before shutting down.
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("server did not stop")
	}
}

func TestHTTPServer_StartFailsOnBadAddress(t *testing.T) {
	srv := NewHTTPServer(http.NewServeMux(), "256.256.256.256:99999")

	err := srv.Start(netserver.NewPlainListener())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}

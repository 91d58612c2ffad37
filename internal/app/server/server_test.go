package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slotbook-service/internal/app/config"
	"slotbook-service/internal/app/services/shared/transport"
	"slotbook-service/internal/pkg/constvars"
	"slotbook-service/internal/pkg/exceptions"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func memoryConfig() *config.InternalConfig {
	return &config.InternalConfig{
		App: config.App{
			Port:                     "127.0.0.1:0",
			EndpointPrefix:           "/api/v1",
			ShutdownTimeoutInSeconds: 2,
		},
		Engine: config.AppEngine{
			ConfirmationTimeout: time.Second,
			SubscriberQueueSize: 4,
			SuggestionLimit:     3,
		},
		Transport: config.AppTransport{Kind: constvars.TransportMemory},
	}
}

func TestNewTransport(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		d, err := newTransport(&config.Bootstrap{Logger: zap.NewNop(), InternalConfig: memoryConfig()})
		require.NoError(t, err)
		assert.IsType(t, &transport.Memory{}, d)
	})

	t.Run("Unsupported kind", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.Transport.Kind = "carrier-pigeon"
		_, err := newTransport(&config.Bootstrap{Logger: zap.NewNop(), InternalConfig: cfg})
		var customErr *exceptions.CustomError
		require.ErrorAs(t, err, &customErr)
		assert.Contains(t, customErr.DevMessage, "carrier-pigeon")
	})
}

func TestNewMemoryApp(t *testing.T) {
	app, err := New(context.Background(), &config.DriverConfig{}, memoryConfig(), zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, app.Bootstrap.Redis)
	assert.Nil(t, app.Bootstrap.Postgres)
	assert.Nil(t, app.worker)

	rr := httptest.NewRecorder()
	app.Bootstrap.Router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	app.Bootstrap.Router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/pools", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRunStopsOnContextEnd(t *testing.T) {
	app, err := New(context.Background(), &config.DriverConfig{}, memoryConfig(), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

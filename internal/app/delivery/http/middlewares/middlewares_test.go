package middlewares

import (
	"io"
	"net/http"
	"net/http/httptest"
	"slotbook-service/internal/app/config"
	"slotbook-service/internal/pkg/constvars"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMiddlewares(apiKey string) *Middlewares {
	return NewMiddlewares(zap.NewNop(), &config.InternalConfig{
		App:       config.App{RequestBodyLimitInMegabyte: 1},
		Transport: config.AppTransport{InboundAPIKey: apiKey},
	})
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	})
}

func TestRequireInboundAPIKey(t *testing.T) {
	testAPIKey := "inbound-key-12345"
	m := newTestMiddlewares(testAPIKey)
	handler := m.RequireInboundAPIKey(okHandler())

	tests := []struct {
		name     string
		header   string
		expected int
	}{
		{name: "Valid API Key", header: testAPIKey, expected: http.StatusOK},
		{name: "Missing API Key", header: "", expected: http.StatusUnauthorized},
		{name: "Invalid API Key", header: "invalid-api-key", expected: http.StatusUnauthorized},
		{name: "Case Sensitivity", header: strings.ToUpper(testAPIKey), expected: http.StatusUnauthorized},
		{name: "Whitespace in API Key", header: " " + testAPIKey + " ", expected: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/inbound", nil)
			if tt.header != "" {
				req.Header.Set(constvars.HeaderAPIKey, tt.header)
			}

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.expected, rr.Code)
		})
	}

	t.Run("No key configured leaves the endpoint open", func(t *testing.T) {
		open := newTestMiddlewares("").RequireInboundAPIKey(okHandler())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/inbound", nil)

		rr := httptest.NewRecorder()
		open.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "success", rr.Body.String())
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	m := newTestMiddlewares("")

	var seen interface{}
	handler := m.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY)
	}))

	t.Run("Client request id is kept", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set(constvars.HeaderXRequestID, "client-id")

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, "client-id", seen)
		assert.Equal(t, "client-id", rr.Header().Get(constvars.HeaderXRequestID))
	})

	t.Run("Missing request id is generated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		id := rr.Header().Get(constvars.HeaderXRequestID)
		assert.True(t, strings.HasPrefix(id, constvars.REQUEST_ID_PREFIX))
		assert.Equal(t, id, seen)
	})
}

func TestErrorHandler(t *testing.T) {
	m := newTestMiddlewares("")
	handler := m.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pools", nil)
	rr := httptest.NewRecorder()
	assert.NotPanics(t, func() { handler.ServeHTTP(rr, req) })
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), constvars.ErrClientSomethingWrongWithApplication)
}

func TestBodyLimit(t *testing.T) {
	m := newTestMiddlewares("")
	handler := m.BodyLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 2<<20)
		_, err := r.Body.Read(buf)
		for err == nil {
			_, err = r.Body.Read(buf)
		}
		var maxErr *http.MaxBytesError
		if assert.ErrorAs(t, err, &maxErr) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
		}
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/inbound", strings.NewReader(strings.Repeat("x", 2<<20)))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestLogging(t *testing.T) {
	m := newTestMiddlewares("")
	handler := m.Logging(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
}

func TestCompress(t *testing.T) {
	m := newTestMiddlewares("")
	large := strings.Repeat(`{"id":"2024-05-01@09:00","available":true},`, 100)
	handler := m.Compress(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(large))
	}))

	t.Run("Brotli accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/pools", nil)
		req.Header.Set(constvars.HeaderAcceptEncoding, "gzip, br")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, constvars.EncodingBrotli, rr.Header().Get(constvars.HeaderContentEncoding))
		assert.Equal(t, constvars.MIMEApplicationJSON, rr.Header().Get(constvars.HeaderContentType))
		assert.Less(t, rr.Body.Len(), len(large))

		decoded, err := io.ReadAll(brotli.NewReader(rr.Body))
		require.NoError(t, err)
		assert.Equal(t, large, string(decoded))
	})

	t.Run("Brotli not accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/pools", nil)
		req.Header.Set(constvars.HeaderAcceptEncoding, "gzip")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Empty(t, rr.Header().Get(constvars.HeaderContentEncoding))
		assert.Equal(t, large, rr.Body.String())
	})

	t.Run("Small body stays identity", func(t *testing.T) {
		small := m.Compress(okHandler())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/holds", nil)
		req.Header.Set(constvars.HeaderAcceptEncoding, "br")
		rr := httptest.NewRecorder()
		small.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Header().Get(constvars.HeaderContentEncoding))
		assert.Equal(t, "success", rr.Body.String())
	})
}

func TestAcceptsBrotli(t *testing.T) {
	tests := []struct {
		header   string
		expected bool
	}{
		{"", false},
		{"br", true},
		{"gzip, deflate, br", true},
		{"br;q=0.5, gzip", true},
		{"br; q=0", false},
		{"brotli", false},
		{"gzip;q=1.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.expected, acceptsBrotli(tt.header))
		})
	}
}

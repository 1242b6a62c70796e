package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingMiddlewareLevelFollowsStatus(t *testing.T) {
	cases := []struct {
		path   string
		status int
		level  zapcore.Level
	}{
		{"/api/products", http.StatusOK, zapcore.InfoLevel},
		{"/api/products/9", http.StatusNotFound, zapcore.WarnLevel},
		{"/api/sales", http.StatusInternalServerError, zapcore.ErrorLevel},
		{"/health", http.StatusOK, zapcore.DebugLevel},
	}

	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			handler := LoggingMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(c.status)
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, c.path+"?limit=5", nil))

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, c.level, entries[0].Level)
			fields := entries[0].ContextMap()
			assert.Equal(t, int64(c.status), fields["status"])
			assert.Equal(t, c.path, fields["path"])
			assert.Equal(t, "limit=5", fields["query"])
		})
	}
}

func TestLoggingMiddlewareDefaultsStatusToOK(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := LoggingMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/inventory", nil))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, int64(http.StatusOK), logs.All()[0].ContextMap()["status"])
}

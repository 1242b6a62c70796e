package server

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inventory-ledger/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeDatabase satisfies database.Service without a connection. Routes that
// reach the repositories are not exercised here.
type fakeDatabase struct {
	health map[string]string
	closed bool
}

func (f *fakeDatabase) DB() *sql.DB                { return nil }
func (f *fakeDatabase) Health() map[string]string { return f.health }
func (f *fakeDatabase) Close() error              { f.closed = true; return nil }

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Port: "0", Env: "test", AllowedOrigins: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{Enabled: true, Requests: 2, Window: time.Minute},
		Ledger:    config.LedgerConfig{MaxConflictRetries: 3, LockTimeout: time.Second},
		Telemetry: config.TelemetryConfig{ServiceName: "inventory-ledger-test"},
	}
}

func TestHealthReportsDatabaseStatus(t *testing.T) {
	db := &fakeDatabase{health: map[string]string{"status": "up", "open_connections": "1"}}
	srv := NewServer(testConfig(), zap.NewNop(), db, nil)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "up", body["database"].(map[string]interface{})["status"])

	db.health = map[string]string{"status": "down", "error": "connection refused"}
	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUnknownRouteReturnsJSONError(t *testing.T) {
	srv := NewServer(testConfig(), zap.NewNop(), &fakeDatabase{health: map[string]string{"status": "up"}}, nil)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nothing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestRateLimitAppliesToAPIRoutesOnly(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	srv := NewServer(testConfig(), zap.NewNop(), &fakeDatabase{health: map[string]string{"status": "up"}}, client)

	// Validation fails before any repository is touched
	send := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.1:5000"
		srv.Handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusBadRequest, send("/api/sales?limit=5000").Code)
	assert.Equal(t, http.StatusBadRequest, send("/api/sales?limit=5000").Code)
	assert.Equal(t, http.StatusTooManyRequests, send("/api/sales?limit=5000").Code)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, send("/health").Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := NewServer(testConfig(), zap.NewNop(), &fakeDatabase{health: map[string]string{"status": "up"}}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCloseReleasesDatabase(t *testing.T) {
	db := &fakeDatabase{health: map[string]string{"status": "up"}}
	srv := NewServer(testConfig(), zap.NewNop(), db, nil)

	require.NoError(t, srv.Close())
	assert.True(t, db.closed)
}

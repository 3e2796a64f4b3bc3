package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// logLine decodes the single JSON line written to buf.
func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log output: %s", buf.String())
	return entry
}

func TestCORS(t *testing.T) {
	t.Run("Preflight stops the chain", func(t *testing.T) {
		called := false
		rec := httptest.NewRecorder()

		CORS(okHandler(&called)).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/carts", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.False(t, called)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Identity headers are allowed", func(t *testing.T) {
		called := false
		rec := httptest.NewRecorder()

		CORS(okHandler(&called)).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/fitting-requests/x", nil))

		assert.True(t, called)
		allowed := rec.Header().Get("Access-Control-Allow-Headers")
		for _, h := range []string{"X-API-Key", headerUserID, headerUserRole} {
			assert.Contains(t, allowed, h)
		}
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
	})
}

func TestAPIKeyAuth(t *testing.T) {
	const key = "test-api-key-123"

	tests := []struct {
		name    string
		path    string
		apiKey  string
		allowed bool
	}{
		{name: "Valid key", path: "/api/carts", apiKey: key, allowed: true},
		{name: "Wrong key", path: "/api/carts", apiKey: "invalid-key"},
		{name: "Missing key", path: "/api/carts"},
		{name: "Key prefix is not enough", path: "/api/carts", apiKey: "test-api-key"},
		{name: "Health check", path: "/health", allowed: true},
		{name: "Readiness check", path: "/ready", allowed: true},
		{name: "Metrics scrape", path: "/metrics", allowed: true},
		{name: "Health path prefix still needs a key", path: "/health/extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.apiKey != "" {
				req.Header.Set("X-API-Key", tt.apiKey)
			}
			rec := httptest.NewRecorder()

			APIKeyAuth(key, zerolog.Nop())(okHandler(&called)).ServeHTTP(rec, req)

			assert.Equal(t, tt.allowed, called)
			if tt.allowed {
				assert.Equal(t, http.StatusOK, rec.Code)
				return
			}
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			body := decodeEnvelope(t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, model.ErrCodeUnauthorised, body.Code)
		})
	}
}

func TestLogging(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		path      string
		userID    string
		status    int
		wantLevel string
	}{
		{name: "Guest read", method: http.MethodGet, path: "/api/products", status: http.StatusOK, wantLevel: "info"},
		{name: "Customer checkout", method: http.MethodPost, path: "/api/carts/c1/checkout", userID: "u1", status: http.StatusCreated, wantLevel: "info"},
		{name: "Client error stays info", method: http.MethodGet, path: "/api/orders/x", userID: "u1", status: http.StatusNotFound, wantLevel: "info"},
		{name: "Server error logs at error", method: http.MethodPost, path: "/api/carts/c1/checkout", userID: "u2", status: http.StatusInternalServerError, wantLevel: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf)
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.userID != "" {
				req.Header.Set(headerUserID, tt.userID)
			}
			rec := httptest.NewRecorder()

			Logging(logger)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			entry := logLine(t, &buf)
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, tt.method, entry["method"])
			assert.Equal(t, tt.path, entry["path"])
			assert.EqualValues(t, tt.status, entry["status"])
			assert.Equal(t, tt.userID, entry["user_id"])
			assert.Contains(t, entry, "duration")
		})
	}

	t.Run("Implicit 200 is recorded", func(t *testing.T) {
		var buf bytes.Buffer
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ok"))
		})

		Logging(zerolog.New(&buf))(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.EqualValues(t, http.StatusOK, logLine(t, &buf)["status"])
	})
}

func TestRecovery(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{name: "String panic", value: "something went wrong"},
		{name: "Error panic", value: assert.AnError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(tt.value)
			})
			rec := httptest.NewRecorder()

			Recovery(zerolog.New(&buf))(next).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/carts/c1", nil))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			body := decodeEnvelope(t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, model.ErrCodeInternalError, body.Code)
			assert.Equal(t, "internal server error", body.Error)

			entry := logLine(t, &buf)
			assert.Equal(t, "panic recovered", entry["message"])
			assert.Equal(t, http.MethodDelete, entry["method"])
		})
	}

	t.Run("No panic passes through", func(t *testing.T) {
		called := false
		rec := httptest.NewRecorder()

		Recovery(zerolog.Nop())(okHandler(&called)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

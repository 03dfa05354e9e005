package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogMiddleware_RecordsStatusAndSize(t *testing.T) {
	core, obs := observer.New(zap.InfoLevel)
	logger := zap.New(core).Sugar()

	h := LogMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/safe", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "ok", rr.Body.String())
	require.Equal(t, 1, obs.Len())

	fields := obs.All()[0].ContextMap()
	require.Equal(t, "GET", fields["method"])
	require.Equal(t, "/api/safe", fields["uri"])
	require.EqualValues(t, http.StatusCreated, fields["status"])
	require.EqualValues(t, 2, fields["size"])
}

func TestLogMiddleware_LevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zap.InfoLevel},
		{http.StatusTooManyRequests, zap.WarnLevel},
		{http.StatusInternalServerError, zap.ErrorLevel},
	}

	for _, v := range tests {
		core, obs := observer.New(zap.InfoLevel)
		h := LogMiddleware(zap.New(core).Sugar())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(v.status)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, 1, obs.Len())
		require.Equal(t, v.level, obs.All()[0].Level, "status %d", v.status)
	}
}

func TestLogMiddleware_RoutePattern(t *testing.T) {
	core, obs := observer.New(zap.InfoLevel)

	router := chi.NewRouter()
	router.Use(LogMiddleware(zap.New(core).Sugar()))
	router.Get("/api/{variant}", func(w http.ResponseWriter, r *http.Request) {})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/safe", nil))

	require.Equal(t, 1, obs.Len())
	require.Equal(t, "/api/{variant}", obs.All()[0].ContextMap()["route"])
}

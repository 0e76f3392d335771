package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ofuentes/wms-bridge/pkg/config"
	"github.com/ofuentes/wms-bridge/pkg/logger"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	logg := logger.New(logger.Options{ServiceName: "test"})
	return NewRouter(cfg, logg, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil)
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if rec.Header().Get("X-WMS-Env") != "test" {
		t.Fatalf("env header missing got %q", rec.Header().Get("X-WMS-Env"))
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	paths := []string{
		"/api/v1/dashboard/stats",
		"/api/v1/grpo",
		"/api/v1/transfers",
		"/api/v1/pick-lists",
		"/api/v1/counts",
		"/api/v1/bins/scans",
		"/api/v1/labels",
		"/api/v1/lookup/warehouses",
		"/api/admin/v1/users",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, rec.Code)
		}
	}
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound && rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 404 or 401 got %d", rec.Code)
	}
}

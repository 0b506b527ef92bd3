package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/solarbank/transferd/internal/adapter/http/handler"
	apimiddleware "github.com/solarbank/transferd/internal/adapter/http/middleware"
	"github.com/solarbank/transferd/internal/infrastructure/metrics"
	"github.com/solarbank/transferd/internal/usecase"
	"github.com/solarbank/transferd/internal/usecase/mocks"
)

func newRouterConfig(opts ...func(cfg *RouterConfig)) RouterConfig {
	accountRepo := mocks.NewMockAccountRepository()
	transferRepo := mocks.NewMockTransferRepository()
	txManager := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()
	retrier := mocks.NewMockRetrier()

	m := metrics.New(prometheus.NewRegistry())

	accountUC := usecase.NewAccountUseCase(accountRepo, idGen)
	transferUC := usecase.NewTransferUseCase(txManager, accountRepo, transferRepo, idGen, retrier, time.Second)

	cfg := RouterConfig{
		AccountHandler:  handler.NewAccountHandler(accountUC, m),
		TransferHandler: handler.NewTransferHandler(transferUC, m),
		HealthHandler:   handler.NewHealthHandler(nil, nil),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_MetricsEndpointAvailable(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.MetricsGatherer = reg
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /metrics to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	store := &countingStore{}
	rl := apimiddleware.NewRateLimiter(store, 1, time.Minute)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_RateLimiterSkipsHealth(t *testing.T) {
	store := &countingStore{}
	rl := apimiddleware.NewRateLimiter(store, 0, time.Minute)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to bypass rate limiting, got %d", rec.Code)
	}
}

func TestNewRouter_CreateAccountEndToEnd(t *testing.T) {
	router := NewRouter(newRouterConfig())

	body := `{"name":"Alice","balance":"100"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRouter, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Router")
	}

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/accounts/"},
		{http.MethodGet, "/api/v1/accounts/"},
		{http.MethodGet, "/api/v1/accounts/{id}"},
		{http.MethodPut, "/api/v1/accounts/{id}"},
		{http.MethodDelete, "/api/v1/accounts/{id}"},
		{http.MethodGet, "/api/v1/accounts/{id}/transfers"},
		{http.MethodPost, "/api/v1/transfers/"},
		{http.MethodGet, "/api/v1/transfers/"},
		{http.MethodGet, "/api/v1/transfers/{id}"},
		{http.MethodGet, "/health"},
		{http.MethodGet, "/ready"},
	}

	for _, route := range routes {
		if !routeExists(t, chiRouter, route.method, route.path) {
			t.Errorf("route %s %s is not registered", route.method, route.path)
		}
	}
}

func routeExists(t *testing.T, r chi.Router, method, path string) bool {
	t.Helper()

	found := false
	walkFn := func(m string, p string, h http.Handler, mw ...func(http.Handler) http.Handler) error {
		if m == method && p == path {
			found = true
		}
		return nil
	}

	if err := chi.Walk(r, walkFn); err != nil {
		t.Fatalf("walking routes: %v", err)
	}

	return found
}

type countingStore struct {
	count int64
}

func (s *countingStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	s.count++
	return s.count, nil
}

package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tradeapp "github.com/erp/procurement/internal/application/trade"
	"github.com/erp/procurement/internal/infrastructure/config"
	"github.com/erp/procurement/internal/interfaces/http/dto"
	"github.com/erp/procurement/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// summaryOnly answers StatusSummary; any other call panics
type summaryOnly struct {
	handler.PurchaseOrderService
}

func (summaryOnly) StatusSummary(context.Context) (*tradeapp.PurchaseOrderStatusSummaryResponse, error) {
	return &tradeapp.PurchaseOrderStatusSummaryResponse{Draft: 1, Total: 1}, nil
}

func serve(engine *gin.Engine, method, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func newTestEngine(t *testing.T, httpCfg config.HTTPConfig) *gin.Engine {
	t.Helper()
	engine, stop := NewEngine(EngineConfig{ServiceName: "procurement-test", HTTP: httpCfg}, Handlers{
		PurchaseOrders: handler.NewPurchaseOrderHandler(summaryOnly{}, nil),
		Health:         handler.NewHealthHandler("procurement", "test", nil, nil),
	})
	t.Cleanup(stop)
	return engine
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Register(group)
	r.Setup()

	w := serve(engine, http.MethodGet, "/api/v1/test/ping", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("inventory", "/inventory")
		assert.Equal(t, "inventory", g.Name())
		assert.Equal(t, "/inventory", g.Prefix())
	})

	t.Run("registers methods", func(t *testing.T) {
		engine := gin.New()
		ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
		NewDomainGroup("test", "/test").
			GET("/items", ok).
			POST("/items", ok).
			PUT("/items/:id", ok).
			RegisterRoutes(engine.Group("/api/v1"))

		for _, tc := range []struct{ method, path string }{
			{http.MethodGet, "/api/v1/test/items"},
			{http.MethodPost, "/api/v1/test/items"},
			{http.MethodPut, "/api/v1/test/items/1"},
		} {
			w := serve(engine, tc.method, tc.path, "", nil)
			assert.Equal(t, http.StatusOK, w.Code, tc.method)
			assert.Equal(t, tc.method, w.Body.String())
		}
	})

	t.Run("group middleware runs first", func(t *testing.T) {
		engine := gin.New()
		NewDomainGroup("test", "/test").
			Use(func(c *gin.Context) { c.Header("X-Group", "yes") }).
			GET("/items", func(c *gin.Context) { c.Status(http.StatusOK) }).
			RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, http.MethodGet, "/api/v1/test/items", "", nil)

		assert.Equal(t, "yes", w.Header().Get("X-Group"))
	})
}

func TestNewEngine(t *testing.T) {
	t.Run("summary is not captured by the id route", func(t *testing.T) {
		engine := newTestEngine(t, config.HTTPConfig{})

		w := serve(engine, http.MethodGet, "/api/v1/purchase-orders/summary", "", nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"draft":1`)
	})

	t.Run("unknown route", func(t *testing.T) {
		engine := newTestEngine(t, config.HTTPConfig{})

		w := serve(engine, http.MethodGet, "/api/v1/sales-orders", "", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeRouteNotFound, resp.Error.Code)
		assert.Equal(t, w.Header().Get("X-Request-ID"), resp.Error.RequestID)
	})

	t.Run("health and security headers", func(t *testing.T) {
		engine := newTestEngine(t, config.HTTPConfig{})

		w := serve(engine, http.MethodGet, "/health", "", map[string]string{"X-Request-ID": "health-req-1"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "health-req-1", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})

	t.Run("body limit", func(t *testing.T) {
		engine := newTestEngine(t, config.HTTPConfig{MaxBodySize: 16})

		w := serve(engine, http.MethodPost, "/api/v1/purchase-orders", `{"supplier_id":"`+strings.Repeat("a", 64)+`"}`, nil)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("rate limit", func(t *testing.T) {
		engine := newTestEngine(t, config.HTTPConfig{
			RateLimitEnabled:  true,
			RateLimitRequests: 1,
			RateLimitWindow:   time.Minute,
		})

		first := serve(engine, http.MethodGet, "/health", "", nil)
		second := serve(engine, http.MethodGet, "/health", "", nil)

		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
	})

	t.Run("cors preflight", func(t *testing.T) {
		engine := newTestEngine(t, config.HTTPConfig{CORSAllowOrigins: []string{"https://erp.example.com"}})

		w := serve(engine, http.MethodOptions, "/api/v1/purchase-orders", "", map[string]string{
			"Origin":                        "https://erp.example.com",
			"Access-Control-Request-Method": "POST",
		})

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://erp.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
	})
}

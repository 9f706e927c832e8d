package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/shopcart/internal/auth"
	"github.com/vyrodovalexey/shopcart/internal/catalog"
	"github.com/vyrodovalexey/shopcart/internal/config"
	"github.com/vyrodovalexey/shopcart/internal/model"
	"github.com/vyrodovalexey/shopcart/internal/store"
)

// testAuthenticator is a mock authenticator for server tests.
type testAuthenticator struct {
	info *auth.AuthInfo
	err  error
}

func (a *testAuthenticator) Authenticate(_ *http.Request) (*auth.AuthInfo, error) {
	return a.info, a.err
}

func (a *testAuthenticator) Method() auth.AuthMethod {
	return auth.AuthMethodAPIKey
}

func testConfig(metrics bool) *config.Config {
	return &config.Config{
		ServerPort:      8080,
		LogLevel:        "info",
		ShutdownTimeout: 30 * time.Second,
		MetricsEnabled:  metrics,
	}
}

func testCatalog(t *testing.T) *catalog.MemoryCatalog {
	t.Helper()

	cat := catalog.NewMemoryCatalog()
	require.NoError(t, cat.PutProduct(model.Product{
		ID: 7, Title: "Mechanical Keyboard", Slug: "mechanical-keyboard", Price: 489, MaxQuantity: 3,
	}))
	return cat
}

func serve(s *Server, method, path string, body []byte, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestNew(t *testing.T) {
	// Act
	s := New(testConfig(true), zap.NewNop(), testCatalog(t), store.NewMemoryCart(), nil)

	// Assert
	require.NotNil(t, s)
	assert.NotNil(t, s.router)
	assert.NotNil(t, s.httpServer)
	assert.NotNil(t, s.wsHandler)
	assert.NotNil(t, s.registry)
	assert.Equal(t, ":8080", s.httpServer.Addr)
	assert.Equal(t, 5*time.Second, s.httpServer.ReadHeaderTimeout)
	assert.Equal(t, s.Router(), s.router)
}

func TestServer_CartFlow(t *testing.T) {
	// Arrange
	cart := store.NewMemoryCart()
	s := New(testConfig(true), zap.NewNop(), testCatalog(t), cart, nil)
	body, _ := json.Marshal(map[string]any{"slug": "mechanical-keyboard", "quantity": 3})

	// Act
	add := serve(s, http.MethodPost, "/api/v1/cart/items", body, nil)
	inc := serve(s, http.MethodPost, "/api/v1/cart/items/7/increment", nil, nil)
	product := serve(s, http.MethodGet, "/api/v1/products/mechanical-keyboard", nil, nil)

	// Assert
	require.Equal(t, http.StatusOK, add.Code)
	require.Equal(t, http.StatusOK, inc.Code)

	var incResp model.APIResponse[model.CartView]
	require.NoError(t, json.NewDecoder(inc.Body).Decode(&incResp))
	require.NotNil(t, incResp.Data.Notice)
	assert.Equal(t, model.MsgMaxQuantity, incResp.Data.Notice.Message)

	var detail model.APIResponse[model.ProductDetail]
	require.NoError(t, json.NewDecoder(product.Body).Decode(&detail))
	assert.Equal(t, 3, detail.Data.Quantity)
	assert.False(t, detail.Data.CanIncrement)

	item, ok := cart.Item(7)
	require.True(t, ok)
	assert.Equal(t, 3, item.Quantity)
}

func TestServer_MiddlewareApplied(t *testing.T) {
	s := New(testConfig(true), zap.NewNop(), testCatalog(t), store.NewMemoryCart(), nil)

	rr := serve(s, http.MethodGet, "/health", nil, map[string]string{"Origin": "http://localhost:3000"})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_CORSPreflight(t *testing.T) {
	s := New(testConfig(true), zap.NewNop(), testCatalog(t), store.NewMemoryCart(), nil)

	rr := serve(s, http.MethodOptions, "/api/v1/cart/items", nil, map[string]string{
		"Origin":                        "http://localhost:3000",
		"Access-Control-Request-Method": "POST",
	})

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
}

func TestServer_NotFoundScreen(t *testing.T) {
	s := New(testConfig(true), zap.NewNop(), testCatalog(t), store.NewMemoryCart(), nil)

	rr := serve(s, http.MethodGet, "/settings/profile", nil, nil)

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, model.MsgScreenNotExists, resp.Message)
	assert.Equal(t, "/", resp.Details)
}

func TestServer_Metrics(t *testing.T) {
	cart := store.NewMemoryCart()
	cart.AddItem(model.CartLineItem{ID: 9, Title: "Mouse", Price: 10, Quantity: 2, MaxQuantity: 4})
	s := New(testConfig(true), zap.NewNop(), testCatalog(t), cart, nil)

	serve(s, http.MethodGet, "/api/v1/cart", nil, nil)
	serve(s, http.MethodGet, "/nowhere", nil, nil)
	cart.IncrementItem(9)
	rr := serve(s, http.MethodGet, "/metrics", nil, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	out := rr.Body.String()
	assert.Contains(t, out, `http_requests_total{method="GET",path="/api/v1/cart",status="200"} 1`)
	assert.Contains(t, out, `http_requests_total{method="GET",path="unmatched",status="404"} 1`)
	assert.Contains(t, out, "cart_total_quantity 3")
	assert.Contains(t, out, `cart_operations_total{changed="true",operation="increment"} 1`)
	assert.Contains(t, out, "go_goroutines")
}

func TestServer_MetricsDisabled(t *testing.T) {
	s := New(testConfig(false), zap.NewNop(), testCatalog(t), store.NewMemoryCart(), nil)

	rr := serve(s, http.MethodGet, "/metrics", nil, nil)

	assert.Nil(t, s.registry)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServer_Auth(t *testing.T) {
	tests := []struct {
		name       string
		auth       *testAuthenticator
		path       string
		wantStatus int
	}{
		{"rejects cart without credentials", &testAuthenticator{err: auth.ErrUnauthenticated}, "/api/v1/cart", http.StatusUnauthorized},
		{"health stays public", &testAuthenticator{err: auth.ErrUnauthenticated}, "/health", http.StatusOK},
		{"metrics stays public", &testAuthenticator{err: auth.ErrUnauthenticated}, "/metrics", http.StatusOK},
		{
			"accepts valid credentials",
			&testAuthenticator{info: &auth.AuthInfo{Method: auth.AuthMethodAPIKey, Subject: "kiosk"}},
			"/api/v1/cart",
			http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(testConfig(true), zap.NewNop(), testCatalog(t), store.NewMemoryCart(), tt.auth)

			rr := serve(s, http.MethodGet, tt.path, nil, nil)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestServer_WebSocketEndpoint(t *testing.T) {
	// Arrange
	cart := store.NewMemoryCart()
	s := New(testConfig(false), zap.NewNop(), testCatalog(t), cart, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer conn.Close()

	// Act
	var snapshot model.WebSocketMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&snapshot))

	// Assert
	assert.Equal(t, model.WSMessageTypeSnapshot, snapshot.Type)
	assert.Empty(t, snapshot.Items)
}

func TestServer_Shutdown(t *testing.T) {
	cfg := testConfig(true)
	cfg.ServerPort = 0
	s := New(cfg, zap.NewNop(), testCatalog(t), store.NewMemoryCart(), nil)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.Shutdown(ctx))
	assert.NoError(t, <-errCh)
}

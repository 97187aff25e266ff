package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/mubark555/pastry-opus-biz/internal/audit"
	"github.com/mubark555/pastry-opus-biz/internal/catalog"
	"github.com/mubark555/pastry-opus-biz/internal/finance"
	"github.com/mubark555/pastry-opus-biz/internal/inventory"
	"github.com/mubark555/pastry-opus-biz/internal/middleware"
	"github.com/mubark555/pastry-opus-biz/internal/order"
	"github.com/mubark555/pastry-opus-biz/internal/pricing"
	"github.com/mubark555/pastry-opus-biz/internal/repository/demo"
	"github.com/mubark555/pastry-opus-biz/internal/repository/memory"
	"github.com/mubark555/pastry-opus-biz/pkg/jwtutil"
	appmetrics "github.com/mubark555/pastry-opus-biz/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	e     *echo.Echo
	jwt   *jwtutil.JWTUtil
	store *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.New()
	require.NoError(t, demo.Load(context.Background(), store))

	metrics := appmetrics.NewMetrics("test", prometheus.NewRegistry())
	jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	h := New(Services{
		Store:     store,
		Catalog:   catalog.NewService(store),
		Orders:    order.NewService(store, pricing.NewResolver(store, metrics), metrics),
		Finance:   finance.NewService(store, metrics, 0.8),
		Inventory: inventory.NewService(store, metrics, 20),
		Audit:     audit.NewService(store),
	})

	e := echo.New()
	e.Use(middleware.RequestIDMiddleware())
	h.Register(e, middleware.JWTAuthMiddleware(jwtUtil, metrics), metrics)
	return &testServer{e: e, jwt: jwtUtil, store: store}
}

func (s *testServer) token(t *testing.T, role, clientID string) string {
	t.Helper()
	tok, err := s.jwt.GenerateToken("u-"+role, role+"@sweets.example", role, clientID)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/health?check=db", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	decode(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["db_status"])
}

func TestAPIRequiresToken(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/products", "", "").Code)
}

func TestListProducts(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/products?active=true", s.token(t, "kitchen", ""), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var products []map[string]interface{}
	decode(t, rec, &products)
	assert.Len(t, products, 7)

	rec = s.do(http.MethodGet, "/api/products?active=maybe", s.token(t, "kitchen", ""), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuoteTieredPrice(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/quotes", s.token(t, "client", "c1"),
		`{"client_id":"c1","items":[{"product_id":"p1","quantity":15}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var preview struct {
		Lines []struct {
			UnitPrice string `json:"unit_price"`
			LineTotal string `json:"line_total"`
			Source    string `json:"source"`
		} `json:"lines"`
		Total    string `json:"total"`
		Decision struct {
			Admitted bool `json:"admitted"`
		} `json:"decision"`
	}
	decode(t, rec, &preview)
	require.Len(t, preview.Lines, 1)
	assert.Equal(t, "108", preview.Lines[0].UnitPrice)
	assert.Equal(t, "1620", preview.Lines[0].LineTotal)
	assert.Equal(t, "tier", preview.Lines[0].Source)
	assert.True(t, preview.Decision.Admitted)

	// client users cannot price for another account
	rec = s.do(http.MethodPost, "/api/quotes", s.token(t, "client", "c1"),
		`{"client_id":"c2","items":[{"product_id":"p1","quantity":15}]}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateOrderDeclined(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/orders", s.token(t, "sales_admin", ""),
		`{"client_id":"c2","items":[{"product_id":"p1","quantity":20}],"delivery_type":"delivery"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	var body map[string]interface{}
	decode(t, rec, &body)
	assert.Equal(t, "credit_limit_exceeded", body["reason"])
	assert.Equal(t, "1500", body["remaining_credit"])

	rec = s.do(http.MethodPost, "/api/orders", s.token(t, "sales_admin", ""),
		`{"client_id":"c5","items":[{"product_id":"p1","quantity":2}],"delivery_type":"pickup"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	decode(t, rec, &body)
	assert.Equal(t, "account_suspended", body["reason"])
}

func TestClientPortalOrderFlow(t *testing.T) {
	s := newTestServer(t)
	portal := s.token(t, "client", "c1")

	rec := s.do(http.MethodPost, "/api/orders", portal,
		`{"items":[{"product_id":"p2","quantity":5}],"delivery_type":"pickup","requested_date":"2026-02-20"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID          string `json:"id"`
		ClientID    string `json:"client_id"`
		Status      string `json:"status"`
		TotalAmount string `json:"total_amount"`
	}
	decode(t, rec, &created)
	assert.Equal(t, "c1", created.ClientID)
	assert.Equal(t, "new", created.Status)
	assert.Equal(t, "440", created.TotalAmount)

	rec = s.do(http.MethodGet, "/api/orders", portal, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []map[string]interface{}
	decode(t, rec, &mine)
	assert.Len(t, mine, 3)
	for _, o := range mine {
		assert.Equal(t, "c1", o["client_id"])
	}

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/orders/o2", portal, "").Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/orders/"+created.ID+"/advance", portal, "").Code)

	rec = s.do(http.MethodPost, "/api/orders", portal,
		`{"client_id":"c2","items":[{"product_id":"p2","quantity":5}],"delivery_type":"pickup"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOrderStatusRoutes(t *testing.T) {
	s := newTestServer(t)
	kitchen := s.token(t, "kitchen", "")
	sales := s.token(t, "sales_admin", "")

	// o4 is new: approval is a sales step
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/orders/o4/advance", kitchen, "").Code)
	rec := s.do(http.MethodPost, "/api/orders/o4/advance", sales, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var o map[string]interface{}
	decode(t, rec, &o)
	assert.Equal(t, "approved", o["status"])

	rec = s.do(http.MethodPut, "/api/orders/o6/status", sales, `{"status":"cancelled"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPut, "/api/orders/o1/status", sales, `{"status":"shipped"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/orders/o404", sales, "").Code)
}

func TestAssignAndDispatch(t *testing.T) {
	s := newTestServer(t)
	driver := s.token(t, "delivery", "")

	rec := s.do(http.MethodPut, "/api/orders/o2/driver", driver, `{"driver_id":"d2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "d2 is out on o5")

	rec = s.do(http.MethodPut, "/api/orders/o2/driver", driver, `{"driver_id":"d1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/orders/o2/advance", driver, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/boards/delivery", driver, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var board struct {
		Orders []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"orders"`
		Drivers []struct {
			ID          string `json:"id"`
			IsAvailable bool   `json:"is_available"`
		} `json:"drivers"`
	}
	decode(t, rec, &board)
	for _, d := range board.Drivers {
		if d.ID == "d1" {
			assert.False(t, d.IsAvailable)
		}
	}
}

func TestPaymentsAndSummary(t *testing.T) {
	s := newTestServer(t)
	fin := s.token(t, "finance", "")

	rec := s.do(http.MethodPost, "/api/payments", fin, `{"client_id":"c2","amount":"8500","method":"transfer"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/payments", fin, `{"client_id":"c2","amount":0,"method":"transfer"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/clients/c2/account", fin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var acct map[string]interface{}
	decode(t, rec, &acct)
	assert.Equal(t, "20000", acct["outstanding_balance"])
	assert.Equal(t, "safe", acct["standing"])

	rec = s.do(http.MethodGet, "/api/finance/summary", fin, "")
	require.Equal(t, http.StatusOK, rec.Code)

	kitchen := s.token(t, "kitchen", "")
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/payments", kitchen, `{"client_id":"c2","amount":"1","method":"cash"}`).Code)
}

func TestInventoryRoutes(t *testing.T) {
	s := newTestServer(t)
	kitchen := s.token(t, "kitchen", "")

	rec := s.do(http.MethodPost, "/api/inventory/movements", kitchen, `{"product_id":"p5","type":"out","quantity":16}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/api/inventory/movements", kitchen, `{"product_id":"p5","type":"in","quantity":10,"reason":"Production batch"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/inventory/low-stock", kitchen, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var low []map[string]interface{}
	decode(t, rec, &low)
	assert.Empty(t, low)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/inventory/low-stock?threshold=lots", kitchen, "").Code)
}

func TestPricingAndAuditRoutes(t *testing.T) {
	s := newTestServer(t)
	sales := s.token(t, "sales_admin", "")

	rec := s.do(http.MethodPut, "/api/pricing", sales,
		`{"client_id":"c4","product_id":"p4","tiers":[{"min_qty":1,"max_qty":9,"price":"68"},{"min_qty":10,"max_qty":null,"price":"60"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPut, "/api/pricing", sales,
		`{"client_id":"c4","product_id":"p4","tiers":[{"min_qty":2,"price":"68"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	admin := s.token(t, "super_admin", "")
	rec = s.do(http.MethodGet, "/api/audit?limit=1", admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []map[string]interface{}
	decode(t, rec, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "client_product_pricing", entries[0]["table_name"])

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/audit", sales, "").Code)
}

func TestKitchenBoardRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/boards/kitchen?date=2026-02-18", s.token(t, "kitchen", ""), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var board struct {
		Columns    map[string][]map[string]interface{} `json:"columns"`
		Production []map[string]interface{}             `json:"production"`
	}
	decode(t, rec, &board)
	assert.Len(t, board.Columns["in_production"], 1)
	assert.NotEmpty(t, board.Production)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/boards/kitchen", s.token(t, "client", "c1"), "").Code)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/mubark555/pastry-opus-biz/internal/access"
	"github.com/mubark555/pastry-opus-biz/pkg/jwtutil"
	appmetrics "github.com/mubark555/pastry-opus-biz/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEcho(t *testing.T) (*echo.Echo, *jwtutil.JWTUtil, *appmetrics.Metrics) {
	t.Helper()
	jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	metrics := appmetrics.NewMetrics("test", prometheus.NewRegistry())

	e := echo.New()
	e.Use(RequestIDMiddleware())
	g := e.Group("/api", JWTAuthMiddleware(jwtUtil, metrics))
	g.GET("/whoami", func(c echo.Context) error {
		actor, _ := ActorFrom(c)
		return c.JSON(http.StatusOK, echo.Map{"user_id": actor.UserID, "role": actor.Role, "client_id": actor.ClientID})
	})
	g.GET("/payments", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, RequireCapability(access.PaymentRecord, metrics))
	return e, jwtUtil, metrics
}

func get(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequestIDIsEchoedOrGenerated(t *testing.T) {
	e := echo.New()
	e.Use(RequestIDMiddleware())
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(echo.HeaderXRequestID))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)
}

func TestJWTAuthSetsActor(t *testing.T) {
	e, jwtUtil, _ := newEcho(t)

	token, err := jwtUtil.GenerateToken("u-7", "buyer@grandpalace.com", "client", "c1")
	require.NoError(t, err)

	rec := get(e, "/api/whoami", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":"u-7","role":"client","client_id":"c1"}`, rec.Body.String())
}

func TestJWTAuthRejects(t *testing.T) {
	e, jwtUtil, metrics := newEcho(t)

	rec := get(e, "/api/whoami", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(e, "/api/whoami", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	unknown, err := jwtUtil.GenerateToken("u-1", "x@example.com", "janitor", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(e, "/api/whoami", unknown).Code)

	portal, err := jwtUtil.GenerateToken("u-2", "x@example.com", "client", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(e, "/api/whoami", portal).Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuthErrorsCounter.WithLabelValues("missing_token")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuthErrorsCounter.WithLabelValues("invalid_token")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuthErrorsCounter.WithLabelValues("unknown_role")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuthErrorsCounter.WithLabelValues("missing_client")))
}

func TestRequireCapability(t *testing.T) {
	e, jwtUtil, metrics := newEcho(t)

	finance, err := jwtUtil.GenerateToken("u-fin", "fin@example.com", "finance", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, get(e, "/api/payments", finance).Code)

	kitchen, err := jwtUtil.GenerateToken("u-k", "k@example.com", "kitchen", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get(e, "/api/payments", kitchen).Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuthErrorsCounter.WithLabelValues("forbidden")))
}

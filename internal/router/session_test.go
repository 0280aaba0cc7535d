package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sveneberth/viur-shop/internal/config"
	"github.com/sveneberth/viur-shop/internal/metrics"
	"github.com/sveneberth/viur-shop/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestRequestState(language, country, sessionKey string, userID uint) *service.RequestState {
	rs := service.NewRequestState(time.Now())
	rs.Language = language
	rs.Country = country
	rs.SessionKey = sessionKey
	return rs.WithUser(userID)
}

func setupSessionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SessionMiddleware(config.ShopConfig{Language: "de", Country: "DE"}, newTestRequestState))
	r.GET("/state", func(c *gin.Context) {
		value, _ := c.Get(requestStateContextKey)
		rs := value.(*service.RequestState)
		c.JSON(http.StatusOK, gin.H{
			"session":  rs.SessionKey,
			"language": rs.Language,
			"country":  rs.Country,
		})
	})
	return r
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp
}

func TestSessionMiddlewareIssuesKey(t *testing.T) {
	r := setupSessionRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/state", nil))

	issued := w.Header().Get("X-Session-Key")
	if _, err := uuid.Parse(issued); err != nil {
		t.Fatalf("issued session key should be uuid, got %q", issued)
	}
	resp := decodeState(t, w)
	if resp["session"] != issued {
		t.Fatalf("request state session want %s got %s", issued, resp["session"])
	}
	if resp["language"] != "de" || resp["country"] != "DE" {
		t.Fatalf("defaults want de/DE got %s/%s", resp["language"], resp["country"])
	}
}

func TestSessionMiddlewareKeepsValidKeyAndLanguage(t *testing.T) {
	r := setupSessionRouter()
	key := uuid.NewString()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	req.Header.Set("X-Session-Key", key)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,de;q=0.8")
	r.ServeHTTP(w, req)

	resp := decodeState(t, w)
	if resp["session"] != key {
		t.Fatalf("session key want %s got %s", key, resp["session"])
	}
	if resp["language"] != "en" {
		t.Fatalf("language want en got %s", resp["language"])
	}
}

func TestSessionMiddlewareReplacesForgedKey(t *testing.T) {
	r := setupSessionRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	req.Header.Set("X-Session-Key", "not-a-session")
	r.ServeHTTP(w, req)

	resp := decodeState(t, w)
	if resp["session"] == "not-a-session" {
		t.Fatalf("forged session key must be replaced")
	}
}

func TestOptionalUserJWTMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(OptionalUserJWTMiddleware("secret", nil))
	r.GET("/me", func(c *gin.Context) {
		_, loggedIn := c.Get(userIDContextKey)
		c.JSON(http.StatusOK, gin.H{"logged_in": loggedIn})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if w.Body.String() != `{"logged_in":false}` {
		t.Fatalf("guest request should pass through, got %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer broken")
	r.ServeHTTP(w, req)
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("invalid token status_code want 401 got %d", resp.StatusCode)
	}
}

func TestMetricsMiddlewareLabelsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.NewHTTPMetrics(prometheus.NewRegistry())
	r := gin.New()
	r.Use(MetricsMiddleware(m))
	r.GET("/items/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/7", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	if got := testutil.ToFloat64(m.ReqTotal.WithLabelValues(http.MethodGet, "/items/:id", "204")); got != 2 {
		t.Fatalf("route counter want 2 got %v", got)
	}
	if got := testutil.ToFloat64(m.ReqTotal.WithLabelValues(http.MethodGet, "unmatched", "404")); got != 1 {
		t.Fatalf("unmatched counter want 1 got %v", got)
	}
	if got := testutil.ToFloat64(m.InFlight); got != 0 {
		t.Fatalf("in-flight gauge should settle at 0, got %v", got)
	}
}

func TestDeriveAdminPermissionModule(t *testing.T) {
	cases := map[string]string{
		"/admin/articles/:id":                   "articles",
		"/admin/shipping-configs":               "shippings",
		"/admin/discounts/conditions/:id/codes": "discounts",
		"/admin":                                "admin",
		"":                                      "system",
	}
	for object, want := range cases {
		if got := deriveAdminPermissionModule(object); got != want {
			t.Fatalf("module of %q want %s got %s", object, want, got)
		}
	}
}

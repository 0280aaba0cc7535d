package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sveneberth/viur-shop/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func TestKeyByIPAndJSONField(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader(`{"email":" Test@Example.com "}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "1.2.3.4:5678"

	key := KeyByIPAndJSONField("email")(c)
	if key != "test@example.com|1.2.3.4" {
		t.Fatalf("key want test@example.com|1.2.3.4 got %s", key)
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("read body after key extraction failed: %v", err)
	}
	if !strings.Contains(string(body), "Test@Example.com") {
		t.Fatalf("request body should be restored after reading field")
	}
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("expected handler response body, got %s", w.Body.String())
	}
}

func TestToInt64(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		want  int64
		ok    bool
	}{
		{name: "int64", input: int64(10), want: 10, ok: true},
		{name: "int", input: int(11), want: 11, ok: true},
		{name: "uint8", input: uint8(12), want: 12, ok: true},
		{name: "float64", input: float64(13.9), want: 13, ok: true},
		{name: "string", input: "bad", want: 0, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := toInt64(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok want %v got %v", tc.ok, ok)
			}
			if got != tc.want {
				t.Fatalf("value want %d got %d", tc.want, got)
			}
		})
	}
}

func TestRateLimitMiddlewareBlocksAfterLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	rule := RateLimitRule{Prefix: "test:rate", WindowSeconds: 60, MaxRequests: 2, BlockSeconds: 300}
	r := gin.New()
	r.Use(RateLimitMiddleware(client, rule, KeyByIP))
	r.POST("/discount", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/discount", nil))
		if !strings.Contains(w.Body.String(), `"ok":true`) {
			t.Fatalf("request %d should pass, got %s", i+1, w.Body.String())
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/discount", nil))
	if !strings.Contains(w.Body.String(), `"status_code":429`) {
		t.Fatalf("third request should be limited, got %s", w.Body.String())
	}
	if ttl := mr.TTL("test:rate:192.0.2.1"); ttl != 300*time.Second {
		t.Fatalf("block ttl want 300s got %v", ttl)
	}
}

func TestKeyByHeaderAndIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/discount", nil)
	c.Request.RemoteAddr = "1.2.3.4:5678"
	if key := KeyByHeaderAndIP("X-Session-Key")(c); key != "1.2.3.4" {
		t.Fatalf("missing header should fall back to ip, got %s", key)
	}
	c.Request.Header.Set("X-Session-Key", "abc")
	if key := KeyByHeaderAndIP("X-Session-Key")(c); key != "abc|1.2.3.4" {
		t.Fatalf("key want abc|1.2.3.4 got %s", key)
	}
}

func TestNewRateLimitRuleFromConfig(t *testing.T) {
	rule := NewRateLimitRule("discount", config.RateLimitConfig{WindowSeconds: 60, MaxAttempts: 10, BlockSeconds: 300})
	if !strings.HasSuffix(rule.Prefix, ":rate:discount") {
		t.Fatalf("unexpected prefix %s", rule.Prefix)
	}
	if rule.MaxRequests != 10 || rule.BlockSeconds != 300 || rule.MessageKey != "error.rate_limited" || !rule.enabled() {
		t.Fatalf("unexpected rule %+v", rule)
	}
	if NewRateLimitRule("login", config.RateLimitConfig{}).enabled() {
		t.Fatalf("zero config should disable the rule")
	}

	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/shop/discount", nil)
	c.Request.RemoteAddr = "10.0.0.1:1234"
	if got := rule.key(c, nil); got != rule.Prefix+":10.0.0.1" {
		t.Fatalf("empty key func should fall back to ip, got %s", got)
	}
}

package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestAbortAttachesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reached := false
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("request_id", "req-7")
		Abort(c, CodeUnauthorized, "nope")
	})
	r.GET("/cart", func(c *gin.Context) { reached = true })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))
	if reached {
		t.Fatalf("abort should stop the handler chain")
	}
	if w.Code != http.StatusOK {
		t.Fatalf("envelope errors are written with 200, got %d", w.Code)
	}
	var resp struct {
		StatusCode int               `json:"status_code"`
		Msg        string            `json:"msg"`
		Data       map[string]string `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if resp.StatusCode != CodeUnauthorized || resp.Msg != "nope" || resp.Data["request_id"] != "req-7" {
		t.Fatalf("unexpected envelope %+v", resp)
	}
}

func TestAttachRequestIDShapes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := attachRequestID(c, "x"); got != "x" {
		t.Fatalf("without request id data should pass through, got %v", got)
	}
	c.Set("request_id", "req-1")
	fields := attachRequestID(c, gin.H{"fields": []string{"name:max"}}).(gin.H)
	if fields["request_id"] != "req-1" || fields["fields"] == nil {
		t.Fatalf("map data should gain request_id, got %v", fields)
	}
	wrapped := attachRequestID(c, []int{1}).(gin.H)
	if wrapped["request_id"] != "req-1" || wrapped["data"] == nil {
		t.Fatalf("other data should be wrapped, got %v", wrapped)
	}
}

func TestSuccessWithPageFlattensEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	SuccessWithPage(c, []string{"Kaffee"}, Pagination{Page: 1, PageSize: 20, Total: 1, TotalPage: 1})

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if resp["status_code"] != float64(0) || resp["msg"] != "success" || resp["pagination"] == nil {
		t.Fatalf("unexpected page envelope %v", resp)
	}
}

func TestAppErrorLogFields(t *testing.T) {
	cause := errors.New("db down")
	appErr := WrapError(CodeInternal, "error.internal", "Interner Fehler", cause)
	if !errors.Is(appErr, cause) || appErr.Error() != "Interner Fehler: db down" {
		t.Fatalf("unexpected wrap %v", appErr)
	}
	kv := appErr.LogFields()
	if len(kv) != 8 || kv[5] != "error.internal" {
		t.Fatalf("unexpected log fields %v", kv)
	}
	plain := WrapError(CodeBadRequest, "", "kaputt", nil)
	if len(plain.LogFields()) != 4 || plain.Error() != "kaputt" {
		t.Fatalf("custom message should omit key and error, got %v", plain.LogFields())
	}
}

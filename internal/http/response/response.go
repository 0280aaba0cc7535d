package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构；业务错误同样以 HTTP 200 返回，由 status_code 区分
type Response struct {
	StatusCode int         `json:"status_code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	Response
	Pagination Pagination `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{StatusCode: CodeOK, Msg: "success", Data: data})
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, PageResponse{
		Response:   Response{StatusCode: CodeOK, Msg: "success", Data: data},
		Pagination: pagination,
	})
}

// Error 错误响应，data 仅携带 request_id
func Error(c *gin.Context, statusCode int, msg string) {
	ErrorWithData(c, statusCode, msg, nil)
}

// ErrorWithData 错误响应（带数据）
func ErrorWithData(c *gin.Context, statusCode int, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		StatusCode: statusCode,
		Msg:        msg,
		Data:       attachRequestID(c, data),
	})
}

// Abort 写入错误响应并中止中间件链
func Abort(c *gin.Context, statusCode int, msg string) {
	Error(c, statusCode, msg)
	c.Abort()
}

func attachRequestID(c *gin.Context, data interface{}) interface{} {
	requestID := ""
	if c != nil {
		requestID = c.GetString("request_id")
	}
	if requestID == "" {
		return data
	}
	var fields map[string]interface{}
	switch v := data.(type) {
	case nil:
		return gin.H{"request_id": requestID}
	case gin.H:
		fields = v
	case map[string]interface{}:
		fields = v
	default:
		return gin.H{"request_id": requestID, "data": data}
	}
	if _, ok := fields["request_id"]; !ok {
		fields["request_id"] = requestID
	}
	return fields
}

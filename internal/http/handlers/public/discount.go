package public

import (
	"github.com/sveneberth/viur-shop/internal/http/response"
	"github.com/sveneberth/viur-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// DiscountApplyRequest 优惠应用请求，code 与 discount_key 二选一
type DiscountApplyRequest struct {
	Code        string `json:"code" binding:"omitempty,max=64"`
	DiscountKey string `json:"discount_key"`
}

// ApplyDiscount 将优惠码或优惠应用到当前会话购物车
func (h *Handler) ApplyDiscount(c *gin.Context) {
	var req DiscountApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	discountID, err := service.ParseOptionalKey(req.DiscountKey, "discount_key")
	if err != nil {
		respondDiscountError(c, err)
		return
	}

	result, err := h.DiscountService.ApplyForCustomer(c.Request.Context(), h.getRequestState(c), req.Code, discountID)
	if err != nil {
		respondDiscountError(c, err)
		return
	}
	response.Success(c, result)
}

// RemoveDiscount 从当前会话购物车移除优惠
func (h *Handler) RemoveDiscount(c *gin.Context) {
	discountID, err := service.ParseKey(c.Param("discount_key"), "discount_key")
	if err != nil {
		respondDiscountError(c, err)
		return
	}
	result, err := h.DiscountService.Remove(c.Request.Context(), h.getRequestState(c), discountID)
	if err != nil {
		respondDiscountError(c, err)
		return
	}
	response.Success(c, result)
}

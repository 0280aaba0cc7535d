package public

import (
	"strings"

	"github.com/sveneberth/viur-shop/internal/http/response"
	"github.com/sveneberth/viur-shop/internal/models"
	"github.com/sveneberth/viur-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// ListShippings 购物车适用的运费方案；未指定 cart_key 时使用会话购物车
func (h *Handler) ListShippings(c *gin.Context) {
	rs := h.getRequestState(c)
	cartID, err := service.ParseOptionalKey(c.Query("cart_key"), "cart_key")
	if err != nil {
		respondCartError(c, err)
		return
	}

	var cart *models.CartNode
	if cartID == nil {
		cart, err = h.CartService.CurrentSessionCart(rs)
	} else {
		cart, err = h.CartService.GetNode(rs, *cartID)
	}
	if err != nil {
		respondCartError(c, err)
		return
	}

	country := strings.ToUpper(strings.TrimSpace(c.Query("country")))
	shippings, err := h.ShippingService.ShippingsForCart(c.Request.Context(), rs, cart, country)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, shippings)
}

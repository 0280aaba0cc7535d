package admin

import (
	"strings"

	handlershared "github.com/sveneberth/viur-shop/internal/http/handlers/shared"
	"github.com/sveneberth/viur-shop/internal/http/response"
	"github.com/sveneberth/viur-shop/internal/logger"
	"github.com/sveneberth/viur-shop/internal/models"
	"github.com/sveneberth/viur-shop/internal/queue"
	"github.com/sveneberth/viur-shop/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAdminDiscounts 获取优惠列表
func (h *Handler) GetAdminDiscounts(c *gin.Context) {
	page, pageSize := handlershared.PaginationFromQuery(c)
	filter := repository.DiscountListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
	}
	switch c.Query("activate_automatically") {
	case "true":
		flag := true
		filter.ActivateAutomatically = &flag
	case "false":
		flag := false
		filter.ActivateAutomatically = &flag
	}

	discounts, total, err := h.CatalogService.ListDiscounts(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, discounts, handlershared.BuildPagination(page, pageSize, total))
}

// GetAdminDiscount 获取优惠详情（含条件）
func (h *Handler) GetAdminDiscount(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	discount, err := h.CatalogService.GetDiscount(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, discount)
}

// CreateDiscount 创建优惠及其条件
func (h *Handler) CreateDiscount(c *gin.Context) {
	var req models.Discount
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	discount, err := h.CatalogService.CreateDiscount(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	logger.Infow("admin_discount_created", "admin_id", currentAdminID(c), "discount_id", discount.ID)
	response.Success(c, discount)
}

// UpdateDiscount 更新优惠；条件整体替换
func (h *Handler) UpdateDiscount(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req models.Discount
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	discount, err := h.CatalogService.UpdateDiscount(c.Request.Context(), id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	logger.Infow("admin_discount_updated", "admin_id", currentAdminID(c), "discount_id", discount.ID)
	response.Success(c, discount)
}

// DeleteDiscount 删除优惠
func (h *Handler) DeleteDiscount(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.CatalogService.DeleteDiscount(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	logger.Infow("admin_discount_deleted", "admin_id", currentAdminID(c), "discount_id", id)
	response.Success(c, nil)
}

// GenerateConditionCodes 为个人码条件补齐子码；有队列时异步执行
func (h *Handler) GenerateConditionCodes(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueGenerateCodes(queue.GenerateCodesPayload{ConditionID: id}); err != nil {
			respondError(c, response.CodeInternal, "error.queue_unavailable", err)
			return
		}
		response.Success(c, gin.H{"queued": true, "generated": 0})
		return
	}

	generated, err := h.DiscountService.GenerateIndividualCodes(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"queued": false, "generated": generated})
}

// RefreshAutomaticDiscounts 重新计算自动生效优惠缓存
func (h *Handler) RefreshAutomaticDiscounts(c *gin.Context) {
	if h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueRefreshAutomatic(queue.RefreshAutomaticPayload{Reason: "admin"}, 0); err != nil {
			respondError(c, response.CodeInternal, "error.queue_unavailable", err)
			return
		}
		response.Success(c, gin.H{"queued": true})
		return
	}

	rs := h.NewRequestState("", "", "", 0)
	discounts, err := h.DiscountEvaluator.RefreshAutomaticallyDiscounts(c.Request.Context(), rs)
	h.ShopMetrics.ObserveAutomaticRefresh(err)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	ids := make([]uint, 0, len(discounts))
	for _, discount := range discounts {
		ids = append(ids, discount.ID)
	}
	response.Success(c, gin.H{"queued": false, "discount_ids": ids})
}

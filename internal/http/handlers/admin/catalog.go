package admin

import (
	"strings"

	handlershared "github.com/sveneberth/viur-shop/internal/http/handlers/shared"
	"github.com/sveneberth/viur-shop/internal/http/response"
	"github.com/sveneberth/viur-shop/internal/logger"
	"github.com/sveneberth/viur-shop/internal/models"
	"github.com/sveneberth/viur-shop/internal/repository"

	"github.com/gin-gonic/gin"
)

// ====================  商品管理  ====================

// ArticleRequest 商品创建/更新请求
type ArticleRequest struct {
	Name             string       `json:"name" binding:"required,max=255"`
	Description      string       `json:"description"`
	ArtNoOrGtin      string       `json:"art_no_or_gtin" binding:"omitempty,max=64"`
	PriceRetail      models.Money `json:"price_retail"`
	PriceRecommended models.Money `json:"price_recommended"`
	Availability     string       `json:"availability" binding:"omitempty,max=32"`
	Listed           *bool        `json:"listed"`
	Image            string       `json:"image" binding:"omitempty,max=500"`
	VatID            *uint        `json:"vat_id"`
	ShippingConfigID *uint        `json:"shipping_config_id"`
	IsWeee           bool         `json:"is_weee"`
	IsLowPrice       bool         `json:"is_low_price"`
}

func (r ArticleRequest) toModel() *models.Article {
	listed := true
	if r.Listed != nil {
		listed = *r.Listed
	}
	availability := strings.TrimSpace(r.Availability)
	if availability == "" {
		availability = "instock"
	}
	return &models.Article{
		Name:             r.Name,
		Description:      r.Description,
		ArtNoOrGtin:      strings.TrimSpace(r.ArtNoOrGtin),
		PriceRetail:      r.PriceRetail,
		PriceRecommended: r.PriceRecommended,
		Availability:     availability,
		Listed:           listed,
		Image:            strings.TrimSpace(r.Image),
		VatID:            r.VatID,
		ShippingConfigID: r.ShippingConfigID,
		IsWeee:           r.IsWeee,
		IsLowPrice:       r.IsLowPrice,
	}
}

// GetAdminArticles 获取商品列表
func (h *Handler) GetAdminArticles(c *gin.Context) {
	page, pageSize := handlershared.PaginationFromQuery(c)
	articles, total, err := h.CatalogService.ListArticles(repository.ArticleListFilter{
		Page:       page,
		PageSize:   pageSize,
		Search:     strings.TrimSpace(c.Query("search")),
		OnlyListed: c.Query("listed") == "true",
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, articles, handlershared.BuildPagination(page, pageSize, total))
}

// GetAdminArticle 获取商品详情
func (h *Handler) GetAdminArticle(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	article, err := h.CatalogService.GetArticle(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, article)
}

// CreateArticle 创建商品
func (h *Handler) CreateArticle(c *gin.Context) {
	var req ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	article, err := h.CatalogService.CreateArticle(req.toModel())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	logger.Infow("admin_article_created", "admin_id", currentAdminID(c), "article_id", article.ID)
	response.Success(c, article)
}

// UpdateArticle 更新商品
func (h *Handler) UpdateArticle(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	article, err := h.CatalogService.UpdateArticle(id, req.toModel())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	logger.Infow("admin_article_updated", "admin_id", currentAdminID(c), "article_id", article.ID)
	response.Success(c, article)
}

// DeleteArticle 删除商品
func (h *Handler) DeleteArticle(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.CatalogService.DeleteArticle(id); err != nil {
		respondServiceError(c, err)
		return
	}
	logger.Infow("admin_article_deleted", "admin_id", currentAdminID(c), "article_id", id)
	response.Success(c, nil)
}

// ====================  税率管理  ====================

// VatRequest 税率请求
type VatRequest struct {
	Rate models.Money `json:"rate"`
}

// GetAdminVats 获取税率列表
func (h *Handler) GetAdminVats(c *gin.Context) {
	vats, err := h.CatalogService.ListVats()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, vats)
}

// CreateVat 创建税率
func (h *Handler) CreateVat(c *gin.Context) {
	var req VatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	vat, err := h.CatalogService.CreateVat(&models.Vat{Rate: req.Rate})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, vat)
}

// UpdateVat 更新税率
func (h *Handler) UpdateVat(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req VatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	vat, err := h.CatalogService.UpdateVat(id, &models.Vat{Rate: req.Rate})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, vat)
}

// DeleteVat 删除税率
func (h *Handler) DeleteVat(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.CatalogService.DeleteVat(id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// ====================  运费管理  ====================

// GetAdminShippings 获取运费方案列表
func (h *Handler) GetAdminShippings(c *gin.Context) {
	shippings, err := h.CatalogService.ListShippings()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, shippings)
}

// CreateShipping 创建运费方案（可内嵌适用条件）
func (h *Handler) CreateShipping(c *gin.Context) {
	var req models.Shipping
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	shipping, err := h.CatalogService.CreateShipping(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, shipping)
}

// UpdateShipping 更新运费方案
func (h *Handler) UpdateShipping(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req models.Shipping
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	shipping, err := h.CatalogService.UpdateShipping(id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, shipping)
}

// DeleteShipping 删除运费方案
func (h *Handler) DeleteShipping(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.CatalogService.DeleteShipping(id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// ShippingConfigRequest 运费配置请求
type ShippingConfigRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	ShippingIDs []uint `json:"shipping_ids" binding:"required,min=1"`
}

// GetAdminShippingConfig 获取运费配置
func (h *Handler) GetAdminShippingConfig(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	config, err := h.CatalogService.GetShippingConfig(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, config)
}

// CreateShippingConfig 创建运费配置
func (h *Handler) CreateShippingConfig(c *gin.Context) {
	var req ShippingConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	config, err := h.CatalogService.CreateShippingConfig(req.Name, req.ShippingIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, config)
}

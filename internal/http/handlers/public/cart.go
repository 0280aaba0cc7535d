package public

import (
	"strings"

	"github.com/sveneberth/viur-shop/internal/constants"
	"github.com/sveneberth/viur-shop/internal/http/response"
	"github.com/sveneberth/viur-shop/internal/models"
	"github.com/sveneberth/viur-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// CartArticleRequest 购物车商品数量变更请求
type CartArticleRequest struct {
	ArticleKey    string      `json:"article_key" binding:"required"`
	ParentCartKey string      `json:"parent_cart_key" binding:"required"`
	Quantity      *int        `json:"quantity" binding:"omitempty,gte=0"`
	QuantityMode  string      `json:"quantity_mode" binding:"omitempty,oneof=replace increase decrease"`
	ProjectData   models.JSON `json:"project_data"`
}

// CartArticleMoveRequest 购物车商品移动请求
type CartArticleMoveRequest struct {
	ArticleKey       string `json:"article_key" binding:"required"`
	ParentCartKey    string `json:"parent_cart_key" binding:"required"`
	NewParentCartKey string `json:"new_parent_cart_key" binding:"required"`
}

// CartNodeRequest 购物车节点新增/更新请求
// 引用字段为 null 表示不修改，空字符串表示清除
type CartNodeRequest struct {
	ParentCartKey      *string `json:"parent_cart_key"`
	CartType           string  `json:"cart_type" binding:"omitempty,oneof=basket wishlist"`
	Name               *string `json:"name" binding:"omitempty,max=255"`
	CustomerComment    *string `json:"customer_comment" binding:"omitempty,max=2000"`
	ShippingAddressKey *string `json:"shipping_address_key"`
	ShippingKey        *string `json:"shipping_key"`
}

// AddCartArticle 向购物车节点添加商品（默认累加）
func (h *Handler) AddCartArticle(c *gin.Context) {
	h.changeCartArticle(c, "article_add", constants.QuantityModeIncrease)
}

// UpdateCartArticle 修改购物车商品数量（默认覆盖）
func (h *Handler) UpdateCartArticle(c *gin.Context) {
	h.changeCartArticle(c, "article_update", constants.QuantityModeReplace)
}

func (h *Handler) changeCartArticle(c *gin.Context, operation, defaultMode string) {
	var req CartArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	input, err := req.toInput(defaultMode)
	if err != nil {
		respondCartError(c, err)
		return
	}

	rs := h.getRequestState(c)
	item, err := h.CartService.AddOrUpdateArticle(rs, input)
	h.ShopMetrics.ObserveCartMutation(operation, err)
	if err != nil {
		respondCartError(c, err)
		return
	}
	if item == nil {
		response.Success(c, nil)
		return
	}
	view, err := h.CartService.ItemView(c.Request.Context(), rs, item)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

func (r CartArticleRequest) toInput(defaultMode string) (service.AddOrUpdateArticleInput, error) {
	articleID, err := service.ParseKey(r.ArticleKey, "article_key")
	if err != nil {
		return service.AddOrUpdateArticleInput{}, err
	}
	parentID, err := service.ParseKey(r.ParentCartKey, "parent_cart_key")
	if err != nil {
		return service.AddOrUpdateArticleInput{}, err
	}
	quantity := 1
	if r.Quantity != nil {
		quantity = *r.Quantity
	}
	mode := strings.TrimSpace(r.QuantityMode)
	if mode == "" {
		mode = defaultMode
	}
	return service.AddOrUpdateArticleInput{
		ArticleID:    articleID,
		ParentID:     parentID,
		Quantity:     quantity,
		QuantityMode: mode,
		ProjectData:  r.ProjectData,
	}, nil
}

// RemoveCartArticle 从购物车节点移除商品
func (h *Handler) RemoveCartArticle(c *gin.Context) {
	articleID, err := service.ParseKey(c.Query("article_key"), "article_key")
	if err != nil {
		respondCartError(c, err)
		return
	}
	parentID, err := service.ParseKey(c.Query("parent_cart_key"), "parent_cart_key")
	if err != nil {
		respondCartError(c, err)
		return
	}

	rs := h.getRequestState(c)
	item, err := h.CartService.GetArticle(rs, articleID, parentID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	if item == nil {
		respondError(c, response.CodeNotFound, "error.cart_not_found", nil)
		return
	}
	_, err = h.CartService.AddOrUpdateArticle(rs, service.AddOrUpdateArticleInput{
		ArticleID:    articleID,
		ParentID:     parentID,
		Quantity:     0,
		QuantityMode: constants.QuantityModeReplace,
	})
	h.ShopMetrics.ObserveCartMutation("article_remove", err)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"removed": true})
}

// MoveCartArticle 在同一购物车内移动商品条目
func (h *Handler) MoveCartArticle(c *gin.Context) {
	var req CartArticleMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	articleID, err := service.ParseKey(req.ArticleKey, "article_key")
	if err != nil {
		respondCartError(c, err)
		return
	}
	parentID, err := service.ParseKey(req.ParentCartKey, "parent_cart_key")
	if err != nil {
		respondCartError(c, err)
		return
	}
	newParentID, err := service.ParseKey(req.NewParentCartKey, "new_parent_cart_key")
	if err != nil {
		respondCartError(c, err)
		return
	}

	rs := h.getRequestState(c)
	item, err := h.CartService.MoveArticle(rs, articleID, parentID, newParentID)
	h.ShopMetrics.ObserveCartMutation("article_move", err)
	if err != nil {
		respondCartError(c, err)
		return
	}
	view, err := h.CartService.ItemView(c.Request.Context(), rs, item)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// AddCartNode 新建购物车节点；未指定父节点时新建根节点
func (h *Handler) AddCartNode(c *gin.Context) {
	var req CartNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondCartError(c, err)
		return
	}

	rs := h.getRequestState(c)
	node, err := h.CartService.CartAdd(rs, input)
	h.ShopMetrics.ObserveCartMutation("node_add", err)
	if err != nil {
		respondCartError(c, err)
		return
	}
	h.respondNode(c, rs, node)
}

// UpdateCartNode 修改购物车节点
func (h *Handler) UpdateCartNode(c *gin.Context) {
	nodeID, err := service.ParseKey(c.Param("cart_key"), "cart_key")
	if err != nil {
		respondCartError(c, err)
		return
	}
	var req CartNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.ParentCartKey != nil {
		respondError(c, response.CodeBadRequest, "error.invalid_argument", nil)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondCartError(c, err)
		return
	}

	rs := h.getRequestState(c)
	node, err := h.CartService.CartUpdate(rs, nodeID, input)
	h.ShopMetrics.ObserveCartMutation("node_update", err)
	if err != nil {
		respondCartError(c, err)
		return
	}
	h.respondNode(c, rs, node)
}

func (h *Handler) respondNode(c *gin.Context, rs *service.RequestState, node *models.CartNode) {
	view, err := h.CartService.NodeView(c.Request.Context(), rs, node)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

func (r CartNodeRequest) toInput() (service.CartNodeInput, error) {
	input := service.CartNodeInput{
		CartType:        strings.TrimSpace(r.CartType),
		Name:            r.Name,
		CustomerComment: r.CustomerComment,
	}
	var err error
	if r.ParentCartKey != nil {
		parentID, err := service.ParseKey(*r.ParentCartKey, "parent_cart_key")
		if err != nil {
			return input, err
		}
		input.ParentID = &parentID
	}
	if input.ShippingAddressID, err = parseReferenceKey(r.ShippingAddressKey, "shipping_address_key"); err != nil {
		return input, err
	}
	if input.ShippingID, err = parseReferenceKey(r.ShippingKey, "shipping_key"); err != nil {
		return input, err
	}
	return input, nil
}

// parseReferenceKey nil 表示未提供；空字符串解析为 0 表示清除关联
func parseReferenceKey(value *string, parameter string) (*uint, error) {
	if value == nil {
		return nil, nil
	}
	if strings.TrimSpace(*value) == "" {
		none := uint(0)
		return &none, nil
	}
	id, err := service.ParseKey(*value, parameter)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// RemoveCartNode 递归删除购物车节点
func (h *Handler) RemoveCartNode(c *gin.Context) {
	nodeID, err := service.ParseKey(c.Param("cart_key"), "cart_key")
	if err != nil {
		respondCartError(c, err)
		return
	}
	err = h.CartService.CartRemove(h.getRequestState(c), nodeID)
	h.ShopMetrics.ObserveCartMutation("node_remove", err)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"removed": true})
}

// ClearCartNode 清空购物车节点下的全部子元素
func (h *Handler) ClearCartNode(c *gin.Context) {
	nodeID, err := service.ParseKey(c.Param("cart_key"), "cart_key")
	if err != nil {
		respondCartError(c, err)
		return
	}
	err = h.CartService.CartClear(h.getRequestState(c), nodeID)
	h.ShopMetrics.ObserveCartMutation("node_clear", err)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}

// ListCart 无 cart_key 时返回根节点，否则返回该节点的子元素
func (h *Handler) ListCart(c *gin.Context) {
	rs := h.getRequestState(c)
	parentID, err := service.ParseOptionalKey(c.Query("cart_key"), "cart_key")
	if err != nil {
		respondCartError(c, err)
		return
	}
	if parentID == nil {
		roots, err := h.CartService.RootNodes(rs)
		if err != nil {
			respondCartError(c, err)
			return
		}
		response.Success(c, roots)
		return
	}
	children, err := h.CartService.ListChildren(c.Request.Context(), rs, *parentID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, children)
}

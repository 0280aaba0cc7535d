package public

import (
	"github.com/sveneberth/viur-shop/internal/http/response"
	"github.com/sveneberth/viur-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// GetArticle 商品详情及当前请求上下文下的价格
func (h *Handler) GetArticle(c *gin.Context) {
	articleID, err := service.ParseKey(c.Param("article_key"), "article_key")
	if err != nil {
		respondArticleError(c, err)
		return
	}
	view, err := h.CartService.ArticleView(c.Request.Context(), h.getRequestState(c), articleID)
	if err != nil {
		respondArticleError(c, err)
		return
	}
	if !view.Listed {
		respondError(c, response.CodeNotFound, "error.article_not_found", nil)
		return
	}
	response.Success(c, view)
}

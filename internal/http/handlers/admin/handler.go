package admin

import "github.com/sveneberth/viur-shop/internal/provider"

// Handler 后台管理接口处理器入口
// 说明：该处理器仅用于商品、税率、运费与优惠的管理端 API。
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

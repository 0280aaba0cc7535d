package repository

// ArticleListFilter 查询商品列表的过滤条件
type ArticleListFilter struct {
	Page       int
	PageSize   int
	Search     string
	OnlyListed bool
}

// DiscountListFilter 查询优惠列表的过滤条件
type DiscountListFilter struct {
	Page                  int
	PageSize              int
	Search                string
	ActivateAutomatically *bool
}

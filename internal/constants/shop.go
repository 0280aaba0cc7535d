package constants

// 购物车类型
const (
	CartTypeBasket   = "basket"
	CartTypeWishlist = "wishlist"
)

// 优惠码类型
const (
	CodeTypeNone       = "none"
	CodeTypeUniversal  = "universal"
	CodeTypeIndividual = "individual"
)

// 优惠作用域
const (
	ApplicationDomainBasket  = "basket"
	ApplicationDomainArticle = "article"
	ApplicationDomainAll     = "all"
)

// 多条件组合方式
const (
	ConditionOperatorOneOf = "one_of"
	ConditionOperatorAll   = "all"
)

// 优惠类型
const (
	DiscountTypePercentage  = "percentage"
	DiscountTypeAbsolute    = "absolute"
	DiscountTypeFreeArticle = "free_article"
)

// 优惠校验上下文
const (
	DiscountContextNormal                   = "normal"
	DiscountContextAutomaticallyPrevalidate = "automatically_prevalidate"
	DiscountContextAutomaticallyLive        = "automatically_live"
)

// 客户分组
const (
	CustomerGroupAll          = "all"
	CustomerGroupFirstOrder   = "first_order"
	CustomerGroupFurtherOrder = "further_order"
)

// 数量变更模式
const (
	QuantityModeReplace  = "replace"
	QuantityModeIncrease = "increase"
	QuantityModeDecrease = "decrease"
)

// 订单状态（仅用于客户分组统计）
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCanceled  = "canceled"
)

// 树节点类型标签
const (
	SkelTypeNode = "node"
	SkelTypeLeaf = "leaf"
)

// 条件用量不限
const QuantityVolumeUnlimited = -1

// 队列与任务
const (
	QueueDefault                 = "default"
	QueueCritical                = "critical"
	TaskDiscountGenerateCodes    = "discount:generate_codes"
	TaskDiscountRefreshAutomatic = "discount:refresh_automatic"
)

// 账号状态
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

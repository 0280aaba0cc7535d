package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sveneberth/viur-shop/internal/constants"
	"github.com/sveneberth/viur-shop/internal/logger"
	"github.com/sveneberth/viur-shop/internal/models"
	"github.com/sveneberth/viur-shop/internal/repository"

	"gorm.io/gorm"
)

// AddOrUpdateArticleInput 商品数量变更输入
type AddOrUpdateArticleInput struct {
	ArticleID    uint
	ParentID     uint
	Quantity     int
	QuantityMode string
	ProjectData  models.JSON
}

// CartNodeInput 节点新增或更新输入
// 指针为 nil 表示未提供；ID 指向 0 表示清除关联
// 优惠仅由 DiscountService 校验通过后写入
type CartNodeInput struct {
	ParentID          *uint
	CartType          string
	Name              *string
	CustomerComment   *string
	ShippingAddressID *uint
	ShippingID        *uint

	discountID *uint
}

// withDiscount 返回挂载（0 为移除）优惠的输入
func (in CartNodeInput) withDiscount(id uint) CartNodeInput {
	in.discountID = &id
	return in
}

// CartService 购物车树的变更与读取
type CartService struct {
	cartRepo     repository.CartRepository
	articleRepo  repository.ArticleRepository
	userRepo     repository.UserRepository
	addressRepo  repository.AddressRepository
	shippingRepo repository.ShippingRepository
	discountRepo repository.DiscountRepository
	tree         *CartTree
	aggregator   *CartAggregator
	shipping     *ShippingService
}

// NewCartService 创建购物车服务
func NewCartService(
	cartRepo repository.CartRepository,
	articleRepo repository.ArticleRepository,
	userRepo repository.UserRepository,
	addressRepo repository.AddressRepository,
	shippingRepo repository.ShippingRepository,
	discountRepo repository.DiscountRepository,
	tree *CartTree,
	aggregator *CartAggregator,
	shipping *ShippingService,
) *CartService {
	return &CartService{
		cartRepo:     cartRepo,
		articleRepo:  articleRepo,
		userRepo:     userRepo,
		addressRepo:  addressRepo,
		shippingRepo: shippingRepo,
		discountRepo: discountRepo,
		tree:         tree,
		aggregator:   aggregator,
		shipping:     shipping,
	}
}

// Tree 返回购物车树读取器
func (s *CartService) Tree() *CartTree {
	return s.tree
}

// Aggregator 返回节点汇总器
func (s *CartService) Aggregator() *CartAggregator {
	return s.aggregator
}

// CurrentSessionCartKey 当前会话购物车的根节点ID，不存在时自动创建
// 登录顾客记录在账号上的购物车优先，可跨设备共享
func (s *CartService) CurrentSessionCartKey(rs *RequestState) (uint, error) {
	var user *models.User
	if rs.UserID != nil {
		u, err := s.userRepo.GetByID(*rs.UserID)
		if err != nil {
			return 0, err
		}
		user = u
		if user != nil && user.BasketID != nil {
			basket, err := s.tree.Node(rs, *user.BasketID)
			if err != nil {
				return 0, err
			}
			if basket != nil {
				return basket.ID, nil
			}
			logger.Warnw("user_basket_missing", "user_id", user.ID, "basket_id", *user.BasketID)
		}
	}

	if rs.SessionKey != "" {
		node, err := s.cartRepo.FindSessionRoot(rs.SessionKey)
		if err != nil {
			return 0, err
		}
		if node != nil {
			rs.nodes[node.ID] = node
			if user != nil {
				if err := s.attachBasket(user, node); err != nil {
					return 0, err
				}
			}
			return node.ID, nil
		}
	}

	owner := "__guest__"
	if user != nil {
		owner = user.Email
	}
	root := &models.CartNode{
		IsRootNode: true,
		CartType:   constants.CartTypeBasket,
		Name:       fmt.Sprintf("Session Cart of %s created at %s", owner, rs.Now.UTC().Format("2006-01-02 15:04:05")),
		SessionKey: rs.SessionKey,
		UserID:     rs.UserID,
	}
	if err := s.cartRepo.CreateNode(root); err != nil {
		return 0, err
	}
	rs.nodes[root.ID] = root
	logger.Infow("session_cart_created", "cart_id", root.ID, "user_id", rs.UserID)
	if user != nil {
		if err := s.attachBasket(user, root); err != nil {
			return 0, err
		}
	}
	return root.ID, nil
}

func (s *CartService) attachBasket(user *models.User, node *models.CartNode) error {
	if err := s.userRepo.SetBasket(user.ID, &node.ID); err != nil {
		return err
	}
	if node.UserID == nil {
		node.UserID = &user.ID
		if err := s.cartRepo.UpdateNode(node); err != nil {
			return err
		}
	}
	return nil
}

// CurrentSessionCart 当前会话购物车
func (s *CartService) CurrentSessionCart(rs *RequestState) (*models.CartNode, error) {
	key, err := s.CurrentSessionCartKey(rs)
	if err != nil {
		return nil, err
	}
	node, err := s.tree.Node(rs, key)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, invalidState("session cart %d not in database", key)
	}
	return node, nil
}

// RootNodes 会话购物车与顾客的心愿单
func (s *CartService) RootNodes(rs *RequestState) ([]RootNodeView, error) {
	basket, err := s.CurrentSessionCart(rs)
	if err != nil {
		return nil, err
	}
	roots := []RootNodeView{{Key: FormatKey(basket.ID), Name: basket.Name, CartType: constants.CartTypeBasket}}
	if rs.UserID == nil {
		return roots, nil
	}
	wishlists, err := s.cartRepo.ListRootNodesByUser(*rs.UserID, constants.CartTypeWishlist)
	if err != nil {
		return nil, err
	}
	for _, wishlist := range wishlists {
		roots = append(roots, RootNodeView{Key: FormatKey(wishlist.ID), Name: wishlist.Name, CartType: constants.CartTypeWishlist})
	}
	return roots, nil
}

// accessibleNode 读取当前顾客或会话有权访问的节点
func (s *CartService) accessibleNode(rs *RequestState, id uint) (*models.CartNode, error) {
	node, err := s.tree.Node(rs, id)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, notFound("cart node %d", id)
	}
	root := node
	if !node.IsRootNode {
		root, err = s.tree.Node(rs, node.RepoID())
		if err != nil {
			return nil, err
		}
		if root == nil {
			return nil, invalidState("root of cart node %d vanished", id)
		}
	}
	if !ownsRoot(rs, root) {
		return nil, notFound("cart node %d", id)
	}
	return node, nil
}

func ownsRoot(rs *RequestState, root *models.CartNode) bool {
	if root.UserID != nil && rs.UserID != nil && *root.UserID == *rs.UserID {
		return true
	}
	return root.SessionKey != "" && root.SessionKey == rs.SessionKey
}

// GetNode 读取当前会话可访问的节点
func (s *CartService) GetNode(rs *RequestState, id uint) (*models.CartNode, error) {
	return s.accessibleNode(rs, id)
}

// GetChildren 节点的直接子元素
func (s *CartService) GetChildren(rs *RequestState, parentID uint) ([]CartChild, error) {
	if _, err := s.accessibleNode(rs, parentID); err != nil {
		return nil, err
	}
	return s.tree.Children(rs, parentID)
}

// ListChildren 节点子元素视图（带 skel_type 标记）
func (s *CartService) ListChildren(ctx context.Context, rs *RequestState, parentID uint) ([]interface{}, error) {
	children, err := s.GetChildren(rs, parentID)
	if err != nil {
		return nil, err
	}
	views := make([]interface{}, 0, len(children))
	for _, child := range children {
		view, err := s.ChildView(ctx, rs, child)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// GetArticle 查找节点下指定商品的条目，不存在时返回 nil
func (s *CartService) GetArticle(rs *RequestState, articleID, parentID uint) (*models.CartItem, error) {
	if _, err := s.accessibleNode(rs, parentID); err != nil {
		return nil, err
	}
	return s.cartRepo.GetItemByArticle(parentID, articleID)
}

// AddOrUpdateArticle 新增或调整商品数量
// 结果数量为 0 时删除条目并返回 nil
func (s *CartService) AddOrUpdateArticle(rs *RequestState, input AddOrUpdateArticleInput) (*models.CartItem, error) {
	parent, err := s.accessibleNode(rs, input.ParentID)
	if err != nil {
		return nil, err
	}
	item, err := s.cartRepo.GetItemByArticle(parent.ID, input.ArticleID)
	if err != nil {
		return nil, err
	}
	isNew := item == nil
	if isNew {
		article, err := s.articleRepo.GetByID(input.ArticleID)
		if err != nil {
			return nil, err
		}
		if article == nil {
			return nil, notFound("article %d", input.ArticleID)
		}
		item = &models.CartItem{
			ParentEntryID: parent.ID,
			ParentRepoID:  parent.RepoID(),
			ArticleID:     article.ID,
			Article:       article,
		}
		item.CopySnapshot(article)
	}

	quantity, err := nextQuantity(item.Quantity, input.Quantity, input.QuantityMode)
	if err != nil {
		return nil, err
	}
	defer rs.InvalidateCart()
	if quantity == 0 {
		if !isNew {
			if err := s.cartRepo.DeleteItem(item.ID); err != nil {
				return nil, err
			}
			logger.Infow("cart_item_removed", "item_id", item.ID, "parent_id", parent.ID)
		}
		return nil, nil
	}
	item.Quantity = quantity
	if input.ProjectData != nil {
		item.ProjectData = input.ProjectData
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if isNew {
		err = s.cartRepo.CreateItem(item)
	} else {
		err = s.cartRepo.UpdateItem(item)
	}
	if err != nil {
		return nil, err
	}
	logger.Infow("cart_item_saved",
		"item_id", item.ID,
		"article_id", item.ArticleID,
		"parent_id", parent.ID,
		"quantity", item.Quantity,
		"created", isNew,
	)
	return item, nil
}

// nextQuantity 数量状态机
func nextQuantity(current, requested int, mode string) (int, error) {
	if requested == 0 && (mode == constants.QuantityModeIncrease || mode == constants.QuantityModeDecrease) {
		return 0, invalidArgument("increase/decrease quantity by zero is pointless")
	}
	var quantity int
	switch mode {
	case constants.QuantityModeReplace:
		quantity = requested
	case constants.QuantityModeIncrease:
		quantity = current + requested
	case constants.QuantityModeDecrease:
		quantity = current - requested
	default:
		return 0, invalidArgument("invalid quantity_mode %q, must be replace, increase or decrease", mode)
	}
	if quantity < 0 {
		return 0, invalidArgument("quantity cannot be negative (reached %d)", quantity)
	}
	return quantity, nil
}

// MoveArticle 将商品条目移动到同一购物车内的另一个节点
func (s *CartService) MoveArticle(rs *RequestState, articleID, parentID, newParentID uint) (*models.CartItem, error) {
	item, err := s.GetArticle(rs, articleID, parentID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, notFound("article %d does not exist in cart node %d", articleID, parentID)
	}
	target, err := s.accessibleNode(rs, newParentID)
	if err != nil {
		return nil, err
	}
	if target.RepoID() != item.ParentRepoID {
		return nil, invalidArgument("target node %d is inside a different repo", newParentID)
	}
	item.ParentEntryID = target.ID
	if err := s.cartRepo.UpdateItem(item); err != nil {
		return nil, err
	}
	rs.InvalidateCart()
	logger.Infow("cart_item_moved", "item_id", item.ID, "from", parentID, "to", target.ID)
	return item, nil
}

// CartAdd 新建节点；未指定父节点时新建根节点（心愿单）
func (s *CartService) CartAdd(rs *RequestState, input CartNodeInput) (*models.CartNode, error) {
	node := &models.CartNode{}
	if input.ParentID == nil {
		cartType := strings.TrimSpace(input.CartType)
		if cartType == "" {
			cartType = constants.CartTypeWishlist
		}
		node.IsRootNode = true
		node.CartType = cartType
		node.UserID = rs.UserID
		node.SessionKey = rs.SessionKey
	} else {
		parent, err := s.accessibleNode(rs, *input.ParentID)
		if err != nil {
			return nil, err
		}
		repoID := parent.RepoID()
		node.ParentEntryID = &parent.ID
		node.ParentRepoID = &repoID
		node.CartType = input.CartType
	}
	if err := s.applyNodeInput(node, input); err != nil {
		return nil, err
	}
	if err := node.Validate(); err != nil {
		return nil, err
	}
	if err := s.cartRepo.CreateNode(node); err != nil {
		return nil, err
	}
	rs.InvalidateCart()
	logger.Infow("cart_node_created", "node_id", node.ID, "parent_id", node.ParentEntryID, "root", node.IsRootNode)
	return s.reload(rs, node.ID)
}

// CartUpdate 仅修改显式提供的字段
func (s *CartService) CartUpdate(rs *RequestState, nodeID uint, input CartNodeInput) (*models.CartNode, error) {
	node, err := s.accessibleNode(rs, nodeID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.CartType) != "" {
		if !node.IsRootNode {
			return nil, invalidArgument("cart_type can only be set on root nodes")
		}
		node.CartType = input.CartType
	}
	if err := s.applyNodeInput(node, input); err != nil {
		return nil, err
	}
	if err := node.Validate(); err != nil {
		return nil, err
	}
	if err := s.cartRepo.UpdateNode(node); err != nil {
		return nil, err
	}
	rs.InvalidateCart()
	return s.reload(rs, node.ID)
}

func (s *CartService) applyNodeInput(node *models.CartNode, input CartNodeInput) error {
	if input.Name != nil {
		node.Name = strings.TrimSpace(*input.Name)
	}
	if input.CustomerComment != nil {
		node.CustomerComment = *input.CustomerComment
	}
	if input.ShippingAddressID != nil {
		id, err := s.resolveRef(*input.ShippingAddressID, "shipping_address", func(id uint) (bool, error) {
			address, err := s.addressRepo.GetByID(id)
			return address != nil, err
		})
		if err != nil {
			return err
		}
		node.ShippingAddressID = id
		node.ShippingAddress = nil
	}
	if input.ShippingID != nil {
		id, err := s.resolveRef(*input.ShippingID, "shipping", func(id uint) (bool, error) {
			shipping, err := s.shippingRepo.GetByID(id)
			return shipping != nil, err
		})
		if err != nil {
			return err
		}
		node.ShippingID = id
		node.Shipping = nil
	}
	if input.discountID != nil {
		id, err := s.resolveRef(*input.discountID, "discount", func(id uint) (bool, error) {
			discount, err := s.discountRepo.GetByID(id)
			return discount != nil, err
		})
		if err != nil {
			return err
		}
		node.DiscountID = id
		node.Discount = nil
	}
	return nil
}

func (s *CartService) resolveRef(id uint, name string, exists func(uint) (bool, error)) (*uint, error) {
	if id == 0 {
		return nil, nil
	}
	ok, err := exists(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("%s %d", name, id)
	}
	return &id, nil
}

func (s *CartService) reload(rs *RequestState, id uint) (*models.CartNode, error) {
	node, err := s.tree.Node(rs, id)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, invalidState("cart node %d vanished after write", id)
	}
	return node, nil
}

// CartRemove 递归删除节点，根节点不允许删除
func (s *CartService) CartRemove(rs *RequestState, nodeID uint) error {
	node, err := s.accessibleNode(rs, nodeID)
	if err != nil {
		return err
	}
	if node.IsRootNode || node.ParentEntryID == nil {
		logger.Warnw("cart_root_node_remove_rejected", "node_id", node.ID)
		return notImplemented("cannot delete root node")
	}
	err = s.cartRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)
		if err := deleteChildren(repo, node.ID); err != nil {
			return err
		}
		return repo.DeleteNode(node.ID)
	})
	if err != nil {
		return err
	}
	rs.InvalidateCart()
	logger.Infow("cart_node_removed", "node_id", node.ID)
	return nil
}

// CartClear 删除节点下的全部子元素
func (s *CartService) CartClear(rs *RequestState, nodeID uint) error {
	node, err := s.accessibleNode(rs, nodeID)
	if err != nil {
		return err
	}
	err = s.cartRepo.Transaction(func(tx *gorm.DB) error {
		return deleteChildren(s.cartRepo.WithTx(tx), node.ID)
	})
	if err != nil {
		return err
	}
	rs.InvalidateCart()
	logger.Infow("cart_node_cleared", "node_id", node.ID)
	return nil
}

// deleteChildren 先删子节点的子树，再删本层
func deleteChildren(repo repository.CartRepository, parentID uint) error {
	nodes, err := repo.ListChildNodes(parentID, 0)
	if err != nil {
		return err
	}
	for _, child := range nodes {
		if err := deleteChildren(repo, child.ID); err != nil {
			return err
		}
		if err := repo.DeleteNode(child.ID); err != nil {
			return err
		}
	}
	items, err := repo.ListChildItems(parentID, 0)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := repo.DeleteItem(item.ID); err != nil {
			return err
		}
	}
	return nil
}

// AddNewParent 在条目当前位置插入一个新节点并把条目移入其中
func (s *CartService) AddNewParent(rs *RequestState, item *models.CartItem, name string) (*models.CartNode, error) {
	if item == nil {
		return nil, notFound("cart item")
	}
	parentID := item.ParentEntryID
	node, err := s.CartAdd(rs, CartNodeInput{ParentID: &parentID, Name: &name})
	if err != nil {
		return nil, err
	}
	item.ParentEntryID = node.ID
	if err := s.cartRepo.UpdateItem(item); err != nil {
		return nil, err
	}
	rs.InvalidateCart()
	logger.Infow("cart_item_wrapped", "item_id", item.ID, "node_id", node.ID)
	return node, nil
}

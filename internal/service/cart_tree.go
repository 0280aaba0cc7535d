package service

import (
	"github.com/sveneberth/viur-shop/internal/constants"
	"github.com/sveneberth/viur-shop/internal/models"
	"github.com/sveneberth/viur-shop/internal/repository"
)

// CartChild 购物车树的子元素，Kind 决定 Node 与 Leaf 哪个有效
type CartChild struct {
	Kind string
	Node *models.CartNode
	Leaf *models.CartItem
}

// NodeChild 包装子节点
func NodeChild(node *models.CartNode) CartChild {
	return CartChild{Kind: constants.SkelTypeNode, Node: node}
}

// LeafChild 包装商品条目
func LeafChild(item *models.CartItem) CartChild {
	return CartChild{Kind: constants.SkelTypeLeaf, Leaf: item}
}

// ID 返回子元素主键
func (c CartChild) ID() uint {
	switch c.Kind {
	case constants.SkelTypeNode:
		return c.Node.ID
	case constants.SkelTypeLeaf:
		return c.Leaf.ID
	}
	return 0
}

// CartTree 购物车树的读取，子元素与节点按请求缓存
type CartTree struct {
	repo  repository.CartRepository
	limit int
}

// NewCartTree 创建购物车树读取器
func NewCartTree(repo repository.CartRepository, limit int) *CartTree {
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	return &CartTree{repo: repo, limit: limit}
}

// Repo 返回底层仓库
func (t *CartTree) Repo() repository.CartRepository {
	return t.repo
}

// Node 读取节点，不存在时返回 nil
func (t *CartTree) Node(rs *RequestState, id uint) (*models.CartNode, error) {
	if id == 0 {
		return nil, nil
	}
	if node, ok := rs.nodes[id]; ok {
		return node, nil
	}
	node, err := t.repo.GetNode(id)
	if err != nil {
		return nil, err
	}
	if node != nil {
		rs.nodes[id] = node
	}
	return node, nil
}

// Children 返回节点的直接子元素，先子节点后商品
func (t *CartTree) Children(rs *RequestState, parentID uint) ([]CartChild, error) {
	if children, ok := rs.children[parentID]; ok {
		return children, nil
	}
	nodes, err := t.repo.ListChildNodes(parentID, t.limit)
	if err != nil {
		return nil, err
	}
	items, err := t.repo.ListChildItems(parentID, t.limit)
	if err != nil {
		return nil, err
	}
	children := make([]CartChild, 0, len(nodes)+len(items))
	for i := range nodes {
		rs.nodes[nodes[i].ID] = &nodes[i]
		children = append(children, NodeChild(&nodes[i]))
	}
	for i := range items {
		children = append(children, LeafChild(&items[i]))
	}
	rs.children[parentID] = children
	return children, nil
}

// Ancestors 返回从根节点到 nodeID（含）的路径
func (t *CartTree) Ancestors(rs *RequestState, nodeID uint) ([]*models.CartNode, error) {
	var path []*models.CartNode
	seen := make(map[uint]struct{})
	for id := nodeID; id != 0; {
		if _, ok := seen[id]; ok {
			return nil, invalidState("cycle in cart tree at node %d", id)
		}
		seen[id] = struct{}{}
		node, err := t.Node(rs, id)
		if err != nil {
			return nil, err
		}
		if node == nil {
			return nil, invalidState("cart node %d vanished", id)
		}
		path = append(path, node)
		if node.ParentEntryID == nil || node.IsRootNode {
			break
		}
		id = *node.ParentEntryID
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// Walk 深度优先遍历节点下的全部商品条目
func (t *CartTree) Walk(rs *RequestState, nodeID uint, fn func(item *models.CartItem) error) error {
	children, err := t.Children(rs, nodeID)
	if err != nil {
		return err
	}
	for _, child := range children {
		switch child.Kind {
		case constants.SkelTypeNode:
			if err := t.Walk(rs, child.Node.ID, fn); err != nil {
				return err
			}
		case constants.SkelTypeLeaf:
			if err := fn(child.Leaf); err != nil {
				return err
			}
		}
	}
	return nil
}

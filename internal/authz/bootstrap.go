package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// 预置角色名称
const (
	RoleReadonly        = "readonly_auditor"
	RoleCatalogManager  = "catalog_manager"
	RoleDiscountManager = "discount_manager"
	RoleShopManager     = "shop_manager"
)

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: RoleReadonly,
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     RoleCatalogManager,
			Inherits: []string{RoleReadonly},
			Policies: []Policy{
				{Object: "/admin/articles", Action: "*"},
				{Object: "/admin/articles/:id", Action: "*"},
				{Object: "/admin/vats", Action: "*"},
				{Object: "/admin/vats/:id", Action: "*"},
				{Object: "/admin/shippings", Action: "*"},
				{Object: "/admin/shippings/:id", Action: "*"},
				{Object: "/admin/shipping-configs", Action: "*"},
				{Object: "/admin/shipping-configs/:id", Action: "*"},
			},
			Immutable: true,
		},
		{
			Role:     RoleDiscountManager,
			Inherits: []string{RoleReadonly},
			Policies: []Policy{
				{Object: "/admin/discounts", Action: "*"},
				{Object: "/admin/discounts/:id", Action: "*"},
				{Object: "/admin/discounts/conditions/:id/codes", Action: "POST"},
				{Object: "/admin/discounts/automatic/refresh", Action: "POST"},
			},
			Immutable: true,
		},
		{
			Role:      RoleShopManager,
			Inherits:  []string{RoleCatalogManager, RoleDiscountManager},
			Immutable: true,
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	changed := false
	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}

		exists, err := s.enforcer.HasNamedGroupingPolicy("g", role, roleAnchor)
		if err != nil {
			return fmt.Errorf("check builtin role failed: %w", err)
		}
		if !exists {
			added, err := s.enforcer.AddNamedGroupingPolicy("g", role, roleAnchor)
			if err != nil {
				return fmt.Errorf("create builtin role failed: %w", err)
			}
			if added {
				changed = true
			}
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			added, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole)
			if err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
			if added {
				changed = true
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			added, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action)
			if err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
			if added {
				changed = true
			}
		}
	}

	if changed {
		return s.saveAndReload()
	}
	return nil
}

package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestEnforceAdminWithRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("pricing", "/admin/discounts/:id", "GET"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}
	if err := svc.SetAdminRoles(1, []string{"pricing"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}

	allow, err := svc.EnforceAdmin(1, "/api/v1/admin/discounts/42", "get")
	if err != nil {
		t.Fatalf("enforce allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow=true")
	}

	allow, err = svc.EnforceAdmin(1, "/api/v1/admin/discounts/42", "DELETE")
	if err != nil {
		t.Fatalf("enforce deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false")
	}
}

func TestSetAdminRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("catalog", "/admin/articles", "GET"); err != nil {
		t.Fatalf("grant catalog policy failed: %v", err)
	}
	if err := svc.GrantRolePolicy("pricing", "/admin/discounts", "GET"); err != nil {
		t.Fatalf("grant pricing policy failed: %v", err)
	}

	if err := svc.SetAdminRoles(2, []string{"catalog"}); err != nil {
		t.Fatalf("set first role failed: %v", err)
	}
	roles, err := svc.GetAdminRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:catalog" {
		t.Fatalf("roles want [role:catalog], got=%v", roles)
	}

	if err := svc.SetAdminRoles(2, []string{"pricing"}); err != nil {
		t.Fatalf("set second role failed: %v", err)
	}
	allow, err := svc.EnforceAdmin(2, "/admin/articles", "GET")
	if err != nil {
		t.Fatalf("enforce old role failed: %v", err)
	}
	if allow {
		t.Fatalf("expected old role permission removed")
	}
	allow, err = svc.EnforceAdmin(2, "/admin/discounts", "GET")
	if err != nil {
		t.Fatalf("enforce new role failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected new role permission granted")
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/admin/discounts/:id", want: "/admin/discounts/:id"},
		{in: "/admin/vats/:id", want: "/admin/vats/:id"},
		{in: "admin/articles", want: "/admin/articles"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	wantRoles := map[string]bool{
		"role:readonly_auditor": true,
		"role:catalog_manager":  true,
		"role:discount_manager": true,
		"role:shop_manager":     true,
	}
	for _, role := range roles {
		delete(wantRoles, role)
	}
	if len(wantRoles) != 0 {
		t.Fatalf("builtin roles missing: %v", wantRoles)
	}

	if err := svc.SetAdminRoles(3, []string{RoleDiscountManager}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}
	allow, err := svc.EnforceAdmin(3, "/admin/articles", "GET")
	if err != nil {
		t.Fatalf("enforce inherited readonly failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected inherited readonly permission")
	}
	allow, err = svc.EnforceAdmin(3, "/admin/articles/7", "PUT")
	if err != nil {
		t.Fatalf("enforce catalog write failed: %v", err)
	}
	if allow {
		t.Fatalf("expected discount manager denied catalog write")
	}
	allow, err = svc.EnforceAdmin(3, "/api/v1/admin/discounts/conditions/9/codes", "POST")
	if err != nil {
		t.Fatalf("enforce code generation failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected discount manager allowed to generate codes")
	}

	if err := svc.SetAdminRoles(4, []string{RoleShopManager}); err != nil {
		t.Fatalf("set shop manager failed: %v", err)
	}
	allow, err = svc.EnforceAdmin(4, "/admin/vats/1", "DELETE")
	if err != nil {
		t.Fatalf("enforce shop manager failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected shop manager to inherit catalog permissions")
	}
}

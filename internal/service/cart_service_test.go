package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sveneberth/viur-shop/internal/constants"
	"github.com/sveneberth/viur-shop/internal/models"
)

func TestNextQuantity(t *testing.T) {
	cases := []struct {
		name      string
		current   int
		requested int
		mode      string
		want      int
		wantErr   bool
	}{
		{name: "replace", current: 3, requested: 5, mode: constants.QuantityModeReplace, want: 5},
		{name: "replace_zero", current: 3, requested: 0, mode: constants.QuantityModeReplace, want: 0},
		{name: "increase", current: 3, requested: 2, mode: constants.QuantityModeIncrease, want: 5},
		{name: "decrease", current: 3, requested: 2, mode: constants.QuantityModeDecrease, want: 1},
		{name: "decrease_to_zero", current: 3, requested: 3, mode: constants.QuantityModeDecrease, want: 0},
		{name: "decrease_below_zero", current: 1, requested: 2, mode: constants.QuantityModeDecrease, wantErr: true},
		{name: "increase_by_zero", current: 1, requested: 0, mode: constants.QuantityModeIncrease, wantErr: true},
		{name: "decrease_by_zero", current: 1, requested: 0, mode: constants.QuantityModeDecrease, wantErr: true},
		{name: "replace_negative", current: 1, requested: -1, mode: constants.QuantityModeReplace, wantErr: true},
		{name: "unknown_mode", current: 1, requested: 1, mode: "double", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := nextQuantity(tc.current, tc.requested, tc.mode)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Fatalf("want ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}
}

func TestCurrentSessionCartIsCreatedOnce(t *testing.T) {
	env := setupShopTest(t)
	rs := env.session("session-a")

	first, err := env.carts.CurrentSessionCartKey(rs)
	if err != nil {
		t.Fatalf("first key failed: %v", err)
	}
	second, err := env.carts.CurrentSessionCartKey(env.session("session-a"))
	if err != nil {
		t.Fatalf("second key failed: %v", err)
	}
	if first == 0 || first != second {
		t.Fatalf("expected stable session cart, got %d and %d", first, second)
	}
	other, err := env.carts.CurrentSessionCartKey(env.session("session-b"))
	if err != nil {
		t.Fatalf("other key failed: %v", err)
	}
	if other == first {
		t.Fatalf("different sessions must not share a cart")
	}

	cart := env.basket(t, rs)
	if !cart.IsRootNode || cart.CartType != constants.CartTypeBasket {
		t.Fatalf("unexpected session cart: %+v", cart)
	}
}

func TestAddOrUpdateArticleQuantityModes(t *testing.T) {
	env := setupShopTest(t)
	rs := env.session("quantity")
	article := env.createArticle(t, "Kaffee", 12.5, nil)
	cart := env.basket(t, rs)

	item := env.addArticle(t, rs, article.ID, cart.ID, 2)
	if item.Quantity != 2 || item.ShopName != "Kaffee" {
		t.Fatalf("unexpected item after add: %+v", item)
	}

	again := env.addArticle(t, rs, article.ID, cart.ID, 2)
	if again.ID != item.ID || again.Quantity != 2 {
		t.Fatalf("replace should be idempotent, got %+v", again)
	}

	increased, err := env.carts.AddOrUpdateArticle(rs, AddOrUpdateArticleInput{
		ArticleID:    article.ID,
		ParentID:     cart.ID,
		Quantity:     3,
		QuantityMode: constants.QuantityModeIncrease,
	})
	if err != nil || increased.Quantity != 5 {
		t.Fatalf("increase failed: %+v (%v)", increased, err)
	}

	_, err = env.carts.AddOrUpdateArticle(rs, AddOrUpdateArticleInput{
		ArticleID:    article.ID,
		ParentID:     cart.ID,
		Quantity:     6,
		QuantityMode: constants.QuantityModeDecrease,
	})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument for negative quantity, got %v", err)
	}

	removed, err := env.carts.AddOrUpdateArticle(rs, AddOrUpdateArticleInput{
		ArticleID:    article.ID,
		ParentID:     cart.ID,
		Quantity:     0,
		QuantityMode: constants.QuantityModeReplace,
	})
	if err != nil || removed != nil {
		t.Fatalf("quantity 0 should delete, got %+v (%v)", removed, err)
	}
	found, err := env.carts.GetArticle(rs, article.ID, cart.ID)
	if err != nil || found != nil {
		t.Fatalf("item should be gone, got %+v (%v)", found, err)
	}
}

func TestAddOrUpdateArticleUnknownArticle(t *testing.T) {
	env := setupShopTest(t)
	rs := env.session("unknown")
	cart := env.basket(t, rs)

	_, err := env.carts.AddOrUpdateArticle(rs, AddOrUpdateArticleInput{
		ArticleID:    999,
		ParentID:     cart.ID,
		Quantity:     1,
		QuantityMode: constants.QuantityModeReplace,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestForeignSessionCannotAccessCart(t *testing.T) {
	env := setupShopTest(t)
	owner := env.session("owner")
	article := env.createArticle(t, "Kaffee", 10, nil)
	cart := env.basket(t, owner)
	env.addArticle(t, owner, article.ID, cart.ID, 1)

	intruder := env.session("intruder")
	if _, err := env.carts.GetNode(intruder, cart.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound for foreign node, got %v", err)
	}
	_, err := env.carts.AddOrUpdateArticle(intruder, AddOrUpdateArticleInput{
		ArticleID:    article.ID,
		ParentID:     cart.ID,
		Quantity:     1,
		QuantityMode: constants.QuantityModeReplace,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound for foreign write, got %v", err)
	}
}

func TestCartNodeLifecycle(t *testing.T) {
	env := setupShopTest(t)
	rs := env.session("nodes")
	article := env.createArticle(t, "Mühle", 40, nil)
	cart := env.basket(t, rs)

	name := "Geschenk"
	group, err := env.carts.CartAdd(rs, CartNodeInput{ParentID: &cart.ID, Name: &name})
	if err != nil {
		t.Fatalf("cart add failed: %v", err)
	}
	if group.IsRootNode || group.RepoID() != cart.ID {
		t.Fatalf("unexpected child node: %+v", group)
	}
	env.addArticle(t, rs, article.ID, group.ID, 1)

	comment := "bitte verpacken"
	updated, err := env.carts.CartUpdate(rs, group.ID, CartNodeInput{CustomerComment: &comment})
	if err != nil || updated.CustomerComment != comment || updated.Name != name {
		t.Fatalf("cart update failed: %+v (%v)", updated, err)
	}
	if _, err := env.carts.CartUpdate(rs, group.ID, CartNodeInput{CartType: constants.CartTypeWishlist}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("cart_type on child node should be rejected, got %v", err)
	}

	children, err := env.carts.GetChildren(rs, cart.ID)
	if err != nil || len(children) != 1 || children[0].Kind != constants.SkelTypeNode {
		t.Fatalf("unexpected children: %+v (%v)", children, err)
	}

	if err := env.carts.CartRemove(rs, cart.ID); !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("root removal should be rejected, got %v", err)
	}
	if err := env.carts.CartRemove(rs, group.ID); err != nil {
		t.Fatalf("cart remove failed: %v", err)
	}
	var items int64
	env.db.Model(&models.CartItem{}).Where("parent_repo_id = ?", cart.ID).Count(&items)
	if items != 0 {
		t.Fatalf("subtree items should be deleted, %d left", items)
	}
}

func TestCartClearKeepsNode(t *testing.T) {
	env := setupShopTest(t)
	rs := env.session("clear")
	first := env.createArticle(t, "A", 1, nil)
	second := env.createArticle(t, "B", 2, nil)
	cart := env.basket(t, rs)
	env.addArticle(t, rs, first.ID, cart.ID, 1)
	env.addArticle(t, rs, second.ID, cart.ID, 1)

	if err := env.carts.CartClear(rs, cart.ID); err != nil {
		t.Fatalf("cart clear failed: %v", err)
	}
	children, err := env.carts.GetChildren(rs, cart.ID)
	if err != nil || len(children) != 0 {
		t.Fatalf("expected empty cart, got %d (%v)", len(children), err)
	}
	if _, err := env.carts.GetNode(rs, cart.ID); err != nil {
		t.Fatalf("root should survive clear: %v", err)
	}
}

func TestMoveArticleStaysInsideRepo(t *testing.T) {
	env := setupShopTest(t)
	rs := env.session("move")
	article := env.createArticle(t, "Tasse", 6, nil)
	cart := env.basket(t, rs)
	name := "Regal"
	shelf, err := env.carts.CartAdd(rs, CartNodeInput{ParentID: &cart.ID, Name: &name})
	if err != nil {
		t.Fatalf("cart add failed: %v", err)
	}
	env.addArticle(t, rs, article.ID, cart.ID, 1)

	moved, err := env.carts.MoveArticle(rs, article.ID, cart.ID, shelf.ID)
	if err != nil || moved.ParentEntryID != shelf.ID {
		t.Fatalf("move failed: %+v (%v)", moved, err)
	}

	wishlist, err := env.carts.CartAdd(rs, CartNodeInput{})
	if err != nil {
		t.Fatalf("wishlist add failed: %v", err)
	}
	if wishlist.CartType != constants.CartTypeWishlist || !wishlist.IsRootNode {
		t.Fatalf("unexpected wishlist: %+v", wishlist)
	}
	if _, err := env.carts.MoveArticle(rs, article.ID, shelf.ID, wishlist.ID); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("cross repo move should fail, got %v", err)
	}
}

func TestTotalsCountLeavesAndApplyBasketDiscount(t *testing.T) {
	env := setupShopTest(t)
	rs := env.session("totals")
	vat := env.createVat(t, 19)
	coffee := env.createArticle(t, "Kaffee", 10, vat)
	cup := env.createArticle(t, "Tasse", 4, vat)
	discount := env.createDiscount(t, &models.Discount{
		Name:         "basket",
		DiscountType: constants.DiscountTypeAbsolute,
		Absolute:     money(5),
		Conditions:   []models.DiscountCondition{{ApplicationDomain: constants.ApplicationDomainBasket}},
	})

	cart := env.basket(t, rs)
	env.addArticle(t, rs, coffee.ID, cart.ID, 3)
	env.addArticle(t, rs, cup.ID, cart.ID, 5)
	if _, err := env.carts.CartUpdate(rs, cart.ID, CartNodeInput{}.withDiscount(discount.ID)); err != nil {
		t.Fatalf("set basket discount failed: %v", err)
	}

	fresh := env.session("totals")
	node := env.basket(t, fresh)
	totals, err := env.carts.Aggregator().Totals(context.Background(), fresh, node)
	if err != nil {
		t.Fatalf("totals failed: %v", err)
	}
	if totals.TotalQuantity != 2 {
		t.Fatalf("total_quantity counts leaves, want 2 got %d", totals.TotalQuantity)
	}
	assertDecimal(t, "total", totals.Total, "50")
	assertDecimal(t, "total_discount_price", totals.TotalDiscountPrice, "45")
	assertDecimal(t, "vat_total", totals.VatTotal, "9.5")
	if len(totals.VatRates) != 1 || totals.VatRates[0].ID != vat.ID {
		t.Fatalf("unexpected vat rates: %+v", totals.VatRates)
	}

	view, err := env.carts.NodeView(context.Background(), fresh, node)
	if err != nil {
		t.Fatalf("node view failed: %v", err)
	}
	if view.TotalQuantity != 2 {
		t.Fatalf("view total_quantity want 2, got %d", view.TotalQuantity)
	}
}

func TestAddNewParentWrapsItem(t *testing.T) {
	env := setupShopTest(t)
	rs := env.session("wrap")
	article := env.createArticle(t, "Kaffee", 10, nil)
	cart := env.basket(t, rs)
	item := env.addArticle(t, rs, article.ID, cart.ID, 1)

	node, err := env.carts.AddNewParent(rs, item, "Wrapper")
	if err != nil {
		t.Fatalf("add new parent failed: %v", err)
	}
	if node.ParentEntryID == nil || *node.ParentEntryID != cart.ID || node.Name != "Wrapper" {
		t.Fatalf("unexpected wrapper: %+v", node)
	}
	wrapped, err := env.carts.GetArticle(rs, article.ID, node.ID)
	if err != nil || wrapped == nil {
		t.Fatalf("item not moved into wrapper: %v", err)
	}
}

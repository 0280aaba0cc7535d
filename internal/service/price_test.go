package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sveneberth/viur-shop/internal/constants"
	"github.com/sveneberth/viur-shop/internal/models"

	"github.com/shopspring/decimal"
)

func percentageDiscount(id uint, pct int64, combinableWithOthers bool) models.Discount {
	return models.Discount{
		ID:                id,
		DiscountType:      constants.DiscountTypePercentage,
		Percentage:        models.NewMoneyFromDecimal(decimal.NewFromInt(pct)),
		ConditionOperator: constants.ConditionOperatorAll,
		Conditions: []models.DiscountCondition{
			{ScopeCombinableOtherDiscount: combinableWithOthers},
		},
	}
}

func TestApplyDiscount(t *testing.T) {
	price := decimal.NewFromInt(20)
	cases := []struct {
		name     string
		discount models.Discount
		want     string
	}{
		{
			name:     "absolute",
			discount: models.Discount{DiscountType: constants.DiscountTypeAbsolute, Absolute: money(5)},
			want:     "15",
		},
		{
			name:     "percentage",
			discount: models.Discount{DiscountType: constants.DiscountTypePercentage, Percentage: money(10)},
			want:     "18",
		},
		{
			name:     "free_article",
			discount: models.Discount{DiscountType: constants.DiscountTypeFreeArticle},
			want:     "0",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ApplyDiscount(&tc.discount, price)
			if err != nil {
				t.Fatalf("apply discount failed: %v", err)
			}
			assertDecimal(t, tc.name, got, tc.want)
		})
	}

	_, err := ApplyDiscount(&models.Discount{DiscountType: "bogus"}, price)
	if !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("want ErrNotImplemented, got %v", err)
	}
}

func TestChooseBestDiscountSetPrefersCombination(t *testing.T) {
	discounts := []models.Discount{
		percentageDiscount(1, 10, true),
		percentageDiscount(2, 5, true),
	}
	best, set, err := ChooseBestDiscountSet(decimal.NewFromInt(100), discounts)
	if err != nil {
		t.Fatalf("choose best failed: %v", err)
	}
	assertDecimal(t, "best", best, "85.5")
	if len(set) != 2 {
		t.Fatalf("want combined set of 2, got %d", len(set))
	}
}

func TestChooseBestDiscountSetSkipsNonCombinable(t *testing.T) {
	discounts := []models.Discount{
		percentageDiscount(1, 10, false),
		percentageDiscount(2, 25, false),
	}
	best, set, err := ChooseBestDiscountSet(decimal.NewFromInt(100), discounts)
	if err != nil {
		t.Fatalf("choose best failed: %v", err)
	}
	assertDecimal(t, "best", best, "75")
	if len(set) != 1 || set[0].ID != 2 {
		t.Fatalf("want single discount 2, got %+v", set)
	}
}

func TestChooseBestDiscountSetClampsEachStep(t *testing.T) {
	absolute := models.Discount{
		ID:                2,
		DiscountType:      constants.DiscountTypeAbsolute,
		Absolute:          money(30),
		ConditionOperator: constants.ConditionOperatorAll,
		Conditions:        []models.DiscountCondition{{ScopeCombinableOtherDiscount: true}},
	}
	discounts := []models.Discount{percentageDiscount(1, 10, true), absolute}
	best, set, err := ChooseBestDiscountSet(decimal.NewFromInt(20), discounts)
	if err != nil {
		t.Fatalf("choose best failed: %v", err)
	}
	// 组合集合 20 -> 18 -> 0 与单独的 30 元优惠同为 0，保留先出现的单独优惠
	assertDecimal(t, "best", best, "0")
	if len(set) != 1 || set[0].ID != 2 {
		t.Fatalf("want single absolute discount, got %+v", set)
	}
}

func TestChooseBestDiscountSetKeepsRetailWithoutDiscounts(t *testing.T) {
	best, set, err := ChooseBestDiscountSet(decimal.NewFromInt(42), nil)
	if err != nil {
		t.Fatalf("choose best failed: %v", err)
	}
	assertDecimal(t, "best", best, "42")
	if len(set) != 0 {
		t.Fatalf("expected empty set, got %d", len(set))
	}
}

func TestCombinable(t *testing.T) {
	oneOf := models.Discount{
		ConditionOperator: constants.ConditionOperatorOneOf,
		Conditions:        []models.DiscountCondition{{}},
	}
	if !combinable(&oneOf) {
		t.Fatalf("single one_of condition should be combinable")
	}
	oneOf.Conditions = append(oneOf.Conditions, models.DiscountCondition{})
	if combinable(&oneOf) {
		t.Fatalf("one_of without combinable conditions should not be combinable")
	}
	all := percentageDiscount(1, 10, true)
	all.Conditions = append(all.Conditions, models.DiscountCondition{})
	if combinable(&all) {
		t.Fatalf("all operator requires every condition to be combinable")
	}
	if partiallyCombinable(&all) {
		t.Fatalf("all operator is never partially combinable")
	}

	oneOf.Conditions[1].ScopeCombinableOtherDiscount = true
	if !combinable(&oneOf) || !partiallyCombinable(&oneOf) {
		t.Fatalf("one_of with some combinable conditions should be combinable and flagged as partial")
	}
	oneOf.Conditions[0].ScopeCombinableOtherDiscount = true
	if partiallyCombinable(&oneOf) {
		t.Fatalf("fully combinable one_of should not be flagged")
	}
}

func TestPriceSavedPercentage(t *testing.T) {
	price := &Price{Retail: decimal.NewFromInt(200), Current: decimal.NewFromInt(150), VatRate: decimal.RequireFromString("0.19")}
	assertDecimal(t, "saved", price.Saved(), "50")
	assertDecimal(t, "saved_percentage", price.SavedPercentage(), "0.25")
	assertDecimal(t, "vat_value", price.VatValue(), "28.5")

	view := price.View()
	if view.SavedPercentage != 0.25 || view.VatRate != 0.19 {
		t.Fatalf("unexpected view: %+v", view)
	}
	if (&Price{}).SavedPercentage().Sign() != 0 {
		t.Fatalf("zero retail should yield zero percentage")
	}
}

func TestPriceResolverCombinesNestedArticleDiscounts(t *testing.T) {
	env := setupShopTest(t)
	rs := env.session("nested")
	article := env.createArticle(t, "Kaffee", 100, env.createVat(t, 19))

	outer := env.createDiscount(t, &models.Discount{
		Name:              "outer",
		DiscountType:      constants.DiscountTypePercentage,
		Percentage:        money(10),
		ConditionOperator: constants.ConditionOperatorAll,
		Conditions: []models.DiscountCondition{{
			ApplicationDomain:            constants.ApplicationDomainArticle,
			ScopeArticle:                 models.UintArray{article.ID},
			ScopeCombinableOtherDiscount: true,
		}},
	})
	inner := env.createDiscount(t, &models.Discount{
		Name:              "inner",
		DiscountType:      constants.DiscountTypePercentage,
		Percentage:        money(5),
		ConditionOperator: constants.ConditionOperatorAll,
		Conditions: []models.DiscountCondition{{
			ApplicationDomain:            constants.ApplicationDomainArticle,
			ScopeArticle:                 models.UintArray{article.ID},
			ScopeCombinableOtherDiscount: true,
		}},
	})

	basket := env.basket(t, rs)
	outerName := "outer"
	outerNode, err := env.carts.CartAdd(rs, CartNodeInput{ParentID: &basket.ID, Name: &outerName}.withDiscount(outer.ID))
	if err != nil {
		t.Fatalf("add outer node failed: %v", err)
	}
	innerName := "inner"
	innerNode, err := env.carts.CartAdd(rs, CartNodeInput{ParentID: &outerNode.ID, Name: &innerName}.withDiscount(inner.ID))
	if err != nil {
		t.Fatalf("add inner node failed: %v", err)
	}
	item := env.addArticle(t, rs, article.ID, innerNode.ID, 1)

	price, err := env.resolver.ForItem(context.Background(), rs, item)
	if err != nil {
		t.Fatalf("price for item failed: %v", err)
	}
	assertDecimal(t, "current", price.Current, "85.5")
	if len(price.BestDiscounts) != 2 {
		t.Fatalf("want both discounts applied, got %d", len(price.BestDiscounts))
	}
	assertDecimal(t, "vat_rate", price.VatRate, "0.19")
}

func TestPriceResolverClampsAtZero(t *testing.T) {
	env := setupShopTest(t)
	rs := env.session("clamp")
	article := env.createArticle(t, "Tasse", 3, nil)
	discount := env.createDiscount(t, &models.Discount{
		Name:         "big",
		DiscountType: constants.DiscountTypeAbsolute,
		Absolute:     money(10),
		Conditions: []models.DiscountCondition{{
			ApplicationDomain: constants.ApplicationDomainArticle,
			ScopeArticle:      models.UintArray{article.ID},
		}},
	})
	basket := env.basket(t, rs)
	name := "wrapper"
	node, err := env.carts.CartAdd(rs, CartNodeInput{ParentID: &basket.ID, Name: &name}.withDiscount(discount.ID))
	if err != nil {
		t.Fatalf("add node failed: %v", err)
	}
	item := env.addArticle(t, rs, article.ID, node.ID, 2)

	price, err := env.resolver.ForItem(context.Background(), rs, item)
	if err != nil {
		t.Fatalf("price for item failed: %v", err)
	}
	if !price.Current.IsZero() {
		t.Fatalf("expected price clamped at 0, got %s", price.Current)
	}
}

func TestPriceResolverStandaloneArticle(t *testing.T) {
	env := setupShopTest(t)
	rs := env.session("standalone")
	article := env.createArticle(t, "Mühle", 59.9, nil)

	price, err := env.resolver.ForArticle(context.Background(), rs, article)
	if err != nil {
		t.Fatalf("price for article failed: %v", err)
	}
	assertDecimal(t, "current", price.Current, "59.9")
	if price.InCart || price.ArticleDiscount != nil {
		t.Fatalf("unexpected price state: %+v", price)
	}
}

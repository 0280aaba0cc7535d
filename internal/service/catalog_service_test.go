package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sveneberth/viur-shop/internal/constants"
	"github.com/sveneberth/viur-shop/internal/models"
)

func TestCreateDiscountDefaultsAndUniqueCodes(t *testing.T) {
	env := setupShopTest(t)
	ctx := context.Background()

	created, err := env.catalog.CreateDiscount(ctx, &models.Discount{
		Name:              " Sommer ",
		DiscountType:      constants.DiscountTypePercentage,
		Percentage:        money(15),
		ConditionOperator: constants.ConditionOperatorOneOf,
		Conditions: []models.DiscountCondition{{
			CodeType:           constants.CodeTypeUniversal,
			ScopeCode:          " SUMMER ",
			ApplicationDomain:  constants.ApplicationDomainBasket,
			ScopeCustomerGroup: constants.CustomerGroupAll,
		}},
	})
	if err != nil {
		t.Fatalf("create discount failed: %v", err)
	}
	if created.Name != "Sommer" || len(created.Conditions) != 1 {
		t.Fatalf("unexpected discount: %+v", created)
	}
	cond := created.Conditions[0]
	if cond.ScopeCode != "SUMMER" || cond.QuantityVolume != constants.QuantityVolumeUnlimited {
		t.Fatalf("unexpected condition defaults: %+v", cond)
	}

	_, err = env.catalog.CreateDiscount(ctx, &models.Discount{
		Name:              "Kopie",
		DiscountType:      constants.DiscountTypeAbsolute,
		Absolute:          money(1),
		ConditionOperator: constants.ConditionOperatorOneOf,
		Conditions: []models.DiscountCondition{{
			CodeType:           constants.CodeTypeUniversal,
			ScopeCode:          "summer",
			ApplicationDomain:  constants.ApplicationDomainBasket,
			ScopeCustomerGroup: constants.CustomerGroupAll,
		}},
	})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("duplicate code should be rejected, got %v", err)
	}

	updated, err := env.catalog.UpdateDiscount(ctx, created.ID, created)
	if err != nil {
		t.Fatalf("updating with the own code should pass: %v", err)
	}
	if updated.Conditions[0].ID != cond.ID {
		t.Fatalf("condition should be kept, got %+v", updated.Conditions)
	}
}

func TestCreateDiscountValidation(t *testing.T) {
	env := setupShopTest(t)
	ctx := context.Background()

	_, err := env.catalog.CreateDiscount(ctx, &models.Discount{
		Name:              "Mischung",
		DiscountType:      constants.DiscountTypePercentage,
		Percentage:        money(5),
		ConditionOperator: constants.ConditionOperatorOneOf,
		Conditions: []models.DiscountCondition{
			{CodeType: constants.CodeTypeNone, ApplicationDomain: constants.ApplicationDomainBasket, ScopeCustomerGroup: constants.CustomerGroupAll},
			{CodeType: constants.CodeTypeNone, ApplicationDomain: constants.ApplicationDomainArticle, ScopeArticle: models.UintArray{1}, ScopeCustomerGroup: constants.CustomerGroupAll},
		},
	})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("mixed application domains should be rejected, got %v", err)
	}

	_, err = env.catalog.CreateDiscount(ctx, &models.Discount{
		Name:              "Zu viel",
		DiscountType:      constants.DiscountTypePercentage,
		Percentage:        money(150),
		ConditionOperator: constants.ConditionOperatorOneOf,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("percentage above 100 should fail validation, got %v", err)
	}

	_, err = env.catalog.CreateDiscount(ctx, &models.Discount{
		Name:              "Gratis",
		DiscountType:      constants.DiscountTypeFreeArticle,
		ConditionOperator: constants.ConditionOperatorOneOf,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("free article without article should fail validation, got %v", err)
	}
}

func TestCreateIndividualDiscountGeneratesCodesInline(t *testing.T) {
	env := setupShopTest(t)
	created, err := env.catalog.CreateDiscount(context.Background(), &models.Discount{
		Name:              "Newsletter",
		DiscountType:      constants.DiscountTypeAbsolute,
		Absolute:          money(20),
		ConditionOperator: constants.ConditionOperatorOneOf,
		Conditions: []models.DiscountCondition{{
			CodeType:              constants.CodeTypeIndividual,
			ApplicationDomain:     constants.ApplicationDomainBasket,
			IndividualCodesPrefix: "NL",
			IndividualCodesAmount: 5,
			ScopeCustomerGroup:    constants.CustomerGroupFirstOrder,
		}},
	})
	if err != nil {
		t.Fatalf("create discount failed: %v", err)
	}
	var count int64
	env.db.Model(&models.DiscountCondition{}).Where("parent_code_id = ?", created.Conditions[0].ID).Count(&count)
	if count != 5 {
		t.Fatalf("want 5 generated codes, got %d", count)
	}
}

func TestCreateDiscountPurgesAutomaticCache(t *testing.T) {
	env := setupShopTest(t)
	ctx := context.Background()
	rs := env.session("purge")

	first, err := env.evaluator.CurrentAutomaticallyDiscounts(ctx, rs)
	if err != nil || len(first) != 0 {
		t.Fatalf("expected no automatic discounts, got %d (%v)", len(first), err)
	}

	_, err = env.catalog.CreateDiscount(ctx, &models.Discount{
		Name:                  "Frühling",
		DiscountType:          constants.DiscountTypeAbsolute,
		Absolute:              money(5),
		ConditionOperator:     constants.ConditionOperatorOneOf,
		ActivateAutomatically: true,
		Conditions: []models.DiscountCondition{{
			CodeType:           constants.CodeTypeNone,
			ApplicationDomain:  constants.ApplicationDomainAll,
			ScopeCustomerGroup: constants.CustomerGroupAll,
		}},
	})
	if err != nil {
		t.Fatalf("create discount failed: %v", err)
	}

	second, err := env.evaluator.CurrentAutomaticallyDiscounts(ctx, env.session("purge"))
	if err != nil || len(second) != 1 {
		t.Fatalf("new automatic discount should be visible after purge, got %d (%v)", len(second), err)
	}

	article := env.createArticle(t, "Kaffee", 12, nil)
	price, err := env.resolver.ForArticle(ctx, env.session("purge"), article)
	if err != nil {
		t.Fatalf("price failed: %v", err)
	}
	if price.ArticleDiscount == nil {
		t.Fatalf("automatic discount should apply to the article")
	}
	assertDecimal(t, "current", price.Current, "7")
}

func TestVatNameFollowsRate(t *testing.T) {
	env := setupShopTest(t)
	vat, err := env.catalog.CreateVat(&models.Vat{Rate: money(19)})
	if err != nil {
		t.Fatalf("create vat failed: %v", err)
	}
	if vat.Name != "19 %" {
		t.Fatalf("unexpected vat name %q", vat.Name)
	}
	if _, err := env.catalog.CreateVat(&models.Vat{Rate: money(120)}); !errors.Is(err, ErrValidation) {
		t.Fatalf("rate above 100 should fail, got %v", err)
	}
	if err := env.catalog.DeleteVat(999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

package service

import (
	"context"
	"testing"

	"github.com/sveneberth/viur-shop/internal/models"
)

type shippingFixture struct {
	standard *models.Shipping
	free     *models.Shipping
	europe   *models.Shipping
	local    *models.Shipping
	national *models.ShippingConfig
	city     *models.ShippingConfig
}

func setupShippings(t *testing.T, env *shopTestEnv) *shippingFixture {
	t.Helper()
	create := func(name string, cost float64, pre *models.ShippingPrecondition) *models.Shipping {
		shipping, err := env.catalog.CreateShipping(&models.Shipping{
			Name:            name,
			ShippingCost:    money(cost),
			DeliveryTimeMin: 1,
			DeliveryTimeMax: 3,
			Precondition:    pre,
		})
		if err != nil {
			t.Fatalf("create shipping %s failed: %v", name, err)
		}
		return shipping
	}
	fx := &shippingFixture{
		standard: create("DHL Paket", 4.9, &models.ShippingPrecondition{Country: models.StringArray{"DE"}}),
		free:     create("Versandkostenfrei", 0, &models.ShippingPrecondition{Country: models.StringArray{"DE"}, MinimumOrderValue: money(50)}),
		europe:   create("EU Versand", 12, &models.ShippingPrecondition{Country: models.StringArray{"DE", "AT", "FR"}}),
		local:    create("Kurier", 2, &models.ShippingPrecondition{ZipCode: models.StringArray{"10115"}}),
	}
	var err error
	fx.national, err = env.catalog.CreateShippingConfig("Standard", []uint{fx.standard.ID, fx.free.ID, fx.europe.ID})
	if err != nil {
		t.Fatalf("create national config failed: %v", err)
	}
	fx.city, err = env.catalog.CreateShippingConfig("Stadt", []uint{fx.local.ID})
	if err != nil {
		t.Fatalf("create city config failed: %v", err)
	}
	return fx
}

func (e *shopTestEnv) articleWithConfig(t *testing.T, name string, retail float64, config *models.ShippingConfig) *models.Article {
	t.Helper()
	article := e.createArticle(t, name, retail, nil)
	if err := e.db.Model(article).Update("shipping_config_id", config.ID).Error; err != nil {
		t.Fatalf("assign shipping config failed: %v", err)
	}
	loaded, err := e.catalog.GetArticle(article.ID)
	if err != nil {
		t.Fatalf("reload article failed: %v", err)
	}
	return loaded
}

func TestChooseShippingForArticle(t *testing.T) {
	env := setupShopTest(t)
	fx := setupShippings(t, env)
	rs := env.session("shipping-article")

	cheap := env.articleWithConfig(t, "Kaffee", 20, fx.national)
	chosen, err := env.shipping.ChooseShippingForArticle(rs, cheap, "")
	if err != nil || chosen == nil || chosen.ID != fx.standard.ID {
		t.Fatalf("want standard shipping, got %+v (%v)", chosen, err)
	}

	expensive := env.articleWithConfig(t, "Siebträger", 80, fx.national)
	chosen, err = env.shipping.ChooseShippingForArticle(rs, expensive, "")
	if err != nil || chosen == nil || chosen.ID != fx.free.ID {
		t.Fatalf("want free shipping, got %+v (%v)", chosen, err)
	}

	chosen, err = env.shipping.ChooseShippingForArticle(rs, cheap, "fr")
	if err != nil || chosen == nil || chosen.ID != fx.europe.ID {
		t.Fatalf("want eu shipping for FR, got %+v (%v)", chosen, err)
	}

	chosen, err = env.shipping.ChooseShippingForArticle(rs, cheap, "US")
	if err != nil || chosen != nil {
		t.Fatalf("no shipping expected for US, got %+v (%v)", chosen, err)
	}

	plain := env.createArticle(t, "Ohne Versand", 5, nil)
	chosen, err = env.shipping.ChooseShippingForArticle(rs, plain, "")
	if err != nil || chosen != nil {
		t.Fatalf("article without config has no shipping, got %+v (%v)", chosen, err)
	}
}

func TestShippingsForCartPrefersZipCodeMatches(t *testing.T) {
	env := setupShopTest(t)
	ctx := context.Background()
	fx := setupShippings(t, env)
	coffee := env.articleWithConfig(t, "Kaffee", 30, fx.national)
	cake := env.articleWithConfig(t, "Kuchen", 10, fx.city)

	rs := env.session("shipping-cart")
	cart := env.basket(t, rs)
	env.addArticle(t, rs, coffee.ID, cart.ID, 1)
	env.addArticle(t, rs, cake.ID, cart.ID, 1)

	shippings, err := env.shipping.ShippingsForCart(ctx, rs, env.basket(t, rs), "")
	if err != nil {
		t.Fatalf("shippings for cart failed: %v", err)
	}
	ids := map[uint]bool{}
	for _, s := range shippings {
		ids[s.ID] = true
	}
	if len(shippings) != 2 || !ids[fx.standard.ID] || !ids[fx.europe.ID] {
		t.Fatalf("want standard and eu below minimum value, got %+v", ids)
	}

	address := &models.Address{Name: "Erika", Street: "Invalidenstr. 1", ZipCode: "10115", City: "Berlin", CountryCode: "DE"}
	if err := env.db.Create(address).Error; err != nil {
		t.Fatalf("create address failed: %v", err)
	}
	if _, err := env.carts.CartUpdate(rs, cart.ID, CartNodeInput{ShippingAddressID: &address.ID}); err != nil {
		t.Fatalf("set address failed: %v", err)
	}

	fresh := env.session("shipping-cart")
	shippings, err = env.shipping.ShippingsForCart(ctx, fresh, env.basket(t, fresh), "")
	if err != nil {
		t.Fatalf("shippings for cart failed: %v", err)
	}
	if len(shippings) != 1 || shippings[0].ID != fx.local.ID {
		t.Fatalf("zip code match should win, got %+v", shippings)
	}
}

func TestShippingsForEmptyCart(t *testing.T) {
	env := setupShopTest(t)
	rs := env.session("shipping-empty")
	shippings, err := env.shipping.ShippingsForCart(context.Background(), rs, env.basket(t, rs), "")
	if err != nil || len(shippings) != 0 {
		t.Fatalf("empty cart has no shippings, got %+v (%v)", shippings, err)
	}
}

package main

import (
	"time"

	"github.com/sveneberth/viur-shop/internal/config"
	"github.com/sveneberth/viur-shop/internal/constants"
	"github.com/sveneberth/viur-shop/internal/logger"
	"github.com/sveneberth/viur-shop/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := zap.NewStdLog(logger.Z())
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Printf("Failed to create default admin: %v", err)
	}

	// 税率
	vatIDs := map[string]uint{}
	for _, rate := range []int64{19, 7} {
		vat := models.Vat{Rate: models.NewMoneyFromDecimal(decimal.NewFromInt(rate))}
		name := vat.Rate.String() + " %"
		var existing models.Vat
		if err := models.DB.Where("name = ?", name).First(&existing).Error; err == nil {
			stdLog.Printf("Vat already exists: %s", name)
			vatIDs[name] = existing.ID
			continue
		}
		if err := models.DB.Create(&vat).Error; err != nil {
			stdLog.Printf("Failed to create vat %s: %v", name, err)
			continue
		}
		stdLog.Printf("Created vat: %s", name)
		vatIDs[name] = vat.ID
	}

	// 运费方案
	shippings := []models.Shipping{
		{
			Name:            "DHL Paket",
			ShippingCost:    models.NewMoneyFromDecimal(decimal.NewFromFloat(4.99)),
			Supplier:        "dhl",
			DeliveryTimeMin: 1,
			DeliveryTimeMax: 3,
			Precondition: &models.ShippingPrecondition{
				Name:    "Inland",
				Country: models.StringArray{"DE"},
			},
		},
		{
			Name:            "DHL Paket (versandkostenfrei)",
			ShippingCost:    models.ZeroMoney(),
			Supplier:        "dhl",
			DeliveryTimeMin: 1,
			DeliveryTimeMax: 3,
			Precondition: &models.ShippingPrecondition{
				Name:              "Inland ab 50 EUR",
				Country:           models.StringArray{"DE"},
				MinimumOrderValue: models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
			},
		},
		{
			Name:            "DHL International",
			ShippingCost:    models.NewMoneyFromDecimal(decimal.NewFromFloat(14.90)),
			Supplier:        "dhl",
			DeliveryTimeMin: 3,
			DeliveryTimeMax: 7,
			Precondition: &models.ShippingPrecondition{
				Name:    "EU",
				Country: models.StringArray{"AT", "NL", "FR", "BE"},
			},
		},
	}
	var shippingList []models.Shipping
	for _, shipping := range shippings {
		var existing models.Shipping
		if err := models.DB.Where("name = ?", shipping.Name).First(&existing).Error; err == nil {
			stdLog.Printf("Shipping already exists: %s", shipping.Name)
			shippingList = append(shippingList, existing)
			continue
		}
		if err := models.DB.Create(&shipping).Error; err != nil {
			stdLog.Printf("Failed to create shipping %s: %v", shipping.Name, err)
			continue
		}
		stdLog.Printf("Created shipping: %s", shipping.Name)
		shippingList = append(shippingList, shipping)
	}

	// 运费配置
	shippingConfig := models.ShippingConfig{Name: "Standard"}
	if err := models.DB.Where("name = ?", shippingConfig.Name).First(&shippingConfig).Error; err != nil {
		shippingConfig.Shippings = shippingList
		if err := models.DB.Create(&shippingConfig).Error; err != nil {
			stdLog.Fatalf("Failed to create shipping config: %v", err)
		}
		stdLog.Printf("Created shipping config: %s", shippingConfig.Name)
	}

	// 商品
	standardVat := vatIDs["19.00 %"]
	reducedVat := vatIDs["7.00 %"]
	articles := []models.Article{
		{
			Name:             "Kaffeebohnen Hausmischung 1 kg",
			Description:      "Kräftige Röstung aus Arabica und Robusta",
			ArtNoOrGtin:      "4006381333931",
			PriceRetail:      models.NewMoneyFromDecimal(decimal.NewFromFloat(18.90)),
			PriceRecommended: models.NewMoneyFromDecimal(decimal.NewFromFloat(21.90)),
			Availability:     "instock",
			Listed:           true,
			VatID:            &reducedVat,
			ShippingConfigID: &shippingConfig.ID,
		},
		{
			Name:             "Handmühle Edelstahl",
			Description:      "Kegelmahlwerk, stufenlos einstellbar",
			ArtNoOrGtin:      "HM-2024-01",
			PriceRetail:      models.NewMoneyFromDecimal(decimal.NewFromFloat(49.00)),
			PriceRecommended: models.NewMoneyFromDecimal(decimal.NewFromFloat(59.00)),
			Availability:     "instock",
			Listed:           true,
			VatID:            &standardVat,
			ShippingConfigID: &shippingConfig.ID,
		},
		{
			Name:             "Espressotassen 2er Set",
			ArtNoOrGtin:      "ET-0002",
			PriceRetail:      models.NewMoneyFromDecimal(decimal.NewFromFloat(12.50)),
			PriceRecommended: models.NewMoneyFromDecimal(decimal.NewFromFloat(12.50)),
			Availability:     "limited",
			Listed:           true,
			IsLowPrice:       true,
			VatID:            &standardVat,
			ShippingConfigID: &shippingConfig.ID,
		},
	}
	for _, article := range articles {
		var existing models.Article
		if err := models.DB.Where("art_no_or_gtin = ?", article.ArtNoOrGtin).First(&existing).Error; err == nil {
			stdLog.Printf("Article already exists: %s", article.ArtNoOrGtin)
			continue
		}
		if err := models.DB.Create(&article).Error; err != nil {
			stdLog.Printf("Failed to create article %s: %v", article.ArtNoOrGtin, err)
		} else {
			stdLog.Printf("Created article: %s", article.ArtNoOrGtin)
		}
	}

	// 优惠
	start := time.Now().Add(-24 * time.Hour)
	end := time.Now().AddDate(0, 3, 0)
	discounts := []models.Discount{
		{
			Name:              "Willkommen 10 %",
			Description:       "10 % auf den Warenkorb mit Code WELCOME10",
			DiscountType:      constants.DiscountTypePercentage,
			Percentage:        models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			ConditionOperator: constants.ConditionOperatorOneOf,
			Conditions: []models.DiscountCondition{{
				CodeType:               constants.CodeTypeUniversal,
				ApplicationDomain:      constants.ApplicationDomainBasket,
				QuantityVolume:         constants.QuantityVolumeUnlimited,
				ScopeCode:              "WELCOME10",
				ScopeMinimumOrderValue: models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
				ScopeCustomerGroup:     constants.CustomerGroupAll,
			}},
		},
		{
			Name:                  "Frühjahrsaktion",
			Description:           "5 EUR Rabatt ab 40 EUR, automatisch",
			DiscountType:          constants.DiscountTypeAbsolute,
			Absolute:              models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
			ConditionOperator:     constants.ConditionOperatorOneOf,
			ActivateAutomatically: true,
			Conditions: []models.DiscountCondition{{
				CodeType:               constants.CodeTypeNone,
				ApplicationDomain:      constants.ApplicationDomainBasket,
				QuantityVolume:         constants.QuantityVolumeUnlimited,
				ScopeMinimumOrderValue: models.NewMoneyFromDecimal(decimal.NewFromInt(40)),
				ScopeDateStart:         &start,
				ScopeDateEnd:           &end,
				ScopeCustomerGroup:     constants.CustomerGroupAll,
			}},
		},
		{
			Name:              "Newsletter",
			Description:       "Einmalcodes mit Präfix NL",
			DiscountType:      constants.DiscountTypePercentage,
			Percentage:        models.NewMoneyFromDecimal(decimal.NewFromInt(15)),
			ConditionOperator: constants.ConditionOperatorOneOf,
			Conditions: []models.DiscountCondition{{
				CodeType:              constants.CodeTypeIndividual,
				ApplicationDomain:     constants.ApplicationDomainBasket,
				QuantityVolume:        constants.QuantityVolumeUnlimited,
				IndividualCodesAmount: 20,
				IndividualCodesPrefix: "NL",
				ScopeCustomerGroup:    constants.CustomerGroupFirstOrder,
			}},
		},
	}
	for _, discount := range discounts {
		var existing models.Discount
		if err := models.DB.Where("name = ?", discount.Name).First(&existing).Error; err == nil {
			stdLog.Printf("Discount already exists: %s", discount.Name)
			continue
		}
		if err := discount.Validate(); err != nil {
			stdLog.Printf("Invalid discount %s: %v", discount.Name, err)
			continue
		}
		if err := models.DB.Create(&discount).Error; err != nil {
			stdLog.Printf("Failed to create discount %s: %v", discount.Name, err)
		} else {
			stdLog.Printf("Created discount: %s", discount.Name)
		}
	}

	stdLog.Printf("Seed completed. Generate individual codes via POST /api/v1/admin/discounts/conditions/:id/codes")
}

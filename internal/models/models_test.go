package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestMoneyJSON(t *testing.T) {
	raw, err := json.Marshal(NewMoneyFromFloat(12.345))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(raw) != `"12.35"` {
		t.Fatalf("want \"12.35\" got %s", raw)
	}

	var fromString, fromNumber Money
	if err := json.Unmarshal([]byte(`"3.999"`), &fromString); err != nil {
		t.Fatalf("unmarshal string failed: %v", err)
	}
	if err := json.Unmarshal([]byte(`7.5`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	if fromString.String() != "4.00" || fromNumber.String() != "7.50" {
		t.Fatalf("unexpected values %s / %s", fromString, fromNumber)
	}
	if err := json.Unmarshal([]byte(`"abc"`), &fromString); err == nil {
		t.Fatalf("invalid amount should fail")
	}

	var payload struct {
		Absolute Money `json:"absolute"`
	}
	payload.Absolute = NewMoneyFromFloat(5)
	if err := json.Unmarshal([]byte(`{"absolute":null}`), &payload); err != nil || !payload.Absolute.IsZero() {
		t.Fatalf("null should reset to zero, got %s (%v)", payload.Absolute, err)
	}
	if err := json.Unmarshal([]byte(`{"absolute":" 2.005 "}`), &payload); err != nil || payload.Absolute.String() != "2.01" {
		t.Fatalf("padded string should parse, got %s (%v)", payload.Absolute, err)
	}
}

func TestVatNameIsDerivedFromRate(t *testing.T) {
	vat := &Vat{Name: "manual", Rate: NewMoneyFromFloat(7)}
	if err := vat.BeforeSave(nil); err != nil {
		t.Fatalf("before save failed: %v", err)
	}
	if vat.Name != "7 %" {
		t.Fatalf("want \"7 %%\" got %q", vat.Name)
	}
	vat.Rate = NewMoneyFromFloat(5.5)
	_ = vat.BeforeSave(nil)
	if vat.Name != "5.5 %" {
		t.Fatalf("want \"5.5 %%\" got %q", vat.Name)
	}
	if err := (&Vat{Rate: NewMoneyFromFloat(101)}).Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("rate above 100 should fail, got %v", err)
	}
}

func TestDiscountValidateCollectsConditionFields(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	discount := &Discount{
		Name:              "Sommer",
		DiscountType:      "free_article",
		ConditionOperator: "one_of",
		Conditions: []DiscountCondition{
			{CodeType: "universal", ApplicationDomain: "basket", QuantityVolume: -1},
			{CodeType: "individual", ApplicationDomain: "article", QuantityVolume: -1, ScopeDateStart: &start, ScopeDateEnd: &end},
		},
	}
	err := discount.Validate()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want *ValidationError, got %T", err)
	}
	want := map[string]bool{
		"free_article_id":                    false,
		"conditions.scope_code":              false,
		"conditions.individual_codes_amount": false,
		"conditions.individual_codes_prefix": false,
		"conditions.scope_article":           false,
		"conditions.scope_date_end":          false,
	}
	for _, field := range verr.Fields {
		if _, ok := want[field]; ok {
			want[field] = true
		}
	}
	for field, seen := range want {
		if !seen {
			t.Fatalf("field %s missing from %v", field, verr.Fields)
		}
	}
}

func TestDiscountValidateRejectsUnknownEnums(t *testing.T) {
	discount := &Discount{Name: "x", DiscountType: "bogus", ConditionOperator: "one_of"}
	if err := discount.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown discount_type should fail, got %v", err)
	}
	discount.DiscountType = "absolute"
	discount.Absolute = NewMoneyFromFloat(-1)
	if err := discount.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("negative absolute should fail, got %v", err)
	}
	discount.Absolute = NewMoneyFromFloat(5)
	if err := discount.Validate(); err != nil {
		t.Fatalf("valid discount rejected: %v", err)
	}
}

func TestDiscountApplicationDomain(t *testing.T) {
	discount := &Discount{Conditions: []DiscountCondition{
		{ApplicationDomain: "all"},
		{ApplicationDomain: "article"},
	}}
	domain, ok := discount.ApplicationDomain()
	if !ok || domain != "article" {
		t.Fatalf("want article, got %q ok=%v", domain, ok)
	}
	if !discount.ItemScoped() {
		t.Fatalf("article domain should be item scoped")
	}

	discount.Conditions = append(discount.Conditions, DiscountCondition{ApplicationDomain: "basket"})
	if _, ok := discount.ApplicationDomain(); ok {
		t.Fatalf("mixed domains should not resolve")
	}

	empty := &Discount{}
	if domain, ok := empty.ApplicationDomain(); !ok || domain != "" {
		t.Fatalf("no conditions should resolve to empty domain, got %q ok=%v", domain, ok)
	}
}

func TestConditionExhausted(t *testing.T) {
	unlimited := &DiscountCondition{QuantityVolume: -1, QuantityUsed: 500}
	if unlimited.Exhausted() {
		t.Fatalf("-1 volume should never be exhausted")
	}
	capped := &DiscountCondition{QuantityVolume: 2, QuantityUsed: 2}
	if !capped.Exhausted() {
		t.Fatalf("used == volume should be exhausted")
	}
	capped.QuantityUsed = 1
	if capped.Exhausted() {
		t.Fatalf("used < volume should not be exhausted")
	}
}

func TestArrayColumnsRoundTrip(t *testing.T) {
	value, err := StringArray{"DE", "AT"}.Value()
	if err != nil {
		t.Fatalf("value failed: %v", err)
	}
	var countries StringArray
	if err := countries.Scan(value); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if !countries.Contains("AT") || countries.Contains("CH") {
		t.Fatalf("unexpected countries %v", countries)
	}

	var articles UintArray
	if err := articles.Scan("[3,5]"); err != nil {
		t.Fatalf("scan string failed: %v", err)
	}
	if !articles.Contains(5) || articles.Contains(4) {
		t.Fatalf("unexpected articles %v", articles)
	}
	if err := articles.Scan(nil); err != nil || len(articles) != 0 {
		t.Fatalf("nil scan should reset, got %v (%v)", articles, err)
	}
}

func TestAdminAcceptsToken(t *testing.T) {
	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	admin := &Admin{TokenVersion: 2}
	if !admin.AcceptsToken(2, nil) {
		t.Fatalf("matching version without invalid-before should pass")
	}
	if admin.AcceptsToken(1, &issued) {
		t.Fatalf("stale version must be rejected")
	}

	cutoff := issued.Add(time.Minute)
	admin.TokenInvalidBefore = &cutoff
	if admin.AcceptsToken(2, &issued) || admin.AcceptsToken(2, nil) {
		t.Fatalf("tokens issued before the cutoff must be rejected")
	}
	later := cutoff.Add(time.Second)
	if !admin.AcceptsToken(2, &later) {
		t.Fatalf("token issued after the cutoff should pass")
	}

	admin.MarkLogin(later)
	if admin.LastLoginAt == nil || !admin.LastLoginAt.Equal(later) {
		t.Fatalf("last login not recorded: %v", admin.LastLoginAt)
	}
	var missing *Admin
	if missing.AcceptsToken(0, nil) {
		t.Fatalf("nil admin must not accept tokens")
	}
}

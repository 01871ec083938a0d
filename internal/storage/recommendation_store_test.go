package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"pricing-service/internal/models"
)

func TestRedisRecommendationStore_Put(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		if err := rdb.Close(); err != nil {
			t.Fatalf("close redis: %v", err)
		}
	})

	store := NewRedisRecommendationStore(rdb, "pricing_recommendations")
	ctx := context.Background()

	rec := models.Recommendation{
		RunID:           "2026-03-01T12:00:00Z",
		SKU:             "A1",
		ProductName:     "Widget",
		Available:       90,
		UnitsOrdered:    2,
		CurrentPrice:    250.0,
		GrossProfitUnit: 167.5,
		Strategy:        models.StrategyClearInventory,
		PriceAction:     models.PriceActionDrop,
		PriceChangePct:  -0.10,
		AdAction:        models.AdActionBoostLow,
		Reason:          "High inventory, low recent sales, healthy unit margin",
		CreatedAt:       "2026-03-01T12:00:00.000001Z",
	}

	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}

	key := store.Key("A1", "2026-03-01T12:00:00Z")
	val, err := mr.Get(key)
	if err != nil {
		t.Fatalf("get stored record: %v", err)
	}

	// Floats are stored fixed-point, not as binary floats.
	for _, want := range []string{
		`"sku":"A1"`,
		`"current_price":"250"`,
		`"gross_profit_unit":"167.5"`,
		`"price_change_pct":"-0.1"`,
		`"strategy":"clear_inventory"`,
	} {
		if !strings.Contains(val, want) {
			t.Errorf("stored record missing %s, got %s", want, val)
		}
	}
}

func TestRedisRecommendationStore_PutFailsWhenDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisRecommendationStore(rdb, "pricing_recommendations")

	mr.Close()

	if err := store.Put(context.Background(), models.Recommendation{SKU: "A1", RunID: "r1"}); err == nil {
		t.Fatalf("expected error writing to closed store")
	}
}

func TestDecimalize(t *testing.T) {
	in := map[string]interface{}{
		"price": 12.34,
		"name":  "Widget",
		"tags":  []interface{}{1.5, "x"},
		"nested": map[string]interface{}{
			"pct": -0.1,
		},
	}

	out := Decimalize(in).(map[string]interface{})

	price, ok := out["price"].(decimal.Decimal)
	if !ok {
		t.Fatalf("price not converted, got %T", out["price"])
	}
	if price.String() != "12.34" {
		t.Errorf("price = %s, want 12.34", price)
	}
	if out["name"] != "Widget" {
		t.Errorf("name changed: %v", out["name"])
	}

	tags := out["tags"].([]interface{})
	if tags[0].(decimal.Decimal).String() != "1.5" {
		t.Errorf("tags[0] = %v", tags[0])
	}
	if tags[1] != "x" {
		t.Errorf("tags[1] = %v", tags[1])
	}

	nested := out["nested"].(map[string]interface{})
	if nested["pct"].(decimal.Decimal).String() != "-0.1" {
		t.Errorf("nested pct = %v", nested["pct"])
	}
}

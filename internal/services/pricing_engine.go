// Package services contains the pricing pipeline: metric derivation over
// joined inventory/sales rows, the ordered classification rule set, and the
// run orchestration that ties loading, joining, classifying and recording
// together.
package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"pricing-service/internal/models"
)

// Normalized column names expected after dataset parsing.
const (
	ColSKU          = "sku"
	ColAvailable    = "available"
	ColProductName  = "product-name"
	ColOrderedSales = "ordered product sales"
	ColUnitsOrdered = "units ordered"
)

// maxProductNameLen caps product_name on the persisted record.
const maxProductNameLen = 400

// ItemSignals are the inputs the rule set is evaluated against.
type ItemSignals struct {
	Available          int
	UnitsOrdered       int
	GrossProfitPerUnit float64
}

// RuleOutcome is the action bundle a matched rule assigns to an item.
type RuleOutcome struct {
	Strategy       models.Strategy
	PriceAction    models.PriceAction
	PriceChangePct float64
	AdAction       models.AdAction
	Reason         string
}

type pricingRule struct {
	name    string
	matches func(ItemSignals) bool
	outcome RuleOutcome
}

// pricingRules is evaluated in order; the first match wins. Thresholds are
// fixed business constants, not tunable per run.
var pricingRules = []pricingRule{
	{
		name: "clear_inventory",
		matches: func(s ItemSignals) bool {
			return s.Available >= 80 && s.UnitsOrdered <= 5 && s.GrossProfitPerUnit > 3
		},
		outcome: RuleOutcome{
			Strategy:       models.StrategyClearInventory,
			PriceAction:    models.PriceActionDrop,
			PriceChangePct: -0.10,
			AdAction:       models.AdActionBoostLow,
			Reason:         "High inventory, low recent sales, healthy unit margin",
		},
	},
	{
		name: "stimulate_demand",
		matches: func(s ItemSignals) bool {
			return s.Available >= 30 && s.Available < 80 && s.UnitsOrdered <= 5 && s.GrossProfitPerUnit > 2
		},
		outcome: RuleOutcome{
			Strategy:       models.StrategyStimulateDemand,
			PriceAction:    models.PriceActionDrop,
			PriceChangePct: -0.05,
			AdAction:       models.AdActionNone,
			Reason:         "Moderate inventory, low sales; small price drop to test elasticity",
		},
	},
	{
		name: "premium_position",
		matches: func(s ItemSignals) bool {
			return s.Available < 20 && s.GrossProfitPerUnit > 5 && s.UnitsOrdered > 0
		},
		outcome: RuleOutcome{
			Strategy:       models.StrategyPremiumPosition,
			PriceAction:    models.PriceActionIncrease,
			PriceChangePct: 0.05,
			AdAction:       models.AdActionNone,
			Reason:         "Low inventory and strong margin; small price increase justified",
		},
	},
	{
		name: "hero_sku",
		matches: func(s ItemSignals) bool {
			return s.Available >= 40 && s.Available <= 100 && s.UnitsOrdered >= 10 && s.GrossProfitPerUnit > 2
		},
		outcome: RuleOutcome{
			Strategy:       models.StrategyHold,
			PriceAction:    models.PriceActionNone,
			PriceChangePct: 0.0,
			AdAction:       models.AdActionBoostLow,
			Reason:         "Balanced inventory and demand; consider slight ad boost to scale hero SKU",
		},
	},
}

var defaultOutcome = RuleOutcome{
	Strategy:       models.StrategyHold,
	PriceAction:    models.PriceActionNone,
	PriceChangePct: 0.0,
	AdAction:       models.AdActionNone,
	Reason:         "Default hold – no strong inventory or margin signal",
}

// Classify evaluates the rule set against one item. Rules are mutually
// exclusive: the first match wins and later rules are not consulted.
func Classify(s ItemSignals) RuleOutcome {
	for _, rule := range pricingRules {
		if rule.matches(s) {
			return rule.outcome
		}
	}
	return defaultOutcome
}

// DerivedMetrics holds the per-item numbers computed from a joined row.
type DerivedMetrics struct {
	UnitsOrdered       int
	Available          int
	PricePerUnit       float64
	CostEstimate       float64
	GrossProfitPerUnit float64
}

// ParseCurrency strips currency formatting ("$", thousands separators) and
// parses the remainder as a float. A value that still fails to parse is an
// error; the caller treats it as fatal for the whole run. ParseFloat accepts
// NaN/Inf spellings, which are not money; they are rejected too.
func ParseCurrency(raw string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(raw))
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("unparseable currency value %q", raw)
	}
	return value, nil
}

// coerceFloat parses a numeric cell, falling back to 0 for missing or
// non-numeric values. The fallback is silent per the cleaning policy.
// Non-finite values (ParseFloat accepts "NaN"/"Inf") count as non-numeric;
// letting them through would poison the division guard and every metric
// derived from the cell.
func coerceFloat(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

// DeriveMetrics computes price-per-unit, estimated cost and gross profit per
// unit for one joined row. units ordered coerces to 0 when invalid; the
// ordered-sales currency field failing to parse aborts the run.
func DeriveMetrics(row map[string]string, costPriceFactor float64) (DerivedMetrics, error) {
	orderedSales, err := ParseCurrency(row[ColOrderedSales])
	if err != nil {
		return DerivedMetrics{}, fmt.Errorf("sku %q: %w", row[ColSKU], err)
	}

	units := coerceFloat(row[ColUnitsOrdered])

	// Division-by-zero guard only; the reported units_ordered stays 0.
	safeUnits := units
	if safeUnits == 0 {
		safeUnits = 1
	}

	pricePerUnit := orderedSales / safeUnits
	costEstimate := pricePerUnit * costPriceFactor

	return DerivedMetrics{
		UnitsOrdered:       int(units),
		Available:          int(coerceFloat(row[ColAvailable])),
		PricePerUnit:       pricePerUnit,
		CostEstimate:       costEstimate,
		GrossProfitPerUnit: pricePerUnit - costEstimate,
	}, nil
}

// BuildRecommendation turns one joined row into the persisted record shape.
func BuildRecommendation(row map[string]string, costPriceFactor float64, runID string, now time.Time) (models.Recommendation, error) {
	metrics, err := DeriveMetrics(row, costPriceFactor)
	if err != nil {
		return models.Recommendation{}, err
	}

	outcome := Classify(ItemSignals{
		Available:          metrics.Available,
		UnitsOrdered:       metrics.UnitsOrdered,
		GrossProfitPerUnit: metrics.GrossProfitPerUnit,
	})

	return models.Recommendation{
		RunID:           runID,
		SKU:             row[ColSKU],
		ProductName:     truncate(row[ColProductName], maxProductNameLen),
		Available:       metrics.Available,
		UnitsOrdered:    metrics.UnitsOrdered,
		CurrentPrice:    round(metrics.PricePerUnit, 2),
		GrossProfitUnit: round(metrics.GrossProfitPerUnit, 2),
		Strategy:        outcome.Strategy,
		PriceAction:     outcome.PriceAction,
		PriceChangePct:  round(outcome.PriceChangePct, 3),
		AdAction:        outcome.AdAction,
		Reason:          outcome.Reason,
		CreatedAt:       now.UTC().Format(time.RFC3339Nano),
	}, nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func round(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}

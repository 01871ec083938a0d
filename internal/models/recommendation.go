package models

import (
	"time"

	"github.com/google/uuid"
)

// Strategy is the classification label the rule engine assigns to an item
type Strategy string

const (
	StrategyClearInventory  Strategy = "clear_inventory"
	StrategyStimulateDemand Strategy = "stimulate_demand"
	StrategyPremiumPosition Strategy = "premium_position"
	StrategyHold            Strategy = "hold"
)

// PriceAction is the recommended pricing move for an item
type PriceAction string

const (
	PriceActionNone     PriceAction = "none"
	PriceActionDrop     PriceAction = "drop"
	PriceActionIncrease PriceAction = "increase"
)

// AdAction is the recommended advertising move for an item
type AdAction string

const (
	AdActionNone     AdAction = "none"
	AdActionBoostLow AdAction = "boost_low"
)

// Recommendation is the per-SKU output of one pricing run. It is written
// once to the recommendation store and never mutated afterwards.
type Recommendation struct {
	RunID           string      `json:"run_id"`
	SKU             string      `json:"sku"`
	ProductName     string      `json:"product_name"`
	Available       int         `json:"available"`
	UnitsOrdered    int         `json:"units_ordered"`
	CurrentPrice    float64     `json:"current_price"`
	GrossProfitUnit float64     `json:"gross_profit_unit"`
	Strategy        Strategy    `json:"strategy"`
	PriceAction     PriceAction `json:"price_action"`
	PriceChangePct  float64     `json:"price_change_pct"`
	AdAction        AdAction    `json:"ad_action"`
	Reason          string      `json:"reason"`
	CreatedAt       string      `json:"created_at"`
}

// RunRequest is the invocation payload for one pricing run
type RunRequest struct {
	InventoryKey    string   `json:"inventory_s3_key" binding:"required"`
	SalesKey        string   `json:"sales_s3_key" binding:"required"`
	CostPriceFactor *float64 `json:"cost_price_factor,omitempty"`
}

// DefaultCostPriceFactor is applied when the payload omits cost_price_factor
const DefaultCostPriceFactor = 0.33

// Factor resolves the effective cost price factor for the run
func (r RunRequest) Factor() float64 {
	if r.CostPriceFactor != nil {
		return *r.CostPriceFactor
	}
	return DefaultCostPriceFactor
}

// RunResponse is returned to the caller after a completed run
type RunResponse struct {
	RunID           string           `json:"run_id"`
	SKUCount        int              `json:"sku_count"`
	Recommendations []Recommendation `json:"recommendations"`
}

// PricingRunStatus represents the terminal status of a recorded run
type PricingRunStatus string

const (
	PricingRunStatusCompleted PricingRunStatus = "COMPLETED"
	PricingRunStatusFailed    PricingRunStatus = "FAILED"
)

// PricingRun is the run-history record kept in the relational store.
// It is observability metadata; the recommendations themselves live in
// the key-value store.
type PricingRun struct {
	ID              uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RunID           string           `json:"runId" gorm:"type:varchar(64);not null;uniqueIndex"`
	InventoryKey    string           `json:"inventoryKey" gorm:"type:varchar(1024);not null"`
	SalesKey        string           `json:"salesKey" gorm:"type:varchar(1024);not null"`
	CostPriceFactor float64          `json:"costPriceFactor" gorm:"not null"`
	SKUCount        int              `json:"skuCount" gorm:"not null;default:0"`
	Status          PricingRunStatus `json:"status" gorm:"type:varchar(20);not null"`
	Error           *string          `json:"error,omitempty" gorm:"type:text"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// ErrorResponse is the flat error shape returned at the invocation boundary.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Package appraisal provides the capital-project appraisal calculation engine.
// Every entry point is a pure function over caller-owned inputs: no I/O, no shared state.
package appraisal

// =============================================================================
// INPUT SERIES
// Amounts are in a single implied currency, already normalized by the caller.
// Percentages are plain numbers: 10 means 10%, not 0.10.
// =============================================================================

// CostRow is one year of the financial view.
type CostRow struct {
	Year    int     `json:"year" yaml:"year"`
	Capex   float64 `json:"capex" yaml:"capex" validate:"gte=0"`
	Opex    float64 `json:"opex" yaml:"opex" validate:"gte=0"`
	Revenue float64 `json:"revenue" yaml:"revenue" validate:"gte=0"`
}

// EconomicCostRow is one year of market-priced cost, split by shadow-pricing category.
type EconomicCostRow struct {
	Year         int     `json:"year" yaml:"year"`
	LocalCost    float64 `json:"local_cost" yaml:"local_cost" validate:"gte=0"`
	ImportedCost float64 `json:"imported_cost" yaml:"imported_cost" validate:"gte=0"`
	LabourCost   float64 `json:"labour_cost" yaml:"labour_cost" validate:"gte=0"`
}

// BenefitRow is one economic benefit amount. Several rows may share a year;
// Category is informational only.
type BenefitRow struct {
	Year     int     `json:"year" yaml:"year"`
	Amount   float64 `json:"amount" yaml:"amount" validate:"gte=0"`
	Category string  `json:"category" yaml:"category"`
}

// ShadowPrices convert market-price cost components into economic prices.
type ShadowPrices struct {
	StandardConversionFactor float64 `json:"standard_conversion_factor" yaml:"standard_conversion_factor" validate:"gt=0"`
	ShadowExchangeRate       float64 `json:"shadow_exchange_rate" yaml:"shadow_exchange_rate" validate:"gt=0"`
	ShadowWageRate           float64 `json:"shadow_wage_rate" yaml:"shadow_wage_rate" validate:"gt=0,lte=1"`
	SocialDiscountRate       float64 `json:"social_discount_rate" yaml:"social_discount_rate" validate:"gte=0"`
}

// =============================================================================
// RESULTS
// A nil rate means "no solution" and must stay distinguishable from 0%.
// =============================================================================

// RateOfReturnResult is the solver output.
type RateOfReturnResult struct {
	IRR         *float64 `json:"irr"` // percent
	NPVAtHurdle float64  `json:"npv_at_hurdle"`
}

// FIRRResult is the financial appraisal output.
type FIRRResult struct {
	RateOfReturnResult
	PaybackYear     *int    `json:"payback_year"`
	TotalInvestment float64 `json:"total_investment"`
}

// EIRRResult is the economic appraisal output. ENPV equals NPVAtHurdle
// evaluated at the social discount rate.
type EIRRResult struct {
	RateOfReturnResult
	ENPV float64  `json:"enpv"`
	BCR  *float64 `json:"bcr"`
}

// SensitivityResult is one scenario of a sensitivity run.
type SensitivityResult struct {
	Scenario string   `json:"scenario"`
	Rate     *float64 `json:"rate"` // percent
	NPV      float64  `json:"npv"`
}

// VGFResult is the viability-gap estimate. Both fields are nil when no
// injection up to the total project cost reaches the target.
type VGFResult struct {
	GapAmount       *float64 `json:"gap_amount"`
	VGFAsPctOfCapex *float64 `json:"vgf_as_pct_of_capex"`
}

// RoutingDecision is the funding-track recommendation.
type RoutingDecision struct {
	Track       Track    `json:"track"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	NextSteps   []string `json:"next_steps"`
	Severity    Severity `json:"severity"`
}

func floatPtr(f float64) *float64 { return &f }

func intPtr(i int) *int { return &i }

package appraisal

import "fmt"

// FinancialHurdleRate is the FIRR policy threshold in percent. It is both the
// discount rate for the financial NPV and the "commercially viable" routing
// boundary, so it is deliberately not part of Config.
const FinancialHurdleRate = 10.0

// BaseCaseName labels the unmodified scenario; it is always first in a sensitivity run.
const BaseCaseName = "Base Case"

// Scenario scales costs and revenue (or benefits) uniformly across all rows.
type Scenario struct {
	Name              string  `json:"name" yaml:"name"`
	CostMultiplier    float64 `json:"cost_multiplier" yaml:"cost_multiplier"`
	RevenueMultiplier float64 `json:"revenue_multiplier" yaml:"revenue_multiplier"`
}

// RoutingPolicy holds the tunable thresholds of the funding-track decision.
// The commercial FIRR boundary is FinancialHurdleRate and is not tunable.
type RoutingPolicy struct {
	// EconomicEIRRThreshold is the minimum EIRR (percent) for a
	// policy-aligned project to qualify for a supported track.
	EconomicEIRRThreshold float64 `json:"economic_eirr_threshold" yaml:"economic_eirr_threshold"`
	// PPPMinFIRR separates PPP-with-VGF (FIRR at or above) from
	// concessional finance (FIRR below or unknown).
	PPPMinFIRR float64 `json:"ppp_min_firr" yaml:"ppp_min_firr"`
}

// VGFSettings configure the viability-gap estimate made by Appraise.
type VGFSettings struct {
	TargetFIRR        float64 `json:"target_firr" yaml:"target_firr"`
	ConstructionYears int     `json:"construction_years" yaml:"construction_years"`
}

// Config carries the named constants the wizard used to hard-code inline.
type Config struct {
	ShadowPrices ShadowPrices  `json:"shadow_prices" yaml:"shadow_prices"`
	Scenarios    []Scenario    `json:"scenarios" yaml:"scenarios"`
	Routing      RoutingPolicy `json:"routing" yaml:"routing"`
	VGF          VGFSettings   `json:"vgf" yaml:"vgf"`
}

// DefaultScenarios returns the standard sensitivity set, base case first.
func DefaultScenarios() []Scenario {
	return []Scenario{
		{Name: BaseCaseName, CostMultiplier: 1.0, RevenueMultiplier: 1.0},
		{Name: "Revenue -10%", CostMultiplier: 1.0, RevenueMultiplier: 0.9},
		{Name: "Revenue -20%", CostMultiplier: 1.0, RevenueMultiplier: 0.8},
		{Name: "Costs +10%", CostMultiplier: 1.1, RevenueMultiplier: 1.0},
		{Name: "Costs +20%", CostMultiplier: 1.2, RevenueMultiplier: 1.0},
		{Name: "Worst Case", CostMultiplier: 1.2, RevenueMultiplier: 0.8},
	}
}

// DefaultShadowPrices returns the conversion factors used when a project
// does not supply its own.
func DefaultShadowPrices() ShadowPrices {
	return ShadowPrices{
		StandardConversionFactor: 0.90,
		ShadowExchangeRate:       1.10,
		ShadowWageRate:           0.65,
		SocialDiscountRate:       12,
	}
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		ShadowPrices: DefaultShadowPrices(),
		Scenarios:    DefaultScenarios(),
		Routing: RoutingPolicy{
			EconomicEIRRThreshold: 15,
			PPPMinFIRR:            5,
		},
		VGF: VGFSettings{
			TargetFIRR:        FinancialHurdleRate,
			ConstructionYears: 1,
		},
	}
}

// Validate checks the configuration for values the engine cannot use.
func (c Config) Validate() error {
	verr := &ValidationError{}
	verr.addShadowPrices("shadow_prices", c.ShadowPrices)

	for i, s := range c.Scenarios {
		field := fmt.Sprintf("scenarios[%d]", i)
		if s.Name == "" {
			verr.add(field+".name", "must not be empty")
		}
		if !isFinite(s.CostMultiplier) || s.CostMultiplier < 0 {
			verr.add(field+".cost_multiplier", "must be a finite number >= 0")
		}
		if !isFinite(s.RevenueMultiplier) || s.RevenueMultiplier < 0 {
			verr.add(field+".revenue_multiplier", "must be a finite number >= 0")
		}
	}

	if !isFinite(c.Routing.EconomicEIRRThreshold) {
		verr.add("routing.economic_eirr_threshold", "must be finite")
	}
	if !isFinite(c.Routing.PPPMinFIRR) || c.Routing.PPPMinFIRR > FinancialHurdleRate {
		verr.add("routing.ppp_min_firr", fmt.Sprintf("must be finite and <= %g", FinancialHurdleRate))
	}
	if !isFinite(c.VGF.TargetFIRR) || c.VGF.TargetFIRR <= lowerBracket*100 {
		verr.add("vgf.target_firr", "must be finite and above -99")
	}
	if c.VGF.ConstructionYears < 0 {
		verr.add("vgf.construction_years", "must be >= 0")
	}

	return verr.orNil()
}

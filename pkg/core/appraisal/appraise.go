package appraisal

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// EconomicInput is the economic view of a project. A nil ShadowPrices falls
// back to Config.ShadowPrices.
type EconomicInput struct {
	Costs        []EconomicCostRow `json:"costs"`
	Benefits     []BenefitRow      `json:"benefits"`
	ShadowPrices *ShadowPrices     `json:"shadow_prices,omitempty"`
}

// Input is everything the appraisal wizard collects for one project.
type Input struct {
	ProjectID     string         `json:"project_id"`
	PolicyAligned bool           `json:"policy_aligned"`
	Financial     []CostRow      `json:"financial"`
	Economic      *EconomicInput `json:"economic,omitempty"`
}

// Report aggregates every engine output for one project.
type Report struct {
	ProjectID            string              `json:"project_id"`
	Financial            FIRRResult          `json:"financial"`
	Economic             *EIRRResult         `json:"economic,omitempty"`
	ShadowPrices         *ShadowPrices       `json:"shadow_prices,omitempty"`
	FinancialSensitivity []SensitivityResult `json:"financial_sensitivity"`
	EconomicSensitivity  []SensitivityResult `json:"economic_sensitivity,omitempty"`
	VGF                  VGFResult           `json:"vgf"`
	VGFTarget            float64             `json:"vgf_target"`
	Routing              RoutingDecision     `json:"routing"`
}

// Validate checks an Input against the engine's input rules. The financial
// schedule is required; the economic view is optional.
func (in Input) Validate(defaults ShadowPrices) error {
	verr := &ValidationError{}
	if len(in.Financial) == 0 {
		verr.add("financial", "must contain at least one row")
	}
	verr.addCostRows("financial", in.Financial)
	if in.Economic != nil {
		verr.addEconomic("economic.costs", "economic.benefits", "economic.shadow_prices",
			in.Economic.Costs, in.Economic.Benefits, in.Economic.prices(defaults))
	}
	return verr.orNil()
}

func (e *EconomicInput) prices(defaults ShadowPrices) ShadowPrices {
	if e.ShadowPrices != nil {
		return *e.ShadowPrices
	}
	return defaults
}

// ErrInvalidConfig is returned by Appraise when the engine Config itself is
// invalid. It does not wrap *ValidationError, which is reserved for bad input.
var ErrInvalidConfig = errors.New("invalid engine config")

// Appraise runs the full engine for one project: FIRR and EIRR concurrently,
// then sensitivity for each view, the viability gap against cfg.VGF and the
// routing decision. Invalid input returns a *ValidationError.
func Appraise(ctx context.Context, in Input, cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := in.Validate(cfg.ShadowPrices); err != nil {
		return nil, err
	}

	report := &Report{ProjectID: in.ProjectID, VGFTarget: cfg.VGF.TargetFIRR}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		report.Financial = ComputeFIRR(in.Financial)
		return nil
	})
	if in.Economic != nil {
		prices := in.Economic.prices(cfg.ShadowPrices)
		report.ShadowPrices = &prices
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			eirr := ComputeEIRR(in.Economic.Costs, in.Economic.Benefits, prices)
			report.Economic = &eirr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("appraise %s: %w", in.ProjectID, err)
	}

	report.FinancialSensitivity = RunSensitivity(in.Financial, FinancialRateOfReturn, cfg.Scenarios)
	var eirr *float64
	if report.Economic != nil {
		eirr = report.Economic.IRR
		report.EconomicSensitivity = RunEconomicSensitivity(
			in.Economic.Costs, in.Economic.Benefits, *report.ShadowPrices, cfg.Scenarios)
	}

	report.VGF = EstimateVGF(in.Financial, cfg.VGF.TargetFIRR, cfg.VGF.ConstructionYears)
	report.Routing = Classify(report.Financial.IRR, eirr, in.PolicyAligned, cfg.Routing)

	return report, nil
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apiappraisal "project_appraisal/pkg/api/appraisal"
	"project_appraisal/pkg/core/appraisal"
	"project_appraisal/pkg/core/ingest"
	"project_appraisal/pkg/core/report"
	"project_appraisal/pkg/core/utils"
)

func newFIRRCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "firr",
		Short: "Financial IRR, NPV at 10%, payback year and total investment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req apiappraisal.FinancialRequest
			if err := opts.decode(&req); err != nil {
				return err
			}
			if err := opts.check(appraisal.ValidateCostRows(req.Rows)); err != nil {
				return err
			}
			return printJSON(cmd, appraisal.ComputeFIRR(req.Rows))
		},
	}
}

func newEIRRCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "eirr",
		Short: "Economic IRR, ENPV and benefit-cost ratio at shadow prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req apiappraisal.EconomicRequest
			if err := opts.decode(&req); err != nil {
				return err
			}
			prices := opts.prices(req.ShadowPrices)
			if err := opts.check(appraisal.ValidateEconomicInput(req.Costs, req.Benefits, prices)); err != nil {
				return err
			}
			return printJSON(cmd, apiappraisal.EconomicResponse{
				Result:       appraisal.ComputeEIRR(req.Costs, req.Benefits, prices),
				ShadowPrices: prices,
			})
		},
	}
}

func newSensitivityCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sensitivity",
		Short: "Re-run FIRR or EIRR under the configured scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req apiappraisal.SensitivityRequest
			if err := opts.decode(&req); err != nil {
				return err
			}
			scenarios := opts.cfg.Scenarios
			if len(req.Scenarios) > 0 {
				cfg := opts.cfg
				cfg.Scenarios = req.Scenarios
				if err := opts.check(cfg.Validate()); err != nil {
					return err
				}
				scenarios = req.Scenarios
			}

			var results []appraisal.SensitivityResult
			switch req.View {
			case "", "financial":
				req.View = "financial"
				if err := opts.check(appraisal.ValidateCostRows(req.Rows)); err != nil {
					return err
				}
				results = appraisal.RunSensitivity(req.Rows, appraisal.FinancialRateOfReturn, scenarios)
			case "economic":
				prices := opts.prices(req.ShadowPrices)
				if err := opts.check(appraisal.ValidateEconomicInput(req.Costs, req.Benefits, prices)); err != nil {
					return err
				}
				results = appraisal.RunEconomicSensitivity(req.Costs, req.Benefits, prices, scenarios)
			default:
				return fmt.Errorf("unknown view %q", req.View)
			}

			return printJSON(cmd, apiappraisal.SensitivityResponse{
				View:    req.View,
				Results: results,
				Tornado: report.Tornado(results),
			})
		},
	}
}

func newVGFCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "vgf",
		Short: "Viability gap funding needed to reach the target FIRR",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req apiappraisal.VGFRequest
			if err := opts.decode(&req); err != nil {
				return err
			}
			cfg := opts.cfg
			if req.TargetFIRR != nil {
				cfg.VGF.TargetFIRR = *req.TargetFIRR
			}
			if req.ConstructionYears != nil {
				cfg.VGF.ConstructionYears = *req.ConstructionYears
			}
			if err := opts.check(cfg.Validate()); err != nil {
				return err
			}
			if err := opts.check(appraisal.ValidateCostRows(req.Rows)); err != nil {
				return err
			}
			return printJSON(cmd, apiappraisal.VGFResponse{
				VGFResult:         appraisal.EstimateVGF(req.Rows, cfg.VGF.TargetFIRR, cfg.VGF.ConstructionYears),
				TargetFIRR:        cfg.VGF.TargetFIRR,
				ConstructionYears: cfg.VGF.ConstructionYears,
			})
		},
	}
}

func newRouteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "route",
		Short: "Funding-track decision from FIRR, EIRR and policy alignment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req apiappraisal.RouteRequest
			if err := opts.decode(&req); err != nil {
				return err
			}
			return printJSON(cmd, appraisal.Classify(req.FIRR, req.EIRR, req.PolicyAligned, opts.cfg.Routing))
		},
	}
}

func newReportCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Full appraisal of one project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in appraisal.Input
			if err := opts.decode(&in); err != nil {
				return err
			}
			rep, err := appraisal.Appraise(cmd.Context(), in, opts.cfg)
			if err := opts.check(err); err != nil {
				return err
			}
			opts.logger.Debug("appraisal completed",
				zap.String("project", rep.ProjectID), zap.String("track", string(rep.Routing.Track)))

			switch opts.format {
			case "json":
				return printJSON(cmd, rep)
			case "markdown":
				_, err := fmt.Fprint(cmd.OutOrStdout(), report.Markdown(rep))
				return err
			case "html":
				html, err := report.HTML(rep)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), html)
				return err
			}
			return fmt.Errorf("unknown format %q", opts.format)
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "json", "output format: json, markdown or html")
	return cmd
}

func newImportCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Convert an HTML schedule table to JSON rows",
		Long: `Reads the first matching table of an HTML document (a spreadsheet saved as
HTML or a feasibility report) and prints the rows as JSON.

Kinds:
  - cost:     year, capex, opex, revenue
  - economic: year, local, imported, labour
  - benefit:  year, amount, category`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			html, err := opts.payload()
			if err != nil {
				return err
			}
			switch opts.kind {
			case "cost":
				rows, err := ingest.ParseCostScheduleHTML(html)
				if err != nil {
					return err
				}
				return printJSON(cmd, apiappraisal.FinancialRequest{Rows: rows})
			case "economic":
				rows, err := ingest.ParseEconomicScheduleHTML(html)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]interface{}{"costs": rows})
			case "benefit":
				rows, err := ingest.ParseBenefitScheduleHTML(html)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]interface{}{"benefits": rows})
			}
			return fmt.Errorf("unknown kind %q", opts.kind)
		},
	}
	cmd.Flags().StringVar(&opts.kind, "kind", "cost", "schedule kind: cost, economic or benefit")
	return cmd
}

// =============================================================================
// INPUT / OUTPUT
// =============================================================================

func (o *options) payload() (string, error) {
	switch {
	case o.data != "" && o.file != "":
		return "", errors.New("use either --data or --file, not both")
	case o.data != "":
		return o.data, nil
	case o.file != "":
		b, err := os.ReadFile(o.file)
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return string(b), nil
	}
	return "", errors.New("no input: pass --data or --file")
}

func (o *options) decode(v interface{}) error {
	raw, err := o.payload()
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(o.file), ".hjson") {
		return utils.ParseHJSONToStruct(raw, v)
	}
	_, err = utils.SmartParse(raw, v)
	return err
}

// check logs each field of a validation error before returning it.
func (o *options) check(err error) error {
	var verr *appraisal.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			o.logger.Error("invalid input", zap.String("field", f.Field), zap.String("problem", f.Message))
		}
	}
	return err
}

func (o *options) prices(override *appraisal.ShadowPrices) appraisal.ShadowPrices {
	if override != nil {
		return *override
	}
	return o.cfg.ShadowPrices
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Package report renders appraisal results for people: Markdown for the
// wizard's summary step and HTML for export.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"project_appraisal/pkg/core/appraisal"
)

var renderer = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown renders the full appraisal summary.
func Markdown(r *appraisal.Report) string {
	var b strings.Builder

	title := r.ProjectID
	if title == "" {
		title = "Unnamed project"
	}
	fmt.Fprintf(&b, "# Appraisal: %s\n\n", title)

	writeFinancial(&b, r)
	if r.Economic != nil {
		writeEconomic(&b, r)
	}

	writeSensitivity(&b, "Financial sensitivity", "FIRR", r.FinancialSensitivity)
	if len(r.EconomicSensitivity) > 0 {
		writeSensitivity(&b, "Economic sensitivity", "EIRR", r.EconomicSensitivity)
	}

	writeVGF(&b, r)
	writeRouting(&b, r.Routing)

	return b.String()
}

// HTML renders Markdown(r) through goldmark with GFM tables.
func HTML(r *appraisal.Report) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(Markdown(r)), &buf); err != nil {
		return "", fmt.Errorf("render report html: %w", err)
	}
	return buf.String(), nil
}

func writeFinancial(b *strings.Builder, r *appraisal.Report) {
	f := r.Financial
	payback := NotAvailable
	if f.PaybackYear != nil {
		payback = fmt.Sprint(*f.PaybackYear)
	}

	b.WriteString("## Financial appraisal\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(b, "| FIRR | %s |\n", Percent(f.IRR))
	fmt.Fprintf(b, "| NPV @ %g%% | %s |\n", appraisal.FinancialHurdleRate, Money(f.NPVAtHurdle))
	fmt.Fprintf(b, "| Payback year | %s |\n", payback)
	fmt.Fprintf(b, "| Total investment | %s |\n\n", Money(f.TotalInvestment))
}

func writeEconomic(b *strings.Builder, r *appraisal.Report) {
	e := r.Economic
	sdr := 0.0
	if r.ShadowPrices != nil {
		sdr = r.ShadowPrices.SocialDiscountRate
	}

	b.WriteString("## Economic appraisal\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(b, "| EIRR | %s |\n", Percent(e.IRR))
	fmt.Fprintf(b, "| ENPV @ %g%% | %s |\n", sdr, Money(e.ENPV))
	fmt.Fprintf(b, "| Benefit-cost ratio | %s |\n\n", Ratio(e.BCR))

	if p := r.ShadowPrices; p != nil {
		b.WriteString("Shadow prices: ")
		fmt.Fprintf(b, "SCF %g, SER %g, SWR %g, SDR %g%%.\n\n",
			p.StandardConversionFactor, p.ShadowExchangeRate, p.ShadowWageRate, p.SocialDiscountRate)
	}
}

func writeSensitivity(b *strings.Builder, heading, rateName string, results []appraisal.SensitivityResult) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", heading)
	fmt.Fprintf(b, "| Scenario | %s | NPV |\n|---|---|---|\n", rateName)
	for _, s := range results {
		fmt.Fprintf(b, "| %s | %s | %s |\n", s.Scenario, Percent(s.Rate), Money(s.NPV))
	}
	b.WriteString("\n")

	bars := Tornado(results)
	if len(bars) == 0 {
		return
	}
	fmt.Fprintf(b, "Deviation from %s:\n\n", results[0].Scenario)
	fmt.Fprintf(b, "| Scenario | Δ %s | Δ NPV |\n|---|---|---|\n", rateName)
	for _, bar := range bars {
		fmt.Fprintf(b, "| %s | %s | %s |\n", bar.Scenario, Points(bar.RateDelta), Money(bar.NPVDelta))
	}
	b.WriteString("\n")
}

func writeVGF(b *strings.Builder, r *appraisal.Report) {
	fmt.Fprintf(b, "## Viability gap funding (target FIRR %g%%)\n\n", r.VGFTarget)
	switch {
	case r.VGF.GapAmount == nil:
		b.WriteString("No grant up to the total project cost reaches the target.\n\n")
	case *r.VGF.GapAmount == 0:
		b.WriteString("The project meets the target without a grant.\n\n")
	default:
		fmt.Fprintf(b, "Gap: %s (%s of capex).\n\n", Money(*r.VGF.GapAmount), Percent(r.VGF.VGFAsPctOfCapex))
	}
}

func writeRouting(b *strings.Builder, d appraisal.RoutingDecision) {
	fmt.Fprintf(b, "## Funding track: %s (%s)\n\n", d.Label, d.Severity)
	if d.Description != "" {
		b.WriteString(d.Description + "\n\n")
	}
	for _, step := range d.NextSteps {
		fmt.Fprintf(b, "- %s\n", step)
	}
}

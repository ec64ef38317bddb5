package appraisal

import (
	"encoding/json"
	"fmt"
)

// Severity drives presentation colour only. It is a closed set.
type Severity int

// Severities, one per funding track.
const (
	SeverityGreen  Severity = iota // commercial
	SeverityBlue                   // PPP with VGF
	SeverityPurple                 // concessional
	SeverityAmber                  // budget
	SeverityRed                    // not recommended
)

var severityNames = [...]string{"green", "blue", "purple", "amber", "red"}

// String returns the lower-case colour name, or "unknown".
func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

// ParseSeverity maps a name back to its Severity.
func ParseSeverity(name string) (Severity, error) {
	for i, n := range severityNames {
		if n == name {
			return Severity(i), nil
		}
	}
	return 0, fmt.Errorf("unknown severity %q", name)
}

// MarshalJSON encodes s as its colour name and rejects values outside the set.
func (s Severity) MarshalJSON() ([]byte, error) {
	if s < 0 || int(s) >= len(severityNames) {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts only the colour names listed in the set.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Track identifies a funding route.
type Track string

const (
	TrackCommercial     Track = "commercial"
	TrackPPPWithVGF     Track = "ppp_vgf"
	TrackConcessional   Track = "concessional"
	TrackBudget         Track = "budget"
	TrackNotRecommended Track = "not_recommended"
)

var decisions = map[Track]RoutingDecision{
	TrackCommercial: {
		Track:       TrackCommercial,
		Label:       "Commercial / Private Finance",
		Description: "The project earns at least the financial hurdle rate and can be financed on commercial terms.",
		NextSteps: []string{
			"Prepare an investment memorandum for commercial lenders",
			"Confirm revenue assumptions with market studies",
			"Proceed to procurement planning",
		},
		Severity: SeverityGreen,
	},
	TrackPPPWithVGF: {
		Track:       TrackPPPWithVGF,
		Label:       "PPP with Viability Gap Funding",
		Description: "The project is economically justified and partly self-financing; a capital grant can close the gap to the commercial hurdle.",
		NextSteps: []string{
			"Size the viability gap grant against the target FIRR",
			"Structure a PPP transaction and risk allocation",
			"Submit to the PPP unit for screening",
		},
		Severity: SeverityBlue,
	},
	TrackConcessional: {
		Track:       TrackConcessional,
		Label:       "Concessional / Development Partner Finance",
		Description: "The project is economically justified and policy-aligned but not financially viable; seek grant or concessional loan finance.",
		NextSteps: []string{
			"Identify development partners with matching sector programmes",
			"Prepare a concept note with the economic analysis",
			"Register the project in the public investment pipeline",
		},
		Severity: SeverityPurple,
	},
	TrackBudget: {
		Track:       TrackBudget,
		Label:       "Public Budget Funding",
		Description: "The project is policy-aligned but does not meet the financial or economic thresholds; it can only proceed as a budget-funded public good.",
		NextSteps: []string{
			"Review scope and costs to improve economic returns",
			"Request a budget allocation through the sector ministry",
			"Document the non-quantified benefits",
		},
		Severity: SeverityAmber,
	},
	TrackNotRecommended: {
		Track:       TrackNotRecommended,
		Label:       "Not Recommended",
		Description: "The project meets neither the financial nor the economic thresholds and is not aligned with national policy priorities.",
		NextSteps: []string{
			"Revisit the project concept and alternatives",
			"Check alignment with the national development plan",
		},
		Severity: SeverityRed,
	},
}

// Decision returns the canonical decision for a track.
func Decision(t Track) (RoutingDecision, bool) {
	d, ok := decisions[t]
	if !ok {
		return RoutingDecision{}, false
	}
	d.NextSteps = append([]string(nil), d.NextSteps...)
	return d, true
}

// Classify maps appraisal rates (percent, nil when not evaluated) to a
// funding track.
//
//   - FIRR >= FinancialHurdleRate                         → commercial (green)
//   - EIRR >= policy threshold, policy-aligned:
//     FIRR >= policy.PPPMinFIRR                           → PPP with VGF (blue)
//     FIRR below that or unknown                          → concessional (purple)
//   - otherwise policy-aligned                            → budget (amber)
//   - otherwise                                           → not recommended (red)
//
// A nil rate never satisfies a threshold, so an unknown FIRR is never green.
func Classify(firr, eirr *float64, policyAligned bool, policy RoutingPolicy) RoutingDecision {
	track := classifyTrack(firr, eirr, policyAligned, policy)
	d, _ := Decision(track)
	return d
}

func classifyTrack(firr, eirr *float64, policyAligned bool, policy RoutingPolicy) Track {
	if atLeast(firr, FinancialHurdleRate) {
		return TrackCommercial
	}
	if policyAligned && atLeast(eirr, policy.EconomicEIRRThreshold) {
		if atLeast(firr, policy.PPPMinFIRR) {
			return TrackPPPWithVGF
		}
		return TrackConcessional
	}
	if policyAligned {
		return TrackBudget
	}
	return TrackNotRecommended
}

func atLeast(rate *float64, threshold float64) bool {
	return rate != nil && isFinite(*rate) && *rate >= threshold
}

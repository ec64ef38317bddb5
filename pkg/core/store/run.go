package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"project_appraisal/pkg/core/appraisal"
)

// ErrNotFound is returned when a run ID is unknown.
var ErrNotFound = errors.New("appraisal run not found")

// Run is one stored appraisal.
type Run struct {
	ID        uuid.UUID         `json:"id"`
	ProjectID string            `json:"project_id"`
	CreatedAt time.Time         `json:"created_at"`
	Report    *appraisal.Report `json:"report"`
}

// RunSummary is the listing view of a run. Rates are rounded to four
// decimals and null when the solver found no rate.
type RunSummary struct {
	ID        uuid.UUID           `json:"id"`
	ProjectID string              `json:"project_id"`
	CreatedAt time.Time           `json:"created_at"`
	FIRR      decimal.NullDecimal `json:"firr"`
	EIRR      decimal.NullDecimal `json:"eirr"`
	Track     appraisal.Track     `json:"track"`
}

// RunStore is implemented by AppraisalRepo and ResultCache.
type RunStore interface {
	Save(ctx context.Context, report *appraisal.Report) (*Run, error)
	Load(ctx context.Context, id uuid.UUID) (*Run, error)
	ListByProject(ctx context.Context, projectID string) ([]RunSummary, error)
}

func newRun(report *appraisal.Report) *Run {
	return &Run{
		ID:        uuid.New(),
		ProjectID: report.ProjectID,
		CreatedAt: time.Now().UTC(),
		Report:    report,
	}
}

// Summary extracts the headline figures of a run.
func (r *Run) Summary() RunSummary {
	s := RunSummary{ID: r.ID, ProjectID: r.ProjectID, CreatedAt: r.CreatedAt}
	if r.Report == nil {
		return s
	}
	s.FIRR = headline(r.Report.Financial.IRR)
	if r.Report.Economic != nil {
		s.EIRR = headline(r.Report.Economic.IRR)
	}
	s.Track = r.Report.Routing.Track
	return s
}

func headline(rate *float64) decimal.NullDecimal {
	if rate == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(*rate).Round(4))
}

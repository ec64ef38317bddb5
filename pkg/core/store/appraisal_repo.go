package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"project_appraisal/pkg/core/appraisal"
)

// AppraisalRepo stores runs in the appraisal_runs table. The full report
// is a JSONB blob; headline rates are NUMERIC columns for listing.
type AppraisalRepo struct {
	pool *pgxpool.Pool
}

// NewAppraisalRepo returns a repository over pool. A nil pool makes every
// call fail with ErrPoolNotInitialized.
func NewAppraisalRepo(pool *pgxpool.Pool) *AppraisalRepo {
	return &AppraisalRepo{pool: pool}
}

// Save inserts report as a new run.
func (r *AppraisalRepo) Save(ctx context.Context, report *appraisal.Report) (*Run, error) {
	if r.pool == nil {
		return nil, ErrPoolNotInitialized
	}

	run := newRun(report)
	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}

	sum := run.Summary()
	query := `
		INSERT INTO appraisal_runs (id, project_id, firr, eirr, track, report, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.pool.Exec(ctx, query,
		run.ID, run.ProjectID, sum.FIRR, sum.EIRR, string(sum.Track), data, run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("save appraisal run: %w", err)
	}
	return run, nil
}

// Load fetches one run by ID.
func (r *AppraisalRepo) Load(ctx context.Context, id uuid.UUID) (*Run, error) {
	if r.pool == nil {
		return nil, ErrPoolNotInitialized
	}

	query := `
		SELECT project_id, report, created_at
		FROM appraisal_runs
		WHERE id = $1
	`
	run := &Run{ID: id}
	var data []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(&run.ProjectID, &data, &run.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load appraisal run %s: %w", id, err)
	}

	var report appraisal.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("unmarshal appraisal run %s: %w", id, err)
	}
	run.Report = &report
	return run, nil
}

// ListByProject returns the project's runs, newest first.
func (r *AppraisalRepo) ListByProject(ctx context.Context, projectID string) ([]RunSummary, error) {
	if r.pool == nil {
		return nil, ErrPoolNotInitialized
	}

	query := `
		SELECT id, project_id, created_at, firr, eirr, track
		FROM appraisal_runs
		WHERE project_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list appraisal runs: %w", err)
	}
	defer rows.Close()

	out := []RunSummary{}
	for rows.Next() {
		var s RunSummary
		var track string
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.CreatedAt, &s.FIRR, &s.EIRR, &track); err != nil {
			return nil, fmt.Errorf("scan appraisal run: %w", err)
		}
		s.Track = appraisal.Track(track)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list appraisal runs: %w", err)
	}
	return out, nil
}

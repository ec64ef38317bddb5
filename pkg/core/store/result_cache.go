package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/google/uuid"

	"project_appraisal/pkg/core/appraisal"
)

// ResultCache is the file-system fallback used when no database is
// configured. Runs live at <dir>/<project>/<run id>.json.
type ResultCache struct {
	dir string
}

// NewResultCache creates the cache directory if needed. An empty dir
// defaults to .cache/appraisals.
func NewResultCache(dir string) (*ResultCache, error) {
	if dir == "" {
		dir = filepath.Join(".cache", "appraisals")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create result cache dir: %w", err)
	}
	return &ResultCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *ResultCache) Dir() string {
	return c.dir
}

// Save writes report as a new run.
func (c *ResultCache) Save(ctx context.Context, report *appraisal.Report) (*Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run := newRun(report)
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal appraisal run: %w", err)
	}

	dir := c.projectDir(run.ProjectID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create project dir: %w", err)
	}

	// Write then rename so readers never see a partial file.
	path := filepath.Join(dir, run.ID.String()+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return nil, fmt.Errorf("write appraisal run: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return nil, fmt.Errorf("write appraisal run: %w", err)
	}
	return run, nil
}

// Load finds a run by ID in any project directory.
func (c *ResultCache) Load(ctx context.Context, id uuid.UUID) (*Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matches, err := filepath.Glob(filepath.Join(c.dir, "*", id.String()+".json"))
	if err != nil {
		return nil, fmt.Errorf("find appraisal run: %w", err)
	}
	if len(matches) == 0 {
		return nil, ErrNotFound
	}
	return loadRun(matches[0])
}

// ListByProject returns the project's runs, newest first. Unreadable files
// are skipped.
func (c *ResultCache) ListByProject(ctx context.Context, projectID string) ([]RunSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(c.projectDir(projectID))
	if errors.Is(err, os.ErrNotExist) {
		return []RunSummary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list appraisal runs: %w", err)
	}

	out := []RunSummary{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		run, err := loadRun(filepath.Join(c.projectDir(projectID), e.Name()))
		if err != nil || run.ProjectID != projectID {
			continue
		}
		out = append(out, run.Summary())
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

var unsafePathChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

func (c *ResultCache) projectDir(projectID string) string {
	safe := unsafePathChars.ReplaceAllString(projectID, "_")
	if safe == "" || safe == "." || safe == ".." {
		safe = "_unassigned"
	}
	return filepath.Join(c.dir, safe)
}

func loadRun(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read appraisal run: %w", err)
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("unmarshal appraisal run %s: %w", filepath.Base(path), err)
	}
	return &run, nil
}

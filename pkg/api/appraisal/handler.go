// Package appraisal exposes the appraisal engine over HTTP for the wizard.
package appraisal

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	engine "project_appraisal/pkg/core/appraisal"
	"project_appraisal/pkg/core/report"
	"project_appraisal/pkg/core/store"
)

// Handler serves /api/appraisal/*. Runs is optional; without it reports
// are not persisted and the runs endpoint answers 503.
type Handler struct {
	cfg    engine.Config
	runs   store.RunStore
	logger *zap.Logger
}

// NewHandler creates a handler over a validated engine config.
func NewHandler(cfg engine.Config, runs store.RunStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{cfg: cfg, runs: runs, logger: logger}
}

// Register mounts every endpoint on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/appraisal/financial", h.HandleFinancial)
	mux.HandleFunc("/api/appraisal/economic", h.HandleEconomic)
	mux.HandleFunc("/api/appraisal/sensitivity", h.HandleSensitivity)
	mux.HandleFunc("/api/appraisal/vgf", h.HandleVGF)
	mux.HandleFunc("/api/appraisal/route", h.HandleRoute)
	mux.HandleFunc("/api/appraisal/report", h.HandleReport)
	mux.HandleFunc("/api/appraisal/runs", h.HandleRuns)
}

// =============================================================================
// REQUESTS AND RESPONSES
// =============================================================================

type FinancialRequest struct {
	Rows []engine.CostRow `json:"rows"`
}

type EconomicRequest struct {
	Costs        []engine.EconomicCostRow `json:"costs"`
	Benefits     []engine.BenefitRow      `json:"benefits"`
	ShadowPrices *engine.ShadowPrices     `json:"shadow_prices,omitempty"`
}

type EconomicResponse struct {
	Result       engine.EIRRResult   `json:"result"`
	ShadowPrices engine.ShadowPrices `json:"shadow_prices"`
}

// SensitivityRequest selects the view with View ("financial" by default or
// "economic"). Scenarios overrides the configured set.
type SensitivityRequest struct {
	View         string                   `json:"view"`
	Rows         []engine.CostRow         `json:"rows"`
	Costs        []engine.EconomicCostRow `json:"costs"`
	Benefits     []engine.BenefitRow      `json:"benefits"`
	ShadowPrices *engine.ShadowPrices     `json:"shadow_prices,omitempty"`
	Scenarios    []engine.Scenario        `json:"scenarios,omitempty"`
}

type SensitivityResponse struct {
	View    string                     `json:"view"`
	Results []engine.SensitivityResult `json:"results"`
	Tornado []report.TornadoBar        `json:"tornado"`
}

type VGFRequest struct {
	Rows              []engine.CostRow `json:"rows"`
	TargetFIRR        *float64         `json:"target_firr,omitempty"`
	ConstructionYears *int             `json:"construction_years,omitempty"`
}

type VGFResponse struct {
	engine.VGFResult
	TargetFIRR        float64 `json:"target_firr"`
	ConstructionYears int     `json:"construction_years"`
}

type RouteRequest struct {
	FIRR          *float64 `json:"firr"`
	EIRR          *float64 `json:"eirr"`
	PolicyAligned bool     `json:"policy_aligned"`
}

type ReportResponse struct {
	RunID    *uuid.UUID     `json:"run_id,omitempty"`
	Report   *engine.Report `json:"report"`
	Markdown string         `json:"markdown"`
}

// =============================================================================
// HANDLERS
// =============================================================================

// HandleFinancial computes FIRR for a cost schedule.
func (h *Handler) HandleFinancial(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, http.MethodPost) {
		return
	}
	var req FinancialRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if err := engine.ValidateCostRows(req.Rows); err != nil {
		h.writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, engine.ComputeFIRR(req.Rows))
}

// HandleEconomic computes EIRR, ENPV and BCR.
func (h *Handler) HandleEconomic(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, http.MethodPost) {
		return
	}
	var req EconomicRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	prices := h.prices(req.ShadowPrices)
	if err := engine.ValidateEconomicInput(req.Costs, req.Benefits, prices); err != nil {
		h.writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, EconomicResponse{
		Result:       engine.ComputeEIRR(req.Costs, req.Benefits, prices),
		ShadowPrices: prices,
	})
}

// HandleSensitivity runs the scenario set for one view.
func (h *Handler) HandleSensitivity(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, http.MethodPost) {
		return
	}
	var req SensitivityRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	cfg := h.cfg
	if len(req.Scenarios) > 0 {
		cfg.Scenarios = req.Scenarios
		if err := cfg.Validate(); err != nil {
			h.writeError(w, r, http.StatusUnprocessableEntity, err)
			return
		}
	}

	var results []engine.SensitivityResult
	switch req.View {
	case "", "financial":
		req.View = "financial"
		if err := engine.ValidateCostRows(req.Rows); err != nil {
			h.writeError(w, r, http.StatusUnprocessableEntity, err)
			return
		}
		results = engine.RunSensitivity(req.Rows, engine.FinancialRateOfReturn, cfg.Scenarios)
	case "economic":
		prices := h.prices(req.ShadowPrices)
		if err := engine.ValidateEconomicInput(req.Costs, req.Benefits, prices); err != nil {
			h.writeError(w, r, http.StatusUnprocessableEntity, err)
			return
		}
		results = engine.RunEconomicSensitivity(req.Costs, req.Benefits, prices, cfg.Scenarios)
	default:
		h.writeError(w, r, http.StatusBadRequest, fmt.Errorf("unknown view %q", req.View))
		return
	}

	writeJSON(w, http.StatusOK, SensitivityResponse{
		View:    req.View,
		Results: results,
		Tornado: report.Tornado(results),
	})
}

// HandleVGF estimates the viability gap against the configured or
// requested target.
func (h *Handler) HandleVGF(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, http.MethodPost) {
		return
	}
	var req VGFRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	cfg := h.cfg
	if req.TargetFIRR != nil {
		cfg.VGF.TargetFIRR = *req.TargetFIRR
	}
	if req.ConstructionYears != nil {
		cfg.VGF.ConstructionYears = *req.ConstructionYears
	}
	if err := cfg.Validate(); err != nil {
		h.writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	if err := engine.ValidateCostRows(req.Rows); err != nil {
		h.writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	}

	writeJSON(w, http.StatusOK, VGFResponse{
		VGFResult:         engine.EstimateVGF(req.Rows, cfg.VGF.TargetFIRR, cfg.VGF.ConstructionYears),
		TargetFIRR:        cfg.VGF.TargetFIRR,
		ConstructionYears: cfg.VGF.ConstructionYears,
	})
}

// HandleRoute classifies already computed rates into a funding track.
func (h *Handler) HandleRoute(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, http.MethodPost) {
		return
	}
	var req RouteRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, engine.Classify(req.FIRR, req.EIRR, req.PolicyAligned, h.cfg.Routing))
}

// HandleReport runs the whole engine, stores the run when a store is
// configured and answers as JSON, or as Markdown or HTML with ?format=.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, http.MethodPost) {
		return
	}
	var in engine.Input
	if err := decodeBody(r, &in); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "json", "markdown", "html":
	default:
		h.writeError(w, r, http.StatusBadRequest, fmt.Errorf("unknown format %q", format))
		return
	}

	rep, err := engine.Appraise(r.Context(), in, h.cfg)
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	h.logger.Info("appraisal completed",
		zap.String("project", rep.ProjectID),
		zap.String("track", string(rep.Routing.Track)),
		zap.Bool("economic", rep.Economic != nil))

	resp := ReportResponse{Report: rep, Markdown: report.Markdown(rep)}
	if h.runs != nil {
		run, err := h.runs.Save(r.Context(), rep)
		if err != nil {
			h.logger.Warn("failed to store appraisal run", zap.String("project", rep.ProjectID), zap.Error(err))
		} else {
			resp.RunID = &run.ID
			w.Header().Set("X-Appraisal-Run-ID", run.ID.String())
		}
	}

	switch format {
	case "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(resp.Markdown))
	case "html":
		html, err := report.HTML(rep)
		if err != nil {
			h.writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(html))
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleRuns lists a project's stored runs (?project=) or loads one (?id=).
func (h *Handler) HandleRuns(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, http.MethodGet) {
		return
	}
	if h.runs == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, errors.New("run storage not configured"))
		return
	}

	q := r.URL.Query()
	if rawID := q.Get("id"); rawID != "" {
		id, err := uuid.Parse(rawID)
		if err != nil {
			h.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid run id: %w", err))
			return
		}
		run, err := h.runs.Load(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, r, http.StatusNotFound, err)
			return
		}
		if err != nil {
			h.writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, run)
		return
	}

	project := q.Get("project")
	if project == "" {
		h.writeError(w, r, http.StatusBadRequest, errors.New("project or id query parameter is required"))
		return
	}
	runs, err := h.runs.ListByProject(r.Context(), project)
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *Handler) prices(override *engine.ShadowPrices) engine.ShadowPrices {
	if override != nil {
		return *override
	}
	return h.cfg.ShadowPrices
}

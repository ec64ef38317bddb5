// Package config serves the active engine configuration to the wizard.
package config

import (
	"encoding/json"
	"net/http"

	"project_appraisal/pkg/core/appraisal"
)

// Response describes the thresholds the wizard shows next to results.
type Response struct {
	FinancialHurdleRate float64          `json:"financial_hurdle_rate"`
	Config              appraisal.Config `json:"config"`
}

// Handler holds the engine config loaded at startup.
type Handler struct {
	Config appraisal.Config
}

// NewHandler creates a new config handler
func NewHandler(cfg appraisal.Config) *Handler {
	return &Handler{Config: cfg}
}

func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet:
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := Response{
		FinancialHurdleRate: appraisal.FinancialHurdleRate,
		Config:              h.Config,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project_appraisal/pkg/core/appraisal"
)

func TestHandleConfig(t *testing.T) {
	cfg := appraisal.DefaultConfig()
	cfg.Routing.EconomicEIRRThreshold = 12
	h := NewHandler(cfg)

	rec := httptest.NewRecorder()
	h.HandleConfig(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var got Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, appraisal.FinancialHurdleRate, got.FinancialHurdleRate)
	assert.Equal(t, cfg, got.Config)
}

func TestHandleConfigMethods(t *testing.T) {
	h := NewHandler(appraisal.DefaultConfig())

	rec := httptest.NewRecorder()
	h.HandleConfig(rec, httptest.NewRequest(http.MethodOptions, "/api/config", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleConfig(rec, httptest.NewRequest(http.MethodDelete, "/api/config", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

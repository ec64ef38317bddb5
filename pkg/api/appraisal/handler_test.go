package appraisal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	engine "project_appraisal/pkg/core/appraisal"
	"project_appraisal/pkg/core/store"
)

const roadRows = `[
  {"year": 2025, "capex": 1000},
  {"year": 2026, "opex": 50, "revenue": 400},
  {"year": 2027, "opex": 50, "revenue": 400},
  {"year": 2028, "opex": 50, "revenue": 400},
  {"year": 2029, "opex": 50, "revenue": 400},
  {"year": 2030, "opex": 50, "revenue": 400}
]`

func newServer(t *testing.T, withStore bool) *httptest.Server {
	t.Helper()
	var runs store.RunStore
	if withStore {
		cache, err := store.NewResultCache(t.TempDir())
		require.NoError(t, err)
		runs = cache
	}
	mux := http.NewServeMux()
	NewHandler(engine.DefaultConfig(), runs, zap.NewNop()).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, srv *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func fieldNames(t *testing.T, resp *http.Response) []string {
	t.Helper()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var body ErrorResponse
	decode(t, resp, &body)
	names := make([]string, len(body.Fields))
	for i, f := range body.Fields {
		names[i] = f.Field
	}
	return names
}

func TestHandleFinancial(t *testing.T) {
	srv := newServer(t, false)

	resp := post(t, srv, "/api/appraisal/financial", `{"rows": `+roadRows+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var got engine.FIRRResult
	decode(t, resp, &got)
	require.NotNil(t, got.IRR)
	assert.Greater(t, *got.IRR, engine.FinancialHurdleRate)
	assert.Equal(t, 1250.0, got.TotalInvestment)
	require.NotNil(t, got.PaybackYear)
	assert.Equal(t, 2028, *got.PaybackYear)
}

func TestHandleFinancialLenientBody(t *testing.T) {
	srv := newServer(t, false)
	resp := post(t, srv, "/api/appraisal/financial", `{"rows": [{"year": 2025, "capex": 100,}],}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got engine.FIRRResult
	decode(t, resp, &got)
	assert.Nil(t, got.IRR)
	assert.Equal(t, 100.0, got.TotalInvestment)
}

func TestHandleFinancialErrors(t *testing.T) {
	srv := newServer(t, false)

	resp := post(t, srv, "/api/appraisal/financial", `{"rows": "abc"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, srv, "/api/appraisal/financial", `{"rows": [{"year": 2025, "capex": -1}]}`)
	assert.Contains(t, fieldNames(t, resp), "rows[0].capex")

	resp = get(t, srv, "/api/appraisal/financial")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/appraisal/financial", nil)
	require.NoError(t, err)
	opt, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer opt.Body.Close()
	assert.Equal(t, http.StatusOK, opt.StatusCode)
	assert.Contains(t, opt.Header.Get("Access-Control-Allow-Methods"), "POST")
}

func TestHandleEconomic(t *testing.T) {
	srv := newServer(t, false)
	body := `{
	  "costs": [{"year": 2025, "local_cost": 600, "imported_cost": 800, "labour_cost": 300}],
	  "benefits": [
	    {"year": 2026, "amount": 500}, {"year": 2027, "amount": 500},
	    {"year": 2028, "amount": 500}, {"year": 2029, "amount": 500}
	  ]
	}`
	resp := post(t, srv, "/api/appraisal/economic", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got EconomicResponse
	decode(t, resp, &got)
	assert.Equal(t, engine.DefaultShadowPrices(), got.ShadowPrices)
	assert.NotNil(t, got.Result.IRR)
	assert.NotNil(t, got.Result.BCR)

	resp = post(t, srv, "/api/appraisal/economic",
		`{"costs": [], "benefits": [], "shadow_prices": {"standard_conversion_factor": 0.9, "shadow_exchange_rate": 1.1, "shadow_wage_rate": 2, "social_discount_rate": 12}}`)
	assert.Contains(t, fieldNames(t, resp), "shadow_prices.shadow_wage_rate")
}

func TestHandleSensitivity(t *testing.T) {
	srv := newServer(t, false)

	resp := post(t, srv, "/api/appraisal/sensitivity", `{"rows": `+roadRows+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got SensitivityResponse
	decode(t, resp, &got)
	assert.Equal(t, "financial", got.View)
	require.Len(t, got.Results, 6)
	assert.Equal(t, engine.BaseCaseName, got.Results[0].Scenario)
	assert.Len(t, got.Tornado, 5)

	resp = post(t, srv, "/api/appraisal/sensitivity",
		`{"rows": `+roadRows+`, "scenarios": [{"name": "Base Case", "cost_multiplier": 1, "revenue_multiplier": 1}, {"name": "Tariff cut", "cost_multiplier": 1, "revenue_multiplier": 0.5}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got = SensitivityResponse{}
	decode(t, resp, &got)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "Tariff cut", got.Results[1].Scenario)

	resp = post(t, srv, "/api/appraisal/sensitivity", `{"view": "social", "rows": []}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, srv, "/api/appraisal/sensitivity",
		`{"rows": [], "scenarios": [{"name": "", "cost_multiplier": 1, "revenue_multiplier": 1}]}`)
	assert.Contains(t, fieldNames(t, resp), "scenarios[0].name")
}

func TestHandleVGF(t *testing.T) {
	srv := newServer(t, false)
	rows := `[{"year": 2025, "capex": 1000}`
	for y := 2026; y <= 2035; y++ {
		rows += `, {"year": ` + strconv.Itoa(y) + `, "revenue": 100}`
	}
	rows += `]`

	resp := post(t, srv, "/api/appraisal/vgf", `{"rows": `+rows+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got VGFResponse
	decode(t, resp, &got)
	require.NotNil(t, got.GapAmount)
	assert.InDelta(t, 385.54, *got.GapAmount, 0.05)
	assert.Equal(t, engine.FinancialHurdleRate, got.TargetFIRR)
	assert.Equal(t, 1, got.ConstructionYears)

	resp = post(t, srv, "/api/appraisal/vgf", `{"rows": `+rows+`, "target_firr": -150}`)
	assert.Contains(t, fieldNames(t, resp), "vgf.target_firr")
}

func TestHandleRoute(t *testing.T) {
	srv := newServer(t, false)

	resp := post(t, srv, "/api/appraisal/route", `{"firr": 12.5, "eirr": null, "policy_aligned": false}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got engine.RoutingDecision
	decode(t, resp, &got)
	assert.Equal(t, engine.TrackCommercial, got.Track)
	assert.Equal(t, engine.SeverityGreen, got.Severity)

	resp = post(t, srv, "/api/appraisal/route", `{"firr": null, "eirr": 20, "policy_aligned": true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got = engine.RoutingDecision{}
	decode(t, resp, &got)
	assert.Equal(t, engine.TrackConcessional, got.Track)
}

func TestHandleReportAndRuns(t *testing.T) {
	srv := newServer(t, true)

	resp := post(t, srv, "/api/appraisal/report",
		`{"project_id": "ROAD-7", "policy_aligned": true, "financial": `+roadRows+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got ReportResponse
	decode(t, resp, &got)
	require.NotNil(t, got.RunID)
	assert.Equal(t, got.RunID.String(), resp.Header.Get("X-Appraisal-Run-ID"))
	assert.Equal(t, "ROAD-7", got.Report.ProjectID)
	assert.Equal(t, engine.TrackCommercial, got.Report.Routing.Track)
	assert.True(t, strings.HasPrefix(got.Markdown, "# Appraisal: ROAD-7"))

	resp = get(t, srv, "/api/appraisal/runs?project=ROAD-7")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var runs []store.RunSummary
	decode(t, resp, &runs)
	require.Len(t, runs, 1)
	assert.Equal(t, *got.RunID, runs[0].ID)

	resp = get(t, srv, "/api/appraisal/runs?id="+got.RunID.String())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var run store.Run
	decode(t, resp, &run)
	assert.Equal(t, "ROAD-7", run.ProjectID)

	resp = get(t, srv, "/api/appraisal/runs?id=00000000-0000-0000-0000-000000000001")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = get(t, srv, "/api/appraisal/runs?id=nope")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = get(t, srv, "/api/appraisal/runs")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleReportBrokenConfig(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.ShadowPrices.ShadowWageRate = 0
	mux := http.NewServeMux()
	NewHandler(cfg, nil, zap.NewNop()).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	resp := post(t, srv, "/api/appraisal/report", `{"project_id": "ROAD-7", "financial": `+roadRows+`}`)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var body ErrorResponse
	decode(t, resp, &body)
	assert.Empty(t, body.Fields)
	assert.Contains(t, body.Error, "invalid engine config")
}

func TestHandleReportFormats(t *testing.T) {
	srv := newServer(t, false)
	body := `{"project_id": "ROAD-7", "financial": ` + roadRows + `}`

	resp := post(t, srv, "/api/appraisal/report?format=markdown", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/markdown")
	assert.Empty(t, resp.Header.Get("X-Appraisal-Run-ID"))

	resp = post(t, srv, "/api/appraisal/report?format=html", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	resp = post(t, srv, "/api/appraisal/report?format=pdf", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, srv, "/api/appraisal/report", `{"project_id": "EMPTY"}`)
	assert.Contains(t, fieldNames(t, resp), "financial")

	resp = get(t, srv, "/api/appraisal/runs?project=ROAD-7")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiappraisal "project_appraisal/pkg/api/appraisal"
	"project_appraisal/pkg/core/appraisal"
)

const roadPayload = `{"rows": [
  {"year": 2025, "capex": 1000},
  {"year": 2026, "opex": 50, "revenue": 400},
  {"year": 2027, "opex": 50, "revenue": 400},
  {"year": 2028, "opex": 50, "revenue": 400},
  {"year": 2029, "opex": 50, "revenue": 400},
  {"year": 2030, "opex": 50, "revenue": 400}
]}`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetErr(&bytes.Buffer{})
	missing := filepath.Join(t.TempDir(), "none.yaml")
	root.SetArgs(append(args, "--config", missing))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFIRRCommand(t *testing.T) {
	out, err := execute(t, "firr", "--data", roadPayload)
	require.NoError(t, err)

	var got appraisal.FIRRResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotNil(t, got.IRR)
	assert.Greater(t, *got.IRR, 10.0)
	assert.Equal(t, 1250.0, got.TotalInvestment)
}

func TestFIRRCommandValidation(t *testing.T) {
	_, err := execute(t, "firr", "--data", `{"rows": [{"year": 2025, "capex": -5}]}`)
	var verr *appraisal.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "rows[0].capex", verr.Fields[0].Field)
}

func TestInputErrors(t *testing.T) {
	_, err := execute(t, "firr")
	assert.ErrorContains(t, err, "no input")

	_, err = execute(t, "firr", "--data", roadPayload, "--file", "x.json")
	assert.ErrorContains(t, err, "not both")

	_, err = execute(t, "route", "--data", `{"firr": 3}`, "extra")
	assert.Error(t, err)
}

func TestHJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "route.hjson")
	require.NoError(t, os.WriteFile(path, []byte(`
# decision inputs from the wizard
{
  firr: 7
  eirr: 18
  policy_aligned: true
}
`), 0o644))

	out, err := execute(t, "route", "--file", path)
	require.NoError(t, err)

	var got appraisal.RoutingDecision
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, appraisal.TrackPPPWithVGF, got.Track)
}

func TestSensitivityCommand(t *testing.T) {
	out, err := execute(t, "sensitivity", "--data", roadPayload)
	require.NoError(t, err)

	var got apiappraisal.SensitivityResponse
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Results, 6)
	assert.Len(t, got.Tornado, 5)

	_, err = execute(t, "sensitivity", "--data", `{"view": "social"}`)
	assert.ErrorContains(t, err, "unknown view")
}

func TestVGFCommand(t *testing.T) {
	out, err := execute(t, "vgf", "--data", strings.Replace(roadPayload, `{"rows"`, `{"target_firr": 30, "rows"`, 1))
	require.NoError(t, err)

	var got apiappraisal.VGFResponse
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 30.0, got.TargetFIRR)
	require.NotNil(t, got.GapAmount)
	assert.Greater(t, *got.GapAmount, 0.0)
}

func TestEIRRCommand(t *testing.T) {
	out, err := execute(t, "eirr", "--data", `{
	  "costs": [{"year": 2025, "local_cost": 1000}],
	  "benefits": [{"year": 2026, "amount": 600}, {"year": 2027, "amount": 600}]
	}`)
	require.NoError(t, err)

	var got apiappraisal.EconomicResponse
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, appraisal.DefaultShadowPrices(), got.ShadowPrices)
	assert.NotNil(t, got.Result.IRR)
}

func TestReportCommand(t *testing.T) {
	in := strings.Replace(roadPayload, `{"rows"`, `{"project_id": "ROAD-7", "financial"`, 1)

	out, err := execute(t, "report", "--data", in, "--format", "markdown")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# Appraisal: ROAD-7"))
	assert.Contains(t, out, "Commercial / Private Finance")

	out, err = execute(t, "report", "--data", in)
	require.NoError(t, err)
	var rep appraisal.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, appraisal.TrackCommercial, rep.Routing.Track)

	out, err = execute(t, "report", "--data", in, "--format", "html")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")

	_, err = execute(t, "report", "--data", in, "--format", "pdf")
	assert.ErrorContains(t, err, "unknown format")
}

func TestImportCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.html")
	require.NoError(t, os.WriteFile(path, []byte(`<table>
	  <tr><th>Year</th><th>Capex</th><th>Opex</th><th>Revenue</th></tr>
	  <tr><td>2025</td><td>1,000</td><td></td><td></td></tr>
	  <tr><td>2026</td><td></td><td>50</td><td>400</td></tr>
	</table>`), 0o644))

	out, err := execute(t, "import", "--file", path)
	require.NoError(t, err)

	var got apiappraisal.FinancialRequest
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []appraisal.CostRow{
		{Year: 2025, Capex: 1000},
		{Year: 2026, Opex: 50, Revenue: 400},
	}, got.Rows)

	_, err = execute(t, "import", "--file", path, "--kind", "benefit")
	assert.Error(t, err)
	_, err = execute(t, "import", "--file", path, "--kind", "other")
	assert.ErrorContains(t, err, "unknown kind")
}

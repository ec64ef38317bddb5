package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Year  int     `json:"year"`
	Capex float64 `json:"capex"`
}

func TestSmartParseStrictJSON(t *testing.T) {
	var r row
	out, err := SmartParse(`{"year": 2025, "capex": 1000}`, &r)
	require.NoError(t, err)
	assert.Equal(t, row{Year: 2025, Capex: 1000}, r)
	assert.Equal(t, `{"year": 2025, "capex": 1000}`, out)
}

func TestSmartParseRepairsTrailingComma(t *testing.T) {
	var r row
	out, err := SmartParse(`{"year": 2026, "capex": 250,}`, &r)
	require.NoError(t, err)
	assert.Equal(t, row{Year: 2026, Capex: 250}, r)
	assert.True(t, json.Valid([]byte(out)))
}

func TestSmartParseUnquotedKeys(t *testing.T) {
	var r row
	_, err := SmartParse(`{year: 2027, capex: 40}`, &r)
	require.NoError(t, err)
	assert.Equal(t, row{Year: 2027, Capex: 40}, r)
}

func TestSmartParseFailures(t *testing.T) {
	var r row
	_, err := SmartParse("   ", &r)
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = SmartParse("hello world", &r)
	assert.Error(t, err)
}

func TestHJSON(t *testing.T) {
	doc := `
# schedule exported from the wizard
{
  year: 2028
  capex: 75.5
}
`
	var r row
	require.NoError(t, ParseHJSONToStruct(doc, &r))
	assert.Equal(t, row{Year: 2028, Capex: 75.5}, r)

	out, err := HJSONToJSON(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"year": 2028, "capex": 75.5}`, out)

	_, err = HJSONToJSON(`{ year: `)
	assert.Error(t, err)
}

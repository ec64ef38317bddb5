// Package ingest imports appraisal schedules from HTML tables, such as a
// spreadsheet saved as HTML or a table pasted from a feasibility report.
package ingest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"project_appraisal/pkg/core/appraisal"
)

// ErrNoScheduleTable is returned when no table carries the required columns.
var ErrNoScheduleTable = errors.New("no schedule table found")

type field string

const (
	fieldYear         field = "year"
	fieldCapex        field = "capex"
	fieldOpex         field = "opex"
	fieldRevenue      field = "revenue"
	fieldLocalCost    field = "local_cost"
	fieldImportedCost field = "imported_cost"
	fieldLabourCost   field = "labour_cost"
	fieldAmount       field = "amount"
	fieldCategory     field = "category"
)

// headerKeywords maps header text to fields. Order matters: the first
// keyword contained in a normalized header wins.
var headerKeywords = []struct {
	keyword string
	field   field
}{
	{"year", fieldYear},
	{"fy", fieldYear},
	{"period", fieldYear},
	{"capex", fieldCapex},
	{"capital", fieldCapex},
	{"investment", fieldCapex},
	{"revenue", fieldRevenue},
	{"income", fieldRevenue},
	{"toll", fieldRevenue},
	{"tariff", fieldRevenue},
	{"opex", fieldOpex},
	{"operating", fieldOpex},
	{"o&m", fieldOpex},
	{"maintenance", fieldOpex},
	{"imported", fieldImportedCost},
	{"foreign", fieldImportedCost},
	{"labour", fieldLabourCost},
	{"labor", fieldLabourCost},
	{"wage", fieldLabourCost},
	{"local", fieldLocalCost},
	{"domestic", fieldLocalCost},
	{"category", fieldCategory},
	{"type", fieldCategory},
	{"amount", fieldAmount},
	{"benefit", fieldAmount},
	{"value", fieldAmount},
}

// MapHeader returns the schedule field a column header names, or "".
func MapHeader(header string) string {
	h := strings.ToLower(strings.Join(strings.Fields(header), " "))
	for _, kw := range headerKeywords {
		if h == kw.keyword || (len(kw.keyword) > 2 && strings.Contains(h, kw.keyword)) {
			return string(kw.field)
		}
	}
	return ""
}

// record is one data row of a matched table.
type record struct {
	line  int
	year  int
	cells map[field]string
}

type table struct {
	columns map[field]int
	scale   Scale
	records []record
}

// findTable returns the first table whose header row maps a year column and
// at least one of the wanted fields.
func findTable(html string, wanted ...field) (*table, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var found *table
	doc.Find("table").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		t := readTable(sel)
		if t == nil {
			return true
		}
		for _, f := range wanted {
			if _, ok := t.columns[f]; ok {
				found = t
				return false
			}
		}
		return true
	})
	if found == nil {
		return nil, ErrNoScheduleTable
	}
	return found, nil
}

func readTable(sel *goquery.Selection) *table {
	rows := sel.Find("tr")
	if rows.Length() < 2 {
		return nil
	}

	t := &table{columns: map[field]int{}, scale: DetectScale(caption(sel))}
	headerIdx := -1
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		columns := map[field]int{}
		for j, text := range cellTexts(row) {
			if f := field(MapHeader(text)); f != "" {
				if _, dup := columns[f]; !dup {
					columns[f] = j
				}
			}
		}
		if _, ok := columns[fieldYear]; ok {
			t.columns = columns
			headerIdx = i
			return false
		}
		return true
	})
	if headerIdx < 0 {
		return nil
	}

	rows.Each(func(i int, row *goquery.Selection) {
		if i <= headerIdx {
			return
		}
		cells := cellTexts(row)
		yearCol := t.columns[fieldYear]
		if yearCol >= len(cells) {
			return
		}
		year, ok := ParseYear(cells[yearCol])
		if !ok {
			return
		}
		rec := record{line: i + 1, year: year, cells: map[field]string{}}
		for f, col := range t.columns {
			if col < len(cells) {
				rec.cells[f] = cells[col]
			}
		}
		t.records = append(t.records, rec)
	})
	return t
}

func cellTexts(row *goquery.Selection) []string {
	var out []string
	row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
		out = append(out, strings.TrimSpace(cell.Text()))
	})
	return out
}

func caption(sel *goquery.Selection) string {
	text := sel.Find("caption").First().Text()
	if prev := sel.Prev(); prev.Length() > 0 {
		text += " " + prev.Text()
	}
	return text
}

func (t *table) amount(rec record, f field) (float64, error) {
	raw, ok := rec.cells[f]
	if !ok {
		return 0, nil
	}
	v, err := ParseAmount(raw)
	if err != nil {
		return 0, fmt.Errorf("table row %d, %s: %w", rec.line, f, err)
	}
	return v * float64(t.scale), nil
}

// ParseCostScheduleHTML reads a financial schedule with year, capex, opex
// and revenue columns. Missing columns read as zero.
func ParseCostScheduleHTML(html string) ([]appraisal.CostRow, error) {
	t, err := findTable(html, fieldCapex, fieldOpex, fieldRevenue)
	if err != nil {
		return nil, err
	}
	out := make([]appraisal.CostRow, 0, len(t.records))
	for _, rec := range t.records {
		row := appraisal.CostRow{Year: rec.year}
		if row.Capex, err = t.amount(rec, fieldCapex); err != nil {
			return nil, err
		}
		if row.Opex, err = t.amount(rec, fieldOpex); err != nil {
			return nil, err
		}
		if row.Revenue, err = t.amount(rec, fieldRevenue); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

// ParseEconomicScheduleHTML reads market-priced costs split into local,
// imported and labour columns.
func ParseEconomicScheduleHTML(html string) ([]appraisal.EconomicCostRow, error) {
	t, err := findTable(html, fieldLocalCost, fieldImportedCost, fieldLabourCost)
	if err != nil {
		return nil, err
	}
	out := make([]appraisal.EconomicCostRow, 0, len(t.records))
	for _, rec := range t.records {
		row := appraisal.EconomicCostRow{Year: rec.year}
		if row.LocalCost, err = t.amount(rec, fieldLocalCost); err != nil {
			return nil, err
		}
		if row.ImportedCost, err = t.amount(rec, fieldImportedCost); err != nil {
			return nil, err
		}
		if row.LabourCost, err = t.amount(rec, fieldLabourCost); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

// ParseBenefitScheduleHTML reads economic benefits with year, amount and
// an optional category column.
func ParseBenefitScheduleHTML(html string) ([]appraisal.BenefitRow, error) {
	t, err := findTable(html, fieldAmount)
	if err != nil {
		return nil, err
	}
	out := make([]appraisal.BenefitRow, 0, len(t.records))
	for _, rec := range t.records {
		row := appraisal.BenefitRow{Year: rec.year, Category: rec.cells[fieldCategory]}
		if row.Amount, err = t.amount(rec, fieldAmount); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

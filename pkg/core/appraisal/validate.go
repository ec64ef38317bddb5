package appraisal

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldError is one invalid input value.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every problem found in an input.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return "invalid appraisal input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// addStruct runs the struct tags of v and records failures under prefix.
func (e *ValidationError) addStruct(prefix string, v interface{}) {
	err := validate.Struct(v)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		e.add(prefix, err.Error())
		return
	}
	for _, fe := range verrs {
		e.add(prefix+"."+fe.Field(), tagMessage(fe.Tag(), fe.Param()))
	}
}

func tagMessage(tag, param string) string {
	switch tag {
	case "gte":
		return "must be >= " + param
	case "gt":
		return "must be > " + param
	case "lte":
		return "must be <= " + param
	default:
		return "failed " + tag + " check"
	}
}

func (e *ValidationError) addFinite(field string, v float64) {
	if !isFinite(v) {
		e.add(field, "must be a finite number")
	}
}

func (e *ValidationError) addShadowPrices(prefix string, p ShadowPrices) {
	e.addFinite(prefix+".standard_conversion_factor", p.StandardConversionFactor)
	e.addFinite(prefix+".shadow_exchange_rate", p.ShadowExchangeRate)
	e.addFinite(prefix+".shadow_wage_rate", p.ShadowWageRate)
	e.addFinite(prefix+".social_discount_rate", p.SocialDiscountRate)
	e.addStruct(prefix, p)
}

// addYearOrder flags duplicate and descending years.
func (e *ValidationError) addYearOrder(prefix string, years []int) {
	for i := 1; i < len(years); i++ {
		field := fmt.Sprintf("%s[%d].year", prefix, i)
		switch {
		case years[i] == years[i-1]:
			e.add(field, fmt.Sprintf("duplicates year %d", years[i]))
		case years[i] < years[i-1]:
			e.add(field, fmt.Sprintf("year %d is before previous year %d", years[i], years[i-1]))
		}
	}
}

// addYearSpan flags a schedule whose first and last year are more than
// MaxSchedulePeriods apart. Gaps inside the span are zero-flow years.
func (e *ValidationError) addYearSpan(field string, years []int) {
	if len(years) == 0 {
		return
	}
	lo, hi := years[0], years[0]
	for _, y := range years[1:] {
		lo, hi = min(lo, y), max(hi, y)
	}
	if span := hi - lo + 1; span > MaxSchedulePeriods {
		e.add(field, fmt.Sprintf("spans %d years (%d-%d), at most %d allowed", span, lo, hi, MaxSchedulePeriods))
	}
}

// ValidateCostRows checks a financial schedule: amounts finite and >= 0,
// years strictly ascending and within MaxSchedulePeriods of each other.
func ValidateCostRows(rows []CostRow) error {
	verr := &ValidationError{}
	verr.addCostRows("rows", rows)
	return verr.orNil()
}

func (e *ValidationError) addCostRows(prefix string, rows []CostRow) {
	years := make([]int, len(rows))
	for i, row := range rows {
		field := fmt.Sprintf("%s[%d]", prefix, i)
		e.addFinite(field+".capex", row.Capex)
		e.addFinite(field+".opex", row.Opex)
		e.addFinite(field+".revenue", row.Revenue)
		e.addStruct(field, row)
		years[i] = row.Year
	}
	e.addYearOrder(prefix, years)
	e.addYearSpan(prefix, years)
}

// ValidateEconomicInput checks the economic view. Cost years must be
// strictly ascending; benefit rows may share years. Together they must fit
// within MaxSchedulePeriods years.
func ValidateEconomicInput(costs []EconomicCostRow, benefits []BenefitRow, prices ShadowPrices) error {
	verr := &ValidationError{}
	verr.addEconomic("costs", "benefits", "shadow_prices", costs, benefits, prices)
	return verr.orNil()
}

func (e *ValidationError) addEconomic(costPrefix, benefitPrefix, pricePrefix string, costs []EconomicCostRow, benefits []BenefitRow, prices ShadowPrices) {
	years := make([]int, len(costs))
	for i, row := range costs {
		field := fmt.Sprintf("%s[%d]", costPrefix, i)
		e.addFinite(field+".local_cost", row.LocalCost)
		e.addFinite(field+".imported_cost", row.ImportedCost)
		e.addFinite(field+".labour_cost", row.LabourCost)
		e.addStruct(field, row)
		years[i] = row.Year
	}
	e.addYearOrder(costPrefix, years)

	for i, row := range benefits {
		field := fmt.Sprintf("%s[%d]", benefitPrefix, i)
		e.addFinite(field+".amount", row.Amount)
		e.addStruct(field, row)
		years = append(years, row.Year)
	}
	e.addYearSpan(benefitPrefix, years)

	e.addShadowPrices(pricePrefix, prices)
}

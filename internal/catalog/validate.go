package catalog

// validate.go is the schema validator. Validation is all-or-nothing and runs
// before any store access: every violated constraint is collected and the
// whole list is returned in a single SchemaViolationError, so submitters can
// fix a payload in one round trip.

import (
	"fmt"
	"strings"
	"time"
)

// violations collects constraint failures for one payload.
type violations struct {
	kind EntityKind
	list []FieldViolation
}

func (v *violations) add(field, message string) {
	v.list = append(v.list, FieldViolation{Field: field, Message: message})
}

func (v *violations) addf(field, format string, args ...any) {
	v.add(field, fmt.Sprintf(format, args...))
}

// err returns the accumulated SchemaViolationError, or nil if the payload
// passed validation.
func (v *violations) err() error {
	if len(v.list) == 0 {
		return nil
	}
	return &SchemaViolationError{Kind: v.kind, Violations: v.list}
}

// ValidateManufacturer checks a manufacturer payload against its schema.
func ValidateManufacturer(p *ManufacturerPayload) error {
	v := &violations{kind: KindManufacturer}

	if strings.TrimSpace(p.Name) == "" {
		v.add("name", "required field is empty")
	} else if len(p.Name) > maxManufacturerNameLen {
		v.addf("name", "exceeds maximum length of %d", maxManufacturerNameLen)
	}
	checkMaxLen(v, "display_name", p.DisplayName, maxDisplayNameLen)
	checkMaxLen(v, "country", p.Country, maxCountryLen)
	checkIntRange(v, "founded_year", p.FoundedYear, minFoundedYear, maxFoundedYear)
	checkEnum(v, "status", p.Status, ManufacturerStatuses)

	return v.err()
}

// ValidateModel checks a model payload against its schema. The manufacturer
// it names is resolved later; an unknown name is a missing dependency, not a
// schema violation.
func ValidateModel(p *ModelPayload) error {
	v := &violations{kind: KindModel}

	if strings.TrimSpace(p.ManufacturerName) == "" {
		v.add("manufacturer_name", "required field is empty")
	}
	if strings.TrimSpace(p.Name) == "" {
		v.add("name", "required field is empty")
	} else if len(p.Name) > maxModelNameLen {
		v.addf("name", "exceeds maximum length of %d", maxModelNameLen)
	}
	if p.Year < minModelYear || p.Year > maxModelYear {
		v.addf("year", "must be between %d and %d", minModelYear, maxModelYear)
	}
	checkEnum(v, "production_type", p.ProductionType, ProductionTypes)
	checkDate(v, "production_start_date", p.ProductionStartDate)
	checkDate(v, "production_end_date", p.ProductionEndDate)
	if p.EstimatedProductionQuantity != nil && *p.EstimatedProductionQuantity < 1 {
		v.add("estimated_production_quantity", "must be at least 1")
	}
	if p.MSRPOriginal != nil && *p.MSRPOriginal < 0 {
		v.add("msrp_original", "must not be negative")
	}
	checkMaxLen(v, "currency", p.Currency, maxCurrencyLen)
	for i := range p.Specifications {
		validateSpecification(v, fmt.Sprintf("specifications[%d]", i), &p.Specifications[i])
	}

	return v.err()
}

// ValidateGuitar checks an individual-guitar payload against its schema,
// including the identity disjunction: the record must supply a model
// reference, or a fallback manufacturer name paired with either a fallback
// model name or a free-text description.
func ValidateGuitar(p *GuitarPayload) error {
	v := &violations{kind: KindIndividualGuitar}

	if !guitarIdentitySatisfied(p) {
		v.add("model_reference", "record must supply a model_reference, or manufacturer_name_fallback with model_name_fallback or description")
	}
	if p.ModelReference != nil {
		ref := p.ModelReference
		if strings.TrimSpace(ref.ManufacturerName) == "" {
			v.add("model_reference.manufacturer_name", "required field is empty")
		}
		if strings.TrimSpace(ref.ModelName) == "" {
			v.add("model_reference.model_name", "required field is empty")
		}
		if ref.Year < minModelYear || ref.Year > maxModelYear {
			v.addf("model_reference.year", "must be between %d and %d", minModelYear, maxModelYear)
		}
	}
	checkMaxLen(v, "manufacturer_name_fallback", p.ManufacturerNameFallback, maxManufacturerNameLen)
	checkMaxLen(v, "model_name_fallback", p.ModelNameFallback, maxModelNameLen)
	checkMaxLen(v, "year_estimate", p.YearEstimate, maxYearEstimateLen)
	checkMaxLen(v, "nickname", p.Nickname, maxNicknameLen)
	checkMaxLen(v, "serial_number", p.SerialNumber, maxSerialNumberLen)
	checkDate(v, "production_date", p.ProductionDate)
	checkDate(v, "last_valuation_date", p.LastValuationDate)
	checkEnum(v, "significance_level", p.SignificanceLevel, SignificanceLevels)
	checkEnum(v, "condition_rating", p.ConditionRating, ConditionRatings)
	for i := range p.Specifications {
		validateSpecification(v, fmt.Sprintf("specifications[%d]", i), &p.Specifications[i])
	}

	return v.err()
}

// guitarIdentitySatisfied checks the dual-identity disjunction.
func guitarIdentitySatisfied(p *GuitarPayload) bool {
	if p.ModelReference != nil {
		return true
	}
	if p.ManufacturerNameFallback == nil || strings.TrimSpace(*p.ManufacturerNameFallback) == "" {
		return false
	}
	hasModel := p.ModelNameFallback != nil && strings.TrimSpace(*p.ModelNameFallback) != ""
	hasDescription := p.Description != nil && strings.TrimSpace(*p.Description) != ""
	return hasModel || hasDescription
}

// validateSpecification checks one specification sub-record in place,
// prefixing violations with the parent field path.
func validateSpecification(v *violations, prefix string, s *SpecificationPayload) {
	field := func(name string) string { return prefix + "." + name }

	checkMaxLen(v, field("body_wood"), s.BodyWood, maxSpecTextLen)
	checkMaxLen(v, field("neck_wood"), s.NeckWood, maxSpecTextLen)
	checkMaxLen(v, field("fingerboard_wood"), s.FingerboardWood, maxSpecTextLen)
	checkFloatRange(v, field("scale_length_inches"), s.ScaleLengthInches, minScaleLength, maxScaleLength)
	checkIntRange(v, field("num_frets"), s.NumFrets, minNumFrets, maxNumFrets)
	checkFloatRange(v, field("nut_width_inches"), s.NutWidthInches, minNutWidth, maxNutWidth)
	checkMaxLen(v, field("neck_profile"), s.NeckProfile, maxSpecTextLen)
	checkMaxLen(v, field("bridge_type"), s.BridgeType, maxSpecTextLen)
	checkMaxLen(v, field("pickup_configuration"), s.PickupConfiguration, maxPickupConfigLen)
	checkMaxLen(v, field("hardware_finish"), s.HardwareFinish, maxSpecTextLen)
	checkFloatRange(v, field("weight_lbs"), s.WeightLbs, minWeightLbs, maxWeightLbs)
	checkMaxLen(v, field("case_type"), s.CaseType, maxSpecTextLen)
}

func checkMaxLen(v *violations, field string, val *string, max int) {
	if val != nil && len(*val) > max {
		v.addf(field, "exceeds maximum length of %d", max)
	}
}

func checkEnum(v *violations, field string, val *string, allowed []string) {
	if val == nil {
		return
	}
	for _, a := range allowed {
		if *val == a {
			return
		}
	}
	v.addf(field, "must be one of: %s", strings.Join(allowed, ", "))
}

func checkIntRange(v *violations, field string, val *int, min, max int) {
	if val != nil && (*val < min || *val > max) {
		v.addf(field, "must be between %d and %d", min, max)
	}
}

func checkFloatRange(v *violations, field string, val *float64, min, max float64) {
	if val != nil && (*val < min || *val > max) {
		v.addf(field, "must be between %g and %g", min, max)
	}
}

func checkDate(v *violations, field string, val *string) {
	if val == nil {
		return
	}
	if _, err := time.Parse(dateLayout, *val); err != nil {
		v.add(field, "invalid date format (use YYYY-MM-DD)")
	}
}

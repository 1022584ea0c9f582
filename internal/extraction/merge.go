package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"notaria/internal/domain"
	"notaria/internal/template"
)

var (
	curpRe = regexp.MustCompile(`^[A-Z]{4}\d{6}[HMX][A-Z]{5}[0-9A-Z]\d$`)
	rfcRe  = regexp.MustCompile(`^[A-ZÑ&]{3,4}\d{6}[A-Z0-9]{3}$`)
)

// formatFor returns the pattern a field's value must match, if any.
func formatFor(dataType string) *regexp.Regexp {
	switch dataType {
	case domain.DataTypeCURP:
		return curpRe
	case domain.DataTypeRFC:
		return rfcRe
	default:
		return nil
	}
}

// mergeDatum folds a second reading of the same field into primary.
// Agreement raises confidence, an empty primary takes the secondary, and a
// disagreement prefers the value matching formatRe before falling back to
// the primary with reduced confidence.
func mergeDatum(primary *domain.FieldDatum, secondary domain.FieldDatum, formatRe *regexp.Regexp) {
	defer primary.Normalize()

	pVal, sVal := strings.TrimSpace(primary.StringValue()), strings.TrimSpace(secondary.StringValue())
	if pVal == "" && sVal == "" {
		return
	}
	if strings.EqualFold(pVal, sVal) {
		if primary.Confidence < 1.0 {
			primary.Confidence += (1.0 - primary.Confidence) * 0.2
		}
		return
	}

	if pVal == "" {
		*primary = secondary
		return
	}

	if sVal == "" {
		return
	}

	if formatRe != nil {
		pMatch := formatRe.MatchString(normalizeID(pVal))
		sMatch := formatRe.MatchString(normalizeID(sVal))
		if sMatch && !pMatch {
			confidence := secondary.Confidence * 0.8
			*primary = secondary
			primary.Confidence = confidence
			return
		}
		if pMatch && !sMatch {
			primary.Confidence *= 0.8
			return
		}
	}

	primary.Confidence *= 0.6
	primary.NeedsReview = true
}

// normalizeID upper-cases an identifier and drops embedded whitespace.
func normalizeID(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

// checkFormats flags values that do not look like their declared type and
// returns a suggestion for each.
func checkFormats(ct *domain.CaseType, data domain.ExtractedData) []string {
	var suggestions []string
	for _, f := range ct.Fields {
		section := ct.SectionFor(f.ID)
		d, ok := data[section][f.ID]
		if !ok || d.IsEmpty() {
			continue
		}
		value := strings.TrimSpace(d.StringValue())

		var problem string
		switch f.DataType {
		case domain.DataTypeCURP, domain.DataTypeRFC:
			normalized := normalizeID(value)
			if normalized != value {
				d.Value = domain.StringPtr(normalized)
			}
			if !formatFor(f.DataType).MatchString(normalized) {
				if f.DataType == domain.DataTypeCURP {
					problem = fmt.Sprintf("La CURP de %q (%s) no tiene el formato válido de 18 caracteres; verifíquela contra la identificación.", f.Label, normalized)
				} else {
					problem = fmt.Sprintf("El RFC de %q (%s) no tiene un formato válido; verifíquelo.", f.Label, normalized)
				}
			}
		case domain.DataTypeDate:
			if _, err := time.Parse("2006-01-02", value); err != nil {
				problem = fmt.Sprintf("La fecha de %q (%s) no está en formato AAAA-MM-DD.", f.Label, value)
			}
		case domain.DataTypeCurrency:
			if _, err := template.ParseAmount(value); err != nil {
				problem = fmt.Sprintf("El importe de %q (%s) no es un número válido.", f.Label, value)
			}
		case domain.DataTypeInteger:
			if _, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err != nil {
				problem = fmt.Sprintf("El valor de %q (%s) debe ser un número entero.", f.Label, value)
			}
		}
		if problem != "" {
			d.NeedsReview = true
			suggestions = append(suggestions, problem)
		}
		data[section][f.ID] = d
	}
	return suggestions
}

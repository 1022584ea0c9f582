package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// DefaultSection holds every field whose definition names no section.
const DefaultSection = "general"

// needsReviewThreshold is the confidence under which a datum is always flagged.
const needsReviewThreshold = 0.5

// FieldDatum is one extracted or supplied value with its provenance.
type FieldDatum struct {
	Value       *string `json:"value"`
	Confidence  float64 `json:"confidence"`
	Source      string  `json:"source,omitempty"`
	NeedsReview bool    `json:"needsReview"`
}

// NewFieldDatum builds a datum with confidence clamped to [0,1] and the
// review flag derived from confidence and the ambiguity marker.
func NewFieldDatum(value *string, confidence float64, source string, ambiguous bool) FieldDatum {
	d := FieldDatum{Value: value, Confidence: confidence, Source: source, NeedsReview: ambiguous}
	d.Normalize()
	return d
}

// StringValue returns the value or "" for null.
func (d FieldDatum) StringValue() string {
	if d.Value == nil {
		return ""
	}
	return *d.Value
}

// IsEmpty reports whether the value is null or blank.
func (d FieldDatum) IsEmpty() bool {
	return strings.TrimSpace(d.StringValue()) == ""
}

// Normalize enforces the confidence range and review invariant.
func (d *FieldDatum) Normalize() {
	switch {
	case math.IsNaN(d.Confidence) || d.Confidence < 0:
		d.Confidence = 0
	case d.Confidence > 1:
		d.Confidence = 1
	}
	if d.Confidence < needsReviewThreshold {
		d.NeedsReview = true
	}
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// ExtractedData maps section name -> field key -> datum.
type ExtractedData map[string]map[string]FieldDatum

// Set stores a datum, creating the section when needed.
func (e ExtractedData) Set(section, key string, d FieldDatum) {
	if section == "" {
		section = DefaultSection
	}
	if e[section] == nil {
		e[section] = make(map[string]FieldDatum)
	}
	e[section][key] = d
}

// Sections returns section names in lookup precedence order: the default
// section first, the rest lexicographically.
func (e ExtractedData) Sections() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		if name != DefaultSection {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := e[DefaultSection]; ok {
		names = append([]string{DefaultSection}, names...)
	}
	return names
}

// Lookup resolves a "section.key" or bare key. Bare keys are searched in
// Sections() order and the first section holding the key wins.
func (e ExtractedData) Lookup(key string) (FieldDatum, bool) {
	if section, field, ok := strings.Cut(key, "."); ok {
		if d, found := e[section][field]; found {
			return d, true
		}
	}
	for _, section := range e.Sections() {
		if d, found := e[section][key]; found {
			return d, true
		}
	}
	return FieldDatum{}, false
}

// Flatten produces the bare-key view consumed by the template engine.
// Section-qualified keys ("section.key") are included as well.
func (e ExtractedData) Flatten() map[string]string {
	out := make(map[string]string)
	for _, section := range e.Sections() {
		for key, d := range e[section] {
			out[section+"."+key] = d.StringValue()
			if _, taken := out[key]; !taken {
				out[key] = d.StringValue()
			}
		}
	}
	return out
}

// IsEmpty reports whether no section holds a non-empty value.
func (e ExtractedData) IsEmpty() bool {
	for _, fields := range e {
		for _, d := range fields {
			if !d.IsEmpty() {
				return false
			}
		}
	}
	return true
}

// MissingFields lists required keys whose resolved value is absent or blank,
// preserving the order of required.
func (e ExtractedData) MissingFields(required []string) []string {
	missing := []string{}
	for _, key := range required {
		d, ok := e.Lookup(key)
		if !ok || d.IsEmpty() {
			missing = append(missing, key)
		}
	}
	return missing
}

// Clone returns a deep copy.
func (e ExtractedData) Clone() ExtractedData {
	out := make(ExtractedData, len(e))
	for section, fields := range e {
		copied := make(map[string]FieldDatum, len(fields))
		for k, d := range fields {
			if d.Value != nil {
				d.Value = StringPtr(*d.Value)
			}
			copied[k] = d
		}
		out[section] = copied
	}
	return out
}

// Value implements driver.Valuer for JSONB columns.
func (e ExtractedData) Value() (driver.Value, error) {
	if e == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(e)
}

// Scan implements sql.Scanner for JSONB columns.
func (e *ExtractedData) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*e = ExtractedData{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("extracted data: unsupported scan type %T", src)
	}
	data := ExtractedData{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("extracted data: %w", err)
	}
	*e = data
	return nil
}

package export

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"notaria/internal/domain"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
	multiUnderscore = regexp.MustCompile(`_+`)
)

// columns is the header shared by the XLSX and CSV review sheets.
var columns = []string{"Sección", "Campo", "Etiqueta", "Valor", "Confianza", "Origen", "Revisar", "Obligatorio"}

// reviewRow is one line of a review sheet.
type reviewRow struct {
	Section     string
	Key         string
	Label       string
	Value       string
	Confidence  float64
	Source      string
	NeedsReview bool
	Required    bool
}

// reviewRows lists every datum, sections in lookup order and keys sorted,
// followed by an empty row for each required field the data set lacks.
func reviewRows(c *domain.Case, ct *domain.CaseType) []reviewRow {
	var rows []reviewRow
	seen := map[string]bool{}
	for _, section := range c.ExtractedData.Sections() {
		keys := make([]string, 0, len(c.ExtractedData[section]))
		for k := range c.ExtractedData[section] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, key := range keys {
			d := c.ExtractedData[section][key]
			def, _ := ct.Field(key)
			seen[key] = true
			rows = append(rows, reviewRow{
				Section: section, Key: key, Label: labelOf(def, key), Value: d.StringValue(),
				Confidence: d.Confidence, Source: d.Source, NeedsReview: d.NeedsReview, Required: def.Required,
			})
		}
	}
	for _, id := range ct.RequiredFieldIDs() {
		if seen[id] {
			continue
		}
		def, _ := ct.Field(id)
		rows = append(rows, reviewRow{
			Section: ct.SectionFor(id), Key: id, Label: labelOf(def, id), NeedsReview: true, Required: true,
		})
	}
	return rows
}

// SanitizeFilename strips characters that are unsafe in a
// Content-Disposition filename.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {case_type}_{case id prefix}_{YYYY-MM-DD}.{ext}.
func BuildFilename(c *domain.Case, ext string) string {
	id := c.ID.String()
	return fmt.Sprintf("%s_%s_%s.%s", SanitizeFilename(c.CaseTypeID), id[:8], time.Now().Format("2006-01-02"), ext)
}

func labelOf(def domain.FieldDefinition, id string) string {
	if def.Label != "" {
		return def.Label
	}
	return id
}

func yesNo(b bool) string {
	if b {
		return "sí"
	}
	return "no"
}

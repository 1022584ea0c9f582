// Package extraction turns uploaded case documents into a confidence-annotated
// data set by prompting an AI provider and interpreting its answer.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"notaria/internal/domain"
	"notaria/internal/port"
	"notaria/internal/provider"
)

const parseFailureSuggestion = "No fue posible interpretar la respuesta del modelo. Revise los documentos cargados y capture los datos faltantes manualmente."

// Request carries one extraction invocation.
type Request struct {
	CaseType *domain.CaseType
	Files    []domain.CaseFile
	Model    string
}

// Result is the outcome of an extraction. Failures are reported through
// Success and Error, never as a Go error.
type Result struct {
	Success       bool                 `json:"success"`
	Data          domain.ExtractedData `json:"data,omitempty"`
	MissingFields []string             `json:"missing_fields,omitempty"`
	Suggestions   []string             `json:"suggestions,omitempty"`
	ElapsedMs     int64                `json:"elapsed_ms"`
	Error         string               `json:"error,omitempty"`
	ModelUsed     string               `json:"model_used,omitempty"`
	// Degraded is set when the provider answered but its reply could not be
	// interpreted; Data is then empty.
	Degraded bool `json:"degraded,omitempty"`
}

// Options tunes the orchestrator.
type Options struct {
	MaxTokens int
	// AnalyzeImages sends every file carrying Content through
	// CompleteWithImage and merges the per-file readings into the result.
	AnalyzeImages bool
}

// Orchestrator coordinates prompt construction, provider dispatch and
// response interpretation. It holds no per-call state.
type Orchestrator struct {
	providers port.ProviderSelector
	opts      Options
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(providers port.ProviderSelector, opts Options) *Orchestrator {
	return &Orchestrator{providers: providers, opts: opts}
}

// Extract runs one extraction. It never panics on provider output and
// never returns a nil result.
func (o *Orchestrator) Extract(ctx context.Context, req Request) *Result {
	start := time.Now()
	res := o.extract(ctx, req)
	res.ElapsedMs = time.Since(start).Milliseconds()
	return res
}

func (o *Orchestrator) extract(ctx context.Context, req Request) *Result {
	if req.CaseType == nil {
		return failure("", errors.New("case type is required"))
	}
	required := req.CaseType.RequiredFieldIDs()
	if len(required) == 0 {
		return failure("", fmt.Errorf("case type %q has no required fields configured", req.CaseType.ID))
	}

	p, err := o.providers.Select(req.Model)
	if err != nil {
		return failure("", err)
	}

	prompt := BuildExtractionPrompt(req.CaseType, req.Files)
	raw, err := p.Complete(ctx, prompt, o.opts.MaxTokens)
	if err != nil {
		log.Printf("extraction.Extract: provider %s failed for case type %s: %v", p.Name(), req.CaseType.ID, err)
		return failure(p.Name(), &domain.ProviderError{Provider: p.Name(), Err: err})
	}

	parsed, err := parsePayload(raw)
	if err != nil {
		log.Printf("extraction.Extract: %v (raw: %.300s)", err, raw)
		return &Result{
			Success:       true,
			Degraded:      true,
			Data:          domain.ExtractedData{},
			MissingFields: append([]string{}, required...),
			Suggestions:   []string{parseFailureSuggestion},
			ModelUsed:     p.Name(),
		}
	}

	data := buildData(req.CaseType, parsed)
	if o.opts.AnalyzeImages {
		o.analyzeFiles(ctx, p, req, data)
	}

	suggestions := append([]string{}, parsed.Suggestions...)
	suggestions = append(suggestions, checkFormats(req.CaseType, data)...)
	for _, key := range parsed.Rejected {
		label := key
		if f, ok := req.CaseType.Field(fieldID(req.CaseType, key)); ok {
			label = f.Label
		}
		suggestions = append(suggestions, fmt.Sprintf("El valor leído para %q no tiene un formato reconocible; verifíquelo y captúrelo manualmente.", label))
	}
	missing := data.MissingFields(required)
	for _, id := range missing {
		label := id
		if f, ok := req.CaseType.Field(id); ok {
			label = f.Label
		}
		suggestions = append(suggestions, fmt.Sprintf("Falta el dato obligatorio %q; solicítelo al cliente o cárguelo manualmente.", label))
	}

	return &Result{
		Success:       true,
		Data:          data,
		MissingFields: missing,
		Suggestions:   dedupe(suggestions),
		ModelUsed:     p.Name(),
	}
}

// analyzeFiles reads each file with content directly and merges the
// readings into data. Failed readings are logged and skipped.
func (o *Orchestrator) analyzeFiles(ctx context.Context, p port.AIProvider, req Request, data domain.ExtractedData) {
	for _, f := range req.Files {
		if len(f.Content) == 0 || provider.CheckImageType(f.ContentType) != nil {
			continue
		}
		prompt := BuildExtractionPrompt(req.CaseType, []domain.CaseFile{f})
		raw, err := p.CompleteWithImage(ctx, f.Content, f.ContentType, prompt)
		if err != nil {
			log.Printf("extraction.analyzeFiles: %s on file %s: %v", p.Name(), f.ID, err)
			continue
		}
		parsed, err := parsePayload(raw)
		if err != nil {
			log.Printf("extraction.analyzeFiles: file %s: %v", f.ID, err)
			continue
		}
		reading := buildData(req.CaseType, parsed)
		for section, fields := range reading {
			for key, incoming := range fields {
				if incoming.Source == "" {
					incoming.Source = f.Category
				}
				current, ok := data[section][key]
				if !ok {
					data.Set(section, key, incoming)
					continue
				}
				def, _ := req.CaseType.Field(key)
				mergeDatum(&current, incoming, formatFor(def.DataType))
				data[section][key] = current
			}
		}
	}
}

// buildData places each returned field in its definition's section.
func buildData(ct *domain.CaseType, p *payload) domain.ExtractedData {
	data := domain.ExtractedData{}
	for key, f := range p.Fields {
		id := fieldID(ct, key)
		data.Set(ct.SectionFor(id), id, domain.NewFieldDatum(f.Value, f.Confidence, f.Source, f.Ambiguous))
	}
	for _, key := range p.Rejected {
		id := fieldID(ct, key)
		data.Set(ct.SectionFor(id), id, domain.NewFieldDatum(nil, 0, "", true))
	}
	return data
}

// fieldID maps a returned key to a known field id, accepting
// "section.field" keys.
func fieldID(ct *domain.CaseType, key string) string {
	if _, known := ct.Field(key); known {
		return key
	}
	if _, field, ok := strings.Cut(key, "."); ok {
		if _, known := ct.Field(field); known {
			return field
		}
	}
	return key
}

func failure(model string, err error) *Result {
	return &Result{Success: false, Error: err.Error(), ModelUsed: model}
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := []string{}
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Package generation renders legal instruments from case data and applies
// natural-language edits to them.
package generation

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"notaria/internal/domain"
	"notaria/internal/port"
	"notaria/internal/provider"
	"notaria/internal/template"
)

// Derived variable suffixes available to every template.
const (
	suffixAmountWords = "_letra"
	suffixNumberWords = "_palabras"
)

// GenerateRequest carries one generation.
type GenerateRequest struct {
	CaseType *domain.CaseType
	Data     domain.ExtractedData
	// Template overrides the registry lookup when non-empty.
	Template string
	// Skeleton optionally guides AI drafting when no template applies.
	Skeleton string
	Model    string
}

// GenerateResult is the outcome of a generation.
type GenerateResult struct {
	Success       bool     `json:"success"`
	Content       string   `json:"content,omitempty"`
	ElapsedMs     int64    `json:"elapsed_ms"`
	Error         string   `json:"error,omitempty"`
	MissingFields []string `json:"missing_fields,omitempty"`
	UsedTemplate  bool     `json:"used_template"`
	TemplateID    string   `json:"template_id,omitempty"`
	ModelUsed     string   `json:"model_used,omitempty"`
}

// EditRequest carries one natural-language edit.
type EditRequest struct {
	Content     string
	Instruction string
	Model       string
}

// EditResult is the outcome of an edit.
type EditResult struct {
	Success   bool   `json:"success"`
	Content   string `json:"content,omitempty"`
	ElapsedMs int64  `json:"elapsed_ms"`
	Error     string `json:"error,omitempty"`
	ModelUsed string `json:"model_used,omitempty"`
}

// Generator produces document text. Template rendering is pure; the
// provider is only consulted for drafting without a template and for edits.
type Generator struct {
	providers port.ProviderSelector
	templates port.TemplateRegistry
	maxTokens int
}

// NewGenerator creates a Generator.
func NewGenerator(providers port.ProviderSelector, templates port.TemplateRegistry, maxTokens int) *Generator {
	return &Generator{providers: providers, templates: templates, maxTokens: maxTokens}
}

// Generate renders the case type's template with data, or drafts the
// document through the provider when no template exists.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) *GenerateResult {
	start := time.Now()
	res := g.generate(ctx, req)
	res.ElapsedMs = time.Since(start).Milliseconds()
	return res
}

func (g *Generator) generate(ctx context.Context, req GenerateRequest) *GenerateResult {
	if req.CaseType == nil {
		return &GenerateResult{Error: "case type is required"}
	}

	tpl, templateID := req.Template, ""
	if tpl == "" && g.templates != nil {
		if found, ok := g.templates.Lookup(req.CaseType.ID); ok {
			tpl, templateID = found, req.CaseType.ID
		}
	}

	if tpl != "" {
		vars := Variables(req.CaseType, req.Data)
		validation := template.Validate(vars, req.CaseType.RequiredFieldIDs())
		if !validation.Valid {
			log.Printf("generation.Generate: %s rendered with missing fields %v", req.CaseType.ID, validation.Missing)
		}
		return &GenerateResult{
			Success:       true,
			Content:       template.Render(tpl, vars),
			MissingFields: validation.Missing,
			UsedTemplate:  true,
			TemplateID:    templateID,
		}
	}

	p, err := g.providers.Select(req.Model)
	if err != nil {
		return &GenerateResult{Error: err.Error()}
	}
	raw, err := p.Complete(ctx, buildDraftPrompt(req.CaseType, req.Data, req.Skeleton), g.maxTokens)
	if err != nil {
		log.Printf("generation.Generate: provider %s failed for %s: %v", p.Name(), req.CaseType.ID, err)
		return &GenerateResult{Error: (&domain.ProviderError{Provider: p.Name(), Err: err}).Error(), ModelUsed: p.Name()}
	}
	content := provider.StripCodeFences(raw)
	if content == "" {
		return &GenerateResult{Error: (&domain.ProviderError{Provider: p.Name(), Err: provider.ErrEmptyCompletion}).Error(), ModelUsed: p.Name()}
	}
	return &GenerateResult{
		Success:       true,
		Content:       content,
		MissingFields: req.Data.MissingFields(req.CaseType.RequiredFieldIDs()),
		ModelUsed:     p.Name(),
	}
}

// Edit applies a natural-language instruction to content and returns the
// complete replacement text.
func (g *Generator) Edit(ctx context.Context, req EditRequest) *EditResult {
	start := time.Now()
	res := g.edit(ctx, req)
	res.ElapsedMs = time.Since(start).Milliseconds()
	return res
}

func (g *Generator) edit(ctx context.Context, req EditRequest) *EditResult {
	if strings.TrimSpace(req.Instruction) == "" {
		return &EditResult{Error: (&domain.ValidationError{Field: "instruction", Message: "must not be empty"}).Error()}
	}
	p, err := g.providers.Select(req.Model)
	if err != nil {
		return &EditResult{Error: err.Error()}
	}
	raw, err := p.Complete(ctx, buildEditPrompt(req.Content, req.Instruction), g.maxTokens)
	if err != nil {
		log.Printf("generation.Edit: provider %s failed: %v", p.Name(), err)
		return &EditResult{Error: (&domain.ProviderError{Provider: p.Name(), Err: err}).Error(), ModelUsed: p.Name()}
	}
	content := provider.StripCodeFences(raw)
	if content == "" {
		return &EditResult{Error: (&domain.ProviderError{Provider: p.Name(), Err: provider.ErrEmptyCompletion}).Error(), ModelUsed: p.Name()}
	}
	return &EditResult{Success: true, Content: content, ModelUsed: p.Name()}
}

// Variables flattens data for template rendering and adds the derived
// spelled-out forms: "<id>_letra" for currency fields and "<id>_palabras"
// for integer fields. Values already present in data are never replaced.
func Variables(ct *domain.CaseType, data domain.ExtractedData) map[string]string {
	vars := data.Flatten()
	for _, f := range ct.Fields {
		value := strings.TrimSpace(vars[f.ID])
		if value == "" {
			continue
		}
		switch f.DataType {
		case domain.DataTypeCurrency:
			amount, err := template.ParseAmount(value)
			if err != nil {
				continue
			}
			setDerived(vars, f.ID+suffixAmountWords, template.FormatLegalPrice(amount))
		case domain.DataTypeInteger:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				continue
			}
			setDerived(vars, f.ID+suffixNumberWords, template.NumberToWords(n))
		}
	}
	return vars
}

func setDerived(vars map[string]string, key, value string) {
	if strings.TrimSpace(vars[key]) == "" {
		vars[key] = value
	}
}

// Package provider selects and composes AI completion backends.
package provider

import (
	"fmt"
	"log"

	"notaria/internal/config"
	"notaria/internal/domain"
	"notaria/internal/port"
)

// Factory builds a provider client from its settings.
type Factory func(cfg config.ProviderConfig, maxTokens int) port.AIProvider

// Set holds the providers configured at start-up, keyed by model.
// It implements port.ProviderSelector and is read-only after construction.
type Set struct {
	providers    map[domain.AIModel]port.AIProvider
	defaultModel domain.AIModel
}

// NewSet constructs every configured provider once. Providers without an
// API key or without a factory are skipped. When the configured default is
// unavailable the first available model becomes the default. With fallback
// enabled each selection tries the remaining providers after the chosen one.
func NewSet(cfg config.AIConfig, factories map[domain.AIModel]Factory) (*Set, error) {
	built := make(map[domain.AIModel]port.AIProvider)
	for _, model := range domain.AIModels {
		pc := cfg.ProviderFor(string(model))
		factory, ok := factories[model]
		if !ok || !pc.Configured() {
			continue
		}
		built[model] = factory(pc, cfg.MaxTokens)
	}

	def, ok := domain.ParseAIModel(cfg.DefaultProvider)
	if !ok {
		return nil, fmt.Errorf("provider: unknown default provider %q", cfg.DefaultProvider)
	}
	if _, configured := built[def]; !configured {
		for _, model := range domain.AIModels {
			if _, configured := built[model]; configured {
				log.Printf("provider.NewSet: default provider %s not configured, using %s", def, model)
				def = model
				break
			}
		}
	}
	if len(built) == 0 {
		log.Printf("provider.NewSet: no AI provider configured; extraction and generation will fail")
	}

	if !cfg.FallbackEnabled || len(built) < 2 {
		return NewSetFromProviders(built, def), nil
	}

	chained := make(map[domain.AIModel]port.AIProvider, len(built))
	for _, first := range domain.AIModels {
		p, ok := built[first]
		if !ok {
			continue
		}
		chain := []port.AIProvider{p}
		for _, other := range domain.AIModels {
			if q, ok := built[other]; ok && other != first {
				chain = append(chain, q)
			}
		}
		chained[first] = NewFallbackProvider(chain)
	}
	log.Printf("provider.NewSet: fallback enabled across %d providers", len(built))
	return NewSetFromProviders(chained, def), nil
}

// NewSetFromProviders wraps already constructed providers.
func NewSetFromProviders(providers map[domain.AIModel]port.AIProvider, defaultModel domain.AIModel) *Set {
	copied := make(map[domain.AIModel]port.AIProvider, len(providers))
	for k, v := range providers {
		copied[k] = v
	}
	return &Set{providers: copied, defaultModel: defaultModel}
}

// Resolve normalises a caller choice: unknown or unconfigured models map to
// the default.
func (s *Set) Resolve(model string) domain.AIModel {
	if m, ok := domain.ParseAIModel(model); ok {
		if _, configured := s.providers[m]; configured {
			return m
		}
	}
	return s.defaultModel
}

// Select returns the provider for model, falling back to the default.
func (s *Set) Select(model string) (port.AIProvider, error) {
	p, ok := s.providers[s.Resolve(model)]
	if !ok {
		return nil, domain.ErrNoProvider
	}
	return p, nil
}

// Default returns the designated default model.
func (s *Set) Default() domain.AIModel {
	return s.defaultModel
}

// Available lists configured models in preference order.
func (s *Set) Available() []domain.AIModel {
	var out []domain.AIModel
	for _, m := range domain.AIModels {
		if _, ok := s.providers[m]; ok {
			out = append(out, m)
		}
	}
	return out
}

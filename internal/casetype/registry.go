// Package casetype loads the static catalog of legal instrument categories.
package casetype

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"notaria/internal/domain"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type catalog struct {
	CaseTypes []domain.CaseType `yaml:"case_types"`
}

// Registry holds case types keyed by id. It is immutable after load.
type Registry struct {
	byID map[string]*domain.CaseType
	ids  []string
}

// Load reads the catalog at path, or the built-in catalog when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Parse(defaultCatalog)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("casetype: read %s: %w", path, err)
	}
	reg, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("casetype: %s: %w", path, err)
	}
	return reg, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Registry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("casetype: catalog is empty")
	}
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("casetype: decode catalog: %w", err)
	}

	reg := &Registry{byID: make(map[string]*domain.CaseType, len(c.CaseTypes))}
	for i := range c.CaseTypes {
		ct := c.CaseTypes[i]
		if err := validate(&ct); err != nil {
			return nil, err
		}
		if _, dup := reg.byID[ct.ID]; dup {
			return nil, fmt.Errorf("casetype: duplicate case type %q", ct.ID)
		}
		if ct.SuggestedDocuments == nil {
			ct.SuggestedDocuments = []string{}
		}
		reg.byID[ct.ID] = &ct
		reg.ids = append(reg.ids, ct.ID)
	}
	sort.Strings(reg.ids)
	return reg, nil
}

func validate(ct *domain.CaseType) error {
	if ct.ID == "" {
		return fmt.Errorf("casetype: case type without id")
	}
	if ct.Name == "" {
		ct.Name = ct.ID
	}
	seen := make(map[string]bool, len(ct.Fields))
	for i, f := range ct.Fields {
		if f.ID == "" {
			return fmt.Errorf("casetype: %s: field %d has no id", ct.ID, i)
		}
		if seen[f.ID] {
			return fmt.Errorf("casetype: %s: duplicate field %q", ct.ID, f.ID)
		}
		seen[f.ID] = true
		if f.DataType == "" {
			ct.Fields[i].DataType = domain.DataTypeString
		}
		if f.Label == "" {
			ct.Fields[i].Label = f.ID
		}
	}
	return nil
}

// Get returns the case type with the given id.
func (r *Registry) Get(id string) (*domain.CaseType, error) {
	ct, ok := r.byID[id]
	if !ok {
		return nil, domain.NewNotFound("case type", id)
	}
	return ct, nil
}

// List returns every case type ordered by id.
func (r *Registry) List() []*domain.CaseType {
	out := make([]*domain.CaseType, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.byID[id])
	}
	return out
}

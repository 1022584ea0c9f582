package template

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"sort"
	"strings"
)

//go:embed templates/*.md
var embedded embed.FS

// Registry maps case-type ids to template text. It is read-only after
// construction and safe for concurrent use.
type Registry struct {
	templates map[string]string
}

// NewRegistry loads the built-in templates and, when dir is set, every
// *.md file in dir, which overrides a built-in template with the same name.
func NewRegistry(dir string) (*Registry, error) {
	r := &Registry{templates: make(map[string]string)}
	if err := r.load(embedded, "templates"); err != nil {
		return nil, fmt.Errorf("loading built-in templates: %w", err)
	}
	if dir != "" {
		if err := r.load(os.DirFS(dir), "."); err != nil {
			return nil, fmt.Errorf("loading templates from %s: %w", dir, err)
		}
		log.Printf("template.NewRegistry: loaded overrides from %s", dir)
	}
	return r, nil
}

// NewRegistryFromMap builds a registry from in-memory templates.
func NewRegistryFromMap(templates map[string]string) *Registry {
	r := &Registry{templates: make(map[string]string, len(templates))}
	for id, text := range templates {
		r.templates[id] = text
	}
	return r
}

// Lookup returns the template registered for the case type.
func (r *Registry) Lookup(caseTypeID string) (string, bool) {
	text, ok := r.templates[caseTypeID]
	return text, ok
}

// IDs returns the case-type ids that have a template, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) load(fsys fs.FS, root string) error {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".md" {
			continue
		}
		raw, err := fs.ReadFile(fsys, path.Join(root, entry.Name()))
		if err != nil {
			return err
		}
		r.templates[strings.TrimSuffix(entry.Name(), ".md")] = string(raw)
	}
	return nil
}

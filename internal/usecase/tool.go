package usecase

import (
	"context"
	"sort"

	"FinChat/internal/domain/models"
	drepo "FinChat/internal/domain/repository"
)

// Tool is one named capability the oracle can select. Invoke receives the
// turn's question plus the oracle-supplied arguments, which are untrusted.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]interface{}
	Invoke(ctx context.Context, question string, args map[string]interface{}) ([]models.Record, error)
}

// Registry is the closed catalog of tools exposed to the oracle. Lookups
// for names outside the catalog fail; the set never changes after
// construction.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry(tools ...Tool) *Registry {
	m := make(map[string]Tool, len(tools))
	for _, t := range tools {
		m[t.Name()] = t
	}
	return &Registry{tools: m}
}

// Lookup returns the named tool or an UnknownToolError.
func (r *Registry) Lookup(name string) (Tool, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, &models.UnknownToolError{Name: name}
	}
	return t, nil
}

// Catalog returns the schema list handed to the oracle's selection call,
// ordered by name for a stable prompt.
func (r *Registry) Catalog() []drepo.ToolSchema {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	catalog := make([]drepo.ToolSchema, 0, len(names))
	for _, name := range names {
		t := r.tools[name]
		catalog = append(catalog, drepo.ToolSchema{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return catalog
}

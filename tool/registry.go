package tool

import (
	"fmt"
	"time"

	"github.com/autopaper/autopaper/core"
)

// Registry is the fixed catalog of callable tools. It is populated once at
// process start and read-only afterwards, which makes it safe to share
// across concurrent sessions without locking.
type Registry struct {
	defs  map[string]Definition
	order []string
}

// NewRegistry builds a registry from the given definitions. Duplicate names
// and missing tools are construction errors. Definitions without a timeout
// get 30s; a zero retry policy falls back to DefaultRetryPolicy.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if err := r.add(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustNewRegistry is NewRegistry that panics on error, for wiring at startup.
func MustNewRegistry(defs ...Definition) *Registry {
	r, err := NewRegistry(defs...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) add(d Definition) error {
	if d.Tool == nil {
		return fmt.Errorf("tool definition without tool")
	}
	name := d.Tool.Name()
	if name == "" {
		return fmt.Errorf("tool with empty name")
	}
	if _, exists := r.defs[name]; exists {
		return fmt.Errorf("duplicate tool %q", name)
	}
	if d.Timeout <= 0 {
		d.Timeout = 30 * time.Second
	}
	if d.Retry.MaxAttempts <= 0 {
		d.Retry = DefaultRetryPolicy()
	}
	r.defs[name] = d
	r.order = append(r.order, name)
	return nil
}

// Get returns the definition registered under name.
func (r *Registry) Get(name string) (Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Specs returns the declarative tool descriptions in registration order,
// suitable for handing to a reasoner.
func (r *Registry) Specs() []core.ToolSpec {
	specs := make([]core.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.defs[name].Spec())
	}
	return specs
}

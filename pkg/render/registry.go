package render

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps output format names, and their aliases, to renderers.
type Registry struct {
	mu      sync.RWMutex
	formats map[string]Renderer
	aliases map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		formats: make(map[string]Renderer),
		aliases: make(map[string]string),
	}
}

// Register adds renderer under its Name() plus any aliases. Names are case
// insensitive; a name or alias may only be taken once.
func (r *Registry) Register(renderer Renderer, aliases ...string) error {
	if renderer == nil {
		return fmt.Errorf("render: renderer is required")
	}
	format := canonical(renderer.Name())
	if format == "" {
		return fmt.Errorf("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.takenLocked(format) {
		return fmt.Errorf("render: format %q already registered", format)
	}
	for _, alias := range aliases {
		if alias = canonical(alias); alias == "" || alias == format || r.takenLocked(alias) {
			return fmt.Errorf("render: alias %q for %q is not available", alias, format)
		}
	}

	r.formats[format] = renderer
	for _, alias := range aliases {
		r.aliases[canonical(alias)] = format
	}
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(renderer Renderer, aliases ...string) {
	if err := r.Register(renderer, aliases...); err != nil {
		panic(err)
	}
}

// Lookup resolves a format name or alias.
func (r *Registry) Lookup(format string) (Renderer, error) {
	key := canonical(format)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if target, ok := r.aliases[key]; ok {
		key = target
	}
	renderer, ok := r.formats[key]
	if !ok {
		return nil, fmt.Errorf("render: unknown format %q", format)
	}
	return renderer, nil
}

// List returns the sorted format names, without aliases.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.formats))
	for format := range r.formats {
		out = append(out, format)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) takenLocked(key string) bool {
	_, isFormat := r.formats[key]
	_, isAlias := r.aliases[key]
	return isFormat || isAlias
}

func canonical(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

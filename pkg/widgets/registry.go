package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-paramform/pkg/paramtype"
)

// Kind is the closed set of field variants a parameter can be rendered as.
// The kind is picked once, when the field is created, and decides how the
// field's content is read back.
type Kind int

const (
	// KindChoice is an editable choice list seeded with known values.
	KindChoice Kind = iota
	// KindCheckbox is a two-state toggle.
	KindCheckbox
	// KindGroup is a nested container for a record.
	KindGroup
	// KindArray is a nested container for an array of records.
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindCheckbox:
		return "checkbox"
	case KindGroup:
		return "group"
	case KindArray:
		return "array"
	default:
		return "choice"
	}
}

// Nested reports whether the kind holds child fields.
func (k Kind) Nested() bool {
	return k == KindGroup || k == KindArray
}

// Matcher decides whether a kind should handle the supplied type.
type Matcher func(desc paramtype.Descriptor) bool

type rule struct {
	kind     Kind
	priority int
	match    Matcher
	order    int
}

// Registry selects field kinds for type descriptors based on explicit
// per-tag overrides or registered matchers. Higher priority wins; ties fall
// back to registration order. Types no matcher accepts render as choices.
type Registry struct {
	mu        sync.RWMutex
	rules     []rule
	overrides map[string]Kind
}

// NewRegistry constructs a registry with the built-in matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{overrides: make(map[string]Kind)}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher for kind with the provided priority.
func (r *Registry) Register(kind Kind, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		kind:     kind,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Override pins the kind for an exact type tag, bypassing matchers.
func (r *Registry) Override(tag string, kind Kind) {
	if r == nil {
		return
	}
	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.overrides == nil {
		r.overrides = make(map[string]Kind)
	}
	r.overrides[trimmed] = kind
}

// Resolve returns the kind for desc. A nil registry resolves using the
// built-in rules only.
func (r *Registry) Resolve(desc paramtype.Descriptor) Kind {
	if r == nil {
		return defaultKind(desc)
	}
	r.mu.RLock()
	if kind, ok := r.overrides[desc.Tag]; ok {
		r.mu.RUnlock()
		return kind
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(desc) {
			return entry.kind
		}
	}
	return KindChoice
}

func defaultKind(desc paramtype.Descriptor) Kind {
	switch {
	case isCheckbox(desc):
		return KindCheckbox
	case desc.Primitive:
		return KindChoice
	case desc.Array, isRecordList(desc):
		return KindArray
	default:
		return KindGroup
	}
}

func isCheckbox(desc paramtype.Descriptor) bool {
	return desc.Primitive && !desc.Array && strings.Contains(desc.Base, "bool")
}

// isRecordList matches the marker given to untyped sequences of records.
func isRecordList(desc paramtype.Descriptor) bool {
	return desc.Tag == paramtype.TagList
}

func (r *Registry) registerBuiltins() {
	r.Register(KindCheckbox, 90, isCheckbox)

	r.Register(KindChoice, 80, func(desc paramtype.Descriptor) bool {
		return desc.Primitive
	})

	r.Register(KindArray, 70, func(desc paramtype.Descriptor) bool {
		return desc.Array || isRecordList(desc)
	})

	r.Register(KindGroup, 60, func(desc paramtype.Descriptor) bool {
		return !desc.Primitive
	})
}

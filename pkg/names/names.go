// Package names implements the slash-delimited namespace rules used by the
// parameter server for fully-qualified parameter names.
package names

import "strings"

// Sep separates namespace segments.
const Sep = "/"

// Join appends name to the namespace ns. Global names (leading separator) are
// returned unchanged, as is name when ns is empty.
func Join(ns, name string) string {
	if IsGlobal(name) || ns == "" {
		return name
	}
	if strings.HasSuffix(ns, Sep) {
		return ns + name
	}
	return ns + Sep + name
}

// IsGlobal reports whether name is rooted at the global namespace.
func IsGlobal(name string) bool {
	return strings.HasPrefix(name, Sep)
}

// Canonical returns ns with exactly one leading and one trailing separator.
// The empty namespace is the global namespace.
func Canonical(ns string) string {
	trimmed := strings.Trim(strings.TrimSpace(ns), Sep)
	if trimmed == "" {
		return Sep
	}
	return Sep + trimmed + Sep
}

// Relative strips the namespace prefix from name. Names outside ns are
// returned without their leading separator.
func Relative(ns, name string) string {
	prefix := Canonical(ns)
	if strings.HasPrefix(name, prefix) {
		return name[len(prefix):]
	}
	if Sep+strings.Trim(name, Sep)+Sep == prefix {
		return ""
	}
	return strings.TrimPrefix(name, Sep)
}

// Split breaks a name into its non-empty segments.
func Split(name string) []string {
	parts := strings.Split(name, Sep)
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// InNamespace reports whether name lives at or below ns.
func InNamespace(ns, name string) bool {
	prefix := Canonical(ns)
	if prefix == Sep {
		return true
	}
	return strings.HasPrefix(name, prefix) || name == strings.TrimSuffix(prefix, Sep)
}

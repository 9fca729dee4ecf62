// Package paramtype classifies parameter type tags.
//
// A type tag is the host messaging system's type name, optionally carrying an
// array suffix ("int32[]", "float64[3]"), or one of the nested-structure
// markers "dict" and "list" used when a value was itself a structure rather
// than a declared type. Classification is a pure function of the tag.
package paramtype

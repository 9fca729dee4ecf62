// Package form turns a nested dictionary of typed parameters into a tree of
// editable fields and collects the edited values back into the same shape.
//
// Construction input is a Params mapping from name to Entry{Type, Value}.
// A value is a scalar, a sequence of scalars, a nested Params (a record) or a
// sequence of Params (an array of records). Populate builds one Node per
// entry and asks the Renderer for a matching widget; Values reads every
// widget back through the node's coercion rules.
//
// The package never talks to a concrete widget toolkit. Anything that
// implements Renderer can host the tree; see pkg/renderers/headless for the
// in-memory implementation.
package form

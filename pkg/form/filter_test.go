package form_test

import (
	"testing"

	"github.com/goliatone/go-paramform/pkg/form"
)

func visibility(t *testing.T, box *form.Box) map[string]bool {
	t.Helper()
	out := make(map[string]bool)
	if err := box.Walk(func(node *form.Node) error {
		out[node.FullName()] = node.Widget().Visible()
		return nil
	}); err != nil {
		t.Fatalf("walk: %v", err)
	}
	return out
}

func TestFilter(t *testing.T) {
	box, _ := newTree(t, "/")
	err := box.Populate(form.Params{
		"max_speed": {Type: "float64", Value: 1.0},
		"name":      {Type: "string", Value: "r2"},
		"limits": {Type: "dict", Value: form.Params{
			"MaxTorque": {Type: "float64", Value: 3.0},
			"min":       {Type: "float64", Value: 0.0},
		}},
		"other": {Type: "dict", Value: form.Params{
			"flag": {Type: "bool", Value: true},
		}},
	})
	if err != nil {
		t.Fatalf("populate: %v", err)
	}

	if !box.Filter("MAX") {
		t.Fatalf("expected matches for MAX")
	}
	first := visibility(t, box)
	want := map[string]bool{
		"/max_speed":        true,
		"/name":             false,
		"/limits":           true,
		"/limits/MaxTorque": true,
		"/limits/min":       false,
		"/other":            false,
		"/other/flag":       false,
	}
	for name, visible := range want {
		if first[name] != visible {
			t.Fatalf("%s: expected visible=%v", name, visible)
		}
	}

	box.Filter("MAX")
	second := visibility(t, box)
	for name, visible := range first {
		if second[name] != visible {
			t.Fatalf("filter is not idempotent for %s", name)
		}
	}

	if box.Filter("nothing-matches") {
		t.Fatalf("expected no matches")
	}
	box.Filter("")
	for name, visible := range visibility(t, box) {
		if !visible {
			t.Fatalf("%s should be visible after clearing the filter", name)
		}
	}
}

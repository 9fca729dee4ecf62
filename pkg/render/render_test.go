package render

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleValues() map[string]any {
	return map[string]any{
		"b":    map[string]any{"c": int64(1)},
		"a":    "x",
		"list": []any{map[string]any{"k": true}},
		"seq":  []any{int64(1), int64(2)},
	}
}

func TestFlatten(t *testing.T) {
	want := []Row{
		{Name: "/ns/a", Value: "x"},
		{Name: "/ns/b/c", Value: "1"},
		{Name: "/ns/list/0/k", Value: "true"},
		{Name: "/ns/seq", Value: "1,2"},
	}
	if diff := cmp.Diff(want, Flatten("/ns", sampleValues())); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if got := Flatten("", map[string]any{"a": 1.5}); got[0].Name != "/a" {
		t.Fatalf("expected root namespace, got %+v", got)
	}
}

func TestValues_JSONAndYAML(t *testing.T) {
	values := map[string]any{"b": int64(1), "a": "x"}
	out, err := Values(context.Background(), FormatJSON, values, Options{})
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if diff := cmp.Diff("{\n  \"a\": \"x\",\n  \"b\": 1\n}\n", string(out)); diff != "" {
		t.Fatalf("json mismatch (-want +got):\n%s", diff)
	}

	out, err = Values(context.Background(), FormatYAML, values, Options{})
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if diff := cmp.Diff("a: x\nb: 1\n", string(out)); diff != "" {
		t.Fatalf("yaml mismatch (-want +got):\n%s", diff)
	}
}

func TestValues_Pretty(t *testing.T) {
	out, err := Values(context.Background(), FormatPretty, sampleValues(), Options{Namespace: "/ns"})
	if err != nil {
		t.Fatalf("pretty: %v", err)
	}
	want := "/ns/a = x\n/ns/b/c = 1\n/ns/list/0/k = true\n/ns/seq = 1,2\n"
	if !strings.HasPrefix(string(out), want) {
		t.Fatalf("unexpected pretty output %q", out)
	}
}

func TestValues_PrettyDoesNotEscape(t *testing.T) {
	out, err := Values(context.Background(), FormatPretty, map[string]any{"tag": "<a&b>"}, Options{})
	if err != nil {
		t.Fatalf("pretty: %v", err)
	}
	if !strings.Contains(string(out), "/tag = <a&b>") {
		t.Fatalf("unexpected pretty output %q", out)
	}
}

func TestValues_Table(t *testing.T) {
	out, err := Values(context.Background(), FormatTable, sampleValues(), Options{Namespace: "/ns"})
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	for _, want := range []string{"Parameter", "Value", "/ns/b/c", "/ns/seq"} {
		if !strings.Contains(string(out), want) {
			t.Fatalf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestValues_UnknownFormat(t *testing.T) {
	if _, err := Values(context.Background(), "xml", nil, Options{}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestFormats(t *testing.T) {
	want := []string{FormatJSON, FormatPretty, FormatTable, FormatYAML}
	if diff := cmp.Diff(want, Formats()); diff != "" {
		t.Fatalf("formats mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(JSON()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(JSON()); err == nil {
		t.Fatalf("expected duplicate error")
	}
	if diff := cmp.Diff([]string{FormatJSON}, r.List()); diff != "" {
		t.Fatalf("registry mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_Aliases(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(YAML(), "YML"); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, err := r.Lookup(" yml ")
	if err != nil || got.Name() != FormatYAML {
		t.Fatalf("expected yaml renderer via alias, got %v %v", got, err)
	}
	if _, err := r.Lookup("YAML"); err != nil {
		t.Fatalf("expected case insensitive lookup: %v", err)
	}
	if err := r.Register(JSON(), "yml"); err == nil {
		t.Fatalf("expected taken alias to be rejected")
	}
	if _, err := r.Lookup("json"); err == nil {
		t.Fatalf("rejected registration must not be stored")
	}
}

func TestValues_FormatAlias(t *testing.T) {
	out, err := Values(context.Background(), "yml", map[string]any{"a": "x"}, Options{})
	if err != nil {
		t.Fatalf("yml: %v", err)
	}
	if diff := cmp.Diff("a: x\n", string(out)); diff != "" {
		t.Fatalf("yaml mismatch (-want +got):\n%s", diff)
	}
}

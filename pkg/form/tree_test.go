package form_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-paramform/pkg/form"
	"github.com/goliatone/go-paramform/pkg/history"
	"github.com/goliatone/go-paramform/pkg/renderers/headless"
	"github.com/goliatone/go-paramform/pkg/widgets"
)

func newTree(t *testing.T, ns string, opts ...form.Option) (*form.Box, *headless.Renderer) {
	t.Helper()
	r := headless.New()
	box, err := form.NewMainBox(r, ns, opts...)
	if err != nil {
		t.Fatalf("new main box: %v", err)
	}
	return box, r
}

func choice(t *testing.T, box *form.Box, path string) *headless.ChoiceField {
	t.Helper()
	node, ok := box.Lookup(path)
	if !ok {
		t.Fatalf("node %q not found", path)
	}
	cf, ok := node.Widget().(*headless.ChoiceField)
	if !ok {
		t.Fatalf("node %q is %T, not a choice field", path, node.Widget())
	}
	return cf
}

func TestNewMainBox_RequiresRenderer(t *testing.T) {
	if _, err := form.NewMainBox(nil, "/"); err == nil {
		t.Fatalf("expected error without renderer")
	}
}

func TestPopulate_KindsAndOrder(t *testing.T) {
	box, r := newTree(t, "/robot")
	err := box.Populate(form.Params{
		"speed":   {Type: "float64", Value: 0.5},
		"Enabled": {Type: "bool", Value: true},
		"alpha":   {Type: "int32", Value: int64(1)},
		"pose": {Type: "geometry_msgs/Pose", Value: form.Params{
			"x": {Type: "float64", Value: 1.0},
		}},
		"path": {Type: "geometry_msgs/Pose[]", Value: []form.Params{
			{"x": {Type: "float64", Value: 2.0}},
		}},
	})
	if err != nil {
		t.Fatalf("populate: %v", err)
	}

	var got []string
	for _, node := range box.Params() {
		got = append(got, node.Name()+":"+node.Kind().String())
	}
	want := []string{"alpha:choice", "Enabled:checkbox", "path:array", "pose:group", "speed:choice"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}

	root := r.Root()
	if root == nil || len(root.Children()) != len(want) {
		t.Fatalf("expected %d rendered children, got %+v", len(want), root)
	}
	el, ok := root.Find("pose/x")
	if !ok {
		t.Fatalf("expected nested widget pose/x")
	}
	if cf := el.(*headless.ChoiceField); cf.CurrentText() != "1" || cf.Label() != "x (float64)" {
		t.Fatalf("unexpected nested field %q %q", cf.CurrentText(), cf.Label())
	}
}

func TestPopulate_InfersMissingTypes(t *testing.T) {
	box, _ := newTree(t, "/")
	err := box.Populate(form.Params{
		"count": {Value: int64(3)},
		"name":  {Value: "bob"},
		"inner": {Value: form.Params{"flag": {Value: false}}},
	})
	if err != nil {
		t.Fatalf("populate: %v", err)
	}
	for path, tag := range map[string]string{"count": "int", "name": "string", "inner": "dict", "inner/flag": "bool"} {
		node, ok := box.Lookup(path)
		if !ok {
			t.Fatalf("missing %s", path)
		}
		if node.TypeTag() != tag {
			t.Fatalf("%s: expected tag %s, got %s", path, tag, node.TypeTag())
		}
	}
}

func TestPopulate_DuplicatePrimitive(t *testing.T) {
	box, _ := newTree(t, "/")
	if err := box.Populate(form.Params{"a": {Type: "int32", Value: int64(1)}}); err != nil {
		t.Fatalf("populate: %v", err)
	}
	err := box.Populate(form.Params{"a": {Type: "int32", Value: int64(2)}})
	var dup *form.DuplicateFieldError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateFieldError, got %v", err)
	}
	if dup.Name != "a" {
		t.Fatalf("unexpected duplicate name %q", dup.Name)
	}
}

func TestPopulate_MergesGroups(t *testing.T) {
	box, _ := newTree(t, "/")
	first := form.Params{"g": {Type: "dict", Value: form.Params{"x": {Type: "int32", Value: int64(1)}}}}
	second := form.Params{"g": {Type: "dict", Value: form.Params{"y": {Type: "string", Value: "s"}}}}
	if err := box.Populate(first); err != nil {
		t.Fatalf("populate first: %v", err)
	}
	if err := box.Populate(second); err != nil {
		t.Fatalf("populate second: %v", err)
	}
	if len(box.Params()) != 1 {
		t.Fatalf("expected one group, got %d nodes", len(box.Params()))
	}

	got, err := box.Values()
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	want := map[string]any{"g": map[string]any{"x": int64(1), "y": "s"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestValues_RoundTrip(t *testing.T) {
	box, _ := newTree(t, "/ns")
	err := box.Populate(form.Params{
		"i":     {Type: "int32", Value: int64(-4)},
		"f":     {Type: "float64", Value: 2.5},
		"on":    {Type: "bool", Value: true},
		"off":   {Type: "bool", Value: false},
		"s":     {Type: "string", Value: "text"},
		"ints":  {Type: "int32[]", Value: []int64{1, 2, 3}},
		"empty": {Type: "float32[]", Value: []float64{}},
		"names": {Type: "string[2]", Value: []string{"a", "b"}},
		"stamp": {Type: "time", Value: form.Time{Secs: 1, Nsecs: 500000000}},
		"big":   {Type: "uint64", Value: uint64(18446744073709551615)},
		"nested": {Type: "dict", Value: form.Params{
			"deep": {Type: "dict", Value: form.Params{"v": {Type: "uint8", Value: int64(7)}}},
		}},
	})
	if err != nil {
		t.Fatalf("populate: %v", err)
	}

	got, err := box.Values()
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	want := map[string]any{
		"i":      int64(-4),
		"f":      2.5,
		"on":     true,
		"off":    false,
		"s":      "text",
		"ints":   []int64{1, 2, 3},
		"empty":  []float64{},
		"names":  []string{"a", "b"},
		"stamp":  form.Time{Secs: 1, Nsecs: 500000000},
		"big":    uint64(18446744073709551615),
		"nested": map[string]any{"deep": map[string]any{"v": uint64(7)}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestValues_ReadsEditedFields(t *testing.T) {
	box, _ := newTree(t, "/")
	if err := box.Populate(form.Params{
		"rate": {Type: "float64", Value: 1.0},
		"on":   {Type: "bool", Value: false},
		"when": {Type: "time"},
	}); err != nil {
		t.Fatalf("populate: %v", err)
	}

	choice(t, box, "rate").SetText("3.25")
	node, _ := box.Lookup("on")
	node.Widget().(*headless.Checkbox).SetChecked(true)
	when := choice(t, box, "when")
	if when.CurrentText() != form.TimeNow {
		t.Fatalf("expected empty time field to offer now, got %q", when.CurrentText())
	}

	got, err := box.Values()
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	want := map[string]any{"rate": 3.25, "on": true, "when": form.TimeNow}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestValues_CoercionError(t *testing.T) {
	box, _ := newTree(t, "/ns")
	if err := box.Populate(form.Params{"n": {Type: "int32", Value: int64(1)}}); err != nil {
		t.Fatalf("populate: %v", err)
	}
	choice(t, box, "n").SetText("seven")

	_, err := box.Values()
	var coerceErr *form.ValueCoercionError
	if !errors.As(err, &coerceErr) {
		t.Fatalf("expected ValueCoercionError, got %v", err)
	}
	if coerceErr.Name != "/ns/n" || coerceErr.Input != "seven" {
		t.Fatalf("unexpected error fields %+v", coerceErr)
	}
}

func TestNode_Validate(t *testing.T) {
	box, _ := newTree(t, "/ns")
	if err := box.Populate(form.Params{
		"n": {Type: "int32", Value: int64(1)},
		"g": {Type: "dict", Value: form.Params{"x": {Type: "string", Value: "a"}}},
	}); err != nil {
		t.Fatalf("populate: %v", err)
	}
	n, _ := box.Field("n")
	if err := n.Validate("12"); err != nil {
		t.Fatalf("expected valid int, got %v", err)
	}
	var coerceErr *form.ValueCoercionError
	if err := n.Validate("x"); !errors.As(err, &coerceErr) {
		t.Fatalf("expected ValueCoercionError, got %v", err)
	}
	if n.Value() != int64(1) {
		t.Fatalf("validate must not store, got %v", n.Value())
	}
	g, _ := box.Field("g")
	if err := g.Validate("anything"); err != nil {
		t.Fatalf("groups accept any text, got %v", err)
	}
}

func TestValues_ArrayOfRecords(t *testing.T) {
	box, r := newTree(t, "/")
	err := box.Populate(form.Params{
		"single": {Type: "Pose[]", Value: []form.Params{
			{"x": {Type: "float64", Value: 1.0}},
		}},
		"many": {Type: "Pose[]", Value: []any{
			form.Params{"x": {Type: "float64", Value: 2.0}},
			form.Params{"x": {Type: "float64", Value: 3.0}},
		}},
	})
	if err != nil {
		t.Fatalf("populate: %v", err)
	}

	got, err := box.Values()
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	want := map[string]any{
		"single": []any{map[string]any{"x": 1.0}},
		"many":   []any{map[string]any{"x": 2.0}, map[string]any{"x": 3.0}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	many, ok := box.Field("many")
	if !ok || len(many.Box().Records()) != 2 {
		t.Fatalf("expected two records in many")
	}
	second, ok := box.Lookup("many/1/x")
	if !ok || second.Value() != 3.0 {
		t.Fatalf("expected lookup into second record, got %+v", second)
	}
	if second.FullName() != "/many/x" {
		t.Fatalf("unexpected full name %q", second.FullName())
	}

	group, _ := r.Root().Find("many")
	var separators int
	for _, child := range group.(*headless.Group).Children() {
		if _, ok := child.(*headless.Separator); ok {
			separators++
		}
	}
	if separators != 2 {
		t.Fatalf("expected a separator after each record, got %d", separators)
	}
}

func TestNode_FullName(t *testing.T) {
	box, _ := newTree(t, "/robot")
	err := box.Populate(form.Params{
		"arm": {Type: "dict", Value: form.Params{
			"joint": {Type: "dict", Value: form.Params{"speed": {Type: "float64", Value: 1.0}}},
		}},
		"top": {Type: "string", Value: "x"},
	})
	if err != nil {
		t.Fatalf("populate: %v", err)
	}
	for path, want := range map[string]string{
		"top":             "/robot/top",
		"arm":             "/robot/arm",
		"arm/joint/speed": "/robot/arm/joint/speed",
	} {
		node, ok := box.Lookup(path)
		if !ok {
			t.Fatalf("missing %s", path)
		}
		if got := node.FullName(); got != want {
			t.Fatalf("%s: expected %s, got %s", path, want, got)
		}
	}
}

func TestNode_Label(t *testing.T) {
	box, _ := newTree(t, "/")
	if err := box.Populate(form.Params{
		"plain": {Type: "string", Value: "v"},
		"typed": {Type: "int32", Value: int64(1)},
	}); err != nil {
		t.Fatalf("populate: %v", err)
	}
	plain, _ := box.Field("plain")
	typed, _ := box.Field("typed")
	if plain.Label() != "plain" || typed.Label() != "typed (int32)" {
		t.Fatalf("unexpected labels %q %q", plain.Label(), typed.Label())
	}
}

func TestNode_SetValueRecordsPreviousValue(t *testing.T) {
	cache := history.New()
	box, _ := newTree(t, "/ns", form.WithHistory(cache))
	if err := box.Populate(form.Params{"x": {Type: "int32", Value: int64(3)}}); err != nil {
		t.Fatalf("populate: %v", err)
	}
	node, _ := box.Field("x")

	if err := node.SetValue("4"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if diff := cmp.Diff([]string{"3"}, cache.Lookup("/ns/x")); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
	if node.Value() != int64(4) {
		t.Fatalf("expected 4, got %v", node.Value())
	}

	if err := node.SetValue(""); err != nil {
		t.Fatalf("set empty: %v", err)
	}
	if node.Value() != int64(0) {
		t.Fatalf("empty text should yield the zero value, got %v", node.Value())
	}
	if err := node.SetValue("5"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if diff := cmp.Diff([]string{"3"}, node.CachedValues()); diff != "" {
		t.Fatalf("empty previous values must not be recorded (-want +got):\n%s", diff)
	}
}

func TestNode_ChoicesIncludeHistory(t *testing.T) {
	cache := history.New()
	cache.Record("/ns/mode", "fast")
	cache.Record("/ns/mode", "slow")
	box, _ := newTree(t, "/ns", form.WithHistory(cache))
	if err := box.Populate(form.Params{"mode": {Type: "string", Value: "slow"}}); err != nil {
		t.Fatalf("populate: %v", err)
	}
	if diff := cmp.Diff([]string{"slow", "fast"}, choice(t, box, "mode").Items()); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestNode_SequenceValueOffersElements(t *testing.T) {
	box, _ := newTree(t, "/")
	if err := box.Populate(form.Params{"mode": {Type: "string", Value: []string{"a", "b"}}}); err != nil {
		t.Fatalf("populate: %v", err)
	}
	cf := choice(t, box, "mode")
	if diff := cmp.Diff([]string{"a", "b"}, cf.Items()); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
	if cf.CurrentText() != "a" {
		t.Fatalf("expected first element selected, got %q", cf.CurrentText())
	}
}

func TestRegistryOverride(t *testing.T) {
	reg := widgets.NewRegistry()
	reg.Override("int32", widgets.KindCheckbox)
	box, _ := newTree(t, "/", form.WithRegistry(reg))
	if err := box.Populate(form.Params{"flag": {Type: "int32", Value: int64(1)}}); err != nil {
		t.Fatalf("populate: %v", err)
	}
	node, _ := box.Field("flag")
	if node.Kind() != widgets.KindCheckbox {
		t.Fatalf("expected checkbox, got %s", node.Kind())
	}
}

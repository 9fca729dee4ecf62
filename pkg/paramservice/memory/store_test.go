package memory

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-paramform/pkg/paramservice"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := New()
	err := s.Seed(map[string]any{
		"robot": map[string]any{
			"speed": 1.5,
			"arm":   map[string]any{"joints": int64(6)},
		},
		"other": "x",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return s
}

func TestStore_ListParameters(t *testing.T) {
	s := seeded(t)
	res, err := s.ListParameters(context.Background(), "", "/robot")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := paramservice.ListResult{Code: paramservice.CodeSuccess, Names: []string{"/robot/arm/joints", "/robot/speed"}}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}

	all, _ := s.ListParameters(context.Background(), "", "")
	if len(all.Names) != 3 {
		t.Fatalf("expected every name for the global namespace, got %v", all.Names)
	}
}

func TestStore_ParameterValues(t *testing.T) {
	s := seeded(t)
	res, err := s.ParameterValues(context.Background(), "", []string{"/robot/speed", "/robot/arm", "/missing"})
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	want := paramservice.ValuesResult{
		Code: paramservice.CodeSuccess,
		Params: map[string]paramservice.ParamResult{
			"/robot/speed": {Code: paramservice.CodeSuccess, Value: 1.5},
			"/robot/arm":   {Code: paramservice.CodeSuccess, Value: map[string]any{"joints": int64(6)}},
			"/missing":     {Code: paramservice.CodeError, Message: "Parameter [/missing] is not set"},
		},
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_DeliverReplacesSubtree(t *testing.T) {
	s := seeded(t)
	res, err := s.DeliverParameters(context.Background(), "", map[string]any{
		"/robot/arm": map[string]any{"reach": 0.8},
		"/flag":      true,
		"":           "nameless",
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if res.Params["/robot/arm"].Code != paramservice.CodeSuccess || res.Params[""].Code != paramservice.CodeError {
		t.Fatalf("unexpected per-parameter results %+v", res.Params)
	}

	want := []string{"/flag", "/other", "/robot/arm/reach", "/robot/speed"}
	if diff := cmp.Diff(want, s.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if v, ok := s.Get("robot/arm/reach"); !ok || v != 0.8 {
		t.Fatalf("expected reach to be stored, got %v", v)
	}
}

func TestStore_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().ListParameters(ctx, "", "/"); err == nil {
		t.Fatalf("expected context error")
	}
}

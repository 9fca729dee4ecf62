// Package testsupport holds fixtures shared by tests that exercise a form
// against a parameter server.
package testsupport

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-paramform/pkg/form"
	"github.com/goliatone/go-paramform/pkg/paramfile"
	"github.com/goliatone/go-paramform/pkg/paramservice/httpserver"
	"github.com/goliatone/go-paramform/pkg/paramservice/memory"
)

// MustLoadParams reads a parameter file fixture as construction input.
func MustLoadParams(t *testing.T, path string) form.Params {
	t.Helper()

	params, err := paramfile.Load(path)
	if err != nil {
		t.Fatalf("load params: %v", err)
	}
	return params
}

// SeededStore returns a memory parameter store holding values.
func SeededStore(t *testing.T, values map[string]any) *memory.Store {
	t.Helper()

	store := memory.New()
	if err := store.Seed(values); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

// StartServer serves store over HTTP for the duration of the test and
// returns the endpoint URL.
func StartServer(t *testing.T, store *memory.Store) string {
	t.Helper()

	srv, err := httpserver.New(store)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

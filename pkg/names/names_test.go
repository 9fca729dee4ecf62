package names

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestJoin(t *testing.T) {
	cases := []struct {
		ns, name, want string
	}{
		{"/", "b", "/b"},
		{"/a", "b", "/a/b"},
		{"/a/", "b", "/a/b"},
		{"", "b", "b"},
		{"/a", "/global", "/global"},
		{"a", "b", "a/b"},
	}
	for _, tc := range cases {
		if got := Join(tc.ns, tc.name); got != tc.want {
			t.Fatalf("Join(%q, %q) = %q, want %q", tc.ns, tc.name, got, tc.want)
		}
	}
}

func TestRelative(t *testing.T) {
	cases := []struct {
		ns, name, want string
	}{
		{"/a", "/a/b", "b"},
		{"/a/", "/a/b/c", "b/c"},
		{"/", "/a/b", "a/b"},
		{"", "/x", "x"},
		{"/a", "/other/b", "other/b"},
		{"/a", "/a", ""},
	}
	for _, tc := range cases {
		if got := Relative(tc.ns, tc.name); got != tc.want {
			t.Fatalf("Relative(%q, %q) = %q, want %q", tc.ns, tc.name, got, tc.want)
		}
	}
}

func TestSplitDropsEmptySegments(t *testing.T) {
	got := Split("/a//b/c/")
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Fatalf("split mismatch (-want +got):\n%s", diff)
	}
}

func TestInNamespace(t *testing.T) {
	if !InNamespace("/", "/anything") {
		t.Fatalf("global namespace should contain every name")
	}
	if !InNamespace("/a", "/a/b") {
		t.Fatalf("expected /a/b in /a")
	}
	if InNamespace("/a", "/ab/c") {
		t.Fatalf("/ab/c must not match namespace /a")
	}
}

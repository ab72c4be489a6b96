package utils

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		// empty -> default
		{"", 10, 10},
		// valid ints
		{"42", 0, 42},
		{"-13", 1, -13},
		{"0012", 99, 12},
		// invalid -> default (no trim)
		{"x", 5, 5},
		{" 42", 7, 7},
		// overflow -> default
		{"999999999999999999999999", -1, -1},
	}

	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.s, tc.def, got, tc.want)
		}
	}
}

func TestHead(t *testing.T) {
	in := []string{"a", "b", "c"}
	cases := []struct {
		n    int
		want []string
	}{
		{-1, []string{"a", "b", "c"}},
		{0, []string{"a", "b", "c"}},
		{1, []string{"a"}},
		{3, []string{"a", "b", "c"}},
		{9, []string{"a", "b", "c"}},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, Head(in, tc.n)); diff != "" {
			t.Fatalf("Head(%d) mismatch (-want +got):\n%s", tc.n, diff)
		}
	}
	if got := Head[int](nil, 2); got != nil {
		t.Fatalf("Head(nil) = %v", got)
	}
}

package util_test

import (
	"testing"

	"github.com/corspolicy/cors/internal/util"
)

func TestSet(t *testing.T) {
	cases := []struct {
		desc   string
		elems  []string
		more   []string
		in     []string
		out    []string
		size   int
		maxLen int
	}{
		{
			desc: "empty set",
			out:  []string{"", "foo"},
		}, {
			desc:   "singleton set",
			elems:  []string{"foo"},
			in:     []string{"foo"},
			out:    []string{"", "Foo", "fooo"},
			size:   1,
			maxLen: 3,
		}, {
			desc:   "no dupes",
			elems:  []string{"foo", "bar", "baz"},
			more:   []string{"qux", "quux"},
			in:     []string{"bar", "baz", "foo", "quux", "qux"},
			out:    []string{"quuux"},
			size:   5,
			maxLen: 4,
		}, {
			desc:   "some dupes",
			elems:  []string{"foo", "bar", "baz"},
			more:   []string{"bar", "baz"},
			in:     []string{"bar", "baz", "foo"},
			size:   3,
			maxLen: 3,
		},
	}
	for _, tc := range cases {
		f := func(t *testing.T) {
			set := util.NewSet(tc.elems...)
			for _, s := range tc.more {
				set.Add(s)
			}
			if got := set.Size(); got != tc.size {
				t.Errorf("Size: got %d; want %d", got, tc.size)
			}
			if got := set.MaxLen(); got != tc.maxLen {
				t.Errorf("MaxLen: got %d; want %d", got, tc.maxLen)
			}
			for _, s := range tc.in {
				if !set.Contains(s) {
					t.Errorf("Contains(%q): got false; want true", s)
				}
			}
			for _, s := range tc.out {
				if set.Contains(s) {
					t.Errorf("Contains(%q): got true; want false", s)
				}
			}
		}
		t.Run(tc.desc, f)
	}
}

func TestZeroSetIsReadyToUse(t *testing.T) {
	var set util.Set
	if set.Contains("foo") {
		t.Error("zero Set: Contains(\"foo\"): got true; want false")
	}
	set.Add("foo")
	if !set.Contains("foo") {
		t.Error("Contains(\"foo\") after Add: got false; want true")
	}
}

package cmdline

import (
	"reflect"
	"strings"
	"testing"
)

func TestParamsSetKeepsPosition(t *testing.T) {
	var p Params
	p.Set("a", 1)
	p.Set("b", 2)
	p.Set("a", 3)

	want := Params{{"a", 3}, {"b", 2}}
	if !reflect.DeepEqual(p, want) {
		t.Fatalf("expected %v, got %v", want, p)
	}
}

func TestParamsDelete(t *testing.T) {
	p := Params{{"a", 1}, {"b", 2}, {"c", 3}}
	shared := p

	v, ok := p.Delete("b")
	if !ok || v != 2 {
		t.Fatalf("expected (2, true), got (%v, %v)", v, ok)
	}
	if want := (Params{{"a", 1}, {"c", 3}}); !reflect.DeepEqual(p, want) {
		t.Errorf("expected %v, got %v", want, p)
	}
	if want := (Params{{"a", 1}, {"b", 2}, {"c", 3}}); !reflect.DeepEqual(shared, want) {
		t.Errorf("delete leaked into shared slice: %v", shared)
	}
	if _, ok := p.Delete("missing"); ok {
		t.Error("expected missing key to report false")
	}
}

func TestParamsMergeAndGet(t *testing.T) {
	p := Params{{"a", 1}, {"b", 2}}
	p.Merge(Params{{"b", 20}, {"c", 30}})

	if got := p.Keys(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("unexpected key order %v", got)
	}
	if v, _ := p.Get("b"); v != 20 {
		t.Errorf("expected b=20, got %v", v)
	}
	if !p.Has("c") || p.Has("z") {
		t.Error("Has returned wrong answer")
	}
}

func TestPluck(t *testing.T) {
	p := Params{{"A", 1}, {"B", 2}, {"C", 3}}
	got := Pluck(&p, "C", "A", "D")

	if want := (Params{{"C", 3}, {"A", 1}}); !reflect.DeepEqual(got, want) {
		t.Errorf("expected plucked %v, got %v", want, got)
	}
	if want := (Params{{"B", 2}}); !reflect.DeepEqual(p, want) {
		t.Errorf("expected remainder %v, got %v", want, p)
	}
}

func TestRemap(t *testing.T) {
	p := Params{{"A", 1}, {"B", 2}}

	t.Run("rename", func(t *testing.T) {
		got := Remap(p, Rename(map[string]string{"A": "C"}))
		if want := (Params{{"C", 1}, {"B", 2}}); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("transform", func(t *testing.T) {
		got := Remap(p, Transform(strings.ToLower))
		if want := (Params{{"a", 1}, {"b", 2}}); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	// An empty mapped name falls back to the original key rather than
	// producing an empty parameter name.
	t.Run("empty result keeps key", func(t *testing.T) {
		got := Remap(Params{{"___", 1}, {"_x", 2}}, Transform(StripUnderscore))
		if want := (Params{{"___", 1}, {"x", 2}}); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
		got = Remap(p, Rename(map[string]string{"A": ""}))
		if want := (Params{{"A", 1}, {"B", 2}}); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("zero mapping is identity", func(t *testing.T) {
		if got := Remap(p, Mapping{}); !reflect.DeepEqual(got, p) {
			t.Errorf("expected %v, got %v", p, got)
		}
	})
}

package value_test

import (
	"testing"

	"github.com/ncdsv/ncdsv/internal/value"
)

func TestDeepCopyPreservesStringContent(t *testing.T) {
	v := value.String("hello")
	cp := v.DeepCopy()

	got, ok := cp.AsString()
	if !ok || got != "hello" {
		t.Fatalf("DeepCopy of a string Value = (%q, %v), want (%q, true)", got, ok, "hello")
	}
}

func TestDeepCopyPreservesListContent(t *testing.T) {
	v := value.List(value.String("a"), value.String("b"))
	cp := v.DeepCopy()

	items, ok := cp.AsList()
	if !ok || len(items) != 2 {
		t.Fatalf("DeepCopy of a list Value = (%v, %v), want 2 elements", items, ok)
	}
	for i, want := range []string{"a", "b"} {
		got, ok := items[i].AsString()
		if !ok || got != want {
			t.Fatalf("element %d = (%q, %v), want %q", i, got, ok, want)
		}
	}
}

func TestDeepCopyIsEqualButIndependent(t *testing.T) {
	v := value.List(value.String("x"))
	cp := v.DeepCopy()

	if !v.Equal(cp) {
		t.Fatalf("DeepCopy result should compare equal to the original")
	}

	items, _ := v.AsList()
	cpItems, _ := cp.AsList()
	if &items[0] == &cpItems[0] {
		t.Fatalf("DeepCopy should not alias the original's backing storage")
	}
}

func TestZeroValueIsEmptyString(t *testing.T) {
	var v value.Value
	got, ok := v.AsString()
	if !ok || got != "" {
		t.Fatalf("zero Value = (%q, %v), want (\"\", true)", got, ok)
	}
}

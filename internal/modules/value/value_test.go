package value_test

import (
	"context"
	"testing"

	"github.com/ncdsv/ncdsv/internal/module"
	modvalue "github.com/ncdsv/ncdsv/internal/modules/value"
	coreval "github.com/ncdsv/ncdsv/internal/value"
)

func newInstance(t *testing.T, args ...coreval.Value) module.Instance {
	t.Helper()
	inst, err := modvalue.Factory(context.Background(), module.InitParams{
		Args: args,
		Callbacks: module.Callbacks{
			OnEvent: func(module.Event) {},
			OnDied:  func(bool) {},
		},
	})
	if err != nil {
		t.Fatalf("Factory returned error: %v", err)
	}
	return inst
}

func TestExportsGivenArgument(t *testing.T) {
	inst := newInstance(t, coreval.String("hello"))

	v, ok := inst.GetVar("")
	if !ok {
		t.Fatal("expected the empty name to resolve")
	}
	s, ok := v.AsString()
	if !ok || s != "hello" {
		t.Fatalf("want %q, got %q (ok=%v)", "hello", s, ok)
	}
}

func TestDefaultsToEmptyStringWithNoArgument(t *testing.T) {
	inst := newInstance(t)

	v, ok := inst.GetVar("")
	if !ok {
		t.Fatal("expected the empty name to resolve")
	}
	s, _ := v.AsString()
	if s != "" {
		t.Fatalf("want empty string, got %q", s)
	}
}

func TestUnknownNameIsDeclined(t *testing.T) {
	inst := newInstance(t, coreval.String("hello"))

	if _, ok := inst.GetVar("anything"); ok {
		t.Fatal("only the empty name should resolve")
	}
}

// Package value implements the opaque value model referenced throughout the
// supervisor core: a string, or a list of values, always owned by exactly one
// container. Nothing in this package knows about statements, modules, or
// processes — it exists so that instance_args, literal arguments, and
// resolved variables all share one deep-copy-on-duplicate representation.
package value

import (
	"fmt"

	"github.com/mitchellh/copystructure"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	// KindString holds a single string.
	KindString Kind = iota
	// KindList holds an ordered sequence of Values.
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a variant {string, list-of-Value}. The zero Value is an empty
// string.
type Value struct {
	kind Kind
	str  string
	list []Value
}

// String constructs a string Value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// List constructs a list Value from already-owned elements. Callers must not
// reuse the elements afterward without copying them — List takes ownership
// and Values are never shared between containers.
func List(items ...Value) Value {
	l := make([]Value, len(items))
	copy(l, items)
	return Value{kind: KindList, list: l}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// AsString returns v's string payload and true if v is a string Value.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsList returns v's element slice and true if v is a list Value. The
// returned slice aliases v's internal storage and must be treated as
// read-only; callers that need to mutate must DeepCopy first.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

// Copy implements mitchellh/copystructure's Copier interface so that
// copystructure.Copy(v) dispatches here instead of reflecting over Value's
// unexported fields, which it otherwise cannot see at all.
func (v Value) Copy() (interface{}, error) {
	return v.deepCopy(), nil
}

func (v Value) deepCopy() Value {
	switch v.kind {
	case KindList:
		cp := make([]Value, len(v.list))
		for i, e := range v.list {
			cp[i] = e.deepCopy()
		}
		return Value{kind: KindList, list: cp}
	default:
		return Value{kind: KindString, str: v.str}
	}
}

// DeepCopy returns an independent copy of v, owning none of v's storage.
// Every placement of a Value into a statement's argument list or a process
// slot's instance_args goes through DeepCopy, so no two containers ever
// alias the same backing storage.
func (v Value) DeepCopy() Value {
	cp, err := copystructure.Copy(v)
	if err != nil {
		// copystructure only fails on unsupported/unexported reflection
		// paths, none of which apply to a type implementing Copier.
		panic(fmt.Sprintf("value: unexpected copystructure failure: %v", err))
	}
	return cp.(Value)
}

// Free releases any resources held by v. Go's garbage collector reclaims the
// backing storage on its own; Free exists so call sites that mirror an
// "owns until freed" lifecycle (see process.Slot.instanceArgs) have a single
// release point, and so a future non-GC-backed Value has a seam to free
// external resources in.
func (v Value) Free() {}

// Equal reports whether v and other hold the same value, recursively.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	if v.kind == KindString {
		return v.str == other.str
	}
	if len(v.list) != len(other.list) {
		return false
	}
	for i := range v.list {
		if !v.list[i].Equal(other.list[i]) {
			return false
		}
	}
	return true
}

// String renders v for logging/debugging; it is not a serialization format.
func (v Value) String() string {
	if v.kind == KindString {
		return fmt.Sprintf("%q", v.str)
	}
	return fmt.Sprintf("%v", v.list)
}

// Package value implements the "var" module: it holds a single Value taken
// from its first argument (an empty string if it has none), comes up
// instantly, and exports that value under the empty variable name. It gives
// variable-reference resolution something concrete to resolve against in
// tests and example configurations.
package value

import (
	"context"

	"github.com/ncdsv/ncdsv/internal/module"
	coreval "github.com/ncdsv/ncdsv/internal/value"
)

// Name is the module type this package registers under.
const Name = "var"

type instance struct {
	cb  module.Callbacks
	val coreval.Value
}

// Factory constructs a var instance holding params.Args[0], or an empty
// string Value if no argument was given.
func Factory(_ context.Context, params module.InitParams) (module.Instance, error) {
	held := coreval.String("")
	if len(params.Args) > 0 {
		held = params.Args[0].DeepCopy()
	}
	inst := &instance{cb: params.Callbacks, val: held}
	params.Callbacks.OnEvent(module.EventUp)
	return inst, nil
}

func (i *instance) Die() {
	i.cb.OnEvent(module.EventDying)
	i.cb.OnDied(false)
}

// GetVar answers the empty name with the held value; any other name is
// unknown.
func (i *instance) GetVar(name string) (coreval.Value, bool) {
	if name != "" {
		return coreval.Value{}, false
	}
	return i.val.DeepCopy(), true
}

func (i *instance) Free() { i.val.Free() }

// Register adds var to reg under Name.
func Register(reg *module.Registry) {
	reg.Register(Name, Factory)
}

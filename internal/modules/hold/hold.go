// Package hold implements the minimal module: it reports UP the instant it's
// initialized and stays ADULT until asked to die. It exercises the
// capability contract with no side effects at all, standing in for a real
// network module the way a demo module stands in for a real vendor source.
package hold

import (
	"context"

	"github.com/ncdsv/ncdsv/internal/module"
	"github.com/ncdsv/ncdsv/internal/value"
)

// Name is the module type this package registers under.
const Name = "hold"

type instance struct {
	cb module.Callbacks
}

// Factory constructs a hold instance. It ignores its arguments; any are
// accepted.
func Factory(_ context.Context, params module.InitParams) (module.Instance, error) {
	inst := &instance{cb: params.Callbacks}
	params.Callbacks.OnEvent(module.EventUp)
	return inst, nil
}

func (i *instance) Die() {
	i.cb.OnEvent(module.EventDying)
	i.cb.OnDied(false)
}

func (i *instance) GetVar(string) (value.Value, bool) { return value.Value{}, false }

func (i *instance) Free() {}

// Register adds hold to reg under Name.
func Register(reg *module.Registry) {
	reg.Register(Name, Factory)
}

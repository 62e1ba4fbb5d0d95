// Package modules collects the reference module implementations this repo
// ships and registers all of them into a fresh Registry. A real deployment
// would add site-specific modules the same way these are added.
package modules

import (
	"github.com/ncdsv/ncdsv/internal/module"
	"github.com/ncdsv/ncdsv/internal/modules/exec"
	"github.com/ncdsv/ncdsv/internal/modules/hold"
	modvalue "github.com/ncdsv/ncdsv/internal/modules/value"
)

// RegisterAll adds every reference module to reg.
func RegisterAll(reg *module.Registry) {
	hold.Register(reg)
	modvalue.Register(reg)
	exec.Register(reg)
}

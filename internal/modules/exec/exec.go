// Package exec implements the one module in this repo that brings up a real
// resource: it runs its first argument as a subprocess (remaining arguments
// become its argv), reports UP once the process has started, and reports
// DYING/died when the process exits or is killed. Process-group signaling
// follows kornnellio-gosv's Process.Start/Process.Signal: the child is
// placed in its own process group so a shutdown signal reaches any
// grandchildren it spawned too.
package exec

import (
	"context"
	"fmt"
	"os"
	osexec "os/exec"
	"sync"
	"syscall"

	"github.com/ncdsv/ncdsv/internal/module"
	"github.com/ncdsv/ncdsv/internal/value"
)

// Name is the module type this package registers under.
const Name = "exec"

type instance struct {
	cmd *osexec.Cmd
	cb  module.Callbacks

	mu    sync.Mutex
	dying bool
}

// Factory starts params.Args[0] with params.Args[1:] as arguments. UP is
// reported once the process has successfully started; the core never sees
// this module block waiting for the process to exit.
func Factory(_ context.Context, params module.InitParams) (module.Instance, error) {
	if len(params.Args) == 0 {
		return nil, fmt.Errorf("exec: requires at least one argument naming the command")
	}
	name, ok := params.Args[0].AsString()
	if !ok {
		return nil, fmt.Errorf("exec: first argument must be a string")
	}
	args := make([]string, 0, len(params.Args)-1)
	for _, a := range params.Args[1:] {
		s, ok := a.AsString()
		if !ok {
			return nil, fmt.Errorf("exec: arguments must be strings")
		}
		args = append(args, s)
	}

	cmd := osexec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("exec: start %s: %w", name, err)
	}

	inst := &instance{cmd: cmd, cb: params.Callbacks}
	params.Callbacks.OnEvent(module.EventUp)
	go inst.wait()
	return inst, nil
}

// wait blocks until the subprocess exits, then reports DYING and died. A
// non-zero exit not requested via Die counts as an error for retry
// purposes; a kill requested via Die never does.
func (i *instance) wait() {
	err := i.cmd.Wait()

	i.mu.Lock()
	requested := i.dying
	i.mu.Unlock()

	i.cb.OnEvent(module.EventDying)
	i.cb.OnDied(err != nil && !requested)
}

// Die signals the whole process group, mirroring kornnellio-gosv's
// kill(-pgid, sig) so grandchildren exit too.
func (i *instance) Die() {
	i.mu.Lock()
	i.dying = true
	pid := i.cmd.Process.Pid
	i.mu.Unlock()

	_ = syscall.Kill(-pid, syscall.SIGTERM)
}

// GetVar exposes "pid" as a string; everything else is unknown.
func (i *instance) GetVar(name string) (value.Value, bool) {
	if name != "pid" {
		return value.Value{}, false
	}
	return value.String(fmt.Sprintf("%d", i.cmd.Process.Pid)), true
}

func (i *instance) Free() {}

// Register adds exec to reg under Name.
func Register(reg *module.Registry) {
	reg.Register(Name, Factory)
}

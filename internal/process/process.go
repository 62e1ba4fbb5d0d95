// Package process implements the per-process state machine: an ordered
// array of statement slots, the advance/forward pointer cursor pair, and
// the work/fight/advance/wait/retreat control loop that brings a process up
// statement by statement and tears it down tail-first on error or shutdown.
//
// Every method here runs on the reactor's single goroutine. None of it
// takes a lock; correctness instead rests on the reactor serializing every
// call into this package — timer callback, module event, module died
// callback, and the initial construction job all arrive one at a time.
package process

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ncdsv/ncdsv/internal/ast"
	"github.com/ncdsv/ncdsv/internal/module"
	"github.com/ncdsv/ncdsv/internal/reactor"
	"github.com/ncdsv/ncdsv/internal/value"
)

// SlotState is one of the four states a statement slot can be in.
type SlotState int

const (
	// Forgotten: no live instance. The statement is either not yet started
	// or has fully torn down.
	Forgotten SlotState = iota
	// Child: instance created, Init succeeded, no UP event yet.
	Child
	// Adult: instance reported UP; the statement is considered up.
	Adult
	// Dying: Die was requested or the instance reported DYING; exactly one
	// died callback is still owed.
	Dying
)

func (s SlotState) String() string {
	switch s {
	case Forgotten:
		return "forgotten"
	case Child:
		return "child"
	case Adult:
		return "adult"
	case Dying:
		return "dying"
	default:
		return "unknown"
	}
}

// Slot is one statement's live state within a Process.
type Slot struct {
	template Template
	index    int

	state      SlotState
	haveError  bool
	errorUntil time.Time

	instance     module.Instance
	instanceArgs []value.Value
}

// State reports the slot's current state. Exported for tests and for
// diagnostics; the engine itself never needs a getter since it holds the
// Slot directly.
func (s *Slot) State() SlotState { return s.state }

// Name is the exported name this slot's statement carries, or empty.
func (s *Slot) Name() string { return s.template.Name }

// Host is the supervisor-side collaborator a Process needs: whether a
// global shutdown is in progress, and where to report once this process has
// fully torn down.
type Host interface {
	// Terminating reports whether the supervisor has latched its shutdown
	// flag.
	Terminating() bool
	// ProcessDestroyed is called exactly once, when AP=FP=0 under
	// terminating and this Process has freed its last slot.
	ProcessDestroyed(p *Process)
}

// Process owns one statement sequence's slots and the two cursors that
// discipline how far they're allowed to run ahead of each other.
type Process struct {
	name      string
	slots     []*Slot
	ap, fp    int
	waitTimer *reactor.Timer

	reactor    *reactor.Reactor
	host       Host
	retryTime  time.Duration
	log        *slog.Logger
	subprocess module.SubprocessManager

	destroyed bool
}

// New constructs a Process in the FORGOTTEN/AP=0/FP=0 state described for
// every slot. It does not start advancing — call Start for that, which
// defers the first work() to the reactor's run queue so construction never
// reenters the caller synchronously.
func New(name string, templates []Template, r *reactor.Reactor, host Host, retryTime time.Duration, log *slog.Logger, subprocess module.SubprocessManager) *Process {
	slots := make([]*Slot, len(templates))
	for i, t := range templates {
		slots[i] = &Slot{template: t, index: i, state: Forgotten}
	}
	return &Process{
		name:       name,
		slots:      slots,
		reactor:    r,
		host:       host,
		retryTime:  retryTime,
		log:        log.With("process", name),
		subprocess: subprocess,
	}
}

// Name returns the process's name.
func (p *Process) Name() string { return p.name }

// NumStatements returns the number of slots.
func (p *Process) NumStatements() int { return len(p.slots) }

// AP returns the current advance pointer.
func (p *Process) AP() int { return p.ap }

// FP returns the current forward pointer.
func (p *Process) FP() int { return p.fp }

// Slot returns the slot at position i, for tests and diagnostics.
func (p *Process) Slot(i int) *Slot { return p.slots[i] }

// Start schedules the process's first work() cycle.
func (p *Process) Start() {
	p.reactor.Post(p.work)
}

// RequestShutdown schedules a work() cycle; called by the supervisor after
// latching terminating so every process re-evaluates and begins retreat.
func (p *Process) RequestShutdown() {
	p.reactor.Post(p.work)
}

// work is the entry point to every re-evaluation: cancel any pending retry
// timer, then dispatch to fight (normal forward drive) or retreat
// (terminating drive).
func (p *Process) work() {
	if p.waitTimer != nil {
		p.waitTimer.Stop()
		p.waitTimer = nil
	}
	if p.host.Terminating() {
		p.retreat()
	} else {
		p.fight()
	}
}

// fight drives the process forward. If AP has caught up to FP, either the
// tail is CHILD (still waiting for UP, nothing to do) or it's stable and
// advance can start the next statement. Otherwise some statement above AP
// is still alive and must be torn down, tail first, before forward progress
// can resume.
func (p *Process) fight() {
	if p.ap == p.fp {
		if p.ap > 0 && p.slots[p.ap-1].state == Child {
			return
		}
		p.advance()
		return
	}
	tail := p.slots[p.fp-1]
	if tail.state != Dying {
		p.killSlot(tail)
	}
}

// advance starts the statement at position AP. Preconditions (AP == FP and
// the prior slot is ADULT or AP == 0) are guaranteed by fight's caller
// discipline.
func (p *Process) advance() {
	if p.ap == len(p.slots) {
		p.log.Info("victory")
		return
	}
	s := p.slots[p.ap]
	if s.haveError && s.errorUntil.After(time.Now()) {
		p.arm(s)
		return
	}

	args := make([]value.Value, 0, len(s.template.Args))
	for _, arg := range s.template.Args {
		v, err := p.resolveArg(arg)
		if err != nil {
			freeAll(args)
			p.fail(s, err)
			return
		}
		args = append(args, v)
	}

	index := s.index
	instance, err := s.template.Factory(context.Background(), module.InitParams{
		ProcessName:    p.name,
		StatementIndex: index,
		Args:           args,
		Log:            p.log.With("statement", index),
		Subprocess:     p.subprocess,
		Callbacks: module.Callbacks{
			OnEvent: func(ev module.Event) { p.reactor.Post(func() { p.handleEvent(index, ev) }) },
			OnDied:  func(isError bool) { p.reactor.Post(func() { p.handleDied(index, isError) }) },
		},
	})
	if err != nil {
		freeAll(args)
		p.fail(s, &statementError{kind: instanceInitFailure, err: err})
		return
	}

	s.instance = instance
	s.instanceArgs = args
	s.state = Child
	p.log.Info("statement started", "statement", index)
	p.ap++
	p.fp++
}

// resolveArg materializes one argument: a literal is deep-copied, a
// variable reference is resolved by scanning slots AP-1..0 in reverse for
// the nearest one exporting the named module, then calling its instance's
// GetVar.
func (p *Process) resolveArg(arg ast.Arg) (value.Value, error) {
	if arg.Kind == ast.ArgLiteral {
		return value.String(arg.Literal).DeepCopy(), nil
	}
	for j := p.ap - 1; j >= 0; j-- {
		if p.slots[j].template.Name != arg.ModName {
			continue
		}
		v, ok := p.slots[j].instance.GetVar(arg.VarName)
		if !ok {
			return value.Value{}, &statementError{kind: unresolvedVariable, err: fmt.Errorf("%s.%s: GetVar declined", arg.ModName, arg.VarName)}
		}
		return v.DeepCopy(), nil
	}
	return value.Value{}, &statementError{kind: unresolvedName, err: fmt.Errorf("%q: no earlier statement exports this name", arg.ModName)}
}

// arm schedules the retry timer to fire at the slot's error_until deadline;
// firing clears the error and retries advance.
func (p *Process) arm(s *Slot) {
	p.waitTimer = p.reactor.AfterFuncAt(s.errorUntil, func() {
		s.haveError = false
		p.advance()
	})
}

// fail marks a slot as errored and arms the retry timer.
func (p *Process) fail(s *Slot, err error) {
	p.log.Error("statement failed", "statement", s.index, "error", err)
	s.haveError = true
	s.errorUntil = time.Now().Add(p.retryTime)
	p.arm(s)
}

// killSlot requests termination of a live slot's instance.
func (p *Process) killSlot(s *Slot) {
	s.state = Dying
	p.log.Info("statement dying", "statement", s.index)
	s.instance.Die()
}

// retreat drives the process backward under a latched shutdown. Once FP
// reaches zero the process has nothing left alive and destroys itself.
func (p *Process) retreat() {
	if p.fp == 0 {
		p.destroy()
		return
	}
	tail := p.slots[p.fp-1]
	if tail.state != Dying {
		p.killSlot(tail)
	}
	if p.ap > p.fp-1 {
		p.ap = p.fp - 1
	}
}

// destroy tears down the (by now fully empty) process and reports to the
// host. Idempotent, since both retreat and a died callback racing the last
// teardown step could each try to trigger it.
func (p *Process) destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	if p.waitTimer != nil {
		p.waitTimer.Stop()
		p.waitTimer = nil
	}
	p.host.ProcessDestroyed(p)
}

// handleEvent applies one UP/DOWN/DYING event from the slot at index i,
// then re-evaluates with work.
func (p *Process) handleEvent(i int, ev module.Event) {
	s := p.slots[i]
	switch ev {
	case module.EventUp:
		s.state = Adult
		p.log.Info("statement up", "statement", i)
	case module.EventDown:
		s.state = Child
		p.log.Info("statement down", "statement", i)
		if p.ap > i+1 {
			p.ap = i + 1
		}
	case module.EventDying:
		s.state = Dying
		p.log.Info("statement dying", "statement", i)
		if p.ap > i {
			p.ap = i
		}
	}
	p.work()
}

// handleDied applies the terminal died callback from the slot at index i:
// frees the instance, clamps AP, recomputes FP, and re-evaluates with work.
func (p *Process) handleDied(i int, isError bool) {
	s := p.slots[i]

	s.instance.Free()
	freeAll(s.instanceArgs)
	s.instance = nil
	s.instanceArgs = nil
	s.state = Forgotten

	if isError {
		s.haveError = true
		s.errorUntil = time.Now().Add(p.retryTime)
		p.log.Error("statement died", "statement", i, "error", "instance reported failure")
	} else {
		s.haveError = false
		p.log.Info("statement died", "statement", i)
	}

	if p.ap > i {
		p.ap = i
	}
	for p.fp > 0 && p.slots[p.fp-1].state == Forgotten {
		p.fp--
	}

	p.work()
}

func freeAll(vs []value.Value) {
	for _, v := range vs {
		v.Free()
	}
}

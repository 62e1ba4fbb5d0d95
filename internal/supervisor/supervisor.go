// Package supervisor owns the process-wide state a single running instance
// needs: the collection of supervised processes, the latched shutdown flag,
// and the reactor every process schedules its work through. It is the
// entry point signal handling and the global teardown sequence hang off of.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ncdsv/ncdsv/internal/ast"
	"github.com/ncdsv/ncdsv/internal/module"
	"github.com/ncdsv/ncdsv/internal/process"
	"github.com/ncdsv/ncdsv/internal/reactor"
)

// Supervisor aggregates every running Process and coordinates shutdown.
// It holds no mutex: LoadConfig is called once before the reactor loop
// starts (see cmd/ncdsv), and Shutdown and the process.Host callbacks are
// all dispatched through the reactor, so unlike a multi-goroutine-per-unit
// supervisor this one serializes on the reactor's goroutine instead.
type Supervisor struct {
	reactor     *reactor.Reactor
	registry    *module.Registry
	log         *slog.Logger
	processes   map[string]*process.Process
	terminating bool
}

// New creates an empty Supervisor bound to r and registry.
func New(r *reactor.Reactor, registry *module.Registry, log *slog.Logger) *Supervisor {
	return &Supervisor{
		reactor:   r,
		registry:  registry,
		log:       log,
		processes: make(map[string]*process.Process),
	}
}

// Terminating reports whether shutdown has been requested. Implements
// process.Host.
func (s *Supervisor) Terminating() bool { return s.terminating }

// ProcessDestroyed removes p from the collection and, if this was the last
// process under a latched shutdown, asks the reactor to quit. Implements
// process.Host.
func (s *Supervisor) ProcessDestroyed(p *process.Process) {
	delete(s.processes, p.Name())
	s.log.Info("process destroyed", "process", p.Name())
	if s.terminating && len(s.processes) == 0 {
		s.reactor.Quit()
	}
}

// LoadConfig resolves every interface's statements against the module
// registry and, only if every interface resolves cleanly, creates and
// starts one Process per interface. A resolution failure anywhere is
// reported without creating any process — partial startup never happens.
func (s *Supervisor) LoadConfig(cfg ast.Config, retryTime time.Duration, subprocess module.SubprocessManager) error {
	type pending struct {
		name      string
		templates []process.Template
	}

	built := make([]pending, 0, len(cfg.Interfaces))
	for _, iface := range cfg.Interfaces {
		templates, err := process.BuildTemplates(s.registry, iface.Statements)
		if err != nil {
			return fmt.Errorf("interface %q: %w", iface.Name, err)
		}
		built = append(built, pending{name: iface.Name, templates: templates})
	}

	for _, b := range built {
		s.addProcess(b.name, b.templates, retryTime, subprocess)
	}
	return nil
}

// addProcess constructs, registers, and starts one Process.
func (s *Supervisor) addProcess(name string, templates []process.Template, retryTime time.Duration, subprocess module.SubprocessManager) *process.Process {
	p := process.New(name, templates, s.reactor, s, retryTime, s.log, subprocess)
	s.processes[name] = p
	p.Start()
	return p
}

// Shutdown latches terminating and asks every process to re-evaluate, which
// drives each into retreat on its next work() cycle. Idempotent: a second
// call is a no-op, matching the "subsequent signals are ignored" contract.
func (s *Supervisor) Shutdown() {
	if s.terminating {
		return
	}
	s.terminating = true
	s.log.Info("shutdown requested", "processes", len(s.processes))
	if len(s.processes) == 0 {
		s.reactor.Quit()
		return
	}
	for _, p := range s.processes {
		p.RequestShutdown()
	}
}

// ListenForShutdown arms sig as the termination signal set; delivery calls
// Shutdown on the reactor goroutine. Returns a subscription the caller may
// cancel, though a running supervisor normally holds it for its lifetime.
func (s *Supervisor) ListenForShutdown(sig ...os.Signal) *reactor.SignalSubscription {
	return s.reactor.NotifySignal(func(received os.Signal) {
		s.log.Info("signal received", "signal", received.String())
		s.Shutdown()
	}, sig...)
}

// Run blocks until every process has been destroyed following a shutdown,
// or until ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) {
	s.reactor.Run(ctx)
}

// ProcessCount returns the number of processes still tracked, for tests and
// diagnostics.
func (s *Supervisor) ProcessCount() int { return len(s.processes) }

// Package main implements the ncdsv supervisor binary: it loads a process
// configuration and optional settings file, registers the reference module
// set, and runs interfaces to completion or until a shutdown signal arrives.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"syscall"

	"github.com/ncdsv/ncdsv/internal/ast"
	"github.com/ncdsv/ncdsv/internal/logging"
	"github.com/ncdsv/ncdsv/internal/module"
	"github.com/ncdsv/ncdsv/internal/modules"
	"github.com/ncdsv/ncdsv/internal/reactor"
	"github.com/ncdsv/ncdsv/internal/settings"
	"github.com/ncdsv/ncdsv/internal/supervisor"
)

// version can be overridden at build time with -ldflags.
var version = "0.1.0"

// channelLevels collects repeated --channel-loglevel NAME=LEVEL flags.
type channelLevels map[string]logging.Level

func (c channelLevels) String() string {
	return fmt.Sprintf("%v", map[string]logging.Level(c))
}

func (c channelLevels) Set(s string) error {
	name, levelStr, ok := splitOnce(s, '=')
	if !ok {
		return fmt.Errorf("--channel-loglevel wants NAME=LEVEL, got %q", s)
	}
	level, err := logging.ParseLevel(levelStr)
	if err != nil {
		return err
	}
	c[name] = level
	return nil
}

func splitOnce(s string, sep byte) (string, string, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

func main() {
	os.Exit(run())
}

// run implements the CLI surface; its return value is the process exit
// code. Exit 0 only follows --help/--version; every other path, including
// normal termination, exits 1.
func run() int {
	var (
		flagHelp           = flag.Bool("help", false, "print usage and exit")
		flagVersion        = flag.Bool("version", false, "print version and exit")
		flagLogger         = flag.String("logger", "stdout", "log sink: stdout or syslog")
		flagSyslogFacility = flag.String("syslog-facility", "daemon", "syslog facility (when --logger syslog)")
		flagSyslogIdent    = flag.String("syslog-ident", "ncdsv", "syslog identifier (when --logger syslog)")
		flagLogLevel       = flag.String("loglevel", "", "default log level: 0-5 or none|error|warning|notice|info|debug")
		flagConfigFile     = flag.String("config-file", "", "path to the process configuration AST (required)")
		flagSettingsFile   = flag.String("settings-file", "", "path to the supervisor settings file (default: ./ncdsv.yaml or /etc/ncdsv/ncdsv.yaml)")
		flagRetryTime      = flag.Duration("retry-time", 0, "override the statement retry backoff duration")
	)
	chLevels := make(channelLevels)
	flag.Var(chLevels, "channel-loglevel", "NAME=LEVEL, repeatable")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: ncdsv --config-file <path> [flags]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *flagHelp {
		flag.Usage()
		return 0
	}
	if *flagVersion {
		fmt.Fprintf(os.Stderr, "ncdsv %s (%s %s)\n", version, runtime.GOOS, runtime.GOARCH)
		return 0
	}

	if *flagConfigFile == "" {
		fmt.Fprintln(os.Stderr, "ncdsv: --config-file is required")
		return 1
	}

	settingsPath := *flagSettingsFile
	if settingsPath == "" {
		settingsPath = settings.DefaultPath()
	}
	sett, err := settings.Load(settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ncdsv: %v\n", err)
		return 1
	}

	defaultLevel, err := resolveDefaultLevel(*flagLogLevel, sett)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ncdsv: %v\n", err)
		return 1
	}
	channelOverrides := resolveChannelLevels(chLevels, sett)

	base, err := logging.NewBaseHandler(*flagLogger, *flagSyslogFacility, *flagSyslogIdent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ncdsv: %v\n", err)
		return 1
	}
	logReg := logging.NewRegistry(base, defaultLevel, channelOverrides)
	log := logReg.Logger("supervisor")

	cfg, err := ast.Load(*flagConfigFile)
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		return 1
	}

	retryTime := sett.RetryTime
	if *flagRetryTime > 0 {
		retryTime = *flagRetryTime
	}

	registry := module.NewRegistry()
	modules.RegisterAll(registry)
	ctx := context.Background()
	if err := registry.RunGlobalInit(ctx); err != nil {
		log.Error("module global init failed", "error", err)
		return 1
	}

	r := reactor.New()
	sup := supervisor.New(r, registry, logReg.Logger("process"))

	if settingsPath != "" {
		watcher, err := settings.Watch(settingsPath, func(newSettings settings.Settings) {
			level, err := resolveDefaultLevel(*flagLogLevel, newSettings)
			if err != nil {
				log.Error("settings reload: bad log level, keeping previous", "error", err)
				return
			}
			channels := resolveChannelLevels(chLevels, newSettings)
			r.Post(func() {
				logReg.SetDefaultLevel(level)
				for name, lvl := range channels {
					logReg.SetChannelLevel(name, lvl)
				}
				log.Info("settings reloaded", "retry_time", newSettings.RetryTime, "log_level", level)
			})
		})
		if err != nil {
			log.Error("failed to watch settings file", "error", err)
		} else {
			defer watcher.Close()
		}
	}

	sub := sup.ListenForShutdown(syscall.SIGTERM, syscall.SIGINT)
	defer sub.Cancel()

	if err := sup.LoadConfig(cfg, retryTime, nil); err != nil {
		log.Error("failed to start configuration", "error", err)
		return 1
	}

	sup.Run(ctx)
	return 1
}

// resolveDefaultLevel applies the --loglevel flag over the settings file's
// logging.level, falling back to the package default when neither is set.
func resolveDefaultLevel(flagValue string, sett settings.Settings) (logging.Level, error) {
	if flagValue != "" {
		return logging.ParseLevel(flagValue)
	}
	return logging.ParseLevel(sett.Logging.Level)
}

// resolveChannelLevels merges the settings file's per-channel overrides
// with --channel-loglevel flags, which take precedence.
func resolveChannelLevels(flagValues channelLevels, sett settings.Settings) map[string]logging.Level {
	merged := make(map[string]logging.Level, len(sett.Logging.Channels)+len(flagValues))
	for name, levelStr := range sett.Logging.Channels {
		if level, err := logging.ParseLevel(levelStr); err == nil {
			merged[name] = level
		}
	}
	for name, level := range flagValues {
		merged[name] = level
	}
	return merged
}

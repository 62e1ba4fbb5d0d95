package logging

import (
	"fmt"
	"io"
	"log/slog"
	"log/syslog"
	"os"
)

// NewBaseHandler builds the slog.Handler a Registry wraps per channel, per
// the --logger/--syslog-facility/--syslog-ident flags. sink is "stdout" or
// "syslog"; facility and ident are only consulted for "syslog".
func NewBaseHandler(sink, facility, ident string) (slog.Handler, error) {
	switch sink {
	case "", "stdout":
		return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}), nil
	case "syslog":
		return newSyslogHandler(facility, ident)
	default:
		return nil, fmt.Errorf("logging: unknown logger sink %q", sink)
	}
}

// newSyslogHandler opens a syslog writer and wraps it in a text handler, the
// simplest way to get structured key=value records into syslog without a
// bespoke Handler implementation.
func newSyslogHandler(facility, ident string) (slog.Handler, error) {
	prio, err := parseSyslogFacility(facility)
	if err != nil {
		return nil, err
	}
	w, err := syslog.New(prio|syslog.LOG_INFO, ident)
	if err != nil {
		return nil, fmt.Errorf("logging: open syslog: %w", err)
	}
	return slog.NewTextHandler(syslogWriter{w}, &slog.HandlerOptions{Level: slog.LevelDebug}), nil
}

func parseSyslogFacility(facility string) (syslog.Priority, error) {
	switch facility {
	case "", "daemon":
		return syslog.LOG_DAEMON, nil
	case "user":
		return syslog.LOG_USER, nil
	case "local0":
		return syslog.LOG_LOCAL0, nil
	case "local1":
		return syslog.LOG_LOCAL1, nil
	case "local2":
		return syslog.LOG_LOCAL2, nil
	case "local3":
		return syslog.LOG_LOCAL3, nil
	case "local4":
		return syslog.LOG_LOCAL4, nil
	case "local5":
		return syslog.LOG_LOCAL5, nil
	case "local6":
		return syslog.LOG_LOCAL6, nil
	case "local7":
		return syslog.LOG_LOCAL7, nil
	default:
		return 0, fmt.Errorf("logging: unknown syslog facility %q", facility)
	}
}

// syslogWriter adapts *syslog.Writer to io.Writer for slog.NewTextHandler.
type syslogWriter struct {
	w *syslog.Writer
}

func (s syslogWriter) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

var _ io.Writer = syslogWriter{}

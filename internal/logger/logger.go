// Package logger provides the process-wide logger for the veritas CLI.
// Debug, Info and Section output is gated by --verbose and traces the
// evaluation pipeline. Warn and Error are always written: they carry the
// absorbed failures (verifier fallbacks, best-effort persistence) that must
// stay observable even when the pipeline keeps going.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for all logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "[DEBUG] "+format+"\n", args...)
	}
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "[INFO] "+format+"\n", args...)
	}
}

// Warn prints a warning with optional key/value fields.
//
//	logger.Warn("report not persisted", "report", id, "err", err)
//
// renders as
//
//	[WARN] report not persisted report=1f2e... err=disk full
func Warn(msg string, kv ...any) {
	write("WARN", msg, kv)
}

// Error prints an error with optional key/value fields.
func Error(msg string, kv ...any) {
	write("ERROR", msg, kv)
}

func write(level, msg string, kv []any) {
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(output, "[%s] %s%s\n", level, msg, formatFields(kv))
}

// formatFields renders alternating key/value pairs. A trailing key without a
// value is rendered with the value "<missing>".
func formatFields(kv []any) string {
	if len(kv) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(kv); i += 2 {
		b.WriteByte(' ')
		fmt.Fprint(&b, kv[i])
		b.WriteByte('=')
		if i+1 >= len(kv) {
			b.WriteString("<missing>")
			continue
		}
		val := fmt.Sprint(kv[i+1])
		if strings.ContainsAny(val, " \t\n") {
			val = fmt.Sprintf("%q", val)
		}
		b.WriteString(val)
	}
	return b.String()
}

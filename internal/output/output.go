// Package output handles CLI output formatting including verbose mode,
// warnings and the line progress indicator.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// DefaultProgressLabel is shown before the line counter.
const DefaultProgressLabel = "Processing line"

// Config holds output configuration.
type Config struct {
	Verbose   bool      // Enable verbose output
	Writer    io.Writer // Output destination (default: os.Stdout)
	ErrWriter io.Writer // Error output destination (default: os.Stderr)
	IsTTY     bool      // Whether output is a terminal
}

// Output handles formatted output with verbose and progress support.
// It is safe for concurrent use; watch mode reports from timer goroutines.
type Output struct {
	config         Config
	mu             sync.Mutex
	progressActive bool
	progressLabel  string
	progressWidth  int
}

// New creates a new Output instance with the given configuration.
func New(config Config) *Output {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}
	if config.ErrWriter == nil {
		config.ErrWriter = os.Stderr
	}
	return &Output{
		config: config,
	}
}

// DefaultConfig returns a Config with sensible defaults and TTY detection.
func DefaultConfig() Config {
	return Config{
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		IsTTY:     IsTerminal(os.Stdout),
	}
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Discard returns an Output that writes nothing.
func Discard() *Output {
	return New(Config{Writer: io.Discard, ErrWriter: io.Discard})
}

// Verbose prints a message only when verbose mode is enabled.
func (o *Output) Verbose(format string, args ...interface{}) {
	if !o.config.Verbose {
		return
	}
	o.println(o.config.Writer, "", format, args...)
}

// Info prints an informational message (always shown).
func (o *Output) Info(format string, args ...interface{}) {
	o.println(o.config.Writer, "", format, args...)
}

// Warn prints a "Warning:" prefixed message to stderr.
func (o *Output) Warn(format string, args ...interface{}) {
	o.println(o.config.ErrWriter, "Warning: ", format, args...)
}

// Error prints an error message to stderr.
func (o *Output) Error(format string, args ...interface{}) {
	o.println(o.config.ErrWriter, "", format, args...)
}

func (o *Output) println(w io.Writer, prefix, format string, args ...interface{}) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.clearProgressLineLocked()
	msg := prefix + fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(w, msg)
}

// clearProgressLineLocked blanks the progress line so a message can be
// printed in its place. The next UpdateProgress redraws it.
func (o *Output) clearProgressLineLocked() {
	if o.progressActive && o.config.IsTTY && o.progressWidth > 0 {
		fmt.Fprint(o.config.Writer, "\r"+strings.Repeat(" ", o.progressWidth)+"\r")
		o.progressWidth = 0
	}
}

// progressEnabled reports whether progress is drawn at all. It is suppressed
// when output is not a terminal or when verbose mode is enabled.
func (o *Output) progressEnabled() bool {
	return o.config.IsTTY && !o.config.Verbose
}

// StartProgress begins a progress session. An empty label selects
// DefaultProgressLabel.
func (o *Output) StartProgress(label string) {
	if !o.progressEnabled() {
		return
	}
	if label == "" {
		label = DefaultProgressLabel
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progressActive = true
	o.progressLabel = label
	o.progressWidth = 0
}

// UpdateProgress redraws the indicator in place as "<label> N...".
func (o *Output) UpdateProgress(current int) {
	if !o.progressEnabled() {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.progressActive {
		return
	}
	msg := fmt.Sprintf("%s %d...", o.progressLabel, current)
	fmt.Fprint(o.config.Writer, "\r"+msg)
	o.progressWidth = len(msg)
}

// EndProgress clears the progress indicator.
func (o *Output) EndProgress() {
	if !o.progressEnabled() {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.progressActive {
		return
	}
	o.clearProgressLineLocked()
	o.progressActive = false
}

// IsVerbose returns whether verbose mode is enabled.
func (o *Output) IsVerbose() bool {
	return o.config.Verbose
}

// IsTTY returns whether the output is a terminal.
func (o *Output) IsTTY() bool {
	return o.config.IsTTY
}

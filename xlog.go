// Package xlog is a per-module logging core. Lines are composed into a fixed
// capacity buffer (color, timestamp with milliseconds, module name,
// function/line, severity tag, payload, color reset, line feed) and handed
// synchronously to a sink, a stream, a file descriptor or a caller buffer.
//
// Every module of a process has its own minimal level, changeable at run time
// and loaded from a JSON file on Init:
//
//	{"CORE": "debug", "NET": "warn"}
//
// Preferred usage example:
//
//	var modules = xlog.MustModuleTable("CORE", "NET")
//
//	func main() {
//	    logger := xlog.New(xlog.WithModules(modules))
//	    logger.Init(coreID, "", 0)
//	    defer logger.Shutdown()
//	    core := logger.NewClient(coreID)
//	    core.Warnf("disk at %d%%", 91)
//	}
package xlog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"
)

// Option configures a Logger in New.
type Option func(*Logger)

// WithOutput sets the default output used by Printf and SafeLogger.Print
// (os.Stdout if not set or nil).
func WithOutput(w io.Writer) Option {
	return func(l *Logger) {
		if w != nil {
			l.stdout = w
		}
	}
}

// WithFallback sets the writer that receives reports about failing sinks and
// outputs. io.Discard is used instead of nil.
func WithFallback(w io.Writer) Option {
	return func(l *Logger) {
		l.SetFallback(w)
	}
}

// WithModules sets the module table. The level table is sized after it.
func WithModules(t *ModuleTable) Option {
	return func(l *Logger) {
		if t != nil {
			l.modules = t
		}
	}
}

// WithConfigSource sets where Init loads module levels from. nil disables
// level config loading. The default is a FileConfigSource with default dirs.
func WithConfigSource(src ConfigSource) Option {
	return func(l *Logger) {
		l.source = src
	}
}

// WithClock replaces time.Now for the date/time field.
func WithClock(clock func() time.Time) Option {
	return func(l *Logger) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// WithValidatedLevelCheck makes the enablement check reject out of range
// levels. Without it the check is the fast one: such levels are always
// enabled.
func WithValidatedLevelCheck() Option {
	return func(l *Logger) {
		l.validated = true
	}
}

// WithMetrics attaches prometheus counters, see NewMetrics.
func WithMetrics(m *Metrics) Option {
	return func(l *Logger) {
		l.metrics = m
	}
}

// WithBufferSize sets the capacity of the composition buffer. Longer lines are
// truncated. Non-positive values keep DEFAULT_STACK_BUF_SIZE.
func WithBufferSize(size int) Option {
	return func(l *Logger) {
		if size > 0 {
			l.bufsize = size
		}
	}
}

// New creates a logger in uninitialized state. All modules start at
// DEFAULT_LOG_LEVEL and lines can be logged right away; Init loads the level
// config and attaches sinks or the file backend.
func New(opts ...Option) *Logger {
	l := &Logger{
		modules: MustModuleTable(),
		stdout:  os.Stdout,
		fallbck: os.Stderr,
		source:  &FileConfigSource{},
		clock:   time.Now,
		bufsize: DEFAULT_STACK_BUF_SIZE,
		state:   _STATE_UNINITIALIZED,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.levels = newLevelTable(l.modules.Len())
	l.output.Store(&outputRef{l.stdout})
	l.sinks.Store(&sinkPair{})
	l.buffers.New = func() any {
		b := make([]byte, l.bufsize)
		return &b
	}
	return l
}

// Init moves the logger to initialized state: sets every module to
// DEFAULT_LOG_LEVEL and applies the level config found for module id. With a
// non-empty filename the default output is redirected to a size limited file
// (maxSize bytes, 0 for the backend default). A second Init fails with
// ErrAlreadyInitialized and changes nothing.
func (l *Logger) Init(id ModuleID, filename string, maxSize uint32) error {
	return l.initInt(id, filename, maxSize, nil, nil)
}

// InitWithSink is Init with user sinks: print receives lines of formatted
// calls, safe receives lines of SafeLogger calls. Either may be nil, then the
// destination stream is written directly.
func (l *Logger) InitWithSink(id ModuleID, print, safe Sink) error {
	return l.initInt(id, "", 0, print, safe)
}

func (l *Logger) initInt(id ModuleID, filename string, maxSize uint32, print, safe Sink) error {
	l.sync.statMtx.Lock()
	defer l.sync.statMtx.Unlock()
	if l.state == _STATE_INITIALIZED {
		l.diagf(LVL_WARN, "Already initialized")
		return ErrAlreadyInitialized
	}
	l.diagf(LVL_INFO, "Initializing...")

	if filename != "" {
		backend, err := openFileBackend(filename, maxSize)
		if err != nil {
			l.diagf(LVL_WARN, "file backend init error <%v>", err)
			return fmt.Errorf("file backend: %w", err)
		}
		l.backend = backend
		l.output.Store(&outputRef{backend})
	}
	l.sinks.Store(&sinkPair{print: print, safe: safe})
	l.state = normState(_STATE_INITIALIZED)

	// First, initialize to INFO level
	l.levels.setAll(DEFAULT_LOG_LEVEL)
	l.applyConfig(id)
	return nil
}

// applyConfig loads module levels for id and writes every resolvable entry
// to the level table. Problems are logged and never fatal.
func (l *Logger) applyConfig(id ModuleID) {
	if l.source == nil {
		return
	}
	name, ok := l.modules.Name(id)
	if !ok {
		l.diagf(LVL_WARN, "invalid module id <%d>", id)
	}
	cfg, err := l.source.Load(name)
	if err != nil {
		if errors.Is(err, ErrNoConfig) {
			l.diagf(LVL_WARN, "Configuration error. Configuration file(s) missing, using defaults")
		} else {
			l.diagf(LVL_ERROR, "unable to load config file <%v>", err)
		}
		return
	}
	if cfg.Source != "" {
		l.diagf(LVL_INFO, "Read configuration from <%s>", cfg.Source)
	}
	for _, s := range cfg.Settings {
		if s.Raw {
			l.diagf(LVL_WARN, "module <%s> value is not a string", s.Module)
			continue
		}
		mid, ok := l.modules.ID(s.Module)
		if !ok {
			l.diagf(LVL_WARN, "module <%s> not found", s.Module)
			continue
		}
		level := ParseLevel(s.Level)
		if level >= LVL_INVALID {
			l.diagf(LVL_WARN, "module <%s> level <%s> is invalid", s.Module, s.Level)
			continue
		}
		l.levels.set(mid, level)
		l.diagf(LVL_INFO, "module <%s> level <%s>", s.Module, s.Level)
	}
}

// Shutdown closes the file backend if one is attached, drops the sinks and
// returns the logger to uninitialized state so it can be initialized again.
// Lines racing with Shutdown go to stdout, or fail with ErrFileClosed and
// are reported to the fallback writer.
// Module levels are kept.
func (l *Logger) Shutdown() error {
	l.sync.statMtx.Lock()
	defer l.sync.statMtx.Unlock()
	var err error
	if l.backend != nil {
		l.output.Store(&outputRef{l.stdout})
		err = l.backend.Close()
		l.backend = nil
	}
	l.sinks.Store(&sinkPair{})
	l.state = _STATE_UNINITIALIZED
	return err
}

// True if Init succeeded and Shutdown was not called since.
func (l *Logger) IsInitialized() bool {
	l.sync.statMtx.Lock()
	defer l.sync.statMtx.Unlock()
	return l.state == _STATE_INITIALIZED
}

// Modules returns the module table the logger was created with.
func (l *Logger) Modules() *ModuleTable {
	return l.modules
}

// Sets the fallback output used to report sink and output failures,
// io.Discard is used instead of nil to silently drop fallback messages.
func (l *Logger) SetFallback(f io.Writer) *Logger {
	l.sync.fbckMtx.Lock()
	defer l.sync.fbckMtx.Unlock()
	if f != nil {
		l.fallbck = f
	} else {
		l.fallbck = io.Discard
	}
	return l
}

// Flush syncs the default output if it supports it (files do).
func (l *Logger) Flush() error {
	if s, ok := l.defaultOutput().(interface{ Sync() error }); ok {
		return s.Sync()
	}
	return nil
}

func (l *Logger) defaultOutput() io.Writer {
	return l.output.Load().w
}

/////////////////////////////////////////////////////////////////////////////////////////

var defaultArgs = Args{
	Options:  OPT_DEFAULT,
	Color:    COLOR_NONE,
	Function: FUNCTION_NONE,
	Line:     LINE_NONE,
	Level:    LVL_INFO,
	ID:       MODULE_XLOG,
}

// Args of the logger's own diagnostics, one per level.
var diagArgs = func() (res [_LVL_MAX_for_checks_only]Args) {
	for level := range res {
		res[level] = Args{
			Options:  OPT_DEFAULT,
			Color:    LevelColors[level],
			Function: FUNCTION_NONE,
			Line:     LINE_NONE,
			Level:    Level(level),
			ID:       MODULE_XLOG,
		}
	}
	return
}()

// diagf logs a diagnostic of the logger itself on module XLOG, tagged with the
// calling function name.
func (l *Logger) diagf(level Level, format string, a ...any) {
	level = normLevel(level)
	if level < l.levels.get(MODULE_XLOG) {
		return
	}
	args := diagArgs[level]
	args.Function = callerName(1)
	l.emitf(&args, l.defaultOutput(), format, a)
}

// safeDiag is diagf for the signal-safe path: constant message, no caller lookup.
func (l *Logger) safeDiag(level Level, msg string) {
	level = normLevel(level)
	if level < l.levels.get(MODULE_XLOG) {
		return
	}
	l.safeWrite(&diagArgs[level], l.defaultOutput(), msg)
}

// callerName returns the short name ("(*Type).Method" or "function") of the
// function skip frames above the caller.
func callerName(skip int) string {
	var pcs [1]uintptr
	if runtime.Callers(skip+2, pcs[:]) == 0 {
		return FUNCTION_NONE
	}
	frame, _ := runtime.CallersFrames(pcs[:]).Next()
	return shortFuncName(frame.Function)
}

// shortFuncName strips the package path from a runtime function name,
// "github.com/a/b.(*T).M" becomes "(*T).M".
func shortFuncName(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

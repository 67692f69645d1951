package xlog

import (
	"runtime"
)

/*
clients.go

A ModuleClient is a thin per-module handle. It caches one Args record per
level (default options and per-level colors) so a log call costs a level
check and the composition, nothing else. Calls below the module level return
0 and nil without touching the arguments.

With WithCaller the function name and line of the call site are added to
every line; this costs a runtime.Caller lookup per enabled line.
*/

type ModuleClient struct {
	logger   *Logger
	id       ModuleID
	args     [_LVL_MAX_for_checks_only]Args
	caller   bool
	curLevel Level // level used by Write
}

// NewClient returns a client logging on behalf of module id. An invalid id
// is not an error here; every call through the client reports it.
func (l *Logger) NewClient(id ModuleID) *ModuleClient {
	mc := &ModuleClient{logger: l, id: id, curLevel: LVL_INFO}
	for level := range mc.args {
		mc.args[level] = Args{
			Options:  OPT_DEFAULT,
			Color:    LevelColors[level],
			Function: FUNCTION_NONE,
			Line:     LINE_NONE,
			Level:    Level(level),
			ID:       id,
		}
	}
	return mc
}

// WithCaller returns a copy of the client that adds the calling function
// name and line to every formatted line.
func (mc *ModuleClient) WithCaller() *ModuleClient {
	c := *mc
	c.caller = true
	return &c
}

// ID returns the module of the client.
func (mc *ModuleClient) ID() ModuleID {
	return mc.id
}

// Args returns the cached record used for a level. The record can be passed
// to the Logger dispatch functions directly. Levels outside the table give
// the LVL_INVALID record.
func (mc *ModuleClient) Args(level Level) *Args {
	return &mc.args[norm_byte(level, _LVL_MAX_for_checks_only, LVL_INVALID)]
}

// Enabled reports whether a line of the given level would be written.
func (mc *ModuleClient) Enabled(level Level) bool {
	return mc.logger.isEnabled(mc.id, level)
}

// Debugf writes a green DEBUG line to the default output.
func (mc *ModuleClient) Debugf(format string, a ...any) (int, error) {
	return mc.logf(LVL_DEBUG, format, a)
}

// Infof writes an INFO line to the default output.
func (mc *ModuleClient) Infof(format string, a ...any) (int, error) {
	return mc.logf(LVL_INFO, format, a)
}

// Warnf writes a yellow WARN line to the default output.
func (mc *ModuleClient) Warnf(format string, a ...any) (int, error) {
	return mc.logf(LVL_WARN, format, a)
}

// Errorf writes a red ERROR line to the default output.
func (mc *ModuleClient) Errorf(format string, a ...any) (int, error) {
	return mc.logf(LVL_ERROR, format, a)
}

// Fatalf writes a red FATAL line to the default output and flushes it. It
// does not exit.
func (mc *ModuleClient) Fatalf(format string, a ...any) (int, error) {
	n, err := mc.logf(LVL_FATAL, format, a)
	mc.logger.Flush()
	return n, err
}

// Logf writes a line with explicit options and color, e.g. a line without
// line feed to be continued by the next call:
//
//	mc.Logf(LVL_INFO, OPT_DEFAULT&^OPT_LF, COLOR_NONE, "progress:")
func (mc *ModuleClient) Logf(level Level, opts Options, color string, format string, a ...any) (int, error) {
	return mc.logOpts(level, opts, color, format, a)
}

// Printf writes a continuation text: no line feed, no color, no level tag
// and never filtered (LVL_INVALID is above every module level with the fast
// level check).
func (mc *ModuleClient) Printf(format string, a ...any) (int, error) {
	return mc.logOpts(LVL_INVALID, OPT_DEFAULT&^OPT_LF, COLOR_NONE, format, a)
}

func (mc *ModuleClient) logOpts(level Level, opts Options, color string, format string, a []any) (int, error) {
	if !mc.logger.isEnabled(mc.id, level) {
		mc.logger.metrics.filtered()
		return 0, nil
	}
	args := *mc.Args(level)
	args.Level = level
	args.Options = opts
	args.Color = color
	mc.fillCaller(&args)
	return mc.logger.emitf(&args, mc.logger.defaultOutput(), format, a)
}

func (mc *ModuleClient) logf(level Level, format string, a []any) (int, error) {
	args := mc.Args(level)
	if !mc.logger.isEnabled(mc.id, level) {
		mc.logger.metrics.filtered()
		return 0, nil
	}
	if mc.caller {
		withCaller := *args
		mc.fillCaller(&withCaller)
		args = &withCaller
	}
	return mc.logger.emitf(args, mc.logger.defaultOutput(), format, a)
}

// fillCaller sets function and line of the exported method's caller.
func (mc *ModuleClient) fillCaller(args *Args) {
	if !mc.caller {
		return
	}
	// runtime.Callers, fillCaller, logf or logOpts, exported method, caller
	var pcs [1]uintptr
	if runtime.Callers(4, pcs[:]) == 0 {
		return
	}
	frame, _ := runtime.CallersFrames(pcs[:]).Next()
	args.Function = shortFuncName(frame.Function)
	args.Line = frame.Line
}

/////////////////////////////////////////////////////////////////////////////////////////
// Raw string variants going through the SafeLogger path.

func (mc *ModuleClient) SafeDebug(msg string) (int, error) {
	return mc.logger.Safe().Print(mc.Args(LVL_DEBUG), msg)
}

func (mc *ModuleClient) SafeInfo(msg string) (int, error) {
	return mc.logger.Safe().Print(mc.Args(LVL_INFO), msg)
}

func (mc *ModuleClient) SafeWarn(msg string) (int, error) {
	return mc.logger.Safe().Print(mc.Args(LVL_WARN), msg)
}

func (mc *ModuleClient) SafeError(msg string) (int, error) {
	return mc.logger.Safe().Print(mc.Args(LVL_ERROR), msg)
}

func (mc *ModuleClient) SafeFatal(msg string) (int, error) {
	return mc.logger.Safe().Print(mc.Args(LVL_FATAL), msg)
}

package xlog

/*
Defines the core data types used by the logger:
  - basetype and a small set of typed aliases for clarity
  - Args: the per-call record describing which fields a line carries
  - Sink: the user output callback
  - levelTable: per-module minimal levels
  - Logger: the context object owning the level table, sinks and outputs
*/

import (
	"io"
	"sync"
	"sync/atomic"
	"time"
)

type basetype byte // basetype is the underlying byte-sized representation used for enums

type Level basetype // Severity level (alias for byte)
type logState basetype

// Options is a bitfield of OPT_* flags.
type Options uint32

// ModuleID identifies a logical subsystem, it is an index into the level table.
// Valid values are [0, ModuleTable.Len()).
type ModuleID int

// Args describes one log call. It is read only and is usually cached by the
// caller (see ModuleClient) so repeated calls cost no setup.
type Args struct {
	Options  Options  // bitfield of OPT_* options
	Color    string   // ANSI color code (COLOR_*) or COLOR_NONE to skip
	Function string   // function name or FUNCTION_NONE to skip
	Line     int      // line number or negative number to skip
	Level    Level    // severity of the line
	ID       ModuleID // module the line belongs to
}

// Sink receives every composed line instead of the destination stream. The
// buffer is only valid for the duration of the call. The return value is
// reported to the caller as is.
type Sink func(level Level, buf []byte) (int, error)

// LevelMap is a fixed-size array with one entry per level (including
// LVL_INVALID). Used for level names and colors.
type LevelMap [_LVL_MAX_for_checks_only]string

// levelTable holds the minimal level of every module. Entries are updated one
// by one with atomic stores, readers never lock.
type levelTable struct {
	entries []atomic.Uint32
}

type sinkPair struct {
	print Sink // used by formatted calls to the default or a given stream
	safe  Sink // used by SafeLogger calls to the default or a given stream
}

type outputRef struct {
	w io.Writer
}

// Logger is the context object shared by all call sites of a process. It
// owns the module table, the level table, sinks and the default output.
//
// Hot-path reads (levels, sinks, output) are lock free; the statMtx only
// serializes Init and Shutdown.
type Logger struct {
	sync struct {
		statMtx sync.Mutex   // guards state, backend and sinks replacement
		fbckMtx sync.RWMutex // guards access to fallback writer
	}
	modules   *ModuleTable
	levels    levelTable
	sinks     atomic.Pointer[sinkPair]
	output    atomic.Pointer[outputRef]
	stdout    io.Writer    // default output when no file backend is attached
	fallbck   io.Writer    // fallback writer used to report sink/writer failures
	source    ConfigSource // nil means no level config is loaded on Init
	backend   *fileBackend
	metrics   *Metrics
	clock     func() time.Time
	buffers   sync.Pool // *[]byte of bufsize bytes
	bufsize   int
	validated bool // validated instead of fast enablement check
	state     logState
}

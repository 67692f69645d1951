package xlog

/*
Package-wide constants, enums and helper utilities used by the logger:
  - severity levels and the option bitmask
  - ANSI color codes accepted by Args.Color
  - sizes of the composition buffer and the date/time prefix budget
  - config file naming
  - error texts and sentinel errors
  - normalization helpers
*/

import "errors"

const (
	// Severity levels. Lower value is more verbose. LVL_INVALID is a sentinel
	// meaning "unresolved" and is never a valid filter threshold.
	LVL_ALL Level = iota
	LVL_DEBUG
	LVL_INFO
	LVL_WARN
	LVL_ERROR
	LVL_FATAL
	LVL_INVALID
	_LVL_MAX_for_checks_only
)

const (
	// Option bits for Args.Options.
	OPT_GMT      Options = 1 << iota // render date/time in UTC instead of local time
	OPT_DATE                         // YYYYMMDD
	OPT_TIME                         // HH:MM:SS:mmm
	OPT_LF                           // terminate line with '\n'
	OPT_MOD_NAME                     // module display name
	OPT_LEVEL                        // " :WARN" style tag for WARN and above
	OPT_COLOR                        // Args.Color before the line, COLOR_NRM after it

	OPT_NONE    Options = 0
	OPT_DEFAULT         = OPT_DATE | OPT_TIME | OPT_LF | OPT_MOD_NAME | OPT_LEVEL | OPT_COLOR
)

const (
	// Values that disable a field of the line.
	COLOR_NONE    = ""
	FUNCTION_NONE = ""
	LINE_NONE     = -1
)

const (
	// ANSI color codes. Any code used in Args.Color must be 4 or 5 bytes long.
	COLOR_NRM = "\x1b[0m"
	COLOR_BLK = "\x1b[30m"
	COLOR_RED = "\x1b[31m"
	COLOR_GRN = "\x1b[32m"
	COLOR_YEL = "\x1b[33m"
	COLOR_BLU = "\x1b[34m"
	COLOR_MAG = "\x1b[35m"
	COLOR_CYN = "\x1b[36m"
	COLOR_WHT = "\x1b[37m"

	_COLOR_LEN_MIN = 4
	_COLOR_LEN_MAX = 5
)

const (
	DEFAULT_STACK_BUF_SIZE = 4096 // capacity of the buffer every line is composed in
	DEFAULT_LOG_LEVEL      = LVL_INFO
	PREFIX_SIZE            = 22 // "YYYYMMDD HH:MM:SS:mmm "
	MAX_LINE_DIGITS        = 10
)

const (
	// Level config files, see FileConfigSource.
	CONFIG_DIR_PRD     = "/etc"
	CONFIG_DIR_DEV     = "/opt"
	CONFIG_FILE_NAME   = "xlog.json"
	CONFIG_FILE_PREFIX = "xlog_"
	CONFIG_FILE_SUFFIX = ".json"
)

const (
	_STATE_UNINITIALIZED logState = iota
	_STATE_INITIALIZED
	_STATE_MAX_for_checks_only
)

const (
	// Error messages used across logger operations (used for testing).
	_ERROR_MESSAGE_ALREADY_INITIALIZED = "already initialized"
	_ERROR_MESSAGE_EMPTY_MESSAGE       = "empty format string or message"
	_ERROR_MESSAGE_NIL_WRITER          = "nil stream"
	_ERROR_MESSAGE_INVALID_FD          = "invalid fd"
	_ERROR_MESSAGE_NIL_BUFFER          = "nil buffer"
	_ERROR_MESSAGE_BAD_COLOR           = "color code must be 4 or 5 bytes long"
	_ERROR_MESSAGE_INVALID_MODULE      = "invalid module id"
	_ERROR_MESSAGE_INVALID_LEVEL       = "invalid log level"
	_ERROR_MESSAGE_NO_CONFIG           = "configuration file(s) missing"
	_ERROR_MESSAGE_EMPTY_CONFIG        = "empty configuration file"
	_ERROR_MESSAGE_DUPLICATE_KEY       = "duplicate object key"
	_ERROR_MESSAGE_NOT_OBJECT          = "not a json object"
	_ERROR_MESSAGE_MALFORMED_JSON      = "malformed json"
	_ERROR_MESSAGE_FILE_CLOSED         = "log file closed"
	_ERROR_MESSAGE_DUPLICATE_MODULE    = "duplicate module name"
	_ERROR_UNKNOWN_PANIC_TEXT          = "[no panic description]"
)

var (
	ErrAlreadyInitialized = errors.New(_ERROR_MESSAGE_ALREADY_INITIALIZED)
	ErrEmptyMessage       = errors.New(_ERROR_MESSAGE_EMPTY_MESSAGE)
	ErrNilWriter          = errors.New(_ERROR_MESSAGE_NIL_WRITER)
	ErrInvalidFD          = errors.New(_ERROR_MESSAGE_INVALID_FD)
	ErrNilBuffer          = errors.New(_ERROR_MESSAGE_NIL_BUFFER)
	ErrBadColor           = errors.New(_ERROR_MESSAGE_BAD_COLOR)
	ErrInvalidModule      = errors.New(_ERROR_MESSAGE_INVALID_MODULE)
	ErrInvalidLevel       = errors.New(_ERROR_MESSAGE_INVALID_LEVEL)
	ErrNoConfig           = errors.New(_ERROR_MESSAGE_NO_CONFIG)
	ErrEmptyConfig        = errors.New(_ERROR_MESSAGE_EMPTY_CONFIG)
	ErrDuplicateKey       = errors.New(_ERROR_MESSAGE_DUPLICATE_KEY)
	ErrNotObject          = errors.New(_ERROR_MESSAGE_NOT_OBJECT)
	ErrMalformedJSON      = errors.New(_ERROR_MESSAGE_MALFORMED_JSON)
	ErrFileClosed         = errors.New(_ERROR_MESSAGE_FILE_CLOSED)
	ErrDuplicateModule    = errors.New(_ERROR_MESSAGE_DUPLICATE_MODULE)
)

/////////////////////////////////////////////////////////////////////////////////////////

// Full level names, also used by ParseLevel.
var LevelNames = &LevelMap{
	"ALL",     //LVL_ALL
	"DEBUG",   //LVL_DEBUG
	"INFO",    //LVL_INFO
	"WARN",    //LVL_WARN
	"ERROR",   //LVL_ERROR
	"FATAL",   //LVL_FATAL
	"INVALID", //LVL_INVALID
}

// Default per-level colors used by module clients.
var LevelColors = &LevelMap{
	COLOR_NONE, //LVL_ALL
	COLOR_GRN,  //LVL_DEBUG
	COLOR_NONE, //LVL_INFO
	COLOR_YEL,  //LVL_WARN
	COLOR_RED,  //LVL_ERROR
	COLOR_RED,  //LVL_FATAL
	COLOR_NONE, //LVL_INVALID
}

// Generic byte normalization helper.
func norm_byte[T ~byte](val, overlimit, def T) T {
	if val < overlimit {
		return val
	} else {
		return def
	}
}

// Ensures a provided logState is within the valid range
func normState(state logState) logState {
	return norm_byte(state, _STATE_MAX_for_checks_only, _STATE_UNINITIALIZED)
}

// Maps any level outside [LVL_ALL, LVL_FATAL] to LVL_INVALID
func normLevel(level Level) Level {
	return norm_byte(level, LVL_INVALID, LVL_INVALID)
}

// Converts a panic value into a compact readable string (used when
// translating panics into errors or fallback messages)
func panicDesc(panic any) (errtext string) {
	switch v := panic.(type) {
	case string:
		errtext = ": `" + v + "`"
	case error:
		errtext = ": (error) `" + v.Error() + "`"
	default:
		errtext = " " + _ERROR_UNKNOWN_PANIC_TEXT
	}
	return errtext
}

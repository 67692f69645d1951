package xlog

import (
	"fmt"
	"strings"
	"sync/atomic"
)

const _LEVEL_NAME_PREFIX = "XLOG_LEVEL_"

// ParseLevel maps a level name (all, debug, info, warn, error, fatal; case
// insensitive, optionally prefixed with XLOG_LEVEL_) to its Level. Anything
// else resolves to LVL_INVALID.
func ParseLevel(name string) Level {
	if len(name) > len(_LEVEL_NAME_PREFIX) && strings.EqualFold(name[:len(_LEVEL_NAME_PREFIX)], _LEVEL_NAME_PREFIX) {
		name = name[len(_LEVEL_NAME_PREFIX):]
	}
	for level := LVL_ALL; level < LVL_INVALID; level++ {
		if strings.EqualFold(name, LevelNames[level]) {
			return level
		}
	}
	return LVL_INVALID
}

// String returns the full level name, "INVALID" for out of range values.
func (level Level) String() string {
	return LevelNames[norm_byte(level, _LVL_MAX_for_checks_only, LVL_INVALID)]
}

/////////////////////////////////////////////////////////////////////////////////////////

func newLevelTable(size int) levelTable {
	t := levelTable{entries: make([]atomic.Uint32, size)}
	t.setAll(DEFAULT_LOG_LEVEL)
	return t
}

func (t *levelTable) valid(id ModuleID) bool {
	return id >= 0 && int(id) < len(t.entries)
}

func (t *levelTable) get(id ModuleID) Level {
	return Level(t.entries[id].Load())
}

func (t *levelTable) set(id ModuleID, level Level) {
	t.entries[id].Store(uint32(level))
}

func (t *levelTable) setAll(level Level) {
	for i := range t.entries {
		t.entries[i].Store(uint32(level))
	}
}

/////////////////////////////////////////////////////////////////////////////////////////

// GetLevel returns the current minimal level of a module or LVL_INVALID for
// an out of range id.
func (l *Logger) GetLevel(id ModuleID) Level {
	if !l.levels.valid(id) {
		return LVL_INVALID
	}
	return normLevel(l.levels.get(id))
}

// SetLevel changes the minimal level of one module. The change is visible to
// all goroutines immediately. Out of range ids and levels are rejected with a
// diagnostic and leave the table unchanged.
func (l *Logger) SetLevel(id ModuleID, level Level) error {
	if level >= LVL_INVALID {
		l.diagf(LVL_ERROR, "invalid log level <%d>", level)
		return fmt.Errorf("%w <%d>", ErrInvalidLevel, level)
	}
	if !l.levels.valid(id) {
		l.diagf(LVL_ERROR, "invalid module id <%d>", id)
		return fmt.Errorf("%w <%d>", ErrInvalidModule, id)
	}
	l.levels.set(id, level)
	return nil
}

// SetLevelAll sets the same minimal level for every module.
func (l *Logger) SetLevelAll(level Level) error {
	if level >= LVL_INVALID {
		l.diagf(LVL_ERROR, "invalid log level <%d>", level)
		return fmt.Errorf("%w <%d>", ErrInvalidLevel, level)
	}
	l.levels.setAll(level)
	return nil
}

// IsLevelActive reports whether a line of the given level would be written
// for the module. See WithValidatedLevelCheck for out of range levels.
func (l *Logger) IsLevelActive(id ModuleID, level Level) bool {
	return l.isEnabled(id, level)
}

// Levels returns a snapshot of all module levels keyed by module name.
func (l *Logger) Levels() map[string]Level {
	res := make(map[string]Level, l.modules.Len())
	for id, name := range l.modules.names {
		res[name] = l.GetLevel(ModuleID(id))
	}
	return res
}

// isEnabled is the check done before any formatting work. An out of range
// module is disabled. In the fast (default) mode the level itself is not
// range checked, so an out of range level is always enabled.
func (l *Logger) isEnabled(id ModuleID, level Level) bool {
	if !l.levels.valid(id) {
		l.diagf(LVL_WARN, "invalid module id <%d>", id)
		return false
	}
	if l.validated && level >= LVL_INVALID {
		l.diagf(LVL_WARN, "invalid level <%d>", level)
		return false
	}
	return level >= l.levels.get(id)
}

// isEnabledSafe is isEnabled for the signal-safe path: diagnostics are
// constant strings written through the safe path.
func (l *Logger) isEnabledSafe(id ModuleID, level Level) bool {
	if !l.levels.valid(id) {
		l.safeDiag(LVL_WARN, "invalid module id")
		return false
	}
	if l.validated && level >= LVL_INVALID {
		l.safeDiag(LVL_WARN, "invalid level")
		return false
	}
	return level >= l.levels.get(id)
}

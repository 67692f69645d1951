package xlog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-json"
)

const (
	// The logger's own module. It is present in every module table and is
	// used for the default Args and for self-diagnostics.
	MODULE_XLOG      ModuleID = 0
	MODULE_XLOG_NAME          = "XLOG"
)

// ModuleTable is the ordered list of module display names. The position of a
// name is its ModuleID. A table is immutable once built.
type ModuleTable struct {
	names []string
	ids   map[string]ModuleID
}

// NewModuleTable builds a table with XLOG at id 0 followed by names in the
// given order. An explicit "XLOG" entry is skipped.
func NewModuleTable(names ...string) (*ModuleTable, error) {
	t := &ModuleTable{
		names: []string{MODULE_XLOG_NAME},
		ids:   map[string]ModuleID{MODULE_XLOG_NAME: MODULE_XLOG},
	}
	for _, name := range names {
		if name == MODULE_XLOG_NAME {
			continue
		}
		if err := t.add(name); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MustModuleTable is NewModuleTable that panics on error. Intended for
// package-level tables with literal names.
func MustModuleTable(names ...string) *ModuleTable {
	t, err := NewModuleTable(names...)
	if err != nil {
		panic(err)
	}
	return t
}

// LoadModuleTable reads a module list from a JSON object mapping module
// display names to level names, e.g.
//
//	{"CORE": "XLOG_LEVEL_INFO", "NET": "XLOG_LEVEL_WARN"}
//
// Ids follow the order of keys in the file. Every value must name a valid
// level; the levels only validate the list, modules still start at INFO.
func LoadModuleTable(r io.Reader) (*ModuleTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var names []string
	err = walkObject(data, func(name, level string, isString bool) error {
		if !isString || ParseLevel(level) == LVL_INVALID {
			return fmt.Errorf("module <%s>: %w <%s>", name, ErrInvalidLevel, level)
		}
		names = append(names, name)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %w", ErrDuplicateModule, err)
		}
		return nil, err
	}
	return NewModuleTable(names...)
}

func (t *ModuleTable) add(name string) error {
	if name == "" {
		return errors.New("empty module name")
	}
	if _, ok := t.ids[name]; ok {
		return fmt.Errorf("%w <%s>", ErrDuplicateModule, name)
	}
	t.ids[name] = ModuleID(len(t.names))
	t.names = append(t.names, name)
	return nil
}

// Len returns the number of modules (the level table size).
func (t *ModuleTable) Len() int {
	return len(t.names)
}

// ID resolves a module display name. The second result is false for unknown names.
func (t *ModuleTable) ID(name string) (ModuleID, bool) {
	id, ok := t.ids[name]
	return id, ok
}

// Name returns the display name of a module, or "" and false if the id is out of range.
func (t *ModuleTable) Name(id ModuleID) (string, bool) {
	if !t.Valid(id) {
		return "", false
	}
	return t.names[id], true
}

// Valid reports whether id indexes an existing module.
func (t *ModuleTable) Valid(id ModuleID) bool {
	return id >= 0 && int(id) < len(t.names)
}

// Names returns a copy of all module names in id order.
func (t *ModuleTable) Names() []string {
	return append([]string(nil), t.names...)
}

/////////////////////////////////////////////////////////////////////////////////////////

// walkObject streams a flat JSON object and calls fn for every member in file
// order. String values are passed as is, any other value as its JSON text
// with isString false. Duplicate keys abort the walk with ErrDuplicateKey.
// The whole input is syntax checked first, Token does not check separators.
func walkObject(data []byte, fn func(key, value string, isString bool) error) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: empty input", ErrNotObject)
	}
	if !json.Valid(data) {
		return ErrMalformedJSON
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return ErrNotObject
	}
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key <%v>", tok)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w <%s>", ErrDuplicateKey, key)
		}
		seen[key] = struct{}{}
		value, isString, err := valueText(dec)
		if err != nil {
			return err
		}
		if err = fn(key, value, isString); err != nil {
			return err
		}
	}
	// closing '}'
	if _, err = dec.Token(); err != nil {
		return err
	}
	if tok, err = dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after object <%v>", tok)
	}
	return nil
}

func valueText(dec *json.Decoder) (string, bool, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", false, err
	}
	switch v := tok.(type) {
	case string:
		return v, true, nil
	case json.Delim:
		// skip a nested object or array
		for depth := 1; depth > 0; {
			t, err := dec.Token()
			if err != nil {
				return "", false, err
			}
			if d, ok := t.(json.Delim); ok {
				if d == '{' || d == '[' {
					depth++
				} else {
					depth--
				}
			}
		}
		if v == '{' {
			return "{...}", false, nil
		}
		return "[...]", false, nil
	case nil:
		return "null", false, nil
	case bool:
		return strconv.FormatBool(v), false, nil
	default:
		return fmt.Sprint(v), false, nil
	}
}

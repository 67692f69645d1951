package xlog

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/knadh/koanf/providers/file"
)

// LevelSetting is one "module": "level" member of a level config file.
type LevelSetting struct {
	Module string
	Level  string
	Raw    bool // the value is not a JSON string, Level holds its JSON text
}

// LevelConfig is a loaded level config: the settings in file order and where
// they came from.
type LevelConfig struct {
	Source   string
	Settings []LevelSetting
}

// ConfigSource provides the level config applied by Init. module is the
// display name of the module passed to Init, "" if that id is invalid.
// ErrNoConfig means there is nothing to apply.
type ConfigSource interface {
	Load(module string) (*LevelConfig, error)
}

// ConfigSourceFunc adapts a function to ConfigSource.
type ConfigSourceFunc func(module string) (*LevelConfig, error)

func (f ConfigSourceFunc) Load(module string) (*LevelConfig, error) {
	return f(module)
}

// FileConfigSource looks for level config files in this order, the first
// existing, readable and non-empty file wins:
//
//	<DevDir>/xlog_<MODULE>.json
//	<DevDir>/xlog.json
//	<PrdDir>/xlog_<MODULE>.json
//	<PrdDir>/xlog.json
//
// Development paths are skipped in Production, module paths when the module
// name is empty. Empty dirs mean CONFIG_DIR_DEV and CONFIG_DIR_PRD.
type FileConfigSource struct {
	DevDir     string
	PrdDir     string
	Production bool
}

// Paths returns the candidate files for a module in lookup order.
func (s *FileConfigSource) Paths(module string) []string {
	dev, prd := s.DevDir, s.PrdDir
	if dev == "" {
		dev = CONFIG_DIR_DEV
	}
	if prd == "" {
		prd = CONFIG_DIR_PRD
	}
	dirs := []string{prd}
	if !s.Production {
		dirs = []string{dev, prd}
	}
	paths := make([]string, 0, 2*len(dirs))
	for _, dir := range dirs {
		if module != "" {
			paths = append(paths, filepath.Join(dir, CONFIG_FILE_PREFIX+module+CONFIG_FILE_SUFFIX))
		}
		paths = append(paths, filepath.Join(dir, CONFIG_FILE_NAME))
	}
	return paths
}

// Load reads the first usable candidate file and parses it. Missing, empty or
// unreadable files are skipped; a file that is found but does not parse is an
// error and no further candidates are tried.
func (s *FileConfigSource) Load(module string) (*LevelConfig, error) {
	for _, path := range s.Paths(module) {
		data, err := file.Provider(path).ReadBytes()
		if err != nil {
			continue
		}
		cfg, err := ParseLevelConfig(data)
		if errors.Is(err, ErrEmptyConfig) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cfg.Source = path
		return cfg, nil
	}
	return nil, ErrNoConfig
}

// ParseLevelConfig parses a level config file: a JSON object mapping module
// display names to level names. Duplicate keys fail with ErrDuplicateKey,
// invalid JSON with ErrMalformedJSON, anything but an object with
// ErrNotObject, blank input with ErrEmptyConfig.
// Unknown modules and levels are not checked here.
func ParseLevelConfig(data []byte) (*LevelConfig, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyConfig
	}
	cfg := &LevelConfig{}
	err := walkObject(data, func(module, level string, isString bool) error {
		cfg.Settings = append(cfg.Settings, LevelSetting{Module: module, Level: level, Raw: !isString})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

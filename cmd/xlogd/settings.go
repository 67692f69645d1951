package main

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/abyssdigger/xlog"
)

// EnvPrefix is the prefix of environment variables overriding settings,
// XLOGD_LOG_FILE sets log_file.
const EnvPrefix = "XLOGD_"

// Settings of the xlogd tool. Precedence: flags > env > file > defaults.
type Settings struct {
	Module     string `koanf:"module"`     // module demo lines are logged on, selects xlog_<MOD>.json
	Modules    string `koanf:"modules"`    // JSON module list file, {"NAME": "XLOG_LEVEL_*", ...}
	LogFile    string `koanf:"log_file"`   // size limited output file instead of stdout
	MaxSize    uint32 `koanf:"max_size"`   // log file size limit in bytes, 0 for the default
	DevDir     string `koanf:"dev_dir"`    // development config directory
	PrdDir     string `koanf:"prd_dir"`    // production config directory
	Production bool   `koanf:"production"` // skip the development config directory
	Zerolog    bool   `koanf:"zerolog"`    // hand lines to a zerolog JSON logger
	Metrics    bool   `koanf:"metrics"`    // print line counters on exit
}

func defaultSettings() *Settings {
	return &Settings{
		Module: xlog.MODULE_XLOG_NAME,
		DevDir: xlog.CONFIG_DIR_DEV,
		PrdDir: xlog.CONFIG_DIR_PRD,
	}
}

// newFlagSet declares the command line. Flags named after a settings key
// override it when given; config and levels are read by run only.
func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("xlogd", pflag.ContinueOnError)
	flags.StringP("config", "c", "", "YAML settings file")
	flags.StringP("module", "m", "", "module to log on")
	flags.Bool("production", false, "skip the development config directory")
	flags.Bool("levels", false, "print the module level table and exit")
	return flags
}

// loadSettings layers struct defaults, the optional YAML file named by the
// config flag, XLOGD_* environment variables and the flags that were set.
// flags may be nil.
func loadSettings(flags *pflag.FlagSet) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultSettings(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	var path string
	if flags != nil {
		path, _ = flags.GetString("config")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(key string) string {
		return strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// flags not given on the command line keep the lower layers
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	s := &Settings{}
	if err := k.Unmarshal("", s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if s.Module == "" {
		return nil, fmt.Errorf("module must not be empty")
	}
	return s, nil
}

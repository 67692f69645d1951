// Command xlogd initializes an xlog logger the way a service would and either
// prints the resulting module level table or logs one demo line per level.
//
//	xlogd --module CORE --levels
//	XLOGD_MODULES=modules.json XLOGD_DEV_DIR=./conf xlogd -m NET
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/abyssdigger/xlog"
)

const (
	_EXIT_OK    = 0
	_EXIT_ERROR = 1
	_EXIT_USAGE = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := newFlagSet()
	flags.SetOutput(stderr)
	if err := flags.Parse(args); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(stderr, "xlogd:", err)
		}
		return _EXIT_USAGE
	}
	levels, _ := flags.GetBool("levels")

	s, err := loadSettings(flags)
	if err != nil {
		fmt.Fprintln(stderr, "xlogd:", err)
		return _EXIT_USAGE
	}

	modules, err := loadModules(s)
	if err != nil {
		fmt.Fprintln(stderr, "xlogd:", err)
		return _EXIT_ERROR
	}
	id, ok := modules.ID(s.Module)
	if !ok {
		fmt.Fprintf(stderr, "xlogd: unknown module <%s>\n", s.Module)
		return _EXIT_USAGE
	}

	reg := prometheus.NewRegistry()
	logger := xlog.New(
		xlog.WithModules(modules),
		xlog.WithOutput(stdout),
		xlog.WithFallback(stderr),
		xlog.WithMetrics(xlog.NewMetrics(reg)),
		xlog.WithConfigSource(&xlog.FileConfigSource{
			DevDir:     s.DevDir,
			PrdDir:     s.PrdDir,
			Production: s.Production,
		}),
	)
	if s.Zerolog {
		err = logger.InitWithSink(id, xlog.ZerologSink(zerolog.New(stdout).With().Timestamp().Logger()), nil)
	} else {
		err = logger.Init(id, s.LogFile, s.MaxSize)
	}
	if err != nil {
		fmt.Fprintln(stderr, "xlogd:", err)
		return _EXIT_ERROR
	}
	defer logger.Shutdown()

	if levels {
		table := logger.Levels()
		for _, name := range modules.Names() {
			fmt.Fprintf(stdout, "%-12s %s\n", name, table[name])
		}
		return _EXIT_OK
	}

	client := logger.NewClient(id)
	for level := xlog.LVL_DEBUG; level <= xlog.LVL_FATAL; level++ {
		if _, err := client.Logf(level, xlog.OPT_DEFAULT, xlog.LevelColors[level], "demo line at level %s", level); err != nil {
			fmt.Fprintln(stderr, "xlogd:", err)
			return _EXIT_ERROR
		}
	}
	if s.Metrics {
		printMetrics(reg, stderr)
	}
	return _EXIT_OK
}

// loadModules reads the module list file or, without one, builds a table
// holding the selected module only.
func loadModules(s *Settings) (*xlog.ModuleTable, error) {
	if s.Modules == "" {
		return xlog.NewModuleTable(s.Module)
	}
	f, err := os.Open(s.Modules)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	modules, err := xlog.LoadModuleTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Modules, err)
	}
	return modules, nil
}

func printMetrics(reg *prometheus.Registry, w io.Writer) {
	families, err := reg.Gather()
	if err != nil {
		fmt.Fprintln(w, "xlogd: metrics:", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := ""
			for _, lp := range m.GetLabel() {
				labels += " " + lp.GetName() + "=" + lp.GetValue()
			}
			fmt.Fprintf(w, "%s%s %g\n", mf.GetName(), labels, m.GetCounter().GetValue())
		}
	}
}

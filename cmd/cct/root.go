package main

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/quangis/cct/internal/algebra"
	"github.com/quangis/cct/internal/config"
	ts "github.com/quangis/cct/internal/typesystem"
	"github.com/quangis/cct/pkg/cct"
)

type options struct {
	configPath string
	debug      bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "cct",
		Short:         "Type checker for core concept transformation expressions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"YAML signature file (default: built-in geographic algebra)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false,
		"dump internal checker state")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"log progress to stderr")

	root.AddCommand(newCheckCmd(opts))
	root.AddCommand(newBatchCmd(opts))
	root.AddCommand(newOperatorsCmd(opts))
	return root
}

// loadAlgebra resolves the lattice and table the subcommands work on.
func (o *options) loadAlgebra() (*ts.Lattice, *algebra.Table, error) {
	if o.configPath != "" {
		return config.Load(o.configPath)
	}
	alg, err := cct.New()
	if err != nil {
		return nil, nil, err
	}
	return alg.Lattice(), alg.Table(), nil
}

// colorizer wraps strings in ANSI colors when stdout is a terminal.
type colorizer struct {
	enabled bool
}

func newColorizer() colorizer {
	fd := os.Stdout.Fd()
	return colorizer{enabled: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)}
}

func (c colorizer) paint(code, s string) string {
	if !c.enabled {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

func (c colorizer) green(s string) string { return c.paint("32", s) }
func (c colorizer) red(s string) string   { return c.paint("31", s) }
func (c colorizer) dim(s string) string   { return c.paint("2", s) }

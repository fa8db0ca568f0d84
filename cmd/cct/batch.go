package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/quangis/cct/internal/algebra"
	"github.com/quangis/cct/internal/catalog"
)

func newBatchCmd(opts *options) *cobra.Command {
	var (
		dbPath  string
		suite   string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "batch [file ...]",
		Short: "Run conformance suites",
		Long: `Run conformance suites of (expression, expected type or error)
cases. Suites come from YAML files, txtar archives bundling several
suites, or a SQLite store (--db with --suite). Exits non-zero when any
case fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && dbPath == "" {
				return fmt.Errorf("nothing to run: give suite files or --db")
			}

			var suites []catalog.Suite
			for _, path := range args {
				switch filepath.Ext(path) {
				case ".txtar":
					loaded, err := catalog.LoadTxtar(path)
					if err != nil {
						return err
					}
					suites = append(suites, loaded...)
				default:
					s, err := catalog.LoadYAML(path)
					if err != nil {
						return err
					}
					suites = append(suites, s)
				}
			}
			if dbPath != "" {
				store, err := catalog.OpenStore(dbPath)
				if err != nil {
					return err
				}
				defer store.Close()
				names := []string{suite}
				if suite == "" {
					if names, err = store.Suites(cmd.Context()); err != nil {
						return err
					}
				}
				for _, name := range names {
					s, err := store.Suite(cmd.Context(), name)
					if err != nil {
						return err
					}
					suites = append(suites, s)
				}
			}

			lat, table, err := opts.loadAlgebra()
			if err != nil {
				return err
			}
			runner := catalog.NewRunner(
				algebra.NewChecker(lat, table),
				catalog.Workers(workers),
			)

			col := newColorizer()
			failed := 0
			for _, s := range suites {
				report, err := runner.Run(cmd.Context(), s)
				if err != nil {
					return err
				}
				failed += report.Failed()
				fmt.Println(report.Summary())
				for _, res := range report.Results {
					if res.Pass {
						continue
					}
					fmt.Printf("  %s %s: %s\n",
						col.red("FAIL"), res.Case.Expression, res.Detail)
				}
				if opts.debug {
					spew.Fdump(os.Stderr, report)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d cases failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite case store")
	cmd.Flags().StringVar(&suite, "suite", "", "suite name within --db (default: all)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent cases (default: GOMAXPROCS)")
	return cmd
}

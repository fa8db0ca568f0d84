package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/quangis/cct/internal/algebra"
)

func newCheckCmd(opts *options) *cobra.Command {
	var allowOpen bool
	cmd := &cobra.Command{
		Use:   "check [expression ...]",
		Short: "Infer the type of one or more expressions",
		Long: `Infer the type of each expression argument, or of each line read
from stdin when no arguments are given. Identifiers unknown to the
algebra are treated as free external data.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, table, err := opts.loadAlgebra()
			if err != nil {
				return err
			}
			var checkerOpts []algebra.Option
			if allowOpen {
				checkerOpts = append(checkerOpts, algebra.AllowOpen())
			}
			checker := algebra.NewChecker(lat, table, checkerOpts...)

			exprs := args
			if len(exprs) == 0 {
				scanner := bufio.NewScanner(os.Stdin)
				for scanner.Scan() {
					if line := scanner.Text(); line != "" {
						exprs = append(exprs, line)
					}
				}
				if err := scanner.Err(); err != nil {
					return err
				}
			}

			col := newColorizer()
			failed := 0
			for _, expr := range exprs {
				t, err := checker.Check(expr)
				if err != nil {
					failed++
					fmt.Fprintf(os.Stderr, "%s : %s\n", expr, col.red(err.Error()))
					continue
				}
				fmt.Printf("%s : %s\n", expr, col.green(t.String()))
				if opts.debug {
					spew.Fdump(os.Stderr, t)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d expressions failed", failed, len(exprs))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&allowOpen, "open", false,
		"permit partial results containing free type variables")
	return cmd
}

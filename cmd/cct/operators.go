package main

import (
	"fmt"
	"strings"

	u "github.com/rjNemo/underscore"
	"github.com/spf13/cobra"

	"github.com/quangis/cct/internal/typesystem"
)

func newOperatorsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "operators",
		Short: "List the algebra's operators and their signatures",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, table, err := opts.loadAlgebra()
			if err != nil {
				return err
			}
			col := newColorizer()
			for _, name := range table.Names() {
				for _, sch := range table.Lookup(name) {
					line := fmt.Sprintf("%s : %s", name, sch.Skeleton())
					if cs := sch.Constraints(); len(cs) > 0 {
						rendered := u.Map(cs, func(c typesystem.Constraint) string {
							return c.String()
						})
						line += col.dim(" | " + strings.Join(rendered, ", "))
					}
					fmt.Println(line)
				}
			}
			return nil
		},
	}
}

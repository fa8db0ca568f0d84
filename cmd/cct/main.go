// Command cct type-checks core concept transformation expressions.
//
// With no --config it carries the built-in geographic algebra; a YAML
// signature file swaps in any other vocabulary.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cct:", err)
		os.Exit(1)
	}
}

// Package cmd implements the bitfmt command line tool: a thin
// boundary surface over bits/dtype that takes individual
// literal/dtype strings as arguments, never a schema-source document,
// so it stays out of the grammar front end's excluded territory.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bitfmt",
	Short: "Inspect and exercise bit-source literals and dtypes",
	Long: `bitfmt parses bit-source literal strings and dtype strings from the
command line and drives them through the bits/dtype packages: it does
not parse schema-source documents, only individual literal and dtype
expressions.`,
}

// Execute runs the root command, exiting the process with status 1 on
// error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

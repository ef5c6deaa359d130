// Command amfn is the Cobra CLI batch driver (A6): it loads a cashflow JSON
// file from disk, runs it through the core pipeline, and prints the result
// — the rootCmd/subcommand-with-init()-registration idiom the corpus's CLI
// tools use, trimmed to the dependencies already in go.mod (no viper config
// layer, no glamour rendering: plain encoding/json is enough for a batch
// driver that neither validates schema nor formats for a terminal).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amfn-io/amfn/internal/logging"
)

var logDir string

var rootCmd = &cobra.Command{
	Use:   "amfn",
	Short: "amfn evaluates and solves declarative amortization cashflows",
	Long: `amfn is a batch driver for the AmFn amortization and cashflow
engine. It loads a cashflow description from a JSON file, expands it into a
period-by-period amortization schedule, computes balances and accrued
interest, and can solve for an unknown scalar that balances the cashflow.

It performs no schema validation of its own: a malformed input file
surfaces whatever error the core pipeline returns.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "./logs", "directory for structured log output")
}

func newLogger() *logging.Logger {
	logger, err := logging.New(logDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "amfn: logging: %v\n", err)
		os.Exit(1)
	}
	return logger
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amfn-io/amfn/engine"
	"github.com/amfn-io/amfn/internal/cashflowio"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <file.json>",
	Short: "Expand and compress a cashflow file, printing the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		cf, err := loadCashflow(args[0])
		if err != nil {
			return err
		}

		result, err := engine.Evaluate(cf)
		if err != nil {
			logger.Error("evaluate failed", "file", args[0], "error", err)
			return err
		}
		logger.Info("evaluate succeeded", "file", args[0], "elements", len(result.Elements))

		return printJSON(result)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}

func loadCashflow(path string) (engine.Cashflow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return engine.Cashflow{}, fmt.Errorf("amfn: read %s: %w", path, err)
	}
	var doc cashflowio.CashflowDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return engine.Cashflow{}, fmt.Errorf("amfn: parse %s: %w", path, err)
	}
	return doc.ToCashflow()
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

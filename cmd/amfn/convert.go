package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amfn-io/amfn/engine"
)

var (
	convertFrom   string
	convertTo     string
	convertAmount string
	convertFile   string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert an amount between two currencies using a cashflow file's exchange-rate graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		cf, err := loadCashflow(convertFile)
		if err != nil {
			return err
		}
		amount, err := decimalOrZero(convertAmount)
		if err != nil {
			return err
		}

		converted, err := engine.Convert(cf.Rates, amount, convertFrom, convertTo)
		if err != nil {
			logger.Error("convert failed", "from", convertFrom, "to", convertTo, "error", err)
			return err
		}

		fmt.Printf("%s %s = %s %s\n", amount, convertFrom, converted, convertTo)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertFile, "file", "", "cashflow JSON file carrying the exchange_rates to convert through")
	convertCmd.Flags().StringVar(&convertFrom, "from", "", "source currency code")
	convertCmd.Flags().StringVar(&convertTo, "to", "", "destination currency code")
	convertCmd.Flags().StringVar(&convertAmount, "amount", "0", "amount to convert")
	convertCmd.MarkFlagRequired("file")
	convertCmd.MarkFlagRequired("from")
	convertCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(convertCmd)
}

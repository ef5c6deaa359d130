package main

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/amfn-io/amfn/engine"
	"github.com/amfn-io/amfn/solver"
)

var (
	solveKind          string
	solveOriginIndex   int
	solveStatisticName string
	solveTargetAmount  string
	solveDecimalDigits int32
	solveInitialGuess  string
	solveSecondGuess   string
)

var solveCmd = &cobra.Command{
	Use:   "solve <file.json>",
	Short: "Solve for an unknown event value, rate, or periods count",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		cf, err := loadCashflow(args[0])
		if err != nil {
			return err
		}

		target, err := buildTarget()
		if err != nil {
			return err
		}

		result, err := engine.Solve(cf, target)
		if err != nil {
			logger.Error("solve failed", "file", args[0], "error", err)
			return err
		}
		logger.Info("solve converged", "file", args[0], "iterations", result.Iterations)

		return printJSON(result)
	},
}

func init() {
	solveCmd.Flags().StringVar(&solveKind, "kind", "", "unknown kind: value, rate, or periods")
	solveCmd.Flags().IntVar(&solveOriginIndex, "event", 0, "origin index of the event whose field is unknown")
	solveCmd.Flags().StringVar(&solveStatisticName, "statistic", "", "name of the statistic-value marker to observe")
	solveCmd.Flags().StringVar(&solveTargetAmount, "target", "0", "target value the observation must reach")
	solveCmd.Flags().Int32Var(&solveDecimalDigits, "digits", 2, "convergence precision in decimal digits")
	solveCmd.Flags().StringVar(&solveInitialGuess, "x0", "", "first secant guess")
	solveCmd.Flags().StringVar(&solveSecondGuess, "x1", "", "second secant guess")
	rootCmd.AddCommand(solveCmd)
}

func buildTarget() (solver.Target, error) {
	amount, err := decimalOrZero(solveTargetAmount)
	if err != nil {
		return solver.Target{}, err
	}
	x0, err := decimalOrZero(solveInitialGuess)
	if err != nil {
		return solver.Target{}, err
	}
	x1, err := decimalOrZero(solveSecondGuess)
	if err != nil {
		return solver.Target{}, err
	}

	var kind solver.UnknownKind
	switch solveKind {
	case "value":
		kind = solver.UnknownValue
	case "rate":
		kind = solver.UnknownRate
	case "periods":
		kind = solver.UnknownPeriods
	default:
		kind = solver.UnknownKind(solveKind)
	}

	return solver.Target{
		Kind:             kind,
		EventOriginIndex: solveOriginIndex,
		StatisticName:    solveStatisticName,
		TargetAmount:     amount,
		DecimalDigits:    solveDecimalDigits,
		InitialGuess:     x0,
		SecondGuess:      x1,
	}, nil
}

func decimalOrZero(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, nil
	}
	return decimal.NewFromString(s)
}

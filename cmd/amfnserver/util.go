package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/amfn-io/amfn/fx"
)

// decimalOrZero parses s as a decimal, treating an empty string as zero
// rather than an error — most request fields (guesses, amounts) are
// optional.
func decimalOrZero(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, nil
	}
	return decimal.NewFromString(s)
}

// parseRatePair parses one "?rate=" query value of the form "FROM:TO:VALUE"
// into a fx.Pair, the query-string encoding of the exchange-rate edges a
// GET request can carry.
func parseRatePair(raw string) (fx.Pair, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 {
		return fx.Pair{}, fmt.Errorf("malformed rate parameter %q, want FROM:TO:VALUE", raw)
	}
	value, err := decimal.NewFromString(parts[2])
	if err != nil {
		return fx.Pair{}, fmt.Errorf("malformed rate parameter %q: %w", raw, err)
	}
	return fx.Pair{From: parts[0], To: parts[1], Value: value}, nil
}

package main

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/amfn-io/amfn/solver"
)

func TestBuildTargetMapsKindFlag(t *testing.T) {
	solveKind = "value"
	solveOriginIndex = 2
	solveStatisticName = "final-balance"
	solveTargetAmount = "0"
	solveDecimalDigits = 2
	solveInitialGuess = "100"
	solveSecondGuess = "200"

	target, err := buildTarget()
	if err != nil {
		t.Fatalf("buildTarget: %v", err)
	}
	if target.Kind != solver.UnknownValue {
		t.Errorf("Kind = %q, want %q", target.Kind, solver.UnknownValue)
	}
	if target.EventOriginIndex != 2 {
		t.Errorf("EventOriginIndex = %d, want 2", target.EventOriginIndex)
	}
	want, _ := decimal.NewFromString("100")
	if !target.InitialGuess.Equal(want) {
		t.Errorf("InitialGuess = %s, want 100", target.InitialGuess)
	}
}

func TestBuildTargetRejectsMalformedAmount(t *testing.T) {
	solveKind = "value"
	solveTargetAmount = "not-a-number"
	solveInitialGuess = ""
	solveSecondGuess = ""

	if _, err := buildTarget(); err == nil {
		t.Error("expected an error for a malformed target amount")
	}
}

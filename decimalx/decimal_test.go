package decimalx

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRoundModes(t *testing.T) {
	d := decimal.NewFromFloat(2.345)
	cases := []struct {
		mode RoundingMode
		want string
	}{
		{RoundNone, "2.345"},
		{RoundTruncate, "2.34"},
		{RoundBiasDown, "2.34"},
		{RoundBiasUp, "2.35"},
	}
	for _, c := range cases {
		got := Round(d, 2, c.mode)
		if got.String() != c.want {
			t.Errorf("Round(%s, %s) = %s, want %s", d, c.mode, got, c.want)
		}
	}
}

func TestRoundYesNoAliases(t *testing.T) {
	d := decimal.NewFromFloat(1.125)
	if Round(d, 2, RoundYes).String() != Round(d, 2, RoundBankers).String() {
		t.Errorf("yes should alias bankers")
	}
	if Round(d, 2, RoundNo).String() != Round(d, 2, RoundNone).String() {
		t.Errorf("no should alias none")
	}
}

func TestRoundNegative(t *testing.T) {
	d := decimal.NewFromFloat(-2.345)
	if got := Round(d, 2, RoundBiasUp); got.String() != "-2.35" {
		t.Errorf("RoundBiasUp(-2.345) = %s, want -2.35", got)
	}
	if got := Round(d, 2, RoundBiasDown); got.String() != "-2.34" {
		t.Errorf("RoundBiasDown(-2.345) = %s, want -2.34", got)
	}
}

func TestRoundUpAwayFromZeroOnAnyRemainder(t *testing.T) {
	d := decimal.NewFromFloat(2.341)
	if got := Round(d, 2, RoundUp); got.String() != "2.35" {
		t.Errorf("RoundUp(2.341) = %s, want 2.35", got)
	}
	neg := decimal.NewFromFloat(-2.341)
	if got := Round(neg, 2, RoundUp); got.String() != "-2.35" {
		t.Errorf("RoundUp(-2.341) = %s, want -2.35", got)
	}
}

func TestPowFractionalExponent(t *testing.T) {
	base := decimal.NewFromFloat(1.005)
	got := Pow(base, decimal.NewFromFloat(12))
	f, _ := got.Float64()
	if f < 1.061 || f > 1.062 {
		t.Errorf("Pow(1.005, 12) = %v, want ~1.0617", f)
	}
}

func TestDivGuardedScale(t *testing.T) {
	got := DivGuarded(decimal.NewFromInt(1), decimal.NewFromInt(3))
	if got.Exponent() < -MaxGuardScale {
		t.Errorf("DivGuarded exceeded guard scale: %s", got)
	}
}

func TestLnInvertsExp(t *testing.T) {
	x := decimal.NewFromFloat(0.12)
	back := Ln(Exp(x))
	f, _ := back.Float64()
	if f < 0.119 || f > 0.121 {
		t.Errorf("Ln(Exp(0.12)) = %v, want ~0.12", f)
	}
}

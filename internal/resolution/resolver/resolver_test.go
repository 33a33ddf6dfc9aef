package resolver

import (
	"math"
	"testing"
)

func TestDominanceShiftBelowGap(t *testing.T) {
	tests := []struct {
		name   string
		a, b   float64
		minGap float64
	}{
		{"just under gap", 0.52, 0.50, 0.05},
		{"tiny difference", 0.5000001, 0.5, 0.05},
		{"equal at gap zero", 0.5, 0.5, 0},
		{"equal with gap", 0.7, 0.7, 0.05},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			da, db := DominanceShift(tc.a, tc.b, 0.03, 1.0, tc.minGap)
			if da != 0 || db != 0 {
				t.Fatalf("expected (0,0), got (%v,%v)", da, db)
			}
		})
	}
}

func TestDominanceShiftHigherPartyGains(t *testing.T) {
	da, db := DominanceShift(0.87, 0.51, 0.03, 1.0, 0.05)
	if da != 0.03 {
		t.Fatalf("expected higher party +0.03, got %v", da)
	}
	if db != -0.03 {
		t.Fatalf("expected lower party -0.03, got %v", db)
	}
}

func TestDominanceShiftLowerFirstArgument(t *testing.T) {
	da, db := DominanceShift(0.51, 0.87, 0.03, 1.0, 0.05)
	if da != -0.03 {
		t.Fatalf("expected lower party -0.03, got %v", da)
	}
	if db != 0.03 {
		t.Fatalf("expected higher party +0.03, got %v", db)
	}
}

func TestDominanceShiftZeroSum(t *testing.T) {
	da, db := DominanceShift(0.9, 0.1, 0.07, 1.5, 0.05)
	if da+db != 0 {
		t.Fatalf("expected zero-sum deltas, got %v and %v", da, db)
	}
}

func TestDominanceShiftMultiplierScales(t *testing.T) {
	saySpeaker, _ := DominanceShift(0.87, 0.51, 0.03, 1.0, 0.05)
	yellSpeaker, _ := DominanceShift(0.87, 0.51, 0.03, 1.5, 0.05)
	if math.Abs(yellSpeaker) <= math.Abs(saySpeaker) {
		t.Fatalf("expected yell delta %v larger than say delta %v", yellSpeaker, saySpeaker)
	}
}

func TestSharedDrainSymmetricNonPositive(t *testing.T) {
	tests := []struct {
		name       string
		magnitude  float64
		multiplier float64
		want       float64
	}{
		{"baseline", 0.01, 1.0, -0.01},
		{"scaled", 0.01, 1.5, -0.015},
		{"zero magnitude", 0, 2.0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			da, db := SharedDrain(tc.magnitude, tc.multiplier)
			if da != db {
				t.Fatalf("expected symmetric deltas, got %v and %v", da, db)
			}
			if da > 0 {
				t.Fatalf("expected non-positive delta, got %v", da)
			}
			if math.Abs(da-tc.want) > 1e-15 {
				t.Fatalf("expected %v, got %v", tc.want, da)
			}
		})
	}
}

func TestNoEffect(t *testing.T) {
	da, db := NoEffect()
	if da != 0 || db != 0 {
		t.Fatalf("expected (0,0), got (%v,%v)", da, db)
	}
}

func TestKnown(t *testing.T) {
	for _, name := range []string{NameDominanceShift, NameSharedDrain, NameNoEffect} {
		if !Known(name) {
			t.Fatalf("expected %s to be known", name)
		}
	}
	if Known("coin_flip") {
		t.Fatalf("expected coin_flip to be unknown")
	}
}

func TestResolveUnknownFallsBackToNoEffect(t *testing.T) {
	da, db := Resolve("coin_flip", 0.9, 0.1, 0.03, 1.0, 0.05)
	if da != 0 || db != 0 {
		t.Fatalf("expected no_effect fallback, got (%v,%v)", da, db)
	}
}

func TestResolveDispatch(t *testing.T) {
	da, db := Resolve(NameDominanceShift, 0.87, 0.51, 0.03, 1.0, 0.05)
	if da != 0.03 || db != -0.03 {
		t.Fatalf("expected dominance_shift dispatch, got (%v,%v)", da, db)
	}
	da, db = Resolve(NameSharedDrain, 0.87, 0.51, 0.01, 1.0, 0.05)
	if da != -0.01 || db != -0.01 {
		t.Fatalf("expected shared_drain dispatch, got (%v,%v)", da, db)
	}
}

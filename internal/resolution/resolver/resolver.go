// Package resolver provides the pure delta functions dispatched during
// interaction resolution. Resolvers never perform I/O and never clamp:
// they return raw pre-clamp deltas for both participants.
package resolver

import (
	"log"
	"math"
)

// Registered resolver names, as referenced by the resolution grammar.
const (
	NameDominanceShift = "dominance_shift"
	NameSharedDrain    = "shared_drain"
	NameNoEffect       = "no_effect"
)

// DominanceShift transfers score toward whichever party currently scores
// higher: the higher-scored party gains magnitude*multiplier and the
// lower-scored party loses the same amount, a zero-sum exchange. Scores
// closer together than minGap produce no shift, and exact ties never shift
// regardless of minGap.
func DominanceShift(a, b, magnitude, multiplier, minGap float64) (float64, float64) {
	if a == b {
		return 0, 0
	}
	if math.Abs(a-b) < minGap {
		return 0, 0
	}
	shift := magnitude * multiplier
	if a > b {
		return shift, -shift
	}
	return -shift, shift
}

// SharedDrain decays both parties symmetrically by magnitude*multiplier,
// regardless of relative standing.
func SharedDrain(magnitude, multiplier float64) (float64, float64) {
	drain := -magnitude * multiplier
	return drain, drain
}

// NoEffect leaves both parties untouched.
func NoEffect() (float64, float64) {
	return 0, 0
}

// Known reports whether name is a registered resolver.
func Known(name string) bool {
	switch name {
	case NameDominanceShift, NameSharedDrain, NameNoEffect:
		return true
	}
	return false
}

// Resolve dispatches to the named resolver.
//
// An unrecognized name is logged and treated as no_effect. Grammar
// validation rejects unknown resolvers upstream; this fallback only guards
// against a grammar that changed on disk after validation.
func Resolve(name string, a, b, magnitude, multiplier, minGap float64) (float64, float64) {
	switch name {
	case NameDominanceShift:
		return DominanceShift(a, b, magnitude, multiplier, minGap)
	case NameSharedDrain:
		return SharedDrain(magnitude, multiplier)
	case NameNoEffect:
		return NoEffect()
	default:
		log.Printf("unknown resolver treated as no_effect resolver=%s", name)
		return NoEffect()
	}
}

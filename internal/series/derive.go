package series

// DefaultStartingEquity is used for normalized-equity derivation when no
// account carries equity data.
const DefaultStartingEquity = 100_000

// PercentReturn converts aligned benchmark prices into percentage returns
// relative to the first non-nil price. Nil positions propagate. When every
// position is nil the result is all nil and the caller should omit the
// series. A zero base yields non-finite values; they are passed through and
// dropped at render time.
func PercentReturn(aligned []*float64) []*float64 {
	base, ok := basePrice(aligned)
	out := make([]*float64, len(aligned))
	if !ok {
		return out
	}
	for i, p := range aligned {
		if p == nil {
			continue
		}
		v := ((*p - base) / base) * 100
		out[i] = &v
	}
	return out
}

// NormalizedEquity scales aligned benchmark prices so the series starts at
// startingEquity, making it directly comparable to an account equity curve.
// Nil handling matches PercentReturn.
func NormalizedEquity(aligned []*float64, startingEquity float64) []*float64 {
	base, ok := basePrice(aligned)
	out := make([]*float64, len(aligned))
	if !ok {
		return out
	}
	for i, p := range aligned {
		if p == nil {
			continue
		}
		v := (*p / base) * startingEquity
		out[i] = &v
	}
	return out
}

// StartingEquity returns the first account's first equity sample, scanning
// past accounts without equity data, or DefaultStartingEquity when none has
// any.
func StartingEquity(equities ...[]float64) float64 {
	for _, eq := range equities {
		if len(eq) > 0 {
			return eq[0]
		}
	}
	return DefaultStartingEquity
}

// AllNil reports whether a derived series carries no drawable value.
func AllNil(values []*float64) bool {
	for _, v := range values {
		if v != nil {
			return false
		}
	}
	return true
}

func basePrice(aligned []*float64) (float64, bool) {
	for _, p := range aligned {
		if p != nil {
			return *p, true
		}
	}
	return 0, false
}

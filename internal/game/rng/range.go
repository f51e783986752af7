package rng

import "time"

// IntBetween returns a uniform random int in [min, max], inclusive of both
// bounds.
//
// Precondition: min <= max; src must be non-nil.
// Postcondition: min <= result <= max.
func IntBetween(src Source, min, max int) int {
	if min > max {
		panic("rng: IntBetween called with min > max")
	}
	if min == max {
		return min
	}
	return min + src.Intn(max-min+1)
}

// DurationBetween returns a uniform random duration in [min, max).
// When min == max the bound itself is returned.
//
// Precondition: 0 <= min <= max; src must be non-nil.
func DurationBetween(src Source, min, max time.Duration) time.Duration {
	if min > max {
		panic("rng: DurationBetween called with min > max")
	}
	if min == max {
		return min
	}
	return min + time.Duration(src.Float64()*float64(max-min))
}

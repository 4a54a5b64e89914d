package geom

import "math"

// RoundToGridUp rounds x up to the next multiple of g. The epsilon keeps
// values like 0.4 (stored as 0.40000000000000002) from jumping a full grid
// step.
func RoundToGridUp(x, g, epsilon float64) float64 {
	if g == 0 {
		return x
	}
	return math.Ceil(x/g-epsilon) * g
}

// RoundToGridDown rounds x down to the previous multiple of g.
func RoundToGridDown(x, g, epsilon float64) float64 {
	if g == 0 {
		return x
	}
	return math.Floor(x/g+epsilon) * g
}

// RoundToGrid rounds x to a multiple of g, always away from zero. This is
// the right rounding for outlines centred on the origin (courtyards,
// silkscreen): the outline can only grow, never cut into the part.
func RoundToGrid(x, g float64) float64 {
	if g == 0 {
		return x
	}
	if x > 0 {
		return roundPlaces(RoundToGridUp(x, g, 0), 6)
	}
	return roundPlaces(RoundToGridDown(x, g, 0), 6)
}

// RoundToGridNearest rounds x to the nearest multiple of g. Use this when
// just rounding off floating point noise.
func RoundToGridNearest(x, g float64) float64 {
	if g == 0 {
		return x
	}
	return roundPlaces(math.Round(x/g)*g, 6)
}

func roundPlaces(x float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(x*shift) / shift
}

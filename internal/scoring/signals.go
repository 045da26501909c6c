package scoring

import "math"

// Logistic curve parameters. Signal calibration uses a moderate slope
// centered at 0.5; founded-year freshness uses a steeper curve centered
// low so that any year past the threshold earns most of the weight.
const (
	signalSteepness = 5.0
	signalMidpoint  = 0.5

	freshnessSteepness = 6.0
	freshnessMidpoint  = 0.2
)

// Logistic maps x through a logistic curve with steepness k centered at x0.
// Raw [0,1] signals are noisy; the curve suppresses weak ambiguous mentions
// and saturates strong ones.
func Logistic(x, k, x0 float64) float64 {
	return 1.0 / (1.0 + math.Exp(-k*(x-x0)))
}

// CalibrateSignal applies the standard signal curve.
func CalibrateSignal(x float64) float64 {
	return Logistic(x, signalSteepness, signalMidpoint)
}

// Momentum derives a composite growth-health score from the three raw
// signals, floored at zero.
func Momentum(funding, expansion, negative float64) float64 {
	return math.Max(0, (funding+expansion-negative)/2)
}

// Freshness maps a founding year into [0,1] recency against the horizon
// year and passes it through the steep freshness curve. Years at or before
// foundedAfter contribute the curve's floor; the horizon year saturates it.
func Freshness(year, foundedAfter, horizon int) float64 {
	span := math.Max(1, float64(horizon-foundedAfter))
	val := float64(year-foundedAfter) / span
	return Logistic(val, freshnessSteepness, freshnessMidpoint)
}

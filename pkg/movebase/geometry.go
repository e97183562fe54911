package movebase

import "math"

// SensorToBody converts a range/bearing reading taken by a sensor mounted
// offset meters ahead of the body origin into range/bearing relative to the
// body origin, using the laws of cosines and sines.
//
// The bearing comes from asin, so it lies in [-π/2, π/2]: a point behind
// the body origin is reported at its mirrored bearing. A reading that is
// not finite or lands on the body origin has no bearing and yields NaN.
func SensorToBody(distance, bearing, offset float64) (float64, float64) {
	gamma := math.Pi - bearing
	dBody := math.Sqrt(offset*offset + distance*distance - 2*offset*distance*math.Cos(gamma))
	if dBody == 0 || math.IsNaN(dBody) || math.IsInf(dBody, 0) {
		return dBody, math.NaN()
	}
	ratio := distance * math.Sin(gamma) / dBody
	return dBody, math.Asin(math.Max(-1, math.Min(1, ratio)))
}

package dataset

import "math"

// Finite maps values JSON cannot carry (missing cells load as NaN) to null.
func Finite(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

// Finites applies Finite to every element. An empty input yields nil.
func Finites(vs []float64) []interface{} {
	if len(vs) == 0 {
		return nil
	}
	out := make([]interface{}, len(vs))
	for i, v := range vs {
		out[i] = Finite(v)
	}
	return out
}

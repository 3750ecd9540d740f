package core

// -----------------------------------------------------------------------------

// Mean computes the arithmetic mean. Empty input yields 0.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// -----------------------------------------------------------------------------

// Ratio returns part/total as a fraction, guarding the empty case.
func Ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}

package vector

// SquaredL2 returns the squared Euclidean distance between two vectors of
// equal length. The square root is skipped since it does not change ordering.
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

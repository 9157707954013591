package utils

func ConstArray(N int, val float64) (v []float64) {
	v = make([]float64, N)
	fill(v, val)
	return
}

// MaxInt returns the largest entry of an integer table, -1 when the table is empty.
func MaxInt(table [][]int) (m int) {
	m = -1
	for _, row := range table {
		for _, val := range row {
			if val > m {
				m = val
			}
		}
	}
	return
}

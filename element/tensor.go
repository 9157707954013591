package element

// Fixed size helpers for the ndim x ndim Jacobian, stored row major in a [9]float64.

func det(J *[9]float64, nd int) float64 {
	switch nd {
	case 2:
		return J[0]*J[3] - J[1]*J[2]
	case 3:
		return J[0]*(J[4]*J[8]-J[5]*J[7]) -
			J[1]*(J[3]*J[8]-J[5]*J[6]) +
			J[2]*(J[3]*J[7]-J[4]*J[6])
	}
	panic("unsupported dimension")
}

// inv writes the inverse of J into Jinv, given its determinant D.
func inv(J, Jinv *[9]float64, D float64, nd int) {
	switch nd {
	case 2:
		Jinv[0] = J[3] / D
		Jinv[1] = -J[1] / D
		Jinv[2] = -J[2] / D
		Jinv[3] = J[0] / D
	case 3:
		Jinv[0] = (J[4]*J[8] - J[5]*J[7]) / D
		Jinv[1] = (J[2]*J[7] - J[1]*J[8]) / D
		Jinv[2] = (J[1]*J[5] - J[2]*J[4]) / D
		Jinv[3] = (J[5]*J[6] - J[3]*J[8]) / D
		Jinv[4] = (J[0]*J[8] - J[2]*J[6]) / D
		Jinv[5] = (J[2]*J[3] - J[0]*J[5]) / D
		Jinv[6] = (J[3]*J[7] - J[4]*J[6]) / D
		Jinv[7] = (J[1]*J[6] - J[0]*J[7]) / D
		Jinv[8] = (J[0]*J[4] - J[1]*J[3]) / D
	default:
		panic("unsupported dimension")
	}
}

// symIndex packs (i, j) of a symmetric tdim x tdim tensor, upper triangle row by row.
func symIndex(i, j, tdim int) int {
	if i > j {
		i, j = j, i
	}
	return i*tdim - i*(i-1)/2 + j - i
}

func symSize(tdim int) int { return tdim * (tdim + 1) / 2 }

// expand2 copies a full or packed symmetric tensor into the full row major buffer T.
func expand2(src []float64, packed bool, tdim int, T []float64) {
	if !packed {
		copy(T, src)
		return
	}
	for i := 0; i < tdim; i++ {
		for j := 0; j < tdim; j++ {
			T[i*tdim+j] = src[symIndex(i, j, tdim)]
		}
	}
}

// expand4 copies a full or packed (ns x ns) fourth order tensor into the full buffer C.
func expand4(src []float64, packed bool, tdim int, C []float64) {
	if !packed {
		copy(C, src)
		return
	}
	var (
		t2 = tdim * tdim
		ns = symSize(tdim)
	)
	for a := 0; a < tdim; a++ {
		for b := 0; b < tdim; b++ {
			I := symIndex(a, b, tdim)
			for c := 0; c < tdim; c++ {
				for d := 0; d < tdim; d++ {
					C[(a*tdim+b)*t2+c*tdim+d] = src[I*ns+symIndex(c, d, tdim)]
				}
			}
		}
	}
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparse(t *testing.T) {
	{ // Test DOK accumulation and CSR products
		A := NewDOK(3, 2)
		A.AddAt(0, 0, 1)
		A.AddAt(0, 0, 2)
		A.AddAt(2, 1, 4)
		A.AddAt(1, 1, 0)
		assert.Equal(t, 3., A.At(0, 0))
		C := A.ToCSR()
		r, c := C.Dims()
		assert.Equal(t, [2]int{3, 2}, [2]int{r, c})
		assert.Equal(t, 2, C.NNZ())
		y := make([]float64, 3)
		C.MulVec([]float64{1, 2}, y)
		assert.Equal(t, []float64{3, 0, 8}, y)
		z := []float64{1, 1}
		C.MulTVecAdd(2, []float64{1, 1, 1}, z)
		assert.Equal(t, []float64{7, 9}, z)
		D := C.ToDense()
		assert.Equal(t, []float64{3, 0, 0, 0, 0, 4}, D.Data())
		w := []float64{1, 1, 1}
		C.MulVecAdd(-.5, []float64{1, 2}, w)
		assert.Equal(t, []float64{-.5, 1, -3}, w)
		assert.Panics(t, func() { C.MulVecAdd(1, []float64{1, 2, 3}, w) })
		assert.Panics(t, func() { C.MulTVecAdd(1, []float64{1, 2}, z) })
	}
	{ // Test the diagonal of a square operator
		A := NewDOK(3, 3)
		A.AddAt(0, 0, 2)
		A.AddAt(0, 2, 5)
		A.AddAt(2, 2, -1)
		A.AddAt(1, 0, 7)
		C := A.ToCSR()
		assert.Equal(t, []float64{2, 0, -1}, C.Diagonal())
		y := make([]float64, 3)
		C.MulVec([]float64{1, 1, 1}, y)
		assert.Equal(t, []float64{7, 7, -1}, y)
	}
	{ // Test read only guard
		A := NewDOK(2, 2)
		A.SetReadOnly("A")
		assert.Panics(t, func() { A.AddAt(0, 0, 1) })
	}
	{ // Test empty operators
		A := NewDOK(0, 3)
		C := A.ToCSR()
		assert.Equal(t, 0, C.NNZ())
		y := []float64{}
		C.MulVec([]float64{1, 2, 3}, y)
		assert.Equal(t, 0, len(C.Diagonal()))
	}
	{ // Test LU solve
		M := NewMatrix(2, 2, []float64{4, 1, 1, 3})
		x, err := M.LUSolve([]float64{1, 2})
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{1. / 11, 7. / 11}, x, 1e-14)
		S := NewMatrix(2, 2, []float64{1, 2, 2, 4})
		_, err = S.LUSolve([]float64{1, 2})
		assert.Error(t, err)
		_, err = M.LUSolve([]float64{1})
		assert.ErrorIs(t, err, ErrShapeMismatch)
	}
}

package utils

import (
	"fmt"
)

/*
Array is a dense row-major block of float64 values with an explicit shape.
All field layouts are carried as an Array:

	nodevec   (nnode, ndim)
	elemvec   (nelem, nne, ndim)
	elemmat   (nelem, nne*ndim, nne*ndim)
	qscalar   (nelem, nip)
	qtensor   (nelem, nip, tdim, tdim)
	qtensor4  (nelem, nip, tdim, tdim, tdim, tdim)
*/
type Array struct {
	Shape []int
	Data  []float64
}

func NewArray(shape ...int) (a Array) {
	a = Array{
		Shape: append([]int(nil), shape...),
		Data:  make([]float64, shapeSize(shape)),
	}
	return
}

func NewArrayFill(val float64, shape ...int) (a Array) {
	a = NewArray(shape...)
	a.Fill(val)
	return
}

// NewArrayFrom wraps data without copying it.
func NewArrayFrom(data []float64, shape ...int) (a Array) {
	mustf(len(data) == shapeSize(shape),
		"mismatch in allocation: shape %v needs %d values, have %d", shape, shapeSize(shape), len(data))
	a = Array{
		Shape: append([]int(nil), shape...),
		Data:  data,
	}
	return
}

func shapeSize(shape []int) (size int) {
	size = 1
	for _, n := range shape {
		mustf(n >= 0, "negative dimension in shape %v", shape)
		size *= n
	}
	return
}

func (a Array) Rank() int      { return len(a.Shape) }
func (a Array) Size() int      { return len(a.Data) }
func (a Array) Dim(i int) int  { return a.Shape[i] }
func (a Array) IsEmpty() bool  { return len(a.Shape) == 0 }
func (a Array) Fill(v float64) { fill(a.Data, v) }

// Stride is the number of values spanned by one step along axis.
func (a Array) Stride(axis int) (s int) {
	s = 1
	for _, n := range a.Shape[axis+1:] {
		s *= n
	}
	return
}

func (a Array) Offset(idx ...int) (ind int) {
	mustf(len(idx) <= len(a.Shape), "index %v exceeds rank of shape %v", idx, a.Shape)
	for i, n := range a.Shape {
		ind *= n
		if i < len(idx) {
			mustf(idx[i] >= 0 && idx[i] < n, "index out of bounds: %v in shape %v", idx, a.Shape)
			ind += idx[i]
		}
	}
	return
}

func (a Array) At(idx ...int) float64     { return a.Data[a.Offset(idx...)] }
func (a Array) Set(v float64, idx ...int) { a.Data[a.Offset(idx...)] = v }
func (a Array) Add(v float64, idx ...int) { a.Data[a.Offset(idx...)] += v }

// Sub returns the bounded view of the block addressed by the leading indices idx.
func (a Array) Sub(idx ...int) []float64 {
	var (
		lo = a.Offset(idx...)
		hi = lo + a.Stride(len(idx)-1)
	)
	return a.Data[lo:hi:hi]
}

func (a Array) Copy() (R Array) {
	R = NewArray(a.Shape...)
	copy(R.Data, a.Data)
	return
}

func (a Array) HasShape(want ...int) bool {
	if len(a.Shape) != len(want) {
		return false
	}
	for i, n := range want {
		if a.Shape[i] != n {
			return false
		}
	}
	return true
}

// CheckShape returns a wrapped ErrShapeMismatch when a does not have shape want.
func (a Array) CheckShape(name string, want ...int) error {
	if !a.HasShape(want...) {
		return ShapeError(name, a.Shape, want)
	}
	return nil
}

func (a Array) String() string {
	return fmt.Sprintf("Array%v%v", a.Shape, a.Data)
}

func fill(v []float64, val float64) {
	for i := range v {
		v[i] = val
	}
}

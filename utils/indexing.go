package utils

import (
	"sort"
)

// Index is an ordered list of integer ids, used for DOF partitions.
type Index []int

func NewIndex(N int) (I Index) {
	return make(Index, N)
}

func NewRange(rmin, rmax int) (r Index) {
	var (
		size = rmax - rmin + 1 // INCLUSIVE RANGE
	)
	if size < 0 {
		size = 0
	}
	r = make(Index, size)
	for i := range r {
		r[i] = i + rmin
	}
	return
}

func (I Index) Add(val int) (r Index) {
	r = make(Index, len(I))
	for i, ival := range I {
		r[i] = val + ival
	}
	return r
}

func (I Index) Subset(J Index) (r Index) {
	r = make(Index, len(J))
	for j, val := range J {
		r[j] = I[val]
	}
	return
}

func (I Index) Copy() (r Index) {
	return append(Index(nil), I...)
}

func (I Index) Sorted() (r Index) {
	r = I.Copy()
	sort.Ints(r)
	return
}

func (I Index) Max() (m int) {
	m = -1
	for _, val := range I {
		if val > m {
			m = val
		}
	}
	return
}

// Unique returns the sorted distinct values of I.
func (I Index) Unique() (r Index) {
	s := I.Sorted()
	for i, val := range s {
		if i == 0 || val != s[i-1] {
			r = append(r, val)
		}
	}
	return
}

// Complement returns the sorted values of [0, N) that are not in I.
func (I Index) Complement(N int) (r Index) {
	present := make([]bool, N)
	for _, val := range I {
		if val >= 0 && val < N {
			present[val] = true
		}
	}
	for i, p := range present {
		if !p {
			r = append(r, i)
		}
	}
	return
}

// Positions maps each value of I to its position in I, values outside I map to -1.
func (I Index) Positions(N int) (pos []int) {
	pos = make([]int, N)
	for i := range pos {
		pos[i] = -1
	}
	for i, val := range I {
		pos[val] = i
	}
	return
}

// Gather returns src[I].
func (I Index) Gather(src []float64) (dst []float64) {
	dst = make([]float64, len(I))
	I.GatherTo(dst, src)
	return
}

func (I Index) GatherTo(dst, src []float64) {
	for i, val := range I {
		dst[i] = src[val]
	}
}

// Scatter writes dst[I] = src.
func (I Index) Scatter(dst, src []float64) {
	for i, val := range I {
		dst[val] = src[i]
	}
}

package tyings

import (
	"fmt"
	"sort"

	"github.com/notargets/femkernel/utils"
)

// Term is one coefficient of a tying relation row.
type Term struct {
	Col  int
	Coef float64
}

/*
Sparse is a row compressed linear relation, used for the tying matrices
Cdu (nnd x nnu), Cdp (nnd x nnp) and Cdi (nnd x nni): row r lists the
independent DOFs, with their coefficients, that dependent DOF r depends on.
*/
type Sparse struct {
	rows, cols int
	rowTerms   [][]Term
}

func NewSparse(rows, cols int) *Sparse {
	return &Sparse{
		rows:     rows,
		cols:     cols,
		rowTerms: make([][]Term, rows),
	}
}

func (s *Sparse) Dims() (r, c int) { return s.rows, s.cols }

func (s *Sparse) check(i, j int) {
	if i < 0 || i >= s.rows || j < 0 || j >= s.cols {
		panic(fmt.Errorf("index (%d, %d) out of range for %d x %d tying relation", i, j, s.rows, s.cols))
	}
}

// Add accumulates v into entry (i, j), rows stay sorted by column.
func (s *Sparse) Add(i, j int, v float64) {
	s.check(i, j)
	if v == 0 {
		return
	}
	row := s.rowTerms[i]
	k := sort.Search(len(row), func(k int) bool { return row[k].Col >= j })
	if k < len(row) && row[k].Col == j {
		row[k].Coef += v
		return
	}
	row = append(row, Term{})
	copy(row[k+1:], row[k:])
	row[k] = Term{Col: j, Coef: v}
	s.rowTerms[i] = row
}

func (s *Sparse) At(i, j int) float64 {
	s.check(i, j)
	for _, t := range s.rowTerms[i] {
		if t.Col == j {
			return t.Coef
		}
	}
	return 0
}

// Row returns the terms of row i, ordered by column.
func (s *Sparse) Row(i int) []Term { return s.rowTerms[i] }

func (s *Sparse) NNZ() (n int) {
	for _, row := range s.rowTerms {
		n += len(row)
	}
	return
}

// MulVecAdd computes y += S*x.
func (s *Sparse) MulVecAdd(x, y []float64) {
	for i, row := range s.rowTerms {
		for _, t := range row {
			y[i] += t.Coef * x[t.Col]
		}
	}
}

// MulTVecAdd computes y += S^T*x.
func (s *Sparse) MulTVecAdd(x, y []float64) {
	for i, row := range s.rowTerms {
		for _, t := range row {
			y[t.Col] += t.Coef * x[i]
		}
	}
}

// HStack returns [s, o], the columns of o shifted by the column count of s.
func (s *Sparse) HStack(o *Sparse) (R *Sparse) {
	if s.rows != o.rows {
		panic(fmt.Errorf("row mismatch stacking %d and %d rows", s.rows, o.rows))
	}
	R = NewSparse(s.rows, s.cols+o.cols)
	for i := 0; i < s.rows; i++ {
		R.rowTerms[i] = append(R.rowTerms[i], s.rowTerms[i]...)
		for _, t := range o.rowTerms[i] {
			R.rowTerms[i] = append(R.rowTerms[i], Term{Col: t.Col + s.cols, Coef: t.Coef})
		}
	}
	return
}

// SplitCols returns the first col columns of s and the remaining ones.
func (s *Sparse) SplitCols(col int) (left, right *Sparse) {
	left, right = NewSparse(s.rows, col), NewSparse(s.rows, s.cols-col)
	for i, row := range s.rowTerms {
		for _, t := range row {
			if t.Col < col {
				left.rowTerms[i] = append(left.rowTerms[i], t)
			} else {
				right.rowTerms[i] = append(right.rowTerms[i], Term{Col: t.Col - col, Coef: t.Coef})
			}
		}
	}
	return
}

// ToDOK copies the relation into a sparse DOK matrix.
func (s *Sparse) ToDOK() (R utils.DOK) {
	R = utils.NewDOK(s.rows, s.cols)
	for i, row := range s.rowTerms {
		for _, t := range row {
			R.AddAt(i, t.Col, t.Coef)
		}
	}
	return
}

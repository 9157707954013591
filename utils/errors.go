package utils

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds reported by the kernel. Call sites wrap these with context, test with errors.Is.
var (
	ErrShapeMismatch     = errors.New("shape mismatch")
	ErrDegenerateElement = errors.New("degenerate element")
	ErrUnsupportedConfig = errors.New("unsupported configuration")
	ErrNotConverged      = errors.New("iteration did not converge")
)

// ShapeError wraps ErrShapeMismatch with the offending and the expected shapes.
func ShapeError(name string, have, want []int) error {
	return errors.Wrapf(ErrShapeMismatch, "%s: have shape %v, want %v", name, have, want)
}

// CheckRectangular verifies that every row of an integer table has width cols.
func CheckRectangular(name string, table [][]int, cols int) error {
	for i, row := range table {
		if len(row) != cols {
			return errors.Wrapf(ErrShapeMismatch, "%s: row %d has %d entries, want %d", name, i, len(row), cols)
		}
	}
	return nil
}

func mustf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Errorf(format, args...))
	}
}

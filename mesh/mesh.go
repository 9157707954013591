package mesh

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/notargets/femkernel/utils"
)

// Dofs numbers the components of every node sequentially: dofs[n][i] = n*ndim + i.
func Dofs(nnode, ndim int) (dofs [][]int) {
	dofs = make([][]int, nnode)
	for n := range dofs {
		dofs[n] = make([]int, ndim)
		for i := range dofs[n] {
			dofs[n][i] = n*ndim + i
		}
	}
	return
}

func copyTable(table [][]int) (out [][]int) {
	out = make([][]int, len(table))
	for i, row := range table {
		out[i] = append([]int(nil), row...)
	}
	return
}

// Renumber maps the DOF ids onto the lowest possible range [0, ndof), keeping their relative order.
func Renumber(dofs [][]int) (out [][]int) {
	var (
		all utils.Index
	)
	for _, row := range dofs {
		all = append(all, row...)
	}
	unique := all.Unique()
	renum := make(map[int]int, len(unique))
	for i, val := range unique {
		renum[val] = i
	}
	out = copyTable(dofs)
	for _, row := range out {
		for i, val := range row {
			row[i] = renum[val]
		}
	}
	return
}

/*
Reorder renumbers the DOFs such that the ids in sets[0] come first, in the order
given, followed by those of sets[1], and so on. The sets must partition the DOF ids.
*/
func Reorder(dofs [][]int, sets ...utils.Index) (out [][]int, err error) {
	var (
		ndof  = utils.MaxInt(dofs) + 1
		renum = make([]int, ndof)
		next  int
	)
	for i := range renum {
		renum[i] = -1
	}
	for _, set := range sets {
		for _, d := range set {
			if d < 0 || d >= ndof || renum[d] != -1 {
				err = errors.Wrapf(utils.ErrShapeMismatch, "reorder: DOF %d is out of range or listed twice", d)
				return
			}
			renum[d] = next
			next++
		}
	}
	if next != ndof {
		err = errors.Wrapf(utils.ErrShapeMismatch, "reorder: sets cover %d of %d DOFs", next, ndof)
		return
	}
	out = copyTable(dofs)
	for _, row := range out {
		for i, val := range row {
			row[i] = renum[val]
		}
	}
	return
}

// Coordination counts the elements connected to every node.
func Coordination(conn [][]int, nnode int) (N []int) {
	N = make([]int, nnode)
	for _, row := range conn {
		for _, n := range row {
			N[n]++
		}
	}
	return
}

// Elem2Node lists, sorted, the elements connected to every node.
func Elem2Node(conn [][]int, nnode int) (out [][]int) {
	out = make([][]int, nnode)
	for e, row := range conn {
		for _, n := range row {
			out[n] = append(out[n], e)
		}
	}
	for _, elems := range out {
		sort.Ints(elems)
	}
	return
}

// DofsPeriodic ties the DOFs of every dependent node to those of its independent partner.
func DofsPeriodic(dofs [][]int, nodesPeriodic [][2]int) (out [][]int) {
	out = copyTable(dofs)
	for _, pair := range nodesPeriodic {
		copy(out[pair[1]], out[pair[0]])
	}
	return Renumber(out)
}

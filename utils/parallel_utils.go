package utils

import (
	"runtime"

	"github.com/viterin/vek"
	"golang.org/x/sync/errgroup"
)

type PartitionMap struct {
	MaxIndex       int // MaxIndex is partitioned into ParallelDegree partitions
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

// ParallelDegree picks the number of go routines for Kmax items, ProcLimit == 0 means one per CPU.
func ParallelDegree(ProcLimit, Kmax int) (np int) {
	if ProcLimit > 0 {
		np = ProcLimit
	} else {
		np = runtime.NumCPU()
	}
	if np > Kmax {
		np = 1
	}
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketDimension(bn int) (kMax int) {
	if bn == -1 {
		kMax = pm.MaxIndex
		return
	}
	var (
		k1, k2 = pm.GetBucketRange(bn)
	)
	kMax = k2 - k1
	return
}

func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	// This routine splits one dimension into c.ParallelDegree pieces, with a maximum imbalance of one item
	var (
		Npart            = pm.MaxIndex / (pm.ParallelDegree)
		startAdd, endAdd int
		remainder        int
	)
	remainder = pm.MaxIndex % pm.ParallelDegree
	if remainder != 0 { // spread the remainder over the first chunks evenly
		if threadNum+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = threadNum
			endAdd = 1
		}
	}
	bucket[0] = threadNum*Npart + startAdd
	bucket[1] = bucket[0] + Npart + endAdd
	return
}

// Run calls fn once per bucket, each in its own go routine, and returns the first error.
// fn must only write to outputs owned by items in [kMin, kMax).
func (pm *PartitionMap) Run(fn func(bn, kMin, kMax int) error) error {
	if pm.ParallelDegree == 1 {
		return fn(0, pm.Partitions[0][0], pm.Partitions[0][1])
	}
	var g errgroup.Group
	for np := 0; np < pm.ParallelDegree; np++ {
		np := np
		g.Go(func() error {
			kMin, kMax := pm.GetBucketRange(np)
			return fn(np, kMin, kMax)
		})
	}
	return g.Wait()
}

/*
Reduce runs fn per bucket into a private zeroed buffer of length n, then sums the buffers
into dst in bucket order. The summation order only depends on the partitioning, so
results are reproducible for a fixed ParallelDegree.
*/
func (pm *PartitionMap) Reduce(dst []float64, fn func(bn, kMin, kMax int, buf []float64)) {
	if pm.ParallelDegree == 1 {
		fill(dst, 0)
		fn(0, pm.Partitions[0][0], pm.Partitions[0][1], dst)
		return
	}
	bufs := make([][]float64, pm.ParallelDegree)
	_ = pm.Run(func(bn, kMin, kMax int) error {
		bufs[bn] = make([]float64, len(dst))
		fn(bn, kMin, kMax, bufs[bn])
		return nil
	})
	copy(dst, bufs[0])
	for _, buf := range bufs[1:] {
		vek.Add_Inplace(dst, buf)
	}
}

package utils

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	{ // Test PartitionMap
		getHisto := func(K, Np int) (histo map[int]int) {
			pm := NewPartitionMap(Np, K)
			histo = make(map[int]int)
			for np := 0; np < pm.ParallelDegree; np++ {
				k1, k2 := pm.GetBucketRange(np)
				histo[k2-k1]++
			}
			return
		}
		getTotal := func(histo map[int]int) (total int) {
			for key, count := range histo {
				total += key * count
			}
			return
		}
		assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
		assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
		assert.Equal(t, map[int]int{8: 32}, getHisto(256, 32))
		assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
		assert.Equal(t, 287, getTotal(getHisto(287, 32)))
		for n := 64; n < 2000; n++ {
			var (
				keys   [2]float64
				keyNum int
			)
			histo := getHisto(n, 32)
			for key := range histo {
				keys[keyNum] = float64(key)
				keyNum++
			}
			if keyNum == 2 {
				assert.Equal(t, 1., math.Abs(keys[0]-keys[1])) // Maximum imbalance of 1
			}
			assert.Equal(t, n, getTotal(histo))
		}
	}
	{ // Buckets tile [0, MaxIndex) in order
		for maxIndex := 10; maxIndex < 300; maxIndex++ {
			var (
				pm   = NewPartitionMap(5, maxIndex)
				next int
			)
			for bn := 0; bn < pm.ParallelDegree; bn++ {
				k1, k2 := pm.GetBucketRange(bn)
				assert.Equal(t, next, k1)
				assert.True(t, k2 >= k1)
				next = k2
			}
			assert.Equal(t, maxIndex, next)
		}
	}
}

func TestParallelFor(t *testing.T) {
	{ // Every slot is written exactly once regardless of the degree
		for _, np := range []int{1, 3, 8, 100} {
			out := make([]int, 37)
			err := ParallelFor(np, len(out), func(bn, k1, k2 int) error {
				for k := k1; k < k2; k++ {
					out[k] += k * k
				}
				return nil
			})
			assert.NoError(t, err)
			for k, v := range out {
				assert.Equal(t, k*k, v)
			}
		}
	}
	{ // The first failing bucket wins
		errA, errB := errors.New("a"), errors.New("b")
		err := ParallelFor(4, 40, func(bn, k1, k2 int) error {
			switch bn {
			case 1:
				return errA
			case 3:
				return errB
			}
			return nil
		})
		assert.ErrorIs(t, err, errA)
	}
	{
		assert.NoError(t, ParallelFor(4, 0, func(bn, k1, k2 int) error {
			panic("must not be called")
		}))
	}
}

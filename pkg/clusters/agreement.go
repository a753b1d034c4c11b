package clusters

import (
	"math"
	"sort"

	"github.com/gilchrisn/reaction-network-analysis/pkg/models"
)

// NormalizedMutualInfo measures how closely two partitions agree, each given as a
// molecule -> community map. Only molecules present in both are compared. The
// mutual information (bits) is divided by the mean entropy of the two partitions,
// so 1 means identical groupings up to relabelling. Two single-community
// partitions score 1.
func NormalizedMutualInfo(a, b map[string]int) (float64, error) {
	shared := make([]string, 0, len(a))
	for m := range a {
		if _, ok := b[m]; ok {
			shared = append(shared, m)
		}
	}
	if len(shared) == 0 {
		return 0, models.InsufficientDataError{Statistic: "normalized mutual information", Need: "at least 1 shared molecule", Have: 0}
	}
	sort.Strings(shared)

	n := float64(len(shared))
	joint := make(map[[2]int]int)
	countA := make(map[int]int)
	countB := make(map[int]int)
	for _, m := range shared {
		ca, cb := a[m], b[m]
		joint[[2]int{ca, cb}]++
		countA[ca]++
		countB[cb]++
	}

	keys := make([][2]int, 0, len(joint))
	for k := range joint {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	mi := 0.0
	for _, k := range keys {
		nij := float64(joint[k])
		ni, nj := float64(countA[k[0]]), float64(countB[k[1]])
		mi += nij / n * math.Log2(nij*n/(ni*nj))
	}

	mean := (entropy(countA, n) + entropy(countB, n)) / 2
	if mean == 0 {
		return 1, nil
	}
	// rounding can push identical partitions a hair above 1
	return math.Min(mi/mean, 1), nil
}

func entropy(counts map[int]int, n float64) float64 {
	ids := make([]int, 0, len(counts))
	for c := range counts {
		ids = append(ids, c)
	}
	sort.Ints(ids)

	h := 0.0
	for _, c := range ids {
		p := float64(counts[c]) / n
		h -= p * math.Log2(p)
	}
	return h
}

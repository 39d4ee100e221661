// Package similarity ranks stored vectors against a query vector.
package similarity

import "sort"

// Dot returns the dot product over the common prefix of a and b. For
// L2-normalized vectors this is the cosine similarity.
func Dot(a, b []float64) float64 {
	n := min(len(a), len(b))
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// TopK returns the indexes of the k highest scores, best first. Equal scores
// keep their original order.
func TopK(scores []float64, k int) []int {
	idxs := make([]int, len(scores))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return scores[idxs[a]] > scores[idxs[b]] })
	if k < len(idxs) {
		idxs = idxs[:k]
	}
	return idxs
}

package grow

import (
	"container/heap"
	"math"
	"sort"

	mapset "github.com/deckarep/golang-set"
)

type scoredSplit struct {
	score float64
	index int
}

// worstHeap is a min-heap on (score, index): its top is the best of the
// candidates kept so far, the first to go when a worse one shows up.
type worstHeap []scoredSplit

func (h worstHeap) Len() int { return len(h) }
func (h worstHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score < h[j].score
	}
	return h[i].index < h[j].index
}
func (h worstHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *worstHeap) Push(x interface{}) {
	*h = append(*h, x.(scoredSplit))
}

func (h *worstHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// worstSplits returns the indices of the toRemove highest scores, highest
// index first.
func worstSplits(scores []float64, toRemove int) []int {
	if toRemove <= 0 {
		return nil
	}
	worst := &worstHeap{}
	indices := mapset.NewThreadUnsafeSet()
	for i, score := range scores {
		if worst.Len() < toRemove {
			heap.Push(worst, scoredSplit{score: score, index: i})
			indices.Add(i)
		} else if (*worst)[0].score < score {
			indices.Remove((*worst)[0].index)
			heap.Pop(worst)
			heap.Push(worst, scoredSplit{score: score, index: i})
			indices.Add(i)
		}
	}
	return descending(indices)
}

// dominatedSplits returns, highest index first, the candidates whose score is
// more than epsilon above the best one.
func dominatedSplits(scores []float64, epsilon float64) []int {
	best := math.MaxFloat64
	for _, score := range scores {
		if score < best {
			best = score
		}
	}
	var out []int
	for i := len(scores) - 1; i >= 0; i-- {
		if scores[i]-best > epsilon {
			out = append(out, i)
		}
	}
	return out
}

func descending(set mapset.Set) []int {
	out := make([]int, 0, set.Cardinality())
	for _, v := range set.ToSlice() {
		out = append(out, v.(int))
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

package grow

import (
	"github.com/Roche85/tensorforest/decision_tree/model"
	"github.com/Roche85/tensorforest/decision_tree/param/conf_forest"
)

// SparseClassificationStats keeps class counts in maps keyed by class id, for
// label spaces too large for dense arrays. Entries appear on first use.
type SparseClassificationStats struct {
	*ClassificationStats

	totalCounts map[int32]float64
	leftCounts  []map[int32]float64
}

func NewSparseClassificationStats(params *conf_forest.Params, depth int32, opts ...Option) (*SparseClassificationStats, error) {
	s := &SparseClassificationStats{}
	stats, err := newClassificationStats(params, depth, s, buildOptions(params.Seed, opts))
	if err != nil {
		return nil, err
	}
	s.ClassificationStats = stats
	s.clearInternal()
	return s, nil
}

func (s *SparseClassificationStats) addSplitStats() {
	s.leftCounts = append(s.leftCounts, make(map[int32]float64))
}

func (s *SparseClassificationStats) removeSplitStats(i int) {
	s.leftCounts = removeAt(s.leftCounts, i)
}

func (s *SparseClassificationStats) clearInternal() {
	s.totalCounts = make(map[int32]float64)
	s.leftCounts = nil
}

func (s *SparseClassificationStats) validLabel(label int32) bool {
	return label >= 0
}

func (s *SparseClassificationStats) addLeftExample(split int, label int32, w float64) {
	s.leftCounts[split][label] += w
}

func (s *SparseClassificationStats) addTotalExample(label int32, w float64) {
	s.totalCounts[label] += w
}

func (s *SparseClassificationStats) leftCount(split int, label int32) float64 {
	return s.leftCounts[split][label]
}

func (s *SparseClassificationStats) rightCount(split int, label int32) float64 {
	return s.totalCounts[label] - s.leftCounts[split][label]
}

// sideSums only visits classes the leaf has seen. A class missing from the
// left map is entirely on the right.
func (s *SparseClassificationStats) sideSums(split int) (leftSum, leftSquare, rightSum, rightSquare float64) {
	leftCounts := s.leftCounts[split]
	for label, total := range s.totalCounts {
		left := leftCounts[label]
		right := total - left
		leftSum += left
		leftSquare += left * left
		rightSum += right
		rightSquare += right * right
	}
	return leftSum, leftSquare, rightSum, rightSquare
}

func (s *SparseClassificationStats) numOutputsSeen() int {
	return len(s.totalCounts)
}

// TotalCounts returns a copy of the per-class weights of the leaf.
func (s *SparseClassificationStats) TotalCounts() map[int32]float64 {
	return copyCounts(s.totalCounts)
}

// LeftCounts returns a copy of the left side class weights of a split.
func (s *SparseClassificationStats) LeftCounts(split int) map[int32]float64 {
	return copyCounts(s.leftCounts[split])
}

// RightCounts returns the classes with positive weight on the right side of a split.
func (s *SparseClassificationStats) RightCounts(split int) map[int32]float64 {
	out := make(map[int32]float64)
	for label, total := range s.totalCounts {
		left, ok := s.leftCounts[split][label]
		if !ok {
			out[label] = total
		} else if right := total - left; right > 0 {
			out[label] = right
		}
	}
	return out
}

func (s *SparseClassificationStats) BestSplit(best *model.SplitCandidate) bool {
	index, leftSum, rightSum := s.bestIndex()
	if index < 0 {
		return false
	}
	best.Split = s.splits[index].Clone()

	leftCounts := make(map[int32]float64)
	for label := range s.totalCounts {
		if left, ok := s.leftCounts[index][label]; ok {
			leftCounts[label] = left
		}
	}
	left := best.MutableLeftStats()
	left.WeightSum = leftSum
	left.MutableClassification().SparseCounts = leftCounts

	right := best.MutableRightStats()
	right.WeightSum = rightSum
	right.MutableClassification().SparseCounts = s.RightCounts(index)
	return true
}

func (s *SparseClassificationStats) ExtractFromProto(slot *model.FertileSlot) {
	s.Initialize()
	if slot.PostInitLeafStats == nil {
		return
	}
	s.weightSum.Reset(slot.PostInitLeafStats.WeightSum)
	if cls := slot.PostInitLeafStats.Classification; cls != nil {
		for label, count := range cls.SparseCounts {
			s.totalCounts[label] = count
		}
	}

	for _, cand := range slot.Candidates {
		if cand == nil || cand.Split == nil {
			continue
		}
		s.AddSplit(cand.Split)
		splitNum := s.NumSplits() - 1
		if cls := leftStatsOf(cand).Classification; cls != nil {
			for label, count := range cls.SparseCounts {
				s.leftCounts[splitNum][label] = count
			}
		}
		s.seedRunningGini(splitNum)
	}
}

func (s *SparseClassificationStats) PackToProto(slot *model.FertileSlot) {
	stats := slot.MutablePostInitLeafStats()
	stats.WeightSum = s.WeightSum()
	stats.MutableClassification().SparseCounts = s.TotalCounts()

	for i, split := range s.splits {
		cand := slot.AddCandidate()
		cand.Split = split.Clone()
		leftSum := 0.0
		for _, count := range s.leftCounts[i] {
			leftSum += count
		}
		cand.LeftStats.WeightSum = leftSum
		cand.LeftStats.MutableClassification().SparseCounts = s.LeftCounts(i)
	}
}

func copyCounts(counts map[int32]float64) map[int32]float64 {
	out := make(map[int32]float64, len(counts))
	for k, v := range counts {
		out[k] = v
	}
	return out
}

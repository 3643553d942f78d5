package grow

import (
	"github.com/Roche85/tensorforest/decision_tree/model"
	"github.com/Roche85/tensorforest/decision_tree/param/conf_forest"
	"github.com/yourbasic/bit"
	"gonum.org/v1/gonum/floats"
)

// DenseClassificationStats keeps class counts in arrays of width NumOutputs.
// Right counts are never stored, they are total minus left.
type DenseClassificationStats struct {
	*ClassificationStats

	totalCounts []float64
	leftCounts  [][]float64
	seen        *bit.Set

	scratch []float64
}

func NewDenseClassificationStats(params *conf_forest.Params, depth int32, opts ...Option) (*DenseClassificationStats, error) {
	d := &DenseClassificationStats{}
	stats, err := newClassificationStats(params, depth, d, buildOptions(params.Seed, opts))
	if err != nil {
		return nil, err
	}
	d.ClassificationStats = stats
	d.clearInternal()
	return d, nil
}

func (d *DenseClassificationStats) addSplitStats() {
	d.leftCounts = append(d.leftCounts, make([]float64, len(d.totalCounts)))
}

func (d *DenseClassificationStats) removeSplitStats(i int) {
	d.leftCounts = removeAt(d.leftCounts, i)
}

func (d *DenseClassificationStats) clearInternal() {
	d.totalCounts = make([]float64, d.numOutputs)
	d.scratch = make([]float64, d.numOutputs)
	d.leftCounts = nil
	d.seen = bit.New()
}

func (d *DenseClassificationStats) validLabel(label int32) bool {
	return label >= 0 && int(label) < len(d.totalCounts)
}

func (d *DenseClassificationStats) addLeftExample(split int, label int32, w float64) {
	d.leftCounts[split][label] += w
}

func (d *DenseClassificationStats) addTotalExample(label int32, w float64) {
	if w > 0 {
		d.seen.Add(int(label))
	}
	d.totalCounts[label] += w
}

func (d *DenseClassificationStats) leftCount(split int, label int32) float64 {
	return d.leftCounts[split][label]
}

func (d *DenseClassificationStats) rightCount(split int, label int32) float64 {
	return d.totalCounts[label] - d.leftCounts[split][label]
}

func (d *DenseClassificationStats) sideSums(split int) (leftSum, leftSquare, rightSum, rightSquare float64) {
	left := d.leftCounts[split]
	right := floats.SubTo(d.scratch, d.totalCounts, left)
	return floats.Sum(left), floats.Dot(left, left), floats.Sum(right), floats.Dot(right, right)
}

func (d *DenseClassificationStats) numOutputsSeen() int {
	return d.seen.Size()
}

// TotalCounts returns a copy of the per-class weights of the leaf.
func (d *DenseClassificationStats) TotalCounts() []float64 {
	return append([]float64(nil), d.totalCounts...)
}

// LeftCounts returns a copy of the left side class weights of a split.
func (d *DenseClassificationStats) LeftCounts(split int) []float64 {
	return append([]float64(nil), d.leftCounts[split]...)
}

// RightCounts returns the right side class weights of a split.
func (d *DenseClassificationStats) RightCounts(split int) []float64 {
	return floats.SubTo(make([]float64, len(d.totalCounts)), d.totalCounts, d.leftCounts[split])
}

func (d *DenseClassificationStats) BestSplit(best *model.SplitCandidate) bool {
	index, leftSum, rightSum := d.bestIndex()
	if index < 0 {
		return false
	}
	best.Split = d.splits[index].Clone()

	left := best.MutableLeftStats()
	left.WeightSum = leftSum
	left.MutableClassification().DenseCounts = d.LeftCounts(index)

	right := best.MutableRightStats()
	right.WeightSum = rightSum
	right.MutableClassification().DenseCounts = d.RightCounts(index)
	return true
}

func (d *DenseClassificationStats) ExtractFromProto(slot *model.FertileSlot) {
	d.Initialize()
	if slot.PostInitLeafStats == nil {
		return
	}
	d.weightSum.Reset(slot.PostInitLeafStats.WeightSum)
	if cls := slot.PostInitLeafStats.Classification; cls != nil {
		for i := 0; i < len(d.totalCounts) && i < len(cls.DenseCounts); i++ {
			d.totalCounts[i] = cls.DenseCounts[i]
			if d.totalCounts[i] != 0 {
				d.seen.Add(i)
			}
		}
	}

	for _, cand := range slot.Candidates {
		if cand == nil || cand.Split == nil {
			continue
		}
		d.AddSplit(cand.Split)
		splitNum := d.NumSplits() - 1
		if cls := leftStatsOf(cand).Classification; cls != nil {
			copy(d.leftCounts[splitNum], cls.DenseCounts)
		}
		d.seedRunningGini(splitNum)
	}
}

func (d *DenseClassificationStats) PackToProto(slot *model.FertileSlot) {
	stats := slot.MutablePostInitLeafStats()
	stats.WeightSum = d.WeightSum()
	stats.MutableClassification().DenseCounts = d.TotalCounts()

	for i, split := range d.splits {
		cand := slot.AddCandidate()
		cand.Split = split.Clone()
		cand.LeftStats.WeightSum = floats.Sum(d.leftCounts[i])
		cand.LeftStats.MutableClassification().DenseCounts = d.LeftCounts(i)
	}
}

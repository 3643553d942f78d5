package grow

import (
	"math"

	"github.com/Roche85/tensorforest/decision_tree/ml/tree"
	"github.com/Roche85/tensorforest/decision_tree/model"
	"github.com/Roche85/tensorforest/decision_tree/param/conf_forest"
)

// LeastSquaresRegressionStats keeps per-output sums and sums of squares.
// Every example weighs 1 and the leaf only finishes on split_after_samples.
type LeastSquaresRegressionStats struct {
	*GrowStats

	totalSum     []float64
	totalSquares []float64
	leftSums     [][]float64
	leftSquares  [][]float64
	leftCounts   []float64
}

func NewLeastSquaresRegressionStats(params *conf_forest.Params, depth int32) *LeastSquaresRegressionStats {
	r := &LeastSquaresRegressionStats{}
	r.GrowStats = newGrowStats(params, depth, r)
	r.clearInternal()
	return r
}

func (r *LeastSquaresRegressionStats) addSplitStats() {
	r.leftSums = append(r.leftSums, make([]float64, r.numOutputs))
	r.leftSquares = append(r.leftSquares, make([]float64, r.numOutputs))
	r.leftCounts = append(r.leftCounts, 0)
}

func (r *LeastSquaresRegressionStats) removeSplitStats(i int) {
	r.leftSums = removeAt(r.leftSums, i)
	r.leftSquares = removeAt(r.leftSquares, i)
	r.leftCounts = removeAt(r.leftCounts, i)
}

func (r *LeastSquaresRegressionStats) clearInternal() {
	r.totalSum = make([]float64, r.numOutputs)
	r.totalSquares = make([]float64, r.numOutputs)
	r.leftSums = nil
	r.leftSquares = nil
	r.leftCounts = nil
}

func (r *LeastSquaresRegressionStats) AddExample(data tree.DataSet, target tree.Target, example int) {
	for i := range r.splits {
		if r.decide(i, data, example) != tree.LEFT {
			continue
		}
		for j := 0; j < r.numOutputs; j++ {
			output := target.Continuous(example, j)
			r.leftSums[i][j] += output
			r.leftSquares[i][j] += output * output
		}
		r.leftCounts[i]++
	}

	for j := 0; j < r.numOutputs; j++ {
		output := target.Continuous(example, j)
		r.totalSum[j] += output
		r.totalSquares[j] += output * output
	}
	r.weightSum.Add(1)
}

func (r *LeastSquaresRegressionStats) IsFinished() bool {
	return r.WeightSum() >= r.splitAfterSamples
}

// SplitVariance sums, over outputs, the variance of each side. Both sides
// must have weight.
func (r *LeastSquaresRegressionStats) SplitVariance(split int) float64 {
	leftCount := r.leftCounts[split]
	rightCount := r.WeightSum() - leftCount
	total := 0.0
	for i := 0; i < r.numOutputs; i++ {
		leftMean := r.leftSums[split][i] / leftCount
		leftMeanSquare := r.leftSquares[split][i] / leftCount
		total += math.Max(0, leftMeanSquare-leftMean*leftMean)

		rightMean := (r.totalSum[i] - r.leftSums[split][i]) / rightCount
		rightMeanSquare := (r.totalSquares[i] - r.leftSquares[split][i]) / rightCount
		total += math.Max(0, rightMeanSquare-rightMean*rightMean)
	}
	return total
}

func (r *LeastSquaresRegressionStats) candidateScore(split int) (score, leftSum, rightSum float64) {
	leftSum = r.leftCounts[split]
	rightSum = r.WeightSum() - leftSum
	if leftSum <= 0 || rightSum <= 0 {
		return math.NaN(), leftSum, rightSum
	}
	return r.SplitVariance(split), leftSum, rightSum
}

func (r *LeastSquaresRegressionStats) BestSplit(best *model.SplitCandidate) bool {
	index := -1
	minScore := math.MaxFloat64
	for i := range r.splits {
		if r.leftCounts[i] > 0 && r.WeightSum()-r.leftCounts[i] > 0 {
			if score := r.SplitVariance(i); score < minScore {
				minScore = score
				index = i
			}
		}
	}
	if index < 0 {
		return false
	}
	best.Split = r.splits[index].Clone()

	left := best.MutableLeftStats()
	left.WeightSum = r.leftCounts[index]
	leftReg := left.MutableRegression()
	leftReg.MeanOutput = append([]float64(nil), r.leftSums[index]...)
	leftReg.MeanOutputSquares = append([]float64(nil), r.leftSquares[index]...)

	right := best.MutableRightStats()
	right.WeightSum = r.WeightSum() - r.leftCounts[index]
	rightReg := right.MutableRegression()
	rightReg.MeanOutput = make([]float64, r.numOutputs)
	rightReg.MeanOutputSquares = make([]float64, r.numOutputs)
	for i := 0; i < r.numOutputs; i++ {
		rightReg.MeanOutput[i] = r.totalSum[i] - r.leftSums[index][i]
		rightReg.MeanOutputSquares[i] = r.totalSquares[i] - r.leftSquares[index][i]
	}
	return true
}

func (r *LeastSquaresRegressionStats) ExtractFromProto(slot *model.FertileSlot) {
	r.Initialize()
	if slot.PostInitLeafStats == nil {
		return
	}
	r.weightSum.Reset(slot.PostInitLeafStats.WeightSum)
	if reg := slot.PostInitLeafStats.Regression; reg != nil {
		copy(r.totalSum, reg.MeanOutput)
		copy(r.totalSquares, reg.MeanOutputSquares)
	}

	for _, cand := range slot.Candidates {
		if cand == nil || cand.Split == nil {
			continue
		}
		r.AddSplit(cand.Split)
		splitNum := r.NumSplits() - 1
		leftStats := leftStatsOf(cand)
		if reg := leftStats.Regression; reg != nil {
			copy(r.leftSums[splitNum], reg.MeanOutput)
			copy(r.leftSquares[splitNum], reg.MeanOutputSquares)
		}
		r.leftCounts[splitNum] = leftStats.WeightSum
	}
}

func (r *LeastSquaresRegressionStats) PackToProto(slot *model.FertileSlot) {
	stats := slot.MutablePostInitLeafStats()
	stats.WeightSum = r.WeightSum()
	reg := stats.MutableRegression()
	reg.MeanOutput = append([]float64(nil), r.totalSum...)
	reg.MeanOutputSquares = append([]float64(nil), r.totalSquares...)

	for i, split := range r.splits {
		cand := slot.AddCandidate()
		cand.Split = split.Clone()
		cand.LeftStats.WeightSum = r.leftCounts[i]
		left := cand.LeftStats.MutableRegression()
		left.MeanOutput = append([]float64(nil), r.leftSums[i]...)
		left.MeanOutputSquares = append([]float64(nil), r.leftSquares[i]...)
	}
}

// TotalSum returns a copy of the per-output sums over the leaf.
func (r *LeastSquaresRegressionStats) TotalSum() []float64 {
	return append([]float64(nil), r.totalSum...)
}

// TotalSquares returns a copy of the per-output sums of squares over the leaf.
func (r *LeastSquaresRegressionStats) TotalSquares() []float64 {
	return append([]float64(nil), r.totalSquares...)
}

// LeftStats returns copies of the left sums, left squares and left count of a split.
func (r *LeastSquaresRegressionStats) LeftStats(split int) (sums, squares []float64, count float64) {
	return append([]float64(nil), r.leftSums[split]...), append([]float64(nil), r.leftSquares[split]...), r.leftCounts[split]
}

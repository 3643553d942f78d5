package tree

import "github.com/Roche85/tensorforest/decision_tree/util/add"

// WeightedGini is the gini impurity of one side scaled by the side's weight:
// sum * (1 - Σ(c/sum)²) = sum - square/sum. An empty side scores 0.
func WeightedGini(sum, square float64) float64 {
	if sum <= 0 {
		return 0
	}
	g := sum - square/sum
	if g < 0 {
		// rounding on pure sides
		return 0
	}
	return g
}

// WeightedGiniOfCounts computes WeightedGini from per-class weights.
func WeightedGiniOfCounts(counts []float64) float64 {
	sum, square := add.NewFloatAdder(), add.NewFloatAdder()
	for _, c := range counts {
		sum.Add(c)
		square.Add(c * c)
	}
	return WeightedGini(sum.Result(), square.Result())
}

// Gini is the unweighted impurity 1 - Σp² of a count map, together with its total weight.
func Gini(countMap map[int32]float64) (impurity float64, sum float64) {
	sumAdder, squareAdder := add.NewFloatAdder(), add.NewFloatAdder()
	for _, count := range countMap {
		sumAdder.Add(count)
		squareAdder.Add(count * count)
	}
	sum = sumAdder.Result()
	if sum <= 0 {
		return 0, 0
	}
	return 1 - squareAdder.Result()/(sum*sum), sum
}

package grow

import (
	"github.com/Roche85/tensorforest/decision_tree/ml/tree"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// maxBootstrapSamples bounds NumBootstrapSamples when the dominate fraction is 1.
const maxBootstrapSamples = 64

// Sampler draws an outcome index from a fixed discrete distribution.
type Sampler interface {
	Sample() int
}

// SamplerFactory builds a Sampler over unnormalised weights, drawing from src.
type SamplerFactory func(weights []float64, src rand.Source) Sampler

type categoricalSampler struct {
	dist distuv.Categorical
}

func (s categoricalSampler) Sample() int {
	return int(s.dist.Rand())
}

// CategoricalSampler is the default SamplerFactory.
func CategoricalSampler(weights []float64, src rand.Source) Sampler {
	return categoricalSampler{dist: distuv.NewCategorical(weights, src)}
}

// numBootstrapSamples doubles 1-dominate until it reaches 1 and counts the
// steps, starting at 1.
func numBootstrapSamples(dominate float64) int {
	p := 1 - dominate
	n := 1
	for p < 1 && n < maxBootstrapSamples {
		n++
		p *= 2
	}
	return n
}

// bootstrapWeights are the Laplace smoothed class probabilities of both sides
// of a candidate: left classes first, then right classes.
func bootstrapWeights(weightSum float64, numOutputs int, left, right func(class int32) float64) []float64 {
	weights := make([]float64, 2*numOutputs)
	denom := weightSum + float64(numOutputs)
	for i := 0; i < numOutputs; i++ {
		weights[i] = (left(int32(i)) + 1) / denom
		weights[numOutputs+i] = (right(int32(i)) + 1) / denom
	}
	return weights
}

// bootstrapGini draws n examples over the 2*numOutputs side/class cells and
// returns the gini score of the resampled split.
func bootstrapGini(n, numOutputs int, sampler Sampler) float64 {
	counts := make([]float64, 2*numOutputs)
	for i := 0; i < n; i++ {
		counts[sampler.Sample()]++
	}
	return tree.WeightedGiniOfCounts(counts[:numOutputs]) + tree.WeightedGiniOfCounts(counts[numOutputs:])
}

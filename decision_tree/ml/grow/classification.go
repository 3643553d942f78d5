package grow

import (
	"fmt"
	"math"

	"github.com/Roche85/tensorforest/decision_tree/ml/tree"
	"github.com/Roche85/tensorforest/decision_tree/param/conf_forest"
	"github.com/Roche85/tensorforest/rock-share/base/logger"
	"github.com/Roche85/tensorforest/utils"
	"golang.org/x/exp/rand"
)

// classCounts is the per-class bookkeeping a classification variant provides.
type classCounts interface {
	splitStats
	validLabel(label int32) bool
	addLeftExample(split int, label int32, w float64)
	addTotalExample(label int32, w float64)
	leftCount(split int, label int32) float64
	rightCount(split int, label int32) float64
	// sideSums returns weight and sum of squared class weights of each side.
	sideSums(split int) (leftSum, leftSquare, rightSum, rightSquare float64)
	numOutputsSeen() int
}

// ClassificationStats adds gini scoring, early finish and pruning on top of
// GrowStats. DenseClassificationStats and SparseClassificationStats provide
// the class counts.
type ClassificationStats struct {
	*GrowStats
	counts classCounts

	finishEarly       bool
	minSplitSamples   float64
	finishCheckEvery  float64
	finishSampleEpoch int64
	dominateFraction  float64

	pruneEnabled       bool
	pruneCheckEvery    float64
	pruneSampleEpoch   int64
	pruneFraction      float64
	halfLnDominateFrac float64

	leftGini  *runningGini
	rightGini *runningGini

	src            rand.Source
	samplerFactory SamplerFactory
}

func newClassificationStats(params *conf_forest.Params, depth int32, counts classCounts, o *options) (*ClassificationStats, error) {
	c := &ClassificationStats{counts: counts}
	c.GrowStats = newGrowStats(params, depth, c)

	switch params.FinishType.Type {
	case "", conf_forest.SplitFinishBasic:
		c.minSplitSamples = c.splitAfterSamples
	case conf_forest.SplitFinishDominateHoeffding, conf_forest.SplitFinishDominateBootstrap:
		if params.DominateFraction == nil || params.MinSplitSamples == nil {
			return nil, fmt.Errorf("%w: dominate_fraction and min_split_samples required for finish type %v",
				utils.ErrParameter, params.FinishType.Type)
		}
		c.minSplitSamples = conf_forest.ResolveParam(*params.MinSplitSamples, depth)
		c.finishCheckEvery = math.Max(1, conf_forest.ResolveParam(params.FinishType.CheckEverySteps, depth))
		c.finishSampleEpoch = int64(c.minSplitSamples / c.finishCheckEvery)
		if err := c.resolveDominateFraction(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown finish type %v", utils.ErrParameter, params.FinishType.Type)
	}

	switch params.PruningType.Type {
	case "", conf_forest.SplitPruneNone:
	default:
		c.pruneEnabled = true
		c.pruneCheckEvery = conf_forest.ResolveParam(params.PruningType.PruneEverySamples, depth)
		c.pruneSampleEpoch = 1
		switch params.PruningType.Type {
		case conf_forest.SplitPruneHalf:
			c.pruneFraction = 0.5
		case conf_forest.SplitPruneQuarter:
			c.pruneFraction = 0.25
		case conf_forest.SplitPrune10Percent:
			c.pruneFraction = 0.10
		case conf_forest.SplitPruneHoeffding:
			if params.DominateFraction == nil {
				return nil, fmt.Errorf("%w: dominate_fraction required for hoeffding pruning", utils.ErrParameter)
			}
			if err := c.resolveDominateFraction(); err != nil {
				return nil, err
			}
			c.halfLnDominateFrac = 0.5 * math.Log(1/(1-c.dominateFraction))
		default:
			logger.Warnf("unknown pruning type %q, pruning disabled", params.PruningType.Type)
			c.pruneEnabled = false
		}
	}

	if params.UseRunningStatsMethod {
		c.leftGini = newRunningGini()
		c.rightGini = newRunningGini()
	}

	c.src = o.source()
	c.samplerFactory = o.samplerFactory
	return c, nil
}

func (c *ClassificationStats) resolveDominateFraction() error {
	c.dominateFraction = conf_forest.ResolveParam(*c.params.DominateFraction, c.depth)
	if c.dominateFraction <= 0 || c.dominateFraction > 1 {
		return fmt.Errorf("%w: invalid dominate fraction %v", utils.ErrParameter, c.dominateFraction)
	}
	return nil
}

func (c *ClassificationStats) addSplitStats() {
	c.counts.addSplitStats()
	if c.leftGini != nil {
		c.leftGini.addSplit()
		c.rightGini.addSplit()
		c.seedRunningGini(c.NumSplits() - 1)
	}
}

func (c *ClassificationStats) removeSplitStats(i int) {
	c.counts.removeSplitStats(i)
	if c.leftGini != nil {
		c.leftGini.removeSplit(i)
		c.rightGini.removeSplit(i)
	}
}

func (c *ClassificationStats) clearInternal() {
	c.counts.clearInternal()
	c.finishEarly = false
	if c.leftGini != nil {
		c.leftGini.clear()
		c.rightGini.clear()
	}
}

// seedRunningGini loads the running cache of a split from its counts. Used
// when a split is added or restored.
func (c *ClassificationStats) seedRunningGini(split int) {
	if c.leftGini == nil {
		return
	}
	leftSum, leftSquare, rightSum, rightSquare := c.counts.sideSums(split)
	c.leftGini.set(split, leftSum, leftSquare)
	c.rightGini.set(split, rightSum, rightSquare)
}

func (c *ClassificationStats) IsFinished() bool {
	basic := c.WeightSum() >= c.splitAfterSamples && c.counts.numOutputsSeen() > 1
	return basic || c.finishEarly
}

func (c *ClassificationStats) AddExample(data tree.DataSet, target tree.Target, example int) {
	label := target.ClassIndex(example)
	if !c.counts.validLabel(label) {
		logger.Warnf("class %d out of range [0, %d), example %d ignored", label, c.numOutputs, example)
		return
	}
	w := target.Weight(example)

	for i := range c.splits {
		if c.decide(i, data, example) == tree.LEFT {
			if c.leftGini != nil {
				c.leftGini.update(i, c.counts.leftCount(i, label), w)
			}
			c.counts.addLeftExample(i, label, w)
		} else if c.rightGini != nil {
			c.rightGini.update(i, c.counts.rightCount(i, label), w)
		}
	}
	c.counts.addTotalExample(label, w)
	c.weightSum.Add(w)

	c.checkFinishEarly()
	c.checkPrune()
}

// GiniScore recomputes the score of a split from its counts, along with the
// weight of each side.
func (c *ClassificationStats) GiniScore(split int) (score, leftSum, rightSum float64) {
	leftSum, leftSquare, rightSum, rightSquare := c.counts.sideSums(split)
	return tree.WeightedGini(leftSum, leftSquare) + tree.WeightedGini(rightSum, rightSquare), leftSum, rightSum
}

func (c *ClassificationStats) maybeCachedGiniScore(split int) (score, leftSum, rightSum float64) {
	if c.leftGini == nil {
		return c.GiniScore(split)
	}
	leftSum, rightSum = c.leftGini.sum[split], c.rightGini.sum[split]
	score = tree.WeightedGini(leftSum, c.leftGini.square[split]) + tree.WeightedGini(rightSum, c.rightGini.square[split])
	return score, leftSum, rightSum
}

func (c *ClassificationStats) candidateScore(split int) (score, leftSum, rightSum float64) {
	return c.maybeCachedGiniScore(split)
}

func (c *ClassificationStats) scores() []float64 {
	scores := make([]float64, c.NumSplits())
	for i := range scores {
		scores[i], _, _ = c.maybeCachedGiniScore(i)
	}
	return scores
}

// bestIndex is the lowest scoring split with weight on both sides, or -1.
func (c *ClassificationStats) bestIndex() (best int, leftSum, rightSum float64) {
	best = -1
	minScore := math.MaxFloat64
	for i := range c.splits {
		score, left, right := c.maybeCachedGiniScore(i)
		if left > 0 && right > 0 && score < minScore {
			minScore = score
			best = i
			leftSum, rightSum = left, right
		}
	}
	return best, leftSum, rightSum
}

// twoBest returns the indices of the lowest and second lowest scores, -1
// when there are not enough splits. Missing scores are +Inf.
func (c *ClassificationStats) twoBest() (best int, bestScore float64, second int, secondScore float64) {
	best, second = -1, -1
	bestScore, secondScore = math.Inf(1), math.Inf(1)
	for i := range c.splits {
		score, _, _ := c.maybeCachedGiniScore(i)
		if score < bestScore {
			second, secondScore = best, bestScore
			best, bestScore = i, score
		} else if score < secondScore {
			second, secondScore = i, score
		}
	}
	return best, bestScore, second, secondScore
}

func (c *ClassificationStats) checkFinishEarly() {
	switch c.params.FinishType.Type {
	case conf_forest.SplitFinishDominateHoeffding, conf_forest.SplitFinishDominateBootstrap:
	default:
		return
	}
	weight := c.WeightSum()
	if weight < c.minSplitSamples || weight < float64(c.finishSampleEpoch)*c.finishCheckEvery {
		return
	}
	c.finishSampleEpoch++

	if c.params.FinishType.Type == conf_forest.SplitFinishDominateHoeffding {
		c.checkFinishEarlyHoeffding()
	} else {
		c.checkFinishEarlyBootstrap()
	}
	if c.finishEarly {
		logger.Debugf("leaf at depth %d finished early after %v samples", c.depth, weight)
	}
}

func (c *ClassificationStats) checkFinishEarlyHoeffding() {
	weight := c.WeightSum()
	// each gini term is at most 0.5*0.5
	giniRange := 0.25 * float64(c.numOutputs) * weight
	bound := giniRange * math.Sqrt(math.Log(1/(1-c.dominateFraction))/(2*weight))

	best, bestScore, _, secondScore := c.twoBest()
	if best < 0 {
		return
	}
	c.finishEarly = secondScore-bestScore > bound
}

func (c *ClassificationStats) checkFinishEarlyBootstrap() {
	best, _, second, _ := c.twoBest()
	if best < 0 {
		return
	}
	if second < 0 {
		c.finishEarly = true
		return
	}
	weight := c.WeightSum()
	n := int(weight)
	bestSampler := c.samplerFactory(bootstrapWeights(weight, c.numOutputs,
		c.leftCountFn(best), c.rightCountFn(best)), c.src)
	secondSampler := c.samplerFactory(bootstrapWeights(weight, c.numOutputs,
		c.leftCountFn(second), c.rightCountFn(second)), c.src)

	samples := c.NumBootstrapSamples()
	worstBest := math.Inf(-1)
	for i := 0; i < samples; i++ {
		worstBest = math.Max(worstBest, bootstrapGini(n, c.numOutputs, bestSampler))
	}
	bestSecond := math.Inf(1)
	for i := 0; i < samples; i++ {
		bestSecond = math.Min(bestSecond, bootstrapGini(n, c.numOutputs, secondSampler))
	}
	c.finishEarly = worstBest < bestSecond
}

func (c *ClassificationStats) leftCountFn(split int) func(int32) float64 {
	return func(label int32) float64 { return c.counts.leftCount(split, label) }
}

func (c *ClassificationStats) rightCountFn(split int) func(int32) float64 {
	return func(label int32) float64 { return c.counts.rightCount(split, label) }
}

// NumBootstrapSamples is the number of resamples drawn per candidate by the
// bootstrap finish check.
func (c *ClassificationStats) NumBootstrapSamples() int {
	return numBootstrapSamples(c.dominateFraction)
}

func (c *ClassificationStats) checkPrune() {
	if !c.pruneEnabled || c.IsFinished() || c.WeightSum() < float64(c.pruneSampleEpoch)*c.pruneCheckEvery {
		return
	}
	c.pruneSampleEpoch++

	var remove []int
	if c.params.PruningType.Type == conf_forest.SplitPruneHoeffding {
		remove = c.hoeffdingPrunable()
	} else {
		toRemove := int(float64(c.NumSplits()) * c.pruneFraction)
		if toRemove <= 0 {
			return
		}
		remove = worstSplits(c.scores(), toRemove)
	}
	for _, i := range remove {
		c.RemoveSplit(i)
	}
	if len(remove) > 0 {
		logger.Debugf("pruned %d splits at depth %d, %d left", len(remove), c.depth, c.NumSplits())
	}
}

func (c *ClassificationStats) hoeffdingPrunable() []int {
	weight := c.WeightSum()
	// the weighted gini difference lies in [0, S*(1-1/numClasses)]
	giniDiffRange := weight * (1 - 1/float64(c.numOutputs))
	epsilon := giniDiffRange * math.Sqrt(c.halfLnDominateFrac/weight)
	return dominatedSplits(c.scores(), epsilon)
}

package grow

import (
	"fmt"

	"github.com/Roche85/tensorforest/decision_tree/ml/tree"
	"github.com/Roche85/tensorforest/decision_tree/model"
	"github.com/Roche85/tensorforest/decision_tree/param/conf_forest"
	"github.com/Roche85/tensorforest/decision_tree/util/add"
)

// LeafStats accumulates the statistics of one growing leaf. The variant is
// picked once when the leaf is opened (see NewLeafStats). Implementations are
// not safe for concurrent use.
type LeafStats interface {
	AddSplit(split *model.BinaryNode)
	RemoveSplit(i int)
	NumSplits() int
	Split(i int) *model.BinaryNode

	AddExample(data tree.DataSet, target tree.Target, example int)
	IsFinished() bool
	// BestSplit fills best with the lowest scoring candidate having weight on
	// both sides. It returns false when no candidate qualifies.
	BestSplit(best *model.SplitCandidate) bool

	ExtractFromProto(slot *model.FertileSlot)
	PackToProto(slot *model.FertileSlot)

	IsInitialized() bool
	WeightSum() float64
	Depth() int32
}

// splitStats is implemented by the variants so that per-candidate records
// follow the split sequence.
type splitStats interface {
	addSplitStats()
	removeSplitStats(i int)
	clearInternal()
}

// GrowStats is the part shared by all variants: the candidate splits with
// their evaluators, the total weight and the depth resolved thresholds.
type GrowStats struct {
	depth  int32
	params *conf_forest.Params

	weightSum  *add.FloatAdder
	splits     []*model.BinaryNode
	evaluators []tree.Evaluator

	splitAfterSamples   float64
	numSplitsToConsider int
	numOutputs          int

	stats splitStats
}

func newGrowStats(params *conf_forest.Params, depth int32, stats splitStats) *GrowStats {
	return &GrowStats{
		depth:               depth,
		params:              params,
		weightSum:           add.NewFloatAdder(),
		splitAfterSamples:   conf_forest.ResolveParam(params.SplitAfterSamples, depth),
		numSplitsToConsider: int(conf_forest.ResolveParam(params.NumSplitsToConsider, depth)),
		numOutputs:          int(params.NumOutputs),
		stats:               stats,
	}
}

// AddSplit appends a copy of split and builds its evaluator.
func (g *GrowStats) AddSplit(split *model.BinaryNode) {
	split = split.Clone()
	g.splits = append(g.splits, split)
	g.evaluators = append(g.evaluators, tree.NewEvaluator(split))
	g.stats.addSplitStats()
}

// RemoveSplit drops candidate i, later candidates move down by one.
func (g *GrowStats) RemoveSplit(i int) {
	if i < 0 || i >= len(g.splits) {
		panic(fmt.Sprintf("grow: remove split %d out of range [0, %d)", i, len(g.splits)))
	}
	g.splits = removeAt(g.splits, i)
	g.evaluators = removeAt(g.evaluators, i)
	g.stats.removeSplitStats(i)
}

func (g *GrowStats) NumSplits() int {
	return len(g.splits)
}

func (g *GrowStats) Split(i int) *model.BinaryNode {
	return g.splits[i]
}

// IsInitialized reports whether the leaf stopped taking new candidates,
// either because it already saw examples or because the candidate set is full.
func (g *GrowStats) IsInitialized() bool {
	return g.weightSum.Result() > 0 || len(g.splits) >= g.numSplitsToConsider
}

// Initialize resets the leaf to a fresh state with no candidates.
func (g *GrowStats) Initialize() {
	g.weightSum.Clear()
	g.splits = nil
	g.evaluators = nil
	g.stats.clearInternal()
}

func (g *GrowStats) WeightSum() float64 {
	return g.weightSum.Result()
}

func (g *GrowStats) Depth() int32 {
	return g.depth
}

func (g *GrowStats) decide(i int, data tree.DataSet, example int) tree.Direction {
	return g.evaluators[i].Decide(data, example)
}

func removeAt[T any](s []T, i int) []T {
	return append(s[:i], s[i+1:]...)
}

func leftStatsOf(cand *model.SplitCandidate) *model.LeafStat {
	if cand.LeftStats == nil {
		return &model.LeafStat{}
	}
	return cand.LeftStats
}

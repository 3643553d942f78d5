package grow

import (
	"testing"

	"github.com/Roche85/tensorforest/decision_tree/model"
	"github.com/Roche85/tensorforest/decision_tree/param/conf_forest"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/exp/rand"
)

func earlyFinishParams(finish conf_forest.FinishType) *conf_forest.Params {
	p := testParams(conf_forest.StatsDenseGini, 2)
	p.FinishType = conf_forest.SplitFinishConfig{Type: finish, CheckEverySteps: conf_forest.Constant(10)}
	p.MinSplitSamples = conf_forest.ConstantRef(10)
	p.DominateFraction = conf_forest.ConstantRef(0.99)
	return p
}

// feedAlternating sends n unit examples with alternating labels. x0 equals the
// label, x1 is always 0 and x2 always 1.
func feedAlternating(stats LeafStats, stream *classStream, n int) {
	for i := 0; i < n; i++ {
		label := int32(i % 2)
		stream.add(stats, []float64{float64(label), 0, 1}, label, 1)
	}
}

type fixedSampler struct {
	outcomes []int
	next     int
}

func (s *fixedSampler) Sample() int {
	out := s.outcomes[s.next%len(s.outcomes)]
	s.next++
	return out
}

// sequenceFactory hands out the given samplers in order and records the
// weights it was called with.
type sequenceFactory struct {
	samplers []Sampler
	weights  [][]float64
}

func (f *sequenceFactory) build(weights []float64, _ rand.Source) Sampler {
	f.weights = append(f.weights, weights)
	return f.samplers[(len(f.weights)-1)%len(f.samplers)]
}

func TestFinishEarlyHoeffding(t *testing.T) {
	Convey("a perfect split dominates a useless one", t, func() {
		d, err := NewDenseClassificationStats(earlyFinishParams(conf_forest.SplitFinishDominateHoeffding), 0)
		So(err, ShouldBeNil)
		d.AddSplit(axisSplit(0))
		d.AddSplit(axisSplit(1))
		stream := newClassStream()

		feedAlternating(d, stream, 9)
		So(d.IsFinished(), ShouldBeFalse)
		// at 10 samples the bound is 0.5*sqrt(10*ln(100)/2) < 2.4 and the gap is 5
		feedAlternating(d, stream, 1)
		So(d.IsFinished(), ShouldBeTrue)
	})

	Convey("two equal splits never dominate", t, func() {
		d, err := NewDenseClassificationStats(earlyFinishParams(conf_forest.SplitFinishDominateHoeffding), 0)
		So(err, ShouldBeNil)
		d.AddSplit(axisSplit(0))
		d.AddSplit(axisSplit(0))
		feedAlternating(d, newClassStream(), 40)
		So(d.IsFinished(), ShouldBeFalse)
	})

	Convey("a single split finishes at the first check, none never does", t, func() {
		d, err := NewDenseClassificationStats(earlyFinishParams(conf_forest.SplitFinishDominateHoeffding), 0)
		So(err, ShouldBeNil)
		d.AddSplit(axisSplit(1))
		feedAlternating(d, newClassStream(), 10)
		So(d.IsFinished(), ShouldBeTrue)

		empty, err := NewDenseClassificationStats(earlyFinishParams(conf_forest.SplitFinishDominateHoeffding), 0)
		So(err, ShouldBeNil)
		feedAlternating(empty, newClassStream(), 30)
		So(empty.IsFinished(), ShouldBeFalse)
	})

	Convey("a sparse leaf bounds the gap over every configured class", t, func() {
		p := earlyFinishParams(conf_forest.SplitFinishDominateHoeffding)
		p.NumOutputs = 3
		s, err := NewSparseClassificationStats(p, 0)
		So(err, ShouldBeNil)
		s.AddSplit(axisSplit(0))
		s.AddSplit(axisSplit(1))
		stream := newClassStream()

		feedAlternating(s, stream, 9)
		So(s.IsFinished(), ShouldBeFalse)
		// range 0.25*3*10, bound 7.5*sqrt(ln(100)/20) < 3.6, gap 5
		feedAlternating(s, stream, 1)
		So(s.IsFinished(), ShouldBeTrue)
	})

	Convey("basic finish never fires early", t, func() {
		d := newDense(testParams(conf_forest.StatsDenseGini, 2), axisSplit(0), axisSplit(1))
		feedAlternating(d, newClassStream(), 100)
		So(d.IsFinished(), ShouldBeFalse)
	})
}

func TestFinishEarlyBootstrap(t *testing.T) {
	Convey("NumBootstrapSamples doubles 1-dominate until it reaches 1", t, func() {
		So(numBootstrapSamples(0.99), ShouldEqual, 8)
		So(numBootstrapSamples(0.5), ShouldEqual, 2)
		So(numBootstrapSamples(0.75), ShouldEqual, 3)
		So(numBootstrapSamples(1), ShouldEqual, maxBootstrapSamples)

		d, err := NewDenseClassificationStats(earlyFinishParams(conf_forest.SplitFinishDominateBootstrap), 0)
		So(err, ShouldBeNil)
		So(d.NumBootstrapSamples(), ShouldEqual, 8)
	})

	pure := &fixedSampler{outcomes: []int{0}}
	mixed := &fixedSampler{outcomes: []int{0, 1}}

	Convey("the leader dominates when its worst resample beats the runner-up's best", t, func() {
		factory := &sequenceFactory{samplers: []Sampler{pure, mixed}}
		d, err := NewDenseClassificationStats(earlyFinishParams(conf_forest.SplitFinishDominateBootstrap), 0,
			WithSamplerFactory(factory.build))
		So(err, ShouldBeNil)
		d.AddSplit(axisSplit(0))
		d.AddSplit(axisSplit(1))
		stream := newClassStream()

		feedAlternating(d, stream, 9)
		So(factory.weights, ShouldBeEmpty)
		feedAlternating(d, stream, 1)
		So(d.IsFinished(), ShouldBeTrue)

		So(len(factory.weights), ShouldEqual, 2)
		// best split x0: left [5,0], right [0,5], Laplace smoothed over 10+2
		So(factory.weights[0], ShouldResemble, []float64{6.0 / 12, 1.0 / 12, 1.0 / 12, 6.0 / 12})
		// runner-up x1: everything left
		So(factory.weights[1], ShouldResemble, []float64{6.0 / 12, 6.0 / 12, 1.0 / 12, 1.0 / 12})
	})

	Convey("no finish when the runner-up resamples better", t, func() {
		factory := &sequenceFactory{samplers: []Sampler{mixed, pure}}
		d, err := NewDenseClassificationStats(earlyFinishParams(conf_forest.SplitFinishDominateBootstrap), 0,
			WithSamplerFactory(factory.build))
		So(err, ShouldBeNil)
		d.AddSplit(axisSplit(0))
		d.AddSplit(axisSplit(1))
		feedAlternating(d, newClassStream(), 10)
		So(d.IsFinished(), ShouldBeFalse)
		So(len(factory.weights), ShouldEqual, 2)
	})

	Convey("a sparse leaf smooths classes it has not seen", t, func() {
		p := earlyFinishParams(conf_forest.SplitFinishDominateBootstrap)
		p.NumOutputs = 3
		factory := &sequenceFactory{samplers: []Sampler{pure, mixed}}
		s, err := NewSparseClassificationStats(p, 0, WithSamplerFactory(factory.build))
		So(err, ShouldBeNil)
		s.AddSplit(axisSplit(0))
		s.AddSplit(axisSplit(1))
		feedAlternating(s, newClassStream(), 10)
		So(s.IsFinished(), ShouldBeTrue)

		So(len(factory.weights), ShouldEqual, 2)
		So(factory.weights[0], ShouldResemble, []float64{6.0 / 13, 1.0 / 13, 1.0 / 13, 1.0 / 13, 6.0 / 13, 1.0 / 13})
		So(factory.weights[1], ShouldResemble, []float64{6.0 / 13, 6.0 / 13, 1.0 / 13, 1.0 / 13, 1.0 / 13, 1.0 / 13})
		So(len(s.TotalCounts()), ShouldEqual, 2)
	})

	Convey("bootstrapGini scores the resampled cells", t, func() {
		So(bootstrapGini(10, 2, &fixedSampler{outcomes: []int{0}}), ShouldEqual, 0.0)
		// left [5,5]
		So(bootstrapGini(10, 2, &fixedSampler{outcomes: []int{0, 1}}), ShouldEqual, 5.0)
		// left [5,0], right [0,5]
		So(bootstrapGini(10, 2, &fixedSampler{outcomes: []int{0, 3}}), ShouldEqual, 0.0)
	})

	Convey("the categorical sampler only draws cells with weight", t, func() {
		sampler := CategoricalSampler([]float64{0, 0, 2, 0}, rand.NewSource(1))
		for i := 0; i < 20; i++ {
			So(sampler.Sample(), ShouldEqual, 2)
		}
	})

	Convey("the default sampler runs end to end", t, func() {
		d, err := NewDenseClassificationStats(earlyFinishParams(conf_forest.SplitFinishDominateBootstrap), 0, WithSeed(7))
		So(err, ShouldBeNil)
		d.AddSplit(axisSplit(0))
		d.AddSplit(axisSplit(0))
		feedAlternating(d, newClassStream(), 50)
		So(d.WeightSum(), ShouldEqual, 50.0)
	})
}

func pruneParams(prune conf_forest.PruneType) *conf_forest.Params {
	p := testParams(conf_forest.StatsDenseGini, 2)
	p.PruningType = conf_forest.SplitPruningConfig{Type: prune, PruneEverySamples: conf_forest.Constant(10)}
	p.DominateFraction = conf_forest.ConstantRef(0.99)
	return p
}

// newPruneLeaf has four splits scoring, after feedPrune: 0, 5, 5/3 and 5.
func newPruneLeaf(prune conf_forest.PruneType, running bool) *DenseClassificationStats {
	p := pruneParams(prune)
	p.UseRunningStatsMethod = running
	return newDense(p, axisSplit(0), axisSplit(1), axisSplit(2), axisSplit(3))
}

func newSparsePruneLeaf(prune conf_forest.PruneType, running bool) *SparseClassificationStats {
	p := pruneParams(prune)
	p.StatsType = conf_forest.StatsSparseGini
	p.UseRunningStatsMethod = running
	return newSparse(p, axisSplit(0), axisSplit(1), axisSplit(2), axisSplit(3))
}

// feedPrune sends ten examples with alternating labels. x0 is the label, x1
// is 0, x2 is the label except for the first example and x3 is 1.
func feedPrune(stats LeafStats, n int) {
	stream := newClassStream()
	for i := 0; i < n; i++ {
		label := int32(i % 2)
		x2 := float64(label)
		if i == 0 {
			x2 = 1
		}
		stream.add(stats, []float64{float64(label), 0, x2, 1}, label, 1)
	}
}

func features(stats LeafStats) []int32 {
	out := make([]int32, 0, stats.NumSplits())
	for i := 0; i < stats.NumSplits(); i++ {
		out = append(out, stats.Split(i).Feature)
	}
	return out
}

func TestPrune(t *testing.T) {
	for _, running := range []bool{false, true} {
		Convey("fraction pruning drops the highest scores", t, func() {
			half := newPruneLeaf(conf_forest.SplitPruneHalf, running)
			feedPrune(half, 9)
			So(half.NumSplits(), ShouldEqual, 4)
			feedPrune(half, 1)
			So(features(half), ShouldResemble, []int32{0, 2})

			quarter := newPruneLeaf(conf_forest.SplitPruneQuarter, running)
			feedPrune(quarter, 10)
			So(features(quarter), ShouldResemble, []int32{0, 2, 3})

			tenth := newPruneLeaf(conf_forest.SplitPrune10Percent, running)
			feedPrune(tenth, 10)
			So(tenth.NumSplits(), ShouldEqual, 4)
		})

		Convey("hoeffding pruning drops only clearly worse splits", t, func() {
			leaf := newPruneLeaf(conf_forest.SplitPruneHoeffding, running)
			feedPrune(leaf, 10)
			// epsilon = 10*(1-1/2)*sqrt(0.5*ln(100)/10) ≈ 2.4
			So(features(leaf), ShouldResemble, []int32{0, 2})
		})

		Convey("sparse leaves prune the same candidates", t, func() {
			half := newSparsePruneLeaf(conf_forest.SplitPruneHalf, running)
			feedPrune(half, 10)
			So(features(half), ShouldResemble, []int32{0, 2})

			quarter := newSparsePruneLeaf(conf_forest.SplitPruneQuarter, running)
			feedPrune(quarter, 10)
			So(features(quarter), ShouldResemble, []int32{0, 2, 3})

			hoeffding := newSparsePruneLeaf(conf_forest.SplitPruneHoeffding, running)
			feedPrune(hoeffding, 10)
			So(features(hoeffding), ShouldResemble, []int32{0, 2})
		})
	}

	Convey("pruning waits for the next epoch", t, func() {
		leaf := newPruneLeaf(conf_forest.SplitPruneQuarter, false)
		feedPrune(leaf, 10)
		So(leaf.NumSplits(), ShouldEqual, 3)
		feedPrune(leaf, 9)
		So(leaf.NumSplits(), ShouldEqual, 3)
	})

	Convey("an unknown prune type only disables pruning", t, func() {
		leaf := newPruneLeaf("aggressive", false)
		feedPrune(leaf, 30)
		So(leaf.NumSplits(), ShouldEqual, 4)
	})

	Convey("a finished leaf is not pruned", t, func() {
		p := pruneParams(conf_forest.SplitPruneHalf)
		p.SplitAfterSamples = conf_forest.Constant(5)
		leaf := newDense(p, axisSplit(0), axisSplit(1), axisSplit(2), axisSplit(3))
		feedPrune(leaf, 10)
		So(leaf.IsFinished(), ShouldBeTrue)
		So(leaf.NumSplits(), ShouldEqual, 4)
	})

	Convey("worstSplits keeps the largest scores, highest index first", t, func() {
		So(worstSplits([]float64{3, 1, 4, 1, 5}, 2), ShouldResemble, []int{4, 2})
		So(worstSplits([]float64{3, 1}, 0), ShouldBeEmpty)
		So(dominatedSplits([]float64{1, 9, 1.5, 3}, 1), ShouldResemble, []int{3, 1})
	})

	Convey("Describe marks the best candidate", t, func() {
		leaf := newPruneLeaf(conf_forest.SplitPruneNone, false)
		feedPrune(leaf, 4)
		out := Describe(leaf)
		So(out, ShouldContainSubstring, "x0 <= 0.5")
		So(out, ShouldContainSubstring, "*")
		best := &model.SplitCandidate{}
		So(leaf.BestSplit(best), ShouldBeTrue)
		So(best.Split.Feature, ShouldEqual, int32(0))
	})
}

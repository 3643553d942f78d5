package tree

import (
	"math"
	"strings"
	"testing"

	"github.com/Roche85/tensorforest/decision_tree/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEvaluator(t *testing.T) {
	data := &DenseDataSet{}
	data.Append([]float64{1, 5})
	data.Append([]float64{2, 0})
	data.Append([]float64{math.NaN(), 3})

	Convey("inequality splits", t, func() {
		cases := []struct {
			inequality model.InequalityType
			want       []Direction
		}{
			{model.LessOrEqual, []Direction{LEFT, LEFT, RIGHT}},
			{model.LessThan, []Direction{LEFT, RIGHT, RIGHT}},
			{model.GreaterOrEqual, []Direction{RIGHT, LEFT, RIGHT}},
			{model.GreaterThan, []Direction{RIGHT, RIGHT, RIGHT}},
		}
		for _, c := range cases {
			eval := NewEvaluator(&model.BinaryNode{Feature: 0, Threshold: 2, Inequality: c.inequality})
			for example, want := range c.want {
				So(eval.Decide(data, example), ShouldEqual, want)
			}
		}
	})

	Convey("missing feature routes right", t, func() {
		eval := NewEvaluator(&model.BinaryNode{Feature: 7, Threshold: 2})
		So(eval.Decide(data, 0), ShouldEqual, RIGHT)
	})

	Convey("expression splits", t, func() {
		eval := NewEvaluator(&model.BinaryNode{Expression: "x0 + x1 > 4"})
		So(eval.Decide(data, 0), ShouldEqual, LEFT)
		So(eval.Decide(data, 1), ShouldEqual, RIGHT)
		So(eval.Decide(data, 2), ShouldEqual, RIGHT)

		So(ValidateSplit(&model.BinaryNode{Expression: "x0 >"}), ShouldNotBeNil)
		So(ValidateSplit(&model.BinaryNode{Expression: "y > 1"}), ShouldNotBeNil)
		So(ValidateSplit(&model.BinaryNode{Expression: "x12 >= x3"}), ShouldBeNil)
		So(ValidateSplit(&model.BinaryNode{Feature: 1, Inequality: 9}), ShouldNotBeNil)
		So(ValidateSplit(nil), ShouldNotBeNil)

		broken := NewEvaluator(&model.BinaryNode{Expression: "x0 >"})
		So(broken.Decide(data, 0), ShouldEqual, RIGHT)
	})
}

func TestTargets(t *testing.T) {
	Convey("ClassTarget keeps weights lazily", t, func() {
		target := &ClassTarget{}
		target.Append(1, 1)
		So(target.Weights, ShouldBeNil)
		target.Append(0, 2.5)
		So(target.Weight(0), ShouldEqual, 1.0)
		So(target.Weight(1), ShouldEqual, 2.5)
		So(target.ClassIndex(1), ShouldEqual, int32(0))
	})

	Convey("RegressionTarget", t, func() {
		target := &RegressionTarget{}
		i := target.Append([]float64{1, 2})
		So(target.Weight(i), ShouldEqual, 1.0)
		So(target.Continuous(i, 1), ShouldEqual, 2.0)
	})
}

func TestCriterion(t *testing.T) {
	Convey("weighted gini", t, func() {
		So(WeightedGini(0, 0), ShouldEqual, 0.0)
		So(WeightedGiniOfCounts([]float64{2, 0}), ShouldEqual, 0.0)
		// 4 - (4+4)/4
		So(WeightedGiniOfCounts([]float64{2, 2}), ShouldAlmostEqual, 2.0)
		impurity, sum := Gini(map[int32]float64{1: 1, 9: 3})
		So(sum, ShouldEqual, 4.0)
		So(impurity, ShouldAlmostEqual, 1-(1.0+9.0)/16)
	})
}

func TestSplitGraph(t *testing.T) {
	Convey("SplitGraph renders both sides", t, func() {
		best := &model.SplitCandidate{
			Split:      &model.BinaryNode{Feature: 3, Threshold: 0.5},
			LeftStats:  &model.LeafStat{WeightSum: 2, Classification: &model.ClassificationLeafStat{DenseCounts: []float64{2, 0}}},
			RightStats: &model.LeafStat{WeightSum: 1, Classification: &model.ClassificationLeafStat{SparseCounts: map[int32]float64{1: 1}}},
		}
		dot, err := SplitGraph("leaf_7", best)
		So(err, ShouldBeNil)
		So(strings.Contains(dot, "leaf_7_left"), ShouldBeTrue)
		So(strings.Contains(dot, "leaf_7_right"), ShouldBeTrue)
		So(strings.Contains(dot, "x3 &lt;= 0.5"), ShouldBeTrue)
		So(strings.Contains(dot, "->"), ShouldBeTrue)

		out := t.TempDir() + "/split.dot"
		So(WriteSplitGraph(out, "leaf_7", best), ShouldBeNil)
	})
}

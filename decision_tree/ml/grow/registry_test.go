package grow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Roche85/tensorforest/decision_tree/ml/tree"
	"github.com/Roche85/tensorforest/decision_tree/model"
	"github.com/Roche85/tensorforest/decision_tree/param/conf_forest"
	"github.com/Roche85/tensorforest/utils"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFertileStats(t *testing.T) {
	ctx := context.Background()
	data := &tree.DenseDataSet{}
	target := &tree.ClassTarget{}
	for i := 0; i < 100; i++ {
		label := int32(i % 2)
		data.Append([]float64{float64(label), float64(i % 3)})
		target.Append(label, 1)
	}
	splits := func() []*model.BinaryNode {
		return []*model.BinaryNode{axisSplit(0), axisSplit(1)}
	}

	Convey("Given a registry of dense leaves", t, func() {
		registry := NewFertileStats(testParams(conf_forest.StatsDenseGini, 2))
		So(registry.Open("root", 0, splits()), ShouldBeNil)

		Convey("a leaf cannot be opened twice", func() {
			err := registry.Open("root", 0, nil)
			So(errors.Is(err, utils.ErrLeafExists), ShouldBeTrue)
		})

		Convey("unknown leaves are reported", func() {
			_, err := registry.AddExample("nope", data, target, 0)
			So(errors.Is(err, utils.ErrLeafNotFound), ShouldBeTrue)
			_, _, err = registry.BestSplit("nope")
			So(errors.Is(err, utils.ErrLeafNotFound), ShouldBeTrue)
			_, err = registry.Finished("nope")
			So(errors.Is(err, utils.ErrLeafNotFound), ShouldBeTrue)
		})

		Convey("invalid splits are rejected", func() {
			err := registry.Open("bad", 1, []*model.BinaryNode{{Expression: "x0 >"}})
			So(errors.Is(err, utils.ErrParameter), ShouldBeTrue)
			So(registry.Len(), ShouldEqual, 1)
		})

		Convey("no best split before any example", func() {
			best, ok, err := registry.BestSplit("root")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
			So(best, ShouldBeNil)
		})

		Convey("concurrent updates of one leaf are serialised", func() {
			var wg sync.WaitGroup
			for w := 0; w < 4; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					for i := w; i < 100; i += 4 {
						_, _ = registry.AddExample("root", data, target, i)
					}
				}(w)
			}
			wg.Wait()

			cp, err := registry.Snapshot(ctx, "root")
			So(err, ShouldBeNil)
			slot := &model.FertileSlot{}
			So(model.Unmarshal(ctx, cp.Slot, slot), ShouldBeNil)
			So(slot.PostInitLeafStats.WeightSum, ShouldEqual, 100.0)
			So(slot.PostInitLeafStats.Classification.DenseCounts, ShouldResemble, []float64{50, 50})

			best, ok, err := registry.BestSplit("root")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(best.Split.Feature, ShouldEqual, int32(0))

			out, err := registry.Describe("root")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "x1 <= 0.5")
		})

		Convey("leaves grow independently and survive a checkpoint", func() {
			var wg sync.WaitGroup
			for leaf := 0; leaf < 8; leaf++ {
				id := fmt.Sprintf("leaf-%d", leaf)
				So(registry.Open(id, 1, splits()), ShouldBeNil)
				wg.Add(1)
				go func(id string, n int) {
					defer wg.Done()
					for i := 0; i < n; i++ {
						_, _ = registry.AddExample(id, data, target, i)
					}
				}(id, 10*(leaf+1))
			}
			wg.Wait()
			So(registry.Len(), ShouldEqual, 9)

			checkpoints, err := registry.Checkpoint(ctx)
			So(err, ShouldBeNil)
			So(len(checkpoints), ShouldEqual, 9)
			So(checkpoints["leaf-3"].Depth, ShouldEqual, int32(1))

			restored := NewFertileStats(testParams(conf_forest.StatsDenseGini, 2))
			So(restored.Restore(ctx, checkpoints), ShouldBeNil)
			So(restored.Len(), ShouldEqual, 9)
			for leaf := 0; leaf < 8; leaf++ {
				id := fmt.Sprintf("leaf-%d", leaf)
				cp, err := restored.Snapshot(ctx, id)
				So(err, ShouldBeNil)
				slot := &model.FertileSlot{}
				So(model.Unmarshal(ctx, cp.Slot, slot), ShouldBeNil)
				So(slot.PostInitLeafStats.WeightSum, ShouldEqual, float64(10*(leaf+1)))
				So(len(slot.Candidates), ShouldEqual, 2)

				want, wantOK, _ := registry.BestSplit(id)
				got, gotOK, _ := restored.BestSplit(id)
				So(gotOK, ShouldEqual, wantOK)
				So(got, ShouldResemble, want)
			}

			restored.Close("leaf-0")
			So(restored.Len(), ShouldEqual, 8)
			_, err = restored.Finished("leaf-0")
			So(errors.Is(err, utils.ErrLeafNotFound), ShouldBeTrue)
		})

		Convey("a corrupt checkpoint fails to restore", func() {
			err := registry.Restore(ctx, map[string]LeafCheckpoint{"x": {Slot: []byte{0x19}}})
			So(err, ShouldNotBeNil)
		})

		Convey("a checkpoint whose candidate has no split is rejected", func() {
			slot := &model.FertileSlot{
				PostInitLeafStats: &model.LeafStat{WeightSum: 1},
				Candidates:        []*model.SplitCandidate{{LeftStats: &model.LeafStat{WeightSum: 1}}},
			}
			data, err := model.Marshal(ctx, slot)
			So(err, ShouldBeNil)

			var restoreErr error
			So(func() {
				restoreErr = registry.Restore(ctx, map[string]LeafCheckpoint{"x": {Slot: data}})
			}, ShouldNotPanic)
			So(errors.Is(restoreErr, utils.ErrParameter), ShouldBeTrue)
			_, err = registry.Finished("x")
			So(errors.Is(err, utils.ErrLeafNotFound), ShouldBeTrue)
		})

		Convey("a checkpoint with an unparsable expression is rejected", func() {
			slot := &model.FertileSlot{
				PostInitLeafStats: &model.LeafStat{},
				Candidates:        []*model.SplitCandidate{{Split: &model.BinaryNode{Expression: "x0 >"}}},
			}
			data, err := model.Marshal(ctx, slot)
			So(err, ShouldBeNil)
			err = registry.Restore(ctx, map[string]LeafCheckpoint{"x": {Slot: data}})
			So(errors.Is(err, utils.ErrParameter), ShouldBeTrue)
			So(registry.Len(), ShouldEqual, 1)
		})
	})

	Convey("finished is reported as examples arrive", t, func() {
		p := testParams(conf_forest.StatsDenseGini, 2)
		p.SplitAfterSamples = conf_forest.Constant(3)
		registry := NewFertileStats(p)
		So(registry.Open("leaf", 0, splits()), ShouldBeNil)
		finished, err := registry.AddExample("leaf", data, target, 0)
		So(err, ShouldBeNil)
		So(finished, ShouldBeFalse)
		_, _ = registry.AddExample("leaf", data, target, 1)
		finished, _ = registry.AddExample("leaf", data, target, 2)
		So(finished, ShouldBeTrue)
		finished, err = registry.Finished("leaf")
		So(err, ShouldBeNil)
		So(finished, ShouldBeTrue)
	})
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Roche85/tensorforest/decision_tree/param/conf_forest"
	. "github.com/smartystreets/goconvey/convey"
)

const testConfig = `
server_config:
  http_port: "8099"
logger_config:
  level: debug
forest_config:
  stats_type: sparse_gini
  num_outputs: 5
  split_after_samples:
    constant_value: 100
  num_splits_to_consider:
    linear:
      slope: 2
      y_intercept: 10
      min_val: 10
      max_val: 20
  dominate_fraction:
    constant_value: 0.99
  min_split_samples:
    constant_value: 20
  finish_type:
    type: dominate_hoeffding
    check_every_steps:
      constant_value: 5
  pruning_type:
    type: half
    prune_every_samples:
      constant_value: 50
  use_running_stats_method: true
  seed: 42
`

func TestInitConfig(t *testing.T) {
	Convey("InitConfig", t, func() {
		dir := t.TempDir()
		So(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(testConfig), 0o644), ShouldBeNil)

		all, err := InitConfig(dir)
		So(err, ShouldBeNil)
		So(Current(), ShouldPointTo, all)
		So(all.Server.HttpPort, ShouldEqual, "8099")
		So(all.Logger.Level, ShouldEqual, "debug")
		So(all.Logger.Path, ShouldEqual, "./logs")

		f := all.Forest
		So(f.StatsType, ShouldEqual, conf_forest.StatsSparseGini)
		So(f.NumOutputs, ShouldEqual, int32(5))
		So(conf_forest.ResolveParam(f.SplitAfterSamples, 0), ShouldEqual, 100.0)
		So(conf_forest.ResolveParam(f.NumSplitsToConsider, 3), ShouldEqual, 16.0)
		So(f.DominateFraction, ShouldNotBeNil)
		So(conf_forest.ResolveParam(*f.DominateFraction, 0), ShouldEqual, 0.99)
		So(f.FinishType.Type, ShouldEqual, conf_forest.SplitFinishDominateHoeffding)
		So(f.PruningType.Type, ShouldEqual, conf_forest.SplitPruneHalf)
		So(f.UseRunningStatsMethod, ShouldBeTrue)
		So(f.Seed, ShouldEqual, uint64(42))
	})

	Convey("missing file", t, func() {
		_, err := InitConfig(t.TempDir())
		So(err, ShouldNotBeNil)
	})

	Convey("invalid forest config", t, func() {
		dir := t.TempDir()
		bad := "forest_config:\n  num_outputs: 2\n  finish_type:\n    type: dominate_bootstrap\n"
		So(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(bad), 0o644), ShouldBeNil)
		_, err := InitConfig(dir)
		So(err, ShouldNotBeNil)
	})
}

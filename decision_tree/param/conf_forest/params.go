package conf_forest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// StatsType picks the accumulator implementation used by every growing leaf.
type StatsType string

const (
	StatsDenseGini              StatsType = "dense_gini"
	StatsSparseGini             StatsType = "sparse_gini"
	StatsLeastSquaresRegression StatsType = "least_squares_regression"
)

// FinishType decides when a leaf may stop collecting examples before split_after_samples.
type FinishType string

const (
	SplitFinishBasic             FinishType = "basic"
	SplitFinishDominateHoeffding FinishType = "dominate_hoeffding"
	SplitFinishDominateBootstrap FinishType = "dominate_bootstrap"
)

// PruneType decides how weak candidates are dropped while a leaf grows.
type PruneType string

const (
	SplitPruneNone      PruneType = "none"
	SplitPruneHalf      PruneType = "half"
	SplitPruneQuarter   PruneType = "quarter"
	SplitPrune10Percent PruneType = "10_percent"
	SplitPruneHoeffding PruneType = "hoeffding"
)

type SplitFinishConfig struct {
	Type            FinishType          `mapstructure:"type" yaml:"type"`
	CheckEverySteps DepthDependentParam `mapstructure:"check_every_steps" yaml:"check_every_steps"`
}

type SplitPruningConfig struct {
	Type              PruneType           `mapstructure:"type" yaml:"type"`
	PruneEverySamples DepthDependentParam `mapstructure:"prune_every_samples" yaml:"prune_every_samples"`
}

// Params are the trainer settings a leaf accumulator reads. Optional values
// are pointers so that "absent" differs from zero.
type Params struct {
	StatsType  StatsType `mapstructure:"stats_type" yaml:"stats_type"`
	NumOutputs int32     `mapstructure:"num_outputs" yaml:"num_outputs"`

	SplitAfterSamples   DepthDependentParam  `mapstructure:"split_after_samples" yaml:"split_after_samples"`
	NumSplitsToConsider DepthDependentParam  `mapstructure:"num_splits_to_consider" yaml:"num_splits_to_consider"`
	MinSplitSamples     *DepthDependentParam `mapstructure:"min_split_samples" yaml:"min_split_samples,omitempty"`
	DominateFraction    *DepthDependentParam `mapstructure:"dominate_fraction" yaml:"dominate_fraction,omitempty"`

	FinishType  SplitFinishConfig  `mapstructure:"finish_type" yaml:"finish_type"`
	PruningType SplitPruningConfig `mapstructure:"pruning_type" yaml:"pruning_type"`

	UseRunningStatsMethod bool `mapstructure:"use_running_stats_method" yaml:"use_running_stats_method"`

	// Seed feeds the bootstrap sampler of each leaf, 0 means seed from the clock.
	Seed uint64 `mapstructure:"seed" yaml:"seed"`
}

// DefaultParams mirrors the defaults of the forest trainer: dense gini,
// basic finish, no pruning.
func DefaultParams(numOutputs int32) *Params {
	return &Params{
		StatsType:           StatsDenseGini,
		NumOutputs:          numOutputs,
		SplitAfterSamples:   Constant(250),
		NumSplitsToConsider: Constant(10),
		FinishType:          SplitFinishConfig{Type: SplitFinishBasic},
		PruningType:         SplitPruningConfig{Type: SplitPruneNone},
	}
}

// Validate checks what can be checked without a depth. Depth-resolved ranges
// (dominate fraction in (0,1]) are checked by the accumulators.
func (p *Params) Validate() error {
	if p.NumOutputs < 1 {
		return fmt.Errorf("num_outputs: expected value in range [1, ∞), but got '%v'", p.NumOutputs)
	}
	switch p.StatsType {
	case StatsDenseGini, StatsSparseGini, StatsLeastSquaresRegression:
	default:
		return fmt.Errorf("stats_type: unknown value '%v'", p.StatsType)
	}
	switch p.FinishType.Type {
	case "", SplitFinishBasic:
	case SplitFinishDominateHoeffding, SplitFinishDominateBootstrap:
		if p.DominateFraction == nil || p.MinSplitSamples == nil {
			return fmt.Errorf("finish_type '%v': dominate_fraction and min_split_samples required", p.FinishType.Type)
		}
	default:
		return fmt.Errorf("finish_type: unknown value '%v'", p.FinishType.Type)
	}
	if p.PruningType.Type == SplitPruneHoeffding && p.DominateFraction == nil {
		return fmt.Errorf("pruning_type '%v': dominate_fraction required", p.PruningType.Type)
	}
	return nil
}

// IsRegression reports whether leaves accumulate continuous targets.
func (p *Params) IsRegression() bool {
	return p.StatsType == StatsLeastSquaresRegression
}

func (p *Params) String() string {
	out, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Sprintf("%+v", *p)
	}
	return string(out)
}

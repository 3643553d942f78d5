package grow

import (
	"fmt"

	"github.com/Roche85/tensorforest/decision_tree/param/conf_forest"
	"github.com/Roche85/tensorforest/utils"
)

var (
	_ LeafStats = (*DenseClassificationStats)(nil)
	_ LeafStats = (*SparseClassificationStats)(nil)
	_ LeafStats = (*LeastSquaresRegressionStats)(nil)
)

// NewLeafStats builds the accumulator of a leaf at depth according to
// params.StatsType.
func NewLeafStats(params *conf_forest.Params, depth int32, opts ...Option) (LeafStats, error) {
	if params == nil {
		return nil, fmt.Errorf("%w: nil params", utils.ErrEmptyPointer)
	}
	if params.NumOutputs < 1 {
		return nil, fmt.Errorf("%w: num_outputs must be positive, got %d", utils.ErrParameter, params.NumOutputs)
	}
	var (
		stats LeafStats
		err   error
	)
	switch params.StatsType {
	case conf_forest.StatsDenseGini:
		stats, err = NewDenseClassificationStats(params, depth, opts...)
	case conf_forest.StatsSparseGini:
		stats, err = NewSparseClassificationStats(params, depth, opts...)
	case conf_forest.StatsLeastSquaresRegression:
		stats = NewLeastSquaresRegressionStats(params, depth)
	default:
		err = fmt.Errorf("%w: unknown stats type %q", utils.ErrParameter, params.StatsType)
	}
	if err != nil {
		return nil, err
	}
	return stats, nil
}

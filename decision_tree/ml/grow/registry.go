package grow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Roche85/tensorforest/decision_tree/ml/tree"
	"github.com/Roche85/tensorforest/decision_tree/model"
	"github.com/Roche85/tensorforest/decision_tree/param/conf_forest"
	"github.com/Roche85/tensorforest/rock-share/base/logger"
	"github.com/Roche85/tensorforest/utils"
	cmap "github.com/orcaman/concurrent-map"
)

type fertileLeaf struct {
	mu    sync.Mutex
	stats LeafStats
}

// LeafCheckpoint is the persisted form of one growing leaf.
type LeafCheckpoint struct {
	Depth int32
	Slot  []byte
}

// FertileStats holds the accumulators of all growing leaves. Different leaves
// can be updated concurrently, calls on one leaf are serialised.
type FertileStats struct {
	params *conf_forest.Params
	opts   []Option
	leaves cmap.ConcurrentMap
}

func NewFertileStats(params *conf_forest.Params, opts ...Option) *FertileStats {
	return &FertileStats{
		params: params,
		opts:   opts,
		leaves: cmap.New(),
	}
}

// Open starts growing leafID at depth with the given candidates.
func (f *FertileStats) Open(leafID string, depth int32, splits []*model.BinaryNode) error {
	stats, err := NewLeafStats(f.params, depth, f.opts...)
	if err != nil {
		return err
	}
	for _, split := range splits {
		if err := tree.ValidateSplit(split); err != nil {
			return fmt.Errorf("%w: %v", utils.ErrParameter, err)
		}
		stats.AddSplit(split)
	}
	if !f.leaves.SetIfAbsent(leafID, &fertileLeaf{stats: stats}) {
		return fmt.Errorf("%w: %s", utils.ErrLeafExists, leafID)
	}
	logger.Debugf("open leaf %s at depth %d with %d splits", leafID, depth, len(splits))
	return nil
}

func (f *FertileStats) leaf(leafID string) (*fertileLeaf, error) {
	v, ok := f.leaves.Get(leafID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", utils.ErrLeafNotFound, leafID)
	}
	return v.(*fertileLeaf), nil
}

func (f *FertileStats) withLeaf(leafID string, fn func(stats LeafStats)) error {
	leaf, err := f.leaf(leafID)
	if err != nil {
		return err
	}
	leaf.mu.Lock()
	defer leaf.mu.Unlock()
	fn(leaf.stats)
	return nil
}

// AddExample routes one example into leafID and reports whether the leaf is
// now finished.
func (f *FertileStats) AddExample(leafID string, data tree.DataSet, target tree.Target, example int) (finished bool, err error) {
	err = f.withLeaf(leafID, func(stats LeafStats) {
		stats.AddExample(data, target, example)
		finished = stats.IsFinished()
	})
	return finished, err
}

// BestSplit returns the current best split of leafID, ok is false when no
// candidate has weight on both sides.
func (f *FertileStats) BestSplit(leafID string) (best *model.SplitCandidate, ok bool, err error) {
	err = f.withLeaf(leafID, func(stats LeafStats) {
		best = &model.SplitCandidate{}
		ok = stats.BestSplit(best)
	})
	if !ok {
		best = nil
	}
	return best, ok, err
}

func (f *FertileStats) Finished(leafID string) (finished bool, err error) {
	err = f.withLeaf(leafID, func(stats LeafStats) {
		finished = stats.IsFinished()
	})
	return finished, err
}

// Describe renders the candidate scores of leafID.
func (f *FertileStats) Describe(leafID string) (out string, err error) {
	err = f.withLeaf(leafID, func(stats LeafStats) {
		out = Describe(stats)
	})
	return out, err
}

// Close forgets leafID, after its split was committed or the leaf abandoned.
func (f *FertileStats) Close(leafID string) {
	f.leaves.Remove(leafID)
}

func (f *FertileStats) Len() int {
	return f.leaves.Count()
}

// Snapshot packs one leaf into a persisted slot.
func (f *FertileStats) Snapshot(ctx context.Context, leafID string) (cp LeafCheckpoint, err error) {
	var encodeErr error
	err = f.withLeaf(leafID, func(stats LeafStats) {
		slot := &model.FertileSlot{}
		stats.PackToProto(slot)
		cp.Depth = stats.Depth()
		cp.Slot, encodeErr = model.Marshal(ctx, slot)
	})
	if err != nil {
		return cp, err
	}
	return cp, encodeErr
}

// Checkpoint packs every open leaf.
func (f *FertileStats) Checkpoint(ctx context.Context) (map[string]LeafCheckpoint, error) {
	out := make(map[string]LeafCheckpoint, f.leaves.Count())
	for item := range f.leaves.IterBuffered() {
		cp, err := f.Snapshot(ctx, item.Key)
		if errors.Is(err, utils.ErrLeafNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("checkpoint leaf %s: %w", item.Key, err)
		}
		out[item.Key] = cp
	}
	return out, nil
}

// Restore opens, or replaces, the leaves of a checkpoint.
func (f *FertileStats) Restore(ctx context.Context, checkpoints map[string]LeafCheckpoint) error {
	for leafID, cp := range checkpoints {
		slot := &model.FertileSlot{}
		if err := model.Unmarshal(ctx, cp.Slot, slot); err != nil {
			return fmt.Errorf("restore leaf %s: %w", leafID, err)
		}
		for i, cand := range slot.Candidates {
			if cand == nil {
				return fmt.Errorf("%w: restore leaf %s: empty candidate %d", utils.ErrParameter, leafID, i)
			}
			if err := tree.ValidateSplit(cand.Split); err != nil {
				return fmt.Errorf("%w: restore leaf %s: candidate %d: %v", utils.ErrParameter, leafID, i, err)
			}
		}
		stats, err := NewLeafStats(f.params, cp.Depth, f.opts...)
		if err != nil {
			return err
		}
		stats.ExtractFromProto(slot)
		f.leaves.Set(leafID, &fertileLeaf{stats: stats})
	}
	logger.Infof("restored %d leaves", len(checkpoints))
	return nil
}

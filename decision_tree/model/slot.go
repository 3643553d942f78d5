package model

import (
	"context"

	"github.com/apache/thrift/lib/go/thrift"
)

// SplitCandidate is a split with its side statistics. In a FertileSlot only
// LeftStats is filled, the right side being derived from the leaf totals;
// BestSplit fills both.
type SplitCandidate struct {
	Split      *BinaryNode
	LeftStats  *LeafStat
	RightStats *LeafStat
}

// FertileSlot is the persisted state of one growing leaf.
type FertileSlot struct {
	PostInitLeafStats *LeafStat
	Candidates        []*SplitCandidate
}

// MutablePostInitLeafStats returns PostInitLeafStats, creating it if needed.
func (s *FertileSlot) MutablePostInitLeafStats() *LeafStat {
	if s.PostInitLeafStats == nil {
		s.PostInitLeafStats = &LeafStat{}
	}
	return s.PostInitLeafStats
}

// AddCandidate appends an empty candidate and returns it.
func (s *FertileSlot) AddCandidate() *SplitCandidate {
	c := &SplitCandidate{LeftStats: &LeafStat{}}
	s.Candidates = append(s.Candidates, c)
	return c
}

// MutableLeftStats returns LeftStats, creating it if needed.
func (c *SplitCandidate) MutableLeftStats() *LeafStat {
	if c.LeftStats == nil {
		c.LeftStats = &LeafStat{}
	}
	return c.LeftStats
}

// MutableRightStats returns RightStats, creating it if needed.
func (c *SplitCandidate) MutableRightStats() *LeafStat {
	if c.RightStats == nil {
		c.RightStats = &LeafStat{}
	}
	return c.RightStats
}

func (c *SplitCandidate) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "SplitCandidate", func() error {
		if c.Split != nil {
			if err := writeField(ctx, p, "split", thrift.STRUCT, 1, func() error {
				return c.Split.Write(ctx, p)
			}); err != nil {
				return err
			}
		}
		if c.LeftStats != nil {
			if err := writeField(ctx, p, "left_stats", thrift.STRUCT, 2, func() error {
				return c.LeftStats.Write(ctx, p)
			}); err != nil {
				return err
			}
		}
		if c.RightStats != nil {
			return writeField(ctx, p, "right_stats", thrift.STRUCT, 3, func() error {
				return c.RightStats.Write(ctx, p)
			})
		}
		return nil
	})
}

func (c *SplitCandidate) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "SplitCandidate", func(ctx context.Context, p thrift.TProtocol, id int16, typeId thrift.TType) (bool, error) {
		if typeId != thrift.STRUCT {
			return false, nil
		}
		switch id {
		case 1:
			c.Split = &BinaryNode{}
			return true, c.Split.Read(ctx, p)
		case 2:
			c.LeftStats = &LeafStat{}
			return true, c.LeftStats.Read(ctx, p)
		case 3:
			c.RightStats = &LeafStat{}
			return true, c.RightStats.Read(ctx, p)
		}
		return false, nil
	})
}

func (s *FertileSlot) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "FertileSlot", func() error {
		if s.PostInitLeafStats != nil {
			if err := writeField(ctx, p, "post_init_leaf_stats", thrift.STRUCT, 1, func() error {
				return s.PostInitLeafStats.Write(ctx, p)
			}); err != nil {
				return err
			}
		}
		return writeField(ctx, p, "candidates", thrift.LIST, 2, func() error {
			if err := p.WriteListBegin(ctx, thrift.STRUCT, len(s.Candidates)); err != nil {
				return thrift.PrependError("error writing list begin: ", err)
			}
			for _, c := range s.Candidates {
				if err := c.Write(ctx, p); err != nil {
					return err
				}
			}
			return p.WriteListEnd(ctx)
		})
	})
}

func (s *FertileSlot) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "FertileSlot", func(ctx context.Context, p thrift.TProtocol, id int16, typeId thrift.TType) (bool, error) {
		switch {
		case id == 1 && typeId == thrift.STRUCT:
			s.PostInitLeafStats = &LeafStat{}
			return true, s.PostInitLeafStats.Read(ctx, p)
		case id == 2 && typeId == thrift.LIST:
			_, size, err := p.ReadListBegin(ctx)
			if err != nil {
				return true, thrift.PrependError("error reading list begin: ", err)
			}
			s.Candidates = make([]*SplitCandidate, 0, size)
			for i := 0; i < size; i++ {
				c := &SplitCandidate{}
				if err := c.Read(ctx, p); err != nil {
					return true, err
				}
				s.Candidates = append(s.Candidates, c)
			}
			return true, p.ReadListEnd(ctx)
		}
		return false, nil
	})
}

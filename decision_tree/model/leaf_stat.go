package model

import (
	"context"

	"github.com/apache/thrift/lib/go/thrift"
)

// ClassificationLeafStat holds per-class weights, either dense (indexed by
// class id) or sparse (keyed by class id). Only one of them is set.
type ClassificationLeafStat struct {
	DenseCounts  []float64
	SparseCounts map[int32]float64
}

// RegressionLeafStat holds per-output sums and sums of squares. The field
// names follow the persisted format, the values are not divided by the weight.
type RegressionLeafStat struct {
	MeanOutput        []float64
	MeanOutputSquares []float64
}

// LeafStat is the statistics block shared by leaf totals and candidate sides.
type LeafStat struct {
	WeightSum      float64
	Classification *ClassificationLeafStat
	Regression     *RegressionLeafStat
}

// MutableClassification returns Classification, creating it if needed.
func (s *LeafStat) MutableClassification() *ClassificationLeafStat {
	if s.Classification == nil {
		s.Classification = &ClassificationLeafStat{}
	}
	return s.Classification
}

// MutableRegression returns Regression, creating it if needed.
func (s *LeafStat) MutableRegression() *RegressionLeafStat {
	if s.Regression == nil {
		s.Regression = &RegressionLeafStat{}
	}
	return s.Regression
}

func (c *ClassificationLeafStat) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "ClassificationLeafStat", func() error {
		if c.DenseCounts != nil {
			if err := writeField(ctx, p, "dense_counts", thrift.LIST, 1, func() error {
				return writeDoubleList(ctx, p, c.DenseCounts)
			}); err != nil {
				return err
			}
		}
		if c.SparseCounts != nil {
			return writeField(ctx, p, "sparse_counts", thrift.MAP, 2, func() error {
				return writeSparseMap(ctx, p, c.SparseCounts)
			})
		}
		return nil
	})
}

func (c *ClassificationLeafStat) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "ClassificationLeafStat", func(ctx context.Context, p thrift.TProtocol, id int16, typeId thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && typeId == thrift.LIST:
			c.DenseCounts, err = readDoubleList(ctx, p)
		case id == 2 && typeId == thrift.MAP:
			c.SparseCounts, err = readSparseMap(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

func (r *RegressionLeafStat) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "RegressionLeafStat", func() error {
		if err := writeField(ctx, p, "mean_output", thrift.LIST, 1, func() error {
			return writeDoubleList(ctx, p, r.MeanOutput)
		}); err != nil {
			return err
		}
		return writeField(ctx, p, "mean_output_squares", thrift.LIST, 2, func() error {
			return writeDoubleList(ctx, p, r.MeanOutputSquares)
		})
	})
}

func (r *RegressionLeafStat) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "RegressionLeafStat", func(ctx context.Context, p thrift.TProtocol, id int16, typeId thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && typeId == thrift.LIST:
			r.MeanOutput, err = readDoubleList(ctx, p)
		case id == 2 && typeId == thrift.LIST:
			r.MeanOutputSquares, err = readDoubleList(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

func (s *LeafStat) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "LeafStat", func() error {
		if err := writeField(ctx, p, "weight_sum", thrift.DOUBLE, 1, func() error {
			return p.WriteDouble(ctx, s.WeightSum)
		}); err != nil {
			return err
		}
		if s.Classification != nil {
			if err := writeField(ctx, p, "classification", thrift.STRUCT, 2, func() error {
				return s.Classification.Write(ctx, p)
			}); err != nil {
				return err
			}
		}
		if s.Regression != nil {
			return writeField(ctx, p, "regression", thrift.STRUCT, 3, func() error {
				return s.Regression.Write(ctx, p)
			})
		}
		return nil
	})
}

func (s *LeafStat) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "LeafStat", func(ctx context.Context, p thrift.TProtocol, id int16, typeId thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && typeId == thrift.DOUBLE:
			s.WeightSum, err = p.ReadDouble(ctx)
		case id == 2 && typeId == thrift.STRUCT:
			s.Classification = &ClassificationLeafStat{}
			err = s.Classification.Read(ctx, p)
		case id == 3 && typeId == thrift.STRUCT:
			s.Regression = &RegressionLeafStat{}
			err = s.Regression.Read(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

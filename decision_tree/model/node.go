package model

import (
	"context"
	"fmt"

	"github.com/apache/thrift/lib/go/thrift"
)

// InequalityType is the comparison of an axis-aligned split: feature OP threshold routes LEFT.
type InequalityType int32

const (
	LessOrEqual InequalityType = iota
	LessThan
	GreaterOrEqual
	GreaterThan
)

func (t InequalityType) String() string {
	switch t {
	case LessOrEqual:
		return "<="
	case LessThan:
		return "<"
	case GreaterOrEqual:
		return ">="
	case GreaterThan:
		return ">"
	default:
		return fmt.Sprintf("InequalityType(%d)", int32(t))
	}
}

// BinaryNode is a split definition. An empty Expression means the axis-aligned
// test on Feature/Threshold; otherwise Expression is a boolean expression over
// the variables x0..xN and true routes LEFT.
type BinaryNode struct {
	Feature    int32
	Threshold  float64
	Inequality InequalityType
	Expression string
}

func (n *BinaryNode) Clone() *BinaryNode {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}

func (n *BinaryNode) String() string {
	if n.Expression != "" {
		return n.Expression
	}
	return fmt.Sprintf("x%d %v %v", n.Feature, n.Inequality, n.Threshold)
}

func (n *BinaryNode) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "BinaryNode", func() error {
		if err := writeField(ctx, p, "feature", thrift.I32, 1, func() error {
			return p.WriteI32(ctx, n.Feature)
		}); err != nil {
			return err
		}
		if err := writeField(ctx, p, "threshold", thrift.DOUBLE, 2, func() error {
			return p.WriteDouble(ctx, n.Threshold)
		}); err != nil {
			return err
		}
		if err := writeField(ctx, p, "inequality", thrift.I32, 3, func() error {
			return p.WriteI32(ctx, int32(n.Inequality))
		}); err != nil {
			return err
		}
		if n.Expression == "" {
			return nil
		}
		return writeField(ctx, p, "expression", thrift.STRING, 4, func() error {
			return p.WriteString(ctx, n.Expression)
		})
	})
}

func (n *BinaryNode) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "BinaryNode", func(ctx context.Context, p thrift.TProtocol, id int16, typeId thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && typeId == thrift.I32:
			n.Feature, err = p.ReadI32(ctx)
		case id == 2 && typeId == thrift.DOUBLE:
			n.Threshold, err = p.ReadDouble(ctx)
		case id == 3 && typeId == thrift.I32:
			var v int32
			v, err = p.ReadI32(ctx)
			n.Inequality = InequalityType(v)
		case id == 4 && typeId == thrift.STRING:
			n.Expression, err = p.ReadString(ctx)
		default:
			return false, nil
		}
		return true, err
	})
}

package model

import (
	"context"
	"fmt"

	"github.com/apache/thrift/lib/go/thrift"
)

// fieldReader handles one field id while reading a struct, returning false for ids it does not know.
type fieldReader func(ctx context.Context, p thrift.TProtocol, id int16, typeId thrift.TType) (bool, error)

// readStruct walks the fields of a struct and skips everything fieldReader does not claim.
func readStruct(ctx context.Context, p thrift.TProtocol, name string, read fieldReader) error {
	if _, err := p.ReadStructBegin(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%s read error: ", name), err)
	}
	for {
		_, typeId, id, err := p.ReadFieldBegin(ctx)
		if err != nil {
			return thrift.PrependError(fmt.Sprintf("%s field %d read error: ", name, id), err)
		}
		if typeId == thrift.STOP {
			break
		}
		handled, err := read(ctx, p, id, typeId)
		if err != nil {
			return thrift.PrependError(fmt.Sprintf("%s field %d read error: ", name, id), err)
		}
		if !handled {
			if err := p.Skip(ctx, typeId); err != nil {
				return err
			}
		}
		if err := p.ReadFieldEnd(ctx); err != nil {
			return err
		}
	}
	if err := p.ReadStructEnd(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%s read struct end error: ", name), err)
	}
	return nil
}

func writeField(ctx context.Context, p thrift.TProtocol, name string, typeId thrift.TType, id int16, body func() error) error {
	if err := p.WriteFieldBegin(ctx, name, typeId, id); err != nil {
		return thrift.PrependError(fmt.Sprintf("write field begin error %d:%s: ", id, name), err)
	}
	if err := body(); err != nil {
		return thrift.PrependError(fmt.Sprintf("field %d (%s) write error: ", id, name), err)
	}
	if err := p.WriteFieldEnd(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("write field end error %d:%s: ", id, name), err)
	}
	return nil
}

func writeStruct(ctx context.Context, p thrift.TProtocol, name string, fields func() error) error {
	if err := p.WriteStructBegin(ctx, name); err != nil {
		return thrift.PrependError(fmt.Sprintf("%s write struct begin error: ", name), err)
	}
	if err := fields(); err != nil {
		return err
	}
	if err := p.WriteFieldStop(ctx); err != nil {
		return thrift.PrependError("write field stop error: ", err)
	}
	if err := p.WriteStructEnd(ctx); err != nil {
		return thrift.PrependError("write struct stop error: ", err)
	}
	return nil
}

func writeDoubleList(ctx context.Context, p thrift.TProtocol, values []float64) error {
	if err := p.WriteListBegin(ctx, thrift.DOUBLE, len(values)); err != nil {
		return thrift.PrependError("error writing list begin: ", err)
	}
	for _, v := range values {
		if err := p.WriteDouble(ctx, v); err != nil {
			return err
		}
	}
	return p.WriteListEnd(ctx)
}

func readDoubleList(ctx context.Context, p thrift.TProtocol) ([]float64, error) {
	_, size, err := p.ReadListBegin(ctx)
	if err != nil {
		return nil, thrift.PrependError("error reading list begin: ", err)
	}
	values := make([]float64, 0, size)
	for i := 0; i < size; i++ {
		v, err := p.ReadDouble(ctx)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if err := p.ReadListEnd(ctx); err != nil {
		return nil, err
	}
	return values, nil
}

func writeSparseMap(ctx context.Context, p thrift.TProtocol, values map[int32]float64) error {
	if err := p.WriteMapBegin(ctx, thrift.I32, thrift.DOUBLE, len(values)); err != nil {
		return thrift.PrependError("error writing map begin: ", err)
	}
	for k, v := range values {
		if err := p.WriteI32(ctx, k); err != nil {
			return err
		}
		if err := p.WriteDouble(ctx, v); err != nil {
			return err
		}
	}
	return p.WriteMapEnd(ctx)
}

func readSparseMap(ctx context.Context, p thrift.TProtocol) (map[int32]float64, error) {
	_, _, size, err := p.ReadMapBegin(ctx)
	if err != nil {
		return nil, thrift.PrependError("error reading map begin: ", err)
	}
	values := make(map[int32]float64, size)
	for i := 0; i < size; i++ {
		k, err := p.ReadI32(ctx)
		if err != nil {
			return nil, err
		}
		v, err := p.ReadDouble(ctx)
		if err != nil {
			return nil, err
		}
		values[k] = v
	}
	if err := p.ReadMapEnd(ctx); err != nil {
		return nil, err
	}
	return values, nil
}

package model

import (
	"context"

	"github.com/apache/thrift/lib/go/thrift"
)

var protocolFactory = thrift.NewTCompactProtocolFactoryConf(&thrift.TConfiguration{})

// Marshal encodes any record of this package with the thrift compact protocol.
func Marshal(ctx context.Context, msg thrift.TStruct) ([]byte, error) {
	ser := thrift.NewTSerializer()
	ser.Protocol = protocolFactory.GetProtocol(ser.Transport)
	return ser.Write(ctx, msg)
}

// Unmarshal decodes data produced by Marshal into msg.
func Unmarshal(ctx context.Context, data []byte, msg thrift.TStruct) error {
	de := thrift.NewTDeserializer()
	de.Protocol = protocolFactory.GetProtocol(de.Transport)
	return de.Read(ctx, msg, data)
}

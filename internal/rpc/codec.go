package rpc

import (
	"fmt"

	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/mem"
	"google.golang.org/protobuf/proto"

	// registers grpc's stock proto codec first so the one below replaces it
	_ "google.golang.org/grpc/encoding/proto"
)

// CodecName is grpc's default content-subtype. The service speaks plain
// protobuf, so any client generated from keycustody.proto interoperates.
const CodecName = "proto"

func init() {
	encoding.RegisterCodecV2(Codec{})
}

// Codec encodes the message types of this package in the protobuf binary
// format and hands anything else that is a proto.Message to the protobuf
// runtime, so other services on the same server keep working.
type Codec struct{}

func (Codec) Marshal(v any) (mem.BufferSlice, error) {
	var (
		b   []byte
		err error
	)
	switch m := v.(type) {
	case message:
		b, err = m.appendWire(nil)
	case proto.Message:
		b, err = proto.Marshal(m)
	default:
		return nil, fmt.Errorf("rpc: marshal: unsupported type %T", v)
	}
	if err != nil {
		return nil, fmt.Errorf("rpc: marshal %T: %w", v, err)
	}
	return mem.BufferSlice{mem.SliceBuffer(b)}, nil
}

func (Codec) Unmarshal(data mem.BufferSlice, v any) error {
	b := data.Materialize()

	var err error
	switch m := v.(type) {
	case message:
		err = m.readWire(b)
	case proto.Message:
		err = proto.Unmarshal(b, m)
	default:
		return fmt.Errorf("rpc: unmarshal: unsupported type %T", v)
	}
	if err != nil {
		return fmt.Errorf("rpc: unmarshal %T: %w", v, err)
	}
	return nil
}

func (Codec) Name() string {
	return CodecName
}

package rpc

import (
	"bytes"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// message is implemented by every request and response type. The encoding
// is the protobuf binary format of the matching message in keycustody.proto.
type message interface {
	appendWire(b []byte) ([]byte, error)
	readWire(b []byte) error
}

// Zero values are omitted, as proto3 does for scalar fields.

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendInt(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendMessage(b []byte, num protowire.Number, m message) ([]byte, error) {
	inner, err := m.appendWire(nil)
	if err != nil {
		return nil, err
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, inner), nil
}

func appendTime(b []byte, num protowire.Number, t time.Time) ([]byte, error) {
	if t.IsZero() {
		return b, nil
	}
	inner, err := proto.Marshal(timestamppb.New(t))
	if err != nil {
		return nil, err
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, inner), nil
}

// field is one decoded tag/value pair.
type field struct {
	num protowire.Number
	typ protowire.Type
	v   uint64
	b   []byte
}

func (f field) wrongType() error {
	return fmt.Errorf("field %d: unexpected wire type %d", f.num, f.typ)
}

func (f field) asString() (string, error) {
	if f.typ != protowire.BytesType {
		return "", f.wrongType()
	}
	return string(f.b), nil
}

func (f field) asBytes() ([]byte, error) {
	if f.typ != protowire.BytesType {
		return nil, f.wrongType()
	}
	return bytes.Clone(f.b), nil
}

func (f field) asInt() (int64, error) {
	if f.typ != protowire.VarintType {
		return 0, f.wrongType()
	}
	return int64(f.v), nil
}

func (f field) asMessage(m message) error {
	if f.typ != protowire.BytesType {
		return f.wrongType()
	}
	return m.readWire(f.b)
}

func (f field) asTime() (time.Time, error) {
	if f.typ != protowire.BytesType {
		return time.Time{}, f.wrongType()
	}
	ts := &timestamppb.Timestamp{}
	if err := proto.Unmarshal(f.b, ts); err != nil {
		return time.Time{}, err
	}
	if err := ts.CheckValid(); err != nil {
		return time.Time{}, err
	}
	return ts.AsTime(), nil
}

// eachField walks b and calls fn for every field. Unknown fields are
// passed too; fn ignores the numbers it does not know.
func eachField(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.v, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.b, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

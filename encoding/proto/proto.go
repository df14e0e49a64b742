// Package proto registers a protobuf encoding.Codec using
// google.golang.org/protobuf, so generated message types can be used
// without any h2rpc-specific marshalling code.
package proto

import (
	"fmt"

	"google.golang.org/protobuf/proto"

	"github.com/h2rpc/h2rpc/encoding"
)

// Name is the content-subtype this codec registers under.
const Name = "proto"

type codec struct{}

func (codec) Marshal(v interface{}) ([]byte, error) {
	vv, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("proto: %T does not implement proto.Message", v)
	}
	return proto.Marshal(vv)
}

func (codec) Unmarshal(data []byte, v interface{}) error {
	vv, ok := v.(proto.Message)
	if !ok {
		return fmt.Errorf("proto: %T does not implement proto.Message", v)
	}
	return proto.Unmarshal(data, vv)
}

func (codec) Name() string { return Name }

func init() {
	encoding.RegisterCodec(codec{})
}

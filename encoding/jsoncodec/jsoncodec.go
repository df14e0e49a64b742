// Package jsoncodec registers a JSON encoding.Codec, used by the demo
// math service so it can run without a protoc code-generation step.
package jsoncodec

import (
	"encoding/json"

	"github.com/h2rpc/h2rpc/encoding"
)

// Name is the content-subtype this codec registers under.
const Name = "json"

type codec struct{}

func (codec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (codec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (codec) Name() string { return Name }

func init() {
	encoding.RegisterCodec(codec{})
}

// Package encoding defines the interfaces for message codecs and
// compressors, and the registries used to look them up by name.
package encoding

import (
	"io"
	"strings"
)

// Identity is the reserved name for the no-op compressor: the leading
// compression byte on the wire is currently always zero, and this is
// the only compressor registered by default.
const Identity = "identity"

// Compressor compresses and decompresses message payloads.
type Compressor interface {
	Compress(w io.Writer) (io.WriteCloser, error)
	Decompress(r io.Reader) (io.Reader, error)
	Name() string
}

var registeredCompressor = make(map[string]Compressor)

// RegisterCompressor registers c under c.Name(). Must only be called
// during initialization; not safe for concurrent use. A later
// registration under the same name replaces an earlier one.
func RegisterCompressor(c Compressor) {
	registeredCompressor[c.Name()] = c
}

// GetCompressor returns the Compressor registered under name, or nil.
func GetCompressor(name string) Compressor {
	return registeredCompressor[name]
}

// Codec marshals and unmarshals messages to and from their wire
// representation. Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
	Name() string
}

var registeredCodecs = make(map[string]Codec)

// RegisterCodec registers codec under the lowercased form of its
// Name(), which becomes the content-subtype on the wire. Panics if
// codec is nil or its name is empty. Must only be called during
// initialization; not safe for concurrent use.
func RegisterCodec(codec Codec) {
	if codec == nil {
		panic("encoding: cannot register a nil Codec")
	}
	contentSubtype := strings.ToLower(codec.Name())
	if contentSubtype == "" {
		panic("encoding: cannot register a Codec with an empty name")
	}
	registeredCodecs[contentSubtype] = codec
}

// GetCodec returns the Codec registered under contentSubtype (expected
// lowercase), or nil if none is registered.
func GetCodec(contentSubtype string) Codec {
	return registeredCodecs[contentSubtype]
}

package metadata

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"
)

const binHdrSuffix = "-bin"

// reservedHeaders are never exposed to applications as metadata; they
// are consumed by the protocol itself.
var reservedHeaders = map[string]bool{
	"content-type":      true,
	"grpc-encoding":     true,
	"grpc-message":      true,
	"grpc-message-type": true,
	"grpc-status":       true,
	"grpc-timeout":      true,
	"te":                true,
	"user-agent":        true,
}

// IsReservedHeader reports whether name is reserved by the protocol and
// therefore excluded from application-visible metadata. Pseudo-headers
// (leading ':') are always reserved.
func IsReservedHeader(name string) bool {
	name = strings.ToLower(name)
	if len(name) > 0 && name[0] == ':' {
		return true
	}
	return reservedHeaders[name]
}

// KnownSecureHeaders carries headers whose transmission on a plaintext
// connection is governed by the process-wide secure-header policy.
var knownSecureHeaders = map[string]bool{
	"authorization": true,
}

// IsKnownSecureHeader reports whether name carries credentials that
// should not cross a plaintext connection unchecked.
func IsKnownSecureHeader(name string) bool {
	return knownSecureHeaders[strings.ToLower(name)]
}

// EncodeBinHeader base64-encodes v for transmission as a "-bin" header,
// using the unpadded encoding unless the result would need padding
// characters stripped, matching the wire convention of real gRPC
// implementations.
func EncodeBinHeader(v []byte) string {
	return base64.RawStdEncoding.EncodeToString(v)
}

// DecodeBinHeader decodes a "-bin" header value, accepting both padded
// and unpadded base64 since peers disagree on which they emit.
func DecodeBinHeader(v string) ([]byte, error) {
	if len(v)%4 == 0 {
		// Padded or exact-multiple unpadded input: StdEncoding handles
		// both only when padding is absent would error, so try RawStdEncoding first.
		if b, err := base64.StdEncoding.DecodeString(v); err == nil {
			return b, nil
		}
	}
	return base64.RawStdEncoding.DecodeString(v)
}

// RemoveBinValues transforms a user-supplied header (name, value) pair
// for transmission: binary or non-ASCII values are base64-encoded and
// renamed with a "-bin" suffix, the wire convention for carrying
// arbitrary bytes inside HTTP/2 header fields. ASCII string values pass
// through unchanged.
func RemoveBinValues(name string, value []byte) (string, string) {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, binHdrSuffix) {
		return lower, EncodeBinHeader(value)
	}
	if isASCII(value) {
		return lower, string(value)
	}
	return lower + binHdrSuffix, EncodeBinHeader(value)
}

// RemoveBinValuesString is RemoveBinValues for a string value, applying
// the same non-ASCII/UTF-8 detection rule.
func RemoveBinValuesString(name, value string) (string, string) {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, binHdrSuffix) {
		return lower, EncodeBinHeader([]byte(value))
	}
	if isASCIIString(value) {
		return lower, value
	}
	return lower + binHdrSuffix, EncodeBinHeader([]byte(value))
}

// FromWireHeader decodes an incoming (name, value) pair, undoing
// RemoveBinValues: a "-bin"-suffixed name is base64-decoded and exposed
// under its unsuffixed name.
func FromWireHeader(name, value string) (string, string, error) {
	lower := strings.ToLower(name)
	if !strings.HasSuffix(lower, binHdrSuffix) {
		return lower, value, nil
	}
	b, err := DecodeBinHeader(value)
	if err != nil {
		return "", "", err
	}
	return strings.TrimSuffix(lower, binHdrSuffix), string(b), nil
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func isASCIIString(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

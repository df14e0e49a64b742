package status

import (
	"golang.org/x/net/http2"

	"github.com/h2rpc/h2rpc/codes"
)

// http2ErrConvTab maps HTTP/2 stream error codes to RPC codes, matching
// the table real-world gRPC implementations use when a stream resets.
var http2ErrConvTab = map[http2.ErrCode]codes.Code{
	http2.ErrCodeNo:                 codes.Internal,
	http2.ErrCodeProtocol:           codes.Internal,
	http2.ErrCodeInternal:           codes.Internal,
	http2.ErrCodeFlowControl:        codes.Internal,
	http2.ErrCodeSettingsTimeout:    codes.Internal,
	http2.ErrCodeFrameSize:          codes.Internal,
	http2.ErrCodeRefusedStream:      codes.Unavailable,
	http2.ErrCodeCancel:             codes.Canceled,
	http2.ErrCodeCompression:        codes.Internal,
	http2.ErrCodeConnect:            codes.Internal,
	http2.ErrCodeEnhanceYourCalm:    codes.ResourceExhausted,
	http2.ErrCodeInadequateSecurity: codes.PermissionDenied,
	// ErrCodeStreamClosed and ErrCodeHTTP11Required are intentionally
	// absent: not mapped, unknown codes fall through to codes.Unknown.
}

// FromHTTP2Error maps an HTTP/2 stream error code to an RPC code.
// Unrecognized codes map to codes.Unknown.
func FromHTTP2Error(e http2.ErrCode) codes.Code {
	if c, ok := http2ErrConvTab[e]; ok {
		return c
	}
	return codes.Unknown
}

// httpStatusConvTab maps plain HTTP status codes — as might be returned
// by an intermediary unaware of this protocol — to RPC codes.
var httpStatusConvTab = map[int]codes.Code{
	400: codes.Internal,
	401: codes.Unauthenticated,
	403: codes.PermissionDenied,
	404: codes.Unimplemented,
	429: codes.Unavailable,
	502: codes.Unavailable,
	503: codes.Unavailable,
	504: codes.Unavailable,
}

// FromHTTPStatus maps a bare HTTP status code to an RPC code. Unrecognized
// codes map to codes.Unknown.
func FromHTTPStatus(status int) codes.Code {
	if c, ok := httpStatusConvTab[status]; ok {
		return c
	}
	return codes.Unknown
}

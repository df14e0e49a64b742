package h2rpc

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/h2rpc/h2rpc/codes"
	"github.com/h2rpc/h2rpc/credentials"
	"github.com/h2rpc/h2rpc/metadata"
	"github.com/h2rpc/h2rpc/status"
)

// contentType is the fixed content-type for every call on the wire;
// the protocol does not vary it by codec.
const contentType = "application/grpc"

const (
	hdrGrpcStatus  = "Grpc-Status"
	hdrGrpcMessage = "Grpc-Message"
	hdrGrpcTimeout = "Grpc-Timeout"
)

// applyOutgoingMetadata writes md into h as wire headers, applying the
// binary header transform and, on a plaintext connection, the
// process-wide secure-header policy to every known-secure header.
func applyOutgoingMetadata(h http.Header, md metadata.MD, plaintext bool) error {
	for k, values := range md {
		if metadata.IsReservedHeader(k) {
			continue
		}
		if plaintext {
			out, drop, err := credentials.BlockSecureHeader(k, values)
			if err != nil {
				return err
			}
			if drop {
				continue
			}
			values = out
		}
		for _, v := range values {
			name, value := metadata.RemoveBinValuesString(k, v)
			h.Add(name, value)
		}
	}
	return nil
}

// extractMetadata builds the application-visible metadata.MD from a
// wire header/trailer block, filtering reserved fields and undoing the
// binary header transform.
func extractMetadata(h http.Header) (metadata.MD, error) {
	md := metadata.MD{}
	for k, values := range h {
		if metadata.IsReservedHeader(k) {
			continue
		}
		for _, v := range values {
			name, value, err := metadata.FromWireHeader(k, v)
			if err != nil {
				return nil, err
			}
			md.Append(name, value)
		}
	}
	return md, nil
}

// parseGrpcStatus looks for grpc-status/grpc-message in h. ok is false
// if no grpc-status was present at all.
func parseGrpcStatus(h http.Header) (st *status.Status, ok bool) {
	raw := h.Get(hdrGrpcStatus)
	if raw == "" {
		return nil, false
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		return status.New(codes.Internal, "invalid grpc-status: "+raw), true
	}
	msg := decodeGrpcMessage(h.Get(hdrGrpcMessage))
	return status.New(codes.Code(code), msg), true
}

// setGrpcStatusTrailer sets the terminal trailer fields on a server
// response, using the http.TrailerPrefix convention so they need not
// be declared in advance.
func setGrpcStatusTrailer(h http.Header, st *status.Status) {
	h.Set(http.TrailerPrefix+hdrGrpcStatus, strconv.Itoa(int(st.Code())))
	if st.Message() != "" {
		h.Set(http.TrailerPrefix+hdrGrpcMessage, encodeGrpcMessage(st.Message()))
	}
}

// encodeGrpcMessage percent-encodes bytes that are not printable ASCII,
// since grpc-message travels as a textual HTTP header field.
func encodeGrpcMessage(msg string) string {
	var needsEscaping bool
	for i := 0; i < len(msg); i++ {
		c := msg[i]
		if c < 0x20 || c > 0x7e || c == '%' {
			needsEscaping = true
			break
		}
	}
	if !needsEscaping {
		return msg
	}
	var out strings.Builder
	for i := 0; i < len(msg); i++ {
		c := msg[i]
		if c < 0x20 || c > 0x7e || c == '%' {
			out.WriteByte('%')
			out.WriteString(strings.ToUpper(strconv.FormatUint(uint64(c), 16)))
		} else {
			out.WriteByte(c)
		}
	}
	return out.String()
}

func decodeGrpcMessage(msg string) string {
	if !strings.Contains(msg, "%") {
		return msg
	}
	var out strings.Builder
	for i := 0; i < len(msg); i++ {
		if msg[i] == '%' && i+2 < len(msg) {
			if b, err := strconv.ParseUint(msg[i+1:i+3], 16, 8); err == nil {
				out.WriteByte(byte(b))
				i += 2
				continue
			}
		}
		out.WriteByte(msg[i])
	}
	return out.String()
}

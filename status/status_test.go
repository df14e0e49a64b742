package status

import (
	"errors"
	"testing"

	"golang.org/x/net/http2"

	"github.com/h2rpc/h2rpc/codes"
)

func TestErrRoundTrip(t *testing.T) {
	err := Error(codes.NotFound, "no such widget")
	st, ok := FromError(err)
	if !ok {
		t.Fatal("FromError reported not-ok for a status error")
	}
	if st.Code() != codes.NotFound || st.Message() != "no such widget" {
		t.Errorf("got (%s, %q)", st.Code(), st.Message())
	}
}

func TestErrorOKIsNil(t *testing.T) {
	if err := Error(codes.OK, "ignored"); err != nil {
		t.Errorf("Error(OK, ...) = %v, want nil", err)
	}
}

func TestConvertUnknownError(t *testing.T) {
	st := Convert(errors.New("boom"))
	if st.Code() != codes.Unknown {
		t.Errorf("Convert(plain error).Code() = %s, want UNKNOWN", st.Code())
	}
}

func TestConvertNil(t *testing.T) {
	if Convert(nil).Code() != codes.OK {
		t.Errorf("Convert(nil).Code() != OK")
	}
}

func TestFromHTTP2Error(t *testing.T) {
	cases := map[http2.ErrCode]codes.Code{
		http2.ErrCodeRefusedStream:      codes.Unavailable,
		http2.ErrCodeCancel:             codes.Canceled,
		http2.ErrCodeEnhanceYourCalm:    codes.ResourceExhausted,
		http2.ErrCodeInadequateSecurity: codes.PermissionDenied,
		http2.ErrCodeNo:                 codes.Internal,
	}
	for in, want := range cases {
		if got := FromHTTP2Error(in); got != want {
			t.Errorf("FromHTTP2Error(%v) = %s, want %s", in, got, want)
		}
	}
}

func TestFromHTTP2ErrorUnmapped(t *testing.T) {
	if got := FromHTTP2Error(http2.ErrCodeStreamClosed); got != codes.Unknown {
		t.Errorf("FromHTTP2Error(StreamClosed) = %s, want UNKNOWN", got)
	}
}

func TestFromHTTPStatus(t *testing.T) {
	if got := FromHTTPStatus(404); got != codes.Unimplemented {
		t.Errorf("FromHTTPStatus(404) = %s, want UNIMPLEMENTED", got)
	}
	if got := FromHTTPStatus(200); got != codes.Unknown {
		t.Errorf("FromHTTPStatus(200) = %s, want UNKNOWN", got)
	}
}

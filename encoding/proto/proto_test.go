package proto

import (
	"testing"

	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/h2rpc/h2rpc/encoding"
)

func TestRegisteredUnderProto(t *testing.T) {
	if encoding.GetCodec(Name) == nil {
		t.Fatal("proto codec not registered under \"proto\"")
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	c := encoding.GetCodec(Name)
	in := wrapperspb.String("hello")
	b, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	out := new(wrapperspb.StringValue)
	if err := c.Unmarshal(b, out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Value != "hello" {
		t.Errorf("round trip = %q, want hello", out.Value)
	}
}

func TestMarshalRejectsNonProtoMessage(t *testing.T) {
	c := encoding.GetCodec(Name)
	if _, err := c.Marshal(struct{ X int }{1}); err == nil {
		t.Error("expected an error marshaling a non-proto.Message value")
	}
}

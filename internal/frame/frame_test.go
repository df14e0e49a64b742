package frame

import (
	"bytes"
	"io"
	"testing"
)

func TestWriteDecodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	msg := []byte("hello, h2rpc")
	if err := Write(&buf, msg, false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(got, msg) {
		t.Errorf("Decode = %q, want %q", got, msg)
	}
}

func TestReaderMultipleMessages(t *testing.T) {
	var buf bytes.Buffer
	want := [][]byte{[]byte("first"), []byte(""), []byte("third message")}
	for _, m := range want {
		if err := Write(&buf, m, false); err != nil {
			t.Fatal(err)
		}
	}
	r := NewReader(&buf)
	for i, w := range want {
		got, err := r.ReadMessage()
		if err != nil {
			t.Fatalf("message %d: %v", i, err)
		}
		if !bytes.Equal(got, w) {
			t.Errorf("message %d = %q, want %q", i, got, w)
		}
	}
	if _, err := r.ReadMessage(); err != io.EOF {
		t.Errorf("final ReadMessage = %v, want io.EOF", err)
	}
}

func TestReaderPartialTrailingBytesIsError(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0, 5, 'a', 'b'}) // declares 5 bytes, only 2 present, then EOF
	r := NewReader(&buf)
	if _, err := r.ReadMessage(); err == nil {
		t.Error("expected an error for a stream ending mid-message, got nil")
	}
}

func TestReaderRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0xff, 0xff, 0xff, 0xff})
	r := NewReader(&buf)
	if _, err := r.ReadMessage(); err == nil {
		t.Error("expected an error for an over-max declared length, got nil")
	}
}

package frame

import (
	"testing"
	"time"
)

func TestEncodeIntervalPicksSmallestUnit(t *testing.T) {
	s, err := EncodeInterval(250 * time.Microsecond)
	if err != nil {
		t.Fatal(err)
	}
	if s != "250u" {
		t.Errorf("EncodeInterval(250us) = %q, want 250u", s)
	}
}

func TestEncodeIntervalOverflowsToCoarserUnit(t *testing.T) {
	// 100s worth of microseconds (100,000,000) exceeds the 10^8-1 cap,
	// so encoding must fall through to milliseconds.
	s, err := EncodeInterval(100 * time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if s != "100000m" {
		t.Errorf("EncodeInterval(100s) = %q, want 100000m", s)
	}
}

func TestDecodeIntervalRoundTrip(t *testing.T) {
	cases := []time.Duration{
		1500 * time.Microsecond,
		3 * time.Second,
		2 * time.Minute,
		1 * time.Hour,
	}
	for _, d := range cases {
		s, err := EncodeInterval(d)
		if err != nil {
			t.Fatalf("EncodeInterval(%v): %v", d, err)
		}
		got, err := DecodeInterval(s)
		if err != nil {
			t.Fatalf("DecodeInterval(%q): %v", s, err)
		}
		if got != d {
			t.Errorf("round trip %v -> %q -> %v", d, s, got)
		}
	}
}

func TestDecodeIntervalNanosecondIsLossy(t *testing.T) {
	got, err := DecodeInterval("1500n")
	if err != nil {
		t.Fatal(err)
	}
	if got != 1*time.Microsecond {
		t.Errorf("DecodeInterval(1500n) = %v, want 1us (lossy /1000 division)", got)
	}
}

func TestDecodeIntervalUnrecognizedUnit(t *testing.T) {
	if _, err := DecodeInterval("10Q"); err == nil {
		t.Error("expected an error for an unrecognized unit")
	}
}

package codes

import "testing"

func TestStringKnownCodes(t *testing.T) {
	cases := map[Code]string{
		OK:                 "OK",
		Canceled:           "CANCELLED",
		InvalidArgument:    "INVALID_ARGUMENT",
		DeadlineExceeded:   "DEADLINE_EXCEEDED",
		Unauthenticated:    "UNAUTHENTICATED",
	}
	for c, want := range cases {
		if got := c.String(); got != want {
			t.Errorf("Code(%d).String() = %q, want %q", c, got, want)
		}
	}
}

func TestStringUnknownCode(t *testing.T) {
	c := Code(999)
	want := "CODE(999)"
	if got := c.String(); got != want {
		t.Errorf("Code(999).String() = %q, want %q", got, want)
	}
}

package metadata

import "testing"

func TestRemoveBinValuesASCIIPassthrough(t *testing.T) {
	name, value := RemoveBinValuesString("X-Trace", "abc123")
	if name != "x-trace" || value != "abc123" {
		t.Errorf("got (%q, %q)", name, value)
	}
}

func TestRemoveBinValuesNonASCIIRoundTrip(t *testing.T) {
	raw := "bytes-\xff-here"
	name, value := RemoveBinValuesString("bt1", raw)
	if name != "bt1-bin" {
		t.Errorf("name = %q, want bt1-bin", name)
	}
	outName, outValue, err := FromWireHeader(name, value)
	if err != nil {
		t.Fatalf("FromWireHeader: %v", err)
	}
	if outName != "bt1" || outValue != raw {
		t.Errorf("round trip = (%q, %q), want (bt1, %q)", outName, outValue, raw)
	}
}

func TestRemoveBinValuesAlreadyBinSuffixed(t *testing.T) {
	name, value := RemoveBinValuesString("Trace-Bin", "hello")
	if name != "trace-bin" {
		t.Errorf("name = %q", name)
	}
	_, decoded, err := FromWireHeader(name, value)
	if err != nil || decoded != "hello" {
		t.Errorf("decoded = %q, err = %v", decoded, err)
	}
}

func TestIsReservedHeader(t *testing.T) {
	for _, h := range []string{"Grpc-Status", "content-type", ":authority", "TE"} {
		if !IsReservedHeader(h) {
			t.Errorf("IsReservedHeader(%q) = false, want true", h)
		}
	}
	if IsReservedHeader("x-my-header") {
		t.Error("IsReservedHeader(x-my-header) = true, want false")
	}
}

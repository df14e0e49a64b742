package h2rpc

import (
	"testing"
	"time"
)

func TestParseServiceConfig(t *testing.T) {
	js := `{
		"methodConfig": [{
			"name": [{"service": "Greeter", "method": "Hello"}],
			"waitForReady": true,
			"timeout": "2.500s",
			"maxRequestMessageBytes": 1024,
			"maxResponseMessageBytes": 2048
		}]
	}`
	sc, err := parseServiceConfig(js)
	if err != nil {
		t.Fatalf("parseServiceConfig: %v", err)
	}
	mc, ok := sc.Methods["/Greeter/Hello"]
	if !ok {
		t.Fatal("missing method config for /Greeter/Hello")
	}
	if mc.WaitForReady == nil || !*mc.WaitForReady {
		t.Error("WaitForReady not parsed as true")
	}
	if mc.Timeout == nil || *mc.Timeout != 2500*time.Millisecond {
		t.Errorf("Timeout = %v, want 2.5s", mc.Timeout)
	}
	if mc.MaxReqSize == nil || *mc.MaxReqSize != 1024 {
		t.Errorf("MaxReqSize = %v, want 1024", mc.MaxReqSize)
	}
	if mc.MaxRespSize == nil || *mc.MaxRespSize != 2048 {
		t.Errorf("MaxRespSize = %v, want 2048", mc.MaxRespSize)
	}
}

func TestParseServiceConfigMalformedDuration(t *testing.T) {
	js := `{"methodConfig": [{"name": [{"service": "X"}], "timeout": "not-a-duration"}]}`
	if _, err := parseServiceConfig(js); err == nil {
		t.Error("expected an error for a malformed timeout duration")
	}
}

func TestGetMaxSize(t *testing.T) {
	def := 100
	if got := getMaxSize(nil, nil, def); *got != def {
		t.Errorf("getMaxSize(nil, nil, %d) = %d", def, *got)
	}
	mc := newInt(50)
	if got := getMaxSize(mc, nil, def); *got != 50 {
		t.Errorf("getMaxSize(mc=50, nil, ...) = %d, want 50", *got)
	}
	dopt := newInt(30)
	if got := getMaxSize(mc, dopt, def); *got != 30 {
		t.Errorf("getMaxSize(mc=50, dopt=30, ...) = %d, want 30 (minimum wins)", *got)
	}
}

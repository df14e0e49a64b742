package h2rpc

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/h2rpc/h2rpc/grpclog"
)

const maxInt = int(^uint(0) >> 1)

// MethodConfig holds dial-time default options for a single method,
// merged with whatever the call's own CallOptions specify.
type MethodConfig struct {
	// WaitForReady, if set, is the method's default for whether calls
	// should wait for the connection pool to be ready rather than
	// failing fast.
	WaitForReady *bool
	// Timeout is the method's default deadline. The actual deadline is
	// the minimum of this and any deadline set via CallOption; if
	// neither is set the call has no deadline.
	Timeout *time.Duration
	// MaxReqSize and MaxRespSize bound the serialized size, in bytes,
	// of an individual request/response message. The actual bound is
	// the minimum of this and any per-call override.
	MaxReqSize  *int
	MaxRespSize *int
}

// ServiceConfig holds dial-time defaults for every method of a service.
type ServiceConfig struct {
	Methods map[string]MethodConfig
}

func parseDuration(s *string) (*time.Duration, error) {
	if s == nil {
		return nil, nil
	}
	if !strings.HasSuffix(*s, "s") {
		return nil, fmt.Errorf("malformed duration %q", *s)
	}
	ss := strings.SplitN((*s)[:len(*s)-1], ".", 3)
	if len(ss) > 2 {
		return nil, fmt.Errorf("malformed duration %q", *s)
	}
	hasDigits := false
	var d time.Duration
	if len(ss[0]) > 0 {
		i, err := strconv.ParseInt(ss[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("malformed duration %q: %v", *s, err)
		}
		d = time.Duration(i) * time.Second
		hasDigits = true
	}
	if len(ss) == 2 && len(ss[1]) > 0 {
		if len(ss[1]) > 9 {
			return nil, fmt.Errorf("malformed duration %q", *s)
		}
		f, err := strconv.ParseInt(ss[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed duration %q: %v", *s, err)
		}
		for i := 9; i > len(ss[1]); i-- {
			f *= 10
		}
		d += time.Duration(f)
		hasDigits = true
	}
	if !hasDigits {
		return nil, fmt.Errorf("malformed duration %q", *s)
	}
	return &d, nil
}

// methodName is one entry of a wire method config's "name" array: a
// service, optionally narrowed to one of its methods.
type methodName struct {
	Service *string
	Method  *string
}

func (n methodName) route() (string, bool) {
	if n.Service == nil {
		return "", false
	}
	path := "/" + *n.Service + "/"
	if n.Method != nil {
		path += *n.Method
	}
	return path, true
}

// wireMethodConfig is the on-the-wire JSON shape of one methodConfig
// entry; parseServiceConfig flattens a list of these, each naming one
// or more routes, into ServiceConfig.Methods.
type wireMethodConfig struct {
	Name                    *[]methodName
	WaitForReady            *bool
	Timeout                 *string
	MaxRequestMessageBytes  *int64
	MaxResponseMessageBytes *int64
}

type wireServiceConfig struct {
	MethodConfig *[]wireMethodConfig
}

// clampSize converts a wire byte count to an *int, saturating at
// maxInt rather than overflowing on a 32-bit int platform.
func clampSize(n *int64) *int {
	if n == nil {
		return nil
	}
	if *n > int64(maxInt) {
		return newInt(maxInt)
	}
	return newInt(int(*n))
}

// parseServiceConfig parses a JSON string into a ServiceConfig,
// matching the method-config shape real gRPC service configs use.
func parseServiceConfig(js string) (ServiceConfig, error) {
	var wire wireServiceConfig
	if err := json.Unmarshal([]byte(js), &wire); err != nil {
		grpclog.Warningf("h2rpc: parseServiceConfig error unmarshaling %s due to %v", js, err)
		return ServiceConfig{}, err
	}
	sc := ServiceConfig{Methods: make(map[string]MethodConfig)}
	if wire.MethodConfig == nil {
		return sc, nil
	}

	for _, m := range *wire.MethodConfig {
		if m.Name == nil {
			continue
		}
		timeout, err := parseDuration(m.Timeout)
		if err != nil {
			grpclog.Warningf("h2rpc: parseServiceConfig error unmarshaling %s due to %v", js, err)
			return ServiceConfig{}, err
		}

		mc := MethodConfig{
			WaitForReady: m.WaitForReady,
			Timeout:      timeout,
			MaxReqSize:   clampSize(m.MaxRequestMessageBytes),
			MaxRespSize:  clampSize(m.MaxResponseMessageBytes),
		}
		for _, n := range *m.Name {
			if route, ok := n.route(); ok {
				sc.Methods[route] = mc
			}
		}
	}
	return sc, nil
}

func minInt(a, b *int) *int {
	if *a < *b {
		return a
	}
	return b
}

func getMaxSize(mcMax, doptMax *int, defaultVal int) *int {
	if mcMax == nil && doptMax == nil {
		return &defaultVal
	}
	if mcMax != nil && doptMax != nil {
		return minInt(mcMax, doptMax)
	}
	if mcMax != nil {
		return mcMax
	}
	return doptMax
}

func newInt(b int) *int {
	return &b
}

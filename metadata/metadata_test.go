package metadata

import (
	"context"
	"testing"
)

func TestPairs(t *testing.T) {
	md := Pairs("Key", "v1", "key", "v2")
	if got := md.Get("KEY"); len(got) != 2 || got[0] != "v1" || got[1] != "v2" {
		t.Errorf("Get(KEY) = %v, want [v1 v2]", got)
	}
}

func TestPairsOddPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Pairs with odd args did not panic")
		}
	}()
	Pairs("k1", "v1", "k2")
}

func TestJoin(t *testing.T) {
	a := Pairs("x", "1")
	b := Pairs("x", "2", "y", "3")
	out := Join(a, b)
	if got := out.Get("x"); len(got) != 2 {
		t.Errorf("Join x = %v, want 2 values", got)
	}
	if got := out.Get("y"); len(got) != 1 || got[0] != "3" {
		t.Errorf("Join y = %v, want [3]", got)
	}
}

func TestIncomingOutgoingContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := FromIncomingContext(ctx); ok {
		t.Error("FromIncomingContext on bare context reported ok")
	}
	md := Pairs("k", "v")
	ctx = NewIncomingContext(ctx, md)
	got, ok := FromIncomingContext(ctx)
	if !ok || got.Get("k")[0] != "v" {
		t.Errorf("FromIncomingContext = %v, %v", got, ok)
	}

	ctx2 := NewOutgoingContext(context.Background(), md)
	got2, ok := FromOutgoingContext(ctx2)
	if !ok || got2.Get("k")[0] != "v" {
		t.Errorf("FromOutgoingContext = %v, %v", got2, ok)
	}
}

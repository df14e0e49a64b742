package h2rpc

import "testing"

func sampleDesc() *ServiceDesc {
	return &ServiceDesc{
		ServiceName: "Greeter",
		Methods: []MethodDesc{
			{MethodName: "Hello"},
		},
		Streams: []StreamDesc{
			{StreamName: "Chat"},
		},
	}
}

func TestAppDeclareDuplicateService(t *testing.T) {
	a := NewApp()
	if err := a.Declare(sampleDesc()); err != nil {
		t.Fatal(err)
	}
	if err := a.Declare(sampleDesc()); err == nil {
		t.Error("expected an error re-declaring the same service name")
	}
}

func TestAppRegisterUnknownRoute(t *testing.T) {
	a := NewApp()
	if err := a.Declare(sampleDesc()); err != nil {
		t.Fatal(err)
	}
	if err := a.RegisterUnary("/Greeter/Nope", nil, &MethodDesc{MethodName: "Nope"}); err == nil {
		t.Error("expected an error registering an undeclared route")
	}
}

func TestAppRegisterTwiceFails(t *testing.T) {
	a := NewApp()
	desc := sampleDesc()
	if err := a.Declare(desc); err != nil {
		t.Fatal(err)
	}
	if err := a.RegisterUnary("/Greeter/Hello", struct{}{}, &desc.Methods[0]); err != nil {
		t.Fatal(err)
	}
	if err := a.RegisterUnary("/Greeter/Hello", struct{}{}, &desc.Methods[0]); err == nil {
		t.Error("expected an error registering the same route twice")
	}
}

func TestAppIsComplete(t *testing.T) {
	a := NewApp()
	desc := sampleDesc()
	if err := a.Declare(desc); err != nil {
		t.Fatal(err)
	}
	if a.IsComplete() {
		t.Error("IsComplete true before any route registered")
	}
	if err := a.RegisterUnary("/Greeter/Hello", struct{}{}, &desc.Methods[0]); err != nil {
		t.Fatal(err)
	}
	if a.IsComplete() {
		t.Error("IsComplete true with the stream route still missing")
	}
	if err := a.RegisterStream("/Greeter/Chat", struct{}{}, &desc.Streams[0]); err != nil {
		t.Fatal(err)
	}
	if !a.IsComplete() {
		t.Error("IsComplete false after every route registered")
	}
	if got := a.MissingRoutes(); len(got) != 0 {
		t.Errorf("MissingRoutes = %v, want empty", got)
	}
}

func TestAppLookup(t *testing.T) {
	a := NewApp()
	desc := sampleDesc()
	if err := a.Declare(desc); err != nil {
		t.Fatal(err)
	}
	impl := struct{ name string }{"svc"}
	if err := a.RegisterUnary("/Greeter/Hello", impl, &desc.Methods[0]); err != nil {
		t.Fatal(err)
	}
	if e := a.lookup("/Greeter/Hello"); e == nil || e.method == nil {
		t.Error("lookup did not return the registered unary route")
	}
	if e := a.lookup("/Greeter/Missing"); e != nil {
		t.Error("lookup returned an entry for an unregistered route")
	}
}

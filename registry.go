package h2rpc

import (
	"fmt"
	"sync"
)

// routeEntry is what the registry holds for one fully wired route.
type routeEntry struct {
	serviceImpl interface{}
	method      *MethodDesc // non-nil for unary routes
	stream      *StreamDesc // non-nil for streaming routes
}

// App is the build-time-assembled collection of services: it produces
// the required route set "/Service/Method" and the handler lookup
// table keyed by route. A service cannot be added twice; a route
// cannot be registered twice; registering a route outside the
// required set fails; IsComplete holds iff every required route has a
// handler.
type App struct {
	mu       sync.Mutex
	services map[string]bool
	required map[string]bool // route -> true while still missing a handler
	routes   map[string]*routeEntry
}

// NewApp returns an empty App.
func NewApp() *App {
	return &App{
		services: make(map[string]bool),
		required: make(map[string]bool),
		routes:   make(map[string]*routeEntry),
	}
}

// Declare records desc's service name and required route set without
// wiring any handlers yet. Returns an error if the service name was
// already declared.
func (a *App) Declare(desc *ServiceDesc) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.services[desc.ServiceName] {
		return fmt.Errorf("h2rpc: service %q already added", desc.ServiceName)
	}
	a.services[desc.ServiceName] = true
	for _, m := range desc.Methods {
		route := "/" + desc.ServiceName + "/" + m.MethodName
		a.required[route] = true
	}
	for _, s := range desc.Streams {
		route := "/" + desc.ServiceName + "/" + s.StreamName
		a.required[route] = true
	}
	return nil
}

// RegisterUnary wires impl to handle the unary route, which must be
// a member of the required set and not already registered.
func (a *App) RegisterUnary(route string, impl interface{}, m *MethodDesc) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.checkRegisterable(route); err != nil {
		return err
	}
	a.routes[route] = &routeEntry{serviceImpl: impl, method: m}
	delete(a.required, route)
	return nil
}

// RegisterStream wires impl to handle the streaming route.
func (a *App) RegisterStream(route string, impl interface{}, s *StreamDesc) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.checkRegisterable(route); err != nil {
		return err
	}
	a.routes[route] = &routeEntry{serviceImpl: impl, stream: s}
	delete(a.required, route)
	return nil
}

// checkRegisterable must be called with a.mu held.
func (a *App) checkRegisterable(route string) error {
	if _, already := a.routes[route]; already {
		return fmt.Errorf("h2rpc: route %q already registered", route)
	}
	if _, declared := a.required[route]; !declared {
		return fmt.Errorf("h2rpc: route %q was never declared by any added service", route)
	}
	return nil
}

// MissingRoutes returns the required routes that have no handler yet.
func (a *App) MissingRoutes() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.required))
	for r := range a.required {
		out = append(out, r)
	}
	return out
}

// IsComplete reports whether every required route has a handler.
func (a *App) IsComplete() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.required) == 0
}

// lookup returns the routeEntry for route, or nil if unregistered.
func (a *App) lookup(route string) *routeEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.routes[route]
}

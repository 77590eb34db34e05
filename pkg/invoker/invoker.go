// Package invoker resolves specialist names to invocation targets and runs
// single invocations under the scope their manifest declaration grants.
package invoker

import (
	"context"
	"time"
)

// Request describes one specialist invocation. Task is the assembled
// instruction text; how it was assembled is the caller's concern.
type Request struct {
	Specialist string
	Task       string
	Context    string
	Scope      Scope
}

// Scope is the capability envelope for one invocation: the external tool
// scopes the specialist may touch, its internal turn ceiling, and the
// wall-clock limit enforced by the registry.
type Scope struct {
	MCPServers []string
	MaxTurns   int
	Timeout    time.Duration
}

// Grants reports whether the scope includes the named tool server.
func (s Scope) Grants(server string) bool {
	for _, granted := range s.MCPServers {
		if granted == server {
			return true
		}
	}
	return false
}

// Invoker runs a single specialist invocation. Implementations are opaque
// to the router: they may call out to processes, networks, or models, but
// whatever they do must respect ctx cancellation.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (string, error)
}

// Func adapts a plain function to the Invoker interface.
type Func func(ctx context.Context, req Request) (string, error)

// Invoke implements Invoker.
func (f Func) Invoke(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

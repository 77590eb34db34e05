package invoker

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jvila/majordomo/pkg/errors"
	"github.com/jvila/majordomo/pkg/manifest"
)

// Registry maps specialist names to invocation targets and runs each
// invocation inside the scope and timeout the manifest declares for it.
type Registry struct {
	store *manifest.Store

	mu       sync.RWMutex
	invokers map[string]Invoker
	limits   map[string]Limits

	defaultTimeout  time.Duration
	defaultMaxTurns int
}

// Limits overrides the registry-wide turn ceiling and wall-clock timeout
// for a single specialist. Zero fields keep the defaults.
type Limits struct {
	MaxTurns int
	Timeout  time.Duration
}

// Option configures a Registry.
type Option func(*Registry)

// WithDefaultTimeout sets the wall-clock ceiling applied to every
// invocation. Zero disables the limit.
func WithDefaultTimeout(d time.Duration) Option {
	return func(r *Registry) { r.defaultTimeout = d }
}

// WithDefaultMaxTurns sets the internal reasoning-turn ceiling handed to
// each invoker through its scope.
func WithDefaultMaxTurns(n int) Option {
	return func(r *Registry) { r.defaultMaxTurns = n }
}

// NewRegistry creates a Registry backed by the given manifest store.
func NewRegistry(store *manifest.Store, opts ...Option) *Registry {
	r := &Registry{
		store:    store,
		invokers: make(map[string]Invoker),
		limits:   make(map[string]Limits),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register binds a specialist name to its invocation target. Registering
// the same name again replaces the previous target.
func (r *Registry) Register(name string, inv Invoker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invokers[name] = inv
}

// SetLimits overrides the turn ceiling and timeout for one specialist.
func (r *Registry) SetLimits(name string, l Limits) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limits[name] = l
}

// Resolve returns the invocation target for a specialist name.
func (r *Registry) Resolve(name string) (Invoker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.invokers[name]
	return inv, ok
}

// Names returns the registered specialist names, unordered.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.invokers))
	for name := range r.invokers {
		out = append(out, name)
	}
	return out
}

// Invoke runs the named specialist against a task. The invocation receives
// only the tool scopes its owning domains declare, a turn ceiling, and a
// wall-clock timeout. All failures come back as typed errors.
func (r *Registry) Invoke(ctx context.Context, specialist, task, taskContext string) (string, error) {
	if strings.TrimSpace(task) == "" {
		return "", errors.New(errors.CodeInvalidRequest, "task must not be empty", nil).
			WithContext("specialist", specialist)
	}

	inv, ok := r.Resolve(specialist)
	if !ok {
		return "", errors.New(errors.CodeUnknownSpecialist, "specialist is not registered", nil).
			WithContext("specialist", specialist)
	}

	scope, err := r.scopeFor(specialist)
	if err != nil {
		return "", err
	}

	req := Request{
		Specialist: specialist,
		Task:       task,
		Context:    taskContext,
		Scope:      scope,
	}
	return r.invokeWithTimeout(ctx, inv, req)
}

// scopeFor computes the least-privilege scope for a specialist: the union
// of mcp_servers across the domains that name it as their owner.
func (r *Registry) scopeFor(specialist string) (Scope, error) {
	man, err := r.store.Load()
	if err != nil {
		return Scope{}, errors.AsMajordomoError(err)
	}

	seen := make(map[string]bool)
	var servers []string
	for _, name := range man.DomainOrder {
		d := man.Domains[name]
		if d.Specialist != specialist {
			continue
		}
		for _, srv := range d.MCPServers {
			if seen[srv] {
				continue
			}
			seen[srv] = true
			servers = append(servers, srv)
		}
	}

	scope := Scope{
		MCPServers: servers,
		MaxTurns:   r.defaultMaxTurns,
		Timeout:    r.defaultTimeout,
	}
	r.mu.RLock()
	l, ok := r.limits[specialist]
	r.mu.RUnlock()
	if ok {
		if l.MaxTurns > 0 {
			scope.MaxTurns = l.MaxTurns
		}
		if l.Timeout > 0 {
			scope.Timeout = l.Timeout
		}
	}
	return scope, nil
}

// invokeWithTimeout runs the invoker behind a timeout boundary. Parent
// cancellation surfaces as CodeCancelled, an elapsed deadline as
// CodeTimeout, and any untyped invoker error as CodeRuntimeFailure.
func (r *Registry) invokeWithTimeout(ctx context.Context, inv Invoker, req Request) (string, error) {
	runCtx := ctx
	var cancel context.CancelFunc
	if req.Scope.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, req.Scope.Timeout)
		defer cancel()
	}

	type result struct {
		output string
		err    error
	}
	done := make(chan result, 1)
	go func() {
		output, err := inv.Invoke(runCtx, req)
		done <- result{output, err}
	}()

	select {
	case <-runCtx.Done():
		if ctx.Err() != nil {
			return "", errors.New(errors.CodeCancelled, "invocation cancelled", ctx.Err()).
				WithContext("specialist", req.Specialist)
		}
		return "", errors.New(errors.CodeTimeout, "invocation exceeded wall-clock timeout", runCtx.Err()).
			WithContext("specialist", req.Specialist).
			WithContext("timeout", req.Scope.Timeout.String()).
			WithRecoverable(true)
	case res := <-done:
		if res.err != nil {
			if me, ok := res.err.(*errors.MajordomoError); ok {
				return "", me
			}
			return "", errors.New(errors.CodeRuntimeFailure, "specialist failed", res.err).
				WithContext("specialist", req.Specialist).
				WithRecoverable(true)
		}
		return res.output, nil
	}
}

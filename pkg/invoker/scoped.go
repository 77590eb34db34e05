package invoker

import (
	"context"
	"fmt"

	"github.com/jvila/majordomo/pkg/errors"
)

// Scoped wraps an Invoker with a declared tool-server requirement set.
// Before the wrapped target runs, every requirement is checked against the
// scope granted by the manifest; a missing grant is a CapabilityDenied
// failure and the target never starts. This keeps least privilege out of
// the hands of individual specialist implementations.
type Scoped struct {
	target   Invoker
	requires []string
}

// NewScoped wraps target with the given tool-server requirements.
func NewScoped(target Invoker, requires ...string) *Scoped {
	return &Scoped{target: target, requires: requires}
}

// Invoke implements Invoker.
func (s *Scoped) Invoke(ctx context.Context, req Request) (string, error) {
	for _, need := range s.requires {
		if !req.Scope.Grants(need) {
			return "", errors.New(errors.CodeCapabilityDenied,
				fmt.Sprintf("tool server %q is not granted to this specialist", need), nil).
				WithContext("specialist", req.Specialist).
				WithContext("required", need).
				WithContext("granted", req.Scope.MCPServers)
		}
	}
	return s.target.Invoke(ctx, req)
}

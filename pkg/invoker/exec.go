package invoker

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/jvila/majordomo/pkg/errors"
)

// Exec invokes a specialist as a subprocess. The assembled instruction and
// the invocation scope are delivered through the environment; the process's
// stdout is the specialist's answer. The process inherits the router
// environment, which is where applied credentials live.
type Exec struct {
	Command string
	Args    []string
	Env     map[string]string
}

// NewExec creates an Exec invoker for the given command line.
func NewExec(command string, args ...string) *Exec {
	return &Exec{Command: command, Args: args}
}

// Invoke implements Invoker.
func (e *Exec) Invoke(ctx context.Context, req Request) (string, error) {
	if e.Command == "" {
		return "", errors.New(errors.CodeRuntimeFailure, "exec invoker has no command", nil).
			WithContext("specialist", req.Specialist)
	}

	cmd := exec.CommandContext(ctx, e.Command, e.Args...)
	cmd.Env = append(os.Environ(),
		"MAJORDOMO_SPECIALIST="+req.Specialist,
		"MAJORDOMO_TASK="+req.Task,
		"MAJORDOMO_CONTEXT="+req.Context,
		"MAJORDOMO_MCP_SERVERS="+strings.Join(req.Scope.MCPServers, ","),
		fmt.Sprintf("MAJORDOMO_MAX_TURNS=%d", req.Scope.MaxTurns),
	)
	for k, v := range e.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			// The registry's timeout boundary owns the classification of
			// deadline and cancellation; pass the raw cause through.
			return "", ctx.Err()
		}
		return "", errors.New(errors.CodeRuntimeFailure, "specialist process failed", err).
			WithContext("specialist", req.Specialist).
			WithContext("stderr", strings.TrimSpace(stderr.String())).
			WithRecoverable(true)
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

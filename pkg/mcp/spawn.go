package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jvila/majordomo/pkg/dispatcher"
	"github.com/jvila/majordomo/pkg/errors"
	"github.com/jvila/majordomo/pkg/manifest"
)

// SpawnTool handles the spawn_specialist MCP tool.
type SpawnTool struct {
	dispatcher *dispatcher.Dispatcher
	log        *slog.Logger
}

// NewSpawnTool creates a SpawnTool.
func NewSpawnTool(d *dispatcher.Dispatcher, log *slog.Logger) *SpawnTool {
	return &SpawnTool{dispatcher: d, log: log}
}

// Definition returns the MCP tool definition for registration.
func (t *SpawnTool) Definition() mcp.Tool {
	return mcp.NewTool("spawn_specialist",
		mcp.WithDescription(
			"Run a single named specialist against a task. The specialist runs "+
				"inside the tool scope its manifest declaration grants, under a "+
				"turn ceiling and wall-clock timeout.",
		),
		mcp.WithString("specialist",
			mcp.Required(),
			mcp.Description("Name of the specialist to invoke."),
		),
		mcp.WithString("task",
			mcp.Required(),
			mcp.Description("The instruction for the specialist."),
		),
		mcp.WithString("context",
			mcp.Description("Optional extra context handed to the specialist."),
		),
	)
}

// Handle processes a spawn_specialist call.
func (t *SpawnTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	specialist, err := req.RequireString("specialist")
	if err != nil || strings.TrimSpace(specialist) == "" {
		return invalidRequest("specialist is required"), nil
	}
	task, err := req.RequireString("task")
	if err != nil || strings.TrimSpace(task) == "" {
		return invalidRequest("task is required"), nil
	}
	taskContext := req.GetString("context", "")

	t.log.InfoContext(ctx, "spawn_specialist.start", slog.String("specialist", specialist))
	res := t.dispatcher.Dispatch(ctx, dispatcher.Task{
		Specialist: specialist,
		Goal:       task,
		Context:    taskContext,
	})
	if res.Failed() {
		return mcp.NewToolResultError(res.Err.Error()), nil
	}
	return mcp.NewToolResultText(res.Output), nil
}

// ParallelTool handles the spawn_parallel MCP tool.
type ParallelTool struct {
	dispatcher *dispatcher.Dispatcher
	store      *manifest.Store
	log        *slog.Logger
}

// NewParallelTool creates a ParallelTool.
func NewParallelTool(d *dispatcher.Dispatcher, store *manifest.Store, log *slog.Logger) *ParallelTool {
	return &ParallelTool{dispatcher: d, store: store, log: log}
}

// Definition returns the MCP tool definition for registration.
func (t *ParallelTool) Definition() mcp.Tool {
	return mcp.NewTool("spawn_parallel",
		mcp.WithDescription(
			"Run several specialists concurrently and collect every result. "+
				"Results come back in task order; one task's failure never hides "+
				"another's output. Pass 'tasks' explicitly, or name a 'workflow' "+
				"to use its declared fan-out.",
		),
		mcp.WithArray("tasks",
			mcp.Description("Sequence of {specialist, task, context?} objects."),
		),
		mcp.WithString("workflow",
			mcp.Description("Workflow whose parallel_tasks supply the fan-out when no tasks are given."),
		),
	)
}

// Handle processes a spawn_parallel call. The whole request is validated
// before any task runs: a single malformed entry rejects the request.
func (t *ParallelTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	tasks, errResult := t.resolveTasks(args)
	if errResult != nil {
		return errResult, nil
	}

	t.log.InfoContext(ctx, "spawn_parallel.start", slog.Int("tasks", len(tasks)))
	results, err := t.dispatcher.DispatchAll(ctx, tasks)
	if err != nil {
		// Request-level failure: cancellation is atomic, no partial results.
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	for i, res := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		if res.Failed() {
			fmt.Fprintf(&b, "Task %d (%s): ERROR %s\n", i+1, res.Specialist, res.Err.Error())
			continue
		}
		fmt.Fprintf(&b, "Task %d (%s):\n%s\n", i+1, res.Specialist, res.Output)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// resolveTasks builds the task list from explicit 'tasks' or a named
// workflow's declared fan-out. The second return carries a ready-made
// invalid-request result when validation fails.
func (t *ParallelTool) resolveTasks(args map[string]any) ([]dispatcher.Task, *mcp.CallToolResult) {
	rawTasks, hasTasks := args["tasks"].([]any)
	workflowName, _ := args["workflow"].(string)

	if hasTasks && len(rawTasks) > 0 {
		tasks := make([]dispatcher.Task, 0, len(rawTasks))
		for i, raw := range rawTasks {
			entry, ok := raw.(map[string]any)
			if !ok {
				return nil, invalidRequest(fmt.Sprintf("tasks[%d] must be an object", i))
			}
			specialist, _ := entry["specialist"].(string)
			if strings.TrimSpace(specialist) == "" {
				return nil, invalidRequest(fmt.Sprintf("tasks[%d] is missing specialist", i))
			}
			goal, _ := entry["task"].(string)
			if strings.TrimSpace(goal) == "" {
				return nil, invalidRequest(fmt.Sprintf("tasks[%d] is missing task", i))
			}
			taskContext, _ := entry["context"].(string)
			tasks = append(tasks, dispatcher.Task{
				Specialist: specialist,
				Goal:       goal,
				Context:    taskContext,
			})
		}
		return tasks, nil
	}

	if workflowName == "" {
		return nil, invalidRequest("either tasks or workflow is required")
	}

	man, err := t.store.Load()
	if err != nil {
		return nil, mcp.NewToolResultError(errors.AsMajordomoError(err).Error())
	}
	wf := man.Workflow(workflowName)
	if wf == nil {
		return nil, invalidRequest(fmt.Sprintf("unknown workflow %q", workflowName))
	}
	if len(wf.ParallelTasks) == 0 {
		return nil, invalidRequest(fmt.Sprintf("workflow %q declares no parallel_tasks", workflowName))
	}

	tasks := make([]dispatcher.Task, 0, len(wf.ParallelTasks))
	for _, pt := range wf.ParallelTasks {
		specialist, ok := man.Specialist(pt.Domain)
		if !ok {
			// The loader validates fan-out domains, so this only happens
			// with a hand-built manifest.
			return nil, invalidRequest(fmt.Sprintf("workflow %q references unknown domain %q", workflowName, pt.Domain))
		}
		tasks = append(tasks, dispatcher.Task{Specialist: specialist, Goal: pt.Task})
	}
	return tasks, nil
}

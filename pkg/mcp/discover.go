package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jvila/majordomo/pkg/errors"
	"github.com/jvila/majordomo/pkg/matcher"
)

// DiscoverTool handles the discover_capability MCP tool.
type DiscoverTool struct {
	matcher *matcher.Matcher
	log     *slog.Logger
}

// NewDiscoverTool creates a DiscoverTool.
func NewDiscoverTool(m *matcher.Matcher, log *slog.Logger) *DiscoverTool {
	return &DiscoverTool{matcher: m, log: log}
}

// Definition returns the MCP tool definition for registration.
func (t *DiscoverTool) Definition() mcp.Tool {
	return mcp.NewTool("discover_capability",
		mcp.WithDescription(
			"Resolve a free-text request to the domains and workflows that can "+
				"handle it, ranked by how many trigger phrases the request contains. "+
				"An empty match set is a normal answer, not an error.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The free-text user request to route."),
		),
		mcp.WithString("mode",
			mcp.Description("What to search: 'domains', 'workflows', or 'all' (default)."),
		),
		mcp.WithString("target",
			mcp.Description("Restrict the answer to a single named domain or workflow."),
		),
	)
}

// Handle processes a discover_capability call.
func (t *DiscoverTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil || strings.TrimSpace(query) == "" {
		return invalidRequest("query is required"), nil
	}
	mode := req.GetString("mode", "all")
	switch mode {
	case "all", "domains", "workflows":
	default:
		return invalidRequest(fmt.Sprintf("unknown mode %q: want domains, workflows, or all", mode)), nil
	}
	target := req.GetString("target", "")

	t.log.InfoContext(ctx, "discover.start", slog.String("mode", mode))

	var b strings.Builder
	matches := 0

	if mode == "all" || mode == "domains" {
		domains, err := t.matcher.FindMatchingDomains(query)
		if err != nil {
			return nil, err
		}
		domains = filterDomains(domains, target)
		if len(domains) > 0 {
			matches += len(domains)
			b.WriteString("Domains:\n")
			for i, c := range domains {
				fmt.Fprintf(&b, "%d. %s: %s\n", i+1, c.Name, c.Config.Description)
				fmt.Fprintf(&b, "   matched: %s\n", strings.Join(c.MatchedTriggers, ", "))
				fmt.Fprintf(&b, "   specialist: %s\n", c.Config.Specialist)
			}
		}
	}

	if mode == "all" || mode == "workflows" {
		workflows, err := t.matcher.FindMatchingWorkflows(query)
		if err != nil {
			return nil, err
		}
		workflows = filterWorkflows(workflows, target)
		if len(workflows) > 0 {
			matches += len(workflows)
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString("Workflows:\n")
			for i, c := range workflows {
				fmt.Fprintf(&b, "%d. %s: %s\n", i+1, c.Name, c.Config.Description)
				fmt.Fprintf(&b, "   matched: %s\n", strings.Join(c.MatchedTriggers, ", "))
				fmt.Fprintf(&b, "   specialist: %s\n", c.Config.Specialist)
			}
		}
	}

	t.log.InfoContext(ctx, "discover.complete", slog.Int("matches", matches))

	if matches == 0 {
		return mcp.NewToolResultText("No matching domains or workflows found."), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

func filterDomains(in []matcher.DomainCandidate, target string) []matcher.DomainCandidate {
	if target == "" {
		return in
	}
	var out []matcher.DomainCandidate
	for _, c := range in {
		if c.Name == target {
			out = append(out, c)
		}
	}
	return out
}

func filterWorkflows(in []matcher.WorkflowCandidate, target string) []matcher.WorkflowCandidate {
	if target == "" {
		return in
	}
	var out []matcher.WorkflowCandidate
	for _, c := range in {
		if c.Name == target {
			out = append(out, c)
		}
	}
	return out
}

// invalidRequest builds the tool error for a malformed request, rejected
// before any dispatch begins.
func invalidRequest(msg string) *mcp.CallToolResult {
	return mcp.NewToolResultError(errors.New(errors.CodeInvalidRequest, msg, nil).Error())
}

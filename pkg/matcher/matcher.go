// Package matcher resolves free-text queries to capability manifest entries
// by literal trigger-phrase containment.
//
// Matching is deliberately not tokenized or fuzzy: a missed phrasing is a
// cheaper mistake than routing to the wrong specialist, because a routed
// specialist is granted real external tool scopes.
package matcher

import (
	"sort"
	"strings"

	"github.com/jvila/majordomo/pkg/manifest"
)

// DomainCandidate is a domain whose triggers matched a query.
// MatchedTriggers is always non-empty and keeps the trigger declaration order.
type DomainCandidate struct {
	Name            string
	Config          *manifest.DomainConfig
	MatchedTriggers []string
}

// WorkflowCandidate is a workflow whose triggers matched a query.
type WorkflowCandidate struct {
	Name            string
	Config          *manifest.WorkflowConfig
	MatchedTriggers []string
}

// Matcher ranks manifest entries against queries. It holds only the loaded
// manifest, which is immutable, so a Matcher is safe for concurrent use.
type Matcher struct {
	store *manifest.Store
}

// New creates a Matcher backed by the given manifest store.
func New(store *manifest.Store) *Matcher {
	return &Matcher{store: store}
}

// FindMatchingDomains returns every domain with at least one trigger whose
// lowercase form is a substring of the lowercase query, sorted by descending
// matched-trigger count. Ties keep manifest declaration order.
func (m *Matcher) FindMatchingDomains(query string) ([]DomainCandidate, error) {
	man, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)

	var out []DomainCandidate
	for _, name := range man.DomainOrder {
		cfg := man.Domains[name]
		matched := matchTriggers(q, cfg.Triggers)
		if len(matched) == 0 {
			continue
		}
		out = append(out, DomainCandidate{Name: name, Config: cfg, MatchedTriggers: matched})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].MatchedTriggers) > len(out[j].MatchedTriggers)
	})
	return out, nil
}

// FindMatchingWorkflows is FindMatchingDomains over the workflow table.
func (m *Matcher) FindMatchingWorkflows(query string) ([]WorkflowCandidate, error) {
	man, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)

	var out []WorkflowCandidate
	for _, name := range man.WorkflowOrder {
		cfg := man.Workflows[name]
		matched := matchTriggers(q, cfg.Triggers)
		if len(matched) == 0 {
			continue
		}
		out = append(out, WorkflowCandidate{Name: name, Config: cfg, MatchedTriggers: matched})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].MatchedTriggers) > len(out[j].MatchedTriggers)
	})
	return out, nil
}

// Specialist resolves a domain or workflow name to its owning specialist.
// Domains shadow workflows on collision.
func (m *Matcher) Specialist(name string) (string, bool) {
	man, err := m.store.Load()
	if err != nil {
		return "", false
	}
	return man.Specialist(name)
}

// MCPServers returns the tool scopes granted to a domain's specialist.
// Unknown domains yield the empty set, never an error.
func (m *Matcher) MCPServers(domain string) []string {
	man, err := m.store.Load()
	if err != nil {
		return nil
	}
	return man.MCPServers(domain)
}

// matchTriggers keeps plain substring containment with no word-boundary
// check: the trigger "on" matches "monday". Callers rely on this
// permissiveness being stable.
func matchTriggers(loweredQuery string, triggers []string) []string {
	var matched []string
	for _, trigger := range triggers {
		if trigger == "" {
			continue
		}
		if strings.Contains(loweredQuery, strings.ToLower(trigger)) {
			matched = append(matched, trigger)
		}
	}
	return matched
}

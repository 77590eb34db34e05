// Package manifest defines the capability manifest: the immutable,
// process-wide description of every domain and workflow majordomo can
// route to, and the specialist that owns each one.
package manifest

// Identity carries descriptive metadata about the assistant. Informational
// only; routing never reads it.
type Identity struct {
	Name      string `yaml:"name"`
	Role      string `yaml:"role"`
	Framework string `yaml:"framework"`
}

// DomainConfig declares one area of capability: its trigger phrases, the
// specialist that owns it, and the tool scopes that specialist is granted.
type DomainConfig struct {
	Description string   `yaml:"description"`
	Triggers    []string `yaml:"triggers"`
	Specialist  string   `yaml:"specialist"`
	MCPServers  []string `yaml:"mcp_servers"`

	Constraints      []string `yaml:"constraints"`
	VIPSenders       []string `yaml:"vip_senders"`
	PriorityChannels []string `yaml:"priority_channels"`
	Databases        []string `yaml:"databases"`
	Workflows        []string `yaml:"workflows"`
}

// ParallelTask is one entry of a workflow's default fan-out.
type ParallelTask struct {
	Domain string `yaml:"domain"`
	Task   string `yaml:"task"`
}

// WorkflowConfig declares a multi-step operation with its own triggers and
// an optional default fan-out across domains.
type WorkflowConfig struct {
	Description   string         `yaml:"description"`
	Triggers      []string       `yaml:"triggers"`
	Specialist    string         `yaml:"specialist"`
	ParallelTasks []ParallelTask `yaml:"parallel_tasks"`
}

// Manifest is the loaded capability manifest. It is immutable after load;
// concurrent readers need no locking. DomainOrder and WorkflowOrder record
// the declaration order of the backing document, which the matcher uses as
// the tie-break for equal match counts.
type Manifest struct {
	Version  int
	Identity Identity

	Domains   map[string]*DomainConfig
	Workflows map[string]*WorkflowConfig

	DomainOrder   []string
	WorkflowOrder []string
}

// Domain returns the named domain config, or nil if absent.
func (m *Manifest) Domain(name string) *DomainConfig {
	return m.Domains[name]
}

// Workflow returns the named workflow config, or nil if absent.
func (m *Manifest) Workflow(name string) *WorkflowConfig {
	return m.Workflows[name]
}

// Specialist resolves a domain or workflow name to its owning specialist.
// Domains shadow workflows on a name collision. The second return reports
// whether the name was found at all.
func (m *Manifest) Specialist(name string) (string, bool) {
	if d := m.Domains[name]; d != nil {
		return d.Specialist, true
	}
	if w := m.Workflows[name]; w != nil {
		return w.Specialist, true
	}
	return "", false
}

// MCPServers returns the tool scopes granted to the named domain's
// specialist. Unknown domains yield an empty set, never an error.
func (m *Manifest) MCPServers(domain string) []string {
	d := m.Domains[domain]
	if d == nil {
		return nil
	}
	out := make([]string, len(d.MCPServers))
	copy(out, d.MCPServers)
	return out
}

package domain

import (
	"fmt"
	"sort"
	"strings"
)

// NodeStatus is the execution status of a flow node. Only the disabled
// status matters for image binding.
type NodeStatus string

const (
	NodeStatusReady    NodeStatus = "ready"
	NodeStatusDisabled NodeStatus = "disabled"
)

// NodeTypeFlow marks an embedded flow node. Such a node is a container
// even when it has no children, so its type is never an image type.
const NodeTypeFlow = "flow"

// PropUserToProxy is the job property naming the user a job runs as.
const PropUserToProxy = "user.to.proxy"

// FlowNode is a node of a flow's task tree. A node with children or of
// type [NodeTypeFlow] is an embedded flow; any other node is a job whose
// Type names the image type it runs on. Overrides holds per-execution property overrides set by the user.
type FlowNode struct {
	ID         string            `json:"id" yaml:"id"`
	Type       string            `json:"type,omitempty" yaml:"type,omitempty"`
	Status     NodeStatus        `json:"status,omitempty" yaml:"status,omitempty"`
	Properties map[string]string `json:"properties,omitempty" yaml:"properties,omitempty"`
	Overrides  map[string]string `json:"overrides,omitempty" yaml:"overrides,omitempty"`
	Nodes      []FlowNode        `json:"nodes,omitempty" yaml:"nodes,omitempty"`
}

// Flow is an executable flow: a project-scoped name and its task tree.
type Flow struct {
	Project string   `json:"project" yaml:"project"`
	FlowID  string   `json:"flowId" yaml:"flowId"`
	Root    FlowNode `json:"root" yaml:"root"`
}

// Name returns the fully-qualified flow name, "<project>.<flowId>". It is
// the key for deterministic rampup draws.
func (f Flow) Name() string {
	return f.Project + "." + f.FlowID
}

// IsEmbeddedFlow reports whether n is a container rather than a job.
func (n *FlowNode) IsEmbeddedFlow() bool {
	return n.Type == NodeTypeFlow || len(n.Nodes) > 0
}

// walkJobs calls fn for every enabled job of the tree rooted at root.
// Traversal uses an explicit stack so arbitrarily deep flows do not grow
// the goroutine stack.
func walkJobs(root FlowNode, fn func(n *FlowNode)) {
	stack := []*FlowNode{&root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.IsEmbeddedFlow() {
			for i := len(n.Nodes) - 1; i >= 0; i-- {
				stack = append(stack, &n.Nodes[i])
			}
			continue
		}
		if n.Status == NodeStatusDisabled {
			continue
		}
		fn(n)
	}
}

// JobTypes returns the sorted set of job types used by enabled jobs of the
// flow. Disabled jobs never get a container, so their images are skipped.
func JobTypes(root FlowNode) []string {
	set := make(map[string]struct{})
	walkJobs(root, func(n *FlowNode) {
		if n.Type != "" {
			set[n.Type] = struct{}{}
		}
	})
	return sortedKeys(set)
}

// ProxyUsers returns the sorted set of users enabled jobs run as. A user
// override on the job takes precedence over the job's own property.
func ProxyUsers(root FlowNode) []string {
	set := make(map[string]struct{})
	walkJobs(root, func(n *FlowNode) {
		if u, ok := n.Overrides[PropUserToProxy]; ok && u != "" {
			set[u] = struct{}{}
			return
		}
		if u, ok := n.Properties[PropUserToProxy]; ok && u != "" {
			set[u] = struct{}{}
		}
	})
	return sortedKeys(set)
}

// ParsePrefetchProxyUsers parses a "jobtype,user;jobtype,user" mapping and
// returns the sorted users mapped to any of jobTypes.
func ParsePrefetchProxyUsers(mapping string, jobTypes []string) ([]string, error) {
	present := make(map[string]struct{}, len(jobTypes))
	for _, jt := range jobTypes {
		present[jt] = struct{}{}
	}

	set := make(map[string]struct{})
	for _, pair := range strings.Split(mapping, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		jobType, user, ok := strings.Cut(pair, ",")
		jobType, user = strings.TrimSpace(jobType), strings.TrimSpace(user)
		if !ok || jobType == "" || user == "" {
			return nil, fmt.Errorf("%w: malformed prefetch proxy user entry %q", ErrInvalidArgument, pair)
		}
		if _, ok := present[jobType]; ok {
			set[user] = struct{}{}
		}
	}
	return sortedKeys(set), nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

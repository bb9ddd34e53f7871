// Package mermaid renders a Graph, optionally against a Job, as a mermaid
// flowchart for diagnostics: pasting the output into any mermaid-capable
// viewer shows the dependency structure and, when a job is supplied, which
// nodes are its targets, which are pre-supplied, which would actually run,
// and which are untouched by that particular run.
package mermaid

import (
	"fmt"
	"strings"

	"github.com/ordr-dev/ordr"
)

// role is the four-way visual classification a rendered diagram uses: a
// node is exactly one of these with respect to a given job.
type role string

const (
	roleTarget   role = "target"
	roleGiven    role = "given"
	roleActive   role = "active"
	roleInactive role = "inactive"
)

// Graph renders every node and dependency edge in g, with no job context:
// nodes carry no role class and no classDef lines are emitted.
func Graph(g *ordr.Graph) string {
	return render(g, nil)
}

// Job renders g annotated against job: targets are marked "target",
// pre-supplied inputs "given", nodes that would run to reach the targets
// "active", and everything else "inactive". Returns an error only if job
// references a node id g does not contain.
func Job(g *ordr.Graph, job *ordr.Job) (string, error) {
	pending, err := job.PendingIDs(g)
	if err != nil {
		return "", err
	}
	targets := make(map[ordr.NodeID]bool, len(job.TargetIDs()))
	for _, id := range job.TargetIDs() {
		targets[id] = true
	}
	return render(g, &jobView{job: job, pending: pending, targets: targets}), nil
}

type jobView struct {
	job     *ordr.Job
	pending map[ordr.NodeID]bool
	targets map[ordr.NodeID]bool
}

func (v *jobView) roleFor(id ordr.NodeID) role {
	switch {
	case v.targets[id]:
		return roleTarget
	case v.job.HasInput(id):
		return roleGiven
	case v.pending[id]:
		return roleActive
	default:
		return roleInactive
	}
}

func render(g *ordr.Graph, view *jobView) string {
	nodes := g.Nodes()

	index := make(map[ordr.NodeID]int, len(nodes))
	for i, n := range nodes {
		index[n.ID()] = i
	}
	vertex := func(id ordr.NodeID) string { return fmt.Sprintf("v%d", index[id]) }

	var lines []string
	lines = append(lines, "flowchart LR")
	if view != nil {
		lines = append(lines,
			"classDef target   fill:#fff,color:#000,stroke-width:2px,stroke:#f0a",
			"classDef given    fill:#fff,color:#000,stroke-width:2px,stroke:#073",
			"classDef active   fill:#fff,color:#000,stroke-width:2px,stroke:#07a",
			"classDef inactive fill:#eee,color:#bbb,stroke-width:2px,stroke:#eee",
		)
	}

	for _, n := range nodes {
		if view == nil {
			lines = append(lines, fmt.Sprintf("%s[%s]", vertex(n.ID()), n.Name()))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s[%s]:::%s", vertex(n.ID()), n.Name(), view.roleFor(n.ID())))
	}

	for _, n := range nodes {
		deps := n.Deps()
		if len(deps) == 0 {
			continue
		}
		rendered := make([]string, len(deps))
		for i, dep := range deps {
			rendered[i] = vertex(dep)
		}
		lines = append(lines, fmt.Sprintf("%s --> %s", strings.Join(rendered, " & "), vertex(n.ID())))
	}

	return strings.Join(lines, "\n    ")
}

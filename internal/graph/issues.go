package graph

import "fmt"

type IssueKind string

const (
	DuplicateNode IssueKind = "duplicate_node"
	DuplicateEdge IssueKind = "duplicate_edge"
	DanglingEdge  IssueKind = "dangling_edge"
	SelfLoop      IssueKind = "self_loop"
)

// Issue describes a tolerated malformation in a snapshot. The layout engine
// handles all of them (last write wins for duplicates, dangling edges and
// self loops are skipped), so they are reported rather than rejected.
type Issue struct {
	Kind IssueKind
	ID   string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Kind, i.ID)
}

func (g *Graph) Issues() []Issue {
	var issues []Issue

	nodes := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if nodes[n.ID] {
			issues = append(issues, Issue{Kind: DuplicateNode, ID: n.ID})
		}
		nodes[n.ID] = true
	}

	edges := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		if edges[e.ID] {
			issues = append(issues, Issue{Kind: DuplicateEdge, ID: e.ID})
		}
		edges[e.ID] = true

		switch {
		case !nodes[e.Source] || !nodes[e.Target]:
			issues = append(issues, Issue{Kind: DanglingEdge, ID: e.ID})
		case e.Source == e.Target:
			issues = append(issues, Issue{Kind: SelfLoop, ID: e.ID})
		}
	}

	return issues
}

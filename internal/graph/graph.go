// Package graph holds the store-owned node and edge records the layout engine
// reads from, plus JSON file I/O and small generators for demos.
package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

type Node struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Color string   `json:"color,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// Edge direction matters to renderers only; the spring force is symmetric.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PositionWriter receives batched node positions for persistence.
type PositionWriter interface {
	UpdateNodePositions(positions map[string]Position) error
}

// ApplyPositions copies positions onto matching nodes and reports how many changed.
func (g *Graph) ApplyPositions(positions map[string]Position) int {
	n := 0
	for i := range g.Nodes {
		if p, ok := positions[g.Nodes[i].ID]; ok {
			g.Nodes[i].X, g.Nodes[i].Y = p.X, p.Y
			n++
		}
	}
	return n
}

func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decoding graph %s: %w", path, err)
	}
	return &g, nil
}

func Save(path string, g *Graph) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

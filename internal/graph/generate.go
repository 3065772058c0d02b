package graph

import (
	"fmt"
	"math"
	"math/rand"
)

// Star returns a hub "hub" connected to n leaves laid out on a circle.
func Star(leaves int) *Graph {
	g := &Graph{Nodes: []Node{{ID: "hub", Title: "hub"}}}
	for i := 0; i < leaves; i++ {
		angle := float64(i) * 2 * math.Pi / float64(leaves)
		id := fmt.Sprintf("leaf-%d", i)
		g.Nodes = append(g.Nodes, Node{
			ID:    id,
			Title: id,
			X:     100 * math.Cos(angle),
			Y:     100 * math.Sin(angle),
		})
		g.Edges = append(g.Edges, Edge{ID: fmt.Sprintf("e-%d", i), Source: "hub", Target: id})
	}
	return g
}

// Chain returns n nodes connected in a line along the x axis.
func Chain(n int) *Graph {
	g := &Graph{}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("n%d", i)
		g.Nodes = append(g.Nodes, Node{ID: id, Title: id, X: float64(i) * 50})
		if i > 0 {
			g.Edges = append(g.Edges, Edge{
				ID:     fmt.Sprintf("e%d", i),
				Source: fmt.Sprintf("n%d", i-1),
				Target: id,
			})
		}
	}
	return g
}

// Random returns n nodes scattered in a square and m random edges without self loops.
func Random(n, m int, seed int64) *Graph {
	rng := rand.New(rand.NewSource(seed))
	g := &Graph{}
	side := 50 * math.Sqrt(float64(n)+1)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("n%d", i)
		g.Nodes = append(g.Nodes, Node{
			ID:    id,
			Title: id,
			X:     (rng.Float64() - 0.5) * side,
			Y:     (rng.Float64() - 0.5) * side,
		})
	}
	if n < 2 {
		return g
	}
	for i := 0; i < m; i++ {
		s := rng.Intn(n)
		t := rng.Intn(n - 1)
		if t >= s {
			t++
		}
		g.Edges = append(g.Edges, Edge{
			ID:     fmt.Sprintf("e%d", i),
			Source: g.Nodes[s].ID,
			Target: g.Nodes[t].ID,
		})
	}
	return g
}

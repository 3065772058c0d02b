// Package graphstore persists graphs in SQLite and receives layout
// positions from the simulation bridge.
package graphstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/san-kum/graphsim/internal/graph"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
  id    TEXT PRIMARY KEY,
  title TEXT NOT NULL DEFAULT '',
  x     REAL NOT NULL DEFAULT 0,
  y     REAL NOT NULL DEFAULT 0,
  color TEXT NOT NULL DEFAULT '',
  tags  TEXT NOT NULL DEFAULT '[]',
  seq   INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS edges (
  id     TEXT PRIMARY KEY,
  source TEXT NOT NULL,
  target TEXT NOT NULL,
  seq    INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target);
`

type Store struct {
	db *sql.DB
}

var _ graph.PositionWriter = (*Store)(nil)

// Open opens or creates the database at path. Use ":memory:" for a
// throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Snapshot reads the whole graph in insertion order.
func (s *Store) Snapshot(ctx context.Context) (*graph.Graph, error) {
	g := &graph.Graph{}

	rows, err := s.db.QueryContext(ctx, `SELECT id, title, x, y, color, tags FROM nodes ORDER BY seq, id`)
	if err != nil {
		return nil, fmt.Errorf("querying nodes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		g.Nodes = append(g.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	erows, err := s.db.QueryContext(ctx, `SELECT id, source, target FROM edges ORDER BY seq, id`)
	if err != nil {
		return nil, fmt.Errorf("querying edges: %w", err)
	}
	defer erows.Close()
	for erows.Next() {
		var e graph.Edge
		if err := erows.Scan(&e.ID, &e.Source, &e.Target); err != nil {
			return nil, err
		}
		g.Edges = append(g.Edges, e)
	}
	return g, erows.Err()
}

// ReplaceGraph swaps the stored graph for g in one transaction.
func (s *Store) ReplaceGraph(ctx context.Context, g *graph.Graph) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM edges`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM nodes`); err != nil {
			return err
		}
		for _, n := range g.Nodes {
			if err := upsertNode(ctx, tx, n); err != nil {
				return err
			}
		}
		for _, e := range g.Edges {
			if err := upsertEdge(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Node(ctx context.Context, id string) (graph.Node, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, x, y, color, tags FROM nodes WHERE id = ?`, id)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return graph.Node{}, fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	return n, err
}

func (s *Store) UpsertNode(ctx context.Context, n graph.Node) error {
	return s.tx(ctx, func(tx *sql.Tx) error { return upsertNode(ctx, tx, n) })
}

// DeleteNode removes a node and every edge touching it.
func (s *Store) DeleteNode(ctx context.Context, id string) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("node %s: %w", id, ErrNotFound)
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM edges WHERE source = ? OR target = ?`, id, id)
		return err
	})
}

func (s *Store) UpsertEdge(ctx context.Context, e graph.Edge) error {
	return s.tx(ctx, func(tx *sql.Tx) error { return upsertEdge(ctx, tx, e) })
}

func (s *Store) DeleteEdge(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM edges WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("edge %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateNodePositions writes every position in one transaction. Ids that no
// longer exist are skipped.
func (s *Store) UpdateNodePositions(positions map[string]graph.Position) error {
	ctx := context.Background()
	return s.tx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `UPDATE nodes SET x = ?, y = ? WHERE id = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for id, p := range positions {
			if _, err := stmt.ExecContext(ctx, p.X, p.Y, id); err != nil {
				return fmt.Errorf("updating %s: %w", id, err)
			}
		}
		return nil
	})
}

func (s *Store) tx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNode(r scanner) (graph.Node, error) {
	var n graph.Node
	var tags string
	if err := r.Scan(&n.ID, &n.Title, &n.X, &n.Y, &n.Color, &tags); err != nil {
		return n, err
	}
	if err := json.Unmarshal([]byte(tags), &n.Tags); err != nil {
		return n, fmt.Errorf("decoding tags of %s: %w", n.ID, err)
	}
	if len(n.Tags) == 0 {
		n.Tags = nil
	}
	return n, nil
}

func upsertNode(ctx context.Context, tx *sql.Tx, n graph.Node) error {
	tags := []byte("[]")
	if len(n.Tags) > 0 {
		var err error
		if tags, err = json.Marshal(n.Tags); err != nil {
			return err
		}
	}
	_, err := tx.ExecContext(ctx, `
INSERT INTO nodes (id, title, x, y, color, tags, seq)
VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM nodes))
ON CONFLICT(id) DO UPDATE SET title = excluded.title, x = excluded.x, y = excluded.y,
  color = excluded.color, tags = excluded.tags`,
		n.ID, n.Title, n.X, n.Y, n.Color, string(tags))
	if err != nil {
		return fmt.Errorf("upserting node %s: %w", n.ID, err)
	}
	return nil
}

func upsertEdge(ctx context.Context, tx *sql.Tx, e graph.Edge) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO edges (id, source, target, seq)
VALUES (?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM edges))
ON CONFLICT(id) DO UPDATE SET source = excluded.source, target = excluded.target`,
		e.ID, e.Source, e.Target)
	if err != nil {
		return fmt.Errorf("upserting edge %s: %w", e.ID, err)
	}
	return nil
}

package scixtract

import (
	"context"
	"encoding/json"
	"io"
	"time"
)

// GraphNode is a keyword node in the exported concept graph.
type GraphNode struct {
	ID        string `json:"id"`
	Frequency int64  `json:"frequency"`
}

// GraphEdge is a co-occurrence edge between two keywords.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int64  `json:"weight"`
}

// Graph is a serializable view of the cross-document concept network,
// suitable for visualization tools.
type Graph struct {
	Nodes    []GraphNode   `json:"nodes"`
	Edges    []GraphEdge   `json:"edges"`
	Metadata GraphMetadata `json:"metadata"`
}

// GraphMetadata describes when and from what the graph was generated.
type GraphMetadata struct {
	Generated time.Time `json:"generated"`
	NodeCount int       `json:"node_count"`
	EdgeCount int       `json:"edge_count"`
}

// Caps keeping the exported graph readable; keywords below the frequency
// floor and edges seen in only one document are dropped.
const (
	graphMaxNodes     = 100
	graphMaxEdges     = 200
	graphNodeMinFreq  = 2
	graphEdgeMinCount = 2
)

// BuildGraph assembles the concept graph from the current index state.
func (s *Store) BuildGraph(ctx context.Context) (*Graph, error) {
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, err
	}

	graph := &Graph{}

	rows, err := sqlDB.QueryContext(ctx, `
		SELECT k.term, COUNT(*) AS n
		FROM document_keywords dk
		JOIN keywords k ON k.id = dk.keyword_id
		GROUP BY k.term
		HAVING n >= ?
		ORDER BY n DESC
		LIMIT ?
	`, graphNodeMinFreq, graphMaxNodes)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var node GraphNode
		if err := rows.Scan(&node.ID, &node.Frequency); err != nil {
			rows.Close()
			return nil, err
		}
		graph.Nodes = append(graph.Nodes, node)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	rows, err = sqlDB.QueryContext(ctx, `
		SELECT k1.term, k2.term, COUNT(DISTINCT dk1.document_id) AS w
		FROM document_keywords dk1
		JOIN document_keywords dk2 ON dk2.document_id = dk1.document_id
		                           AND dk2.keyword_id > dk1.keyword_id
		JOIN keywords k1 ON k1.id = dk1.keyword_id
		JOIN keywords k2 ON k2.id = dk2.keyword_id
		GROUP BY k1.term, k2.term
		HAVING w >= ?
		ORDER BY w DESC
		LIMIT ?
	`, graphEdgeMinCount, graphMaxEdges)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var edge GraphEdge
		if err := rows.Scan(&edge.Source, &edge.Target, &edge.Weight); err != nil {
			return nil, err
		}
		graph.Edges = append(graph.Edges, edge)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	graph.Metadata = GraphMetadata{
		Generated: time.Now(),
		NodeCount: len(graph.Nodes),
		EdgeCount: len(graph.Edges),
	}
	return graph, nil
}

// ExportGraph writes the concept graph as indented JSON.
func (s *Store) ExportGraph(ctx context.Context, w io.Writer) error {
	graph, err := s.BuildGraph(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(graph)
}

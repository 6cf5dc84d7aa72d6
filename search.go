package scixtract

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sajari/fuzzy"
)

// SearchResult is one keyword match joined back to its document.
type SearchResult struct {
	FilePath   string    `json:"file_path"`
	CiteKey    string    `json:"cite_key,omitempty"`
	Title      string    `json:"title"`
	Authors    []string  `json:"authors,omitempty"`
	Keyword    string    `json:"keyword"`
	PageNumber int       `json:"page_number"`
	Context    string    `json:"context,omitempty"`
	Relevance  float64   `json:"relevance"`
	IndexedAt  time.Time `json:"indexed_at"`
}

// Search finds documents whose keywords match the query by case-insensitive
// substring. Results are ranked by relevance descending, ties broken by
// document recency, and capped at limit (default 20). No match yields an
// empty slice, not an error.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	term := NormalizeKeyword(query)
	if term == "" {
		return nil, nil
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, err
	}
	rows, err := sqlDB.QueryContext(ctx, `
		SELECT d.file_path, d.cite_key, d.title, d.authors,
		       k.term, dk.page_number, dk.context, dk.relevance, d.indexed_at
		FROM document_keywords dk
		JOIN keywords k ON k.id = dk.keyword_id
		JOIN documents d ON d.id = dk.document_id
		WHERE k.term LIKE '%' || ? || '%'
		ORDER BY dk.relevance DESC, d.indexed_at DESC
		LIMIT ?
	`, term, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var authorsJSON string
		if err := rows.Scan(&r.FilePath, &r.CiteKey, &r.Title, &authorsJSON,
			&r.Keyword, &r.PageNumber, &r.Context, &r.Relevance, &r.IndexedAt); err != nil {
			return nil, err
		}
		if authorsJSON != "" {
			_ = json.Unmarshal([]byte(authorsJSON), &r.Authors)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// SearchFuzzy is a typo-tolerant Search: the query is spell-checked against
// the indexed vocabulary first, so "catalisys" still finds "catalysis".
func (s *Store) SearchFuzzy(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	results, err := s.Search(ctx, query, limit)
	if err != nil || len(results) > 0 {
		return results, err
	}

	terms, err := s.vocabulary(ctx)
	if err != nil || len(terms) == 0 {
		return nil, err
	}

	model := fuzzy.NewModel()
	model.SetThreshold(1)
	model.SetDepth(2)
	model.Train(terms)

	corrected := model.SpellCheck(NormalizeKeyword(query))
	if corrected == "" || corrected == NormalizeKeyword(query) {
		return nil, nil
	}
	return s.Search(ctx, corrected, limit)
}

func (s *Store) vocabulary(ctx context.Context) ([]string, error) {
	var terms []string
	err := s.db.WithContext(ctx).Model(&Keyword{}).Pluck("term", &terms).Error
	return terms, err
}

// RelatedConcept is a keyword that co-occurs with the queried term, with the
// number of documents sharing both.
type RelatedConcept struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// Related returns keywords that co-occur with the given term within the
// same document, ranked by co-occurrence frequency. The concept network is
// a query-time join over associations; no graph is materialized at
// ingestion.
func (s *Store) Related(ctx context.Context, term string, limit int) ([]RelatedConcept, error) {
	if limit <= 0 {
		limit = 10
	}
	term = NormalizeKeyword(term)
	if term == "" {
		return nil, nil
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, err
	}
	rows, err := sqlDB.QueryContext(ctx, `
		SELECT k2.term, COUNT(DISTINCT dk2.document_id) AS n
		FROM document_keywords dk1
		JOIN keywords k1 ON k1.id = dk1.keyword_id
		JOIN document_keywords dk2 ON dk2.document_id = dk1.document_id
		                           AND dk2.keyword_id != dk1.keyword_id
		JOIN keywords k2 ON k2.id = dk2.keyword_id
		WHERE k1.term LIKE '%' || ? || '%'
		GROUP BY k2.term
		ORDER BY n DESC, k2.term ASC
		LIMIT ?
	`, term, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var related []RelatedConcept
	for rows.Next() {
		var rc RelatedConcept
		if err := rows.Scan(&rc.Term, &rc.Count); err != nil {
			return nil, err
		}
		related = append(related, rc)
	}
	return related, rows.Err()
}

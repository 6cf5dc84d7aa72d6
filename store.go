package scixtract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Relevance scoring constants. Relevance is term-frequency based,
// tf/(tf+2), with a small boost for first-page appearances, capped at 1.
// Both are documented tunables rather than replicated behavior.
const (
	relevanceFirstPageBoost = 0.1
	contextSnippetLen       = 200
)

// Store is a persistent knowledge index of documents, keywords and their
// co-occurrence relationships. Writes are serialized per file path; reads
// may run concurrently with writes and never observe a half-finished
// ingest because the delete+insert for one path is a single transaction.
type Store struct {
	path     string
	db       *gorm.DB
	docCache *LRUCache

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// OpenStore opens or creates the knowledge database at the given path.
func OpenStore(path string) (*Store, error) {
	dsn := path + "?_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite3",
		DSN:        dsn,
	}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{
		path:     path,
		db:       db,
		docCache: NewLRUCache(1024),
		locks:    make(map[string]*sync.Mutex),
	}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema() error {
	if err := s.db.AutoMigrate(&Document{}, &Keyword{}, &DocumentKeyword{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// pathLock returns the write lock for a file path. Two concurrent
// ingestions of the same path must not interleave the delete-then-insert
// sequence; different paths carry no ordering guarantee.
func (s *Store) pathLock(filePath string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[filePath]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[filePath] = lock
	}
	return lock
}

// Ingest indexes an extraction result under the given file path. The
// document record is upserted, prior keyword associations are deleted, and
// one association per (keyword, page) pair is inserted with a context
// snippet and a relevance score. Re-ingesting the same file is idempotent.
// A failed transaction surfaces as StoreIntegrityError and leaves the
// store unchanged.
func (s *Store) Ingest(ctx context.Context, result *ExtractionResult, filePath string) error {
	lock := s.pathLock(filePath)
	lock.Lock()
	defer lock.Unlock()

	authorsJSON, err := json.Marshal(result.Metadata.Authors)
	if err != nil {
		return &StoreIntegrityError{FilePath: filePath, Err: err}
	}

	var doc Document
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("file_path = ?", filePath).First(&doc).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			doc = Document{FilePath: filePath}
		case err != nil:
			return err
		}

		doc.CiteKey = result.Metadata.CiteKey
		doc.Title = result.Metadata.Title
		doc.Authors = string(authorsJSON)
		doc.PageCount = result.Metadata.PageCount
		doc.IndexedAt = time.Now()
		if err := tx.Save(&doc).Error; err != nil {
			return err
		}

		if err := tx.Where("document_id = ?", doc.ID).Delete(&DocumentKeyword{}).Error; err != nil {
			return err
		}

		for _, page := range result.Pages {
			for _, raw := range page.Keywords {
				term := NormalizeKeyword(raw)
				if term == "" {
					continue
				}

				var kw Keyword
				if err := tx.Where("term = ?", term).FirstOrCreate(&kw, Keyword{Term: term}).Error; err != nil {
					return err
				}

				freq := countOccurrences(page.CleanedText, term)
				assoc := DocumentKeyword{
					DocumentID: doc.ID,
					KeywordID:  kw.ID,
					PageNumber: page.PageNumber,
					Frequency:  freq,
					Relevance:  relevanceScore(freq, page.PageNumber),
					Context:    extractContextAt(page.CleanedText, term),
				}
				if err := tx.Create(&assoc).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return &StoreIntegrityError{FilePath: filePath, Err: err}
	}

	s.docCache.Put(filePath, &doc)
	return nil
}

// RemoveDocument deletes an indexed document and all of its keyword
// associations. Keyword records stay; other documents may share them. An
// unknown path returns gorm.ErrRecordNotFound.
func (s *Store) RemoveDocument(ctx context.Context, filePath string) error {
	lock := s.pathLock(filePath)
	lock.Lock()
	defer lock.Unlock()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc Document
		if err := tx.Where("file_path = ?", filePath).First(&doc).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", doc.ID).Delete(&DocumentKeyword{}).Error; err != nil {
			return err
		}
		return tx.Delete(&doc).Error
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return err
	case err != nil:
		return &StoreIntegrityError{FilePath: filePath, Err: err}
	}

	s.docCache.Delete(filePath)
	return nil
}

// GetDocument looks up the indexed record for a file path.
func (s *Store) GetDocument(ctx context.Context, filePath string) (*Document, error) {
	if cached, ok := s.docCache.Get(filePath); ok {
		return cached.(*Document), nil
	}

	var doc Document
	if err := s.db.WithContext(ctx).Where("file_path = ?", filePath).First(&doc).Error; err != nil {
		return nil, err
	}
	s.docCache.Put(filePath, &doc)
	return &doc, nil
}

// DocumentExists reports whether a file path has been indexed.
func (s *Store) DocumentExists(ctx context.Context, filePath string) bool {
	_, err := s.GetDocument(ctx, filePath)
	return err == nil
}

// relevanceScore maps a term frequency onto (0, 1]. First-page keywords get
// a small boost: titles and abstracts concentrate the terms that matter.
func relevanceScore(freq, pageNumber int) float64 {
	if freq < 1 {
		freq = 1
	}
	score := float64(freq) / float64(freq+2)
	if pageNumber == 1 {
		score += relevanceFirstPageBoost
	}
	if score > 1 {
		score = 1
	}
	return score
}

// countOccurrences counts case-insensitive appearances of term in text. A
// keyword the model extracted but the text no longer contains verbatim still
// counts once.
func countOccurrences(text, term string) int {
	n := strings.Count(strings.ToLower(text), term)
	if n == 0 {
		return 1
	}
	return n
}

// extractContextAt returns the text surrounding the first occurrence of a
// term, for display in search results.
func extractContextAt(text, term string) string {
	pos := strings.Index(strings.ToLower(text), term)
	if pos == -1 {
		if len(text) > contextSnippetLen {
			return text[:contextSnippetLen] + "..."
		}
		return text
	}

	start := pos - contextSnippetLen/2
	if start < 0 {
		start = 0
	}
	end := pos + len(term) + contextSnippetLen/2
	if end > len(text) {
		end = len(text)
	}

	snippet := text[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(text) {
		snippet = snippet + "..."
	}
	return snippet
}

// TermCount pairs a keyword with an occurrence count.
type TermCount struct {
	Term  string
	Count int64
}

// StoreStats contains aggregate counts over the knowledge index. All values
// are read directly from the tables, never cached.
type StoreStats struct {
	DocumentCount       int64
	UniqueKeywords      int64
	KeywordAssociations int64
	IndexedPages        int64
	TopKeywords         []TermCount
}

// Stats returns aggregate statistics reflecting the current persisted state.
func (s *Store) Stats(ctx context.Context) (*StoreStats, error) {
	stats := &StoreStats{}

	if err := s.db.WithContext(ctx).Model(&Document{}).Count(&stats.DocumentCount).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&DocumentKeyword{}).Count(&stats.KeywordAssociations).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&DocumentKeyword{}).Distinct("keyword_id").Count(&stats.UniqueKeywords).Error; err != nil {
		return nil, err
	}
	// SQLite has no multi-column COUNT(DISTINCT), so distinct pages go
	// through a subquery.
	if err := s.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM (
			SELECT DISTINCT document_id, page_number FROM document_keywords
		)
	`).Scan(&stats.IndexedPages).Error; err != nil {
		return nil, err
	}

	// Aggregation joins use raw SQL, the same split the store keeps for
	// search queries.
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, err
	}
	rows, err := sqlDB.QueryContext(ctx, `
		SELECT k.term, COUNT(*) AS n
		FROM document_keywords dk
		JOIN keywords k ON k.id = dk.keyword_id
		GROUP BY k.term
		ORDER BY n DESC
		LIMIT 10
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var tc TermCount
		if err := rows.Scan(&tc.Term, &tc.Count); err != nil {
			return nil, err
		}
		stats.TopKeywords = append(stats.TopKeywords, tc)
	}
	return stats, rows.Err()
}

package scixtract

import (
	"strings"
	"time"
)

// ContentType classifies the kind of content a page carries.
type ContentType string

const (
	ContentAbstract     ContentType = "abstract"
	ContentIntroduction ContentType = "introduction"
	ContentMethods      ContentType = "methods"
	ContentResults      ContentType = "results"
	ContentDiscussion   ContentType = "discussion"
	ContentConclusion   ContentType = "conclusion"
	ContentReferences   ContentType = "references"
	ContentOther        ContentType = "other"
)

// ParseContentType maps a model-produced label onto the recognized set.
// Anything unrecognized becomes ContentOther.
func ParseContentType(s string) ContentType {
	switch ContentType(strings.ToLower(strings.TrimSpace(s))) {
	case ContentAbstract:
		return ContentAbstract
	case ContentIntroduction:
		return ContentIntroduction
	case ContentMethods:
		return ContentMethods
	case ContentResults:
		return ContentResults
	case ContentDiscussion:
		return ContentDiscussion
	case ContentConclusion:
		return ContentConclusion
	case ContentReferences:
		return ContentReferences
	default:
		return ContentOther
	}
}

// PageContent holds one page of a document after the enhancement passes.
// It is immutable once produced by the pipeline.
type PageContent struct {
	// PageNumber is 1-based.
	PageNumber int `json:"page_number"`

	// RawText is the text as extracted from the PDF.
	RawText string `json:"raw_text"`

	// CleanedText is the AI-corrected text, or RawText when the
	// text-fix pass fell back.
	CleanedText string `json:"cleaned_text"`

	// ContentType is the section classification for this page.
	ContentType ContentType `json:"content_type"`

	// Keywords are relevance-ordered, lower-cased, deduplicated.
	Keywords []string `json:"keywords"`
}

// BibEntry is a parsed bibliography entry.
type BibEntry struct {
	CiteKey string   `json:"cite_key"`
	Title   string   `json:"title"`
	Authors []string `json:"authors,omitempty"`
	Year    string   `json:"year,omitempty"`
	Journal string   `json:"journal,omitempty"`
	DOI     string   `json:"doi,omitempty"`
}

// DocumentMetadata describes a processed document.
type DocumentMetadata struct {
	Title          string    `json:"title"`
	Authors        []string  `json:"authors"`
	CiteKey        string    `json:"cite_key,omitempty"`
	Year           string    `json:"year,omitempty"`
	Journal        string    `json:"journal,omitempty"`
	DOI            string    `json:"doi,omitempty"`
	Abstract       string    `json:"abstract,omitempty"`
	Keywords       []string  `json:"keywords"`
	PageCount      int       `json:"page_count"`
	ExtractionDate time.Time `json:"extraction_date"`

	// ProcessingTime is the wall-clock duration of the whole pass
	// sequence in seconds, recorded even for degraded runs.
	ProcessingTime float64 `json:"processing_time"`

	ModelUsed string `json:"model_used,omitempty"`

	// BibContext is the matched bibliography entry, if any. It stays
	// nil when no entry clears the similarity threshold.
	BibContext *BibEntry `json:"bib_context,omitempty"`
}

// ExtractionResult is the complete output for one document. It is the unit
// persisted to disk and handed to the knowledge store.
type ExtractionResult struct {
	Metadata DocumentMetadata `json:"metadata"`
	Pages    []PageContent    `json:"pages"`

	// AllKeywords is the deduplicated union of the pages' keywords,
	// ordered by first occurrence in page order.
	AllKeywords []string `json:"all_keywords"`

	// Summary is an optional AI-generated document summary.
	Summary string `json:"summary,omitempty"`
}

// Document is a knowledge store record for an indexed document.
// FilePath is the upsert key: re-ingesting the same path replaces the
// record and all of its keyword associations.
type Document struct {
	ID        uint      `gorm:"primaryKey"`
	FilePath  string    `gorm:"uniqueIndex;column:file_path"`
	CiteKey   string    `gorm:"index;column:cite_key"`
	Title     string    `gorm:"type:text"`
	Authors   string    `gorm:"type:text"` // JSON array
	PageCount int       `gorm:"column:page_count"`
	IndexedAt time.Time `gorm:"index;column:indexed_at"`
}

func (Document) TableName() string {
	return "documents"
}

// Keyword is a normalized keyword record, unique per term.
type Keyword struct {
	ID   uint   `gorm:"primaryKey"`
	Term string `gorm:"uniqueIndex"`
}

func (Keyword) TableName() string {
	return "keywords"
}

// DocumentKeyword associates a keyword with a page of a document. Rows are
// created on ingestion and never updated in place; re-ingesting a document
// deletes and re-inserts its associations.
type DocumentKeyword struct {
	ID         uint    `gorm:"primaryKey"`
	DocumentID uint    `gorm:"index;column:document_id"`
	KeywordID  uint    `gorm:"index;column:keyword_id"`
	PageNumber int     `gorm:"column:page_number"`
	Frequency  int     `gorm:"column:frequency"`
	Relevance  float64 `gorm:"index;column:relevance"`
	Context    string  `gorm:"type:text"`
}

func (DocumentKeyword) TableName() string {
	return "document_keywords"
}

// NormalizeKeyword lower-cases a keyword and collapses internal whitespace,
// guaranteeing stable lookup keys across documents.
func NormalizeKeyword(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

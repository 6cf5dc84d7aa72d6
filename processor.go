package scixtract

import (
	"context"
	"strings"
	"time"
	"unicode"
)

// BibMatchThreshold is the minimum normalized-token Jaccard similarity
// between a document's derived title and a bibliography entry's title for
// the entry to be accepted. Below it, cite key and bibliography context
// stay unset rather than guessing.
const BibMatchThreshold = 0.5

// Processor orchestrates the page pipeline across all pages of a document
// and assembles the final extraction result. The AI client is passed in
// explicitly; one processor is typically created per batch run.
type Processor struct {
	ai       *Client
	pipeline pagePipeline
}

// NewProcessor creates a processor backed by the given AI client.
func NewProcessor(ai *Client) *Processor {
	return &Processor{ai: ai, pipeline: pagePipeline{ai: ai}}
}

// Process runs the full pass sequence over per-page raw text and returns an
// extraction result. Total AI unavailability degrades the result (raw text,
// "other" classification, no keywords) but does not fail it; the only error
// case is a document with no pages at all.
func (p *Processor) Process(ctx context.Context, rawPages []string, bib []BibEntry) (*ExtractionResult, error) {
	start := time.Now()

	if len(rawPages) == 0 {
		return nil, &UnreadableDocumentError{}
	}

	dc := &DocumentContext{
		TotalPages: len(rawPages),
		aiDown:     !p.ai.IsAvailable(ctx),
	}

	result := &ExtractionResult{
		Pages: make([]PageContent, 0, len(rawPages)),
	}

	// Pages run sequentially in page order: the title detected on page 1
	// and the position-aware classification both depend on it.
	for i, raw := range rawPages {
		page := p.pipeline.run(ctx, dc, i+1, raw)
		result.Pages = append(result.Pages, page)

		if i == 0 {
			title, authors := deriveTitleAuthors(page.CleanedText)
			dc.Title = title
			result.Metadata.Title = title
			result.Metadata.Authors = authors
		}
		if result.Metadata.Abstract == "" && page.ContentType == ContentAbstract {
			result.Metadata.Abstract = page.CleanedText
		}
	}

	result.AllKeywords = aggregateKeywords(result.Pages)

	if entry := MatchBibliography(result.Metadata.Title, bib); entry != nil {
		result.Metadata.CiteKey = entry.CiteKey
		result.Metadata.BibContext = entry
		if entry.Title != "" {
			result.Metadata.Title = entry.Title
		}
		if len(entry.Authors) > 0 {
			result.Metadata.Authors = entry.Authors
		}
		result.Metadata.Year = entry.Year
		result.Metadata.Journal = entry.Journal
		result.Metadata.DOI = entry.DOI
	}

	result.Metadata.Keywords = result.AllKeywords
	result.Metadata.PageCount = len(result.Pages)
	result.Metadata.ExtractionDate = time.Now()
	result.Metadata.ModelUsed = p.ai.Model()
	result.Metadata.ProcessingTime = time.Since(start).Seconds()

	return result, nil
}

// ProcessFile extracts per-page text from a PDF and processes it.
func (p *Processor) ProcessFile(ctx context.Context, path string, bib []BibEntry) (*ExtractionResult, error) {
	pages, err := ExtractPages(path)
	if err != nil {
		return nil, err
	}
	return p.Process(ctx, pages, bib)
}

// Summarize generates a structured document summary from the metadata and
// the first pages' cleaned text. It is a best-effort extra pass: a service
// failure returns the error and leaves the result untouched.
func (p *Processor) Summarize(ctx context.Context, result *ExtractionResult) (string, error) {
	var sample strings.Builder
	for i, page := range result.Pages {
		if i >= 5 {
			break
		}
		sample.WriteString(page.CleanedText)
		sample.WriteString(" ")
	}

	md := result.Metadata
	return p.ai.Generate(ctx, summaryPrompt(
		md.Title,
		strings.Join(md.Authors, ", "),
		strings.Join(md.Keywords, ", "),
		sample.String(),
	), GenerateOptions{System: summarySystemPrompt})
}

// aggregateKeywords builds the deduplicated union of all pages' keywords,
// ordered by first occurrence across pages in page order.
func aggregateKeywords(pages []PageContent) []string {
	var out []string
	seen := make(map[string]bool)
	for _, page := range pages {
		for _, kw := range page.Keywords {
			if !seen[kw] {
				seen[kw] = true
				out = append(out, kw)
			}
		}
	}
	return out
}

// MatchBibliography finds the bibliography entry whose title is most similar
// to the given title by normalized-token Jaccard overlap. It returns nil when
// no entry clears BibMatchThreshold.
func MatchBibliography(title string, bib []BibEntry) *BibEntry {
	if title == "" {
		return nil
	}

	titleTokens := titleTokenSet(title)
	if len(titleTokens) == 0 {
		return nil
	}

	var best *BibEntry
	bestScore := 0.0
	for i := range bib {
		score := jaccard(titleTokens, titleTokenSet(bib[i].Title))
		if score > bestScore {
			bestScore = score
			best = &bib[i]
		}
	}

	if bestScore < BibMatchThreshold {
		return nil
	}
	return best
}

func titleTokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		tok = strings.TrimFunc(tok, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if tok != "" {
			set[tok] = true
		}
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	common := 0
	for tok := range a {
		if b[tok] {
			common++
		}
	}
	return float64(common) / float64(len(a)+len(b)-common)
}

// deriveTitleAuthors applies pattern heuristics to the first page's cleaned
// text: the first substantial line is taken as the title, and a following
// line that looks like a name list as the authors. This is the fast default;
// a bibliography match overrides it.
func deriveTitleAuthors(firstPage string) (string, []string) {
	lines := strings.Split(firstPage, "\n")

	title := ""
	titleIdx := -1
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) >= 15 && len(strings.Fields(line)) >= 3 {
			title = line
			titleIdx = i
			break
		}
	}

	var authors []string
	for i := titleIdx + 1; i >= 0 && i < len(lines) && i <= titleIdx+4; i++ {
		if names := parseAuthorLine(strings.TrimSpace(lines[i])); len(names) > 0 {
			authors = names
			break
		}
	}
	return title, authors
}

// parseAuthorLine recognizes "A. Name, B. Name and C. Name" style lines:
// no digits, at least one separator, every part shaped like a person name.
func parseAuthorLine(line string) []string {
	if line == "" || strings.ContainsAny(line, "0123456789") {
		return nil
	}
	if !strings.Contains(line, ",") && !strings.Contains(line, " and ") {
		return nil
	}

	line = strings.ReplaceAll(line, " and ", ",")
	parts := strings.Split(line, ",")

	var names []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		words := strings.Fields(part)
		if len(words) < 2 || len(words) > 4 {
			return nil
		}
		for _, w := range words {
			r := []rune(w)
			if !unicode.IsUpper(r[0]) {
				return nil
			}
		}
		names = append(names, part)
	}
	if len(names) < 2 {
		return nil
	}
	return names
}

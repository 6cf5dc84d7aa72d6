package scixtract

import (
	"context"
	"regexp"
	"strings"
)

// PageState tracks a page's progress through the enhancement passes.
// Passes run strictly in order; a failing pass moves the page straight to
// PageDone with its best available partial state.
type PageState int

const (
	PageRaw PageState = iota
	PageTextFixed
	PageClassified
	PageKeywordsExtracted
	PageDone
)

// DocumentContext carries document-level state through the page loop, such
// as the title detected on page 1. It replaces implicit shared fields so the
// page-order coupling is visible at the call site.
type DocumentContext struct {
	Title      string
	TotalPages int

	// aiDown is set when the availability probe failed; the pipeline then
	// skips AI calls entirely and every page takes the deterministic
	// fallback path.
	aiDown bool
}

// keywordCategories is the category order used when flattening the keyword
// pass response, so output order is stable across runs.
var keywordCategories = []string{
	"technical_keywords",
	"research_concepts",
	"chemical_compounds",
	"methodologies",
	"equipment",
}

// Tokens the text-fix pass must carry through verbatim: chemical-formula
// patterns (H2O, NH3, NOx) and bracketed or parenthetical citation markers.
var (
	formulaPattern  = regexp.MustCompile(`\b(?:[A-Z][A-Za-z]?\d[A-Za-z0-9]*|[A-Z]{2,}[a-z])\b`)
	citationPattern = regexp.MustCompile(`\[\d+(?:\s*[,\x{2013}-]\s*\d+)*\]|\([A-Z][A-Za-z]+ et al\.,?\s*\d{4}\)`)
	alnumPattern    = regexp.MustCompile(`[A-Za-z0-9]`)
)

// minAlnumRatio is the tolerance for the text-fix shrink guard: AI output
// that drops the alphanumeric character count below this fraction of the
// input is rejected and the raw text kept.
const minAlnumRatio = 0.9

type pagePipeline struct {
	ai *Client
}

// run executes the pass sequence for a single page. It never returns an
// error: any pass failure degrades this page only, and the document
// processor continues with all other pages intact.
func (p *pagePipeline) run(ctx context.Context, dc *DocumentContext, pageNum int, raw string) PageContent {
	page := PageContent{
		PageNumber:  pageNum,
		RawText:     raw,
		CleanedText: raw,
		ContentType: ContentOther,
	}
	state := PageRaw

	if cleaned, ok := p.fixText(ctx, dc, raw); ok {
		page.CleanedText = cleaned
		state = PageTextFixed
	}

	if state == PageTextFixed {
		if ct, ok := p.classify(ctx, dc, page.CleanedText, pageNum); ok {
			page.ContentType = ct
			state = PageClassified
		}
	}

	if state == PageClassified {
		if kws, ok := p.extractKeywords(ctx, dc, page.CleanedText); ok {
			page.Keywords = kws
			state = PageKeywordsExtracted
		}
	}

	_ = state // PageDone either way
	return page
}

// fixText runs the AI cleanup pass. The second return is false when the
// service failed and later passes should be skipped; a rejected AI output
// (content guard) still counts as success with the raw text kept.
func (p *pagePipeline) fixText(ctx context.Context, dc *DocumentContext, raw string) (string, bool) {
	if dc.aiDown || strings.TrimSpace(raw) == "" {
		return raw, !dc.aiDown
	}

	fixed, err := p.ai.Generate(ctx, fixPrompt(raw), GenerateOptions{System: fixSystemPrompt})
	if err != nil {
		return raw, false
	}
	if fixed == "" || !preservesContent(raw, fixed) {
		// Silent fallback, not an error: the guard exists precisely to
		// absorb truncating or paraphrasing model output.
		return raw, true
	}
	return fixed, true
}

func (p *pagePipeline) classify(ctx context.Context, dc *DocumentContext, text string, pageNum int) (ContentType, bool) {
	if dc.aiDown {
		return ContentOther, false
	}

	label, err := p.ai.Generate(ctx, classifyPrompt(text, pageNum, dc.TotalPages, dc.Title), GenerateOptions{System: classifySystemPrompt})
	if err != nil {
		return ContentOther, false
	}
	return ParseContentType(label), true
}

// keywordResponse is the structured shape the keyword pass expects back.
type keywordResponse map[string][]string

func (p *pagePipeline) extractKeywords(ctx context.Context, dc *DocumentContext, text string) ([]string, bool) {
	if dc.aiDown {
		return nil, false
	}

	raw, err := p.ai.Generate(ctx, keywordPrompt(text), GenerateOptions{System: keywordSystemPrompt, JSON: true})
	if err != nil {
		return nil, false
	}

	var resp keywordResponse
	if err := extractJSON(raw, &resp); err != nil {
		// Malformed JSON: empty keyword set, no retry.
		return nil, true
	}
	return flattenKeywords(resp), true
}

// flattenKeywords merges the categorized response into a single list in
// stable category order, normalized and deduplicated preserving first-seen
// order.
func flattenKeywords(resp keywordResponse) []string {
	var out []string
	seen := make(map[string]bool)

	appendTerms := func(terms []string) {
		for _, t := range terms {
			t = NormalizeKeyword(t)
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}

	for _, cat := range keywordCategories {
		appendTerms(resp[cat])
	}
	// Unknown categories last, so nothing the model invents is dropped.
	for cat, terms := range resp {
		if !isKnownCategory(cat) {
			appendTerms(terms)
		}
	}
	return out
}

func isKnownCategory(cat string) bool {
	for _, known := range keywordCategories {
		if cat == known {
			return true
		}
	}
	return false
}

// preservesContent checks that the fixed text kept every chemical-formula
// and citation token from the raw text and did not shrink the alphanumeric
// character count past the tolerance.
func preservesContent(raw, fixed string) bool {
	rawAlnum := len(alnumPattern.FindAllString(raw, -1))
	fixedAlnum := len(alnumPattern.FindAllString(fixed, -1))
	if rawAlnum > 0 && float64(fixedAlnum) < float64(rawAlnum)*minAlnumRatio {
		return false
	}

	for _, tok := range uniqueMatches(formulaPattern, raw) {
		if !strings.Contains(fixed, tok) {
			return false
		}
	}
	for _, tok := range uniqueMatches(citationPattern, raw) {
		if !strings.Contains(fixed, tok) {
			return false
		}
	}
	return true
}

func uniqueMatches(re *regexp.Regexp, s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range re.FindAllString(s, -1) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

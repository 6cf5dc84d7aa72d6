package scixtract

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// sectionOrder is the canonical section sequence for the markdown
// rendering. Pages keep their page order within each section.
var sectionOrder = []ContentType{
	ContentAbstract,
	ContentIntroduction,
	ContentMethods,
	ContentResults,
	ContentDiscussion,
	ContentConclusion,
	ContentOther,
	ContentReferences,
}

// WriteJSON writes the extraction result as indented JSON. The shape
// mirrors ExtractionResult exactly: metadata block, ordered page array,
// all_keywords array.
func WriteJSON(result *ExtractionResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// RenderMarkdown produces the human-readable enhanced-text rendering of an
// extraction result. It is a derived view of the same data as the JSON
// output, not a separate data path.
func RenderMarkdown(result *ExtractionResult) string {
	md := result.Metadata
	var sb strings.Builder

	title := md.Title
	if title == "" {
		title = md.CiteKey
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)

	sb.WriteString("## Document Information\n\n")
	if md.CiteKey != "" {
		fmt.Fprintf(&sb, "**Citation Key:** `%s`  \n", md.CiteKey)
	}
	authors := "Unknown"
	if len(md.Authors) > 0 {
		authors = strings.Join(md.Authors, ", ")
	}
	fmt.Fprintf(&sb, "**Authors:** %s  \n", authors)
	if md.Year != "" {
		fmt.Fprintf(&sb, "**Year:** %s  \n", md.Year)
	}
	if md.Journal != "" {
		fmt.Fprintf(&sb, "**Journal:** %s  \n", md.Journal)
	}
	if md.DOI != "" {
		fmt.Fprintf(&sb, "**DOI:** %s  \n", md.DOI)
	}
	if md.ModelUsed != "" {
		fmt.Fprintf(&sb, "**Model:** %s  \n", md.ModelUsed)
	}
	fmt.Fprintf(&sb, "**Processed:** %s  \n\n", md.ExtractionDate.Format("2006-01-02 15:04"))

	if len(result.AllKeywords) > 0 {
		sb.WriteString("## Keywords\n\n")
		fmt.Fprintf(&sb, "%s\n\n", strings.Join(capKeywords(result.AllKeywords, 15), ", "))
	}

	if result.Summary != "" {
		sb.WriteString("## Summary\n\n")
		sb.WriteString(result.Summary)
		sb.WriteString("\n\n")
	}

	sb.WriteString("---\n")

	bySection := make(map[ContentType][]PageContent)
	for _, page := range result.Pages {
		bySection[page.ContentType] = append(bySection[page.ContentType], page)
	}

	for _, section := range sectionOrder {
		pages, ok := bySection[section]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "\n## %s\n\n", sectionTitle(section))
		for _, page := range pages {
			fmt.Fprintf(&sb, "### Page %d\n\n%s\n\n", page.PageNumber, strings.TrimSpace(page.CleanedText))
		}
	}

	return sb.String()
}

func sectionTitle(ct ContentType) string {
	s := string(ct)
	if s == "" {
		return "Other"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func capKeywords(keywords []string, n int) []string {
	if len(keywords) > n {
		return keywords[:n]
	}
	return keywords
}

// SavedFiles lists the paths written by SaveResults.
type SavedFiles struct {
	Extraction string
	Markdown   string
	Keywords   string
}

// SaveResults writes the three output files for a document: the full
// extraction JSON, the markdown rendering, and a compact keyword index.
func SaveResults(result *ExtractionResult, outputDir, stem string) (SavedFiles, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return SavedFiles{}, fmt.Errorf("create output dir: %w", err)
	}

	saved := SavedFiles{
		Extraction: filepath.Join(outputDir, stem+"_extraction.json"),
		Markdown:   filepath.Join(outputDir, stem+"_processed.md"),
		Keywords:   filepath.Join(outputDir, stem+"_keywords.json"),
	}

	f, err := os.Create(saved.Extraction)
	if err != nil {
		return SavedFiles{}, err
	}
	if err := WriteJSON(result, f); err != nil {
		f.Close()
		return SavedFiles{}, err
	}
	if err := f.Close(); err != nil {
		return SavedFiles{}, err
	}

	if err := os.WriteFile(saved.Markdown, []byte(RenderMarkdown(result)), 0644); err != nil {
		return SavedFiles{}, err
	}

	keywordIndex := struct {
		CiteKey        string   `json:"cite_key,omitempty"`
		Title          string   `json:"title"`
		Keywords       []string `json:"keywords"`
		ExtractionDate string   `json:"extraction_date"`
	}{
		CiteKey:        result.Metadata.CiteKey,
		Title:          result.Metadata.Title,
		Keywords:       result.AllKeywords,
		ExtractionDate: result.Metadata.ExtractionDate.Format("2006-01-02T15:04:05Z07:00"),
	}
	data, err := json.MarshalIndent(keywordIndex, "", "  ")
	if err != nil {
		return SavedFiles{}, err
	}
	if err := os.WriteFile(saved.Keywords, data, 0644); err != nil {
		return SavedFiles{}, err
	}

	return saved, nil
}

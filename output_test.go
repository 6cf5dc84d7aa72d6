package scixtract

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"
)

func sampleResult() *ExtractionResult {
	return &ExtractionResult{
		Metadata: DocumentMetadata{
			Title:          "Sample Paper on Catalysis",
			Authors:        []string{"J. Smith", "A. Jones"},
			CiteKey:        "smith2024",
			Year:           "2024",
			Journal:        "J. Catal.",
			Keywords:       []string{"catalysis", "zeolite"},
			PageCount:      3,
			ExtractionDate: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
			ModelUsed:      "qwen2.5:7b",
		},
		Pages: []PageContent{
			{PageNumber: 1, CleanedText: "Abstract text.", ContentType: ContentAbstract, Keywords: []string{"catalysis"}},
			{PageNumber: 2, CleanedText: "References list.", ContentType: ContentReferences},
			{PageNumber: 3, CleanedText: "Methods description.", ContentType: ContentMethods, Keywords: []string{"zeolite"}},
		},
		AllKeywords: []string{"catalysis", "zeolite"},
	}
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(sampleResult())

	wantContains := []string{
		"# Sample Paper on Catalysis",
		"## Document Information",
		"**Citation Key:** `smith2024`",
		"**Authors:** J. Smith, A. Jones",
		"**Year:** 2024",
		"## Keywords",
		"catalysis, zeolite",
		"## Abstract",
		"## Methods",
		"## References",
		"### Page 1",
		"### Page 3",
	}
	for _, want := range wantContains {
		if !strings.Contains(md, want) {
			t.Errorf("RenderMarkdown() missing %q", want)
		}
	}

	// References render after every content section regardless of page
	// order.
	if strings.Index(md, "## References") < strings.Index(md, "## Methods") {
		t.Error("references section should come last")
	}
	if strings.Index(md, "## Abstract") > strings.Index(md, "## Methods") {
		t.Error("abstract section should come before methods")
	}
}

func TestRenderMarkdownMinimal(t *testing.T) {
	result := &ExtractionResult{
		Metadata: DocumentMetadata{CiteKey: "anon2024"},
		Pages:    []PageContent{{PageNumber: 1, CleanedText: "text", ContentType: ContentOther}},
	}
	md := RenderMarkdown(result)

	if !strings.Contains(md, "# anon2024") {
		t.Error("cite key should stand in for a missing title")
	}
	if !strings.Contains(md, "**Authors:** Unknown") {
		t.Error("missing authors should render as Unknown")
	}
	if strings.Contains(md, "## Keywords") {
		t.Error("empty keyword list should omit the section")
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(sampleResult(), &buf); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var decoded ExtractionResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Metadata.Title != "Sample Paper on Catalysis" {
		t.Errorf("Title = %q", decoded.Metadata.Title)
	}
	if len(decoded.Pages) != 3 {
		t.Errorf("got %d pages", len(decoded.Pages))
	}
}

func TestSaveResults(t *testing.T) {
	dir := t.TempDir()
	saved, err := SaveResults(sampleResult(), dir, "smith2024")
	if err != nil {
		t.Fatalf("SaveResults() error = %v", err)
	}

	for _, path := range []string{saved.Extraction, saved.Markdown, saved.Keywords} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected output file %s: %v", path, err)
		}
	}
	if !strings.HasSuffix(saved.Extraction, "smith2024_extraction.json") {
		t.Errorf("Extraction = %s", saved.Extraction)
	}
	if !strings.HasSuffix(saved.Markdown, "smith2024_processed.md") {
		t.Errorf("Markdown = %s", saved.Markdown)
	}

	data, err := os.ReadFile(saved.Keywords)
	if err != nil {
		t.Fatal(err)
	}
	var index struct {
		CiteKey  string   `json:"cite_key"`
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal(data, &index); err != nil {
		t.Fatalf("keyword index is not valid JSON: %v", err)
	}
	if index.CiteKey != "smith2024" || len(index.Keywords) != 2 {
		t.Errorf("keyword index = %+v", index)
	}
}

func TestCapKeywords(t *testing.T) {
	long := make([]string, 30)
	for i := range long {
		long[i] = "kw"
	}
	if got := capKeywords(long, 15); len(got) != 15 {
		t.Errorf("capKeywords() len = %d, want 15", len(got))
	}
	short := []string{"a", "b"}
	if got := capKeywords(short, 15); len(got) != 2 {
		t.Errorf("capKeywords() len = %d, want 2", len(got))
	}
}

package scixtract

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestProcessNoPages(t *testing.T) {
	p := NewProcessor(NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1"}))
	_, err := p.Process(context.Background(), nil, nil)
	var ue *UnreadableDocumentError
	if !errors.As(err, &ue) {
		t.Errorf("Process() error = %v, want UnreadableDocumentError", err)
	}
}

func TestProcessDegradedWithoutService(t *testing.T) {
	// No reachable service: every page takes the fallback path and the run
	// still succeeds end to end.
	p := NewProcessor(NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1"}))

	pages := []string{
		"Thermal Decomposition of Ammonium Nitrate in Confined Systems\nJ. Smith, A. Jones\n\nAbstract text here.",
		"Experimental setup and measurement details.",
		"Results and concluding remarks.",
	}

	result, err := p.Process(context.Background(), pages, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(result.Pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(result.Pages))
	}
	for i, page := range result.Pages {
		if page.PageNumber != i+1 {
			t.Errorf("page %d has PageNumber %d", i, page.PageNumber)
		}
		if page.CleanedText != pages[i] {
			t.Errorf("page %d cleaned text differs from raw", i+1)
		}
		if page.ContentType != ContentOther {
			t.Errorf("page %d ContentType = %q, want other", i+1, page.ContentType)
		}
		if len(page.Keywords) != 0 {
			t.Errorf("page %d has keywords %v, want none", i+1, page.Keywords)
		}
	}

	if result.Metadata.Title != "Thermal Decomposition of Ammonium Nitrate in Confined Systems" {
		t.Errorf("Title = %q", result.Metadata.Title)
	}
	want := []string{"J. Smith", "A. Jones"}
	if !reflect.DeepEqual(result.Metadata.Authors, want) {
		t.Errorf("Authors = %v, want %v", result.Metadata.Authors, want)
	}
	if result.Metadata.PageCount != 3 {
		t.Errorf("PageCount = %d", result.Metadata.PageCount)
	}
	if result.Metadata.ProcessingTime < 0 {
		t.Errorf("ProcessingTime = %f", result.Metadata.ProcessingTime)
	}
	if result.Metadata.ModelUsed == "" {
		t.Error("ModelUsed not recorded")
	}
}

func TestAggregateKeywords(t *testing.T) {
	pages := []PageContent{
		{PageNumber: 1, Keywords: []string{"a", "b"}},
		{PageNumber: 2, Keywords: []string{"b", "c"}},
		{PageNumber: 3},
	}
	got := aggregateKeywords(pages)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("aggregateKeywords() = %v, want %v", got, want)
	}
}

func TestMatchBibliography(t *testing.T) {
	bib := []BibEntry{
		{CiteKey: "smith2020", Title: "Catalytic Reduction of Nitrogen Oxides over Copper Zeolites"},
		{CiteKey: "jones2021", Title: "Deep Learning for Protein Structure Prediction"},
	}

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{
			"near-exact match",
			"Catalytic reduction of nitrogen oxides over copper zeolites",
			"smith2020",
		},
		{
			"partial overlap above threshold",
			"Catalytic Reduction of Nitrogen Oxides over Copper Zeolite Catalysts",
			"smith2020",
		},
		{
			"unrelated title",
			"A Study of Ocean Current Patterns in the Pacific",
			"",
		},
		{
			"empty title",
			"",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := MatchBibliography(tt.title, bib)
			got := ""
			if entry != nil {
				got = entry.CiteKey
			}
			if got != tt.want {
				t.Errorf("MatchBibliography(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestProcessBibEnrichment(t *testing.T) {
	p := NewProcessor(NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1"}))
	bib := []BibEntry{{
		CiteKey: "doe2023",
		Title:   "Plasma Assisted Synthesis of Ammonia at Atmospheric Pressure",
		Authors: []string{"Jane Doe", "Rob Roe"},
		Year:    "2023",
		Journal: "J. Catal.",
		DOI:     "10.1000/xyz",
	}}

	pages := []string{"Plasma Assisted Synthesis of Ammonia at Atmospheric Pressure\n\nbody text"}
	result, err := p.Process(context.Background(), pages, bib)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if result.Metadata.CiteKey != "doe2023" {
		t.Errorf("CiteKey = %q", result.Metadata.CiteKey)
	}
	if result.Metadata.Year != "2023" || result.Metadata.DOI != "10.1000/xyz" {
		t.Errorf("bibliography fields not applied: %+v", result.Metadata)
	}
	if result.Metadata.BibContext == nil {
		t.Error("BibContext not set")
	}
	if !reflect.DeepEqual(result.Metadata.Authors, bib[0].Authors) {
		t.Errorf("Authors = %v", result.Metadata.Authors)
	}
}

func TestDeriveTitleAuthors(t *testing.T) {
	tests := []struct {
		name        string
		page        string
		wantTitle   string
		wantAuthors []string
	}{
		{
			"title and authors",
			"Effects of Temperature on Reaction Kinetics\nM. Garcia, L. Chen and P. Novak\nUniversity of Somewhere",
			"Effects of Temperature on Reaction Kinetics",
			[]string{"M. Garcia", "L. Chen", "P. Novak"},
		},
		{
			"short lines skipped",
			"Page 1\nDRAFT\nA Comprehensive Review of Solid Oxide Fuel Cells\nK. Tanaka, S. Lee",
			"A Comprehensive Review of Solid Oxide Fuel Cells",
			[]string{"K. Tanaka", "S. Lee"},
		},
		{
			"no author line",
			"Machine Learning Methods for Spectral Analysis\nDepartment of Chemistry 2024",
			"Machine Learning Methods for Spectral Analysis",
			nil,
		},
		{
			"empty page",
			"",
			"",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, authors := deriveTitleAuthors(tt.page)
			if title != tt.wantTitle {
				t.Errorf("title = %q, want %q", title, tt.wantTitle)
			}
			if !reflect.DeepEqual(authors, tt.wantAuthors) {
				t.Errorf("authors = %v, want %v", authors, tt.wantAuthors)
			}
		})
	}
}

func TestParseAuthorLine(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"J. Smith, A. Jones", []string{"J. Smith", "A. Jones"}},
		{"Jane Q. Smith and Adam Jones", []string{"Jane Q. Smith", "Adam Jones"}},
		{"Department of Chemistry 2024", nil},
		{"single name", nil},
		{"lowercase name, other name", nil},
		{"", nil},
	}

	for _, tt := range tests {
		if got := parseAuthorLine(tt.line); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseAuthorLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestJaccard(t *testing.T) {
	a := titleTokenSet("catalytic reduction of nitrogen")
	b := titleTokenSet("catalytic oxidation of nitrogen")
	// 3 common tokens, 5 in the union.
	if got := jaccard(a, b); got < 0.59 || got > 0.61 {
		t.Errorf("jaccard() = %f, want 0.6", got)
	}
	if jaccard(a, map[string]bool{}) != 0 {
		t.Error("jaccard with empty set should be 0")
	}
}

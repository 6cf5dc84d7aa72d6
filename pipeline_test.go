package scixtract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestRunFallbackWhenServiceDown(t *testing.T) {
	client := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1"})
	pp := &pagePipeline{ai: client}
	dc := &DocumentContext{TotalPages: 3, aiDown: true}

	raw := "The catalytic conversion of CO2 over Pt surfaces [12]."
	page := pp.run(context.Background(), dc, 1, raw)

	if page.CleanedText != raw {
		t.Errorf("CleanedText = %q, want raw text kept", page.CleanedText)
	}
	if page.ContentType != ContentOther {
		t.Errorf("ContentType = %q, want other", page.ContentType)
	}
	if len(page.Keywords) != 0 {
		t.Errorf("Keywords = %v, want empty", page.Keywords)
	}
	if page.PageNumber != 1 {
		t.Errorf("PageNumber = %d", page.PageNumber)
	}
}

func TestRunAllPasses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		json.NewDecoder(r.Body).Decode(&req)
		switch {
		case req.System == fixSystemPrompt:
			json.NewEncoder(w).Encode(generateResponse{Response: "Methods section text about H2O electrolysis [3]."})
		case req.System == classifySystemPrompt:
			json.NewEncoder(w).Encode(generateResponse{Response: "methods"})
		default:
			json.NewEncoder(w).Encode(generateResponse{Response: `{"technical_keywords":["electrolysis"],"chemical_compounds":["H2O"]}`})
		}
	}))
	defer srv.Close()

	pp := &pagePipeline{ai: NewClient(ClientConfig{BaseURL: srv.URL})}
	dc := &DocumentContext{TotalPages: 10}

	page := pp.run(context.Background(), dc, 4, "Methods secti0n text ab0ut H2O electrolysis [3].")
	if page.ContentType != ContentMethods {
		t.Errorf("ContentType = %q, want methods", page.ContentType)
	}
	want := []string{"electrolysis", "h2o"}
	if !reflect.DeepEqual(page.Keywords, want) {
		t.Errorf("Keywords = %v, want %v", page.Keywords, want)
	}
}

func TestFixTextGuardKeepsRaw(t *testing.T) {
	// Model output that drops the citation marker is rejected but the pass
	// still succeeds, so classification proceeds on the raw text.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Response: "A summary that lost the citation and most of the words."})
	}))
	defer srv.Close()

	pp := &pagePipeline{ai: NewClient(ClientConfig{BaseURL: srv.URL})}
	raw := "Long observed results as reported previously [14] with many supporting measurements recorded across all experimental trials."
	fixed, ok := pp.fixText(context.Background(), &DocumentContext{}, raw)
	if !ok {
		t.Fatal("fixText() ok = false, want true on guard rejection")
	}
	if fixed != raw {
		t.Errorf("fixText() = %q, want raw kept", fixed)
	}
}

func TestPreservesContent(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		fixed string
		want  bool
	}{
		{
			"identical",
			"NH3 synthesis at 450C [2].",
			"NH3 synthesis at 450C [2].",
			true,
		},
		{
			"formula dropped",
			"Reaction of NH3 with NOx species observed in the flow reactor during runs.",
			"Reaction of ammonia with nitrogen oxide species observed in the flow reactor during runs.",
			false,
		},
		{
			"citation dropped",
			"As shown previously [12] the reaction rates were consistent across all temperature ranges tested here.",
			"As shown previously the reaction rate was consistent across all temperature ranges tested in this work.",
			false,
		},
		{
			"severe shrink",
			"A long passage with many words describing the full experimental procedure in detail over several sentences.",
			"Short.",
			false,
		},
		{
			"harmless word fixes",
			"Teh catalyst show good activity for H2 production under visible light.",
			"The catalyst shows good activity for H2 production under visible light.",
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := preservesContent(tt.raw, tt.fixed); got != tt.want {
				t.Errorf("preservesContent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFlattenKeywords(t *testing.T) {
	resp := keywordResponse{
		"equipment":          {"GC-MS"},
		"technical_keywords": {"Catalysis", "catalysis", "pyrolysis"},
		"chemical_compounds": {"H2O", ""},
		"invented_category":  {"extra term"},
	}

	got := flattenKeywords(resp)
	want := []string{"catalysis", "pyrolysis", "h2o", "gc-ms", "extra term"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("flattenKeywords() = %v, want %v", got, want)
	}
}

func TestExtractKeywordsMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Response: "no keywords found, sorry"})
	}))
	defer srv.Close()

	pp := &pagePipeline{ai: NewClient(ClientConfig{BaseURL: srv.URL})}
	kws, ok := pp.extractKeywords(context.Background(), &DocumentContext{}, "some page text")
	if !ok {
		t.Error("extractKeywords() ok = false, want true on malformed JSON")
	}
	if len(kws) != 0 {
		t.Errorf("extractKeywords() = %v, want empty", kws)
	}
}

func TestParseContentType(t *testing.T) {
	tests := []struct {
		in   string
		want ContentType
	}{
		{"abstract", ContentAbstract},
		{"Methods", ContentMethods},
		{" results \n", ContentResults},
		{"REFERENCES", ContentReferences},
		{"appendix", ContentOther},
		{"", ContentOther},
		{"garbage label", ContentOther},
	}

	for _, tt := range tests {
		if got := ParseContentType(tt.in); got != tt.want {
			t.Errorf("ParseContentType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

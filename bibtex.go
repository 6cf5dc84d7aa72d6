package scixtract

import (
	"fmt"
	"os"
	"strings"

	"github.com/nickng/bibtex"
)

// LoadBibliography parses a BibTeX file into bibliography entries for
// metadata matching.
func LoadBibliography(path string) ([]BibEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bibliography: %w", err)
	}
	defer f.Close()

	bib, err := bibtex.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse bibliography: %w", err)
	}

	entries := make([]BibEntry, 0, len(bib.Entries))
	for _, e := range bib.Entries {
		entry := BibEntry{CiteKey: e.CiteName}
		for name, val := range e.Fields {
			s := stripBraces(val.String())
			switch strings.ToLower(name) {
			case "title":
				entry.Title = s
			case "author":
				entry.Authors = splitAuthors(s)
			case "year":
				entry.Year = s
			case "journal":
				entry.Journal = s
			case "doi":
				entry.DOI = s
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// splitAuthors splits a BibTeX author field on " and " separators.
func splitAuthors(s string) []string {
	var authors []string
	for _, part := range strings.Split(s, " and ") {
		part = strings.TrimSpace(part)
		if part != "" {
			authors = append(authors, part)
		}
	}
	return authors
}

func stripBraces(s string) string {
	s = strings.ReplaceAll(s, "{", "")
	s = strings.ReplaceAll(s, "}", "")
	return strings.TrimSpace(s)
}

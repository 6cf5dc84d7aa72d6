// Package scixtract extracts text from scientific PDF documents, enhances it
// with a local AI model, and indexes the results into a searchable knowledge
// store.
//
// This package implements:
//   - Ollama client for local AI text generation
//   - Multi-pass per-page pipeline: text fix, classification, keyword extraction
//   - Document processor with bibliography matching and metadata heuristics
//   - Local SQLite-based knowledge index with keyword and concept search
//
// Every AI pass degrades gracefully: if the model is unreachable, times out,
// or returns malformed output, the affected page keeps its best available
// state and processing continues. A document always yields a result unless
// its PDF cannot be read at all.
//
// Basic usage:
//
//	client := scixtract.NewClient(scixtract.ClientConfig{Model: "qwen2.5:7b"})
//	proc := scixtract.NewProcessor(client)
//
//	pages, err := scixtract.ExtractPages("paper.pdf")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := proc.Process(ctx, pages, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	store, err := scixtract.OpenStore("knowledge.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	if err := store.Ingest(ctx, result, "paper.pdf"); err != nil {
//		log.Fatal(err)
//	}
package scixtract

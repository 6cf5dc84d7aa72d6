package scixtract

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
)

// BatchOptions configures a multi-document run.
type BatchOptions struct {
	// Workers bounds concurrent document processing. A single shared
	// Ollama instance is the serialization point, so the default is a
	// deliberately small 2.
	Workers int

	// Bibliography entries matched against every document.
	Bibliography []BibEntry

	// OutputDir, when set, receives the JSON/markdown/keyword files for
	// each successful document.
	OutputDir string

	// Store, when set, receives each result via Ingest.
	Store *Store

	// Progress, when set, is called after each document completes.
	Progress func(path string, done, total int)
}

// BatchResult reports the outcome for one document in a batch.
type BatchResult struct {
	Path   string
	Result *ExtractionResult
	Err    error
}

// ProcessBatch processes multiple documents concurrently. Each document is
// independent; a failed one is reported in its BatchResult and never stops
// the others. Cancelling the context stops dispatching new documents, but
// documents already in flight run to completion and persist their possibly
// degraded results.
func (p *Processor) ProcessBatch(ctx context.Context, paths []string, opts BatchOptions) []BatchResult {
	workers := opts.Workers
	if workers <= 0 {
		workers = 2
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	jobs := make(chan string)
	out := make(chan BatchResult, len(paths))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				out <- p.processOne(ctx, path, opts)
			}
		}()
	}

	// Dispatch until done or cancelled. In-flight documents are drained,
	// not abandoned.
	dispatched := 0
	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
		case jobs <- path:
			dispatched++
			continue
		}
		break
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(out)
	}()

	results := make([]BatchResult, 0, len(paths))
	done := 0
	for r := range out {
		done++
		if opts.Progress != nil {
			opts.Progress(r.Path, done, dispatched)
		}
		results = append(results, r)
	}
	return results
}

func (p *Processor) processOne(ctx context.Context, path string, opts BatchOptions) BatchResult {
	result, err := p.ProcessFile(ctx, path, opts.Bibliography)
	if err != nil {
		return BatchResult{Path: path, Err: err}
	}
	if result.Metadata.CiteKey == "" {
		result.Metadata.CiteKey = CiteKeyFromPath(path)
	}

	if opts.OutputDir != "" {
		if _, err := SaveResults(result, opts.OutputDir, baseStem(path)); err != nil {
			return BatchResult{Path: path, Result: result, Err: err}
		}
	}
	if opts.Store != nil {
		// Persist even when the batch was cancelled mid-flight; discarding
		// completed work loses more than it saves.
		if err := opts.Store.Ingest(context.WithoutCancel(ctx), result, path); err != nil {
			return BatchResult{Path: path, Result: result, Err: err}
		}
	}
	return BatchResult{Path: path, Result: result}
}

// CiteKeyFromPath derives a fallback cite key from the document file name,
// used when no bibliography entry matched.
func CiteKeyFromPath(path string) string {
	return baseStem(path)
}

func baseStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

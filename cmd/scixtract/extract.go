package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scixtract/scixtract"
)

var (
	extractModel       string
	extractOutputDir   string
	extractBibFile     string
	extractUpdateKnow  bool
	extractKnowledgeDB string
	extractSummary     bool
	extractWorkers     int
)

var extractCmd = &cobra.Command{
	Use:   "extract <pdf-file> [pdf-file...]",
	Short: "Extract and AI-enhance text from PDF documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractModel, "model", "m", "", "Ollama model to use")
	extractCmd.Flags().StringVarP(&extractOutputDir, "output-dir", "o", "", "Output directory")
	extractCmd.Flags().StringVarP(&extractBibFile, "bib-file", "b", "", "BibTeX file for metadata matching")
	extractCmd.Flags().BoolVar(&extractUpdateKnow, "update-knowledge", false, "Update the knowledge index after extraction")
	extractCmd.Flags().StringVar(&extractKnowledgeDB, "knowledge-db", "", "Path to knowledge database file")
	extractCmd.Flags().BoolVar(&extractSummary, "summary", false, "Generate an AI summary of each document")
	extractCmd.Flags().IntVarP(&extractWorkers, "workers", "w", 2, "Concurrent documents when processing multiple files")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if extractModel != "" {
		cfg.Ollama.Model = extractModel
	}
	if extractOutputDir != "" {
		cfg.Extraction.OutputDir = extractOutputDir
	}
	if extractKnowledgeDB != "" {
		cfg.Knowledge.DBPath = extractKnowledgeDB
	}
	if cmd.Flags().Changed("update-knowledge") {
		cfg.Extraction.UpdateKnowledge = extractUpdateKnow
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	client := scixtract.NewClient(cfg.ClientConfig())
	proc := scixtract.NewProcessor(client)

	if !client.IsAvailable(ctx) {
		log.Println(dimStyle.Render(fmt.Sprintf("warning: Ollama model %q not reachable, output will be unenhanced", cfg.Ollama.Model)))
	}

	var bib []scixtract.BibEntry
	if extractBibFile != "" {
		entries, err := scixtract.LoadBibliography(extractBibFile)
		if err != nil {
			return fmt.Errorf("load bibliography: %w", err)
		}
		bib = entries
	}

	var store *scixtract.Store
	if cfg.Extraction.UpdateKnowledge {
		s, err := scixtract.OpenStore(cfg.Knowledge.DBPath)
		if err != nil {
			return fmt.Errorf("open knowledge store: %w", err)
		}
		defer s.Close()
		store = s
	}

	if len(args) == 1 {
		return extractOne(ctx, proc, store, bib, cfg, args[0])
	}
	return extractMany(ctx, proc, store, bib, cfg, args)
}

func extractOne(ctx context.Context, proc *scixtract.Processor, store *scixtract.Store, bib []scixtract.BibEntry, cfg *scixtract.Config, path string) error {
	log.Println(headingStyle.Render("Processing " + filepath.Base(path)))
	log.Printf("  model: %s", cfg.Ollama.Model)

	result, err := proc.ProcessFile(ctx, path, bib)
	if err != nil {
		return err
	}
	if result.Metadata.CiteKey == "" {
		result.Metadata.CiteKey = scixtract.CiteKeyFromPath(path)
	}

	if extractSummary {
		if summary, err := proc.Summarize(ctx, result); err == nil {
			result.Summary = summary
		} else {
			log.Println(dimStyle.Render("summary generation skipped: " + err.Error()))
		}
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	saved, err := scixtract.SaveResults(result, cfg.Extraction.OutputDir, stem)
	if err != nil {
		return fmt.Errorf("save results: %w", err)
	}

	if store != nil {
		if err := store.Ingest(ctx, result, path); err != nil {
			return err
		}
		log.Println(successStyle.Render("knowledge index updated"))
	}

	log.Println(successStyle.Render(fmt.Sprintf("done in %.1fs", result.Metadata.ProcessingTime)))
	log.Printf("  pages: %d, keywords: %d", len(result.Pages), len(result.AllKeywords))
	log.Printf("  extraction: %s", saved.Extraction)
	log.Printf("  markdown:   %s", saved.Markdown)
	log.Printf("  keywords:   %s", saved.Keywords)
	return nil
}

func extractMany(ctx context.Context, proc *scixtract.Processor, store *scixtract.Store, bib []scixtract.BibEntry, cfg *scixtract.Config, paths []string) error {
	log.Println(headingStyle.Render(fmt.Sprintf("Processing %d documents", len(paths))))

	results := proc.ProcessBatch(ctx, paths, scixtract.BatchOptions{
		Workers:      extractWorkers,
		Bibliography: bib,
		OutputDir:    cfg.Extraction.OutputDir,
		Store:        store,
		Progress: func(path string, done, total int) {
			log.Printf("  [%d/%d] %s", done, total, filepath.Base(path))
		},
	})

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			log.Println(errorStyle.Render(fmt.Sprintf("  %s: %v", filepath.Base(r.Path), r.Err)))
		}
	}

	log.Println(successStyle.Render(fmt.Sprintf("processed %d documents, %d failed", len(results)-failed, failed)))
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}

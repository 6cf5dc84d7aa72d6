package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scixtract/scixtract"
)

var (
	knowledgeDB    string
	searchLimit    int
	searchFuzzy    bool
	relatedLimit   int
	exportGraphOut string
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Query and manage the knowledge index",
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed keywords",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openKnowledgeStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if !cmd.Flags().Changed("limit") {
			searchLimit = loadConfig().Knowledge.MaxSearchResults
		}

		ctx := context.Background()
		var results []scixtract.SearchResult
		if searchFuzzy {
			results, err = store.SearchFuzzy(ctx, args[0], searchLimit)
		} else {
			results, err = store.Search(ctx, args[0], searchLimit)
		}
		if err != nil {
			return err
		}

		if len(results) == 0 {
			log.Printf("no results for %q", args[0])
			return nil
		}

		log.Println(headingStyle.Render(fmt.Sprintf("Results for %q", args[0])))
		for _, r := range results {
			log.Printf("\n%s %s", r.CiteKey, r.Title)
			if len(r.Authors) > 0 {
				log.Println(dimStyle.Render("  " + formatAuthors(r.Authors)))
			}
			log.Printf("  keyword: %s (page %d, relevance %.2f)", r.Keyword, r.PageNumber, r.Relevance)
			if r.Context != "" {
				log.Println(dimStyle.Render("  " + r.Context))
			}
		}
		return nil
	},
}

var relatedCmd = &cobra.Command{
	Use:   "related <term>",
	Short: "Show concepts co-occurring with a term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openKnowledgeStore()
		if err != nil {
			return err
		}
		defer store.Close()

		related, err := store.Related(context.Background(), args[0], relatedLimit)
		if err != nil {
			return err
		}
		if len(related) == 0 {
			log.Printf("no related concepts for %q", args[0])
			return nil
		}

		log.Println(headingStyle.Render(fmt.Sprintf("Concepts related to %q", args[0])))
		for _, rc := range related {
			log.Printf("  %s: %d co-occurrences", rc.Term, rc.Count)
		}
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <file-path>",
	Short: "Remove an indexed document and its keyword associations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openKnowledgeStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.RemoveDocument(context.Background(), args[0]); err != nil {
			return fmt.Errorf("remove %s: %w", args[0], err)
		}
		log.Println(successStyle.Render("removed " + args[0]))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openKnowledgeStore()
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.Stats(context.Background())
		if err != nil {
			return err
		}

		log.Println(headingStyle.Render("Knowledge Base Summary"))
		log.Printf("  documents:            %d", stats.DocumentCount)
		log.Printf("  indexed pages:        %d", stats.IndexedPages)
		log.Printf("  unique keywords:      %d", stats.UniqueKeywords)
		log.Printf("  keyword associations: %d", stats.KeywordAssociations)

		if len(stats.TopKeywords) > 0 {
			log.Println(headingStyle.Render("Top Keywords"))
			for _, tc := range stats.TopKeywords {
				log.Printf("  %s: %d", tc.Term, tc.Count)
			}
		}
		return nil
	},
}

var exportGraphCmd = &cobra.Command{
	Use:   "export-graph",
	Short: "Export the concept co-occurrence graph as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openKnowledgeStore()
		if err != nil {
			return err
		}
		defer store.Close()

		out := os.Stdout
		if exportGraphOut != "" {
			f, err := os.Create(exportGraphOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		if err := store.ExportGraph(context.Background(), out); err != nil {
			return err
		}
		if exportGraphOut != "" {
			log.Println(successStyle.Render("graph exported to " + exportGraphOut))
		}
		return nil
	},
}

func init() {
	knowledgeCmd.PersistentFlags().StringVar(&knowledgeDB, "knowledge-db", "", "Path to knowledge database file")

	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "Maximum results")
	searchCmd.Flags().BoolVar(&searchFuzzy, "fuzzy", false, "Typo-tolerant search")
	relatedCmd.Flags().IntVarP(&relatedLimit, "limit", "n", 10, "Maximum results")
	exportGraphCmd.Flags().StringVarP(&exportGraphOut, "output", "o", "", "Output file (default: stdout)")

	knowledgeCmd.AddCommand(searchCmd, relatedCmd, statsCmd, exportGraphCmd, removeCmd)
	rootCmd.AddCommand(knowledgeCmd)
}

func openKnowledgeStore() (*scixtract.Store, error) {
	cfg := loadConfig()
	dbPath := cfg.Knowledge.DBPath
	if knowledgeDB != "" {
		dbPath = knowledgeDB
	}
	store, err := scixtract.OpenStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open knowledge store: %w", err)
	}
	return store, nil
}

func formatAuthors(authors []string) string {
	if len(authors) > 2 {
		return strings.Join(authors[:2], ", ") + " et al."
	}
	return strings.Join(authors, ", ")
}

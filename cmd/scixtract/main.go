package main

import (
	"fmt"
	"log"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/scixtract/scixtract"
)

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "scixtract",
	Short: "AI-powered PDF text extraction and knowledge indexing",
	Long: `scixtract extracts text from scientific PDFs, enhances it with a local
Ollama model (text cleanup, section classification, keyword extraction),
and indexes the results into a searchable SQLite knowledge store.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
}

func loadConfig() *scixtract.Config {
	cfg, err := scixtract.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return cfg
}

func main() {
	log.SetFlags(0)

	// Missing .env is fine; env vars still apply.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

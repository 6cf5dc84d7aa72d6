package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/scixtract/scixtract"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Check the Ollama installation and recommend models",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		client := scixtract.NewClient(cfg.ClientConfig())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		report := scixtract.CheckSetup(ctx, client)

		log.Println(headingStyle.Render("Environment"))
		if report.BinaryInstalled {
			log.Printf("  ollama binary:  %s", successStyle.Render(report.BinaryVersion))
		} else {
			log.Printf("  ollama binary:  %s", errorStyle.Render("not found"))
			log.Println(dimStyle.Render("  install from https://ollama.com/download"))
		}
		if report.ServiceRunning {
			log.Printf("  service:        %s", successStyle.Render("running at "+cfg.Ollama.BaseURL))
		} else {
			log.Printf("  service:        %s", errorStyle.Render("not reachable at "+cfg.Ollama.BaseURL))
			log.Println(dimStyle.Render("  start it with: ollama serve"))
		}

		if report.ServiceRunning {
			log.Println(headingStyle.Render("Installed Models"))
			if len(report.InstalledModels) == 0 {
				log.Println(dimStyle.Render("  none"))
			}
			for _, m := range report.InstalledModels {
				log.Printf("  %s", m)
			}
			if report.ModelReady {
				log.Printf("\n  configured model %s is %s", cfg.Ollama.Model, successStyle.Render("ready"))
			} else {
				log.Printf("\n  configured model %s is %s", cfg.Ollama.Model, errorStyle.Render("missing"))
				log.Println(dimStyle.Render(fmt.Sprintf("  pull it with: ollama pull %s", cfg.Ollama.Model)))
			}
		}

		log.Println(headingStyle.Render("Recommended Models"))
		for _, m := range scixtract.RecommendedModels() {
			marker := " "
			if m.Recommended {
				marker = "*"
			}
			log.Printf("  %s %-32s %-8s %s", marker, m.Name, m.Size, dimStyle.Render(m.Description))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

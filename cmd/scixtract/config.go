package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/scixtract/scixtract"
)

var configInit bool

var configCommand = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration, or write a default file with --init",
	RunE: func(cmd *cobra.Command, args []string) error {
		if configInit {
			return initConfig()
		}
		return showConfig()
	},
}

func init() {
	configCommand.Flags().BoolVar(&configInit, "init", false, "Write a default config file")
	rootCmd.AddCommand(configCommand)
}

func showConfig() error {
	cfg := loadConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	log.Println(headingStyle.Render("Effective Configuration"))
	fmt.Print(string(data))
	return nil
}

func initConfig() error {
	path := configPath
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "scixtract", "config.yaml")
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := scixtract.SaveConfig(path, scixtract.DefaultConfig()); err != nil {
		return err
	}
	log.Println(successStyle.Render("wrote default config to " + path))
	return nil
}

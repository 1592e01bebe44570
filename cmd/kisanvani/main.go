// Kisanvani is a multilingual farmer advisory service. It answers farmer
// queries given as text, recorded speech or a link, using a language model
// primed with the farmer's profile and local conditions.
//
// Usage:
//
//	kisanvani serve [--config /path/to/kisanvani.yaml]
//	kisanvani ask "ariyude vila ethrayanu?"
//	kisanvani purge-audio --older-than 24h
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nadzzz/kisanvani/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

var configFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kisanvani",
		Short:         "Multilingual farmer advisory service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (e.g. configs/kisanvani.yaml)")

	root.AddCommand(newServeCmd(), newAskCmd(), newPurgeCmd())
	return root
}

// loadConfig reads configuration from --config, the search path and env.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// @title       Kisanvani Farmer Advisory API
// @version     1.0
// @description Multilingual farmer advisory: text, speech and link queries answered by a language model primed with the farmer's profile and local conditions.
// @BasePath    /
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

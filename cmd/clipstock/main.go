// Command clipstock acquires stock-video clips for a render pipeline.
//
//	fetch  Search the configured catalog (or local library) and download clips covering a duration
//	scan   List the clips a local library directory holds
//	cache  Show where a URL is cached (path) or the download history (ls)
//	check  Preflight: cache dir writable, catalog reachable, library readable
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/snapetech/clipstock/internal/config"
)

var (
	envFile    string
	configFile string
	offline    bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "clipstock",
	Short: "Acquire and cache stock-video clips",
	Long: `clipstock searches a stock-video catalog for clips matching search terms and an
aspect ratio, downloads them into a content-addressed cache and prints the local
paths. Settings come from CLIPSTOCK_* environment variables, an optional .env file
and an optional YAML file.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading CLIPSTOCK_* (missing file is ignored)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML file overlaid on the environment settings")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "serve clips from the cache only; never download")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}
	cfg = config.Load()
	if configFile != "" {
		if err := cfg.ApplyFile(configFile); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	log.SetFlags(log.LstdFlags)
	log.SetPrefix("[clipstock] ")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/snapetech/clipstock/internal/cache"
	"github.com/snapetech/clipstock/internal/ledger"
	"github.com/snapetech/clipstock/internal/safeurl"
)

var (
	cacheLsLimit int
	cacheLsRun   string
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the clip cache",
}

var cachePathCmd = &cobra.Command{
	Use:   "path <url>",
	Short: "Print the cache path a clip URL maps to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := cache.Path(cfg.CacheDir, args[0])
		state := "missing"
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() && fi.Size() > 0 {
			state = "cached"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p, state)
		return nil
	},
}

var cacheLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List recently accepted clips from the download ledger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.LedgerPath == "" {
			return errors.New("no ledger configured (set CLIPSTOCK_LEDGER_PATH)")
		}
		store, err := ledger.Open(cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer store.Close()

		var entries []ledger.Entry
		if cacheLsRun != "" {
			entries, err = store.Run(cmd.Context(), cacheLsRun)
		} else {
			entries, err = store.Recent(cmd.Context(), cacheLsLimit)
		}
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "FETCHED\tRUN\tPROVIDER\tDURATION\tPATH\tSOURCE")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%s\t%s\n",
				e.FetchedAt.Format("2006-01-02 15:04:05"), e.RunID, e.Provider, e.Duration, e.LocalPath, safeurl.Redact(e.SourceURL))
		}
		return tw.Flush()
	},
}

func init() {
	cacheLsCmd.Flags().IntVarP(&cacheLsLimit, "limit", "n", 50, "maximum number of rows")
	cacheLsCmd.Flags().StringVar(&cacheLsRun, "run", "", "only rows of this run ID")
	cacheCmd.AddCommand(cachePathCmd, cacheLsCmd)
	rootCmd.AddCommand(cacheCmd)
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snapetech/clipstock/internal/health"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run preflight checks against the current configuration",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	var results []health.Result

	err := cfg.Validate(!offline)
	results = append(results, health.Result{Name: "config", Detail: cfg.Provider, Err: err})

	err = health.CheckCacheDir(cfg.CacheDir)
	results = append(results, health.Result{Name: "cache", Detail: cfg.CacheDir, Err: err})

	if !offline {
		r := health.Result{Name: "provider", Detail: cfg.Provider}
		st, err := buildStack(cfg, true)
		if err != nil {
			r.Err = err
		} else {
			defer st.close(cfg)
			a, _ := cfg.AspectValue()
			n, err := health.CheckProvider(context.Background(), st.searcher, a)
			r.Err = err
			r.Detail = fmt.Sprintf("%s candidates=%d", cfg.Provider, n)
		}
		results = append(results, r)
	}

	if cfg.UseLocalLibrary && cfg.LocalLibraryPath != "" {
		n, err := health.CheckLibrary(cfg.LocalLibraryPath)
		results = append(results, health.Result{Name: "library", Detail: fmt.Sprintf("%s clips=%d", cfg.LocalLibraryPath, n), Err: err})
	}

	failed := 0
	for _, r := range results {
		if r.OK() {
			fmt.Fprintf(cmd.OutOrStdout(), "ok    %-8s %s\n", r.Name, r.Detail)
			continue
		}
		failed++
		fmt.Fprintf(cmd.OutOrStdout(), "FAIL  %-8s %s: %v\n", r.Name, r.Detail, r.Err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	return nil
}

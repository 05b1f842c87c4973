package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/snapetech/clipstock/internal/acquire"
	"github.com/snapetech/clipstock/internal/aspect"
	"github.com/snapetech/clipstock/internal/library"
)

var (
	fetchDuration float64
	fetchAspect   string
	fetchQuiet    bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <term>...",
	Short: "Acquire clips covering a target duration",
	Long: `Searches the configured catalog for each term in order, drops duplicate clips,
and downloads candidates until their summed duration reaches --duration.
With CLIPSTOCK_USE_LOCAL_LIBRARY set, a non-empty local library is used instead
and nothing is downloaded. Local paths are printed one per line.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Float64VarP(&fetchDuration, "duration", "d", 60, "target total duration in seconds")
	fetchCmd.Flags().StringVar(&fetchAspect, "aspect", "", "portrait, landscape or square (default: CLIPSTOCK_ASPECT)")
	fetchCmd.Flags().BoolVarP(&fetchQuiet, "quiet", "q", false, "do not report progress on stderr")
	rootCmd.AddCommand(fetchCmd)
}

// needsSearch reports whether a run can reach the catalog. Only a non-empty local library
// avoids it; offline runs still search and only skip downloads.
func needsSearch(useLocal bool, dir string) bool {
	if !useLocal || dir == "" {
		return true
	}
	paths, err := library.Scan(dir)
	return err != nil || len(paths) == 0
}

func runFetch(cmd *cobra.Command, args []string) error {
	if fetchAspect != "" {
		cfg.Aspect = fetchAspect
	}
	if err := cfg.Validate(needsSearch(cfg.UseLocalLibrary, cfg.LocalLibraryPath)); err != nil {
		return err
	}
	a, _ := cfg.AspectValue()

	st, err := buildStack(cfg, offline)
	if err != nil {
		return err
	}
	defer st.close(cfg)

	orch := &acquire.Orchestrator{
		Searcher: st.searcher,
		Fetcher:  st.fetcher,
		Metrics:  st.metrics,
	}
	if st.ledger != nil {
		orch.Ledger = st.ledger
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var onProgress func(int)
	if !fetchQuiet {
		onProgress = func(p int) { fmt.Fprintf(cmd.ErrOrStderr(), "progress %d%%\n", p) }
	}
	res := orch.Acquire(ctx, acquire.Request{
		Terms:          args,
		TargetDuration: fetchDuration,
		Options: acquire.Options{
			Aspect:           a,
			MinClipDuration:  cfg.MinClipDuration,
			MaxClipDuration:  cfg.MaxClipDuration,
			UseLocalLibrary:  cfg.UseLocalLibrary,
			LocalLibraryPath: cfg.LocalLibraryPath,
		},
	}, onProgress)

	for _, p := range res.Paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	if len(res.Paths) == 0 {
		return errors.New("no material acquired")
	}
	if res.Source == acquire.SourceRemote && res.TotalDuration < fetchDuration {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: acquired %.1fs of %.1fs (%s)\n", res.TotalDuration, fetchDuration, aspect.Resolution(a))
	}
	return nil
}

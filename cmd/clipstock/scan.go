package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snapetech/clipstock/internal/library"
)

var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "List clips in a local library directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.LocalLibraryPath
		if len(args) == 1 {
			dir = args[0]
		}
		if dir == "" {
			return errors.New("no directory given (argument or CLIPSTOCK_LOCAL_LIBRARY_PATH)")
		}
		paths, err := library.Scan(dir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

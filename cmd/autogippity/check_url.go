package main

import (
	"fmt"
	"net/http"

	"github.com/rohankatakam/autogippity/internal/errors"
	"github.com/rohankatakam/autogippity/internal/urlcheck"
	"github.com/spf13/cobra"
)

var checkURLCmd = &cobra.Command{
	Use:   "check-url <url>...",
	Short: "Check that URLs answer HTTP 200",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		client := &http.Client{Timeout: cfg.API.Timeout}
		results := urlcheck.CheckAll(ctx, client, args, cfg.Invoker.Concurrency)

		failed := 0
		for _, r := range results {
			switch {
			case r.Err != nil:
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "❌ %s: %v\n", r.URL, r.Err)
			case !r.OK():
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "❌ %s: %d %s\n", r.URL, r.StatusCode, http.StatusText(r.StatusCode))
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "✅ %s\n", r.URL)
			}
		}

		if failed > 0 {
			return errors.ValidationErrorf("%d of %d URLs failed", failed, len(results))
		}
		return nil
	},
}

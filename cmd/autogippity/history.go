package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/rohankatakam/autogippity/internal/errors"
	"github.com/rohankatakam/autogippity/internal/output"
	"github.com/rohankatakam/autogippity/internal/storage"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [invocation-id]",
	Short: "Show recorded model invocations",
	Long: `Lists recent invocations from the journal (paths.journal), newest first.
Given an invocation id, shows that entry in full.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "number of entries to show (0 = all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if cfg.Paths.Journal == "" {
		return errors.ConfigError("journal disabled (paths.journal is empty)")
	}

	journal, err := storage.OpenJournal(cfg.Paths.Journal)
	if err != nil {
		return err
	}
	defer journal.Close()

	out := cmd.OutOrStdout()

	if len(args) == 1 {
		entry, err := journal.Get(args[0])
		if err != nil {
			return err
		}
		return writeJSON(out, entry)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := journal.Recent(limit)
	if err != nil {
		return err
	}

	if verbosity() == output.VerbosityJSON {
		return writeJSON(out, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No invocations recorded yet")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tAGENT\tTEMPLATE\tATTEMPTS\tSTATE\tDURATION\tID")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			e.StartedAt.Local().Format(time.DateTime), e.Agent, e.Template,
			e.Attempts, e.State, e.Duration.Round(time.Millisecond), e.ID)
	}
	return tw.Flush()
}

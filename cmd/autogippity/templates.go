package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List available prompt templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("templates-file")
		lib, err := loadLibrary(file)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tDESCRIPTION")
		for _, name := range lib.Names() {
			fmt.Fprintf(tw, "%s\t%s\n", name, lib.Describe(name))
		}
		return tw.Flush()
	},
}

func init() {
	templatesCmd.Flags().String("templates-file", "", "YAML file with additional templates")
}

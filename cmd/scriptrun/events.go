package main

import (
	"fmt"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/jwebster45206/scriptevent/pkg/script"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List the standard events and their handler text",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		t := table.New("#", "Event", "Handler").WithWriter(cmd.OutOrStdout())
		for _, ev := range script.Events() {
			t.AddRow(fmt.Sprint(int(ev)), ev.String(), ev.Handler())
		}
		t.Print()
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}

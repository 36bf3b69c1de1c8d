package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/minhajsf/Plan-it/internal/database"
	"github.com/minhajsf/Plan-it/internal/service"
	"github.com/minhajsf/Plan-it/internal/timeutil"
)

var recordsKind string

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List the events, meetings and drafts planit is tracking",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := currentUserID()
		if err != nil {
			return err
		}

		var kind service.Service
		if recordsKind != "" {
			kind = service.ParseService(recordsKind)
			if kind == service.ServiceUnknown {
				return fmt.Errorf("unknown kind %q: use calendar, meeting or mail", recordsKind)
			}
		}

		records, err := planit.DB.ListRecords(userID, kind)
		if err != nil {
			return err
		}
		return printRecords(cmd.OutOrStdout(), records)
	},
}

func printRecords(out io.Writer, records []database.Record) error {
	if len(records) == 0 {
		fmt.Fprintln(out, "No records yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tTITLE\tSTART\tLINK")
	for _, r := range records {
		start := "-"
		if r.StartTime != nil {
			start = timeutil.FormatHuman(*r.StartTime)
		}
		link := r.Link
		if link == "" {
			link = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Kind, r.Title, start, link)
	}
	return w.Flush()
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/iliyamo/movie-show-catalog/internal/model"
)

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to format JSON output: %v", err)
	}
	fmt.Fprintln(w, string(b))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func printTable(w io.Writer, entries []model.Entry) {
	if len(entries) == 0 {
		dimLabel.Fprintln(w, "no entries")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headLabel.Fprintln(tw, "ID\tTITLE\tTYPE\tDIRECTOR\tYEAR\tRATING\tSTATUS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, truncate(e.Title, 40), e.Kind, truncate(e.Director, 28),
			fmtOpt(e.Year), fmtOpt(e.Rating), e.Status)
	}
	tw.Flush()
}

func printEntry(w io.Writer, e *model.Entry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row := func(k, v string) { fmt.Fprintf(tw, "%s\t%s\n", headLabel.Sprint(k), v) }
	row("id", fmt.Sprint(e.ID))
	row("title", e.Title)
	row("type", string(e.Kind))
	row("director", e.Director)
	row("budget", fmtOpt(e.Budget))
	row("location", fmtOpt(e.Location))
	row("duration", fmtOpt(e.DurationMinutes))
	row("year", fmtOpt(e.Year))
	row("timeRange", fmtOpt(e.ActiveRange))
	row("rating", fmtOpt(e.Rating))
	row("genre", fmtOpt(e.Genre))
	row("status", string(e.Status))
	row("description", fmtOpt(e.Description))
	row("createdAt", e.CreatedAt.Local().Format(time.DateTime))
	row("updatedAt", e.UpdatedAt.Local().Format(time.DateTime))
	tw.Flush()
}

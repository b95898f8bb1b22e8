package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iliyamo/movie-show-catalog/internal/client"
	"github.com/iliyamo/movie-show-catalog/internal/model"
)

const browseHelp = `commands:
  <enter> | m        load the next page
  s TEXT             search title, director and genre (s alone clears)
  t Movie|TV Show    filter by type (t alone clears)
  rm ID              delete an entry and reload
  r                  reload from page 1
  q                  quit`

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Page through the catalog interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cat := newCatalog()
		feed := client.NewFeed(cat, listLimit)
		cat.Subscribe(feed)

		out := cmd.OutOrStdout()
		filter := client.Filter{Search: listSearch, Kind: model.Kind(listKind)}
		if err := feed.SetFilter(cmd.Context(), filter); err != nil {
			return err
		}
		shown := render(out, feed.Snapshot(), 0)
		fmt.Fprintln(out, browseHelp)
		return browse(cmd, cat, feed, cmd.InOrStdin(), shown)
	},
}

func init() {
	browseCmd.Flags().StringVarP(&listSearch, "search", "s", "", "initial search text")
	browseCmd.Flags().StringVarP(&listKind, "type", "t", "", `initial type filter, "Movie" or "TV Show"`)
	browseCmd.Flags().IntVarP(&listLimit, "limit", "l", 10, "entries per page (1-100)")
}

// browse runs the prompt loop until q or end of input.  shown is how many
// entries of the current view have been printed.
func browse(cmd *cobra.Command, cat *client.Catalog, feed *client.Feed, in io.Reader, shown int) error {
	out := cmd.OutOrStdout()
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		verb, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		ctx := cmd.Context()

		var err error
		reset := true
		switch verb {
		case "", "m":
			var more bool
			more, err = feed.LoadMore(ctx)
			if err == nil && !more {
				dimLabel.Fprintln(out, "no more entries")
				continue
			}
			reset = false
		case "s":
			f := feed.Snapshot().Filter
			f.Search = arg
			err = feed.SetFilter(ctx, f)
		case "t":
			f := feed.Snapshot().Filter
			f.Kind = model.Kind(arg)
			err = feed.SetFilter(ctx, f)
		case "rm":
			var id int64
			if id, err = parseID(arg); err == nil {
				// On success the feed is reset by the catalog's notification.
				if err = cat.Delete(ctx, id); err == nil {
					okLabel.Fprintf(out, "deleted entry %d\n", id)
				}
			}
		case "r":
			err = feed.Reset(ctx)
		case "q", "quit", "exit":
			return nil
		case "?", "h", "help":
			fmt.Fprintln(out, browseHelp)
			continue
		default:
			errorLabel.Fprintf(out, "unknown command %q\n", verb)
			continue
		}
		if err != nil {
			errorLabel.Fprintf(out, "Error: %v\n", err)
			continue
		}
		if reset {
			shown = 0
		}
		shown = render(out, feed.Snapshot(), shown)
	}
}

// render prints the entries of v from index shown on and returns the new
// count.  A view that shrank below shown is printed from the start.
func render(w io.Writer, v client.View, shown int) int {
	if shown > len(v.Entries) {
		shown = 0
	}
	if shown == 0 {
		label := "all entries"
		if v.Filter != (client.Filter{}) {
			label = fmt.Sprintf("search=%q type=%q", v.Filter.Search, v.Filter.Kind)
		}
		headLabel.Fprintln(w, label)
	}
	if shown == 0 || shown < len(v.Entries) {
		printTable(w, v.Entries[shown:])
	}
	more := ""
	if v.HasMore {
		more = ", more available"
	}
	dimLabel.Fprintf(w, "%d of %d loaded%s\n", len(v.Entries), v.Total, more)
	return len(v.Entries)
}

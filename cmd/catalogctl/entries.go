package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/iliyamo/movie-show-catalog/internal/client"
	"github.com/iliyamo/movie-show-catalog/internal/model"
)

var (
	listSearch string
	listKind   string
	listPage   int
	listLimit  int
	clearAttrs []string
)

// attr maps a command line flag onto a JSON attribute of the API.
type attr struct {
	flag  string
	json  string
	usage string
	num   bool
}

var attrs = []attr{
	{"title", "title", "title (required on add)", false},
	{"type", "type", `"Movie" or "TV Show" (required on add)`, false},
	{"director", "director", "director (required on add)", false},
	{"budget", "budget", "budget, e.g. 1500000.50", false},
	{"location", "location", "filming location", false},
	{"duration", "duration", "runtime or episode length in minutes", true},
	{"year", "year", "release year", true},
	{"time-range", "timeRange", `airing span such as "2008-2013"`, false},
	{"description", "description", "description", false},
	{"rating", "rating", "rating between 0 and 10", false},
	{"genre", "genre", "genre", false},
	{"status", "status", "completed, ongoing or cancelled", false},
}

func addAttrFlags(fs *pflag.FlagSet) {
	for _, a := range attrs {
		fs.String(a.flag, "", a.usage)
	}
}

// fieldsFromFlags collects the attribute flags that were set on the command
// line, plus explicit nulls for every --clear name.
func fieldsFromFlags(fs *pflag.FlagSet, clear []string) (client.Fields, error) {
	out := client.Fields{}
	for _, a := range attrs {
		if !fs.Changed(a.flag) {
			continue
		}
		v, _ := fs.GetString(a.flag)
		if a.num {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, errors.Errorf("--%s must be an integer", a.flag)
			}
			out[a.json] = n
			continue
		}
		out[a.json] = v
	}
	for _, name := range clear {
		found := false
		for _, a := range attrs {
			if name == a.flag || name == a.json {
				out[a.json] = nil
				found = true
				break
			}
		}
		if !found {
			return nil, errors.Errorf("unknown attribute %q", name)
		}
	}
	return out, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.Errorf("invalid entry id %q", s)
	}
	return id, nil
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := requestContext(cmd)
		defer cancel()
		p, err := newCatalog().List(ctx, client.Filter{Search: listSearch, Kind: model.Kind(listKind)}, listPage, listLimit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), p)
		}
		printTable(cmd.OutOrStdout(), p.Entries)
		dimLabel.Fprintf(cmd.OutOrStdout(), "page %d of %d, %d total\n", p.Pagination.Page, p.Pagination.TotalPages, p.Pagination.Total)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show one entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()
		e, err := newCatalog().Get(ctx, id)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), e)
		}
		printEntry(cmd.OutOrStdout(), e)
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		in, err := fieldsFromFlags(cmd.Flags(), nil)
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()
		e, err := newCatalog().Create(ctx, in)
		if err != nil {
			return err
		}
		return printMutation(cmd, "created", e)
	},
}

var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Update some attributes of an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		in, err := fieldsFromFlags(cmd.Flags(), clearAttrs)
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()
		e, err := newCatalog().Update(ctx, id, in)
		if err != nil {
			return err
		}
		return printMutation(cmd, "updated", e)
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()
		if err := newCatalog().Delete(ctx, id); err != nil {
			return err
		}
		okLabel.Fprintf(cmd.OutOrStdout(), "deleted entry %d\n", id)
		return nil
	},
}

func printMutation(cmd *cobra.Command, verb string, e *model.Entry) error {
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), e)
	}
	okLabel.Fprintf(cmd.OutOrStdout(), "%s entry %d\n", verb, e.ID)
	printEntry(cmd.OutOrStdout(), e)
	return nil
}

func init() {
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "case-insensitive match on title, director or genre")
	listCmd.Flags().StringVarP(&listKind, "type", "t", "", `only "Movie" or "TV Show"`)
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1, "page number")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 10, "entries per page (1-100)")

	addAttrFlags(addCmd.Flags())
	addAttrFlags(editCmd.Flags())
	editCmd.Flags().StringSliceVar(&clearAttrs, "clear", nil, "attributes to set to null, e.g. --clear genre,rating")
}

func fmtOpt[T any](p *T) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}

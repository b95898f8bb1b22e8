package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/movie-show-catalog/internal/repository"
	"github.com/iliyamo/movie-show-catalog/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample entries into an empty catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDB(cur.cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cur.log.WithContext(cmd.Context())
		added, err := seed.Run(ctx, repository.NewEntryRepo(db))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %d sample entries\n", added)
		return nil
	},
}

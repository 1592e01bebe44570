package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nadzzz/kisanvani/internal/audiostore"
)

func newPurgeCmd() *cobra.Command {
	var (
		olderThan time.Duration
		uploads   bool
	)
	cmd := &cobra.Command{
		Use:   "purge-audio",
		Short: "Delete synthesized audio older than a given age",
		Long: `Runs one retention sweep over the synthesized audio directory, and the
upload directory with --uploads. Defaults to storage.retention.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("older-than") {
				olderThan = cfg.Storage.Retention
			}
			if olderThan <= 0 {
				return errors.New("--older-than must be positive (storage.retention is 0)")
			}

			dirs := []struct{ dir, prefix string }{{cfg.Storage.AudioDir, "advice"}}
			if uploads {
				dirs = append(dirs, struct{ dir, prefix string }{cfg.Storage.UploadDir, "upload"})
			}

			var errs []error
			for _, d := range dirs {
				store, err := audiostore.New(d.dir, d.prefix)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				n, err := store.Purge(olderThan)
				fmt.Fprintf(cmd.OutOrStdout(), "%s: removed %d file(s) older than %s\n", d.dir, n, olderThan)
				if err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "minimum age of files to delete (default storage.retention)")
	cmd.Flags().BoolVar(&uploads, "uploads", false, "also sweep the upload directory")
	return cmd
}

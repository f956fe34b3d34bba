package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwoglom/djtree/pkg/attachments"
)

func newSyncAttachmentsCmd() *cobra.Command {
	var (
		noPretend bool
		prune     bool
		tree      string
		storeKind string
	)

	cmd := &cobra.Command{
		Use:   "sync-attachments [media-root]",
		Short: "Sync person media folders into attachment records",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			treeID, err := parseTreeID(tree)
			if err != nil {
				return err
			}
			if err := validateStoreKind(storeKind); err != nil {
				return err
			}

			ctx := cmd.Context()
			app, err := newApp(ctx, appOptions{storeKind: storeKind})
			if err != nil {
				return err
			}
			defer app.close(ctx)

			root := app.cfg.AttachmentsDir
			if len(args) > 0 {
				root = args[0]
			}

			out := cmd.OutOrStdout()
			dryRun := !noPretend
			if dryRun {
				fmt.Fprintln(out, "DRY RUN MODE - No changes will be saved")
			}

			syncer := attachments.NewSyncer(app.logger, app.attachments)
			stats, err := syncer.Sync(ctx, root, attachments.Options{
				TreeID: treeID,
				DryRun: dryRun,
				Prune:  prune,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "\nSynced %d person folder(s)\n", stats.FoldersScanned)
			fmt.Fprintf(out, "  Files seen: %d\n", stats.FilesSeen)
			fmt.Fprintf(out, "  Created: %d new attachment(s)\n", stats.AttachmentsCreated)
			if prune {
				fmt.Fprintf(out, "  Pruned: %d stale attachment(s)\n", stats.AttachmentsPruned)
			}
			fmt.Fprintf(out, "  Skipped: %d file(s)\n", stats.FilesSkipped)
			if len(stats.Errors) > 0 {
				fmt.Fprintf(out, "\nErrors (%d):\n", len(stats.Errors))
				for _, e := range stats.Errors {
					fmt.Fprintf(out, "  - %s\n", e)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noPretend, "no-pretend", false, "Write changes instead of previewing them")
	cmd.Flags().BoolVar(&prune, "prune", false, "Delete attachment records whose files no longer exist")
	cmd.Flags().StringVar(&tree, "tree", "", "Tree ID to sync")
	cmd.Flags().StringVar(&storeKind, "store", "postgres", "Backing store: postgres or memory")

	return cmd
}

package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jwoglom/djtree/pkg/importer"
	"github.com/jwoglom/djtree/pkg/matching"
)

func newImportCmd() *cobra.Command {
	var (
		noPretend bool
		strict    bool
		tree      string
		storeKind string
	)

	cmd := &cobra.Command{
		Use:   "import <gedcom-file>",
		Short: "Import a GEDCOM file into the family tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			treeID, err := parseTreeID(tree)
			if err != nil {
				return err
			}
			if err := validateStoreKind(storeKind); err != nil {
				return err
			}

			ctx := cmd.Context()
			app, err := newApp(ctx, appOptions{storeKind: storeKind, withKafka: true, withGraph: true})
			if err != nil {
				return err
			}
			defer app.close(ctx)

			imp := importer.New(app.logger, app.store, matching.NewService(app.logger), app.emitter, app.family)
			report, err := imp.Run(ctx, args[0], importer.Options{
				TreeID:  treeID,
				Pretend: !noPretend,
				Strict:  strict,
			})
			if err != nil {
				return err
			}

			report.Print(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().BoolVar(&noPretend, "no-pretend", false, "Write changes instead of previewing them")
	cmd.Flags().BoolVar(&strict, "strict", false, "Require exact first names and birth years when matching individuals")
	cmd.Flags().StringVar(&tree, "tree", "", "Tree ID to import into")
	cmd.Flags().StringVar(&storeKind, "store", "postgres", "Backing store: postgres or memory")

	return cmd
}

func parseTreeID(tree string) (uuid.UUID, error) {
	if tree == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(tree)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --tree: %w", err)
	}
	return id, nil
}

func validateStoreKind(kind string) error {
	if kind != "postgres" && kind != "memory" {
		return fmt.Errorf("invalid --store %q: must be postgres or memory", kind)
	}
	return nil
}

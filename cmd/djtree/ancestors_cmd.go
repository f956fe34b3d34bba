package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newAncestorsCmd() *cobra.Command {
	var (
		tree  string
		depth int
	)

	cmd := &cobra.Command{
		Use:   "ancestors <person-id>",
		Short: "List a person's ancestors from the family graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			personID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid person id: %w", err)
			}
			treeID, err := parseTreeID(tree)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			app, err := newApp(ctx, appOptions{storeKind: "memory", withGraph: true})
			if err != nil {
				return err
			}
			defer app.close(ctx)

			if app.family == nil {
				return errors.New("graph queries need GRAPH_ENABLED=true")
			}

			ancestors, err := app.family.Ancestors(ctx, treeID, personID, depth)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Found %d ancestor(s)\n", len(ancestors))
			for _, props := range ancestors {
				name, _ := props["display_name"].(string)
				if name == "" {
					name, _ = props["id"].(string)
				}
				if birth, ok := props["birth_date"].(string); ok && birth != "" {
					fmt.Fprintf(out, "  - %s (b. %s)\n", name, birth)
				} else {
					fmt.Fprintf(out, "  - %s\n", name)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tree, "tree", "", "Tree ID to query")
	cmd.Flags().IntVar(&depth, "depth", 10, "Maximum generations to traverse")

	return cmd
}

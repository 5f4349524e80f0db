package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/charsheet/internal/config"
	"github.com/cory-johannsen/charsheet/internal/game/ruleset"
)

func newListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:       "list <category>",
		Short:     "Print the ids of a catalog category",
		Example:   "  charsheet list races\n  charsheet list subclasses",
		Args:      cobra.ExactArgs(1),
		ValidArgs: ruleset.Categories,
		RunE: func(cmd *cobra.Command, args []string) error {
			category := args[0]
			if !slices.Contains(ruleset.Categories, category) {
				return fmt.Errorf("unknown category %q; expected one of %v", category, ruleset.Categories)
			}
			cfg, err := config.Load(*configPath, cmd.Flags())
			if err != nil {
				return err
			}
			catalog, err := loadCatalog(cfg.Catalog)
			if err != nil {
				return err
			}
			for _, id := range catalog.IDs(category) {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

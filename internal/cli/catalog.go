package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skintellect/storefront/internal/catalog"
)

func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	var ingredients []string

	cmd := &cobra.Command{
		Use:   "catalog [query]",
		Short: "List or search catalog products",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(rootOpts.EnvFile)
			if err != nil {
				return err
			}
			cat, err := catalog.Load(cfg.Catalog.Path)
			if err != nil {
				return WrapExitError(ExitCommandError, "load catalog", err)
			}

			q := catalog.Query{Ingredients: ingredients}
			if len(args) == 1 {
				q.Text = args[0]
			}
			products := cat.Search(q)

			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), products)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tBRAND\tNAME\tPRICE\tSIZE")
			for _, p := range products {
				fmt.Fprintf(tw, "%s\t%s\t%s\t$%.2f\t%s\n", p.ID, p.Brand, p.Name, p.Price, p.Size)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if len(products) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "no products match %q %s\n", q.Text, strings.Join(ingredients, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&ingredients, "ingredient", "i", nil, "require an ingredient (repeatable)")
	return cmd
}

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"media-gallery/pkg/models"
	"media-gallery/pkg/services"
)

// newListCategoriesCmd creates a new command for listing categories
func newListCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-categories",
		Short: "List all gallery categories",
		Long:  `List all gallery categories with the number of galleries in each.`,
		Run: func(cmd *cobra.Command, args []string) {
			mustInit()
			listCategories(cmd.OutOrStdout(), services.GetCategories())
		},
	}
}

// listCategories displays all categories and their gallery counts
func listCategories(w io.Writer, categories []models.Category) {
	fmt.Fprintln(w, "Gallery Categories:")
	fmt.Fprintln(w, "===================")

	for _, category := range categories {
		fmt.Fprintf(w, "%s\n", category.Name)
		fmt.Fprintf(w, "  Galleries: %d\n", len(category.Galleries))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total: %d categories\n", len(categories))
}

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"media-gallery/pkg/models"
	"media-gallery/pkg/services"
)

// newListGalleriesCmd creates a new command for listing galleries
func newListGalleriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-galleries",
		Short: "List all galleries",
		Long:  `List all galleries organized by category with the number of images and videos in each.`,
		Run: func(cmd *cobra.Command, args []string) {
			mustInit()
			listGalleries(cmd.OutOrStdout(), services.GetCategories())
		},
	}
}

// listGalleries displays all galleries with their entry counts and stubs
func listGalleries(w io.Writer, categories []models.Category) {
	totalGalleries := 0

	fmt.Fprintln(w, "Galleries:")
	fmt.Fprintln(w, "==========")

	for _, category := range categories {
		fmt.Fprintf(w, "Category: %s\n", category.Name)

		for _, gallery := range category.Galleries {
			images, videos := countKinds(gallery.Entries)
			fmt.Fprintf(w, "  - %s (images: %d, videos: %d)\n", gallery.Name, images, videos)
			fmt.Fprintf(w, "    Stub: %s\n", gallery.Stub)
			totalGalleries++
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total: %d galleries across %d categories\n", totalGalleries, len(categories))
}

func countKinds(entries []models.MediaEntry) (images, videos int) {
	for _, entry := range entries {
		if entry.IsVideo() {
			videos++
		} else {
			images++
		}
	}
	return images, videos
}

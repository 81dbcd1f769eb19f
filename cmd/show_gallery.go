package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"media-gallery/pkg/models"
	"media-gallery/pkg/services"
)

// newShowGalleryCmd creates a new command for showing gallery details
func newShowGalleryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-gallery [stub]",
		Short: "Show the entries of a specific gallery",
		Long:  `Show detailed information about the images and videos in a specific gallery identified by its stub.`,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			mustInit()
			gallery, err := services.GetGallery(args[0])
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			showGallery(cmd.OutOrStdout(), gallery)
		},
	}
}

// showGallery displays details about a specific gallery
func showGallery(w io.Writer, gallery models.Gallery) {
	fmt.Fprintf(w, "Gallery: %s\n", gallery.Name)
	fmt.Fprintf(w, "Category: %s\n", gallery.Category)
	fmt.Fprintf(w, "Entries: %d\n", len(gallery.Entries))
	fmt.Fprintln(w, "================")

	for i, entry := range gallery.Entries {
		fmt.Fprintf(w, "%d. %s [%s]\n", i+1, entry.Name, entry.Kind())
		fmt.Fprintf(w, "   URL: %s\n", entry.FullRef)
		if entry.ThumbnailRef != "" && entry.ThumbnailRef != entry.FullRef {
			fmt.Fprintf(w, "   Thumbnail: %s\n", entry.ThumbnailRef)
		}
		if entry.Caption != "" {
			fmt.Fprintf(w, "   Caption: %s\n", entry.Caption)
		}
		fmt.Fprintln(w)
	}
}

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"media-gallery/pkg/models"
	"media-gallery/pkg/services"
)

// errUnsupportedFormat is returned for an export format other than json or yaml
var errUnsupportedFormat = errors.New("unsupported export format")

// newExportCmd creates a new command for exporting gallery data
func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [format]",
		Short: "Export gallery data",
		Long:  `Export all gallery data in the specified format. Supported formats: json, yaml.`,
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			mustInit()

			format := "json"
			if len(args) > 0 {
				format = args[0]
			}
			if err := exportData(cmd.OutOrStdout(), format, services.GetCategories()); err != nil {
				fmt.Printf("Error: %v\n", err)
				fmt.Println("Supported formats: json, yaml")
				os.Exit(1)
			}
		},
	}
}

// exportData writes the categories in the specified format
func exportData(w io.Writer, format string, categories []models.Category) error {
	// Sort categories by name for consistent output
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})

	switch format {
	case "json":
		data, err := json.MarshalIndent(categories, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling data: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(categories); err != nil {
			return fmt.Errorf("marshaling data: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %s", errUnsupportedFormat, format)
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jfoltran/gallery/internal/lister"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the images the server would serve",
	Long:  `List scans the assets directory the same way /api/images does and prints the result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		imgs, err := lister.New(cfg.Assets.Dir, logger).List()
		if err != nil {
			return err
		}

		if listJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(imgs)
		}

		if len(imgs) == 0 {
			fmt.Printf("No images found in %s\n", cfg.Assets.Dir)
			return nil
		}
		for _, img := range imgs {
			fmt.Printf("%-30s %s\n", img.ID, img.Src)
		}
		fmt.Printf("\n%d image(s)\n", len(imgs))
		return nil
	},
}

func init() {
	listCmd.Flags().String("assets", "public", "Directory of images to list")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print the listing as JSON")
	rootCmd.AddCommand(listCmd)
}

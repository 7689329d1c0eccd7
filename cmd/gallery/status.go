package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfoltran/gallery/internal/metrics"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show listing activity of a running server",
	Long:  `Status fetches /api/status from a running gallery server and prints it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &http.Client{Timeout: 5 * time.Second}
		snap, err := fetchStatus(client, cfg.View.APIAddr)
		if err != nil {
			fmt.Println("No gallery server reachable. Is one running?")
			fmt.Printf("  (error: %v)\n", err)
			return nil
		}

		fmt.Printf("Assets:       %s\n", snap.AssetsDir)
		fmt.Printf("Uptime:       %s\n", (time.Duration(snap.UptimeSec) * time.Second).String())
		fmt.Printf("Images:       %d\n", snap.Images)
		fmt.Printf("Listings:     %d (%d failed)\n", snap.Listings, snap.ListingsFailed)
		fmt.Printf("Last listing: %.2fms\n", snap.LastListingMs)
		fmt.Printf("Rate:         %.1f listings/min\n", snap.ListingsPerMin)
		fmt.Printf("WS clients:   %d\n", snap.WSClients)

		if snap.ErrorCount > 0 {
			fmt.Printf("Errors:       %d (last: %s)\n", snap.ErrorCount, snap.LastError)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().String("api-addr", "http://localhost:7654", "Address of the gallery server")
	rootCmd.AddCommand(statusCmd)
}

func fetchStatus(client *http.Client, addr string) (*metrics.Snapshot, error) {
	resp, err := client.Get(strings.TrimRight(addr, "/") + "/api/status")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var snap metrics.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

package cli

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"divine-deck/internal/display"
	"divine-deck/internal/models"
)

var displayURL string

var displayCmd = &cobra.Command{
	Use:   "display",
	Short: "Follow the presenter and print each slide as it changes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		url := displayURL
		if url == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			scheme := "ws"
			if cfg.TLS.Enabled {
				scheme = "wss"
			}
			host := cfg.Server.Host
			if host == "" || host == "0.0.0.0" {
				host = "localhost"
			}
			url = fmt.Sprintf("%s://%s:%s/ws/display", scheme, host, cfg.Server.Port)
		}

		surface := display.NewSurface()
		surface.OnSlide(func(entry *models.QueueEntry) {
			cmd.Println(renderEntry(entry))
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return display.NewClient(url, surface).Run(ctx)
	},
}

func init() {
	displayCmd.Flags().StringVar(&displayURL, "url", "", "display websocket URL (default from config)")
	rootCmd.AddCommand(displayCmd)
}

func renderEntry(entry *models.QueueEntry) string {
	if entry == nil {
		return "(blank)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "== %s [%s]\n", entry.Title, entry.LayoutType)
	for i, block := range entry.Contents {
		fmt.Fprintf(&b, "  %d| %s\n", i+1, block)
	}
	return strings.TrimRight(b.String(), "\n")
}

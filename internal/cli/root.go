package cli

import (
	"os"

	"github.com/spf13/cobra"

	"divine-deck/internal/config"
)

var (
	version    = "dev"
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "divinedeck",
	Short: "Presenter and display server for liturgy slides",
	Long: `divinedeck runs the presenter queue for a service and keeps every
connected display showing the current slide.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./config.toml or $DIVINEDECK_CONFIG)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return config.LoadConfig(configFile)
}

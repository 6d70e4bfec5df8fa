package cli

import (
	"github.com/spf13/cobra"

	"github.com/pufflog/pufflog/internal/daemon"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "", "override listen host")
	serveCmd.Flags().Int("port", 0, "override listen port")
	serveCmd.Flags().Bool("metrics", false, "enable the /metrics endpoint")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	Long:  `Start the HTTP API server and block until the process is stopped.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.API.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.API.Port = port
	}
	if metrics, _ := cmd.Flags().GetBool("metrics"); metrics {
		cfg.Metrics.Enabled = true
	}

	return daemon.Run(cfg)
}

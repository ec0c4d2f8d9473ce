package cmd

import (
	"log/slog"

	"github.com/nfrund/portcullis/internal/config"
	"github.com/nfrund/portcullis/internal/logging"
	"github.com/nfrund/portcullis/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		logging.New(cfg.LogFormat, cfg.LogLevel)

		s, err := server.New(cmd.Context(), cfg, version)
		if err != nil {
			slog.Error("Failed to initialize server", "error", err)
			return err
		}
		return s.Start(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides APP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

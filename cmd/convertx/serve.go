package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kumarraju1982/Convertx/internal/config"
	"github.com/kumarraju1982/Convertx/internal/home"
	"github.com/kumarraju1982/Convertx/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Convertx server",
	Long: `Start the Convertx HTTP server.

Uploads are accepted on /api/v1/convert and converted asynchronously;
job progress and results are available under /api/v1/jobs.

The config file is watched for changes and the conversion pipeline is
rebuilt without a restart.

Examples:
  convertx serve                    # Start on default port 8080
  convertx serve --port 3000        # Start on custom port
  convertx serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		// Get home directory
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		// Load configuration
		cfgMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}

		// Flags override the configured bind address
		cfg := cfgMgr.Get()
		host := serveHost
		if !cmd.Flags().Changed("host") && cfg.Server.Host != "" {
			host = cfg.Server.Host
		}
		port := servePort
		if !cmd.Flags().Changed("port") && cfg.Server.Port != "" {
			port = cfg.Server.Port
		}

		// Create server
		srv, err := server.New(server.Config{
			Host:          host,
			Port:          port,
			Home:          h,
			ConfigManager: cfgMgr,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}

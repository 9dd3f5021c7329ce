package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"servicedesk/config"
	"servicedesk/sheet"
	"servicedesk/storage"
	"servicedesk/web"
)

var (
	servePort   int
	serveDBPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the service request web form",
	Long: `Start an HTTP server with the request form, the request table with date and
technician filtering, and Excel/CSV downloads.

Users sign in with the username/password pairs from the users section of the
configuration. Sessions and per-user display settings are kept in a local SQLite file.`,
	Example: `
  # Start on the configured port
  servicedesk serve

  # Override port and settings database
  servicedesk serve --port 9090 --db ./servicedesk.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
		if cmd.Flags().Changed("db") {
			cfg.Storage.DBPath = serveDBPath
		}
		if len(cfg.Users) == 0 {
			log.Warn("no users configured, nobody will be able to sign in")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		gateway, err := sheet.NewGoogleSheet(ctx, googleConfig(*cfg))
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(cfg.Storage.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           web.NewServer(gateway, store, *cfg),
			ReadHeaderTimeout: 10 * time.Second,
		}
		return runServer(ctx, server)
	},
}

func googleConfig(cfg config.Config) sheet.GoogleConfig {
	return sheet.GoogleConfig{
		SpreadsheetID:   cfg.Sheet.SpreadsheetID,
		SheetName:       cfg.Sheet.SheetName,
		CredentialsJSON: cfg.Sheet.CredentialsJSON,
		CredentialsFile: cfg.Sheet.CredentialsFile,
	}
}

// runServer serves until ctx is cancelled, then shuts down gracefully.
func runServer(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	log.WithField("addr", server.Addr).Info("listening")

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		log.Info("server stopped")
		return nil
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP port (overrides server.port)")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "./servicedesk.db", "Path to the SQLite settings database (overrides storage.db_path)")
}

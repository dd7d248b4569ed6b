package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	"vtracer-api/internal/config"
	"vtracer-api/internal/conversion"
	"vtracer-api/internal/http/server"
	"vtracer-api/internal/infra/logging"
	"vtracer-api/internal/infra/vtracer"
)

func ServeAppCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Short:   "Serve the conversion API over HTTP",
		Example: "PORT=8888 vtracer-api serve",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg := config.Load()
	if err := ensureLogDir(cfg.Logger.File); err != nil {
		return err
	}
	logging.InitLogger(
		cfg.Logger.File,
		cfg.Logger.MaxSizeMB,
		cfg.Logger.MaxBackups,
		cfg.Logger.MaxAgeDays,
		cfg.Logger.Compress,
		cfg.Logger.Level,
	)

	app := newApp(cfg)

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigint)

	idleConnsClosed := make(chan struct{})
	if err := startServer(app, cfg, sigint, idleConnsClosed); err != nil {
		return err
	}
	<-idleConnsClosed
	return nil
}

func newApp(cfg config.Config) *fiber.App {
	svc := conversion.NewService(vtracer.NewRunner(cfg.Tracer), cfg.Limits.MaxUploadBytes)
	return server.New(server.Deps{Config: cfg, Converter: svc})
}

// startServer starts the Fiber app and blocks until a shutdown signal arrives
// or the listener fails. A listener failure is returned.
func startServer(app *fiber.App, cfg config.Config, sigint <-chan os.Signal, idleConnsClosed chan struct{}) error {
	listenErr := make(chan error, 1)
	go func() {
		logging.Info("Server starting", "addr", cfg.Addr(), "binary", cfg.Tracer.BinaryPath)
		if err := app.Listen(cfg.Addr()); err != nil {
			logging.Error("Server error", "error", err)
			listenErr <- err
		}
	}()

	select {
	case err := <-listenErr:
		close(idleConnsClosed)
		return fmt.Errorf("listen on %s: %w", cfg.Addr(), err)
	case <-sigint:
	}

	logging.Warn("Shutdown signal received, closing server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
	}

	close(idleConnsClosed)
	logging.Info("Server stopped cleanly")
	return nil
}

// ensureLogDir creates the directory of a file log target.
func ensureLogDir(path string) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

package cli

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"divine-deck/internal/config"
	"divine-deck/internal/db"
	"divine-deck/internal/handlers"
	"divine-deck/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the presenter API and display websocket",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config) error {
	if err := db.InitDatabase(cfg.Storage.DBPath); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	library, err := services.NewLibraryStore(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}
	if cfg.Library.Watch {
		go func() {
			if err := library.Watch(ctx); err != nil {
				log.Printf("Library watch stopped: %v", err)
			}
		}()
	}

	bus := services.NewBus(cfg.Channel.Name, cfg.Channel.InboxSize)
	defer bus.Close()

	setupStore := services.NewSetupStore(db.DB)
	presenter := services.NewPresenter(bus, library, setupStore, services.NewTimer(cfg.Timer.Interval))
	defer presenter.Close()

	wsService := services.NewWebSocketService(bus, services.WebSocketOptions{
		WriteWait:    cfg.Display.WriteWait,
		PongWait:     cfg.Display.PongWait,
		PingPeriod:   cfg.Display.PingPeriod,
		RequestRate:  cfg.Display.RequestRate,
		RequestBurst: cfg.Display.RequestBurst,
	})
	defer wsService.Close()

	router := handlers.SetupRoutes(
		handlers.NewPresenterHandler(presenter),
		handlers.NewLibraryHandler(library, presenter),
		handlers.NewSetupHandler(presenter, setupStore),
		handlers.NewWebSocketHandler(wsService),
	)

	server := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		if cfg.TLS.Enabled {
			server.TLSConfig = &tls.Config{
				MinVersion: config.TLSVersion(cfg.TLS.MinVersion),
			}

			log.Printf("Starting HTTPS server on %s", server.Addr)
			log.Printf("TLS Certificate: %s", cfg.TLS.CertFile)
			log.Printf("TLS Key: %s", cfg.TLS.KeyFile)
			log.Printf("TLS Min Version: %s", cfg.TLS.MinVersion)
			errCh <- server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			log.Printf("Starting HTTP server on %s", server.Addr)
			log.Printf("Warning: HTTP mode is not recommended for production")
			errCh <- server.ListenAndServe()
		}
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("Shutting down")
	wsService.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

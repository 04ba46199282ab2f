package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/username/finboard/src/handlers"
	"github.com/username/finboard/src/logger"
	"golang.org/x/time/rate"
)

type serveCmd struct {
	port string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the dashboard HTTP server" }
func (*serveCmd) Usage() string {
	return `finboard serve [-port <port>]

  Serves the dashboard API and websocket stream. Settings come from the
  environment or a .env file.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.port, "port", "", "Port to listen on (defaults to PORT)")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := loadConfig()
	logger.L.Info("finboard backend server starting...")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.close()

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:           a.auth,
		AllowedOrigins: cfg.AllowedOrigins,
		Limiter:        rate.NewLimiter(rate.Every(100*time.Millisecond), cfg.RateLimitBurst),
	}, handlers.Handlers{
		Portfolio:   handlers.NewPortfolioHandler(a.dashboard),
		Transaction: handlers.NewTransactionHandler(a.dashboard),
		Dividend:    handlers.NewDividendHandler(a.dashboard),
		User:        handlers.NewUserHandler(a.dashboard),
		Market:      handlers.NewMarketHandler(a.gateway, a.mode, a.dashboard),
		Stream: handlers.NewStreamHandler(a.dashboard, a.mode, handlers.StreamIntervals{
			HeldQuotes:  cfg.HeldRefreshInterval,
			WatchQuotes: cfg.WatchRefreshInterval,
			Insights:    cfg.InsightsRefreshInterval,
		}, cfg.AllowedOrigins),
	})

	port := c.port
	if port == "" {
		port = cfg.Port
	}
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L.Info("Server starting", "address", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.L.Error("Failed to start server", "error", err)
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
		logger.L.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.L.Error("Server shutdown failed", "error", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

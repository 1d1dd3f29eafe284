package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"FinChat/pkg/config"
	xhttp "FinChat/pkg/http"
	applogger "FinChat/pkg/logger"
)

// App encapsulates the application lifecycle: one HTTP server plus the
// resources that need closing on shutdown.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	httpServer *xhttp.Server
	closers    []io.Closer
}

// New creates the application around a route handler. Closers are shut down
// in reverse order after the HTTP server stops.
func New(cfg *config.Config, logger *applogger.Logger, handler xhttp.Handler, closers ...io.Closer) *App {
	srv := xhttp.NewServer(handler,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(logger),
	)
	return &App{
		cfg:        cfg,
		logger:     logger,
		httpServer: srv,
		closers:    closers,
	}
}

// Run starts the HTTP server and blocks until an interrupt or termination
// signal arrives, then shuts everything down.
func (a *App) Run() error {
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("environment", a.cfg.Environment))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}

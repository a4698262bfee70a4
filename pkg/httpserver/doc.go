// Package httpserver wraps net/http with graceful shutdown, configurable
// timeouts, health-check handlers, and slog lifecycle logging.
//
// Run blocks until the context is cancelled or an interrupt/TERM signal is
// received, then shuts the server down within the configured deadline.
// Listen errors are wrapped with ErrStart, shutdown errors with ErrShutdown.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server stopped", logger.Error(err))
//	}
package httpserver

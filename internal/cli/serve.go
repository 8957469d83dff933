package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treemap/internal/server"
)

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	listen      string
	root        string
	maxSessions int
	sessionTTL  time.Duration
	noCache     bool
}

const (
	shutdownTimeout = 10 * time.Second
	cleanupInterval = time.Minute
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	so := serveOpts{listen: c.Config.Listen, root: "."}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve treemaps over an HTTP API",
		Long: `Start an HTTP server where clients open sessions on a directory, a manifest
or a stored snapshot, then query and edit the tree by screen position.

Only paths below --root can be scanned. Idle sessions expire after
--session-ttl.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), so)
		},
	}

	cmd.Flags().StringVar(&so.listen, "listen", so.listen, "address to listen on")
	cmd.Flags().StringVar(&so.root, "root", so.root, "directory that sessions may scan")
	cmd.Flags().IntVar(&so.maxSessions, "max-sessions", server.DefaultMaxSessions, "maximum number of live sessions")
	cmd.Flags().DurationVar(&so.sessionTTL, "session-ttl", server.DefaultSessionTTL, "drop sessions idle for this long")
	cmd.Flags().BoolVar(&so.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, so serveOpts) error {
	runner, err := c.newRunner(ctx, so.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if store, err := c.openStore(ctx); err != nil {
		c.Logger.Warn("snapshot store unavailable", "error", err)
	} else {
		runner.Store = store
	}

	srv := server.New(runner, server.Config{
		Root:        so.root,
		Width:       c.Config.Width,
		Height:      c.Config.Height,
		MaxSessions: so.maxSessions,
		SessionTTL:  so.sessionTTL,
		Logger:      loggerFromContext(ctx),
	})

	ln, err := net.Listen("tcp", so.listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", so.listen, err)
	}

	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go srv.RunCleanup(ctx, cleanupInterval)

	errc := make(chan error, 1)
	go func() { errc <- httpServer.Serve(ln) }()

	printSuccess("Serving on http://%s", ln.Addr())
	printDetail("root %s, sessions expire after %s", so.root, so.sessionTTL)

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	loggerFromContext(ctx).Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

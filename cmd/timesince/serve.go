package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/timesince/internal/httpserver"
	"github.com/verte-zerg/timesince/internal/sms"
)

const (
	defaultAddr    = httpserver.DefaultAddr
	defaultSiteURL = sms.DefaultSiteURL

	sessionSweepInterval = time.Hour
)

// sessionSweeper removes expired sign-ins.
type sessionSweeper interface {
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the SMS webhook server",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&flags.addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&flags.siteURL, "site-url", defaultSiteURL, "site URL sent in the connect reply")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, cleanupLogger := setupLogger(s, true)
	defer cleanupLogger()

	st, err := openStore(s)
	if err != nil {
		return err
	}
	defer closeStore(st)

	server := httpserver.NewServer(s.addr, sms.Responder{SiteURL: s.siteURL}, logger)
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logErrf("Listening on http://%s (POST /api/sms)\n", server.Addr())

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logErrln("\nShutting down gracefully...")
			cancel()
		case <-ctx.Done():
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sweepSessions(gctx, st, sessionSweepInterval, logger)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return server.Stop()
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	return nil
}

// sweepSessions purges expired sessions now and then on every interval
// until ctx ends.
func sweepSessions(ctx context.Context, st sessionSweeper, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		n, err := st.DeleteExpiredSessions(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			logger.Warn("session sweep failed", "err", err)
		case n > 0:
			logger.Info("expired sessions removed", "count", n)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

package cli

import (
	"context"
	"flag"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tasklog/tasklog/internal/config"
	"github.com/tasklog/tasklog/internal/server"
	"github.com/tasklog/tasklog/internal/ui"
)

// serveCommand starts the REST API and blocks until the context is
// cancelled.
func serveCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklog serve", flag.ContinueOnError)
	addr := fs.String("listen", cfg.ServerAddr, "Listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	coord, err := openStores(cfg)
	if err != nil {
		return err
	}
	srv := server.New(*addr, coord)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// tuiCommand launches the terminal task board.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklog tui", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	return ui.Run(ctx, cfg.TodoPath())
}

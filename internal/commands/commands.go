// Package commands wires the calterm command line.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"calterm/internal/calendar"
	"calterm/internal/config"
	"calterm/internal/logging"
	"calterm/internal/reactive"
	"calterm/internal/storage"
)

// New returns the root command. Without a subcommand it opens the calendar
// in the terminal.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "calterm",
		Short:         "A month calendar with events, notes and backgrounds in your terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd.Context())
		},
	}

	AddCommands(cmd)
	return cmd
}

// AddCommands registers every subcommand on topLevel.
func AddCommands(topLevel *cobra.Command) {
	addList(topLevel)
	addExport(topLevel)
	addImport(topLevel)
	addReset(topLevel)
}

// session is everything a command needs to touch the calendar.
type session struct {
	cfg     *config.Store
	logger  *zap.Logger
	backend storage.Backend
	clock   *reactive.LoopClock
	store   *calendar.Store
}

func openSession(ctx context.Context) (*session, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logPath, err := cfg.LogPath()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logPath, cfg.Config.LogLevel)
	if err != nil {
		return nil, err
	}
	dir, err := cfg.DataDir()
	if err != nil {
		return nil, err
	}
	backend, err := storage.Open(ctx, cfg.Config.Storage, dir)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	clock := reactive.NewLoopClock(0)
	store := calendar.Open(backend, clock, calendar.WithLogger(logger.Named("store")))
	logger.Debug("session opened", zap.String("storage", cfg.Config.Storage), zap.String("config", cfg.Path()))
	return &session{cfg: cfg, logger: logger, backend: backend, clock: clock, store: store}, nil
}

func (s *session) Close() error {
	s.store.Close()
	s.clock.Close()
	_ = s.logger.Sync()
	return s.backend.Close()
}

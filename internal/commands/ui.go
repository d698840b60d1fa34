package commands

import (
	"context"
	"errors"
	"os"

	"github.com/mattn/go-isatty"

	"calterm/internal/ui"
)

var errNoTerminal = errors.New("calterm needs an interactive terminal; try 'calterm list'")

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func runUI(ctx context.Context) error {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return errNoTerminal
	}
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	program := ui.NewProgram(s.store, s.clock, s.cfg, s.logger)
	return program.Start()
}

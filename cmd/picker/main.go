package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/productpicker/backend/config"
	"github.com/productpicker/backend/internal/app"
	"github.com/productpicker/backend/internal/delivery/tui"
	"github.com/productpicker/backend/internal/infrastructure/logging"
)

func main() {
	if err := run(); err != nil {
		if isatty.IsTerminal(os.Stderr.Fd()) {
			theme := tui.DefaultTheme()
			fmt.Fprintln(os.Stderr, theme.Error.Render("error: "+err.Error()))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// the terminal belongs to the UI; logs only go to log.file
	logger, logCloser, err := logging.New(cfg.Log, nil)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	picker, release := app.NewPicker(cfg, logger)
	defer release()

	useColor := isatty.IsTerminal(os.Stdout.Fd())
	model := tui.NewModel(ctx, picker, tui.DefaultTheme(), useColor)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("picker: %w", err)
	}
	return nil
}

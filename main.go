package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goplayer [files or urls...]",
		Short: "A terminal control surface for video playback",
		Long: "goplayer drives an mpv window (or an in-process clock when --backend=clock)\n" +
			"from the terminal: play/pause, seek, volume, fullscreen, playlist and speed.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "config file (default $XDG_CONFIG_HOME/goplayer/config.yaml)")
	flags.StringP("color", "c", "2", "accent color (ANSI code or hex)")
	flags.Float64("seek-step", 10, "arrow-key seek step in seconds")
	flags.String("backend", "mpv", "media backend: mpv or clock")
	flags.String("mpv-path", "mpv", "path to the mpv binary")
	flags.StringP("watch", "w", "", "append media files created in this directory")
	flags.String("log-file", "", "log file path (empty disables logging)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	warnings, err := initConfig(cmd.Flags(), configFile)
	if err != nil {
		return err
	}
	cfg := config.Get()

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
		logger.Warn("config", zap.String("problem", w))
	}

	media, err := newMediaElement(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer media.Close()

	var watcher *folderWatcher
	if cfg.Library.WatchDir != "" {
		watcher, err = watchFolder(cfg.Library.WatchDir, logger)
		if err != nil {
			return err
		}
		defer watcher.Close()
	}

	ctrl := NewPlayerController(media, cfg.ControlOptions(), logger)
	logger.Info("starting", zap.String("backend", cfg.Media.Backend), zap.Int("files", len(args)))

	m := newModel(ctrl, media, selectFiles(args), watcher, logger)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}

// newMediaElement builds the configured media backend
func newMediaElement(ctx context.Context, cfg Config, logger *zap.Logger) (MediaElement, error) {
	switch cfg.Media.Backend {
	case "clock":
		d := time.Duration(cfg.Media.ClockDuration * float64(time.Second))
		return newClockElement(d, cfg.uiRefreshInterval()), nil
	default:
		el, err := newMPVElement(ctx, cfg.Media.MPVPath, logger)
		if err != nil {
			return nil, fmt.Errorf("mpv backend (try --backend=clock): %w", err)
		}
		return el, nil
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

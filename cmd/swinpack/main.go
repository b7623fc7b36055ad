package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"swinpack/internal/app"
	"swinpack/internal/config"
	apperr "swinpack/internal/errors"
	"swinpack/internal/logging"
	"swinpack/internal/presentation"
	"swinpack/internal/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, apperr.UserMessage(err))
		os.Exit(apperr.ExitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Config{}

	cmd := &cobra.Command{
		Use:   "swinpack <source> [dest]",
		Short: "Package correlation output into a versioned archive",
		Long: `Swinpack collects the loose files of one correlation run, derives a
metadata summary, and packs everything into a reproducible bzip2 tar
archive. The source may also be an already packed archive, which is
published as-is. Optionally the archive is uploaded to the depot.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Source = args[0]
			if len(args) > 1 {
				cfg.Dest = args[1]
			}
			if err := cfg.Normalize(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.VexPath, "vex", "", "session descriptor file (skips auto-discovery)")
	cmd.Flags().StringVar(&cfg.V2DPath, "v2d", "", "correlation job descriptor file (skips auto-discovery)")
	cmd.Flags().IntVarP(&cfg.Release, "release", "r", 1, "release number (1-999)")
	cmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "verbose logging")
	cmd.Flags().BoolVarP(&cfg.Upload, "upload", "u", false, "upload the archive to the depot")
	cmd.Flags().StringVar(&cfg.UploadURL, "upload-url", "", "depot base URL")
	cmd.Flags().StringVarP(&cfg.Credentials, "credentials", "c", "", "credentials file (default ~/"+config.CredentialsFileName+")")
	cmd.Flags().BoolVarP(&cfg.DeleteAfter, "delete", "d", false, "remove the archived originals on success")
	cmd.Flags().BoolVar(&cfg.Plain, "plain", false, "plain output even on a terminal")

	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	lg := logging.New(os.Stderr, cfg.Verbose)
	pipeline := &app.Pipeline{Config: cfg, Logger: lg}

	if interactive(cfg) {
		return runInteractive(ctx, cfg, pipeline)
	}

	res, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}
	presentation.Printer{Writer: os.Stdout}.PrintResult(res)
	return nil
}

// interactive runs the progress TUI only when stdout is a terminal, plain
// mode is off, and verbose logging will not interleave with the display.
func interactive(cfg config.Config) bool {
	if cfg.Plain || cfg.Verbose {
		return false
	}
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func runInteractive(ctx context.Context, cfg config.Config, pipeline *app.Pipeline) error {
	model := tui.NewModel(tui.Config{Source: cfg.Source, Dest: cfg.Dest, Upload: cfg.Upload})
	program := tea.NewProgram(model, tea.WithContext(ctx))

	pipeline.OnStage = func(s app.Stage) {
		program.Send(tui.StageMsg{Stage: s})
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		res, err := pipeline.Run(runCtx)
		if err != nil {
			program.Send(tui.ErrorMsg{Err: err})
			errCh <- err
			return
		}
		program.Send(tui.DoneMsg{Result: res})
		errCh <- nil
	}()

	final, teaErr := program.Run()
	if m, ok := final.(tui.Model); ok && m.Quitting {
		// The user aborted; stop the pipeline before reading its result.
		cancel()
	}
	if err := <-errCh; err != nil {
		return err
	}
	if teaErr != nil {
		if ctx.Err() != nil {
			return apperr.New(apperr.Interrupted, "run", "interrupted")
		}
		return apperr.Wrap(apperr.Internal, "render progress", teaErr)
	}
	return nil
}

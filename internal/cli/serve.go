package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clemhq/clem/internal/claims"
	"github.com/clemhq/clem/internal/notify"
	"github.com/clemhq/clem/internal/reasoner"
	"github.com/clemhq/clem/internal/server"
	"github.com/clemhq/clem/internal/store"
	"github.com/clemhq/clem/internal/workflow"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Database string
	Addr     string

	// Client overrides the reasoner client (for testing). If nil, an
	// OpenAI client is built from the configuration.
	Client reasoner.Client
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the claims API server",
		Long: `Start the claims HTTP API and WebSocket event stream.

The server opens a SQLite database (creating it if it doesn't exist) and
processes submitted claims through the triage and settlement workflow.

Example:
  clem serve --db ./claims.db
  clem serve --db /tmp/claims.db --addr :9090 --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	log := slog.New(handler)
	slog.SetDefault(log)

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database.Path = opts.Database
	}
	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
	}

	client := opts.Client
	if client == nil {
		key, err := cfg.Reasoner.APIKey()
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to resolve API key", err)
		}
		client = reasoner.NewOpenAI(reasoner.OpenAIOptions{
			APIKey:      key,
			Model:       cfg.Reasoner.Model,
			BaseURL:     cfg.Reasoner.BaseURL,
			Timeout:     cfg.Reasoner.Timeout(),
			Temperature: cfg.Reasoner.Temperature,
		})
	}

	log.Info("opening database", "path", cfg.Database.Path)
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database ready")

	runner, err := workflow.NewClaimsRunner(client)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build workflow", err)
	}

	hub := notify.NewHub(log)
	svc := claims.NewService(runner, st,
		claims.WithNotifier(notify.ClaimEvents{Hub: hub}),
		claims.WithLogger(log),
	)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.New(svc, hub, log),
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	log.Info("server starting", "addr", cfg.Server.Addr, "db", cfg.Database.Path)
	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s. Press Ctrl-C to stop.\n", cfg.Server.Addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitFailure, "server error", err)
		}
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return WrapExitError(ExitFailure, "shutdown error", err)
		}
	}

	log.Info("server stopped gracefully")
	return nil
}

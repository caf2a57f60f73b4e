package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/interview-engine/internal/application"
	"github.com/example/interview-engine/internal/auth"
	"github.com/example/interview-engine/internal/config"
	"github.com/example/interview-engine/internal/logging"
	"github.com/example/interview-engine/internal/readiness"
	"github.com/example/interview-engine/internal/telemetry"
)

// operator is the principal used by the local CLI. It bypasses ownership.
var operator = application.Principal{UserID: "cli", IsAdmin: true}

type rootOptions struct {
	environ    []string
	configPath string
}

// loadConfig reads the environment, letting --config override the file
// variable.
func (o *rootOptions) loadConfig() (config.Config, error) {
	environ := o.environ
	if o.configPath != "" {
		environ = append(append([]string(nil), environ...), config.FileEnv+"="+o.configPath)
	}
	return config.LoadFrom(environ)
}

func newRootCommand(environ []string) *cobra.Command {
	opts := &rootOptions{environ: environ}

	root := &cobra.Command{
		Use:           "interviewd",
		Short:         "Interview lifecycle service",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML configuration file")

	root.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newStatusCommand(opts),
		newTokenCommand(opts),
		newPingCommand(),
	)
	return root
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	shutdownTelemetry, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Error("failed to flush traces", "error", err)
		}
	}()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to release resources", "error", err)
		}
	}()

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("interviewd listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("interviewd stopped")
	return nil
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and print the schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
			storage, err := openStorage(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer storage.Close()

			status, err := storage.MigrationStatus(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %s (%d applied, %d pending)\n",
				status.CurrentVersion, len(status.Applied), len(status.Pending))
			return nil
		},
	}
}

func newStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <interview-id>",
		Short: "Print the lifecycle status of an interview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			interview, err := a.service.GetInterview(cmd.Context(), operator, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\t%s\tversion %d\n", interview.ID, interview.Status, interview.Version)
			if interview.Window.ExpiresAt != nil {
				fmt.Fprintf(out, "expires\t%s\n", interview.Window.ExpiresAt.Format(time.RFC3339))
			}
			history, err := a.service.History(cmd.Context(), operator, args[0])
			if err != nil {
				return err
			}
			for _, entry := range history {
				fmt.Fprintf(out, "%s\t%s -> %s\t%s\n", entry.OccurredAt.Format(time.RFC3339), entry.From, entry.To, entry.Actor)
			}
			return nil
		},
	}
}

func newTokenCommand(opts *rootOptions) *cobra.Command {
	var (
		subject string
		admin   bool
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a recruiter bearer token for local use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			verifier, err := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
			if err != nil {
				return err
			}
			token, err := verifier.Issue(application.Principal{UserID: subject, IsAdmin: admin}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "recruiter user id")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func newPingCommand() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "ping <base-url>",
		Short: "Measure latency to a server's readiness endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prober := readiness.NewHTTPLatencyProber(strings.TrimRight(args[0], "/")+"/readiness/ping", timeout)
			rtt, err := prober.Probe(cmd.Context())
			if err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			quality := readiness.ClassifyLatency(rtt)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", rtt.Round(time.Millisecond), quality)
			if quality == readiness.QualityPoor {
				return readiness.ErrNetworkCheckFailed
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "probe timeout")
	return cmd
}

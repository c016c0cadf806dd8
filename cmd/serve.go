package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/agentic-research/docket/internal/audit"
	"github.com/agentic-research/docket/internal/config"
	"github.com/agentic-research/docket/internal/ctxlog"
	"github.com/agentic-research/docket/internal/docschema"
	"github.com/agentic-research/docket/internal/hook"
	"github.com/agentic-research/docket/internal/registry"
	"github.com/agentic-research/docket/internal/rest"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	serveConfig     string
	serveRoot       string
	serveListen     string
	serveBasePath   string
	serveAutoReload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the document root over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(serveConfig)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("root") {
			cfg.Registry.Root = serveRoot
		}
		if cmd.Flags().Changed("listen") {
			cfg.Listen = serveListen
		}
		if cmd.Flags().Changed("base-path") {
			cfg.API.BasePath = serveBasePath
		}
		if cmd.Flags().Changed("auto-reload") {
			cfg.Registry.AutoReload = serveAutoReload
		}
		cfg.Normalize()
		if err := cfg.Validate(); err != nil {
			return err
		}

		log := config.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
		slog.SetDefault(log)

		opts := registry.Options{
			Extension:  cfg.Registry.Extension,
			AutoReload: cfg.Registry.AutoReload,
			Logger:     log,
			OnScan:     rest.ObserveScan,
		}
		if cfg.Registry.SchemaFile != "" {
			schema, err := docschema.Load(cfg.Registry.SchemaFile)
			if err != nil {
				return err
			}
			opts.Validate = schema.Validate
			log.Info("document validation enabled", "schema", schema.Source())
		}
		reg, err := registry.New(cfg.Registry.Root, opts)
		if err != nil {
			return err
		}

		hooks := hook.NewDispatcher()
		registerBuiltinHooks(hooks)
		if cfg.Audit != nil {
			rec, err := audit.Open(cfg.Audit.Database)
			if err != nil {
				return err
			}
			defer func() { _ = rec.Close() }()
			hooks.Add(hook.After, "*", rec.Hook())
			log.Info("audit recording enabled", "database", cfg.Audit.Database)
		}

		srv := rest.New(cfg, reg, hooks, log)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.ListenAndServe(ctx)
		})
		g.Go(func() error {
			return rescanOnSignal(ctx, reg, log)
		})
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfig, "config", "c", "", "Path to HCL config file")
	serveCmd.Flags().StringVarP(&serveRoot, "root", "r", "", "Document root directory (overrides config)")
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "Listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveBasePath, "base-path", "", "URL prefix for document routes (overrides config)")
	serveCmd.Flags().BoolVar(&serveAutoReload, "auto-reload", false, "Rescan the root on every request (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

// registerBuiltinHooks installs the default access hooks: debug traces
// around every document access.
func registerBuiltinHooks(hooks *hook.Dispatcher) {
	hooks.Add(hook.Before, "*", func(ctx context.Context, ev *hook.Event) error {
		ctxlog.From(ctx).Debug("document requested", "path", ev.Path)
		return nil
	})
	hooks.Add(hook.After, "*", func(ctx context.Context, ev *hook.Event) error {
		ctxlog.From(ctx).Debug("document served", "path", ev.Path, "elapsed", ev.Elapsed)
		return nil
	})
}

// rescanOnSignal rescans the document root each time the process receives
// SIGHUP, so operators can refresh the index without enabling auto-reload.
func rescanOnSignal(ctx context.Context, reg *registry.Registry, log *slog.Logger) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hup:
			log.Info("rescan requested")
			if err := reg.Scan(ctx); err != nil {
				log.Error("rescan failed", "error", err)
			}
		}
	}
}

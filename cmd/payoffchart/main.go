package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"payoffchart/internal/config"
	"payoffchart/internal/export"
	"payoffchart/internal/inbox"
	"payoffchart/internal/logger"
	"payoffchart/internal/metrics"
	"payoffchart/internal/model"
	"payoffchart/internal/payoff"
	"payoffchart/internal/session"
	"payoffchart/internal/structure"
	"payoffchart/internal/termsheet"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Set by ldflags at build time
var (
	Version   = "dev"
	BuildTime = "unknown"
)

type app struct {
	configPath string
	cfg        *config.Config
	log        zerolog.Logger
	reg        *structure.Registry
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{reg: structure.New()}
	var level string
	var pretty bool

	root := &cobra.Command{
		Use:           "payoffchart",
		Short:         "Parse structured-note term sheets and build payoff diagrams",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = level
			}
			if cmd.Flags().Changed("pretty") {
				cfg.LogPretty = pretty
			}
			a.cfg = cfg
			a.log = logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
			logger.SetGlobalLogger(a.log)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "key=value settings file (default: .env if present)")
	root.PersistentFlags().StringVar(&level, "log-level", "info", "debug, info, warn or error")
	root.PersistentFlags().BoolVar(&pretty, "pretty", false, "human-readable console logs")

	root.AddCommand(
		a.variantsCmd(),
		a.parseCmd(),
		a.renderCmd(),
		a.serveCmd(),
		a.initCmd(),
		a.watchCmd(),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "payoffchart %s (built %s)\n", Version, BuildTime)
		},
	}
}

func (a *app) variantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List supported structures and their fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range a.reg.Entries() {
				keys := make([]string, 0, len(e.Schema.Fields))
				for _, f := range e.Schema.Fields {
					keys = append(keys, string(f.Key))
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Variant, e.Label, strings.Join(keys, ","))
			}
			return w.Flush()
		},
	}
}

func (a *app) parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [FILE]",
		Short: "Parse a pasted term sheet (stdin when FILE is omitted) and print the fields",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			res, err := termsheet.Parse(text)
			if err != nil {
				return err
			}
			return export.Encode(cmd.OutOrStdout(), export.JSON, res)
		},
	}
}

func (a *app) renderCmd() *cobra.Command {
	var (
		sets      []string
		sheetPath string
		format    string
		strict    bool
		outPath   string
	)
	cmd := &cobra.Command{
		Use:   "render [VARIANT]",
		Short: "Build payoff geometry from defaults, a term sheet and field edits",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("strict") {
				strict = a.cfg.Strict
			}

			variant := a.cfg.DefaultVariant
			if len(args) == 1 {
				variant = model.Variant(args[0])
			}
			store, err := session.NewStore(a.reg, variant)
			if err != nil {
				return err
			}

			if sheetPath != "" {
				data, err := os.ReadFile(sheetPath)
				if err != nil {
					return fmt.Errorf("read term sheet: %w", err)
				}
				res, err := store.ParseAndApply(string(data))
				if err != nil {
					return err
				}
				if len(args) == 1 && res.Variant != nil && store.Variant() != variant {
					a.log.Info().Str("requested", string(variant)).Str("inferred", string(store.Variant())).
						Msg("term sheet selects a different structure")
				}
			}

			edits, err := parseSets(sets)
			if err != nil {
				return err
			}
			if err := store.Edit(edits); err != nil {
				return err
			}

			if err := writeGeometry(cmd.OutOrStdout(), outPath, f, store.Geometry()); err != nil {
				return err
			}

			if !strict {
				return nil
			}
			violations := payoff.Check(store.Variant(), store.Params())
			for _, v := range violations {
				a.log.Warn().Str("rule", v.Rule).Msg(v.Message)
			}
			if len(violations) > 0 {
				return fmt.Errorf("%d barrier ordering violation(s)", len(violations))
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field edit KEY=VALUE (repeatable), applied after the term sheet")
	cmd.Flags().StringVar(&sheetPath, "termsheet", "", "term sheet file to parse first")
	cmd.Flags().StringVar(&format, "format", "json", "json or msgpack")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on inconsistent barrier ordering")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to file instead of stdout")
	return cmd
}

func (a *app) initCmd() *cobra.Command {
	var root string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the inbox directory structure",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("root") {
				root = a.cfg.Root
			}
			if err := inbox.Init(root); err != nil {
				return err
			}
			a.log.Info().Str("root", root).Msg("initialized inbox")
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "root", ".", "inbox root directory")
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	var root, metricsAddr string
	var strict bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Render term sheets dropped into the inbox until killed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("root") {
				root = a.cfg.Root
			}
			cfg := a.cfg
			if a.configPath == "" {
				if envPath := filepath.Join(root, inbox.EnvFile); fileExists(envPath) {
					loaded, err := config.Load(envPath)
					if err != nil {
						return err
					}
					cfg = loaded
				}
			}
			interval := cfg.PollInterval
			if cmd.Flags().Changed("interval") {
				interval, _ = cmd.Flags().GetDuration("interval")
			}
			if !cmd.Flags().Changed("strict") {
				strict = cfg.Strict
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			promReg := prometheus.NewRegistry()
			m := metrics.New(promReg)
			if metricsAddr != "" {
				go a.serveMetrics(ctx, metricsAddr, promReg)
			}

			p := inbox.New(inbox.Config{
				Root:     root,
				Registry: a.reg,
				Fallback: cfg.DefaultVariant,
				Strict:   strict,
				Log:      a.log,
				Metrics:  m,
			})
			return p.Run(ctx, interval)
		},
	}
	cmd.Flags().StringVar(&root, "root", ".", "inbox root directory")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	cmd.Flags().Duration("interval", 0, "poll interval (default from PAYOFF_POLL_INTERVAL)")
	cmd.Flags().BoolVar(&strict, "strict", false, "attach barrier ordering warnings to charts")
	return cmd
}

// writeGeometry encodes g to path, or to stdout when path is empty.
func writeGeometry(stdout io.Writer, path string, f export.Format, g model.Geometry) (err error) {
	if path == "" {
		return export.Encode(stdout, f, g)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return export.Encode(file, f, g)
}

// serveMetrics exposes the watcher's registry until ctx is done.
func (a *app) serveMetrics(ctx context.Context, addr string, g prometheus.Gatherer) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx)
	}()
	a.log.Info().Str("addr", addr).Msg("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.log.Error().Err(err).Msg("metrics server failed")
	}
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read term sheet: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func parseSets(sets []string) (map[model.Key]string, error) {
	edits := make(map[model.Key]string, len(sets))
	for _, s := range sets {
		k, v, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, errors.New("--set expects KEY=VALUE, got " + s)
		}
		edits[model.Key(strings.TrimSpace(k))] = v
	}
	return edits, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ptridnew -- online statistical payload-type classifier for live traffic.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"connectrpc.com/grpchealth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/dantte-lp/ptrid/internal/classifier"
	"github.com/dantte-lp/ptrid/internal/config"
	"github.com/dantte-lp/ptrid/internal/engine"
	ptridmetrics "github.com/dantte-lp/ptrid/internal/metrics"
	"github.com/dantte-lp/ptrid/internal/netio"
	appversion "github.com/dantte-lp/ptrid/internal/version"
)

var (
	typeDirs   []string
	saveDir    string
	modeFlag   string
	ifaceFlag  string
	durFlag    time.Duration
	configPath string
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ptridnew",
		Short: "Classify live HTTP traffic against a library of reference payload types",
		Long: "ptridnew captures Ethernet/IPv4/TCP traffic on a network interface for a " +
			"fixed duration, groups TCP segments into HTTP sessions, and classifies each " +
			"response body against a reference library.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return execute()
		},
	}

	cmd.Flags().StringArrayVar(&typeDirs, "types", nil, "training directory (repeatable)")
	cmd.Flags().StringVar(&saveDir, "save", "", "directory to write the capture dump to (default \".\")")
	cmd.Flags().StringVar(&modeFlag, "mode", "", "comparison metric: MC, CHI2, or ID (default MC)")
	cmd.Flags().StringVar(&ifaceFlag, "interface", "", "network interface to capture on (default auto-select)")
	cmd.Flags().DurationVar(&durFlag, "duration", 0, "capture duration (default from config or 5m)")
	cmd.Flags().StringVar(&configPath, "config", "", "path to configuration file (YAML)")

	return cmd
}

func execute() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if len(cfg.Classifier.Types) == 0 {
		return errors.New("ptridnew: at least one --types directory is required")
	}

	logger := newLogger(cfg.Log)
	logger.Info("ptridnew starting",
		slog.String("version", appversion.Version),
		slog.String("metric", cfg.Classifier.Metric),
		slog.Duration("duration", cfg.Online.Duration),
	)

	metric, err := engine.ParseMetric(cfg.Classifier.Metric)
	if err != nil {
		return err
	}

	dirs := make([]string, len(cfg.Classifier.Types))
	names := make([]string, len(cfg.Classifier.Types))
	for i, t := range cfg.Classifier.Types {
		dirs[i], names[i] = t.Dir, t.Name
	}

	var cache *engine.FrequencyCache
	if cfg.Classifier.CacheDir != "" {
		cache = engine.NewFrequencyCache()
	}

	lib, err := engine.BuildReferenceLibrary(metric, dirs, names, cache)
	if err != nil {
		return fmt.Errorf("build reference library: %w", err)
	}

	ifaceName := cfg.Online.Interface
	if ifaceName == "" {
		iface, err := netio.SelectInterface()
		if err != nil {
			return fmt.Errorf("select capture interface: %w", err)
		}
		ifaceName = iface.Name
	}

	source, err := netio.NewLinuxPacketSource(ifaceName)
	if err != nil {
		return fmt.Errorf("open capture source on %q: %w", ifaceName, err)
	}
	defer source.Close()

	dump, err := netio.OpenDump(cfg.Online.SaveDir, time.Now())
	if err != nil {
		return fmt.Errorf("open capture dump: %w", err)
	}
	defer dump.Close()

	reg := prometheus.NewRegistry()
	collector := ptridmetrics.NewCollector(reg)

	analyzer := classifier.NewAnalyzer(lib, cache)

	return runServers(cfg, source, dump, analyzer, collector, reg, logger)
}

func runServers(
	cfg *config.Config,
	source netio.PacketSource,
	dump *netio.Dump,
	analyzer *classifier.Analyzer,
	collector *ptridmetrics.Collector,
	reg *prometheus.Registry,
	logger *slog.Logger,
) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	metricsSrv := newMetricsServer(cfg.Metrics, reg)
	healthSrv := newHealthServer(cfg.Health)

	lc := net.ListenConfig{}
	g.Go(func() error {
		logger.Info("metrics server listening", slog.String("addr", cfg.Metrics.Addr))
		return listenAndServe(gCtx, &lc, metricsSrv, cfg.Metrics.Addr)
	})
	g.Go(func() error {
		logger.Info("health server listening", slog.String("addr", cfg.Health.Addr))
		return listenAndServe(gCtx, &lc, healthSrv, cfg.Health.Addr)
	})

	g.Go(func() error {
		err := netio.Run(gCtx, source, cfg.Online.Duration, func(pkt netio.CapturedPacket) {
			handlePacket(pkt, dump, analyzer, collector, cfg.Classifier.Metric, logger)
		})
		stop()
		return err
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gCtx), 5*time.Second)
		defer cancel()
		var shutdownErr error
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			shutdownErr = errors.Join(shutdownErr, err)
		}
		if err := healthSrv.Shutdown(shutdownCtx); err != nil {
			shutdownErr = errors.Join(shutdownErr, err)
		}
		return shutdownErr
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run servers: %w", err)
	}
	logger.Info("ptridnew stopped")
	return nil
}

// handlePacket parses one captured frame, writes it to the pcap dump,
// routes it through the analyzer's session state machine, and prints any
// verdicts produced, matching the online tool's console output contract.
func handlePacket(
	pkt netio.CapturedPacket,
	dump *netio.Dump,
	analyzer *classifier.Analyzer,
	collector *ptridmetrics.Collector,
	metricTag string,
	logger *slog.Logger,
) {
	if err := dump.Write(pkt); err != nil {
		logger.Warn("failed to write capture dump", slog.String("error", err.Error()))
	}

	frame, ok := netio.ParseFrame(pkt.Data)
	if !ok {
		collector.IncPacketsDropped()
		return
	}
	collector.IncPacketsProcessed()

	activeBefore := analyzer.ActiveSessions()
	verdicts, skipped, err := analyzer.Process(frame)
	if err != nil {
		logger.Warn("classification error", slog.String("error", err.Error()))
		return
	}
	if skipped {
		collector.IncPacketsSkipped()
	}

	activeAfter := analyzer.ActiveSessions()
	collector.SetSessionsActive(activeAfter)

	for _, v := range verdicts {
		if v.Placeholder {
			collector.IncSessionsCreated()
			fmt.Print(v.String())
			continue
		}
		collector.RecordVerdict(v.TypeName, metricTag)
		fmt.Println(v.String())
	}

	if activeAfter < activeBefore {
		// Process removed the session on FIN or RST.
		collector.IncSessionsRetired()
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config from %s: %w", path, err)
	}
	return cfg, nil
}

// applyFlagOverrides layers explicitly-set CLI flags on top of cfg. When
// --config names a file, cfg already carries that file's and the
// environment's values; without --config, cfg is DefaultConfig() and
// environment variables are not read. Flags are the tool's primary
// external interface; the config file and environment exist underneath
// them.
func applyFlagOverrides(cfg *config.Config) {
	for _, dir := range typeDirs {
		cfg.Classifier.Types = append(cfg.Classifier.Types, config.TrainingType{
			Name: filepath.Base(filepath.Clean(dir)),
			Dir:  dir,
		})
	}
	if saveDir != "" {
		cfg.Online.SaveDir = saveDir
	} else if cfg.Online.SaveDir == "" {
		cfg.Online.SaveDir = "."
	}
	if modeFlag != "" {
		cfg.Classifier.Metric = modeFlag
	}
	if ifaceFlag != "" {
		cfg.Online.Interface = ifaceFlag
	}
	if durFlag != 0 {
		cfg.Online.Duration = durFlag
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: config.ParseLogLevel(cfg.Level)}
	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func listenAndServe(ctx context.Context, lc *net.ListenConfig, srv *http.Server, addr string) error {
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve on %s: %w", addr, err)
	}
	return nil
}

func newMetricsServer(cfg config.MetricsConfig, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// newHealthServer creates an HTTP server exposing a grpc.health.v1 liveness
// endpoint over h2c, matching the teacher's daemon health-check pattern.
// There is no custom RPC service behind it: ptridnew's own work happens
// through the capture loop, not an RPC surface.
func newHealthServer(cfg config.HealthConfig) *http.Server {
	mux := http.NewServeMux()
	checker := grpchealth.NewStaticChecker(grpchealth.HealthV1ServiceName)
	mux.Handle(grpchealth.NewHandler(checker))
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

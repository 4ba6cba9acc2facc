package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	monitop "github.com/jondoveston/monitop/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "monitop [backend-url]",
	Short: "Terminal dashboard for the clone detector monitor",
	Long: `monitop polls the clone detector monitor API and shows sample counts,
per-target throughput and the latest model fit in the terminal.

Examples:
  monitop http://monitor.lan:8000
  monitop monitor.lan
  monitop --url http://localhost:8000 --target chunks
  MONITOP_URL=http://monitor.lan:8000 monitop`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	// Define flags
	rootCmd.Flags().String("url", "", "monitor backend URL (default http://localhost:8000)")
	rootCmd.Flags().Duration("interval", monitop.UpdateDuration(), "time between refreshes")
	rootCmd.Flags().Int("samples", monitop.SAMPLES_LIMIT, "number of samples shown in the counts chart")
	rootCmd.Flags().Int("points", monitop.POINTS_LIMIT, "number of throughput points requested")
	rootCmd.Flags().StringSlice("targets", monitop.Targets, "selectable throughput targets")
	rootCmd.Flags().String("target", "", "initially selected target (default first of --targets)")
	rootCmd.Flags().Duration("request-timeout", 0, "per-request timeout, 0 disables")
	rootCmd.Flags().String("snapshot-dir", "", "also write each chart as PNG into this directory")
	rootCmd.Flags().String("metrics-listen", "", "serve self metrics on this address, e.g. :9300")
	rootCmd.Flags().String("metrics-dump", "", "write self metrics to this file on exit")
	rootCmd.Flags().String("log-file", "monitop.log", "log file, the terminal is owned by the UI")
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")

	// Bind flags to Viper keys (note: dashes in flags become underscores in viper)
	for _, name := range []string{"url", "interval", "samples", "points", "targets", "target", "request-timeout", "snapshot-dir", "metrics-listen", "metrics-dump", "log-file"} {
		if err := viper.BindPFlag(flagKey(name), rootCmd.Flags().Lookup(name)); err != nil {
			log.Fatalf("failed to bind %s: %v", name, err)
		}
	}

	// Configure Viper for environment variables
	viper.SetEnvPrefix("monitop")
	viper.AutomaticEnv()

	monitop.SetDefaults(viper.GetViper())
}

func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

func run(cmd *cobra.Command, args []string) error {
	// Handle --version flag first
	versionFlag, _ := cmd.Flags().GetBool("version")
	if versionFlag {
		fmt.Printf("monitop version %s\n", version)
		return nil
	}

	// Positional argument only applies when neither env nor flag set the URL
	if len(args) == 1 && !cmd.Flags().Changed("url") && os.Getenv("MONITOP_URL") == "" {
		viper.Set("url", args[0])
	}

	cfg, err := monitop.LoadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	// Set up logging
	logFile, err := tea.LogToFile(cfg.LogFile, "monitop")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	log.Printf("Starting monitop %s", version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Backend selection
	base, explicitScheme, err := monitop.ParseBackendURL(cfg.URL)
	if err != nil {
		return err
	}
	if monitop.NeedsProbe(base, explicitScheme) {
		base, err = monitop.DetectBackend(ctx, base, explicitScheme)
		if err != nil {
			return err
		}
	}
	log.Printf("Using monitor backend: %s", base)

	metrics := monitop.NewMetrics()
	if cfg.MetricsListen != "" {
		srv := &http.Server{Addr: cfg.MetricsListen, Handler: metricsMux(metrics)}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Metrics server failed: %v", err)
			}
		}()
		defer srv.Close()
		log.Printf("Serving metrics on %s", cfg.MetricsListen)
	}
	if cfg.MetricsDump != "" {
		defer func() {
			if err := metrics.WriteTextfile(cfg.MetricsDump); err != nil {
				log.Printf("Failed to dump metrics: %v", err)
			}
		}()
	}

	var renderer monitop.Renderer = monitop.NewBrailleRenderer()
	if cfg.SnapshotDir != "" {
		snapshots, err := monitop.NewSnapshotRenderer(cfg.SnapshotDir)
		if err != nil {
			return err
		}
		renderer = monitop.TeeRenderer{Primary: renderer, Secondary: snapshots}
	}

	client := monitop.NewClient(base, cfg.RequestTimeout, metrics)
	swapper := monitop.NewSwapper(renderer, metrics)
	defer swapper.Close()
	panel := monitop.NewPanel(client, swapper, cfg.Samples, cfg.Points)
	poller, err := monitop.NewPoller(panel, clockwork.NewRealClock(), cfg.Interval, cfg.Target, metrics)
	if err != nil {
		return err
	}

	// Start dashboard
	return monitop.Dashboard(ctx, panel, swapper, poller, cfg.Targets, base.String())
}

func metricsMux(metrics *monitop.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

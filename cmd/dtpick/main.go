package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"dtpick/internal/config"
	"dtpick/internal/datetime"
	"dtpick/internal/feed"
	appLog "dtpick/internal/log"
	"dtpick/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	value      string
	format     string
	icsPath    string
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	format := flags.format
	if format == "" {
		format = conf.DisplayFormat
	}

	// One-shot modes exit without starting the server.
	if flags.value != "" {
		os.Exit(runParseOnce(flags.value, format))
	}
	if flags.icsPath != "" {
		os.Exit(runFeedOnce(flags.icsPath, format))
	}

	runServer(conf)
}

// runParseOnce parses a single value and prints its rendered text and
// normalized ISO form.
func runParseOnce(raw, format string) int {
	v := datetime.ParseString(raw)
	if v.Kind == datetime.KindInvalid {
		appLog.Error("could not parse value", fmt.Errorf("unrecognized date/time: %q", raw))
		return 1
	}
	fmt.Println(datetime.Render(format, v))
	fmt.Println(v.ISO())
	return 0
}

// runFeedOnce reads a local ICS file and renders every event start
// within a wide window using the given format.
func runFeedOnce(path, format string) int {
	body, err := os.ReadFile(path)
	if err != nil {
		appLog.Error("failed to read ICS file", err, "path", path)
		return 1
	}

	now := time.Now()
	window := feed.Window{
		Start: now.AddDate(-100, 0, 0),
		End:   now.AddDate(100, 0, 0),
	}

	starts, err := feed.EventStarts(body, window)
	if err != nil {
		appLog.Error("failed to parse ICS file", err, "path", path)
		return 1
	}

	for _, t := range starts {
		fmt.Println(datetime.Render(format, datetime.FromTime(t)))
	}

	if min, max, ok := feed.Bounds(starts); ok {
		appLog.Info("feed bounds", "min", min.ISO(), "max", max.ISO(), "events", len(starts))
	}
	return 0
}

func runServer(conf *config.Config) {
	appLog.Info("dtpick starting",
		"listen", conf.Listen,
		"display_format", conf.DisplayFormat,
		"picker_format", conf.PickerFormat,
		"bounds_ics", conf.BoundsICS,
		"refresh", conf.RefreshCron,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	srv := web.NewServer(conf)

	// Default bounds are relative to the current date, so refresh them
	// periodically; this also re-fetches feed-derived bounds.
	sched := cron.New()
	if _, err := sched.AddFunc(conf.RefreshCron, func() {
		srv.RefreshBounds(ctx)
	}); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	httpSrv := &http.Server{
		Addr:    conf.Listen,
		Handler: srv.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			appLog.Error("HTTP shutdown failed", err)
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			appLog.Error("HTTP server failed", err)
			os.Exit(1)
		}
	}

	appLog.Info("dtpick exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/dtpick/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.value, "value", "", "Parse and render a single date/time value, then exit")
	flag.StringVar(&cfg.format, "format", "", "Format template for one-shot output (default: display format)")
	flag.StringVar(&cfg.icsPath, "ics", "", "Render event starts from a local ICS file, then exit")

	flag.Parse()

	return cfg
}

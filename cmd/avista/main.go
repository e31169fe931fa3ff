// Avista - ATEM switcher controller.
//
// Avista keeps a UDP session to an ATEM production switcher, mirrors its
// state into an immutable snapshot, journals changes to SQLite, exposes a
// REST and WebSocket API, and publishes telemetry via MQTT.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/avista-project/avista/internal/api"
	"github.com/avista-project/avista/internal/cli"
	"github.com/avista-project/avista/internal/command"
	"github.com/avista-project/avista/internal/config"
	"github.com/avista-project/avista/internal/db"
	"github.com/avista-project/avista/internal/events"
	"github.com/avista-project/avista/internal/health"
	"github.com/avista-project/avista/internal/metrics"
	"github.com/avista-project/avista/internal/network"
	"github.com/avista-project/avista/internal/scheduler"
	"github.com/avista-project/avista/internal/switcher"
	"github.com/avista-project/avista/internal/telemetry"
	"github.com/avista-project/avista/internal/util"
)

const (
	AppName    = "Avista"
	AppVersion = "1.0.0"
	Banner     = `
     _          _     _
    / \__   __ (_)___| |_ __ _
   / _ \ \ / / | / __| __/ _' |
  / ___ \ V /  | \__ \ || (_| |
 /_/   \_\_/   |_|___/\__\__,_|  v%s
 ATEM Switcher Controller
`
)

type options struct {
	configDir string
	host      string
	port      int
	logLevel  string
	noCLI     bool
}

func main() {
	var opts options

	root := &cobra.Command{
		Use:           "avista",
		Short:         "ATEM switcher controller",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	root.Flags().StringVar(&opts.configDir, "config-dir", config.DefaultConfigDir, "configuration directory")
	root.Flags().StringVar(&opts.host, "host", "", "switcher address, overrides the configuration")
	root.Flags().IntVar(&opts.port, "port", 0, "switcher UDP port, overrides the configuration")
	root.Flags().StringVar(&opts.logLevel, "log-level", "", "log level, overrides the configuration")
	root.Flags().BoolVar(&opts.noCLI, "no-cli", false, "disable the interactive console")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s (%s/%s)\n", AppName, AppVersion, runtime.GOOS, runtime.GOARCH)
		},
	})

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(parent context.Context, opts options) error {
	fmt.Printf(Banner, AppVersion)
	fmt.Println()

	if err := util.InitLogger(util.DefaultLogConfig()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Info().
		Str("version", AppVersion).
		Str("platform", runtime.GOOS).
		Str("arch", runtime.GOARCH).
		Int("cpus", runtime.NumCPU()).
		Msg("starting Avista")

	cfg, err := config.Load(opts.configDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyOverrides(cfg, opts)

	logging := cfg.ApplicationData.Logging
	if err := util.InitLogger(util.LogConfig{
		Level:      logging.Level,
		Directory:  logging.Directory,
		MaxSizeMB:  logging.MaxSizeMB,
		MaxBackups: logging.MaxBackups,
		Console:    true,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to reconfigure logger, using defaults")
	}

	validation := config.Validate(cfg)
	for _, w := range validation.Warnings {
		log.Warn().Str("field", w.Field).Msg(w.Message)
	}
	if !validation.IsValid() {
		for _, e := range validation.Errors {
			log.Error().Str("field", e.Field).Msg(e.Message)
		}
		if !cfg.IsFirstRun() || opts.noCLI {
			return fmt.Errorf("configuration validation failed, please fix the errors above")
		}
		log.Info().Msg("first run detected, launching setup wizard")
		if err := config.RunSetupWizard(cfg); err != nil {
			return fmt.Errorf("setup wizard failed: %w", err)
		}
	}

	sysInfo := util.GetSystemInfo()
	log.Info().
		Str("hostname", sysInfo.Hostname).
		Str("os", sysInfo.OS).
		Str("cpu", sysInfo.CPUModel).
		Int("cores", sysInfo.CPUCores).
		Uint64("memory_mb", sysInfo.TotalMemory).
		Msg("system information")

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	eventBus := events.NewEventBus()
	eventBus.Subscribe(events.EventShutdown, "main", func(context.Context, events.Event) error {
		cancel()
		return nil
	})

	swCfg := cfg.GetSwitcher()
	collector := metrics.New()

	parser := command.NewParser(command.DefaultRegistry())
	device := switcher.New(switcher.Options{
		Name:          swCfg.Name,
		Address:       swCfg.Address(),
		FlushInterval: swCfg.FlushInterval(),
	}, nil, eventBus)

	session := network.NewSession(network.Options{
		Address:          swCfg.Address(),
		LocalPort:        swCfg.LocalPort,
		SessionID:        uint16(swCfg.SessionID),
		Timeout:          swCfg.Timeout(),
		HelloRetry:       swCfg.HelloRetry(),
		WatchdogInterval: swCfg.WatchdogInterval(),
	}, parser, device)
	device.SetTransport(session)

	if cfg.ApplicationData.Metrics.Enabled {
		parser.SetObserver(collector)
		session.SetObserver(collector)
		device.SetObserver(collector)
		collector.Subscribe(eventBus)
	}

	var journal *db.Journal
	if cfg.ApplicationData.Journal.Enabled {
		journal, err = db.NewJournal(cfg.ApplicationData.Journal.Path)
		if err != nil {
			log.Warn().Err(err).Msg("failed to open journal, history disabled")
			journal = nil
		} else {
			log.Info().Str("path", journal.Path()).Msg("journal opened")
			journal.Subscribe(eventBus)
			defer journal.Close()
		}
	}

	var (
		healthJournal health.Journal
		schedJournal  scheduler.Journal
	)
	if journal != nil {
		healthJournal = journal
		schedJournal = journal
	}
	healthMgr := health.NewManager(cfg, eventBus, session, healthJournal)
	sched := scheduler.NewScheduler(cfg, eventBus, schedJournal)

	var mqttHandler *telemetry.MQTTHandler
	if cfg.ApplicationData.MQTT.Enabled {
		mqttHandler, err = telemetry.NewMQTTHandler(cfg, eventBus, swCfg.Name, AppVersion)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize MQTT, telemetry disabled")
		}
	}

	deps := api.Deps{
		Switcher: device,
		Journal:  journal,
		Health:   healthMgr,
		Version:  AppVersion,
	}
	if cfg.ApplicationData.Metrics.Enabled {
		deps.Metrics = collector.Handler()
	}
	apiServer := api.NewServer(cfg, eventBus, deps)

	var wg sync.WaitGroup
	errCh := make(chan error, 4)

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info().Str("switcher", swCfg.Address()).Msg("starting switcher session")
		if err := session.Run(ctx); err != nil {
			errCh <- fmt.Errorf("switcher session: %w", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		device.Run(ctx)
	}()

	if cfg.ApplicationData.API.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info().Int("port", cfg.ApplicationData.API.Port).Msg("starting REST API server")
			if err := startWithRetry(ctx, "API server", apiServer.Start, 5); err != nil {
				log.Warn().Err(err).Msg("API server failed after retries (non-fatal)")
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info().Msg("starting health check manager")
		healthMgr.Start(ctx)
	}()

	if mqttHandler != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info().Msg("starting MQTT telemetry")
			if err := mqttHandler.Start(ctx); err != nil {
				log.Warn().Err(err).Msg("MQTT telemetry failed")
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info().Msg("starting task scheduler")
		sched.Start(ctx)
	}()

	if !opts.noCLI {
		go cli.NewCLI(cfg, eventBus, device).Start(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case runErr = <-errCh:
		log.Error().Err(runErr).Msg("critical error, initiating shutdown")
	case <-ctx.Done():
		log.Info().Msg("shutdown requested")
	}

	log.Info().Msg("initiating graceful shutdown...")
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("all tasks stopped gracefully")
	case <-time.After(30 * time.Second):
		log.Warn().Msg("shutdown timed out after 30 seconds, forcing exit")
	}

	eventBus.Stop()
	log.Info().Msg("Avista stopped")
	return runErr
}

// applyOverrides copies command-line flags over the loaded configuration.
func applyOverrides(cfg *config.Config, opts options) {
	sw := cfg.GetSwitcher()
	if opts.host != "" {
		sw.Host = opts.host
	}
	if opts.port > 0 {
		sw.Port = opts.port
	}
	cfg.SetSwitcher(sw)

	if opts.logLevel != "" {
		app := cfg.GetApplicationData()
		app.Logging.Level = opts.logLevel
		cfg.SetApplicationData(app)
	}
}

// startWithRetry retries startFn on bind errors at a fixed 3 second interval.
func startWithRetry(ctx context.Context, name string, startFn func(context.Context) error, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = startFn(ctx)
		if lastErr == nil {
			return nil
		}
		if i < maxRetries {
			log.Warn().Err(lastErr).Str("component", name).Int("retry", i+1).Int("max", maxRetries).Msg("bind failed, retrying in 3s...")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(3 * time.Second):
			}
		}
	}
	return lastErr
}

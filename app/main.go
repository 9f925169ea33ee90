package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akobets/signal-comb/app/api"
	"github.com/akobets/signal-comb/app/cfg"
	"github.com/akobets/signal-comb/app/chart"
	"github.com/akobets/signal-comb/app/config"
	"github.com/akobets/signal-comb/app/database"
	"github.com/akobets/signal-comb/app/dedup"
	"github.com/akobets/signal-comb/app/news"
	"github.com/akobets/signal-comb/app/notifier"
	"github.com/akobets/signal-comb/app/relay"
	signalrelay "github.com/akobets/signal-comb/app/signal"
	"github.com/akobets/signal-comb/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Signal Comb server", "version", appCfg.Version)

	// Dedup repository: SQLite by default, Redis when an address is set
	itemRepo, cleanup, err := newRelayedItemRepository(appCfg)
	if err != nil {
		slog.Error("Failed to initialize dedup repository", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	dedupStore := dedup.NewStore(itemRepo)

	// Load news route configurations
	loader := config.NewLoader(appCfg.RoutesDir)
	routes, err := loader.LoadAll()
	if err != nil {
		slog.Error("Failed to load route configurations", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded route configurations", "count", len(routes))

	httpClient := &http.Client{Timeout: 30 * time.Second}

	// Channel notifiers
	telegram := notifier.NewTelegram("", appCfg.TelegramToken, appCfg.UserAgent, httpClient)
	line := notifier.NewLine("", appCfg.LineToken, appCfg.UserAgent, httpClient)

	channels := []signalrelay.Channel{
		{Notifier: telegram, DefaultRecipients: appCfg.TelegramChatIDs},
		{Notifier: line, DefaultRecipients: appCfg.LineRecipients},
	}

	// Chart provider (optional; signals go out without an image when unset)
	var chartProvider chart.Provider
	if appCfg.ChartImgKey != "" {
		chartProvider = chart.NewChartImg("", appCfg.ChartImgKey, appCfg.ChartImgInterval,
			appCfg.UserAgent, &http.Client{Timeout: appCfg.GetChartTimeout()})
	}

	orchestrator := relay.NewOrchestrator(appCfg.GetSendTimeout())
	signalRelay := signalrelay.NewRelay(channels, chartProvider, orchestrator, appCfg.GetChartTimeout())

	// News sources and per-category targets
	categories := buildCategories(appCfg, routes, channels, httpClient)

	summarizer := news.NewSummarizer(appCfg.UserAgent, httpClient, 10*time.Second)
	poller := news.NewPoller(categories, dedupStore, orchestrator,
		defaultTargets(channels), summarizer,
		appCfg.GetRetentionWindow(), appCfg.GetSendDelay())

	// Background scheduler for news polling
	scheduler := tasks.NewScheduler(poller)
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP server
	apiHandler := api.NewHandler(signalRelay, channels, chartProvider, itemRepo, len(categories))
	server := api.NewServer(apiHandler, appCfg.APIAccessKey, appCfg.Version)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("Signal Comb server started")

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Shutdown complete")
}

// newRelayedItemRepository picks the dedup backend and returns a cleanup
// function releasing its resources.
func newRelayedItemRepository(appCfg *cfg.Cfg) (database.RelayedItemRepository, func(), error) {
	if appCfg.RedisAddr != "" {
		slog.Info("Using Redis dedup store", "addr", appCfg.RedisAddr)
		repo, err := database.NewRedisRelayedItemRepository(appCfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { repo.Close() }, nil
	}

	slog.Info("Using SQLite dedup store", "path", appCfg.DBPath)
	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return nil, nil, err
	}

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database migrations applied", "version", version, "dirty", dirty)

	return database.NewSQLRelayedItemRepository(db), func() { db.Close() }, nil
}

// buildCategories maps route configurations onto news categories with their
// sources and resolved relay targets.
func buildCategories(appCfg *cfg.Cfg, routes []*config.RouteConfig,
	channels []signalrelay.Channel, httpClient *http.Client) []news.Category {

	var apiSource *news.APISource
	if appCfg.NewsAPIBase != "" {
		apiSource = news.NewAPISource(appCfg.NewsAPIBase, appCfg.NewsAPIKey,
			appCfg.NewsLocale, appCfg.UserAgent, httpClient)
	}

	categories := make([]news.Category, 0, len(routes))
	for _, route := range routes {
		var source news.Source
		switch route.Source {
		case "rss":
			source = news.NewRSSSource(route.FeedURL, appCfg.UserAgent,
				&http.Client{Timeout: route.Settings.GetTimeout()})
		default:
			if apiSource == nil {
				slog.Warn("Skipping API route, NEWS_API_BASE not set", "route", route.Name)
				continue
			}
			source = apiSource
		}

		categories = append(categories, news.Category{
			Tag:     route.Category,
			Enabled: route.Settings.Enabled,
			Limit:   route.Settings.MaxItems,
			Source:  source,
			Targets: routeTargets(route, channels),
		})
	}

	return categories
}

// routeTargets resolves a route's recipient overrides against the configured
// channels. An empty result means the poller defaults apply.
func routeTargets(route *config.RouteConfig, channels []signalrelay.Channel) []relay.Target {
	var targets []relay.Target

	for _, ch := range channels {
		if !ch.Notifier.Configured() {
			continue
		}

		var recipients []string
		switch ch.Notifier.Kind() {
		case "telegram":
			recipients = route.Recipients.Telegram
		case "line":
			recipients = route.Recipients.Line
		}

		for _, r := range recipients {
			targets = append(targets, relay.Target{Notifier: ch.Notifier, Recipient: r})
		}
	}

	return targets
}

// defaultTargets expands every configured channel's default recipients into
// relay targets for news fan-out.
func defaultTargets(channels []signalrelay.Channel) []relay.Target {
	var targets []relay.Target

	for _, ch := range channels {
		if !ch.Notifier.Configured() {
			continue
		}
		for _, r := range ch.DefaultRecipients {
			targets = append(targets, relay.Target{Notifier: ch.Notifier, Recipient: r})
		}
	}

	return targets
}

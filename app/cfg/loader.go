package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Persistence configuration
	DBPath    string `long:"db-path" env:"DB_PATH" default:"./data/signal-comb.db" description:"Path to the SQLite database file"`
	RedisAddr string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address (host:port); when set, the dedup store uses Redis instead of SQLite"`

	// Application configuration
	RoutesDir    string `long:"routes-dir" env:"ROUTES_DIR" default:"./routes" description:"Directory containing news route configuration files"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount  int    `long:"worker-count" env:"WORKER_COUNT" default:"1" description:"Number of background workers for news polling"`
	PollInterval int    `long:"poll-interval" env:"POLL_INTERVAL" default:"30" description:"News poll interval in minutes"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"Access key required by the webhook endpoint (optional)"`

	// Relay tuning
	RetentionHours int `long:"retention-hours" env:"RETENTION_HOURS" default:"48" description:"Maximum news item age in hours; older items are never relayed"`
	SendDelayMs    int `long:"send-delay" env:"SEND_DELAY" default:"1500" description:"Delay in milliseconds between successive news sends within a category"`
	SendTimeout    int `long:"send-timeout" env:"SEND_TIMEOUT" default:"8" description:"Per-channel message send timeout in seconds"`
	ChartTimeout   int `long:"chart-timeout" env:"CHART_TIMEOUT" default:"45" description:"Chart rendering timeout in seconds"`

	// Telegram channel kind
	TelegramToken   string   `long:"telegram-token" env:"TELEGRAM_TOKEN" description:"Telegram bot token"`
	TelegramChatIDs []string `long:"telegram-chat-id" env:"TELEGRAM_CHAT_IDS" env-delim:"," description:"Default Telegram chat IDs for relayed messages"`

	// LINE channel kind
	LineToken      string   `long:"line-token" env:"LINE_TOKEN" description:"LINE access token"`
	LineRecipients []string `long:"line-to" env:"LINE_RECIPIENTS" env-delim:"," description:"Default LINE recipients for relayed messages"`

	// Chart provider
	ChartImgKey      string `long:"chart-img-key" env:"CHART_IMG_KEY" description:"chart-img.com API key (optional; signals are relayed without a chart when unset)"`
	ChartImgInterval string `long:"chart-img-interval" env:"CHART_IMG_INTERVAL" default:"4h" description:"Chart interval for rendered snapshots"`

	// News source
	NewsAPIBase string `long:"news-api-base" env:"NEWS_API_BASE" description:"Base URL of the news API (optional; RSS routes work without it)"`
	NewsAPIKey  string `long:"news-api-key" env:"NEWS_API_KEY" description:"News API key"`
	NewsLocale  string `long:"news-locale" env:"NEWS_LOCALE" default:"en" description:"Locale tag for news API requests (e.g. en, zh-TW)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Signal Comb/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Asia/Taipei)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:           raw.DBPath,
		RedisAddr:        raw.RedisAddr,
		RoutesDir:        raw.RoutesDir,
		Port:             raw.Port,
		WorkerCount:      raw.WorkerCount,
		PollInterval:     raw.PollInterval,
		APIAccessKey:     raw.APIAccessKey,
		RetentionHours:   raw.RetentionHours,
		SendDelayMs:      raw.SendDelayMs,
		SendTimeout:      raw.SendTimeout,
		ChartTimeout:     raw.ChartTimeout,
		TelegramToken:    raw.TelegramToken,
		TelegramChatIDs:  raw.TelegramChatIDs,
		LineToken:        raw.LineToken,
		LineRecipients:   raw.LineRecipients,
		ChartImgKey:      raw.ChartImgKey,
		ChartImgInterval: raw.ChartImgInterval,
		NewsAPIBase:      raw.NewsAPIBase,
		NewsAPIKey:       raw.NewsAPIKey,
		NewsLocale:       raw.NewsLocale,
		UserAgent:        raw.UserAgent,
		Timezone:         raw.Timezone,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}

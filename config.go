// Package courtwatch is the top-level ingest-and-dispatch core: it wires
// the Fetcher, Parser, DeltaEngine, QueueBuilder, WatchlistProcessor, and
// Historian into one tick function and drives it with the Scheduler,
// dispatching the tick's alerts and deltas to the Pusher/Broadcaster
// collaborators. Mirrors domwatch's shape: a root package
// that re-exports configuration and wires internal/ packages behind a
// single Watcher.
package courtwatch

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/courtwatch/internal/fetch"
	"github.com/hazyhaar/courtwatch/internal/scheduler"
	"github.com/hazyhaar/courtwatch/internal/store"
)

// Config is the top-level courtwatch configuration: the upstream board's
// two URLs, the Fetcher/Scheduler knobs, push-gateway credentials, and the
// database path.
type Config struct {
	BaseURL string // COURT_BASE_URL
	XHRURL  string // COURT_XHR_URL

	Fetch     fetch.Config
	Scheduler scheduler.Config
	Push      PushConfig

	DBPath string

	// Watchlists seeds active watchlists on startup, the YAML-file-only
	// counterpart to the REST registration surface.
	Watchlists []WatchlistSeed
}

// PushConfig carries push-gateway credentials through to the process that
// builds the real Pusher; the core never calls the gateway SDK itself,
// treating it as an external collaborator. Either WebhookURL (this repo's
// own adapter) or a full SDK credential set may be populated; it's the
// caller's job to pick one.
type PushConfig struct {
	WebhookURL          string
	BroadcastWebhookURL string

	ServiceAccountFile string
	ProjectID          string
	PrivateKey         string
	ClientEmail        string
}

// Configured reports whether enough credentials are present to build a
// real push-gateway client: a service-account file, or the project id /
// private key / client email triple.
func (p PushConfig) Configured() bool {
	return p.ServiceAccountFile != "" ||
		(p.ProjectID != "" && p.PrivateKey != "" && p.ClientEmail != "")
}

// WatchlistSeed is one statically configured watchlist, inserted once at
// startup via Watcher.SeedWatchlists if no active watchlist already covers
// the (deviceId, caseNumber) pair.
type WatchlistSeed struct {
	DeviceID     string
	CaseNumber   string
	EarlyWarning bool
	Approaching  bool
	InSession    bool
	Completed    bool
}

func (c *Config) defaults() {
	if c.DBPath == "" {
		c.DBPath = "courtwatch.db"
	}
}

// LoadEnv builds a Config from the environment variables:
// SCRAPER_INTERVAL, COURT_BASE_URL, COURT_XHR_URL, ENABLE_SCRAPER, and the
// push-gateway credential variables.
func LoadEnv() *Config {
	cfg := &Config{
		BaseURL: os.Getenv("COURT_BASE_URL"),
		XHRURL:  os.Getenv("COURT_XHR_URL"),
		Push: PushConfig{
			WebhookURL:          os.Getenv("PUSH_WEBHOOK_URL"),
			BroadcastWebhookURL: os.Getenv("BROADCAST_WEBHOOK_URL"),
			ServiceAccountFile:  os.Getenv("PUSH_SERVICE_ACCOUNT_FILE"),
			ProjectID:           os.Getenv("PUSH_PROJECT_ID"),
			PrivateKey:          os.Getenv("PUSH_PRIVATE_KEY"),
			ClientEmail:         os.Getenv("PUSH_CLIENT_EMAIL"),
		},
		DBPath: os.Getenv("COURTWATCH_DB_PATH"),
	}
	if v := os.Getenv("SCRAPER_INTERVAL"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Scheduler.Interval = time.Duration(ms) * time.Millisecond
		}
	}
	cfg.Scheduler.Disabled = os.Getenv("ENABLE_SCRAPER") == "false"
	cfg.defaults()
	return cfg
}

// fileConfig is the YAML shape LoadConfigFile accepts, the static-seed
// counterpart to LoadEnv, grounded on domwatch/internal/config.LoadFile.
type fileConfig struct {
	BaseURL string `yaml:"base_url"`
	XHRURL  string `yaml:"xhr_url"`
	DBPath  string `yaml:"db_path"`

	SchedulerIntervalSeconds int   `yaml:"scheduler_interval_seconds"`
	EnableScraper            *bool `yaml:"enable_scraper"`

	PushWebhookURL         string `yaml:"push_webhook_url"`
	BroadcastWebhookURL    string `yaml:"broadcast_webhook_url"`
	PushServiceAccountFile string `yaml:"push_service_account_file"`

	Watchlists []struct {
		DeviceID     string `yaml:"device_id"`
		CaseNumber   string `yaml:"case_number"`
		EarlyWarning bool   `yaml:"early_warning"`
		Approaching  bool   `yaml:"approaching"`
		InSession    bool   `yaml:"in_session"`
		Completed    bool   `yaml:"completed"`
	} `yaml:"watchlists"`
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("courtwatch: read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("courtwatch: parse config file: %w", err)
	}

	cfg := &Config{
		BaseURL: fc.BaseURL,
		XHRURL:  fc.XHRURL,
		DBPath:  fc.DBPath,
		Push: PushConfig{
			WebhookURL:          fc.PushWebhookURL,
			BroadcastWebhookURL: fc.BroadcastWebhookURL,
			ServiceAccountFile:  fc.PushServiceAccountFile,
		},
	}
	if fc.SchedulerIntervalSeconds > 0 {
		cfg.Scheduler.Interval = time.Duration(fc.SchedulerIntervalSeconds) * time.Second
	}
	if fc.EnableScraper != nil {
		cfg.Scheduler.Disabled = !*fc.EnableScraper
	}
	for _, w := range fc.Watchlists {
		cfg.Watchlists = append(cfg.Watchlists, WatchlistSeed{
			DeviceID:     w.DeviceID,
			CaseNumber:   w.CaseNumber,
			EarlyWarning: w.EarlyWarning,
			Approaching:  w.Approaching,
			InSession:    w.InSession,
			Completed:    w.Completed,
		})
	}
	cfg.defaults()
	return cfg, nil
}

// seedRow converts a WatchlistSeed into the durable row InsertWatchlistIfAbsent
// expects, stamping id/timestamps from the caller's generator/clock.
func seedRow(id string, s WatchlistSeed, now int64) *store.Watchlist {
	return &store.Watchlist{
		ID:         id,
		DeviceID:   s.DeviceID,
		CaseNumber: s.CaseNumber,
		Settings: store.NotificationSettings{
			EarlyWarning: s.EarlyWarning,
			Approaching:  s.Approaching,
			InSession:    s.InSession,
			Completed:    s.Completed,
		},
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

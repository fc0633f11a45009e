package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrEmptyPath is returned when Load or Save is called without a path.
var ErrEmptyPath = errors.New("config path is empty")

// FeedConfig describes the remote spreadsheet-backed event feed.
type FeedConfig struct {
	// URL is the JSON endpoint returning an array of event records.
	URL string `yaml:"url" json:"url"`

	// Refresh is a cron-style schedule (e.g. "*/15 * * * *").
	Refresh string `yaml:"refresh" json:"refresh"`

	// TimeoutSeconds bounds a single fetch.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`

	// Calendars are extra ICS subscriptions merged under the spreadsheet
	// records (the spreadsheet wins when both name the same date).
	Calendars []CalendarSource `yaml:"calendars,omitempty" json:"calendars,omitempty"`

	// CacheDir keeps the last good body of each subscription.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`
}

// CalendarSource is one subscribed ICS calendar.
type CalendarSource struct {
	ID  string `yaml:"id" json:"id"`
	URL string `yaml:"url" json:"url"`
	// Type applies to entries whose CATEGORIES do not name a known type
	// (e.g. "closed" for a holiday calendar).
	Type string `yaml:"type" json:"type"`
}

// ChatConfig controls the menu concierge relay.
type ChatConfig struct {
	Enabled        bool   `yaml:"enabled" json:"enabled"`
	Model          string `yaml:"model" json:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	// Persona is sent as the system instruction with every question.
	Persona string `yaml:"persona" json:"persona"`
	// Greeting seeds every new transcript.
	Greeting    string `yaml:"greeting" json:"greeting"`
	MaxSessions int    `yaml:"max_sessions" json:"max_sessions"`

	// APIKey is never read from or written to YAML; it comes from the
	// environment (GEMINI_API_KEY, then API_KEY).
	APIKey string `yaml:"-" json:"-"`
}

// CaptureConfig holds defaults for the preview screenshot.
type CaptureConfig struct {
	URL    string `yaml:"url" json:"url"`
	Output string `yaml:"output" json:"output"`
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for admin endpoints.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the site.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone used to pick "this month" and for the ICS export.
	Timezone string `yaml:"timezone" json:"timezone"`

	LogLevel  string `yaml:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" json:"log_format"`

	// SiteURL is the public base URL, linked from exported calendar events.
	SiteURL string `yaml:"site_url" json:"site_url"`

	// ImagesDir holds the photos served under /images/.
	ImagesDir string `yaml:"images_dir" json:"images_dir"`

	Feed    FeedConfig    `yaml:"feed" json:"feed"`
	Chat    ChatConfig    `yaml:"chat" json:"chat"`
	Capture CaptureConfig `yaml:"capture" json:"capture"`

	// BasicAuth, if non-nil, protects /api/refresh.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen   = "127.0.0.1:8080"
	defaultTimezone = "Asia/Tokyo"
	defaultRefresh  = "*/15 * * * *"
	defaultModel    = "gemini-2.5-flash"

	DefaultGreeting = "こんにちは。アゲハ食堂コンシェルジュです。メニューやアクセスについてお気軽にお尋ねください。"

	DefaultPersona = `You are a polite, knowledgeable restaurant concierge for "おばんざいアゲハ食堂" (Obanzai Ageha Shokudo) on Innoshima, Hiroshima, Japan.

About the restaurant:
- Concept: Seasonal obanzai small plates that are kind to the body, made with the island's produce.
- Menu: Ageha kobachi set meal 1,650 yen; yellow pumpkin pudding with original logo sticker 800 yen; Brazil coffee 440 yen; cycling drinks (green smoothie, lemon soda, banana shake).
- Location: 1F, 1896-17 Habu-cho, Innoshima, Onomichi City, Hiroshima 722-2323. About 25 minutes by bus from JR Onomichi Station, 10-15 minutes by car from the Innoshima-kita IC. Cyclists on the Shimanami Kaido can ride straight in.
- Hours: Mon-Thu 8:00-17:00, Fri-Sat 8:00-21:00.
- Closed: Sundays. Private bookings and events may change the schedule; see the calendar on the site.
- Phone: 070-8342-8452. Table reservations are accepted.

Your goal is to answer questions about the menu, concept, or access.
Keep answers concise (under 200 characters if possible) and warm, matching the calm tone of the website.
If asked about specific daily menus, explain that the menu changes with the seasons and suggest they visit to see the freshest ingredients.`
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:    defaultListen,
		Timezone:  defaultTimezone,
		LogLevel:  "info",
		LogFormat: "console",
		ImagesDir: "./images",
		Feed: FeedConfig{
			URL:            "",
			Refresh:        defaultRefresh,
			TimeoutSeconds: 15,
			CacheDir:       "./var/ics-cache",
		},
		Chat: ChatConfig{
			Enabled:        true,
			Model:          defaultModel,
			TimeoutSeconds: 30,
			Persona:        DefaultPersona,
			Greeting:       DefaultGreeting,
			MaxSessions:    1000,
		},
		Capture: CaptureConfig{
			URL:    "http://" + defaultListen + "/",
			Output: "./cache/preview.png",
			Width:  1200,
			Height: 630,
		},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	switch c.LogLevel {
	case "debug", "info", "error":
	default:
		c.LogLevel = def.LogLevel
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		c.LogFormat = def.LogFormat
	}

	if c.ImagesDir == "" {
		c.ImagesDir = def.ImagesDir
	}

	if c.Feed.Refresh == "" {
		c.Feed.Refresh = def.Feed.Refresh
	}
	if c.Feed.TimeoutSeconds <= 0 {
		c.Feed.TimeoutSeconds = def.Feed.TimeoutSeconds
	}
	if c.Feed.CacheDir == "" {
		c.Feed.CacheDir = def.Feed.CacheDir
	}
	sources := c.Feed.Calendars[:0]
	for i, src := range c.Feed.Calendars {
		if src.URL == "" {
			continue
		}
		if src.ID == "" {
			src.ID = fmt.Sprintf("calendar-%d", i+1)
		}
		sources = append(sources, src)
	}
	c.Feed.Calendars = sources

	if c.Chat.Model == "" {
		c.Chat.Model = def.Chat.Model
	}
	if c.Chat.TimeoutSeconds <= 0 {
		c.Chat.TimeoutSeconds = def.Chat.TimeoutSeconds
	}
	if c.Chat.Persona == "" {
		c.Chat.Persona = def.Chat.Persona
	}
	if c.Chat.Greeting == "" {
		c.Chat.Greeting = def.Chat.Greeting
	}
	if c.Chat.MaxSessions <= 0 {
		c.Chat.MaxSessions = def.Chat.MaxSessions
	}

	if c.Capture.URL == "" {
		c.Capture.URL = "http://" + c.Listen + "/"
	}
	if c.Capture.Output == "" {
		c.Capture.Output = def.Capture.Output
	}
	if c.Capture.Width <= 0 {
		c.Capture.Width = def.Capture.Width
	}
	if c.Capture.Height <= 0 {
		c.Capture.Height = def.Capture.Height
	}

	if c.BasicAuth != nil && (c.BasicAuth.Username == "" || c.BasicAuth.Password == "") {
		c.BasicAuth = nil
	}
}

// FeedTimeout returns the fetch timeout as a duration.
func (c *Config) FeedTimeout() time.Duration {
	return time.Duration(c.Feed.TimeoutSeconds) * time.Second
}

// ChatTimeout returns the per-question timeout as a duration.
func (c *Config) ChatTimeout() time.Duration {
	return time.Duration(c.Chat.TimeoutSeconds) * time.Second
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms and returned.
//   - Otherwise the YAML is read and normalized.
//   - In both cases the chat credential is taken from the environment,
//     after loading a .env file next to the working directory if present.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	cfg, err := load(path)
	if cfg != nil {
		cfg.Chat.APIKey = apiKeyFromEnv()
	}
	return cfg, err
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	return parse(data)
}

// Reload reads an existing config file. Unlike Load it never writes a
// default; a missing file is reported as fs.ErrNotExist.
func Reload(path string) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	cfg.Chat.APIKey = apiKeyFromEnv()
	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

func apiKeyFromEnv() string {
	_ = godotenv.Load()

	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		return v
	}
	return os.Getenv("API_KEY")
}

// Save writes the configuration atomically (temp file + rename) with 0600
// permissions, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return ErrEmptyPath
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".agehasite-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

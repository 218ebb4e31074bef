package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// AppConfig holds file and environment driven configuration values.
type AppConfig struct {
	AppPort        string
	SiteTitle      string
	AllowedOrigins []string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Static assets and templates
	StaticDir string
	// External blog/memorial API
	APIBaseURL    string
	APITimeoutSec int
	// Blog pages
	PostExcerptLen    int
	PostContentFormat string // "plain" or "markdown"
	// Guestbook
	MessageLimit       int
	RefreshIntervalSec int
	AuthorNameMaxLen   int
	RateLimitPerMinute int
	// Memorial hall cosmetics
	MaxCandles     int
	SilenceSeconds int
	PetalCount     int
	ToastSeconds   int
	PhotoManifest  string
	MusicURL       string
	// Visitor sessions
	SessionCookie   string
	SessionTTLHours int
	// Redis for visitor sessions; empty host means in-memory only
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// RefreshInterval is the guestbook auto refresh period.
func (c AppConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSec) * time.Second
}

// APITimeout bounds every call to the external API.
func (c AppConfig) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutSec) * time.Second
}

// SilenceDuration is how long the moment-of-silence control stays disabled.
func (c AppConfig) SilenceDuration() time.Duration {
	return time.Duration(c.SilenceSeconds) * time.Second
}

// SessionTTL is the idle lifetime of a visitor session.
func (c AppConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

var (
	cfg      AppConfig
	loadOnce sync.Once
)

// Load loads the application configuration on first use and caches it.
func Load() AppConfig {
	loadOnce.Do(func() {
		path := getEnv("CONFIG_PATH", filepath.Join("config", "config.json"))
		c, err := LoadFrom(path)
		if err != nil {
			log.Fatalf("invalid config file %s: %v", path, err)
		}
		cfg = c
	})
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	return Load()
}

// LoadFrom builds a configuration from the given JSON file.
// Precedence: file -> defaults -> environment variable overrides.
func LoadFrom(path string) (AppConfig, error) {
	var c AppConfig
	if err := loadJSONConfig(path, &c); err != nil {
		return AppConfig{}, err
	}
	applyDefaults(&c)
	applyEnvOverrides(&c)
	return c, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads JSON file into out if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if v, ok := m[key]; ok {
			switch t := v.(type) {
			case float64:
				return int(t)
			case int:
				return t
			}
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		if v, ok := m[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
		return false
	}
	getStringSlice := func(m map[string]any, key string) []string {
		if v, ok := m[key]; ok {
			if arr, ok := v.([]any); ok {
				res := make([]string, 0, len(arr))
				for _, it := range arr {
					if s, ok := it.(string); ok {
						res = append(res, s)
					}
				}
				return res
			}
		}
		return nil
	}

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		out.SiteTitle = getString(app, "SiteTitle")
		out.StaticDir = getString(app, "StaticDir")
		if list := getStringSlice(app, "AllowedOrigins"); len(list) > 0 {
			out.AllowedOrigins = list
		}
		out.SessionCookie = getString(app, "SessionCookie")
		out.SessionTTLHours = getInt(app, "SessionTTLHours")
	}

	if g, ok := raw["gin"].(map[string]any); ok {
		out.GinMode = getString(g, "Mode")
		out.GinPath = getString(g, "LogPath")
	}

	if api, ok := raw["api"].(map[string]any); ok {
		out.APIBaseURL = getString(api, "BaseURL")
		out.APITimeoutSec = getInt(api, "TimeoutSec")
	}

	if b, ok := raw["blog"].(map[string]any); ok {
		out.PostExcerptLen = getInt(b, "ExcerptLen")
		out.PostContentFormat = getString(b, "ContentFormat")
	}

	if gb, ok := raw["guestbook"].(map[string]any); ok {
		out.MessageLimit = getInt(gb, "MessageLimit")
		out.RefreshIntervalSec = getInt(gb, "RefreshIntervalSec")
		out.AuthorNameMaxLen = getInt(gb, "AuthorNameMaxLen")
		out.RateLimitPerMinute = getInt(gb, "RateLimitPerMinute")
	}

	if m, ok := raw["memorial"].(map[string]any); ok {
		out.MaxCandles = getInt(m, "MaxCandles")
		out.SilenceSeconds = getInt(m, "SilenceSeconds")
		out.PetalCount = getInt(m, "PetalCount")
		out.ToastSeconds = getInt(m, "ToastSeconds")
		out.PhotoManifest = getString(m, "PhotoManifest")
		out.MusicURL = getString(m, "MusicURL")
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		out.RedisHost = getString(rds, "Host")
		out.RedisPort = getInt(rds, "Port")
		out.RedisDB = getInt(rds, "DB")
		out.RedisPassword = getString(rds, "Password")
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		out.LogLevel = getString(lg, "Level")
		out.LogPath = getString(lg, "Path")
		out.LogMaxSizeMB = getInt(lg, "MaxSizeMB")
		out.LogMaxBackups = getInt(lg, "MaxBackups")
		out.LogMaxAgeDays = getInt(lg, "MaxAgeDays")
		out.LogCompress = getBool(lg, "Compress")
	}

	// flat keys for the handful of settings people override most
	if v, ok := raw["AppPort"].(string); ok && out.AppPort == "" {
		out.AppPort = v
	}
	if v, ok := raw["APIBaseURL"].(string); ok && out.APIBaseURL == "" {
		out.APIBaseURL = v
	}
	if v, ok := raw["LogLevel"].(string); ok && out.LogLevel == "" {
		out.LogLevel = v
	}
	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.SiteTitle == "" {
		c.SiteTitle = "我的个人博客"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.StaticDir == "" {
		c.StaticDir = "./static"
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = "http://127.0.0.1:8000"
	}
	if c.APITimeoutSec == 0 {
		c.APITimeoutSec = 8
	}
	if c.PostExcerptLen == 0 {
		c.PostExcerptLen = 100
	}
	if c.PostContentFormat == "" {
		c.PostContentFormat = "plain"
	}
	if c.MessageLimit == 0 {
		c.MessageLimit = 20
	}
	if c.RefreshIntervalSec == 0 {
		c.RefreshIntervalSec = 60
	}
	if c.AuthorNameMaxLen == 0 {
		c.AuthorNameMaxLen = 100
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 30
	}
	if c.MaxCandles == 0 {
		c.MaxCandles = 10
	}
	if c.SilenceSeconds == 0 {
		c.SilenceSeconds = 30
	}
	if c.PetalCount == 0 {
		c.PetalCount = 15
	}
	if c.ToastSeconds == 0 {
		c.ToastSeconds = 3
	}
	if c.PhotoManifest == "" {
		c.PhotoManifest = filepath.Join("config", "photos.yaml")
	}
	if c.SessionCookie == "" {
		c.SessionCookie = "memorial_sid"
	}
	if c.SessionTTLHours == 0 {
		c.SessionTTLHours = 24
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	if v := getEnv("APP_PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("SITE_TITLE", ""); v != "" {
		c.SiteTitle = v
	}
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = readListEnv("CORS_ALLOWED_ORIGINS", c.AllowedOrigins)
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("GIN_PATH", ""); v != "" {
		c.GinPath = v
	}
	if v := getEnv("STATIC_DIR", ""); v != "" {
		c.StaticDir = v
	}
	if v := getEnv("API_BASE_URL", ""); v != "" {
		c.APIBaseURL = v
	}
	if v := getEnv("API_TIMEOUT_SEC", ""); v != "" {
		c.APITimeoutSec = mustParseInt(v)
	}
	if v := getEnv("POST_EXCERPT_LEN", ""); v != "" {
		c.PostExcerptLen = mustParseInt(v)
	}
	if v := getEnv("POST_CONTENT_FORMAT", ""); v != "" {
		c.PostContentFormat = strings.ToLower(v)
	}
	if v := getEnv("MESSAGE_LIMIT", ""); v != "" {
		c.MessageLimit = mustParseInt(v)
	}
	if v := getEnv("REFRESH_INTERVAL_SEC", ""); v != "" {
		c.RefreshIntervalSec = mustParseInt(v)
	}
	if v := getEnv("AUTHOR_NAME_MAX_LEN", ""); v != "" {
		c.AuthorNameMaxLen = mustParseInt(v)
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		c.RateLimitPerMinute = mustParseInt(v)
	}
	if v := getEnv("MAX_CANDLES", ""); v != "" {
		c.MaxCandles = mustParseInt(v)
	}
	if v := getEnv("SILENCE_SECONDS", ""); v != "" {
		c.SilenceSeconds = mustParseInt(v)
	}
	if v := getEnv("PETAL_COUNT", ""); v != "" {
		c.PetalCount = mustParseInt(v)
	}
	if v := getEnv("TOAST_SECONDS", ""); v != "" {
		c.ToastSeconds = mustParseInt(v)
	}
	if v := getEnv("PHOTO_MANIFEST", ""); v != "" {
		c.PhotoManifest = v
	}
	if v := getEnv("MEMORIAL_MUSIC_URL", ""); v != "" {
		c.MusicURL = v
	}
	if v := getEnv("SESSION_COOKIE", ""); v != "" {
		c.SessionCookie = v
	}
	if v := getEnv("SESSION_TTL_HOURS", ""); v != "" {
		c.SessionTTLHours = mustParseInt(v)
	}
	if v := getEnv("REDIS_HOST", ""); v != "" {
		c.RedisHost = v
	}
	if v := getEnv("REDIS_PORT", ""); v != "" {
		c.RedisPort = mustParseInt(v)
	}
	if v := getEnv("REDIS_DB", ""); v != "" {
		c.RedisDB = mustParseInt(v)
	}
	if v := getEnv("REDIS_PASSWORD", ""); v != "" {
		c.RedisPassword = v
	}
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	if v := getEnv("LOG_MAX_SIZE_MB", ""); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_BACKUPS", ""); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_AGE_DAYS", ""); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = v == "true"
	}
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func readListEnv(key string, defaults []string) []string {
	if raw := os.Getenv(key); raw != "" {
		return splitAndTrim(raw)
	}
	return defaults
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

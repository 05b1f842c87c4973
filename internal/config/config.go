package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/snapetech/clipstock/internal/aspect"
)

// Config holds provider, cache and acquisition settings.
// Load from env (after LoadEnvFile), then optionally ApplyFile for a YAML overlay.
type Config struct {
	// Provider
	Provider        string  `yaml:"provider"` // pexels | pixabay
	PexelsAPIKey    string  `yaml:"pexels_api_key"`
	PixabayAPIKey   string  `yaml:"pixabay_api_key"`
	ProviderBaseURL string  `yaml:"provider_base_url"` // override catalog host (testing, mirrors)
	SearchRPS       float64 `yaml:"search_rps"`        // catalog request throttle; 0 = unthrottled

	// HTTP
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	ProxyURL    string        `yaml:"proxy_url"`
	Retries     int           `yaml:"retries"`

	// Paths
	CacheDir        string `yaml:"cache_dir"`
	LedgerPath      string `yaml:"ledger_path"`      // "" = no download history
	MetricsTextfile string `yaml:"metrics_textfile"` // "" = no metrics dump

	// Acquisition
	Aspect           string  `yaml:"aspect"`
	MinClipDuration  float64 `yaml:"min_clip_duration"`
	MaxClipDuration  float64 `yaml:"max_clip_duration"`
	UseLocalLibrary  bool    `yaml:"use_local_library"`
	LocalLibraryPath string  `yaml:"local_library_path"`
}

// Load reads config from environment. Call LoadEnvFile(".env") before Load() to use a .env file.
func Load() *Config {
	c := &Config{
		Provider:         strings.ToLower(getEnv("CLIPSTOCK_PROVIDER", "pexels")),
		PexelsAPIKey:     os.Getenv("CLIPSTOCK_PEXELS_API_KEY"),
		PixabayAPIKey:    os.Getenv("CLIPSTOCK_PIXABAY_API_KEY"),
		ProviderBaseURL:  os.Getenv("CLIPSTOCK_PROVIDER_BASE_URL"),
		SearchRPS:        getEnvFloat("CLIPSTOCK_SEARCH_RPS", 1),
		HTTPTimeout:      getEnvDuration("CLIPSTOCK_HTTP_TIMEOUT", 5*time.Minute),
		ProxyURL:         os.Getenv("CLIPSTOCK_PROXY_URL"),
		Retries:          getEnvInt("CLIPSTOCK_RETRIES", 1),
		CacheDir:         getEnv("CLIPSTOCK_CACHE_DIR", defaultCacheDir()),
		LedgerPath:       os.Getenv("CLIPSTOCK_LEDGER_PATH"),
		MetricsTextfile:  os.Getenv("CLIPSTOCK_METRICS_TEXTFILE"),
		Aspect:           getEnv("CLIPSTOCK_ASPECT", "portrait"),
		MinClipDuration:  getEnvFloat("CLIPSTOCK_MIN_CLIP_DURATION", 0),
		MaxClipDuration:  getEnvFloat("CLIPSTOCK_MAX_CLIP_DURATION", 5),
		UseLocalLibrary:  getEnvBool("CLIPSTOCK_USE_LOCAL_LIBRARY", false),
		LocalLibraryPath: os.Getenv("CLIPSTOCK_LOCAL_LIBRARY_PATH"),
	}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.MaxClipDuration <= 0 {
		c.MaxClipDuration = 5
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 5 * time.Minute
	}
	if c.Retries < 0 {
		c.Retries = 0
	}
}

// ApplyFile overlays settings from a YAML file. Fields absent from the file keep their values.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	c.Provider = strings.ToLower(c.Provider)
	c.applyDefaults()
	return nil
}

// APIKey returns the credential for the configured provider.
func (c *Config) APIKey() string {
	if c.Provider == "pixabay" {
		return c.PixabayAPIKey
	}
	return c.PexelsAPIKey
}

// AspectValue parses Aspect.
func (c *Config) AspectValue() (aspect.Aspect, error) {
	return aspect.Parse(c.Aspect)
}

// Validate reports the first setting that would make a remote acquisition fail outright.
// needRemote=false skips credential checks (local library or offline runs).
func (c *Config) Validate(needRemote bool) error {
	switch c.Provider {
	case "pexels", "pixabay":
	default:
		return fmt.Errorf("config: unknown provider %q", c.Provider)
	}
	if _, err := c.AspectValue(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.CacheDir == "" {
		return fmt.Errorf("config: CLIPSTOCK_CACHE_DIR is empty")
	}
	if c.MinClipDuration < 0 {
		return fmt.Errorf("config: negative min clip duration")
	}
	if needRemote && c.APIKey() == "" {
		return fmt.Errorf("config: no API key for provider %s (set CLIPSTOCK_%s_API_KEY)", c.Provider, strings.ToUpper(c.Provider))
	}
	return nil
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "clipstock", "videos")
	}
	return filepath.Join(os.TempDir(), "clipstock", "videos")
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return defaultVal
		}
		return f
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/searchgate/internal/domain/weighting"
)

// Config holds the searchgate service configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Storage     StorageConfig     `yaml:"storage"`
	Comments    CommentsConfig    `yaml:"comments"`
	Site        SiteConfig        `yaml:"site"`
	Auth        AuthConfig        `yaml:"auth"`
	CORS        CORSConfig        `yaml:"cors"`
	Integration IntegrationConfig `yaml:"integration"`
	Indexables  IndexablesConfig  `yaml:"indexables"`
	Features    map[string]bool   `yaml:"features"` // default on/off until toggled
	Weighting   WeightingConfig   `yaml:"weighting"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds the Redis connection used for settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	Standalone       bool     `yaml:"standalone"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// CommentsConfig holds the comment store and index settings.
type CommentsConfig struct {
	DBPath    string  `yaml:"db_path"`    // SQLite file, ":memory:" for tests
	IndexPath string  `yaml:"index_path"` // bleve directory, empty = in-memory
	RateLimit float64 `yaml:"rate_limit"` // requests per second per client, 0 = off
	Burst     int     `yaml:"burst"`
}

// SiteConfig describes the content site.
type SiteConfig struct {
	URL string `yaml:"url"`
}

// CORSConfig holds allowed origins of the admin editor.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// IntegrationConfig holds host-level integration overrides.
type IntegrationConfig struct {
	Admin bool `yaml:"admin"` // integrate admin-area queries
	AJAX  bool `yaml:"ajax"`  // integrate AJAX queries (implies admin)
}

// IndexablesConfig lists indexed sub-types.
type IndexablesConfig struct {
	PostTypes    []string `yaml:"post_types"`
	CommentTypes []string `yaml:"comment_types"`
}

// WeightingConfig describes weightable fields per post type.
type WeightingConfig struct {
	MetaMode  string                    `yaml:"meta_mode"`
	PostTypes map[string]PostTypeConfig `yaml:"post_types"`
}

// PostTypeConfig lists the weightable taxonomies and meta keys of a post type.
type PostTypeConfig struct {
	Label      string   `yaml:"label"`
	Taxonomies []string `yaml:"taxonomies"`
	Meta       []string `yaml:"meta"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, substituting environment variables,
// then applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "ep:"
	}
	if c.Comments.DBPath == "" {
		c.Comments.DBPath = "data/comments.db"
	}
	if c.Comments.RateLimit > 0 && c.Comments.Burst <= 0 {
		c.Comments.Burst = 1
	}
	if len(c.Indexables.PostTypes) == 0 {
		c.Indexables.PostTypes = []string{"post", "page"}
	}
	if len(c.Indexables.CommentTypes) == 0 {
		c.Indexables.CommentTypes = []string{"comment"}
	}
	if c.Weighting.MetaMode == "" {
		c.Weighting.MetaMode = string(weighting.MetaModeAuto)
	}
	if len(c.Weighting.PostTypes) == 0 {
		c.Weighting.PostTypes = make(map[string]PostTypeConfig, len(c.Indexables.PostTypes))
		for _, pt := range c.Indexables.PostTypes {
			c.Weighting.PostTypes[pt] = PostTypeConfig{}
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Site.URL == "" {
		return fmt.Errorf("site.url is required")
	}
	if u, err := url.Parse(c.Site.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("site.url must be an absolute URL, got %q", c.Site.URL)
	}
	if c.Comments.RateLimit < 0 {
		return fmt.Errorf("comments.rate_limit must not be negative, got %v", c.Comments.RateLimit)
	}
	if _, err := weighting.ParseMetaMode(c.Weighting.MetaMode); err != nil {
		return fmt.Errorf("weighting.meta_mode: %w", err)
	}
	for pt := range c.Weighting.PostTypes {
		if pt == "" {
			return fmt.Errorf("weighting.post_types: empty post type")
		}
	}
	return nil
}

// Catalog builds the weightable field catalog.
func (w WeightingConfig) Catalog() weighting.Catalog {
	cat := make(weighting.Catalog, len(w.PostTypes))
	for pt, ptc := range w.PostTypes {
		label := ptc.Label
		if label == "" {
			label = pt
		}
		cat[pt] = weighting.DefaultPostType(label, ptc.Taxonomies...).WithMeta(ptc.Meta...)
	}
	return cat
}

// EnabledFeatures returns the slugs switched on by default, sorted.
func (c *Config) EnabledFeatures() []string {
	out := make([]string, 0, len(c.Features))
	for slug, on := range c.Features {
		if on {
			out = append(out, slug)
		}
	}
	sort.Strings(out)
	return out
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

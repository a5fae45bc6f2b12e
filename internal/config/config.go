package config

import (
	stderrors "errors"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/isomorph/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "isomorph.yaml"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultUpstream is the API the demo application reads from.
	DefaultUpstream = "https://jsonplaceholder.typicode.com"

	// DefaultStaticDir is the default directory for static assets.
	DefaultStaticDir = "public"
)

// Config represents the complete isomorph.yaml configuration.
type Config struct {
	// Name is the project name.
	Name string `yaml:"name,omitempty"`

	// Server contains listener settings.
	Server ServerConfig `yaml:"server"`

	// Upstream is the base URL of the data API. Loaders reach it directly;
	// browsers reach it through /api.
	Upstream string `yaml:"upstream"`

	// Document contains the served HTML shell settings.
	Document DocumentConfig `yaml:"document"`

	// Prefetch contains data prefetch settings.
	Prefetch PrefetchConfig `yaml:"prefetch"`

	// Static contains static file serving configuration.
	Static StaticConfig `yaml:"static"`

	// Cache contains the upstream response cache settings.
	Cache CacheConfig `yaml:"cache"`

	// Log contains logging settings.
	Log LogConfig `yaml:"log"`

	// Dev contains development settings.
	Dev DevConfig `yaml:"dev"`

	configPath string
}

// ServerConfig contains listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DocumentConfig contains the HTML shell settings.
type DocumentConfig struct {
	Title        string   `yaml:"title,omitempty"`
	ClientScript string   `yaml:"clientScript,omitempty"`
	StateVar     string   `yaml:"stateVar,omitempty"`
	MountID      string   `yaml:"mountID,omitempty"`
	StyleSheets  []string `yaml:"styleSheets,omitempty"`

	// Manifest is a bundler manifest.json, relative to the project dir.
	Manifest string `yaml:"manifest,omitempty"`
}

// PrefetchConfig contains data prefetch settings.
type PrefetchConfig struct {
	// Timeout bounds the whole prefetch phase ("5s"). Empty means no bound.
	Timeout string `yaml:"timeout,omitempty"`
}

// StaticConfig contains static file serving configuration.
type StaticConfig struct {
	// Dir is the directory containing static files.
	Dir string `yaml:"dir"`

	// Prefix is the URL prefix for static files.
	Prefix string `yaml:"prefix"`

	// S3Bucket serves assets from a bucket instead of Dir when set.
	S3Bucket string `yaml:"s3Bucket,omitempty"`

	// S3Prefix is prepended to object keys.
	S3Prefix string `yaml:"s3Prefix,omitempty"`

	// S3Region is the bucket region.
	S3Region string `yaml:"s3Region,omitempty"`

	// S3Endpoint overrides the S3 endpoint (MinIO, LocalStack).
	S3Endpoint string `yaml:"s3Endpoint,omitempty"`
}

// CacheConfig contains the upstream response cache settings.
type CacheConfig struct {
	// RedisURL enables the cache when set.
	RedisURL string `yaml:"redisURL,omitempty"`

	// TTL is how long a cached response is served ("30s").
	TTL string `yaml:"ttl,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// DevConfig contains development settings.
type DevConfig struct {
	// Reload enables the live reload endpoint and file watcher.
	Reload bool `yaml:"reload"`

	// Watch contains paths to watch for changes.
	Watch []string `yaml:"watch,omitempty"`

	// Ignore contains patterns to ignore during watch.
	Ignore []string `yaml:"ignore,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Upstream: DefaultUpstream,
		Static: StaticConfig{
			Dir:    DefaultStaticDir,
			Prefix: "/",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Dev: DevConfig{
			Watch: []string{"app", DefaultStaticDir},
		},
	}
}

// Load reads isomorph.yaml from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path))
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		e := errors.New("E120").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check indentation and that every mapping key ends with a colon")
		if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
			line, _ := strconv.Atoi(m[1])
			e.WithLocation(path, line, 0)
		}
		return nil, e
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// LoadOrDefault loads isomorph.yaml from dir, returning defaults when the
// file does not exist.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := Load(dir)
	var e *errors.Error
	if stderrors.As(err, &e) && e.Code == "E141" {
		return New(), nil
	}
	return cfg, err
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.New("E120").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("E120").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Upstream == "" {
		c.Upstream = DefaultUpstream
	}
	if c.Static.Dir == "" {
		c.Static.Dir = DefaultStaticDir
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = "/"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// LoadEnv loads a .env file into the process environment. A missing file is
// not an error. Variables already set are left alone.
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.New("E120").WithDetail("Failed to parse " + path).Wrap(err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("ISOMORPH_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("E121").WithDetail("ISOMORPH_PORT must be a number, got " + strconv.Quote(v))
		}
		c.Server.Port = port
	}
	if v := os.Getenv("ISOMORPH_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("ISOMORPH_UPSTREAM"); v != "" {
		c.Upstream = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv("ISOMORPH_S3_BUCKET"); v != "" {
		c.Static.S3Bucket = v
	}
	if v := os.Getenv("ISOMORPH_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E121").WithDetail("server.port must be between 0 and 65535")
	}
	if u, err := url.Parse(c.Upstream); err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("E121").WithDetail("upstream must be an absolute URL, got " + strconv.Quote(c.Upstream))
	}
	if _, err := c.PrefetchTimeout(); err != nil {
		return errors.New("E121").WithDetail("prefetch.timeout: " + err.Error())
	}
	if _, err := c.CacheTTL(); err != nil {
		return errors.New("E121").WithDetail("cache.ttl: " + err.Error())
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("E121").WithDetail("log.level must be debug, info, warn or error")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E121").WithDetail("log.format must be text or json")
	}
	return nil
}

// Address returns the listen address.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// PrefetchTimeout returns the parsed prefetch timeout; zero means none.
func (c *Config) PrefetchTimeout() (time.Duration, error) {
	return parseDuration(c.Prefetch.Timeout)
}

// CacheTTL returns the parsed cache TTL; zero means the client default.
func (c *Config) CacheTTL() (time.Duration, error) {
	return parseDuration(c.Cache.TTL)
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, stderrors.New("must not be negative")
	}
	return d, nil
}

// StaticPath returns the absolute path to the static directory.
func (c *Config) StaticPath() string {
	if filepath.IsAbs(c.Static.Dir) {
		return c.Static.Dir
	}
	return filepath.Join(c.Dir(), c.Static.Dir)
}

// ManifestPath returns the document manifest path resolved against the
// project dir, or "" when none is configured.
func (c *Config) ManifestPath() string {
	if c.Document.Manifest == "" || filepath.IsAbs(c.Document.Manifest) {
		return c.Document.Manifest
	}
	return filepath.Join(c.Dir(), c.Document.Manifest)
}

// WatchPaths returns the dev watch paths resolved against the project dir.
func (c *Config) WatchPaths() []string {
	out := make([]string, 0, len(c.Dev.Watch))
	for _, p := range c.Dev.Watch {
		if !filepath.IsAbs(p) {
			p = filepath.Join(c.Dir(), p)
		}
		out = append(out, p)
	}
	return out
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up from startDir to the directory holding
// isomorph.yaml.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		if Exists(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E141").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// Package config loads designtree settings from a TOML or YAML file and the
// environment.
//
// Precedence, lowest first: built-in defaults, the config file, DESIGNTREE_*
// environment variables, then command-line flags (applied by the CLI).
// Secrets (the Gemini API key and the HTTP classifier token) are read from
// the environment only and never from files.
//
// A minimal file:
//
//	[classifier]
//	provider = "http"
//	endpoint = "https://classifier.internal/v1/classify"
//	threshold = "medium"
//
//	[hierarchy]
//	match_mode = "name"
//	[hierarchy.tiers]
//	"component:button" = "atom"
//
//	[cache]
//	backend = "redis"
//	[cache.redis]
//	addr = "localhost:6379"
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/designtree/pkg/cache"
	apperrors "github.com/matzehuels/designtree/pkg/errors"
	"github.com/matzehuels/designtree/pkg/pipeline"
)

// FileName is the config file looked up in the working directory.
const FileName = "designtree.toml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DESIGNTREE_"

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the complete designtree configuration.
type Config struct {
	Classifier ClassifierConfig `toml:"classifier" yaml:"classifier"`
	Hierarchy  HierarchyConfig  `toml:"hierarchy" yaml:"hierarchy"`
	Cache      CacheConfig      `toml:"cache" yaml:"cache"`
	Server     ServerConfig     `toml:"server" yaml:"server"`
}

// ClassifierConfig configures the type classifier and its external fallback.
type ClassifierConfig struct {
	Provider    string `toml:"provider" yaml:"provider"` // none | http | gemini
	Endpoint    string `toml:"endpoint" yaml:"endpoint"`
	Model       string `toml:"model" yaml:"model"`
	Threshold   string `toml:"threshold" yaml:"threshold"`
	Concurrency int    `toml:"concurrency" yaml:"concurrency"`
	CacheSize   int    `toml:"cache_size" yaml:"cache_size"`

	APIKey string `toml:"-" yaml:"-"`
	Token  string `toml:"-" yaml:"-"`
}

// HierarchyConfig configures the atomic hierarchy resolver.
type HierarchyConfig struct {
	MatchMode string            `toml:"match_mode" yaml:"match_mode"` // name | provenance
	Tiers     map[string]string `toml:"tiers" yaml:"tiers"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend string      `toml:"backend" yaml:"backend"` // none | file | sqlite | redis | mongo
	Dir     string      `toml:"dir" yaml:"dir"`
	Path    string      `toml:"path" yaml:"path"`
	Redis   RedisConfig `toml:"redis" yaml:"redis"`
	Mongo   MongoConfig `toml:"mongo" yaml:"mongo"`
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr" yaml:"addr"`
	DB       int    `toml:"db" yaml:"db"`
	Prefix   string `toml:"prefix" yaml:"prefix"`
	Password string `toml:"-" yaml:"-"`
}

// MongoConfig configures the MongoDB backend.
type MongoConfig struct {
	URI        string `toml:"uri" yaml:"uri"`
	Database   string `toml:"database" yaml:"database"`
	Collection string `toml:"collection" yaml:"collection"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string   `toml:"addr" yaml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout" yaml:"write_timeout"`
	MaxBodyBytes int64    `toml:"max_body_bytes" yaml:"max_body_bytes"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Classifier: ClassifierConfig{
			Provider:    pipeline.ProviderNone,
			Threshold:   pipeline.DefaultThreshold,
			Concurrency: pipeline.DefaultConcurrency,
			CacheSize:   pipeline.DefaultClassifierCacheSize,
		},
		Hierarchy: HierarchyConfig{MatchMode: pipeline.DefaultMatchMode},
		Cache: CacheConfig{
			Backend: cache.BackendFile,
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "designtree:"},
			Mongo:   MongoConfig{Database: "designtree", Collection: "cache"},
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration(30 * time.Second),
			WriteTimeout: Duration(2 * time.Minute),
			MaxBodyBytes: 32 << 20,
		},
	}
}

// Load reads a config file on top of the defaults. The format follows the
// extension: .toml, .yaml or .yml. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "unsupported config format %q (use .toml, .yaml or .yml)", filepath.Ext(path))
	}
	return &cfg, nil
}

// Find returns the config file to use: $DESIGNTREE_CONFIG, then
// ./designtree.toml, then designtree/config.toml in the user config
// directory. It returns "" when none exists.
func Find() string {
	if p := os.Getenv(EnvPrefix + "CONFIG"); p != "" {
		return p
	}
	candidates := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "designtree", "config.toml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadDefault loads the file returned by [Find], or the defaults when there
// is none, and applies the environment.
func LoadDefault() (*Config, error) {
	cfg := Default()
	if p := Find(); p != "" {
		loaded, err := Load(p)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides settings from environment variables read through
// getenv. Empty variables are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := strings.TrimSpace(getenv(EnvPrefix + name)); v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v := strings.TrimSpace(getenv(EnvPrefix + name))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "%s%s", EnvPrefix, name)
		}
		*dst = n
		return nil
	}

	str("CLASSIFIER", &c.Classifier.Provider)
	str("CLASSIFIER_ENDPOINT", &c.Classifier.Endpoint)
	str("CLASSIFIER_MODEL", &c.Classifier.Model)
	str("CLASSIFIER_THRESHOLD", &c.Classifier.Threshold)
	str("CLASSIFIER_TOKEN", &c.Classifier.Token)
	if err := num("CLASSIFIER_CONCURRENCY", &c.Classifier.Concurrency); err != nil {
		return err
	}
	str("MATCH_MODE", &c.Hierarchy.MatchMode)
	str("CACHE", &c.Cache.Backend)
	str("CACHE_DIR", &c.Cache.Dir)
	str("REDIS_ADDR", &c.Cache.Redis.Addr)
	str("REDIS_PASSWORD", &c.Cache.Redis.Password)
	if err := num("REDIS_DB", &c.Cache.Redis.DB); err != nil {
		return err
	}
	str("MONGO_URI", &c.Cache.Mongo.URI)
	str("ADDR", &c.Server.Addr)

	for _, name := range []string{EnvPrefix + "GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			c.Classifier.APIKey = v
			break
		}
	}
	return nil
}

// Validate checks values that do not depend on the classifier credentials.
func (c *Config) Validate() error {
	if err := pipeline.ValidateProvider(c.Classifier.Provider); err != nil {
		return err
	}
	if _, err := pipeline.ValidateThreshold(c.Classifier.Threshold); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case "", cache.BackendNone, cache.BackendFile, cache.BackendSQLite, cache.BackendRedis, cache.BackendMongo:
	default:
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"invalid cache backend: %q (must be one of: none, file, sqlite, redis, mongo)", c.Cache.Backend)
	}
	opts := c.PipelineOptions()
	opts.SkipClassify = true
	if err := opts.ValidateForHierarchy(); err != nil {
		return err
	}
	return nil
}

// PipelineOptions converts the configuration to pipeline options.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Classifier:          c.Classifier.Provider,
		Endpoint:            c.Classifier.Endpoint,
		Model:               c.Classifier.Model,
		Threshold:           c.Classifier.Threshold,
		Concurrency:         c.Classifier.Concurrency,
		ClassifierCacheSize: c.Classifier.CacheSize,
		APIKey:              c.Classifier.APIKey,
		Token:               c.Classifier.Token,
		MatchMode:           c.Hierarchy.MatchMode,
		Tiers:               c.Hierarchy.Tiers,
	}
}

// CacheOptions converts the configuration to cache options.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Path:    c.Cache.Path,
		Redis: cache.RedisConfig{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
			Prefix:   c.Cache.Redis.Prefix,
		},
		Mongo: cache.MongoConfig{
			URI:        c.Cache.Mongo.URI,
			Database:   c.Cache.Mongo.Database,
			Collection: c.Cache.Mongo.Collection,
		},
	}
}

// String renders the configuration as TOML, without secrets.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return buf.String()
}

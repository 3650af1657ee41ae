package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/designtree/pkg/cache"
	apperrors "github.com/matzehuels/designtree/pkg/errors"
	"github.com/matzehuels/designtree/pkg/pipeline"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Classifier.Provider != pipeline.ProviderNone {
		t.Errorf("provider = %q", cfg.Classifier.Provider)
	}
	if cfg.Cache.Backend != cache.BackendFile {
		t.Errorf("backend = %q", cfg.Cache.Backend)
	}
	if time.Duration(cfg.Server.ReadTimeout) != 30*time.Second {
		t.Errorf("read timeout = %v", time.Duration(cfg.Server.ReadTimeout))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "designtree.toml", `
[classifier]
provider = "http"
endpoint = "https://classifier.example.com/v1"
threshold = "high"

[hierarchy]
match_mode = "provenance"
[hierarchy.tiers]
"component:button" = "atom"

[cache]
backend = "sqlite"
path = "/tmp/designtree.db"

[server]
addr = ":9090"
read_timeout = "5s"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Classifier.Provider != "http" || cfg.Classifier.Threshold != "high" {
		t.Errorf("classifier = %+v", cfg.Classifier)
	}
	if cfg.Classifier.Concurrency != pipeline.DefaultConcurrency {
		t.Errorf("concurrency default lost: %d", cfg.Classifier.Concurrency)
	}
	if cfg.Hierarchy.MatchMode != "provenance" || cfg.Hierarchy.Tiers["component:button"] != "atom" {
		t.Errorf("hierarchy = %+v", cfg.Hierarchy)
	}
	if cfg.Cache.Backend != cache.BackendSQLite || cfg.Cache.Path != "/tmp/designtree.db" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":9090" || time.Duration(cfg.Server.ReadTimeout) != 5*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "designtree.yaml", `
classifier:
  provider: gemini
  model: gemini-2.0-flash
hierarchy:
  tiers:
    Card: organism
cache:
  backend: redis
  redis:
    addr: redis:6379
    db: 2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Classifier.Provider != "gemini" || cfg.Classifier.Model != "gemini-2.0-flash" {
		t.Errorf("classifier = %+v", cfg.Classifier)
	}
	if cfg.Hierarchy.Tiers["Card"] != "organism" {
		t.Errorf("tiers = %v", cfg.Hierarchy.Tiers)
	}
	if cfg.Cache.Redis.Addr != "redis:6379" || cfg.Cache.Redis.DB != 2 {
		t.Errorf("redis = %+v", cfg.Cache.Redis)
	}
	if cfg.Cache.Redis.Prefix != "designtree:" {
		t.Errorf("redis prefix default lost: %q", cfg.Cache.Redis.Prefix)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
		code apperrors.Code
	}{
		{"unknown toml key", "c.toml", "[classifier]\nprovder = \"http\"\n", apperrors.ErrCodeInvalidConfig},
		{"unknown yaml key", "c.yaml", "cache:\n  backnd: none\n", apperrors.ErrCodeInvalidConfig},
		{"bad toml", "c.toml", "[classifier\n", apperrors.ErrCodeInvalidConfig},
		{"bad duration", "c.toml", "[server]\nread_timeout = \"soon\"\n", apperrors.ErrCodeInvalidConfig},
		{"unknown format", "c.json", "{}", apperrors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperrors.GetCode(err); got != tt.code {
				t.Errorf("code = %v, want %v (%v)", got, tt.code, err)
			}
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !apperrors.Is(err, apperrors.ErrCodeFileNotFound) {
		t.Errorf("missing file: %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"DESIGNTREE_CLASSIFIER":             "http",
		"DESIGNTREE_CLASSIFIER_ENDPOINT":    "http://localhost:9000",
		"DESIGNTREE_CLASSIFIER_TOKEN":       "secret",
		"DESIGNTREE_CLASSIFIER_CONCURRENCY": "8",
		"DESIGNTREE_CACHE":                  "mongo",
		"DESIGNTREE_MONGO_URI":              "mongodb://db:27017",
		"GOOGLE_API_KEY":                    "google-key",
		"GEMINI_API_KEY":                    "gemini-key",
	}
	cfg := Default()
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Classifier.Provider != "http" || cfg.Classifier.Endpoint != "http://localhost:9000" {
		t.Errorf("classifier = %+v", cfg.Classifier)
	}
	if cfg.Classifier.Token != "secret" || cfg.Classifier.Concurrency != 8 {
		t.Errorf("token/concurrency = %q/%d", cfg.Classifier.Token, cfg.Classifier.Concurrency)
	}
	if cfg.Classifier.APIKey != "gemini-key" {
		t.Errorf("api key = %q, want GEMINI_API_KEY to win over GOOGLE_API_KEY", cfg.Classifier.APIKey)
	}
	if cfg.Cache.Backend != cache.BackendMongo || cfg.Cache.Mongo.URI != "mongodb://db:27017" {
		t.Errorf("cache = %+v", cfg.Cache)
	}

	bad := Default()
	err := bad.ApplyEnv(func(k string) string {
		if k == "DESIGNTREE_REDIS_DB" {
			return "two"
		}
		return ""
	})
	if !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
		t.Errorf("bad number: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   apperrors.Code
	}{
		{"provider", func(c *Config) { c.Classifier.Provider = "openai" }, apperrors.ErrCodeInvalidConfig},
		{"threshold", func(c *Config) { c.Classifier.Threshold = "sure" }, apperrors.ErrCodeInvalidConfig},
		{"backend", func(c *Config) { c.Cache.Backend = "memcached" }, apperrors.ErrCodeInvalidConfig},
		{"match mode", func(c *Config) { c.Hierarchy.MatchMode = "fuzzy" }, apperrors.ErrCodeInvalidConfig},
		{"tier", func(c *Config) { c.Hierarchy.Tiers = map[string]string{"Card": "planet"} }, apperrors.ErrCodeInvalidTier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if got := apperrors.GetCode(err); got != tt.code {
				t.Errorf("code = %v, want %v (%v)", got, tt.code, err)
			}
		})
	}
}

func TestConversions(t *testing.T) {
	cfg := Default()
	cfg.Classifier.Provider = pipeline.ProviderHTTP
	cfg.Classifier.Endpoint = "https://classifier.example.com"
	cfg.Classifier.Token = "tok"
	cfg.Hierarchy.Tiers = map[string]string{"node:1:1": "atom"}
	cfg.Cache.Redis.Password = "pw"

	opts := cfg.PipelineOptions()
	if opts.Classifier != pipeline.ProviderHTTP || opts.Token != "tok" || opts.Tiers["node:1:1"] != "atom" {
		t.Errorf("pipeline options = %+v", opts)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("converted options invalid: %v", err)
	}

	copts := cfg.CacheOptions()
	if copts.Backend != cache.BackendFile || copts.Redis.Password != "pw" || copts.Mongo.Database != "designtree" {
		t.Errorf("cache options = %+v", copts)
	}
}

func TestStringOmitsSecrets(t *testing.T) {
	cfg := Default()
	cfg.Classifier.APIKey = "very-secret"
	cfg.Classifier.Token = "also-secret"
	out := cfg.String()
	if strings.Contains(out, "secret") {
		t.Errorf("secrets leaked:\n%s", out)
	}
	if !strings.Contains(out, "[classifier]") {
		t.Errorf("missing classifier table:\n%s", out)
	}
}

func TestFindPrefersEnv(t *testing.T) {
	t.Setenv("DESIGNTREE_CONFIG", "/etc/designtree.yaml")
	if got := Find(); got != "/etc/designtree.yaml" {
		t.Errorf("Find() = %q", got)
	}
}

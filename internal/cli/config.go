package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	errs "github.com/matzehuels/depviz/pkg/errors"
	"github.com/matzehuels/depviz/pkg/server"
	"github.com/matzehuels/depviz/pkg/source"
)

// envPrefix prefixes every environment override.
const envPrefix = "DEPVIZ_"

// configFile is the file name looked up in the config directory.
const configFile = "config.toml"

// Config holds settings shared by all commands. Values come from built-in
// defaults, then the TOML config file, then DEPVIZ_* environment variables.
// Command-line flags override all of them.
type Config struct {
	// Path is the config file that was read, empty if none.
	Path string `toml:"-"`

	CacheDir string        `toml:"cache_dir"`
	RedisURL string        `toml:"redis_url"`
	CacheTTL time.Duration `toml:"cache_ttl"`
	NoCache  bool          `toml:"no_cache"`

	OutDir   string   `toml:"out_dir"`
	Formats  []string `toml:"formats"`
	Detailed bool     `toml:"detailed"`

	Serve ServeConfig `toml:"serve"`
}

// ServeConfig configures the serve command.
type ServeConfig struct {
	Addr       string        `toml:"addr"`
	MemoSize   int           `toml:"memo_size"`
	MemoTTL    time.Duration `toml:"memo_ttl"`
	MaxDepth   int           `toml:"max_depth"`
	AllowLocal bool          `toml:"allow_local"`
	Metrics    bool          `toml:"metrics"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		CacheTTL: source.DefaultTTL,
		OutDir:   ".",
		Serve: ServeConfig{
			Addr:     server.DefaultAddr,
			MemoSize: server.DefaultMemoSize,
			MemoTTL:  server.DefaultMemoTTL,
			MaxDepth: server.DefaultMaxDepth,
			Metrics:  true,
		},
	}
}

// LoadConfig builds the effective configuration. An explicit path must
// exist; the default location is optional. A .env file in the working
// directory is loaded first and never overrides variables already set.
func LoadConfig(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidArgument, err, "load .env")
	}

	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err == nil {
			path = filepath.Join(dir, configFile)
		}
	}
	if path != "" {
		if err := cfg.readFile(path, explicit); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// readFile merges the TOML file at path into cfg. Unknown keys are rejected.
func (cfg *Config) readFile(path string, required bool) error {
	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		if required {
			return errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return nil
	}
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidArgument, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return errs.New(errs.ErrCodeInvalidArgument, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	return nil
}

// applyEnv overrides cfg with DEPVIZ_* variables found through lookup.
func (cfg *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("CACHE_DIR"); ok {
		cfg.CacheDir = v
	}
	if v, ok := get("REDIS_URL"); ok {
		cfg.RedisURL = v
	}
	if v, ok := get("OUT_DIR"); ok {
		cfg.OutDir = v
	}
	if v, ok := get("FORMATS"); ok {
		cfg.Formats = splitList(v)
	}
	if v, ok := get("ADDR"); ok {
		cfg.Serve.Addr = v
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"CACHE_TTL", &cfg.CacheTTL},
		{"MEMO_TTL", &cfg.Serve.MemoTTL},
	}
	for _, d := range durations {
		if v, ok := get(d.name); ok {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return errs.Wrap(errs.ErrCodeInvalidArgument, err, "%s%s", envPrefix, d.name)
			}
			*d.dst = parsed
		}
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"NO_CACHE", &cfg.NoCache},
		{"DETAILED", &cfg.Detailed},
		{"ALLOW_LOCAL", &cfg.Serve.AllowLocal},
		{"METRICS", &cfg.Serve.Metrics},
	}
	for _, b := range bools {
		if v, ok := get(b.name); ok {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return errs.Wrap(errs.ErrCodeInvalidArgument, err, "%s%s", envPrefix, b.name)
			}
			*b.dst = parsed
		}
	}

	if v, ok := get("MAX_DEPTH"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidArgument, err, "%sMAX_DEPTH", envPrefix)
		}
		cfg.Serve.MaxDepth = n
	}
	return nil
}

// splitList splits a comma-separated list, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

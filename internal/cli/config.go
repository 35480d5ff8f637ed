package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/occupancy/pkg/errors"
	"github.com/matzehuels/occupancy/pkg/pipeline"
	"github.com/matzehuels/occupancy/pkg/server"
)

// Source kinds.
const (
	sourceFile  = "file"
	sourceMongo = "mongo"
	sourceAPI   = "api"
)

// Cache kinds.
const (
	cacheFile  = "file"
	cacheRedis = "redis"
	cacheNone  = "none"
)

// Config is the optional TOML configuration file. Flags override it.
//
//	[source]
//	kind = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//	database = "ads"
//
//	[cache]
//	kind = "redis"
//	redis_addr = "localhost:6379"
//	namespace = "agency-north"
type Config struct {
	Source SourceConfig `toml:"source"`
	Cache  CacheConfig  `toml:"cache"`
	Render RenderConfig `toml:"render"`
	Server ServerConfig `toml:"server"`
}

// SourceConfig selects where bookings come from.
type SourceConfig struct {
	Kind       string `toml:"kind"`
	Path       string `toml:"path"`
	Supports   string `toml:"supports"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
	APIURL     string `toml:"api_url"`
	APIToken   string `toml:"api_token"`
	PageSize   int    `toml:"page_size"`
}

// CacheConfig selects the page cache.
type CacheConfig struct {
	Kind      string   `toml:"kind"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	Namespace string   `toml:"namespace"`
	TTL       duration `toml:"ttl"`
}

// RenderConfig holds render defaults.
type RenderConfig struct {
	Style string `toml:"style"`
	Lang  string `toml:"lang"`
	Theme string `toml:"theme"`
}

// ServerConfig holds the serve command defaults.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// duration decodes TOML strings such as "6h".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "invalid duration %q", text)
	}
	d.Duration = v
	return nil
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() Config {
	return Config{
		Source: SourceConfig{Kind: sourceFile, PageSize: pipeline.DefaultPageSize},
		Cache:  CacheConfig{Kind: cacheFile},
		Render: RenderConfig{Style: pipeline.DefaultStyle, Lang: pipeline.DefaultLanguage},
		Server: ServerConfig{Addr: server.DefaultAddr},
	}
}

// configPath returns the default config file location
// ($XDG_CONFIG_HOME/occupancy/config.toml).
func configPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads path over the defaults. A missing file at the default
// location is not an error; a missing explicit path is.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown key %s", path, keys[0].String())
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Source.Kind {
	case sourceFile, sourceMongo, sourceAPI:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "source.kind must be one of: file, mongo, api (got %q)", c.Source.Kind)
	}
	switch c.Cache.Kind {
	case cacheFile, cacheRedis, cacheNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "cache.kind must be one of: file, redis, none (got %q)", c.Cache.Kind)
	}
	if c.Cache.Kind == cacheRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis cache")
	}
	if err := errors.ValidatePageSize(c.Source.PageSize); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "source.page_size")
	}
	if err := pipeline.ValidateStyle(c.Render.Style); err != nil {
		return err
	}
	return pipeline.ValidateLang(c.Render.Lang)
}

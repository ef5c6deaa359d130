// Package config loads the service configuration AmFn's server adapter
// runs with: a JSON file on disk, located by the same OCP_ENV
// /CONFIG_PATH environment-variable convention the teacher repo's config
// package uses, decoded into a typed Config rather than a bare
// map[string]interface{}.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"
)

// Config is the full set of knobs the server (A5) reads at startup for
// itself and for A2 logging and A4 rate-cache; the CLI (A6) does not read it.
type Config struct {
	LogDir  string `json:"log_dir"`
	LogFile string `json:"log_file"`

	ServerAddr string `json:"server_addr"`

	RedisAddr     string        `json:"redis_addr"`
	RedisPassword string        `json:"redis_password"`
	RedisDB       int           `json:"redis_db"`
	RateCacheTTL  time.Duration `json:"rate_cache_ttl"`

	MetricsAddr string `json:"metrics_addr"`
}

// defaults mirrors what a freshly unmarshaled zero-value Config would read
// as, filled in where the zero value would otherwise be unusable.
func defaults() Config {
	return Config{
		LogDir:       "./logs",
		LogFile:      "amfn.log",
		ServerAddr:   "localhost:8080",
		RedisAddr:    "localhost:6379",
		RateCacheTTL: 5 * time.Minute,
		MetricsAddr:  "localhost:9090",
	}
}

// Load reads the config file pointed to by OCP_ENV/CONFIG_PATH, the same
// pair the teacher's config.ReadConfig checks: unset OCP_ENV means
// ./config.json, a Kubernetes deployment sets CONFIG_PATH to the mounted
// ConfigMap directory. On error the returned Config holds the defaults.
func Load() (Config, error) {
	cfg := defaults()

	path := "./config.json"
	if os.Getenv("OCP_ENV") != "" {
		path = os.Getenv("CONFIG_PATH") + "config.json"
	}

	log.Println("reading config from:", path)
	file, err := os.Open(path)
	if err != nil {
		return defaults(), fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return defaults(), fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

package monitop

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved runtime configuration
type Config struct {
	URL            string
	Interval       time.Duration
	Samples        int
	Points         int
	Targets        []string
	Target         string
	RequestTimeout time.Duration
	SnapshotDir    string
	MetricsListen  string
	MetricsDump    string
	LogFile        string
}

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("url", "http://localhost:8000")
	v.SetDefault("interval", UpdateDuration())
	v.SetDefault("samples", SAMPLES_LIMIT)
	v.SetDefault("points", POINTS_LIMIT)
	v.SetDefault("targets", Targets)
	v.SetDefault("target", "")
	v.SetDefault("request_timeout", time.Duration(0))
	v.SetDefault("snapshot_dir", "")
	v.SetDefault("metrics_listen", "")
	v.SetDefault("metrics_dump", "")
	v.SetDefault("log_file", "monitop.log")
}

// LoadConfig reads and validates the configuration held by v
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		URL:            strings.TrimSpace(v.GetString("url")),
		Interval:       v.GetDuration("interval"),
		Samples:        v.GetInt("samples"),
		Points:         v.GetInt("points"),
		Targets:        splitList(v.GetStringSlice("targets")),
		Target:         strings.TrimSpace(v.GetString("target")),
		RequestTimeout: v.GetDuration("request_timeout"),
		SnapshotDir:    v.GetString("snapshot_dir"),
		MetricsListen:  v.GetString("metrics_listen"),
		MetricsDump:    v.GetString("metrics_dump"),
		LogFile:        v.GetString("log_file"),
	}

	if cfg.URL == "" {
		return Config{}, fmt.Errorf("url must be set")
	}
	if cfg.Interval <= 0 {
		return Config{}, fmt.Errorf("interval must be > 0, got %s", cfg.Interval)
	}
	if cfg.Samples < 1 {
		return Config{}, fmt.Errorf("samples must be >= 1")
	}
	if cfg.Points < 1 {
		return Config{}, fmt.Errorf("points must be >= 1")
	}
	if cfg.RequestTimeout < 0 {
		return Config{}, fmt.Errorf("request_timeout must not be negative")
	}
	if len(cfg.Targets) == 0 {
		return Config{}, fmt.Errorf("at least one target must be configured")
	}
	if cfg.Target == "" {
		cfg.Target = cfg.Targets[0]
	}
	if !slices.Contains(cfg.Targets, cfg.Target) {
		return Config{}, fmt.Errorf("target %q is not one of %v", cfg.Target, cfg.Targets)
	}
	return cfg, nil
}

// splitList accepts both repeated values and comma separated ones
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" && !slices.Contains(out, part) {
				out = append(out, part)
			}
		}
	}
	return out
}

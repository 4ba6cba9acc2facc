package monitop

import (
	"reflect"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(newTestViper())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.URL != "http://localhost:8000" {
		t.Fatalf("URL = %q", cfg.URL)
	}
	if cfg.Interval != 3*time.Second {
		t.Fatalf("Interval = %s", cfg.Interval)
	}
	if cfg.Samples != 500 || cfg.Points != 1000 {
		t.Fatalf("limits = %d/%d", cfg.Samples, cfg.Points)
	}
	if !reflect.DeepEqual(cfg.Targets, []string{"files", "chunks", "candidates", "clones"}) {
		t.Fatalf("Targets = %v", cfg.Targets)
	}
	if cfg.Target != "files" {
		t.Fatalf("default target = %q, want first target", cfg.Target)
	}
	if cfg.RequestTimeout != 0 {
		t.Fatalf("RequestTimeout = %s, want disabled", cfg.RequestTimeout)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Parallel()

	v := newTestViper()
	v.Set("interval", "750ms")
	v.Set("targets", []string{"chunks, clones", "chunks"})
	v.Set("target", "clones")
	v.Set("request_timeout", "2s")

	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Interval != 750*time.Millisecond {
		t.Fatalf("Interval = %s", cfg.Interval)
	}
	if !reflect.DeepEqual(cfg.Targets, []string{"chunks", "clones"}) {
		t.Fatalf("Targets = %v", cfg.Targets)
	}
	if cfg.Target != "clones" || cfg.RequestTimeout != 2*time.Second {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	t.Parallel()

	tests := map[string]func(v *viper.Viper){
		"empty url":        func(v *viper.Viper) { v.Set("url", " ") },
		"zero interval":    func(v *viper.Viper) { v.Set("interval", "0s") },
		"no samples":       func(v *viper.Viper) { v.Set("samples", 0) },
		"no points":        func(v *viper.Viper) { v.Set("points", -1) },
		"negative timeout": func(v *viper.Viper) { v.Set("request_timeout", "-1s") },
		"no targets":       func(v *viper.Viper) { v.Set("targets", []string{}) },
		"unknown target":   func(v *viper.Viper) { v.Set("target", "widgets") },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			v := newTestViper()
			mutate(v)
			if _, err := LoadConfig(v); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/mlbridge/internal/testutil/testlog"
	"github.com/google/go-cmp/cmp"
)

func TestTemplateLoadsAndValidates(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "mlbridge.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	want := Config{
		Backend:    "sim",
		CheckStale: true,
		Heap:       HeapConfig{InitialWords: 4096},
		Metrics:    MetricsConfig{Enabled: true},
		Server:     ServerConfig{Addr: ":9200", CorsOrigins: []string{"http://localhost:3000"}},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("template config mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteTemplateRefusesOverwrite(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "mlbridge.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected existing config to be refused")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "partial.toml")
	if err := os.WriteFile(path, []byte("check_stale = true\n[heap]\nstress = true\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != DefaultBackend || cfg.Heap.InitialWords != DefaultInitialWords || !cfg.Heap.Stress {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	opts := BackendOptions(cfg)
	if opts.InitialWords != DefaultInitialWords || !opts.Stress {
		t.Fatalf("backend options mismatch: %+v", opts)
	}
}

func TestValidateFailures(t *testing.T) {
	testlog.Start(t)
	cases := []func(*Config){
		func(c *Config) { c.Backend = " " },
		func(c *Config) { c.Heap.InitialWords = 4 },
		func(c *Config) { c.Server.Addr = "nope" },
		func(c *Config) { c.Server.CorsOrigins = []string{""} },
	}
	for i, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := Validate(cfg); err == nil {
			t.Fatalf("case %d: expected validation error for %+v", i, cfg)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	testlog.Start(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	cfg := Default()
	cfg.CheckStale = true
	cfg.Server.CorsOrigins = []string{"http://localhost:3000"}
	if err := Encode(&buf, cfg); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(buf.String(), "check_stale = true") {
		t.Fatalf("encoded config missing check_stale:\n%s", buf.String())
	}
	path := filepath.Join(t.TempDir(), "encoded.toml")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load encoded: %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Fatalf("encode round trip mismatch (-want +got):\n%s", diff)
	}
}

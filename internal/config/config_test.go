// # internal/config/config_test.go
package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	content := `
root = "./src"

[scan]
extensions = [".php", ".inc"]
workers = 4

[exclude]
dirs = [".git", "vendor"]
files = ["*_generated.php"]

[watch]
debounce = "1s"
min_rescan_interval = "5s"

[store]
path = "phpnav.db"

[server]
addr = ":9000"

[tracing]
otlp_endpoint = "localhost:4317"
`
	tmpfile, err := os.CreateTemp("", "config*.toml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Root != "./src" {
		t.Errorf("Expected root ./src, got %s", cfg.Root)
	}
	if len(cfg.Scan.Extensions) != 2 || cfg.Scan.Extensions[1] != ".inc" {
		t.Errorf("Unexpected extensions: %v", cfg.Scan.Extensions)
	}
	if cfg.Scan.Workers != 4 {
		t.Errorf("Expected 4 workers, got %d", cfg.Scan.Workers)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("Expected debounce 1s, got %v", cfg.Watch.Debounce)
	}
	if cfg.Watch.MinRescanInterval != 5*time.Second {
		t.Errorf("Expected min rescan interval 5s, got %v", cfg.Watch.MinRescanInterval)
	}
	if cfg.Store.Path != "phpnav.db" {
		t.Errorf("Expected store path phpnav.db, got %s", cfg.Store.Path)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Expected server addr :9000, got %s", cfg.Server.Addr)
	}
	if cfg.Tracing.OTLPEndpoint != "localhost:4317" {
		t.Errorf("Expected OTLP endpoint localhost:4317, got %s", cfg.Tracing.OTLPEndpoint)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Root != "." {
		t.Errorf("Expected default root ., got %s", cfg.Root)
	}
	if len(cfg.Scan.Extensions) != 1 || cfg.Scan.Extensions[0] != ".php" {
		t.Errorf("Unexpected default extensions: %v", cfg.Scan.Extensions)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Expected default debounce 500ms, got %v", cfg.Watch.Debounce)
	}
	if cfg.Server.Addr != ":8921" {
		t.Errorf("Expected default server addr :8921, got %s", cfg.Server.Addr)
	}
	if cfg.Store.Path != "" {
		t.Errorf("Expected store disabled by default, got %s", cfg.Store.Path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/phpnav.toml"); err == nil {
		t.Error("Expected error for missing config file")
	}
}

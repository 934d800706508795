package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testConfig struct {
	Name  string `yaml:"name" toml:"name"`
	Port  int    `yaml:"port" toml:"port"`
	Inner struct {
		Path string `yaml:"path" toml:"path"`
	} `yaml:"inner" toml:"inner"`
}

func (c *testConfig) Validate() error {
	if c.Port == 0 {
		return errors.New("port is required")
	}
	return nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_YAMLWithEnv(t *testing.T) {
	t.Setenv("FILMOTEKA_TEST_PATH", "/data/filmovi.csv")
	path := writeFile(t, "config.yaml", "name: yaml\nport: 8080\ninner:\n  path: ${FILMOTEKA_TEST_PATH}\n")

	var cfg testConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "yaml" || cfg.Port != 8080 || cfg.Inner.Path != "/data/filmovi.csv" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", "name = \"toml\"\nport = 9090\n\n[inner]\npath = \"x.db\"\n")

	var cfg testConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "toml" || cfg.Port != 9090 || cfg.Inner.Path != "x.db" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_KeepsDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", "port: 1\n")
	cfg := testConfig{Name: "default"}
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "default" {
		t.Errorf("name = %q, want default kept", cfg.Name)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	path := writeFile(t, "config.yaml", "name: x\n")
	var cfg testConfig
	err := Load(path, &cfg)
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("err = %v, want validation failure", err)
	}
}

func TestLoad_ParseError(t *testing.T) {
	path := writeFile(t, "config.toml", "port = = 1\n")
	var cfg testConfig
	if err := Load(path, &cfg); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	def := writeFile(t, "default.yaml", "port: 7\n")
	var cfg testConfig
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"), def, &cfg); err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.Port != 7 {
		t.Errorf("port = %d, want 7", cfg.Port)
	}
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"), "", &cfg); err == nil {
		t.Error("expected error without default file")
	}
}

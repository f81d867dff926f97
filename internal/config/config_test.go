package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	coreerrors "github.com/FocuswithJustin/aitbible/core/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.GreekDir != "greek_texts" {
		t.Errorf("expected greek_dir greek_texts, got %s", cfg.GreekDir)
	}
	if cfg.ParagraphWindow != 20 {
		t.Errorf("expected paragraph window 20, got %d", cfg.ParagraphWindow)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("unexpected log config %+v", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing greek dir",
			modify:  func(c *Config) { c.GreekDir = "" },
			wantErr: true,
		},
		{
			name:    "missing data dir",
			modify:  func(c *Config) { c.DataDir = "" },
			wantErr: true,
		},
		{
			name:    "zero paragraph window",
			modify:  func(c *Config) { c.ParagraphWindow = 0 },
			wantErr: true,
		},
		{
			name:    "malformed chapter pattern",
			modify:  func(c *Config) { c.ChapterPattern = "chapter_[.txt" },
			wantErr: true,
		},
		{
			name:    "nested chapter pattern",
			modify:  func(c *Config) { c.ChapterPattern = "**/chapter_*.txt" },
			wantErr: false,
		},
		{
			name:    "unknown log level",
			modify:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: true,
		},
		{
			name:    "unknown log format",
			modify:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, coreerrors.ErrInvalidInput) {
				t.Errorf("Validate() error %v should be a validation error", err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aitbible.yaml")
	content := `greek_dir: /srv/morphgnt
paragraph_window: 32
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.GreekDir != "/srv/morphgnt" {
		t.Errorf("GreekDir = %s", cfg.GreekDir)
	}
	if cfg.ParagraphWindow != 32 {
		t.Errorf("ParagraphWindow = %d", cfg.ParagraphWindow)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %s", cfg.Log.Level)
	}
	// Unset keys keep their defaults.
	if cfg.DataDir != "web/data" || cfg.Log.Format != "text" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("greek_dir: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFromFile(path)
	var pe *coreerrors.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want ParseError", err)
	}
	if pe.Path != path {
		t.Errorf("Path = %s", pe.Path)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") without project file error = %v", err)
	}
	if cfg.GreekDir != DefaultConfig().GreekDir {
		t.Errorf("expected defaults, got %+v", cfg)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("explicit missing path should fail")
	}

	if err := os.WriteFile(ProjectConfigFile, []byte("data_dir: site/data\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != "site/data" {
		t.Errorf("DataDir = %s, want site/data", cfg.DataDir)
	}

	if err := os.WriteFile(ProjectConfigFile, []byte("paragraph_window: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(""); err == nil {
		t.Error("invalid project file should fail validation")
	}
}

func TestMerge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(&Config{
		DataDir:         "out/xml",
		ParagraphWindow: 40,
		Log:             LogConfig{Format: "json"},
	})

	if cfg.DataDir != "out/xml" {
		t.Errorf("DataDir = %s", cfg.DataDir)
	}
	if cfg.ParagraphWindow != 40 {
		t.Errorf("ParagraphWindow = %d", cfg.ParagraphWindow)
	}
	if cfg.Log.Format != "json" || cfg.Log.Level != "info" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.GreekDir != "greek_texts" {
		t.Errorf("zero values must not override: GreekDir = %s", cfg.GreekDir)
	}

	cfg.Merge(nil)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "AITBIBLE_GREEK_DIR=/from/file\nAITBIBLE_DATA_DIR=/file/data\nAITBIBLE_PARAGRAPH_WINDOW=25\n"
	if err := os.WriteFile(envPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AITBIBLE_GREEK_DIR", "/from/env")

	env, err := LoadEnv(envPath)
	if err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if env.GreekDir != "/from/env" {
		t.Errorf("GreekDir = %q, process environment should win", env.GreekDir)
	}
	if env.DataDir != "/file/data" {
		t.Errorf("DataDir = %q", env.DataDir)
	}
	if env.ParagraphWindow != 25 {
		t.Errorf("ParagraphWindow = %d", env.ParagraphWindow)
	}
	if env.Glossary != "" || env.Log.Level != "" {
		t.Errorf("unset keys should stay zero: %+v", env)
	}

	if _, err := LoadEnv(filepath.Join(dir, "absent.env")); err != nil {
		t.Errorf("missing env file should be ignored, got %v", err)
	}

	t.Setenv("AITBIBLE_PARAGRAPH_WINDOW", "wide")
	if _, err := LoadEnv(envPath); !errors.Is(err, coreerrors.ErrInvalidInput) {
		t.Errorf("non-integer window error = %v, want validation error", err)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	chdir(t, t.TempDir())
	if err := os.WriteFile(ProjectConfigFile, []byte("data_dir: site/data\nlog:\n  level: warn\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(EnvFile, []byte("AITBIBLE_LOG_LEVEL=debug\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want env override", cfg.Log.Level)
	}
	if cfg.DataDir != "site/data" {
		t.Errorf("DataDir = %q, want file value", cfg.DataDir)
	}

	t.Setenv("AITBIBLE_LOG_FORMAT", "yaml")
	if _, err := Load(""); err == nil {
		t.Error("invalid env value should fail validation")
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir for older toolchains).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

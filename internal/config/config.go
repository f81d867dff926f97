// Package config provides configuration loading for the edition pipeline.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	coreerrors "github.com/FocuswithJustin/aitbible/core/errors"
	"github.com/FocuswithJustin/aitbible/internal/annotate"
	"github.com/FocuswithJustin/aitbible/internal/logging"
)

const (
	// ProjectConfigFile is read from the working directory when no path is given.
	ProjectConfigFile = "aitbible.yaml"
	// EnvFile holds environment overrides and is read from the working
	// directory when present.
	EnvFile = ".env"
	// EnvPrefix prefixes every environment override, e.g. AITBIBLE_GREEK_DIR.
	EnvPrefix = "AITBIBLE_"
)

// Config represents the complete pipeline configuration
type Config struct {
	// GreekDir holds the MorphGNT source files
	GreekDir string `yaml:"greek_dir"`
	// TranslationsDir holds one directory of chapter files per book
	TranslationsDir string `yaml:"translations_dir"`
	// DataDir receives edition XML files
	DataDir string `yaml:"data_dir"`
	// JSONDir receives JSON book files
	JSONDir string `yaml:"json_dir"`
	// Glossary is the path of the terminology registry
	Glossary string `yaml:"glossary"`
	// ChapterPattern selects chapter files inside a book directory
	ChapterPattern string `yaml:"chapter_pattern"`
	// ParagraphWindow is how far before a verse marker a blank line counts
	ParagraphWindow int       `yaml:"paragraph_window"`
	Log             LogConfig `yaml:"log"`
}

// LogConfig configures logging output
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
	// Format is text or json
	Format string `yaml:"format"`
}

// DefaultConfig returns a Config with the repository's standard layout
func DefaultConfig() *Config {
	return &Config{
		GreekDir:        "greek_texts",
		TranslationsDir: "output",
		DataDir:         "web/data",
		JSONDir:         "data",
		Glossary:        "web/data/glossary.json",
		ChapterPattern:  "chapter_*.txt",
		ParagraphWindow: annotate.DefaultParagraphWindow,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.GreekDir == "" {
		return coreerrors.NewValidation("greek_dir", "is required")
	}
	if c.DataDir == "" {
		return coreerrors.NewValidation("data_dir", "is required")
	}
	if c.ChapterPattern != "" && !doublestar.ValidatePattern(c.ChapterPattern) {
		return &coreerrors.ValidationError{Field: "chapter_pattern", Value: c.ChapterPattern, Message: "invalid glob pattern"}
	}
	if c.ParagraphWindow < 1 {
		return coreerrors.NewValidation("paragraph_window", "must be positive")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return &coreerrors.ValidationError{Field: "log.level", Value: c.Log.Level, Message: err.Error()}
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return &coreerrors.ValidationError{Field: "log.format", Value: c.Log.Format, Message: err.Error()}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, &coreerrors.ParseError{Format: "config", Path: path, Message: err.Error(), Err: err}
	}

	return config, nil
}

// Load returns the configuration at path with environment overrides applied.
// With an empty path the project file in the working directory is used if
// present, otherwise the defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = ProjectConfigFile
	}

	config, err := LoadFromFile(path)
	switch {
	case err == nil:
	case !explicit && errors.Is(err, fs.ErrNotExist):
		config = DefaultConfig()
	default:
		return nil, err
	}

	env, err := LoadEnv(EnvFile)
	if err != nil {
		return nil, err
	}
	config.Merge(env)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadEnv returns the overrides set through AITBIBLE_* variables. Values in
// the process environment win over those in the env file at path; a missing
// file is not an error. Unset keys are left zero so the result can be merged.
func LoadEnv(path string) (*Config, error) {
	fileVars, err := godotenv.Read(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, &coreerrors.ParseError{Format: "env file", Path: path, Message: err.Error(), Err: err}
	}
	lookup := func(key string) string {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			return v
		}
		return fileVars[EnvPrefix+key]
	}

	env := &Config{
		GreekDir:        lookup("GREEK_DIR"),
		TranslationsDir: lookup("TRANSLATIONS_DIR"),
		DataDir:         lookup("DATA_DIR"),
		JSONDir:         lookup("JSON_DIR"),
		Glossary:        lookup("GLOSSARY"),
		ChapterPattern:  lookup("CHAPTER_PATTERN"),
		Log: LogConfig{
			Level:  lookup("LOG_LEVEL"),
			Format: lookup("LOG_FORMAT"),
		},
	}
	if raw := lookup("PARAGRAPH_WINDOW"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &coreerrors.ValidationError{Field: EnvPrefix + "PARAGRAPH_WINDOW", Value: raw, Message: "must be an integer"}
		}
		env.ParagraphWindow = n
	}
	return env, nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.GreekDir != "" {
		c.GreekDir = other.GreekDir
	}
	if other.TranslationsDir != "" {
		c.TranslationsDir = other.TranslationsDir
	}
	if other.DataDir != "" {
		c.DataDir = other.DataDir
	}
	if other.JSONDir != "" {
		c.JSONDir = other.JSONDir
	}
	if other.Glossary != "" {
		c.Glossary = other.Glossary
	}
	if other.ChapterPattern != "" {
		c.ChapterPattern = other.ChapterPattern
	}
	if other.ParagraphWindow != 0 {
		c.ParagraphWindow = other.ParagraphWindow
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}
}

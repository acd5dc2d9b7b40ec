// Package config loads tool configuration from environment variables.
//
// The tool is CI-first: every knob has an environment variable so a GitHub
// Actions workflow can configure a run without flags. Command-line flags
// override whatever the environment supplied.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultModel          = "gpt-4o"
	DefaultInputPath      = "./input"
	DefaultOutputPath     = "./output"
	DefaultTemplatePath   = "./templates/reference.template.md"
	DefaultDocsJSONPath   = "./docs.json"
	DefaultMaxIterations  = 10
	DefaultThreshold      = 90
	DefaultTimeoutMinutes = 30
)

// Config holds the settings for a documentation run. API keys are not stored
// here; the llm package reads OPENAI_API_KEY / ANTHROPIC_API_KEY when the
// provider is constructed, so commands that never call the model do not
// require credentials.
type Config struct {
	Model        string // OPENAI_MODEL: bare OpenAI name or provider:model
	InputPath    string // YAML_INPUT_PATH: directory scanned for OpenAPI specs
	OutputPath   string // MARKDOWN_OUTPUT_PATH: directory for rendered markdown
	TemplatePath string // TEMPLATE_PATH: placeholder template file
	DocsJSONPath string // DOCS_JSON_PATH: Mintlify navigation file

	MaxIterations  int // MAX_ITERATIONS: refinement budget per spec file
	Threshold      int // COMPLETENESS_THRESHOLD: minimum passing quality score
	TimeoutMinutes int // TIMEOUT_MINUTES: wall-clock budget for the whole run

	ChangedFiles       []string // CHANGED_FILES: comma/whitespace-separated paths
	ProcessChangedOnly bool     // PROCESS_CHANGED_ONLY: restrict the run to ChangedFiles
	LogLevel           string   // LOG_LEVEL: debug, info, warn, error

	// Warnings collects non-fatal problems found while loading, such as a
	// numeric variable that failed to parse. The caller logs them once the
	// logger exists.
	Warnings []string
}

// LoadFromEnv reads the environment and returns a fully-defaulted Config.
// Malformed numeric values fall back to their defaults and add a warning
// rather than failing the run.
func LoadFromEnv() *Config {
	cfg := &Config{
		Model:        os.Getenv("OPENAI_MODEL"),
		InputPath:    os.Getenv("YAML_INPUT_PATH"),
		OutputPath:   os.Getenv("MARKDOWN_OUTPUT_PATH"),
		TemplatePath: os.Getenv("TEMPLATE_PATH"),
		DocsJSONPath: os.Getenv("DOCS_JSON_PATH"),
		LogLevel:     os.Getenv("LOG_LEVEL"),
	}

	cfg.MaxIterations = cfg.intEnv("MAX_ITERATIONS", DefaultMaxIterations)
	cfg.Threshold = cfg.intEnv("COMPLETENESS_THRESHOLD", DefaultThreshold)
	cfg.TimeoutMinutes = cfg.intEnv("TIMEOUT_MINUTES", DefaultTimeoutMinutes)
	cfg.ProcessChangedOnly = cfg.boolEnv("PROCESS_CHANGED_ONLY", false)
	cfg.ChangedFiles = SplitFileList(os.Getenv("CHANGED_FILES"))

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.InputPath == "" {
		cfg.InputPath = DefaultInputPath
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = DefaultOutputPath
	}
	if cfg.TemplatePath == "" {
		cfg.TemplatePath = DefaultTemplatePath
	}
	if cfg.DocsJSONPath == "" {
		cfg.DocsJSONPath = DefaultDocsJSONPath
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg
}

// Validate checks that numeric settings are usable. It is called after flag
// overrides are applied, so it guards both sources.
func (c *Config) Validate() error {
	if c.MaxIterations < 1 {
		return fmt.Errorf("MAX_ITERATIONS must be at least 1, got %d", c.MaxIterations)
	}
	if c.Threshold < 0 || c.Threshold > 100 {
		return fmt.Errorf("COMPLETENESS_THRESHOLD must be between 0 and 100, got %d", c.Threshold)
	}
	if c.TimeoutMinutes < 1 {
		return fmt.Errorf("TIMEOUT_MINUTES must be at least 1, got %d", c.TimeoutMinutes)
	}
	return nil
}

// Timeout returns the run budget as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMinutes) * time.Minute
}

// SlogLevel maps the LogLevel string to an slog.Level. Unknown values mean
// info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q is not an integer, using default %d", key, v, fallback))
		return fallback
	}
	return n
}

func (c *Config) boolEnv(key string, fallback bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch v {
	case "":
		return fallback
	case "0", "false", "no", "off":
		return false
	case "1", "true", "yes", "on":
		return true
	}
	c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q is not a boolean, using default %t", key, v, fallback))
	return fallback
}

// SplitFileList splits a CHANGED_FILES-style value on commas and whitespace.
// CI systems disagree on the separator; accepting both keeps workflows
// portable. Empty entries are dropped.
func SplitFileList(v string) []string {
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// LoadDotEnv reads a .env file and sets any variables not already present in
// the environment. Real environment variables win over file entries. A
// missing file is not an error.
func LoadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes when both ends
// match.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

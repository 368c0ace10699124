package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingAPIKey is returned by Validate when the selected provider has no key.
var ErrMissingAPIKey = errors.New("api key is not configured")

// MissingKeyError names the provider whose key is missing. It matches
// ErrMissingAPIKey with errors.Is.
type MissingKeyError struct {
	Provider string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("%v: api.%s_api_key is required", ErrMissingAPIKey, e.Provider)
}

func (e *MissingKeyError) Unwrap() error { return ErrMissingAPIKey }

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	HeadingMatchStrict  = "strict"
	HeadingMatchLenient = "lenient"

	ExportText = "txt"
	ExportDOCX = "docx"
)

type Config struct {
	API         APIConfig         `yaml:"api" toml:"api"`
	Model       ModelConfig       `yaml:"model" toml:"model"`
	UI          UIConfig          `yaml:"ui" toml:"ui"`
	App         AppConfig         `yaml:"app" toml:"app"`
	Logging     LoggingConfig     `yaml:"logging" toml:"logging"`
	Server      ServerConfig      `yaml:"server" toml:"server"`
	Parser      ParserConfig      `yaml:"parser" toml:"parser"`
	Paths       PathsConfig       `yaml:"paths" toml:"paths"`
	Performance PerformanceConfig `yaml:"performance" toml:"performance"`
	Export      ExportConfig      `yaml:"export" toml:"export"`
}

type APIConfig struct {
	GeminiAPIKey string `yaml:"gemini_api_key" toml:"gemini_api_key"`
	OpenAIAPIKey string `yaml:"openai_api_key" toml:"openai_api_key"`
}

type ModelConfig struct {
	Provider         string `yaml:"provider" toml:"provider"`
	ModelName        string `yaml:"model_name" toml:"model_name"`
	ResponseMIMEType string `yaml:"response_mime_type" toml:"response_mime_type"`
	BaseURL          string `yaml:"base_url" toml:"base_url"`
}

type UIConfig struct {
	PageTitle string `yaml:"page_title" toml:"page_title"`
	Layout    string `yaml:"layout" toml:"layout"`
	LogoPath  string `yaml:"logo_path" toml:"logo_path"`
}

type AppConfig struct {
	Name        string `yaml:"name" toml:"name"`
	Description string `yaml:"description" toml:"description"`
	Version     string `yaml:"version" toml:"version"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" toml:"addr"`
}

type ParserConfig struct {
	HeadingMatch string `yaml:"heading_match" toml:"heading_match"`
}

type PathsConfig struct {
	Inbox    string `yaml:"inbox" toml:"inbox"`
	Output   string `yaml:"output" toml:"output"`
	Archived string `yaml:"archived" toml:"archived"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" toml:"max_concurrent"`
}

type ExportConfig struct {
	Formats []string `yaml:"formats" toml:"formats"`
}

// APIKey returns the key of the configured provider.
func (c *Config) APIKey() string {
	if c.Model.Provider == ProviderOpenAI {
		return strings.TrimSpace(c.API.OpenAIAPIKey)
	}
	return strings.TrimSpace(c.API.GeminiAPIKey)
}

// Validate checks required fields and fills defaults in place.
func (c *Config) Validate() error {
	c.Model.Provider = strings.ToLower(strings.TrimSpace(c.Model.Provider))
	if c.Model.Provider == "" {
		c.Model.Provider = ProviderGemini
	}
	if c.Model.Provider != ProviderGemini && c.Model.Provider != ProviderOpenAI {
		return fmt.Errorf("model.provider %q is not supported", c.Model.Provider)
	}
	if c.APIKey() == "" {
		return &MissingKeyError{Provider: c.Model.Provider}
	}

	if c.Model.ModelName == "" {
		if c.Model.Provider == ProviderOpenAI {
			c.Model.ModelName = "gpt-4o-mini"
		} else {
			c.Model.ModelName = "gemini-2.5-flash"
		}
	}
	if c.Model.ResponseMIMEType == "" {
		c.Model.ResponseMIMEType = "text/plain"
	}

	c.Parser.HeadingMatch = strings.ToLower(strings.TrimSpace(c.Parser.HeadingMatch))
	if c.Parser.HeadingMatch == "" {
		c.Parser.HeadingMatch = HeadingMatchStrict
	}
	if c.Parser.HeadingMatch != HeadingMatchStrict && c.Parser.HeadingMatch != HeadingMatchLenient {
		return fmt.Errorf("parser.heading_match %q must be %q or %q", c.Parser.HeadingMatch, HeadingMatchStrict, HeadingMatchLenient)
	}

	if len(c.Export.Formats) == 0 {
		c.Export.Formats = []string{ExportText}
	}
	for i, f := range c.Export.Formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != ExportText && f != ExportDOCX {
			return fmt.Errorf("export.formats: unknown format %q", f)
		}
		c.Export.Formats[i] = f
	}

	if c.App.Name == "" {
		c.App.Name = "MaisGestorHealth"
	}
	if c.App.Description == "" {
		c.App.Description = "Análise de consultas médicas no formato SOAP"
	}
	if c.App.Version == "" {
		c.App.Version = "1.0.0"
	}
	if c.UI.PageTitle == "" {
		c.UI.PageTitle = c.App.Name
	}
	if c.UI.Layout == "" {
		c.UI.Layout = "centered"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Paths.Inbox == "" {
		c.Paths.Inbox = "data/inbox"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "data/output"
	}
	if c.Paths.Archived == "" {
		c.Paths.Archived = "data/archived"
	}
	if c.Performance.MaxConcurrent <= 0 {
		c.Performance.MaxConcurrent = 1
	}

	return nil
}

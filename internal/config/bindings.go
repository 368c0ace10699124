package config

import (
	"fmt"
	"strconv"
	"strings"
)

// binding maps one flat setting (env var or SSM parameter) onto Config.
type binding struct {
	path string
	env  string
	set  func(c *Config, v string) error
}

func str(dst func(c *Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*dst(c) = strings.TrimSpace(v)
		return nil
	}
}

var bindings = []binding{
	{"api.gemini_api_key", "GEMINI_API_KEY", str(func(c *Config) *string { return &c.API.GeminiAPIKey })},
	{"api.openai_api_key", "OPENAI_API_KEY", str(func(c *Config) *string { return &c.API.OpenAIAPIKey })},
	{"model.provider", "MODEL_PROVIDER", str(func(c *Config) *string { return &c.Model.Provider })},
	{"model.model_name", "MODEL_NAME", str(func(c *Config) *string { return &c.Model.ModelName })},
	{"model.response_mime_type", "RESPONSE_MIME_TYPE", str(func(c *Config) *string { return &c.Model.ResponseMIMEType })},
	{"model.base_url", "MODEL_BASE_URL", str(func(c *Config) *string { return &c.Model.BaseURL })},
	{"ui.page_title", "PAGE_TITLE", str(func(c *Config) *string { return &c.UI.PageTitle })},
	{"ui.layout", "UI_LAYOUT", str(func(c *Config) *string { return &c.UI.Layout })},
	{"ui.logo_path", "LOGO_PATH", str(func(c *Config) *string { return &c.UI.LogoPath })},
	{"app.name", "APP_NAME", str(func(c *Config) *string { return &c.App.Name })},
	{"app.description", "APP_DESCRIPTION", str(func(c *Config) *string { return &c.App.Description })},
	{"app.version", "APP_VERSION", str(func(c *Config) *string { return &c.App.Version })},
	{"logging.level", "LOG_LEVEL", str(func(c *Config) *string { return &c.Logging.Level })},
	{"logging.format", "LOG_FORMAT", str(func(c *Config) *string { return &c.Logging.Format })},
	{"server.addr", "SERVER_ADDR", str(func(c *Config) *string { return &c.Server.Addr })},
	{"parser.heading_match", "HEADING_MATCH", str(func(c *Config) *string { return &c.Parser.HeadingMatch })},
	{"paths.inbox", "INBOX_DIR", str(func(c *Config) *string { return &c.Paths.Inbox })},
	{"paths.output", "OUTPUT_DIR", str(func(c *Config) *string { return &c.Paths.Output })},
	{"paths.archived", "ARCHIVED_DIR", str(func(c *Config) *string { return &c.Paths.Archived })},
	{"performance.max_concurrent", "MAX_CONCURRENT", func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("max_concurrent must be an integer: %w", err)
		}
		c.Performance.MaxConcurrent = n
		return nil
	}},
	{"export.formats", "EXPORT_FORMATS", func(c *Config, v string) error {
		c.Export.Formats = nil
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				c.Export.Formats = append(c.Export.Formats, f)
			}
		}
		return nil
	}},
}

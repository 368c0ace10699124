package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nguyentantai21042004/soap-flow/internal/paramstore"
)

// Kind names where the configuration is read from. A deployment trusts
// exactly one kind; there is no fallback between them.
type Kind string

const (
	KindYAML       Kind = "yaml"
	KindTOML       Kind = "toml"
	KindEnv        Kind = "env"
	KindParamStore Kind = "ssm"
)

// ParseKind accepts the flag/env spelling of a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindYAML, KindTOML, KindEnv, KindParamStore:
		return k, nil
	case "":
		return KindYAML, nil
	default:
		return "", fmt.Errorf("unknown config source %q (want yaml, toml, env or ssm)", s)
	}
}

// DefaultLocation is the file path or parameter prefix used when none is given.
func (k Kind) DefaultLocation() string {
	switch k {
	case KindTOML:
		return ".streamlit/secrets.toml"
	case KindEnv:
		return ".env"
	case KindParamStore:
		return "/soap-flow"
	default:
		return "config.yaml"
	}
}

// Source produces a validated Config.
type Source interface {
	Name() string
	Load(ctx context.Context) (*Config, error)
}

type yamlSource struct{ path string }

// NewYAMLSource reads a YAML file.
func NewYAMLSource(path string) Source { return &yamlSource{path: path} }

func (s *yamlSource) Name() string { return "yaml:" + s.path }

func (s *yamlSource) Load(_ context.Context) (*Config, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml %s: %w", s.path, err)
	}
	return validated(&cfg)
}

type tomlSource struct{ path string }

// NewTOMLSource reads a TOML secrets file laid out like a Streamlit secrets.toml.
func NewTOMLSource(path string) Source { return &tomlSource{path: path} }

func (s *tomlSource) Name() string { return "toml:" + s.path }

func (s *tomlSource) Load(_ context.Context) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(s.path, &cfg); err != nil {
		return nil, fmt.Errorf("parse toml %s: %w", s.path, err)
	}
	return validated(&cfg)
}

type envSource struct {
	path   string
	lookup func(string) (string, bool)
}

// NewEnvSource reads the process environment, completed by a dotenv file.
// Variables already set in the environment win over the file. An empty path
// reads the environment only.
func NewEnvSource(path string) Source {
	return &envSource{path: path, lookup: os.LookupEnv}
}

func (s *envSource) Name() string { return "env:" + s.path }

func (s *envSource) Load(_ context.Context) (*Config, error) {
	file := map[string]string{}
	if s.path != "" {
		m, err := godotenv.Read(s.path)
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", s.path, err)
		}
		file = m
	}

	var cfg Config
	for _, b := range bindings {
		v, ok := s.lookup(b.env)
		if !ok {
			v, ok = file[b.env]
		}
		if !ok {
			continue
		}
		if err := b.set(&cfg, v); err != nil {
			return nil, fmt.Errorf("%s: %w", b.env, err)
		}
	}
	return validated(&cfg)
}

type paramStoreSource struct {
	getter paramstore.Getter
	prefix string
}

// NewParamStoreSource reads one SSM parameter per setting under prefix,
// e.g. <prefix>/api/gemini_api_key. Missing optional parameters are skipped.
func NewParamStoreSource(getter paramstore.Getter, prefix string) Source {
	return &paramStoreSource{
		getter: getter,
		prefix: strings.TrimRight(strings.TrimSpace(prefix), "/"),
	}
}

func (s *paramStoreSource) Name() string { return "ssm:" + s.prefix }

func (s *paramStoreSource) Load(ctx context.Context) (*Config, error) {
	if s.getter == nil {
		return nil, errors.New("paramstore getter must not be nil")
	}

	var cfg Config
	for _, b := range bindings {
		name := s.prefix + "/" + strings.ReplaceAll(b.path, ".", "/")
		v, err := s.getter.GetParameter(ctx, name)
		if errors.Is(err, paramstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", b.path, err)
		}
		if err := b.set(&cfg, v); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return validated(&cfg)
}

func validated(cfg *Config) (*Config, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

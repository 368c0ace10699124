package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/nguyentantai21042004/soap-flow/internal/paramstore"
)

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	return NewYAMLSource(path).Load(context.Background())
}

// Open builds the Source for kind and loads it. For KindParamStore the AWS
// SDK default credential chain is used and location is the parameter prefix.
func Open(ctx context.Context, kind Kind, location string) (*Config, error) {
	if location == "" {
		location = kind.DefaultLocation()
	}

	src, err := newSource(ctx, kind, location)
	if err != nil {
		return nil, err
	}
	return src.Load(ctx)
}

func newSource(ctx context.Context, kind Kind, location string) (Source, error) {
	switch kind {
	case KindYAML:
		return NewYAMLSource(location), nil
	case KindTOML:
		return NewTOMLSource(location), nil
	case KindEnv:
		return NewEnvSource(location), nil
	case KindParamStore:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		client, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			return nil, err
		}
		return NewParamStoreSource(client, location), nil
	default:
		return nil, fmt.Errorf("unknown config source %q", kind)
	}
}

// Help returns remediation instructions shown when loading kind fails. The
// provider is taken from a *MissingKeyError in err and defaults to Gemini.
func Help(kind Kind, location string, err error) string {
	if location == "" {
		location = kind.DefaultLocation()
	}

	provider := ProviderGemini
	var mk *MissingKeyError
	if errors.As(err, &mk) {
		provider = mk.Provider
	}

	name, keyURL := "Google Gemini", "https://aistudio.google.com/app/apikey"
	if provider == ProviderOpenAI {
		name, keyURL = "OpenAI", "https://platform.openai.com/api-keys"
	}
	field := provider + "_api_key"
	title := fmt.Sprintf("API Key do %s não configurada!", name)

	switch kind {
	case KindTOML:
		return fmt.Sprintf(`%s

Para configurar o sistema:
1. Configure o arquivo %s
2. Adicione sua API Key do %s
3. Obtenha sua API Key em: %s

Exemplo de configuração:
[api]
%s = "sua_api_key_aqui"`, title, location, name, keyURL, field)
	case KindEnv:
		return fmt.Sprintf(`%s

Defina %s no ambiente ou no arquivo %s:
%s=sua_api_key_aqui`, title, strings.ToUpper(field), location, strings.ToUpper(field))
	case KindParamStore:
		return fmt.Sprintf(`%s

Crie o parâmetro SecureString %s/api/%s no AWS SSM Parameter Store
e garanta que as credenciais AWS tenham permissão ssm:GetParameter.`, title, location, field)
	default:
		return fmt.Sprintf(`%s

Configure o arquivo %s:
api:
  %s: "sua_api_key_aqui"

Obtenha sua API Key em: %s`, title, location, field, keyURL)
	}
}

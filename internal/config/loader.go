package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/tidwall/gjson"
)

// Load parses the configuration blob and the secrets file referenced by env,
// applies defaults for optional keys and validates the result.
func Load(env *Env) (*Config, error) {
	if env == nil {
		return nil, fmt.Errorf("%w: nil environment", ErrConfiguration)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetConfigType("json")
	if err := v.ReadConfig(strings.NewReader(env.ConfContent)); err != nil {
		return nil, fmt.Errorf("%w: bad %s: %v", ErrConfiguration, EnvConfContent, err)
	}

	if err := checkChannelID(env.ConfContent); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrConfiguration, EnvConfContent, err)
	}

	secrets, err := loadSecrets(env.SecretsPath)
	if err != nil {
		return nil, err
	}
	cfg.Secrets = *secrets

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return cfg, nil
}

func loadSecrets(path string) (*Secrets, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read secrets file %s: %v", ErrConfiguration, path, err)
	}

	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("%w: bad secrets file %s: %v", ErrConfiguration, path, err)
	}

	secrets := &Secrets{}
	if err := v.Unmarshal(secrets); err != nil {
		return nil, fmt.Errorf("%w: failed to parse secrets file %s: %v", ErrConfiguration, path, err)
	}
	if err := validator.New().Struct(secrets); err != nil {
		return nil, fmt.Errorf("%w: secrets file %s: %v", ErrConfiguration, path, err)
	}

	return secrets, nil
}

// checkChannelID rejects non-integer channel ids, which the decoder would
// otherwise truncate.
func checkChannelID(content string) error {
	id := gjson.Get(content, "channel_id")
	if !id.Exists() || id.Type != gjson.Number {
		return nil
	}
	if strings.ContainsAny(id.Raw, ".eE") {
		return fmt.Errorf("%w: invalid channel_id %s: must be an integer", ErrConfiguration, id.Raw)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment variable names read at startup.
const (
	EnvConfContent = "TG2SITE_CONF_CONTENT"
	EnvSecretsPath = "TG2SITE_SECRETS_PATH"
)

// Env holds the process-level settings taken from the environment.
type Env struct {
	ConfContent string `env:"TG2SITE_CONF_CONTENT,required,notEmpty"`
	SecretsPath string `env:"TG2SITE_SECRETS_PATH,required,notEmpty"`

	LogLevel  string `env:"TG2SITE_LOG_LEVEL"  envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat string `env:"TG2SITE_LOG_FORMAT" envDefault:"json" validate:"oneof=json text"`
	LogFile   string `env:"TG2SITE_LOG_FILE"`
}

// LoadDotEnv loads variables from a .env style file without overriding the
// ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: failed to load %s: %v", ErrConfiguration, path, err)
	}
	return nil
}

// ReadEnv reads the process environment.
func ReadEnv() (*Env, error) {
	return parseEnv(env.Options{})
}

// ReadEnvFrom reads the settings from the given variables instead of the
// process environment.
func ReadEnvFrom(vars map[string]string) (*Env, error) {
	return parseEnv(env.Options{Environment: vars})
}

func parseEnv(opts env.Options) (*Env, error) {
	e := &Env{}
	if err := env.ParseWithOptions(e, opts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if err := validator.New().Struct(e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return e, nil
}

// Package config loads gibbs CLI settings from defaults, a YAML file,
// GIBBS_ environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultFile is read from the working directory when no --config is given.
const DefaultFile = "gibbs.yaml"

// EnvPrefix marks environment variables that override file settings.
// Nested keys use a double underscore: GIBBS_MODEL__SYMBOL_DEPTH.
const EnvPrefix = "GIBBS_"

type Config struct {
	Database string       `koanf:"database"`
	Log      LogConfig    `koanf:"log"`
	Model    ModelConfig  `koanf:"model"`
	Output   OutputConfig `koanf:"output"`
	Server   ServerConfig `koanf:"server"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

type ModelConfig struct {
	SymbolDepth int  `koanf:"symbol_depth" validate:"min=1"`
	Parallel    bool `koanf:"parallel"`
}

type OutputConfig struct {
	Format string `koanf:"format" validate:"oneof=string latex json"`
}

type ServerConfig struct {
	Addr string `koanf:"addr" validate:"required"`
	// Watch reloads the database when its file changes.
	Watch bool `koanf:"watch"`
	// Trace prints finished spans to stderr.
	Trace bool `koanf:"trace"`
}

var defaults = map[string]interface{}{
	"database":           "",
	"log.level":          "info",
	"model.symbol_depth": 2,
	"model.parallel":     false,
	"output.format":      "string",
	"server.addr":        ":8080",
	"server.watch":       false,
	"server.trace":       false,
}

// flagKeys maps flag names to config keys where the two differ.
var flagKeys = map[string]string{
	"log-level":    "log.level",
	"symbol-depth": "model.symbol_depth",
	"parallel":     "model.parallel",
	"format":       "output.format",
	"addr":         "server.addr",
	"watch":        "server.watch",
	"trace":        "server.trace",
}

// Load builds a Config. Precedence, highest first: flags, environment,
// config file, defaults. A missing default file is not an error; a missing
// explicit one is.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := cfgFile
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("koanf")
	})
	return v
}

// Validate reports every invalid setting at once, keyed by its config path.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, len(verrs))
	for i, fe := range verrs {
		key := strings.TrimPrefix(fe.Namespace(), "Config.")
		switch fe.Tag() {
		case "oneof":
			errs[i] = fmt.Errorf("%s %q: must be one of %s", key, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
		case "min":
			errs[i] = fmt.Errorf("%s %v: must be at least %s", key, fe.Value(), fe.Param())
		default:
			errs[i] = fmt.Errorf("%s: must not be empty", key)
		}
	}
	return errors.Join(errs...)
}

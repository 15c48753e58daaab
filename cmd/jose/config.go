package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trustkit/jose/pkg/jwa"
	"github.com/trustkit/jose/pkg/jwk"
	"golang.org/x/text/language"
)

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
	defaultLanguage  = "en"

	fetchTimeout = 10 * time.Second
)

// Config is the command line configuration, read from flags, JOSE_
// environment variables and an optional jose.yaml file, in that order of
// precedence.
type Config struct {
	Secret     string   `mapstructure:"secret"`      // Shared secret for HMAC and AES-GCM
	SecretFile string   `mapstructure:"secret_file"` // File holding the shared secret
	Accept     []string `mapstructure:"accept"`      // Algorithms accepted when verifying or decrypting
	KeySet     string   `mapstructure:"keyset"`      // Path or URL of a JWK set to look keys up by "kid"
	Language   string   `mapstructure:"lang"`        // Language of error messages
	Log        Log      `mapstructure:"log"`
}

type Log struct {
	Level  string `mapstructure:"level"`  // debug, info, warn or error
	Format string `mapstructure:"format"` // text or json
}

// globalFlags adds the flags shared by every command.
func globalFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "configuration file (default jose.yaml in $HOME/.config/jose or .)")
	flags.String("secret", "", "shared secret")
	flags.String("secret-file", "", "file holding the shared secret")
	flags.StringSlice("accept", nil, "accepted algorithms (default all supported)")
	flags.String("keyset", "", "path or URL of a JWK set")
	flags.String("lang", defaultLanguage, "language of error messages")
	flags.String("log-level", defaultLogLevel, "log level")
	flags.String("log-format", defaultLogFormat, "log format, text or json")
}

// LoadConfig reads the configuration for the parsed flags.
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("jose") // JOSE_SECRET, JOSE_LOG_LEVEL, ...
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("lang", defaultLanguage)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)

	bindings := map[string]string{
		"secret":      "secret",
		"secret_file": "secret-file",
		"accept":      "accept",
		"keyset":      "keyset",
		"lang":        "lang",
		"log.level":   "log-level",
		"log.format":  "log-format",
	}
	for key, flag := range bindings {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
		if f := flags.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	if path, _ := flags.GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("jose")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.config/jose")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return c, nil
}

// Logger returns a logger writing to w in the configured format and level.
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch c.Log.Format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", c.Log.Format)
	}
}

// Tag returns the language of error messages, English if it is not valid.
func (c *Config) Tag() language.Tag {
	tag, err := language.Parse(c.Language)
	if err != nil {
		return language.English
	}
	return tag
}

// Accepted parses the accepted algorithms, or returns nil if none are
// configured.
func (c *Config) Accepted() ([]jwa.Algorithm, error) {
	if len(c.Accept) == 0 {
		return nil, nil
	}
	return jwa.ParseAlgorithms(c.Accept...)
}

// Key returns the key for kid from the configured key set, or the shared
// secret when there is no key set or no kid.
func (c *Config) Key(ctx context.Context, kid string) ([]byte, error) {
	if c.KeySet != "" && kid != "" {
		set, err := c.LoadKeySet(ctx)
		if err != nil {
			return nil, err
		}
		key, err := set.Get(kid)
		if err != nil {
			return nil, err
		}
		return key.SymmetricKey()
	}

	switch {
	case c.Secret != "":
		return []byte(c.Secret), nil
	case c.SecretFile != "":
		b, err := os.ReadFile(c.SecretFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read secret file: %w", err)
		}
		return bytes.TrimRight(b, "\r\n"), nil
	default:
		return nil, errors.New("no secret configured, set --secret, --secret-file or JOSE_SECRET")
	}
}

// LoadKeySet reads the configured key set from a file, or fetches it when it
// is an http or https URL.
func (c *Config) LoadKeySet(ctx context.Context) (*jwk.Set, error) {
	if strings.HasPrefix(c.KeySet, "http://") || strings.HasPrefix(c.KeySet, "https://") {
		ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()

		return jwk.FetchSet(ctx, c.KeySet, http.DefaultClient)
	}

	b, err := os.ReadFile(c.KeySet)
	if err != nil {
		return nil, fmt.Errorf("failed to read key set: %w", err)
	}
	return jwk.ParseSet(b)
}

// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package config loads client configuration from defaults, a YAML file, a .env
file and environment variables, in that order of increasing precedence.
*/
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

const configFileEnvVar = "MANGADEX_CONFIGFILE"

// Credential store backends.
const (
	MemoryBackend = "memory"
	FileBackend   = "file"
	RedisBackend  = "redis"
)

// ClientConfig holds everything needed to construct a client.
type ClientConfig struct {
	API struct {
		BaseURL    string        `env:"MANGADEX_API_URL,overwrite"     yaml:"baseUrl"`
		NetworkURL string        `env:"MANGADEX_NETWORK_URL,overwrite" yaml:"networkUrl"`
		AuthURL    string        `env:"MANGADEX_AUTH_URL,overwrite"    yaml:"authUrl"`
		UploadsURL string        `env:"MANGADEX_UPLOADS_URL,overwrite" yaml:"uploadsUrl"`
		ForumsURL  string        `env:"MANGADEX_FORUMS_URL,overwrite"  yaml:"forumsUrl"`
		UserAgent  string        `env:"MANGADEX_USER_AGENT,overwrite"  yaml:"userAgent"`
		Timeout    time.Duration `env:"MANGADEX_TIMEOUT,overwrite"     yaml:"timeout"`
	} `yaml:"api"`

	Gate struct {
		Capacity int           `env:"MANGADEX_GATE_CAPACITY,overwrite"  yaml:"capacity"`
		MinDelay time.Duration `env:"MANGADEX_GATE_MIN_DELAY,overwrite" yaml:"minDelay"`
	} `yaml:"gate"`

	Cache struct {
		Enabled  bool          `env:"MANGADEX_CACHE,overwrite"          yaml:"enabled"`
		Size     int           `env:"MANGADEX_CACHE_SIZE,overwrite"     yaml:"cacheSize"`
		TTL      time.Duration `env:"MANGADEX_CACHE_TTL,overwrite"      yaml:"cacheTTL"`
		Compress bool          `env:"MANGADEX_CACHE_COMPRESS,overwrite" yaml:"compress"`
	} `yaml:"cache"`

	Credentials struct {
		Backend       string        `env:"MANGADEX_CREDENTIAL_BACKEND,overwrite" yaml:"backend"`
		FilePath      string        `env:"MANGADEX_CREDENTIAL_FILE,overwrite"    yaml:"filePath"`
		Secret        string        `env:"MANGADEX_CREDENTIAL_SECRET"            yaml:"secret"`
		RedisAddr     string        `env:"MANGADEX_REDIS_ADDR,overwrite"         yaml:"redisAddr"`
		RedisPassword string        `env:"MANGADEX_REDIS_PASSWORD"               yaml:"redisPassword"`
		RedisDB       int           `env:"MANGADEX_REDIS_DB,overwrite"           yaml:"redisDb"`
		RedisPrefix   string        `env:"MANGADEX_REDIS_PREFIX,overwrite"       yaml:"redisPrefix"`
		RedisTTL      time.Duration `env:"MANGADEX_REDIS_TTL,overwrite"          yaml:"redisTTL"`
	} `yaml:"credentials"`

	Filters ContentFilter `yaml:"filters"`

	Development struct {
		SaveResponses        bool   `env:"MANGADEX_SAVE_RESPONSES,overwrite"         yaml:"saveResponses"`
		ResponseSaveLocation string `env:"MANGADEX_RESPONSE_SAVE_LOCATION,overwrite" yaml:"responseSaveLocation"`
	} `yaml:"development"`

	Log struct {
		Level   string   `env:"MANGADEX_LOG_LEVEL,overwrite"   yaml:"logLevel"`
		Outputs []string `env:"MANGADEX_LOG_OUTPUTS,overwrite" yaml:"logOutputs"`
		Format  string   `env:"MANGADEX_LOG_FORMAT,overwrite"  yaml:"logFormat"`
	} `yaml:"log"`
}

// ContentFilter narrows list and feed endpoints. It is passed explicitly to
// every URL builder that honors it.
type ContentFilter struct {
	ContentRating            []string `env:"MANGADEX_CONTENT_RATING,overwrite"              yaml:"contentRating"`
	TranslatedLanguage       []string `env:"MANGADEX_TRANSLATED_LANGUAGE,overwrite"         yaml:"translatedLanguage"`
	OriginalLanguage         []string `env:"MANGADEX_ORIGINAL_LANGUAGE,overwrite"           yaml:"originalLanguage"`
	ExcludedOriginalLanguage []string `env:"MANGADEX_EXCLUDED_ORIGINAL_LANGUAGE,overwrite"  yaml:"excludedOriginalLanguage"`
	ExcludedGroups           []string `env:"MANGADEX_EXCLUDED_GROUPS,overwrite"             yaml:"excludedGroups"`
	ExcludedUploaders        []string `env:"MANGADEX_EXCLUDED_UPLOADERS,overwrite"          yaml:"excludedUploaders"`
	ForcePort443             bool     `env:"MANGADEX_FORCE_PORT_443,overwrite"              yaml:"forcePort443"`
}

// LoadConfig loads the configuration, honoring the -config flag.
//
// The config file path is resolved with this precedence:
//  1. Command-line flag (-config)
//  2. Environment variable (MANGADEX_CONFIGFILE)
//  3. ./config.yaml, falling back to ./config.yml
func (cfg *ClientConfig) LoadConfig() error {
	parsedConfigFlagValue := parseCommandLineArgs()

	configFlagUserSet := false

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			configFlagUserSet = true
		}
	})

	var configFilePath string

	switch {
	case configFlagUserSet:
		configFilePath = parsedConfigFlagValue
	case os.Getenv(configFileEnvVar) != "":
		configFilePath = os.Getenv(configFileEnvVar)
	default:
		configFilePath = parsedConfigFlagValue
		if _, err := os.Stat(configFilePath); os.IsNotExist(err) {
			ymlPath := "./config.yml"
			if _, statErr := os.Stat(ymlPath); statErr == nil {
				configFilePath = ymlPath
			}
		}
	}

	if err := cfg.LoadConfigFrom(configFilePath); err != nil {
		return err
	}

	cfg.print()

	return nil
}

// LoadConfigFrom runs the loading pipeline against an explicit YAML path without
// touching command-line flags. An empty path skips the YAML step.
func (cfg *ClientConfig) LoadConfigFrom(configFilePath string) error {
	cfg.SetDefaults()

	if err := cfg.readYAML(configFilePath); err != nil {
		return fmt.Errorf("error loading YAML config: %w", err)
	}

	if err := useDotEnv(); err != nil {
		return fmt.Errorf("error using .env file: %w", err)
	}

	if err := readEnv(cfg); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}

	if err := cfg.validateAndSet(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	cfg.setupAudit()

	return nil
}

// GetDurationEncoderOption returns a YAML encoder option that marshals
// time.Duration into a human-readable string format (e.g., "30m", "1h").
func GetDurationEncoderOption() yaml.EncodeOption {
	return yaml.CustomMarshaler[time.Duration](
		func(d time.Duration) ([]byte, error) {
			return yaml.Marshal(d.String())
		},
	)
}

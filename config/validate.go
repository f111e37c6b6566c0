// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"codeberg.org/yomu/mangadexkit/core/authenticated"
	"codeberg.org/yomu/mangadexkit/core/utils"
)

// validation errors.
var (
	errInvalidGateCapacity   = errors.New("gate capacity must be at least 1")
	errNegativeGateDelay     = errors.New("gate minimum delay cannot be negative")
	errInvalidCacheSize      = errors.New("cache size must be at least 1 when the cache is enabled")
	errInvalidCacheTTL       = errors.New("cache TTL must be positive when the cache is enabled")
	errInvalidBackend        = errors.New("invalid Credentials.Backend")
	errCredentialSecret      = errors.New("credentials.secret is required for the file backend")
	errCredentialSecretValue = errors.New("credentials.secret is not a valid v4.local key")
	errEmptyCredentialFile   = errors.New("credentials.filePath cannot be empty for the file backend")
	errEmptyRedisAddr        = errors.New("credentials.redisAddr cannot be empty for the redis backend")
	errInvalidContentRating  = errors.New("invalid content rating")
	errInvalidLogLevel       = errors.New("invalid Log.Level")
	errInvalidLogFormat      = errors.New("invalid Log.Format")
)

var contentRatings = []string{"safe", "suggestive", "erotica", "pornographic"}

// validateAndSet validates the configuration and normalizes some fields.
func (cfg *ClientConfig) validateAndSet() error {
	for _, u := range []struct {
		value *string
		name  string
	}{
		{&cfg.API.BaseURL, "API"},
		{&cfg.API.NetworkURL, "network"},
		{&cfg.API.AuthURL, "auth"},
		{&cfg.API.UploadsURL, "uploads"},
		{&cfg.API.ForumsURL, "forums"},
	} {
		parsed, err := utils.ParseURL(*u.value, u.name)
		if err != nil {
			return err
		}

		*u.value = parsed.String()
	}

	if cfg.Gate.Capacity < 1 {
		return errInvalidGateCapacity
	}

	if cfg.Gate.MinDelay < 0 {
		return errNegativeGateDelay
	}

	if cfg.Cache.Enabled {
		if cfg.Cache.Size < 1 {
			return errInvalidCacheSize
		}

		if cfg.Cache.TTL <= 0 {
			return errInvalidCacheTTL
		}
	}

	if err := cfg.validateCredentials(); err != nil {
		return err
	}

	for _, rating := range cfg.Filters.ContentRating {
		if !slices.Contains(contentRatings, rating) {
			return fmt.Errorf("%w: %q", errInvalidContentRating, rating)
		}
	}

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error", "disabled":
	default:
		return fmt.Errorf("%w: %q", errInvalidLogLevel, cfg.Log.Level)
	}

	switch cfg.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: %q", errInvalidLogFormat, cfg.Log.Format)
	}

	return nil
}

func (cfg *ClientConfig) validateCredentials() error {
	switch cfg.Credentials.Backend {
	case MemoryBackend:
		return nil
	case FileBackend:
		if cfg.Credentials.FilePath == "" {
			return errEmptyCredentialFile
		}

		if cfg.Credentials.Secret == "" {
			return fmt.Errorf(
				"%w; generate one and put it in config.yaml:\ncredentials:\n  secret: %q",
				errCredentialSecret, authenticated.NewSecretKeyHex())
		}

		if _, err := authenticated.NewSealerFromHex(cfg.Credentials.Secret); err != nil {
			return fmt.Errorf("%w: %w", errCredentialSecretValue, err)
		}

		return nil
	case RedisBackend:
		if cfg.Credentials.RedisAddr == "" {
			return errEmptyRedisAddr
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", errInvalidBackend, cfg.Credentials.Backend)
	}
}

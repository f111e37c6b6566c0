// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import "time"

const (
	DefaultAPIURL     = "https://api.mangadex.org"
	DefaultNetworkURL = "https://api.mangadex.network"
	DefaultAuthURL    = "https://auth.mangadex.org/realms/mangadex/protocol/openid-connect/token"
	DefaultUploadsURL = "https://uploads.mangadex.org"
	DefaultForumsURL  = "https://forums.mangadex.org"

	// Default request timeout in seconds.
	defaultTimeoutSeconds = 120

	// Default number of requests in flight.
	defaultGateCapacity = 5
	// Default spacing between admissions in milliseconds.
	defaultGateMinDelayMs = 200

	// Default cache TTL in minutes.
	defaultCacheTTLMinutes = 5
)

// SetDefaults populates the configuration with default values.
func (cfg *ClientConfig) SetDefaults() {
	cfg.API.BaseURL = DefaultAPIURL
	cfg.API.NetworkURL = DefaultNetworkURL
	cfg.API.AuthURL = DefaultAuthURL
	cfg.API.UploadsURL = DefaultUploadsURL
	cfg.API.ForumsURL = DefaultForumsURL
	cfg.API.UserAgent = "mangadexkit/" + BuildVersion
	cfg.API.Timeout = defaultTimeoutSeconds * time.Second

	cfg.Gate.Capacity = defaultGateCapacity
	cfg.Gate.MinDelay = defaultGateMinDelayMs * time.Millisecond

	cfg.Cache.Enabled = false
	cfg.Cache.Size = 256
	cfg.Cache.TTL = defaultCacheTTLMinutes * time.Minute
	cfg.Cache.Compress = true

	cfg.Credentials.Backend = MemoryBackend
	cfg.Credentials.FilePath = "./data/credentials"
	cfg.Credentials.RedisAddr = "localhost:6379"
	cfg.Credentials.RedisDB = 0
	cfg.Credentials.RedisPrefix = "mangadexkit"

	cfg.Filters = ContentFilter{
		ContentRating:      []string{"safe", "suggestive"},
		TranslatedLanguage: []string{"en"},
	}

	cfg.Development.SaveResponses = false
	cfg.Development.ResponseSaveLocation = "/tmp/mangadexkit/responses"

	cfg.Log.Level = "info"
	cfg.Log.Outputs = []string{"/dev/stderr"}
	cfg.Log.Format = "console"
}

// Default returns a configuration holding only default values, validated.
// It does not read files or the environment.
func Default() *ClientConfig {
	cfg := &ClientConfig{}
	cfg.SetDefaults()

	// Defaults are always valid.
	_ = cfg.validateAndSet()

	return cfg
}

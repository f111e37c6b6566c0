// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
)

const redactedValue = "[redacted]"

// Redacted returns a copy of cfg with secrets replaced.
func (cfg *ClientConfig) Redacted() ClientConfig {
	printable := *cfg

	if printable.Credentials.Secret != "" {
		printable.Credentials.Secret = redactedValue
	}

	if printable.Credentials.RedisPassword != "" {
		printable.Credentials.RedisPassword = redactedValue
	}

	return printable
}

func (cfg *ClientConfig) print() {
	log.Info().
		Str("version", BuildVersion).
		Str("revision", Revision()).
		Msg("Starting mangadexkit")

	configYAML, err := yaml.MarshalWithOptions(cfg.Redacted(), GetDurationEncoderOption())
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal config to YAML for printing")

		return
	}

	log.Info().
		Msg("Client configuration:")
	fmt.Fprintln(os.Stderr, string(configYAML))
}

// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const minQuotedValueLength = 2

// dotEnvPaths returns the candidate .env locations: the working directory first,
// then the directory holding the running binary.
func dotEnvPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	} else {
		log.Warn().
			Err(err).
			Msg("Could not get current working directory")
	}

	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), ".env"))
	}

	return paths
}

// useDotEnv exports variables from the first .env file found. Variables that
// are already set in the environment are left alone. A missing file is not an error.
func useDotEnv() error {
	for _, envPath := range dotEnvPaths() {
		data, err := os.ReadFile(envPath) // #nosec G304 -- fixed, well-known locations
		if errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err != nil {
			log.Warn().
				Err(err).
				Str("path", envPath).
				Msg("Could not read .env file")

			continue
		}

		for key, value := range parseDotEnv(envPath, data) {
			if _, set := os.LookupEnv(key); set {
				continue
			}

			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("could not set %s from %s: %w", key, envPath, err)
			}
		}

		log.Info().
			Str("path", envPath).
			Msg("Loaded configuration from .env file")

		return nil
	}

	log.Debug().Msg("No .env file found, skipping")

	return nil
}

// parseDotEnv parses KEY=VALUE lines. Blank lines and # comments are skipped,
// an optional "export " prefix is accepted and matching quotes are stripped.
func parseDotEnv(source string, data []byte) map[string]string {
	values := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok || strings.TrimSpace(key) == "" {
			log.Warn().
				Str("path", source).
				Int("line", lineNumber).
				Str("content", line).
				Msg("Invalid format in .env file")

			continue
		}

		value = strings.TrimSpace(value)
		if len(value) >= minQuotedValueLength && value[0] == value[len(value)-1] && (value[0] == '"' || value[0] == '\'') {
			value = value[1 : len(value)-1]
		}

		values[strings.TrimSpace(key)] = value
	}

	return values
}

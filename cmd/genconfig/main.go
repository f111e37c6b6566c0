// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Command genconfig writes the example configuration files under deploy/.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"

	"codeberg.org/yomu/mangadexkit/config"
	"codeberg.org/yomu/mangadexkit/core/audit"
	"codeberg.org/yomu/mangadexkit/core/authenticated"
)

const (
	envOutputFile  = "deploy/.env.example"
	yamlOutputFile = "deploy/config.yaml.example"
	filePerm       = 0o644
	dirPerm        = 0o755

	envFileHeader = `# mangadexkit configuration (via environment variables)
#
# Copy this file to .env and customize the values below.
# Variables set in the environment take precedence over .env.
#
# This file was auto-generated using go run ./cmd/genconfig.

`
	yamlFileHeader = `# mangadexkit configuration (via configuration file)
#
# Copy this file to config.yaml and customize the values below.
#
# This file was auto-generated using go run ./cmd/genconfig.
`
	proxySettingsComment = `
## Network proxy settings
## ref: https://pkg.go.dev/net/http#ProxyFromEnvironment
# HTTPS_PROXY=
# HTTP_PROXY=`

	secretComment = `## Generate a key for the file backend with:
## go run ./cmd/genconfig -secret`
)

func main() {
	audit.SetDefaultLogger()

	printSecret := flag.Bool("secret", false, "print a new credential file key and exit")
	flag.Parse()

	if *printSecret {
		fmt.Println(authenticated.NewSecretKeyHex())

		return
	}

	if err := os.MkdirAll(filepath.Dir(envOutputFile), dirPerm); err != nil {
		log.Fatal().Err(err).Msg("Failed to create deploy directory")
	}

	write(envOutputFile, renderEnv(config.Default()))
	write(yamlOutputFile, renderYAML(config.Default()))
}

func write(path, content string) {
	if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to write example file")
	}

	log.Info().Str("path", path).Msg("Successfully generated example file")
}

// renderEnv lists every recognized variable, commented out, grouped by section.
func renderEnv(cfg *config.ClientConfig) string {
	var sb strings.Builder
	sb.WriteString(envFileHeader)

	section := ""

	for _, v := range config.EnvVars(cfg) {
		if v.Section != section {
			if section != "" {
				sb.WriteString("\n")
			}

			section = v.Section
			fmt.Fprintf(&sb, "## %s\n", section)
		}

		if v.Name == "MANGADEX_CREDENTIAL_SECRET" {
			sb.WriteString(secretComment + "\n")
		}

		fmt.Fprintf(&sb, "# %s=%s\n", v.Name, envValue(v.Value))
	}

	sb.WriteString("\n" + strings.TrimSpace(proxySettingsComment) + "\n")

	return sb.String()
}

// envValue formats a default the way readEnv parses it back. Empty values are
// left blank to prompt user input.
func envValue(value reflect.Value) string {
	switch value.Kind() {
	case reflect.Slice:
		parts := make([]string, value.Len())
		for i := range parts {
			parts[i] = fmt.Sprint(value.Index(i).Interface())
		}

		return strings.Join(parts, ",")
	case reflect.Int64:
		if d, ok := value.Interface().(time.Duration); ok {
			return d.String()
		}
	}

	return fmt.Sprint(value.Interface())
}

// renderYAML marshals the defaults and comments out every value line.
func renderYAML(cfg *config.ClientConfig) string {
	var yamlContent strings.Builder

	encoderOpts := []yaml.EncodeOption{
		config.GetDurationEncoderOption(),
		yaml.Indent(2),
	}
	if err := yaml.NewEncoder(&yamlContent, encoderOpts...).Encode(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal config to YAML")
	}

	var sb strings.Builder
	sb.WriteString(yamlFileHeader)

	for line := range strings.SplitSeq(yamlContent.String(), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		// Top-level keys are section headers.
		if !strings.HasPrefix(line, " ") {
			fmt.Fprintf(&sb, "\n%s\n", line)

			continue
		}

		indentSize := len(line) - len(strings.TrimLeft(line, " "))
		fmt.Fprintf(&sb, "%s# %s\n", strings.Repeat(" ", indentSize), trimmed)
	}

	return sb.String()
}

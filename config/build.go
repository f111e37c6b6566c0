// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"runtime/debug"
	"strings"
	"sync"
)

// BuildVersion is the latest tagged release of mangadexkit.
const BuildVersion string = "v0.4.0"

// Revision describes the VCS state the binary was built from as
// "date-shortsha[+dirty]", or "unknown" when no VCS stamp is present.
var Revision = sync.OnceValue(func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	settings := make(map[string]string, len(info.Settings))
	for _, kv := range info.Settings {
		settings[kv.Key] = kv.Value
	}

	revision := settings["vcs.revision"]
	if len(revision) < 8 {
		return "unknown"
	}

	var b strings.Builder

	b.WriteString(strings.Split(settings["vcs.time"], "T")[0])
	b.WriteString("-")
	b.WriteString(revision[:8])

	if settings["vcs.modified"] == "true" {
		b.WriteString("+dirty")
	}

	return b.String()
})

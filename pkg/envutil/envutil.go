// Package envutil provides shared helpers for environment variable parsing.
//
// It backs the ambient knobs of the benchmark/test harness (seed override,
// verbose logging) — never the core KD-forest/query API itself, which takes
// its configuration as plain Go values (see kdforest.Config).
package envutil

import (
	"os"
	"strconv"
	"strings"
)

// Get returns the env var value or fallback when unset/empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// GetInt returns the parsed integer env var or fallback on missing/invalid values.
func GetInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

// GetBoolLoose parses common bool strings (true/1/yes/on) and uses fallback when unset.
func GetBoolLoose(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(val)
		return val == "true" || val == "1" || val == "yes" || val == "on"
	}
	return fallback
}

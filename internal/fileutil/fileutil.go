// Package fileutil holds small path helpers shared by discovery, the store
// backends and the workflow.
package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// FilenameHash returns the SHA-224 hex digest of a file path. Discovery
// stores it next to the path so records can be matched without comparing
// long path strings.
func FilenameHash(path string) string {
	sum := sha256.Sum224([]byte(path))
	return hex.EncodeToString(sum[:])
}

// MatchesAny reports whether the base name of path matches one of the shell
// glob patterns. Malformed patterns never match.
func MatchesAny(path string, patterns []string) bool {
	base := filepath.Base(strings.TrimSpace(path))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

// ValidatePatterns rejects empty pattern lists and malformed globs.
func ValidatePatterns(patterns []string) error {
	if len(patterns) == 0 {
		return fmt.Errorf("at least one pattern is required")
	}
	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("pattern must not be empty")
		}
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// Package validation provides input validation for identifiers that end up
// in file paths. This package has no dependencies to avoid import cycles.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// pathSafeRegex matches alphanumeric characters, underscores, and hyphens only.
var pathSafeRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateSessionID validates that a session ID doesn't contain path
// separators. Session IDs name state and log files, so a traversal here
// would escape the config directory.
func ValidateSessionID(id string) error {
	if id == "" {
		return errors.New("session ID cannot be empty")
	}
	if strings.ContainsAny(id, "/\\") {
		return fmt.Errorf("invalid session ID %q: contains path separators", id)
	}
	return nil
}

// ValidateThreadID validates that a thread ID contains only safe characters.
// Discord thread IDs are numeric snowflakes, but the store accepts any
// path-safe identifier.
func ValidateThreadID(id string) error {
	if id == "" {
		return errors.New("thread ID cannot be empty")
	}
	if !pathSafeRegex.MatchString(id) {
		return fmt.Errorf("invalid thread ID %q: must be alphanumeric with underscores/hyphens only", id)
	}
	return nil
}

// Package util holds small helpers shared by the commands.
package util

import (
	"strings"

	"github.com/google/uuid"
)

// UniqueName turns a brush name into a usable file stem, falling back to a
// fresh uuid when the name is empty or reduces to nothing.
func UniqueName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if cleaned == "" || strings.Trim(cleaned, "_. ") == "" {
		return uuid.NewString()
	}
	return cleaned
}

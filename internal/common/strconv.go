package common

import (
	"strconv"
	"strings"
)

// AtoiDefault parses a trimmed integer, falling back to def when value is blank or malformed.
func AtoiDefault(value string, def int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

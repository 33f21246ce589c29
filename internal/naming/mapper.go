// Package naming derives unique AWS profile names from account and role names.
package naming

import (
	"strings"

	"github.com/jmreicha/ssoprofile/internal/core"
)

// Map returns the To value of the first mapping whose From equals raw exactly.
// When nothing matches, raw is returned unchanged.
func Map(raw string, mappings []core.Mapping) string {
	for _, m := range mappings {
		if m.From == raw {
			return m.To
		}
	}
	return raw
}

// ParseMapping parses a "from:to" flag value. The value is split on the first
// colon; both sides must be non-empty.
func ParseMapping(value string) (core.Mapping, error) {
	from, to, found := strings.Cut(value, ":")
	if !found {
		return core.Mapping{}, &core.ValidationError{Field: "mapping", Value: value, Reason: "missing ':' separator"}
	}

	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" || to == "" {
		return core.Mapping{}, &core.ValidationError{Field: "mapping", Value: value, Reason: "both sides must be non-empty"}
	}

	return core.Mapping{From: from, To: to}, nil
}

// ParseMappings parses every value with ParseMapping, stopping at the first error.
func ParseMappings(values []string) ([]core.Mapping, error) {
	mappings := make([]core.Mapping, 0, len(values))
	for _, value := range values {
		m, err := ParseMapping(value)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, nil
}

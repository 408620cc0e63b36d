package connectors

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrInvalidIdentifier = errors.New("invalid identifier")

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// maxIdentifierLength is PostgreSQL's NAMEDATALEN - 1.
const maxIdentifierLength = 63

// ValidateIdentifier accepts plain SQL identifiers only (letters, digits, underscore).
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidIdentifier)
	}
	if len(name) > maxIdentifierLength {
		return fmt.Errorf("%w: %q exceeds %d characters", ErrInvalidIdentifier, name, maxIdentifierLength)
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// ParseTableName splits "schema.table" or "table" into validated parts.
// Parts are folded to lower case, as PostgreSQL does for unquoted names.
func ParseTableName(name string) ([]string, error) {
	parts := strings.Split(strings.TrimSpace(name), ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("%w: %q has more than two parts", ErrInvalidIdentifier, name)
	}
	for i, p := range parts {
		if err := ValidateIdentifier(p); err != nil {
			return nil, fmt.Errorf("table %q: %w", name, err)
		}
		parts[i] = strings.ToLower(p)
	}
	return parts, nil
}

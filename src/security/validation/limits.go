package validation

import (
	"fmt"
)

// Config limits
const (
	MaxConfigSize = 1 << 20 // 1 MB
)

// ValidateConfigContentSize checks if config content size is within limits
func ValidateConfigContentSize(size int64) error {
	if size > MaxConfigSize {
		return fmt.Errorf("config content exceeds maximum size: %d bytes (limit: %d)", size, MaxConfigSize)
	}
	return nil
}

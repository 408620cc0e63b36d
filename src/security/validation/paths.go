package validation

import (
	"fmt"
	"os"
	"path/filepath"
)

// ValidateConfigPath resolves configPath and checks that it names a regular
// file within the config size limit. Symlinks are followed, so mounted config
// maps work. The absolute path is returned.
func ValidateConfigPath(configPath string) (string, error) {
	absPath, err := filepath.Abs(filepath.Clean(configPath))
	if err != nil {
		return "", fmt.Errorf("failed to resolve config path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("config path is not a regular file: %s", absPath)
	}
	if err := ValidateConfigContentSize(info.Size()); err != nil {
		return "", err
	}
	return absPath, nil
}

// ValidateSecretPath checks that a secret file reference is absolute and
// already clean.
func ValidateSecretPath(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("file secret path must be absolute, got: %s", path)
	}
	if filepath.Clean(path) != path {
		return fmt.Errorf("file secret path is not clean: %s", path)
	}
	return nil
}

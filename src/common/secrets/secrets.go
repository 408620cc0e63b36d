// Package secrets resolves connection strings from environment variables or files
// and masks credentials before they are logged.
package secrets

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/sandrolain/table-bridge/src/security/validation"
)

// Resolve resolves a secret value supporting multiple formats:
// - "env:NAME" reads from environment variable NAME
// - "file:/absolute/path" reads the contents of a file
// - Any other value is returned as-is
//
// Empty or whitespace-only values return empty string without error.
func Resolve(value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", nil
	}

	if name, ok := strings.CutPrefix(v, "env:"); ok {
		return strings.TrimSpace(os.Getenv(name)), nil
	}

	if path, ok := strings.CutPrefix(v, "file:"); ok {
		if err := validation.ValidateSecretPath(path); err != nil {
			return "", err
		}
		// #nosec G304 - path comes from operator configuration
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read secret file %s: %w", path, err)
		}
		return strings.TrimSpace(string(content)), nil
	}

	return v, nil
}

var (
	kvPassword  = regexp.MustCompile(`(?i)(password\s*=\s*)('[^']*'|\S+)`)
	dsnPassword = regexp.MustCompile(`^([^:@/()]+):([^@]*)@`)
)

const masked = "xxxxx"

// Mask hides the password of a connection string. URL ("postgres://..."),
// key/value ("host=... password=...") and MySQL ("user:pass@tcp(...)/db") forms
// are recognised; other values are returned unchanged.
func Mask(connString string) string {
	if strings.Contains(connString, "://") {
		if u, err := url.Parse(connString); err == nil {
			return u.Redacted()
		}
	}
	if kvPassword.MatchString(connString) {
		return kvPassword.ReplaceAllString(connString, "${1}"+masked)
	}
	if dsnPassword.MatchString(connString) {
		return dsnPassword.ReplaceAllString(connString, "${1}:"+masked+"@")
	}
	return connString
}

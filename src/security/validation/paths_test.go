package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfigPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("source: {}\n"), 0o600))

	link := filepath.Join(dir, "link.yaml")
	require.NoError(t, os.Symlink(file, link))

	big := filepath.Join(dir, "big.yaml")
	require.NoError(t, os.WriteFile(big, []byte(strings.Repeat("a", MaxConfigSize+1)), 0o600))

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "regular file", path: file},
		{name: "symlink to file", path: link},
		{name: "directory", path: dir, wantErr: "not a regular file"},
		{name: "missing", path: filepath.Join(dir, "missing.yaml"), wantErr: "no such file"},
		{name: "too large", path: big, wantErr: "exceeds maximum size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			abs, err := ValidateConfigPath(tt.path)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(abs))
		})
	}
}

func TestValidateSecretPath(t *testing.T) {
	assert.NoError(t, ValidateSecretPath("/run/secrets/db"))
	assert.ErrorContains(t, ValidateSecretPath("secrets/db"), "must be absolute")
	assert.ErrorContains(t, ValidateSecretPath("/run/secrets/../db"), "not clean")
}

func TestValidateConfigContentSize(t *testing.T) {
	assert.NoError(t, ValidateConfigContentSize(MaxConfigSize))
	assert.Error(t, ValidateConfigContentSize(MaxConfigSize+1))
}

package connectors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		wantErr    bool
	}{
		{"simple", "users", false},
		{"underscore", "user_accounts", false},
		{"leading underscore", "_private", false},
		{"digits", "table_123", false},
		{"empty", "", true},
		{"spaces", "user table", true},
		{"dash", "user-table", true},
		{"leading digit", "1table", true},
		{"injection", "users; DROP TABLE users;--", true},
		{"quote", `users"`, true},
		{"too long", strings.Repeat("a", 64), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.identifier)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidIdentifier)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestParseTableName(t *testing.T) {
	parts, err := ParseTableName("teste.tabelaTeste")
	require.NoError(t, err)
	assert.Equal(t, []string{"teste", "tabelateste"}, parts)

	parts, err = ParseTableName("items")
	require.NoError(t, err)
	assert.Equal(t, []string{"items"}, parts)

	_, err = ParseTableName("a.b.c")
	require.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = ParseTableName("teste.")
	require.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = ParseTableName("teste.items;drop")
	require.ErrorIs(t, err, ErrInvalidIdentifier)
}

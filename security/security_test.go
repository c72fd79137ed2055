package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecureToken(t *testing.T) {
	first, err := GenerateSecureToken()
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := GenerateSecureToken()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestValidateContentType(t *testing.T) {
	assert.True(t, ValidateContentType("application/json"))
	assert.True(t, ValidateContentType("multipart/form-data"))
	assert.False(t, ValidateContentType("text/html"))
	assert.False(t, ValidateContentType(""))
}

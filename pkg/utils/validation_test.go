package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("uma42"))
	assert.NoError(t, ValidateUsername("snake_case"))
	assert.Error(t, ValidateUsername("ab"))
	assert.Error(t, ValidateUsername("has spaces"))
	assert.Error(t, ValidateUsername("emoji!"))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("uma@example.edu"))
	assert.Error(t, ValidateEmail("uma"))
	assert.Error(t, ValidateEmail("uma@"))
	assert.Error(t, ValidateEmail("@example.edu"))
}

func TestValidateAssetTitle(t *testing.T) {
	assert.NoError(t, ValidateAssetTitle("Sketchbook"))
	assert.Error(t, ValidateAssetTitle("   "))
	assert.Error(t, ValidateAssetTitle(strings.Repeat("x", 256)))
}

package password

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("secret-password")
	require.NoError(t, err)
	require.NotEqual(t, "secret-password", hash)

	require.True(t, Verify("secret-password", hash))
	require.False(t, Verify("wrong-password", hash))
}

func TestValidatePassword(t *testing.T) {
	require.True(t, ValidatePassword("12345678"))
	require.False(t, ValidatePassword("1234567"))
	require.False(t, ValidatePassword(""))
}

package cryptox

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Run("produces url-safe tokens of expected length", func(t *testing.T) {
		token, err := GenerateToken(TokenSize128)
		require.NoError(t, err)
		require.Len(t, token, 22) // 16 bytes base64url, no padding
		require.NotContains(t, token, "+")
		require.NotContains(t, token, "/")
		require.NotContains(t, token, "=")
	})

	t.Run("distinct calls produce distinct tokens", func(t *testing.T) {
		a, err := GenerateToken(TokenSize256)
		require.NoError(t, err)
		b, err := GenerateToken(TokenSize256)
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	})

	t.Run("rejects non-positive sizes", func(t *testing.T) {
		_, err := GenerateToken(0)
		require.Error(t, err)
		_, err = GenerateToken(-1)
		require.Error(t, err)
	})
}

func TestGenerateSMSCode(t *testing.T) {
	for range 200 {
		code, err := GenerateSMSCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)
	}
}

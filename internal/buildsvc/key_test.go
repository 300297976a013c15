package buildsvc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKeyFile(t *testing.T, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "api-key")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	return p
}

func TestResolveAPIKey_InlineWins(t *testing.T) {
	t.Setenv(apiKeyEnv, "from-env")
	p := writeKeyFile(t, "from-file\n")

	key, err := ResolveAPIKey("inline", p)
	require.NoError(t, err)
	assert.Equal(t, "inline", key)
}

func TestResolveAPIKey_EnvBeatsFile(t *testing.T) {
	t.Setenv(apiKeyEnv, "from-env")
	p := writeKeyFile(t, "from-file\n")

	key, err := ResolveAPIKey("", p)
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
}

func TestResolveAPIKey_FileTrimmed(t *testing.T) {
	t.Setenv(apiKeyEnv, "")
	p := writeKeyFile(t, "  from-file  \n")

	key, err := ResolveAPIKey("", p)
	require.NoError(t, err)
	assert.Equal(t, "from-file", key)
}

func TestResolveAPIKey_ExplicitFileMissing(t *testing.T) {
	t.Setenv(apiKeyEnv, "")

	_, err := ResolveAPIKey("", "/nonexistent/api-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading API key file")
}

func TestResolveAPIKey_NothingSet(t *testing.T) {
	t.Setenv(apiKeyEnv, "")
	t.Setenv("HOME", t.TempDir()) // keep the default key file out of play

	_, err := ResolveAPIKey("", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no API key found")
}

func TestResolveAPIKey_EmptyFileFallsThrough(t *testing.T) {
	t.Setenv(apiKeyEnv, "")
	t.Setenv("HOME", t.TempDir())
	p := writeKeyFile(t, "   \n")

	_, err := ResolveAPIKey("", p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no API key found")
}

package buildsvc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// apiKeyEnv is the environment variable consulted for the build-service key.
const apiKeyEnv = "STACKSIFT_API_KEY"

// ResolveAPIKey resolves the build-service API key. Resolution order: the
// inline value, then the environment, then the contents of keyFile; the
// first non-empty value wins. When keyFile is empty the default key file
// under the user config directory is tried, and its absence is not an error.
func ResolveAPIKey(inline, keyFile string) (string, error) {
	if inline != "" {
		return inline, nil
	}

	if key := os.Getenv(apiKeyEnv); key != "" {
		return key, nil
	}

	explicit := keyFile != ""
	if !explicit {
		keyFile = defaultKeyFile()
	}

	if keyFile != "" {
		data, err := os.ReadFile(keyFile) //nolint:gosec // path is a user-provided key file
		if err != nil {
			if explicit {
				return "", fmt.Errorf("reading API key file: %w", err)
			}
		} else if key := strings.TrimSpace(string(data)); key != "" {
			return key, nil
		}
	}

	return "", fmt.Errorf("no API key found: set --api-key, %s, or an API key file", apiKeyEnv)
}

// defaultKeyFile returns the conventional key file location, or "" when the
// home directory cannot be determined.
func defaultKeyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "stacksift", "api-key")
}

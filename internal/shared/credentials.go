package shared

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// TokenEnvKey names the bearer token in the environment and in the secret file.
const TokenEnvKey = "GENIUS_API_TOKEN"

// LoadToken returns the Genius bearer token.
//
// The environment variable wins; otherwise the KEY=VALUE secret file at path is read.
func LoadToken(path string) (string, error) {
	if token := strings.TrimSpace(os.Getenv(TokenEnvKey)); token != "" {
		return token, nil
	}

	if path == "" {
		return "", fmt.Errorf("%w: no token file configured and %s unset", ErrMissingCredentials, TokenEnvKey)
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read token file %s: %v", ErrMissingCredentials, path, err)
	}

	token := strings.TrimSpace(values[TokenEnvKey])
	if token == "" {
		return "", fmt.Errorf("%w: %s not set in %s", ErrMissingCredentials, TokenEnvKey, path)
	}
	return token, nil
}

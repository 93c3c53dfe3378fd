package fetch

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"marketset/internal/errors"
)

// Credentials holds the Alpaca API key pair. The variable names match the
// vendor's convention so an existing environment keeps working.
type Credentials struct {
	APIKey    string `envconfig:"APCA_API_KEY_ID"`
	APISecret string `envconfig:"APCA_API_SECRET_KEY"`
}

// LoadCredentials reads credentials from the environment, first loading the
// given .env file when it exists. A missing .env file is not an error; absent
// credentials load as an unconfigured (zero) pair.
func LoadCredentials(envFile string) (Credentials, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return Credentials{}, errors.NewConfigError("failed to load .env file", err).
					WithContext("path", envFile)
			}
		}
	}

	var creds Credentials
	if err := envconfig.Process("", &creds); err != nil {
		return Credentials{}, errors.NewConfigError("failed to read credentials from env", err)
	}

	return creds, nil
}

// Configured reports whether both halves of the key pair are present.
func (c Credentials) Configured() bool {
	return c.APIKey != "" && c.APISecret != ""
}

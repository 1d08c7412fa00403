package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvFileVar names an env file that takes precedence over --env.
const EnvFileVar = "FOLIONOTIFY_ENV_FILE"

const defaultEnvFile = ".env"

// loadEnv overlays variables from an env file onto the process environment.
// A missing default file is not an error; a missing explicit one is.
func loadEnv(requested string, explicit bool) (string, error) {
	if custom := strings.TrimSpace(os.Getenv(EnvFileVar)); custom != "" {
		if err := godotenv.Overload(custom); err != nil {
			return "", fmt.Errorf("%s=%s: %w", EnvFileVar, custom, err)
		}
		return custom, nil
	}

	requested = strings.TrimSpace(requested)
	if requested == "" {
		requested = defaultEnvFile
	}
	if err := godotenv.Overload(requested); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("load env file %s: %w", requested, err)
	}
	return requested, nil
}

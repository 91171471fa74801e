package env

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// fileValues holds the pairs read from the .env file at bootstrap. Process
// environment variables win over the file so container deployments can
// override single keys without editing it.
var fileValues map[string]string

// GetEnv returns the configured value for key, or def when neither the
// process environment nor the .env file has it.
func GetEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if v, ok := fileValues[key]; ok {
		return v
	}
	return def
}

// SetupEnvFile loads the nearest .env file, walking up from the working
// directory so binaries under cmd/ find the project root copy. Booting
// without one is a deployment mistake and fails loudly.
func SetupEnvFile() {
	for _, path := range []string{".env", "../.env", "../../.env"} {
		parsed, err := godotenv.Read(path)
		if err != nil {
			continue
		}
		fileValues = parsed
		log.Printf("environment loaded from %s", path)
		return
	}
	panic("no .env file found")
}

// IsDev reports whether the app runs in development mode.
func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}

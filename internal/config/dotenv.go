package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env.local then .env from the working directory.
// Variables already present in the process environment are kept,
// so a deployment can override either file. Returns the files found.
func LoadDotEnv() []string {
	var found []string
	for _, name := range []string{".env.local", ".env"} {
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			found = append(found, name)
		}
	}
	if len(found) == 0 {
		return nil
	}
	if err := godotenv.Load(found...); err != nil {
		return nil
	}
	return found
}

package env

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Dir is where the per-environment .env files live
var Dir = filepath.Join("internal", "config", "env")

// Files returns the .env candidates for the current ENV, most specific first
func Files() []string {
	files := []string{}
	if name := os.Getenv("ENV"); name != "" {
		files = append(files, filepath.Join(Dir, fmt.Sprintf(".env.%s", name)))
	}
	return append(files, filepath.Join(Dir, ".env.development"), ".env")
}

// LoadEnv loads the first .env file that exists. godotenv never overrides a
// variable that is already set, so the real environment always wins.
// It returns the loaded path, or "" when no file was found.
func LoadEnv() string {
	for _, path := range Files() {
		if err := godotenv.Load(path); err == nil {
			return path
		}
	}
	return ""
}

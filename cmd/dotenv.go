package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// loadDotEnv reads path into the process environment. Existing variables
// are kept unless override is set. A missing file is not an error; found
// reports whether one was read.
func loadDotEnv(path string, override bool) (found bool, err error) {
	if path == "" {
		return false, nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	if override {
		return true, godotenv.Overload(path)
	}
	return true, godotenv.Load(path)
}

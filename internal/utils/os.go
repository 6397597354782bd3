package utils

import (
	"os"
	"path/filepath"
)

// ExecutableName returns the name the binary was invoked as.
func ExecutableName() string {
	executable, err := os.Executable()
	if err != nil {
		return "tapboard"
	}
	return filepath.Base(executable)
}

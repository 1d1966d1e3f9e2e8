// Package filex prepares local directories for exported files.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// EnsureDir creates dir (relative paths resolve against the working
// directory) and returns its absolute path.
func EnsureDir(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// StampedName returns prefix-YYYYMMDD-HHMMSS.ext in UTC.
func StampedName(prefix, ext string, t time.Time) string {
	return fmt.Sprintf("%s-%s.%s", prefix, t.UTC().Format("20060102-150405"), ext)
}

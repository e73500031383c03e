// Package export serializes contract result sets to timestamped Excel and
// Parquet artifacts.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const stampLayout = "20060102_150405"

// Filename builds "<prefix>_<YYYYMMDD_HHMMSS>.<ext>" with the prefix
// sanitized for the filesystem.
func Filename(prefix, ext string) string {
	p := strings.TrimSpace(prefix)
	if p == "" {
		p = "secop"
	}
	p = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':':
			return '_'
		}
		return r
	}, p)
	return fmt.Sprintf("%s_%s.%s", p, time.Now().Format(stampLayout), ext)
}

// ensureDir creates dir when needed and returns the full path for name.
func ensureDir(dir, name string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	return filepath.Join(dir, name), nil
}

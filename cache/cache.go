// Package cache is a file cache for rendered link pages. Entries are keyed by
// page id and link code; a content hash in the file name avoids collisions
// after a link is regenerated.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

var cacheRoot = "cache"

// SetRoot overrides the cache directory, mainly for tests.
func SetRoot(dir string) {
	if dir != "" {
		cacheRoot = dir
	}
}

// GetCachePath returns the cache file path for a rendered link page.
func GetCachePath(pageID, code string) string {
	hash := generateHash(pageID + code)
	shortHash := hash[:16]
	cacheDir := filepath.Join(cacheRoot, pageID)
	return filepath.Join(cacheDir, fmt.Sprintf("%s_%s.html", code, shortHash))
}

// generateHash generates an xxHash hash for the given string.
func generateHash(s string) string {
	hash := xxhash.Sum64String(s)
	return fmt.Sprintf("%016x", hash)
}

// EnsureCacheDir ensures the page's cache directory exists.
func EnsureCacheDir(pageID string) error {
	return os.MkdirAll(filepath.Join(cacheRoot, pageID), 0755)
}

// WriteCache writes rendered HTML to the cache file.
func WriteCache(pageID, code, html string) error {
	if err := EnsureCacheDir(pageID); err != nil {
		return err
	}

	return os.WriteFile(GetCachePath(pageID, code), []byte(html), 0644)
}

// ReadCache reads cached HTML if it exists and is not expired.
func ReadCache(pageID, code string, maxAge time.Duration) (string, bool) {
	cachePath := GetCachePath(pageID, code)

	info, err := os.Stat(cachePath)
	if err != nil {
		return "", false
	}

	if time.Since(info.ModTime()) > maxAge {
		return "", false
	}

	content, err := os.ReadFile(cachePath)
	if err != nil {
		return "", false
	}

	return string(content), true
}

// ClearCache removes a single cached rendering.
func ClearCache(pageID, code string) error {
	err := os.Remove(GetCachePath(pageID, code))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ClearPageCache removes every cached rendering of a page. Used when the page
// is deleted, together with its links.
func ClearPageCache(pageID string) error {
	return os.RemoveAll(filepath.Join(cacheRoot, pageID))
}

// ClearOldCache removes cache files older than the specified duration.
func ClearOldCache(maxAge time.Duration) error {
	return filepath.Walk(cacheRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}

		if info.IsDir() {
			return nil
		}

		if !strings.HasSuffix(path, ".html") {
			return nil
		}

		if time.Since(info.ModTime()) > maxAge {
			os.Remove(path)
		}

		return nil
	})
}

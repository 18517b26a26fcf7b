package scanner

import (
	"os"
	"path/filepath"
	"strings"
)

// Whitelist is the set of sanctuary directories exempt from scanning.
// Sanctuary paths are resolved once at construction; membership checks
// resolve the candidate and fail closed when resolution is impossible.
type Whitelist struct {
	sanctuaries []string
}

// NewWhitelist resolves the given sanctuary paths. Entries may use a leading
// "~" for the home directory. Entries that cannot be symlink-resolved (for
// example because they do not exist yet) are kept in cleaned absolute form so
// they still shield future paths.
func NewWhitelist(paths []string) Whitelist {
	sanctuaries := make([]string, 0, len(paths))

	for _, p := range paths {
		p = ExpandHome(p)

		abs, err := filepath.Abs(p)
		if err != nil {
			abs = filepath.Clean(p)
		}

		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}

		sanctuaries = append(sanctuaries, abs)
	}

	return Whitelist{sanctuaries: sanctuaries}
}

// Contains reports whether path equals or descends from any sanctuary.
// A path that cannot be resolved is treated as whitelisted: resolution
// failure never yields "safe to scan".
func (w Whitelist) Contains(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return true
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return true
	}

	for _, sanctuary := range w.sanctuaries {
		if resolved == sanctuary || pathWithin(sanctuary, resolved) {
			return true
		}
	}

	return false
}

// pathWithin reports whether child is strictly inside parent.
func pathWithin(parent, child string) bool {
	return strings.HasPrefix(child, parent+string(os.PathSeparator))
}

// ExpandHome replaces a leading "~" with the current user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~"+string(os.PathSeparator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}

		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	return path
}

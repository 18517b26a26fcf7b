//go:build !unix

package scanner

import "os"

// inodeOf has no meaningful value on this platform.
func inodeOf(os.FileInfo) uint64 {
	return 0
}

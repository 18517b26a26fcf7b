//go:build unix

package scanner

import (
	"os"
	"syscall"
)

// inodeOf extracts the inode number from a stat result. Advisory only.
func inodeOf(info os.FileInfo) uint64 {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return uint64(st.Ino)
	}

	return 0
}

//go:build unix

package nuker

import (
	"fmt"
	"os"
	"syscall"
)

// ownedByUID reports whether the file at path belongs to uid.
func ownedByUID(path string, uid int) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return false, fmt.Errorf("no ownership information for %s", path)
	}

	return int(st.Uid) == uid, nil
}

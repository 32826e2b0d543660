//go:build unix

package scanner

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// getFileID identifies the inode behind path so hard links can be told apart
// from copies.
func getFileID(path string) string {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return ""
	}
	return fmt.Sprintf("dev=%d,inode=%d", uint64(st.Dev), uint64(st.Ino))
}

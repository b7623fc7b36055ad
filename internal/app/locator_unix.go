//go:build unix

package app

import (
	"io/fs"
	"syscall"
)

// fileID is the physical identity of a filesystem object.
type fileID struct {
	dev uint64
	ino uint64
}

// identify extracts the (device, inode) pair from a stat result. The second
// return is false when the platform does not expose one.
func identify(info fs.FileInfo) (fileID, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileID{}, false
	}
	return fileID{dev: uint64(st.Dev), ino: uint64(st.Ino)}, true
}

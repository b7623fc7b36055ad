//go:build !unix

package app

import "io/fs"

type fileID struct {
	dev uint64
	ino uint64
}

// identify has no physical identity to offer on platforms without
// stat device/inode numbers; every entry is treated as unseen.
func identify(info fs.FileInfo) (fileID, bool) {
	return fileID{}, false
}

//go:build darwin

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// CopyFile tries clonefile first (CoW whole-file copy on APFS), then falls
// back to read/write.
func CopyFile(srcPath, dstPath string) (int64, error) {
	err := unix.Clonefile(srcPath, dstPath, 0)
	if err == nil {
		info, statErr := os.Stat(dstPath)
		if statErr != nil {
			return 0, statErr
		}
		return info.Size(), nil
	}
	if !isFallbackCloneErr(err) {
		return 0, err
	}
	return copyViaStream(srcPath, dstPath)
}

func isFallbackCloneErr(err error) bool {
	switch err {
	case unix.ENOTSUP, unix.EXDEV, unix.EEXIST:
		return true
	}
	return false
}

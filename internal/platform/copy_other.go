//go:build !linux && !darwin

package platform

// CopyFile copies with buffered read/write on platforms without a faster
// syscall path.
func CopyFile(srcPath, dstPath string) (int64, error) {
	return copyViaStream(srcPath, dstPath)
}

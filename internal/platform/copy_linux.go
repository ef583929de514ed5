//go:build linux

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// CopyFile copies srcPath to dstPath using the most efficient method the
// kernel and filesystems support, falling through on unsupported or
// cross-device errors: copy_file_range, then sendfile, then read/write.
func CopyFile(srcPath, dstPath string) (int64, error) {
	n, err := copyFileRange(srcPath, dstPath)
	if err == nil {
		return n, nil
	}
	if !isFallbackErr(err) {
		return n, err
	}

	n, err = copySendfile(srcPath, dstPath)
	if err == nil {
		return n, nil
	}
	if !isFallbackErr(err) {
		return n, err
	}

	return copyViaStream(srcPath, dstPath)
}

func copyFileRange(srcPath, dstPath string) (int64, error) {
	in, out, size, err := openEnds(srcPath, dstPath)
	if err != nil {
		return 0, err
	}
	defer in.Close()
	defer out.Close()

	preallocate(out, size)

	var written int64
	for written < size {
		n, err := unix.CopyFileRange(
			int(in.Fd()), nil, int(out.Fd()), nil, int(size-written), 0)
		if err != nil {
			return written, err
		}
		if n == 0 {
			break
		}
		written += int64(n)
	}
	if err := out.Sync(); err != nil {
		return written, err
	}
	return written, nil
}

func copySendfile(srcPath, dstPath string) (int64, error) {
	in, out, size, err := openEnds(srcPath, dstPath)
	if err != nil {
		return 0, err
	}
	defer in.Close()
	defer out.Close()

	preallocate(out, size)

	var written int64
	for written < size {
		n, err := unix.Sendfile(int(out.Fd()), int(in.Fd()), nil, int(size-written))
		if err != nil {
			return written, err
		}
		if n == 0 {
			break
		}
		written += int64(n)
	}
	if err := out.Sync(); err != nil {
		return written, err
	}
	return written, nil
}

func openEnds(srcPath, dstPath string) (in, out *os.File, size int64, err error) {
	in, err = os.Open(srcPath)
	if err != nil {
		return nil, nil, 0, err
	}
	info, err := in.Stat()
	if err != nil {
		in.Close()
		return nil, nil, 0, err
	}
	out, err = os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		in.Close()
		return nil, nil, 0, err
	}
	return in, out, info.Size(), nil
}

// isFallbackErr reports whether err should trigger the next copy strategy.
func isFallbackErr(err error) bool {
	switch err {
	case unix.ENOSYS, unix.EXDEV, unix.EINVAL, unix.ENOTSUP:
		return true
	}
	if e, ok := err.(*os.PathError); ok {
		return isFallbackErr(e.Err)
	}
	return false
}

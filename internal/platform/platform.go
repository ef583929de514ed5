// Package platform provides the most efficient whole-file copy available
// on the running OS. It backs the cross-filesystem fallback of the move
// operation; rename is always tried first by the caller.
package platform

import (
	"io"
	"os"
	"sync"
)

const bufferSize = 1 << 20 // 1 MiB

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, bufferSize)
		return &b
	},
}

// copyStream copies src to dst with a pooled buffer. Works on every
// platform; the OS-specific CopyFile implementations fall back to it.
func copyStream(dst *os.File, src *os.File) (int64, error) {
	bufp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bufp)
	return io.CopyBuffer(dst, src, *bufp)
}

// copyViaStream opens both ends and copies with copyStream, preserving the
// source's permission bits and syncing the destination before returning.
func copyViaStream(srcPath, dstPath string) (int64, error) {
	in, err := os.Open(srcPath)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}

	out, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, err
	}

	n, err := copyStream(out, in)
	if err != nil {
		out.Close()
		return n, err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return n, err
	}
	return n, out.Close()
}

package engine

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
	"golang.org/x/time/rate"
)

// HashChunkSize is the fixed read size for streaming digests, so memory use
// is O(1) in file size.
const HashChunkSize = 8 * 1024

// DigestFile computes the BLAKE3 digest of the file at path, returning the
// hex-encoded digest. A nil limiter reads at full speed. A zero-byte file
// yields the digest of the empty input; all empty files therefore share one
// digest and are reported as mutual duplicates.
func DigestFile(ctx context.Context, path string, limiter *rate.Limiter) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &FileReadError{Path: path, Err: err}
	}
	defer f.Close()

	var r io.Reader = f
	if limiter != nil {
		r = &rateLimitedReader{r: f, limiter: limiter, ctx: ctx}
	}

	h := blake3.New()
	buf := make([]byte, HashChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", &FileReadError{Path: path, Err: err}
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// NewBWLimiter creates a rate.Limiter that caps aggregate hash-read
// throughput to bytesPerSec. The burst allows whole chunks through without
// blocking on every small read.
func NewBWLimiter(bytesPerSec int64) (*rate.Limiter, error) {
	if bytesPerSec <= 0 {
		return nil, fmt.Errorf("bandwidth limit must be positive, got %d", bytesPerSec)
	}
	burst := 1 << 20 // 1 MB
	if bytesPerSec < int64(burst) {
		burst = int(bytesPerSec)
	}
	if burst < HashChunkSize {
		burst = HashChunkSize
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst), nil
}

// rateLimitedReader wraps an io.Reader and enforces a shared rate limit.
type rateLimitedReader struct {
	r       io.Reader
	limiter *rate.Limiter
	ctx     context.Context
}

func (rl *rateLimitedReader) Read(p []byte) (int, error) {
	n, err := rl.r.Read(p)
	if n > 0 {
		if waitErr := rl.limiter.WaitN(rl.ctx, n); waitErr != nil {
			return n, waitErr
		}
	}
	return n, err
}

package storage

import (
	"context"
	"fmt"
	"io"
)

// ByteRange is a contiguous slice of an object's bytes. Both offsets are
// inclusive, matching HTTP Range header semantics.
type ByteRange struct {
	Start int64
	End   int64
}

// Len returns the number of bytes the range covers.
func (r ByteRange) Len() int64 {
	return r.End - r.Start + 1
}

// String renders the range as an HTTP Range header value.
func (r ByteRange) String() string {
	return fmt.Sprintf("bytes=%d-%d", r.Start, r.End)
}

// ObjectStore provides read access to objects addressed by bucket and key.
// Implementations must be safe for use by concurrent callers.
type ObjectStore interface {
	// Open returns the object's body, restricted to rng when non-nil.
	// The returned reader is not restartable; the caller must close it.
	Open(ctx context.Context, bucket string, key string, rng *ByteRange) (io.ReadCloser, error)
	// SizeOf returns the object's size in bytes.
	SizeOf(ctx context.Context, bucket string, key string) (int64, error)
}

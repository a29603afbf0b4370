package transfer

import (
	"github.com/cloudfetch/s3fetch/pkg/storage"
)

// partition splits [0, size) into successive byte ranges of chunkSize bytes.
// Range offsets are inclusive and the final range is clamped to size-1, so
// the ranges cover every byte exactly once. A zero-size object yields no
// ranges.
func partition(size int64, chunkSize int64) []storage.ByteRange {
	if size <= 0 || chunkSize <= 0 {
		return nil
	}
	ranges := make([]storage.ByteRange, 0, (size+chunkSize-1)/chunkSize)
	for start := int64(0); start < size; start += chunkSize {
		end := start + chunkSize - 1
		if end > size-1 {
			end = size - 1
		}
		ranges = append(ranges, storage.ByteRange{Start: start, End: end})
	}
	return ranges
}

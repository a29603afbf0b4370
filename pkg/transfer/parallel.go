package transfer

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/cloudfetch/s3fetch/pkg/storage"
)

type rangeResult struct {
	data []byte
	err  error
}

// fetchRanges downloads the object as concurrent byte ranges and reassembles
// them in ascending offset order. At most t.concurrency range requests are in
// flight at once. Results are awaited in partition order, not completion
// order, so the destination is written strictly sequentially no matter when
// each fetch finishes.
func (t *Transfer) fetchRanges(ctx context.Context, log *slog.Logger, req Request) (int64, error) {
	file, err := os.Create(req.Destination)
	if err != nil {
		return 0, err
	}
	defer func() { _ = file.Close() }()
	writer := bufio.NewWriter(file)

	size, err := t.store.SizeOf(ctx, req.Bucket, req.Key)
	if err != nil {
		return 0, err
	}
	ranges := partition(size, t.chunkSize)
	log.Debug("partitioned object", "size", humanize.IBytes(uint64(size)), "ranges", len(ranges))

	// The first failure cancels this context so in-flight siblings stop
	// instead of fetching ranges nobody will consume.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, t.concurrency)
	results := make([]chan rangeResult, len(ranges))
	for i, rng := range ranges {
		ch := make(chan rangeResult, 1)
		results[i] = ch
		go func(rng storage.ByteRange, ch chan<- rangeResult) {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				ch <- rangeResult{err: ctx.Err()}
				return
			}
			defer func() { <-sem }()
			data, err := t.fetchRange(ctx, req, rng)
			ch <- rangeResult{data: data, err: err}
		}(rng, ch)
	}

	var written int64
	for _, ch := range results {
		res := <-ch
		if res.err != nil {
			cancel()
			return written, res.err
		}
		n, err := writer.Write(res.data)
		written += int64(n)
		if err != nil {
			cancel()
			return written, err
		}
	}
	if err := writer.Flush(); err != nil {
		return written, err
	}
	log.Debug("reassembly complete", "bytes", written)
	return written, nil
}

// fetchRange drains one ranged GET fully into memory. Errors propagate as-is
// with no retry.
func (t *Transfer) fetchRange(ctx context.Context, req Request, rng storage.ByteRange) ([]byte, error) {
	body, err := t.store.Open(ctx, req.Bucket, req.Key, &rng)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	buf := bytes.NewBuffer(make([]byte, 0, rng.Len()))
	if _, err := io.Copy(buf, body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

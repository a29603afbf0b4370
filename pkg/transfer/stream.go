package transfer

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// streamToFile downloads the object with a single unranged GET, writing the
// body to the destination as it arrives. Memory use is bounded by the copy
// buffer, not the object size.
func (t *Transfer) streamToFile(ctx context.Context, log *slog.Logger, req Request) (int64, error) {
	file, err := os.Create(req.Destination)
	if err != nil {
		return 0, err
	}
	defer func() { _ = file.Close() }()

	body, err := t.store.Open(ctx, req.Bucket, req.Key, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = body.Close() }()

	written, err := io.Copy(file, body)
	if err != nil {
		return written, err
	}
	log.Debug("stream complete", "bytes", written)
	return written, nil
}

package transfer

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/cloudfetch/s3fetch/pkg/storage"
)

const (
	DefaultChunkSize   = 10 * 1024 * 1024
	DefaultConcurrency = 10
)

// Request describes a single download. It is never mutated once built.
type Request struct {
	Bucket      string
	Key         string
	Destination string
	Multipart   bool
}

// Transfer downloads objects from an ObjectStore to local files.
type Transfer struct {
	store       storage.ObjectStore
	chunkSize   int64
	concurrency int
	log         *slog.Logger
}

type Option func(*Transfer)

// WithChunkSize sets the byte range width used by multipart downloads.
func WithChunkSize(n int64) Option {
	return func(t *Transfer) {
		if n > 0 {
			t.chunkSize = n
		}
	}
}

// WithConcurrency bounds the number of in-flight range requests.
func WithConcurrency(n int) Option {
	return func(t *Transfer) {
		if n > 0 {
			t.concurrency = n
		}
	}
}

func New(store storage.ObjectStore, opts ...Option) *Transfer {
	t := &Transfer{
		store:       store,
		chunkSize:   DefaultChunkSize,
		concurrency: DefaultConcurrency,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run downloads the requested object to req.Destination and returns the
// number of bytes written. On failure a partially written destination file
// may remain; cleaning it up is the caller's concern.
func (t *Transfer) Run(ctx context.Context, req Request) (int64, error) {
	log := t.log.With("transfer_id", uuid.New().String(), "bucket", req.Bucket, "key", req.Key)
	log.Debug("starting transfer", "destination", req.Destination, "multipart", req.Multipart)
	if req.Multipart {
		return t.fetchRanges(ctx, log, req)
	}
	return t.streamToFile(ctx, log, req)
}

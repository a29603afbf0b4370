package transfer_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudfetch/s3fetch/pkg/storage"
	"github.com/cloudfetch/s3fetch/pkg/transfer"
)

const testChunkSize = 64 * 1024

func testPattern(n int64) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func writeObject(t *testing.T, root, bucket, key string, data []byte) {
	t.Helper()
	dir := filepath.Join(root, bucket)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, key), data, 0o644))
}

func TestTransfer_RoundTrip(t *testing.T) {
	sizes := map[string]int64{
		"empty object":            0,
		"single byte":             1,
		"exactly one chunk":       testChunkSize,
		"chunks plus a remainder": 2*testChunkSize + 7,
	}
	for name, size := range sizes {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			data := testPattern(size)
			writeObject(t, root, "bucket", "object.bin", data)
			tr := transfer.New(storage.NewLocalStore(root), transfer.WithChunkSize(testChunkSize))

			for _, multipart := range []bool{false, true} {
				dest := filepath.Join(t.TempDir(), "out.bin")
				written, err := tr.Run(context.Background(), transfer.Request{
					Bucket:      "bucket",
					Key:         "object.bin",
					Destination: dest,
					Multipart:   multipart,
				})
				require.NoError(t, err)
				assert.Equal(t, size, written)

				got, err := os.ReadFile(dest)
				require.NoError(t, err)
				assert.True(t, bytes.Equal(data, got), "destination content differs from source (multipart=%v)", multipart)
			}
		})
	}
}

func TestTransfer_OverwritesDestination(t *testing.T) {
	root := t.TempDir()
	data := testPattern(100)
	writeObject(t, root, "bucket", "object.bin", data)
	tr := transfer.New(storage.NewLocalStore(root), transfer.WithChunkSize(testChunkSize))

	dest := filepath.Join(t.TempDir(), "out.bin")
	require.NoError(t, os.WriteFile(dest, testPattern(5000), 0o644))

	written, err := tr.Run(context.Background(), transfer.Request{
		Bucket:      "bucket",
		Key:         "object.bin",
		Destination: dest,
		Multipart:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), written)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestTransfer_MissingObject(t *testing.T) {
	tr := transfer.New(storage.NewLocalStore(t.TempDir()))
	for _, multipart := range []bool{false, true} {
		_, err := tr.Run(context.Background(), transfer.Request{
			Bucket:      "bucket",
			Key:         "no-such-object",
			Destination: filepath.Join(t.TempDir(), "out.bin"),
			Multipart:   multipart,
		})
		assert.ErrorIs(t, err, storage.ErrDoesNotExist)
	}
}

// fakeStore serves an in-memory object and can delay or fail individual
// range fetches, keyed by range start offset.
type fakeStore struct {
	data    []byte
	delays  map[int64]time.Duration
	failAt  map[int64]error
	sizeErr error
}

func (f *fakeStore) SizeOf(_ context.Context, _ string, _ string) (int64, error) {
	if f.sizeErr != nil {
		return 0, f.sizeErr
	}
	return int64(len(f.data)), nil
}

func (f *fakeStore) Open(ctx context.Context, _ string, _ string, rng *storage.ByteRange) (io.ReadCloser, error) {
	if rng == nil {
		return io.NopCloser(bytes.NewReader(f.data)), nil
	}
	if d := f.delays[rng.Start]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.failAt[rng.Start]; err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(f.data[rng.Start : rng.End+1])), nil
}

func TestTransfer_ReassemblyOrderIndependentOfCompletionOrder(t *testing.T) {
	data := testPattern(256)
	// Earlier ranges finish last; reassembly must still write in offset order.
	store := &fakeStore{
		data: data,
		delays: map[int64]time.Duration{
			0:  50 * time.Millisecond,
			32: 30 * time.Millisecond,
			64: 10 * time.Millisecond,
		},
	}
	tr := transfer.New(store, transfer.WithChunkSize(32), transfer.WithConcurrency(8))

	dest := filepath.Join(t.TempDir(), "out.bin")
	written, err := tr.Run(context.Background(), transfer.Request{
		Bucket:      "bucket",
		Key:         "object.bin",
		Destination: dest,
		Multipart:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(256), written)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestTransfer_BoundedConcurrencyStillCovers(t *testing.T) {
	data := testPattern(10 * 32)
	store := &fakeStore{data: data}
	tr := transfer.New(store, transfer.WithChunkSize(32), transfer.WithConcurrency(2))

	dest := filepath.Join(t.TempDir(), "out.bin")
	written, err := tr.Run(context.Background(), transfer.Request{
		Bucket:      "bucket",
		Key:         "object.bin",
		Destination: dest,
		Multipart:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), written)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestTransfer_RangeFailureAbortsTransfer(t *testing.T) {
	errFetch := errors.New("simulated transport error")
	store := &fakeStore{
		data:   testPattern(256),
		failAt: map[int64]error{64: errFetch},
	}
	tr := transfer.New(store, transfer.WithChunkSize(32))

	_, err := tr.Run(context.Background(), transfer.Request{
		Bucket:      "bucket",
		Key:         "object.bin",
		Destination: filepath.Join(t.TempDir(), "out.bin"),
		Multipart:   true,
	})
	assert.ErrorIs(t, err, errFetch)
}

func TestTransfer_SizeUnavailableFailsMultipart(t *testing.T) {
	store := &fakeStore{
		data:    testPattern(128),
		sizeErr: storage.ErrSizeUnavailable,
	}
	tr := transfer.New(store, transfer.WithChunkSize(32))

	_, err := tr.Run(context.Background(), transfer.Request{
		Bucket:      "bucket",
		Key:         "object.bin",
		Destination: filepath.Join(t.TempDir(), "out.bin"),
		Multipart:   true,
	})
	assert.ErrorIs(t, err, storage.ErrSizeUnavailable)

	// The sequential strategy never needs the size.
	written, err := tr.Run(context.Background(), transfer.Request{
		Bucket:      "bucket",
		Key:         "object.bin",
		Destination: filepath.Join(t.TempDir(), "out.bin"),
		Multipart:   false,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(128), written)
}

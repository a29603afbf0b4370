package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

var _ ObjectStore = &LocalStore{}

// LocalStore serves objects from a directory tree, one subdirectory per
// bucket. It gives tests a store with real file semantics.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (l *LocalStore) path(bucket string, key string) string {
	return filepath.Join(l.root, bucket, filepath.FromSlash(key))
}

func (l *LocalStore) Open(_ context.Context, bucket string, key string, rng *ByteRange) (io.ReadCloser, error) {
	handle, err := os.Open(l.path(bucket, key))
	if os.IsNotExist(err) {
		return nil, ErrDoesNotExist
	} else if err != nil {
		return nil, err
	}
	if rng == nil {
		return handle, nil
	}
	if _, err := handle.Seek(rng.Start, io.SeekStart); err != nil {
		_ = handle.Close()
		return nil, err
	}
	return &localReader{
		original:    handle,
		limitReader: io.LimitReader(handle, rng.Len()),
	}, nil
}

func (l *LocalStore) SizeOf(_ context.Context, bucket string, key string) (int64, error) {
	stat, err := os.Stat(l.path(bucket, key))
	if os.IsNotExist(err) {
		return 0, ErrDoesNotExist
	} else if err != nil {
		return 0, err
	}
	return stat.Size(), nil
}

type localReader struct {
	original    io.Closer
	limitReader io.Reader
}

func (l *localReader) Read(p []byte) (n int, err error) {
	return l.limitReader.Read(p)
}

func (l *localReader) Close() error {
	return l.original.Close()
}

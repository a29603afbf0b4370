package storage

import "errors"

var (
	ErrDoesNotExist    = errors.New("object does not exist")
	ErrAccessDenied    = errors.New("access denied")
	ErrSizeUnavailable = errors.New("object size unavailable")
)

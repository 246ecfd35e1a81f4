package storage

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when no Supabase credentials are present.
var ErrNotConfigured = errors.New("storage not configured")

// StorageUnavailableError wraps a transport failure talking to the bucket.
type StorageUnavailableError struct {
	Op  string
	Err error
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable during %s: %v", e.Op, e.Err)
}

func (e *StorageUnavailableError) Unwrap() error {
	return e.Err
}

// StorageRejectedError reports an error answer from the storage API.
type StorageRejectedError struct {
	Op  string
	Err error
}

func (e *StorageRejectedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("storage rejected %s", e.Op)
	}
	return fmt.Sprintf("storage rejected %s: %v", e.Op, e.Err)
}

func (e *StorageRejectedError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err is a StorageUnavailableError.
func IsUnavailable(err error) bool {
	var target *StorageUnavailableError
	return errors.As(err, &target)
}

// IsRejected reports whether err is a StorageRejectedError.
func IsRejected(err error) bool {
	var target *StorageRejectedError
	return errors.As(err, &target)
}

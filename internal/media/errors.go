package media

import (
	"errors"
	"fmt"
)

// ErrPathTaken means the computed storage path belongs to another article
var ErrPathTaken = errors.New("storage path owned by another article")

// DecodeError is a malformed inline payload. The occurrence is skipped.
type DecodeError struct {
	Index int
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("inline image %d: decode: %v", e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// CodecError means the image library could not process the payload
type CodecError struct {
	Index int
	Err   error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("inline image %d: codec: %v", e.Index, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

// StorageWriteError means persisting an asset (file or record) failed
type StorageWriteError struct {
	Path string
	Err  error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("write asset %s: %v", e.Path, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

// StorageDeleteError means removing an asset (file or record) failed
type StorageDeleteError struct {
	Path string
	Err  error
}

func (e *StorageDeleteError) Error() string {
	return fmt.Sprintf("delete asset %s: %v", e.Path, e.Err)
}

func (e *StorageDeleteError) Unwrap() error { return e.Err }

// Consistency kinds
const (
	MissingFile   = "missing_file"   // record without backing file
	UntrackedFile = "untracked_file" // file without record
)

// ConsistencyError is a mismatch between asset records and stored files.
// It is reported for operator remediation and never repaired implicitly.
type ConsistencyError struct {
	Path string
	Kind string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("asset %s: %s", e.Path, e.Kind)
}

// ErrorKind names the error kind of a per-occurrence failure
func ErrorKind(err error) string {
	var (
		decErr   *DecodeError
		codecErr *CodecError
		writeErr *StorageWriteError
		delErr   *StorageDeleteError
	)
	switch {
	case errors.As(err, &decErr):
		return "decode_error"
	case errors.As(err, &codecErr):
		return "codec_error"
	case errors.As(err, &writeErr):
		return "storage_write_error"
	case errors.As(err, &delErr):
		return "storage_delete_error"
	default:
		return "error"
	}
}

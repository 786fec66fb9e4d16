package loader

import "errors"

var (
	// ErrUnsupportedFormat is returned when a file extension has no registered backend.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrInvalidHeader is returned when a file does not start with the expected magic.
	ErrInvalidHeader = errors.New("invalid file header")

	// ErrTruncated is returned when a section ends before its declared contents.
	ErrTruncated = errors.New("unexpected end of data")

	// ErrInvalidReference is returned when a vertex, IK chain or skin refers to a bone or
	// vertex that does not exist.
	ErrInvalidReference = errors.New("invalid index reference")
)

// Package errs defines the error kinds shared by the uninstall log packages.
//
// Call sites wrap a kind with context, for example
//
//	errors.Wrapf(errs.ErrChecksum, "block crc %08x, expected %08x", got, want)
//
// and callers test the kind with errors.Is.
package errs

import "github.com/cockroachdb/errors"

var (
	// ErrFormat reports a structure that violates a fixed-layout invariant,
	// such as a block whose Size is not the complement of NotSize.
	ErrFormat = errors.New("format integrity error")

	// ErrChecksum reports a header or block CRC32 mismatch.
	ErrChecksum = errors.New("checksum mismatch")

	// ErrMode reports a read on a write-mode stream or a write on a read-mode stream.
	ErrMode = errors.New("operation not valid in this mode")

	// ErrUnsupported reports seek, truncate or position operations on a block stream.
	ErrUnsupported = errors.New("operation not supported")

	// ErrTruncated reports fewer bytes than a declared length requires.
	ErrTruncated = errors.New("truncated input")

	// ErrShortBuffer reports an encode destination too small for the value.
	ErrShortBuffer = errors.New("destination buffer too small")
)

// IsIntegrity reports whether err is one of the kinds produced by damaged input.
func IsIntegrity(err error) bool {
	return errors.Is(err, ErrFormat) || errors.Is(err, ErrChecksum) || errors.Is(err, ErrTruncated)
}

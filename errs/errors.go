// Package errs defines the sentinel errors returned by mtcomp.
//
// Errors fall into four groups:
//
//   - Input validation: ErrNilSource, ErrNilDestination, ErrInvalidWindow.
//     Returned immediately, before any work is scheduled.
//   - Frame validation: ErrZeroPartitions, ErrInvalidFrame. A stream that
//     carries the RAP magic word but describes an impossible partition
//     table is rejected without dereferencing it further.
//   - Capacity: ErrDstTooSmall. The caller-provided destination buffer
//     cannot hold the result; use CompressBound to size it.
//   - Integrity: ErrChecksumMismatch. Every partition decoded cleanly but
//     the combined partition checksums disagree with the stream checksum
//     recorded by the producer.
//
// Codec failures are not sentinels; the first failing partition's error is
// wrapped with its partition index and returned verbatim otherwise.
package errs

import "errors"

var (
	// ErrNilSource is returned when a required source buffer is nil.
	ErrNilSource = errors.New("source buffer is nil")

	// ErrNilDestination is returned when a required destination buffer is nil.
	ErrNilDestination = errors.New("destination buffer is nil")

	// ErrInvalidWindow is returned when the window length or window factor
	// tuning knob is not positive.
	ErrInvalidWindow = errors.New("window length and window factor must be positive")

	// ErrZeroPartitions is returned when a parsed RAP frame records zero
	// main-thread partitions. Such a frame is corrupt and fatal.
	ErrZeroPartitions = errors.New("RAP frame records zero partitions")

	// ErrInvalidFrame is returned when a RAP frame is truncated or its
	// partition records point outside the stream.
	ErrInvalidFrame = errors.New("RAP frame is truncated or corrupt")

	// ErrDstTooSmall is returned when the destination buffer cannot hold
	// the compressed or decompressed output.
	ErrDstTooSmall = errors.New("destination buffer too small")

	// ErrChecksumMismatch is returned after a fully successful decode when
	// the combined per-partition checksums do not match the stream checksum
	// embedded by the producer.
	ErrChecksumMismatch = errors.New("combined partition checksum does not match stream checksum")
)

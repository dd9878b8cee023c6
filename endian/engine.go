// Package endian provides byte order utilities for binary encoding and decoding.
//
// This package extends Go's standard encoding/binary package by combining
// ByteOrder and AppendByteOrder interfaces into a unified EndianEngine
// interface, so fixed-layout codecs can take one engine value for both
// in-place writes and appends.
//
// # Basic Usage
//
// Most users should use GetLittleEndianEngine(), as the RAP wire frame is
// always little-endian:
//
//	import "github.com/arloliu/mtcomp/endian"
//
//	engine := endian.GetLittleEndianEngine()
//	engine.PutUint64(buf[0:8], magicWord)
//
// The zlib trailer is the one big-endian field in the format; it uses
// GetBigEndianEngine().
//
// # Thread Safety
//
// The returned EndianEngine instances are immutable and stateless, safe for
// concurrent use.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library, making it fully compatible with existing Go code while
// providing access to both read/write and append operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// Package block frames a byte stream as a sequence of CRC32-protected blocks.
//
// Each block is a 12-byte header followed by its payload:
//
//	[Size(4)][NotSize(4)][CRC32(4)][payload: Size bytes]
//
// NotSize is the bitwise complement of Size and CRC32 (IEEE) covers the payload.
// A stream is any number of such blocks; readers see one contiguous byte stream
// and never need to know where block boundaries fall.
package block

import (
	"encoding/binary"
	"hash/crc32"
)

const (
	// HeaderSize is the size of the header preceding every block payload
	HeaderSize = 12

	// DefaultBlockSize is the staging size of a write-mode stream
	DefaultBlockSize = 4 << 10
)

// Mode is fixed when a Stream is constructed.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Config holds configuration for a block stream
type Config struct {
	LeaveOpen    bool // Do not close the underlying stream on Close
	SkipChecksum bool // Skip Size/NotSize and CRC32 verification (read mode)
	BlockSize    int  // Staging size in write mode (0 = DefaultBlockSize)
}

// Header is the fixed header of one block
type Header struct {
	Size    uint32
	NotSize uint32
	CRC32   uint32
}

// NewHeader builds the header for payload
func NewHeader(payload []byte) Header {
	size := uint32(len(payload))
	return Header{
		Size:    size,
		NotSize: ^size,
		CRC32:   crc32.ChecksumIEEE(payload),
	}
}

// Valid reports whether Size and NotSize are complements
func (h Header) Valid() bool {
	return h.Size == ^h.NotSize
}

// MarshalTo writes the header into b, which must hold HeaderSize bytes
func (h Header) MarshalTo(b []byte) {
	binary.LittleEndian.PutUint32(b[0:], h.Size)
	binary.LittleEndian.PutUint32(b[4:], h.NotSize)
	binary.LittleEndian.PutUint32(b[8:], h.CRC32)
}

// ParseHeader decodes a header from b, which must hold HeaderSize bytes
func ParseHeader(b []byte) Header {
	return Header{
		Size:    binary.LittleEndian.Uint32(b[0:]),
		NotSize: binary.LittleEndian.Uint32(b[4:]),
		CRC32:   binary.LittleEndian.Uint32(b[8:]),
	}
}

// Frame returns payload framed as a single block
func Frame(payload []byte) []byte {
	out := make([]byte, HeaderSize+len(payload))
	NewHeader(payload).MarshalTo(out)
	copy(out[HeaderSize:], payload)
	return out
}

package isulog

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"

	"github.com/cockroachdb/errors"
	"github.com/ssargent/isulog/pkg/errs"
	"github.com/ssargent/isulog/pkg/records"
)

const (
	// HeaderSize is the size of the fixed log header
	HeaderSize = 0x1C0

	// RecordHeaderSize is the size of the header preceding each record payload
	RecordHeaderSize = 10

	Signature32 = "Inno Setup Uninstall Log (b)"
	Signature64 = "Inno Setup Uninstall Log (b) 64-bit"

	// UnknownEndOffset is written as FileEndOffset when the destination cannot seek
	UnknownEndOffset = -1

	// DefaultVersion is the log version written by New
	DefaultVersion = 48
)

// Header field offsets and sizes.
const (
	offSignature      = 0x000
	offAppID          = 0x040
	offAppName        = 0x0C0
	offVersion        = 0x140
	offRecordsCount   = 0x144
	offFileEndOffset  = 0x148
	offUninstallFlags = 0x14C
	offReserved       = 0x150
	offCRC            = 0x1BC

	reservedSize = offCRC - offReserved
)

// Header is the fixed 448-byte header at the start of a log.
type Header struct {
	Is64Bit bool

	// RawSignature holds the signature field as read. When it is set and agrees
	// with Is64Bit it is written back unchanged.
	RawSignature [offAppID - offSignature]byte

	AppID          string
	AppName        string
	Version        int32
	RecordsCount   int32
	FileEndOffset  int32
	UninstallFlags int32
	Reserved       [reservedSize]byte
	CRC32          uint32
}

// Signature returns the signature string written for this header.
func (h *Header) Signature() string {
	if h.keepRawSignature() {
		return getText(h.RawSignature[:])
	}
	if h.Is64Bit {
		return Signature64
	}
	return Signature32
}

func (h *Header) keepRawSignature() bool {
	if h.RawSignature == [offAppID - offSignature]byte{} {
		return false
	}
	return is64BitSignature(h.RawSignature[:]) == h.Is64Bit
}

// is64BitSignature reports whether b carries exactly Signature64. Anything else is a 32-bit log.
func is64BitSignature(b []byte) bool {
	return getText(b) == Signature64
}

// MarshalBinary encodes the header and stores the computed CRC32 in the result.
// h.CRC32 is ignored.
func (h *Header) MarshalBinary() ([]byte, error) {
	b := make([]byte, HeaderSize)

	if h.keepRawSignature() {
		copy(b[offSignature:offAppID], h.RawSignature[:])
	} else if err := putText(b[offSignature:offAppID], h.Signature(), "signature"); err != nil {
		return nil, err
	}
	if err := putText(b[offAppID:offAppName], h.AppID, "AppId"); err != nil {
		return nil, err
	}
	if err := putText(b[offAppName:offVersion], h.AppName, "AppName"); err != nil {
		return nil, err
	}

	binary.LittleEndian.PutUint32(b[offVersion:], uint32(h.Version))
	binary.LittleEndian.PutUint32(b[offRecordsCount:], uint32(h.RecordsCount))
	binary.LittleEndian.PutUint32(b[offFileEndOffset:], uint32(h.FileEndOffset))
	binary.LittleEndian.PutUint32(b[offUninstallFlags:], uint32(h.UninstallFlags))
	copy(b[offReserved:offCRC], h.Reserved[:])
	binary.LittleEndian.PutUint32(b[offCRC:], crc32.ChecksumIEEE(b[:offCRC]))

	return b, nil
}

// ParseHeader decodes a header from b, which must hold HeaderSize bytes.
// The CRC32 is verified unless skipCRC is set. Only an exact Signature64 marks
// a 64-bit log; any other signature is read as 32-bit and kept in RawSignature.
func ParseHeader(b []byte, skipCRC bool) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, errors.Wrapf(errs.ErrTruncated, "header: got %d of %d bytes", len(b), HeaderSize)
	}

	h := Header{
		AppID:          getText(b[offAppID:offAppName]),
		AppName:        getText(b[offAppName:offVersion]),
		Version:        int32(binary.LittleEndian.Uint32(b[offVersion:])),
		RecordsCount:   int32(binary.LittleEndian.Uint32(b[offRecordsCount:])),
		FileEndOffset:  int32(binary.LittleEndian.Uint32(b[offFileEndOffset:])),
		UninstallFlags: int32(binary.LittleEndian.Uint32(b[offUninstallFlags:])),
		CRC32:          binary.LittleEndian.Uint32(b[offCRC:]),
	}
	copy(h.RawSignature[:], b[offSignature:offAppID])
	copy(h.Reserved[:], b[offReserved:offCRC])
	h.Is64Bit = is64BitSignature(h.RawSignature[:])

	if !skipCRC {
		if sum := crc32.ChecksumIEEE(b[:offCRC]); sum != h.CRC32 {
			return Header{}, errors.Wrapf(errs.ErrChecksum, "header crc %08x, expected %08x", sum, h.CRC32)
		}
	}

	return h, nil
}

func putText(dst []byte, s, field string) error {
	if len(s) > len(dst) {
		return errors.Wrapf(errs.ErrFormat, "%s of %d bytes exceeds its %d byte field", field, len(s), len(dst))
	}
	n := copy(dst, s)
	clear(dst[n:])
	return nil
}

func getText(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// RecordHeader precedes each record payload inside the block stream.
type RecordHeader struct {
	Type      records.Type
	ExtraData int32
	DataSize  uint32
}

// MarshalTo writes the packed header into b, which must hold RecordHeaderSize bytes.
func (h RecordHeader) MarshalTo(b []byte) {
	binary.LittleEndian.PutUint16(b[0:], uint16(h.Type))
	binary.LittleEndian.PutUint32(b[2:], uint32(h.ExtraData))
	binary.LittleEndian.PutUint32(b[6:], h.DataSize)
}

// ParseRecordHeader decodes a packed record header from b.
func ParseRecordHeader(b []byte) RecordHeader {
	return RecordHeader{
		Type:      records.Type(binary.LittleEndian.Uint16(b[0:])),
		ExtraData: int32(binary.LittleEndian.Uint32(b[2:])),
		DataSize:  binary.LittleEndian.Uint32(b[6:]),
	}
}

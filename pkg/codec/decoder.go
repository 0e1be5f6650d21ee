package codec

import (
	"encoding/binary"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ssargent/isulog/pkg/errs"
)

// Decoder reads primitives from a byte region with a single forward cursor.
type Decoder struct {
	buf []byte
	off int
}

// NewDecoder creates a decoder positioned at the start of buf
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Offset returns the number of bytes consumed so far
func (d *Decoder) Offset() int {
	return d.off
}

// Remaining returns the number of unread bytes
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.off
}

// AtEnd reports whether the region is exhausted
func (d *Decoder) AtEnd() bool {
	return d.off >= len(d.buf)
}

func (d *Decoder) peek() (byte, bool) {
	if d.AtEnd() {
		return 0, false
	}
	return d.buf[d.off], true
}

func (d *Decoder) take(n int64) ([]byte, error) {
	if n < 0 || n > int64(d.Remaining()) {
		return nil, errors.Wrapf(errs.ErrTruncated, "need %d bytes at offset %d, have %d", n, d.off, d.Remaining())
	}
	b := d.buf[d.off : d.off+int(n)]
	d.off += int(n)
	return b, nil
}

func (d *Decoder) readByte() (byte, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) readUint16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *Decoder) readInt32() (int32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// readLength consumes a tag and its length field. ok is false for the sentinel.
func (d *Decoder) readLength() (n int64, cs Charset, ok bool, err error) {
	tag, err := d.readByte()
	if err != nil {
		return 0, Narrow, false, err
	}

	switch tag {
	case TagNone:
		return 0, Narrow, false, nil
	case TagUint16:
		v, err := d.readUint16()
		return int64(v), Narrow, err == nil, err
	case TagInt32:
		v, err := d.readInt32()
		if err != nil {
			return 0, Narrow, false, err
		}
		if v < 0 {
			return -int64(v), Wide, true, nil
		}
		return int64(v), Narrow, true, nil
	default:
		return int64(tag), Narrow, true, nil
	}
}

// ReadString reads one string. ok is false when the sentinel marks the value absent.
func (d *Decoder) ReadString() (s string, ok bool, err error) {
	n, cs, ok, err := d.readLength()
	if err != nil || !ok {
		return "", false, err
	}
	b, err := d.take(n)
	if err != nil {
		return "", false, err
	}
	s, err = decodeText(b, cs)
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}

// ReadBytes reads a byte blob. The result is a copy of the region.
func (d *Decoder) ReadBytes() (b []byte, ok bool, err error) {
	n, _, ok, err := d.readLength()
	if err != nil || !ok {
		return nil, false, err
	}
	raw, err := d.take(n)
	if err != nil {
		return nil, false, err
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, true, nil
}

// ReadTime reads a date-time. The unset sentinel yields the zero time.
// Fields carry no zone and are returned as UTC wall-clock values.
func (d *Decoder) ReadTime() (time.Time, error) {
	n, _, ok, err := d.readLength()
	if err != nil || !ok {
		return time.Time{}, err
	}
	b, err := d.take(n)
	if err != nil {
		return time.Time{}, err
	}
	if len(b) < timeFieldsSize {
		return time.Time{}, nil
	}

	field := func(i int) int {
		return int(binary.LittleEndian.Uint16(b[i*2:]))
	}
	year, month, day := field(0), field(1), field(3)
	hour, minute, second, ms := field(4), field(5), field(6), field(7)
	// field(2) is the day of week

	if month < 1 || month > 12 || day < 1 || day > 31 ||
		hour > 23 || minute > 59 || second > 59 || ms > 999 {
		return time.Time{}, errors.Wrapf(errs.ErrFormat,
			"invalid date-time %04d-%02d-%02d %02d:%02d:%02d.%03d", year, month, day, hour, minute, second, ms)
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, ms*int(time.Millisecond), time.UTC), nil
}

// ReadEnd consumes a sentinel byte if one is next.
func (d *Decoder) ReadEnd() bool {
	if b, ok := d.peek(); ok && b == TagNone {
		d.off++
		return true
	}
	return false
}

// ReadStringList reads strings until the sentinel or the end of the region.
func (d *Decoder) ReadStringList() ([]string, error) {
	list := []string{}
	for !d.AtEnd() {
		s, ok, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		list = append(list, s)
	}
	return list, nil
}

// ReadStringArray reads the counted array form, including its trailing marker.
func (d *Decoder) ReadStringArray() ([]string, error) {
	tag, err := d.readByte()
	if err != nil {
		return nil, err
	}

	var cs Charset
	switch tag {
	case TagNone:
		return []string{}, nil
	case TagUint16:
		cs = Narrow
	case TagInt32:
		cs = Wide
	default:
		return nil, errors.Wrapf(errs.ErrFormat, "string array tag 0x%02x", tag)
	}

	total, err := d.readInt32()
	if err != nil {
		return nil, err
	}
	if total == 0 {
		d.ReadEnd()
		return []string{}, nil
	}
	size := int64(total)
	if size < 0 {
		size = -size
	}
	if size > int64(d.Remaining()) {
		return nil, errors.Wrapf(errs.ErrTruncated, "string array of %d bytes, have %d", size, d.Remaining())
	}

	count, err := d.readInt32()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, errors.Wrapf(errs.ErrFormat, "string array count %d", count)
	}

	list := make([]string, 0, min(int(count), d.Remaining()))
	for i := 0; i < int(count); i++ {
		// Stop at a lone trailing marker instead of reading past it.
		if b, ok := d.peek(); i > 0 && ok && b == TagNone && d.Remaining() == 1 {
			break
		}

		var n int64
		if cs == Narrow {
			v, err := d.readUint16()
			if err != nil {
				return nil, err
			}
			n = int64(v)
		} else {
			v, err := d.readInt32()
			if err != nil {
				return nil, err
			}
			if v < 0 {
				return nil, errors.Wrapf(errs.ErrFormat, "string array element length %d", v)
			}
			n = int64(v) * 2
		}

		b, err := d.take(n)
		if err != nil {
			return nil, err
		}
		s, err := decodeText(b, cs)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}

	d.ReadEnd()
	return list, nil
}

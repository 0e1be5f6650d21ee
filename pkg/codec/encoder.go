package codec

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ssargent/isulog/pkg/errs"
)

// Encoder writes primitives into a caller-owned byte region. It never grows the region.
type Encoder struct {
	buf []byte
	off int
}

// NewEncoder creates an encoder writing from the start of buf
func NewEncoder(buf []byte) *Encoder {
	return &Encoder{buf: buf}
}

// Len returns the number of bytes written
func (e *Encoder) Len() int {
	return e.off
}

// Available returns the remaining capacity
func (e *Encoder) Available() int {
	return len(e.buf) - e.off
}

// Bytes returns the written portion of the region
func (e *Encoder) Bytes() []byte {
	return e.buf[:e.off]
}

func (e *Encoder) reserve(n int) ([]byte, error) {
	if n > e.Available() {
		return nil, errors.Wrapf(errs.ErrShortBuffer, "need %d bytes at offset %d, have %d", n, e.off, e.Available())
	}
	b := e.buf[e.off : e.off+n]
	e.off += n
	return b, nil
}

func (e *Encoder) putByte(v byte) error {
	b, err := e.reserve(1)
	if err != nil {
		return err
	}
	b[0] = v
	return nil
}

func (e *Encoder) putUint16(v uint16) error {
	b, err := e.reserve(2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b, v)
	return nil
}

func (e *Encoder) putInt32(v int32) error {
	b, err := e.reserve(4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, uint32(v))
	return nil
}

func (e *Encoder) putRaw(p []byte) error {
	b, err := e.reserve(len(p))
	if err != nil {
		return err
	}
	copy(b, p)
	return nil
}

func (e *Encoder) writeLength(n int, cs Charset) error {
	if n > math.MaxInt32 {
		return errors.Wrapf(errs.ErrFormat, "value of %d bytes exceeds the i32 length field", n)
	}
	switch {
	case cs == Wide:
		if err := e.putByte(TagInt32); err != nil {
			return err
		}
		return e.putInt32(int32(-n))
	case n <= MaxInlineLength:
		return e.putByte(byte(n))
	case n <= math.MaxUint16:
		if err := e.putByte(TagUint16); err != nil {
			return err
		}
		return e.putUint16(uint16(n))
	default:
		if err := e.putByte(TagInt32); err != nil {
			return err
		}
		return e.putInt32(int32(n))
	}
}

// WriteString writes s with the given character width.
func (e *Encoder) WriteString(s string, cs Charset) error {
	data, err := encodeText(s, cs)
	if err != nil {
		return err
	}
	if err := e.writeLength(len(data), cs); err != nil {
		return err
	}
	return e.putRaw(data)
}

// WriteAbsent writes the sentinel marking a missing value.
func (e *Encoder) WriteAbsent() error {
	return e.putByte(TagNone)
}

// WriteEnd writes the sentinel terminating a sequence.
func (e *Encoder) WriteEnd() error {
	return e.putByte(TagNone)
}

// WriteBytes writes a byte blob.
func (e *Encoder) WriteBytes(p []byte) error {
	if len(p) > math.MaxInt32 {
		return errors.Wrapf(errs.ErrFormat, "blob of %d bytes exceeds the i32 length field", len(p))
	}
	if err := e.putByte(TagInt32); err != nil {
		return err
	}
	if err := e.putInt32(int32(-len(p))); err != nil {
		return err
	}
	return e.putRaw(p)
}

// WriteTime writes a date-time; the zero time is written as unset.
func (e *Encoder) WriteTime(t time.Time) error {
	if t.IsZero() {
		return e.putByte(TagNone)
	}
	if t.Year() < 0 || t.Year() > math.MaxUint16 {
		return errors.Wrapf(errs.ErrFormat, "year %d out of range", t.Year())
	}

	if err := e.putByte(TagInt32); err != nil {
		return err
	}
	if err := e.putInt32(-timeFieldsSize); err != nil {
		return err
	}
	b, err := e.reserve(timeFieldsSize)
	if err != nil {
		return err
	}
	fields := [8]int{
		t.Year(), int(t.Month()), int(t.Weekday()), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond() / int(time.Millisecond),
	}
	for i, v := range fields {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(v))
	}
	return nil
}

// WriteStringList writes each string followed by the terminating sentinel.
func (e *Encoder) WriteStringList(list []string, cs Charset) error {
	for _, s := range list {
		if err := e.WriteString(s, cs); err != nil {
			return err
		}
	}
	return e.WriteEnd()
}

// WriteStringArray writes the counted array form.
func (e *Encoder) WriteStringArray(list []string, cs Charset) error {
	tag, prefix := TagInt32, 4
	if cs == Narrow {
		tag, prefix = TagUint16, 2
	}
	if err := e.putByte(tag); err != nil {
		return err
	}
	if len(list) == 0 {
		if err := e.putInt32(0); err != nil {
			return err
		}
		return e.WriteEnd()
	}

	encoded := make([][]byte, len(list))
	total := 4
	for i, s := range list {
		data, err := encodeText(s, cs)
		if err != nil {
			return err
		}
		if cs == Narrow && len(data) > math.MaxUint16 {
			return errors.Wrapf(errs.ErrFormat, "narrow array element of %d bytes", len(data))
		}
		encoded[i] = data
		total += prefix + len(data)
	}
	if total > math.MaxInt32 {
		return errors.Wrapf(errs.ErrFormat, "string array of %d bytes", total)
	}

	if err := e.putInt32(int32(-total)); err != nil {
		return err
	}
	if err := e.putInt32(int32(len(list))); err != nil {
		return err
	}
	for _, data := range encoded {
		var err error
		if cs == Narrow {
			err = e.putUint16(uint16(len(data)))
		} else {
			err = e.putInt32(int32(len(data) / 2))
		}
		if err != nil {
			return err
		}
		if err := e.putRaw(data); err != nil {
			return err
		}
	}
	return e.WriteEnd()
}

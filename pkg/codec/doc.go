// Package codec implements the tagged variable-length primitive encoding used
// inside uninstall log record payloads.
//
// Every primitive starts with a tag byte that selects how its length is stored:
//
//	0x00-0xFC  inline length, narrow text; the tag is the length
//	0xFD       [u16 length], narrow text
//	0xFE       [i32 length]; negative selects wide (UTF-16LE) text of |length| bytes
//	0xFF       sentinel: no value, or end of a sequence
//
// All integers are little-endian. Narrow text is the Windows-1252 code page and
// wide text is UTF-16LE. Writing text that the chosen width cannot represent
// fails with errs.ErrFormat. Reading narrow text maps the code page's five
// undefined bytes to U+FFFD.
//
// # Primitives
//
// Byte blobs are written as 0xFE followed by the negated blob length and the raw
// bytes. Date-times are either the 0xFF sentinel (unset) or 0xFE, a length of -16,
// and eight u16 fields: year, month, day-of-week, day, hour, minute, second,
// millisecond. Day-of-week is written but skipped on read.
//
// # Aggregates
//
// A string list is zero or more strings followed by a single 0xFF:
//
//	[str][str]...[0xFF]
//
// A string array carries both a total byte length and per-element lengths:
//
//	[0xFD|0xFE][i32 -total][i32 count]{[len][bytes]}...[0xFF]
//
// Narrow arrays use a u16 byte length per element, wide arrays an i32 count of
// UTF-16 code units. An empty array is the tag, a zero total and the 0xFF marker.
//
// # Usage
//
// Decoder and Encoder are cursors over a caller-owned byte slice. The encoder never
// grows its destination; a value that does not fit fails with errs.ErrShortBuffer.
//
//	buf := make([]byte, 256)
//	enc := codec.NewEncoder(buf)
//	if err := enc.WriteString(`C:\Program Files\App`, codec.Wide); err != nil {
//	    return err
//	}
//
//	dec := codec.NewDecoder(enc.Bytes())
//	path, ok, err := dec.ReadString()
//
// # Thread Safety
//
// Decoder and Encoder hold a cursor and must not be shared between goroutines.
package codec

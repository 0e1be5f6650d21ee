package codec

import (
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/ssargent/isulog/pkg/errs"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Tag bytes.
const (
	MaxInlineLength      = 0xFC
	TagUint16       byte = 0xFD
	TagInt32        byte = 0xFE
	TagNone         byte = 0xFF
)

// timeFieldsSize is the payload size of an encoded date-time (8 x u16).
const timeFieldsSize = 16

// Charset selects the character width of encoded text.
type Charset int

const (
	// Wide is UTF-16LE, two bytes per code unit.
	Wide Charset = iota
	// Narrow is the Windows-1252 code page, one byte per character. Text outside
	// the code page cannot be written.
	Narrow
)

func (c Charset) String() string {
	switch c {
	case Wide:
		return "wide"
	case Narrow:
		return "narrow"
	default:
		return "unknown"
	}
}

var (
	narrowEncoding = charmap.Windows1252
	wideEncoding   = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
)

func decodeText(b []byte, cs Charset) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	if cs == Wide {
		if len(b)%2 != 0 {
			return "", errors.Wrapf(errs.ErrFormat, "wide text of odd length %d", len(b))
		}
		out, err := wideEncoding.NewDecoder().Bytes(b)
		if err != nil {
			return "", errors.Wrap(errs.ErrFormat, err.Error())
		}
		return string(out), nil
	}
	out, err := narrowEncoding.NewDecoder().Bytes(b)
	if err != nil {
		return "", errors.Wrap(errs.ErrFormat, err.Error())
	}
	return string(out), nil
}

func encodeText(s string, cs Charset) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	if !utf8.ValidString(s) {
		return nil, errors.Wrapf(errs.ErrFormat, "text %q is not valid UTF-8", s)
	}
	enc := wideEncoding.NewEncoder()
	if cs == Narrow {
		enc = narrowEncoding.NewEncoder()
	}
	out, err := enc.Bytes([]byte(s))
	if err != nil {
		return nil, errors.Wrapf(errs.ErrFormat, "text %q cannot be encoded as %s: %v", s, cs, err)
	}
	return out, nil
}

// lengthSize returns the size of the tag plus length field for n payload bytes.
func lengthSize(n int, cs Charset) int {
	switch {
	case cs == Wide:
		return 5
	case n <= MaxInlineLength:
		return 1
	case n <= 0xFFFF:
		return 3
	default:
		return 5
	}
}

// StringSize returns the encoded size of s, tag included. It fails like
// WriteString when s cannot be encoded in cs.
func StringSize(s string, cs Charset) (int, error) {
	b, err := encodeText(s, cs)
	if err != nil {
		return 0, err
	}
	return lengthSize(len(b), cs) + len(b), nil
}

// BytesSize returns the encoded size of a blob of n bytes.
func BytesSize(n int) int {
	return 5 + n
}

// TimeSize returns the encoded size of a set date-time. An unset one is a single byte.
func TimeSize() int {
	return 5 + timeFieldsSize
}

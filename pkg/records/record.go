package records

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ssargent/isulog/pkg/codec"
	"github.com/ssargent/isulog/pkg/errs"
)

// Record is one uninstall action. The set of implementations is closed;
// unknown tags are represented by *Raw.
type Record interface {
	Type() Type
	Flags() int32
	Description() string
	String() string

	// Loaded reports whether the record was decoded from a payload, in which
	// case Encode re-emits Payload unchanged.
	Loaded() bool
	Payload() []byte

	encodeFields(e *codec.Encoder) error
}

type base struct {
	typ     Type
	flags   int32
	payload []byte
	loaded  bool
}

func (b *base) Type() Type      { return b.typ }
func (b *base) Flags() int32    { return b.flags }
func (b *base) Loaded() bool    { return b.loaded }
func (b *base) Payload() []byte { return b.payload }

func describe(r Record) string {
	return fmt.Sprintf("%s: %s", r.Type(), r.Description())
}

type parseFunc func(b base, d *codec.Decoder) (Record, error)

var registry = map[Type]parseFunc{
	Run:                  parseRun,
	DeleteFile:           parseDeleteFile,
	DeleteDirOrFiles:     parseDeleteDirOrFiles,
	IniDeleteEntry:       parseIniDeleteEntry,
	IniDeleteSection:     parseIniDeleteSection,
	RegDeleteEntireKey:   parseRegistryKey,
	RegDeleteKeyIfEmpty:  parseRegistryKey,
	RegClearValue:        parseRegistryValue,
	RegDeleteValue:       parseRegistryValue,
	StartInstall:         parseStartInstall,
	EndInstall:           parseEndInstall,
	MutexCheck:           parseMutexCheck,
	DecrementSharedCount: parseDecrementSharedCount,
	CompiledCode:         parseCompiledCode,
}

// Decode builds the record for tag t. The payload is retained, not copied.
// Decode never fails: tags without a kind and payloads that do not parse yield *Raw.
func Decode(t Type, extra int32, payload []byte) Record {
	b := base{typ: t, flags: extra, payload: payload, loaded: true}

	parse, ok := registry[t]
	if !ok {
		return &Raw{base: b}
	}

	rec, err := parse(b, codec.NewDecoder(payload))
	if err != nil {
		return &Raw{base: b, err: errors.Wrapf(err, "decode %s payload", t)}
	}
	return rec
}

// Encode writes the payload of r into dst and returns its length.
// errs.ErrShortBuffer means dst is too small.
func Encode(r Record, dst []byte) (int, error) {
	if r.Loaded() {
		payload := r.Payload()
		if len(dst) < len(payload) {
			return 0, errors.Wrapf(errs.ErrShortBuffer, "%s payload of %d bytes, have %d", r.Type(), len(payload), len(dst))
		}
		return copy(dst, payload), nil
	}

	e := codec.NewEncoder(dst)
	if err := r.encodeFields(e); err != nil {
		return 0, err
	}
	return e.Len(), nil
}

// Marshal returns the encoded payload of r.
func Marshal(r Record) ([]byte, error) {
	size := 256
	for {
		buf := make([]byte, size)
		n, err := Encode(r, buf)
		if err == nil {
			return buf[:n], nil
		}
		if !errors.Is(err, errs.ErrShortBuffer) {
			return nil, err
		}
		size *= 2
	}
}

// fieldReader reads successive payload fields, keeping the first error.
// Fields missing at the end of the payload read as empty.
type fieldReader struct {
	d   *codec.Decoder
	err error
}

func (f *fieldReader) str() string {
	if f.err != nil || f.d.AtEnd() {
		return ""
	}
	s, _, err := f.d.ReadString()
	f.err = err
	return s
}

func (f *fieldReader) bytes() []byte {
	if f.err != nil || f.d.AtEnd() {
		return nil
	}
	b, _, err := f.d.ReadBytes()
	f.err = err
	return b
}

func (f *fieldReader) time() time.Time {
	if f.err != nil || f.d.AtEnd() {
		return time.Time{}
	}
	t, err := f.d.ReadTime()
	f.err = err
	return t
}

func (f *fieldReader) list() []string {
	if f.err != nil {
		return nil
	}
	l, err := f.d.ReadStringList()
	f.err = err
	return l
}

func (f *fieldReader) array() []string {
	if f.err != nil || f.d.AtEnd() {
		return []string{}
	}
	a, err := f.d.ReadStringArray()
	f.err = err
	return a
}

// fieldWriter writes successive wide fields, keeping the first error.
type fieldWriter struct {
	e   *codec.Encoder
	err error
}

func (w *fieldWriter) str(s string) {
	if w.err == nil {
		w.err = w.e.WriteString(s, codec.Wide)
	}
}

func (w *fieldWriter) bytes(b []byte) {
	if w.err == nil {
		w.err = w.e.WriteBytes(b)
	}
}

func (w *fieldWriter) time(t time.Time) {
	if w.err == nil {
		w.err = w.e.WriteTime(t)
	}
}

func (w *fieldWriter) list(l []string) {
	if w.err == nil {
		w.err = w.e.WriteStringList(l, codec.Wide)
	}
}

func (w *fieldWriter) array(a []string) {
	if w.err == nil {
		w.err = w.e.WriteStringArray(a, codec.Wide)
	}
}

func (w *fieldWriter) end() error {
	if w.err == nil {
		w.err = w.e.WriteEnd()
	}
	return w.err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unset"
	}
	return t.Format("2006-01-02 15:04:05.000")
}

// Raw is a record whose tag has no kind, or whose payload did not parse.
type Raw struct {
	base
	err error
}

// NewRaw builds a record that encodes payload verbatim.
func NewRaw(t Type, flags int32, payload []byte) *Raw {
	return &Raw{base: base{typ: t, flags: flags, payload: payload, loaded: true}}
}

// Err reports why a known tag fell back to Raw. It is nil for unknown tags.
func (r *Raw) Err() error { return r.err }

func (r *Raw) Description() string {
	return fmt.Sprintf("%d byte payload; extra 0x%08x", len(r.payload), uint32(r.flags))
}

func (r *Raw) String() string { return describe(r) }

func (r *Raw) encodeFields(e *codec.Encoder) error {
	return errors.Wrap(errs.ErrUnsupported, "raw record has no fields")
}

func (w *fieldWriter) done() error {
	return w.err
}

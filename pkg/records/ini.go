package records

import (
	"fmt"

	"github.com/ssargent/isulog/pkg/codec"
)

// IniDeleteSectionRecord removes a section from an INI file.
type IniDeleteSectionRecord struct {
	base
	filename string
	section  string
}

// NewIniDeleteSection builds an IniDeleteSection record.
func NewIniDeleteSection(filename, section string, flags int32) *IniDeleteSectionRecord {
	return &IniDeleteSectionRecord{
		base:     base{typ: IniDeleteSection, flags: flags},
		filename: filename,
		section:  section,
	}
}

func parseIniDeleteSection(b base, d *codec.Decoder) (Record, error) {
	f := fieldReader{d: d}
	r := &IniDeleteSectionRecord{base: b, filename: f.str(), section: f.str()}
	return r, f.err
}

func (r *IniDeleteSectionRecord) Filename() string { return r.filename }
func (r *IniDeleteSectionRecord) Section() string  { return r.section }

func (r *IniDeleteSectionRecord) Description() string {
	return fmt.Sprintf("File: %q; Section: %q; Flags: 0x%x", r.filename, r.section, uint32(r.flags))
}

func (r *IniDeleteSectionRecord) String() string { return describe(r) }

func (r *IniDeleteSectionRecord) encodeFields(e *codec.Encoder) error {
	w := fieldWriter{e: e}
	w.str(r.filename)
	w.str(r.section)
	return w.end()
}

// IniDeleteEntryRecord removes one entry from an INI file section.
type IniDeleteEntryRecord struct {
	base
	filename string
	section  string
	entry    string
}

// NewIniDeleteEntry builds an IniDeleteEntry record.
func NewIniDeleteEntry(filename, section, entry string, flags int32) *IniDeleteEntryRecord {
	return &IniDeleteEntryRecord{
		base:     base{typ: IniDeleteEntry, flags: flags},
		filename: filename,
		section:  section,
		entry:    entry,
	}
}

func parseIniDeleteEntry(b base, d *codec.Decoder) (Record, error) {
	f := fieldReader{d: d}
	r := &IniDeleteEntryRecord{base: b, filename: f.str(), section: f.str(), entry: f.str()}
	return r, f.err
}

func (r *IniDeleteEntryRecord) Filename() string { return r.filename }
func (r *IniDeleteEntryRecord) Section() string  { return r.section }
func (r *IniDeleteEntryRecord) Entry() string    { return r.entry }

func (r *IniDeleteEntryRecord) Description() string {
	return fmt.Sprintf("File: %q; Section: %q; Entry: %s; Flags: 0x%x", r.filename, r.section, r.entry, uint32(r.flags))
}

func (r *IniDeleteEntryRecord) String() string { return describe(r) }

func (r *IniDeleteEntryRecord) encodeFields(e *codec.Encoder) error {
	w := fieldWriter{e: e}
	w.str(r.filename)
	w.str(r.section)
	w.str(r.entry)
	return w.end()
}

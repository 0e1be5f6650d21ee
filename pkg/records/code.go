package records

import (
	"fmt"

	"github.com/ssargent/isulog/pkg/codec"
)

// CompiledCodeRecord carries the compiled uninstall script and its language context.
type CompiledCodeRecord struct {
	base
	code          []byte
	leadBytes     []byte
	expandedApp   string
	expandedGroup string
	wizardGroup   string
	language      string
	languageData  []string
}

// CompiledCodeInfo holds the fields of a CompiledCode record.
type CompiledCodeInfo struct {
	Code          []byte
	LeadBytes     []byte
	ExpandedApp   string
	ExpandedGroup string
	WizardGroup   string
	Language      string
	LanguageData  []string
}

// NewCompiledCode builds a CompiledCode record.
func NewCompiledCode(info CompiledCodeInfo) *CompiledCodeRecord {
	return &CompiledCodeRecord{
		base:          base{typ: CompiledCode},
		code:          append([]byte{}, info.Code...),
		leadBytes:     append([]byte{}, info.LeadBytes...),
		expandedApp:   info.ExpandedApp,
		expandedGroup: info.ExpandedGroup,
		wizardGroup:   info.WizardGroup,
		language:      info.Language,
		languageData:  append([]string{}, info.LanguageData...),
	}
}

func parseCompiledCode(b base, d *codec.Decoder) (Record, error) {
	f := fieldReader{d: d}
	r := &CompiledCodeRecord{
		base:          b,
		code:          f.bytes(),
		leadBytes:     f.bytes(),
		expandedApp:   f.str(),
		expandedGroup: f.str(),
		wizardGroup:   f.str(),
		language:      f.str(),
		languageData:  f.array(),
	}
	return r, f.err
}

// Info returns a copy of the record fields.
func (r *CompiledCodeRecord) Info() CompiledCodeInfo {
	return CompiledCodeInfo{
		Code:          append([]byte{}, r.code...),
		LeadBytes:     append([]byte{}, r.leadBytes...),
		ExpandedApp:   r.expandedApp,
		ExpandedGroup: r.expandedGroup,
		WizardGroup:   r.wizardGroup,
		Language:      r.language,
		LanguageData:  append([]string{}, r.languageData...),
	}
}

func (r *CompiledCodeRecord) Description() string {
	return fmt.Sprintf("Code: %d; App: %s; Group: %s; Wizard group: %s; Language: %s",
		len(r.code), r.expandedApp, r.expandedGroup, r.wizardGroup, r.language)
}

func (r *CompiledCodeRecord) String() string { return describe(r) }

func (r *CompiledCodeRecord) encodeFields(e *codec.Encoder) error {
	w := fieldWriter{e: e}
	w.bytes(r.code)
	w.bytes(r.leadBytes)
	w.str(r.expandedApp)
	w.str(r.expandedGroup)
	w.str(r.wizardGroup)
	w.str(r.language)
	w.array(r.languageData)
	return w.done()
}

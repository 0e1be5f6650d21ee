package records

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/ssargent/isulog/pkg/codec"
)

// RegistryKeyRecord deletes a registry key (RegDeleteEntireKey, RegDeleteKeyIfEmpty).
type RegistryKeyRecord struct {
	base
	path string
}

// NewRegistryKey builds a key record. t must be RegDeleteEntireKey or RegDeleteKeyIfEmpty.
func NewRegistryKey(t Type, hive Hive, view View, path string) (*RegistryKeyRecord, error) {
	if t != RegDeleteEntireKey && t != RegDeleteKeyIfEmpty {
		return nil, errors.Newf("%s is not a registry key record type", t)
	}
	return &RegistryKeyRecord{
		base: base{typ: t, flags: int32(NewRegFlags(hive, view))},
		path: path,
	}, nil
}

func parseRegistryKey(b base, d *codec.Decoder) (Record, error) {
	f := fieldReader{d: d}
	r := &RegistryKeyRecord{base: b, path: f.str()}
	return r, f.err
}

func (r *RegistryKeyRecord) Path() string       { return r.path }
func (r *RegistryKeyRecord) RegFlags() RegFlags { return RegFlags(uint32(r.flags)) }
func (r *RegistryKeyRecord) Hive() Hive         { return r.RegFlags().Hive() }
func (r *RegistryKeyRecord) View() View         { return r.RegFlags().View() }

func (r *RegistryKeyRecord) Description() string {
	return fmt.Sprintf("View: %s; Hive: %s; Path: %s", r.View(), r.Hive(), r.path)
}

func (r *RegistryKeyRecord) String() string { return describe(r) }

func (r *RegistryKeyRecord) encodeFields(e *codec.Encoder) error {
	w := fieldWriter{e: e}
	w.str(r.path)
	return w.end()
}

// RegistryValueRecord clears or deletes a registry value (RegClearValue, RegDeleteValue).
type RegistryValueRecord struct {
	base
	path  string
	value string
}

// NewRegistryValue builds a value record. t must be RegClearValue or RegDeleteValue.
func NewRegistryValue(t Type, hive Hive, view View, path, value string) (*RegistryValueRecord, error) {
	if t != RegClearValue && t != RegDeleteValue {
		return nil, errors.Newf("%s is not a registry value record type", t)
	}
	return &RegistryValueRecord{
		base:  base{typ: t, flags: int32(NewRegFlags(hive, view))},
		path:  path,
		value: value,
	}, nil
}

func parseRegistryValue(b base, d *codec.Decoder) (Record, error) {
	f := fieldReader{d: d}
	r := &RegistryValueRecord{base: b, path: f.str(), value: f.str()}
	return r, f.err
}

func (r *RegistryValueRecord) Path() string       { return r.path }
func (r *RegistryValueRecord) Value() string      { return r.value }
func (r *RegistryValueRecord) RegFlags() RegFlags { return RegFlags(uint32(r.flags)) }
func (r *RegistryValueRecord) Hive() Hive         { return r.RegFlags().Hive() }
func (r *RegistryValueRecord) View() View         { return r.RegFlags().View() }

func (r *RegistryValueRecord) Description() string {
	return fmt.Sprintf("View: %s; Hive: %s; Path: %s; Value: %s", r.View(), r.Hive(), r.path, r.value)
}

func (r *RegistryValueRecord) String() string { return describe(r) }

func (r *RegistryValueRecord) encodeFields(e *codec.Encoder) error {
	w := fieldWriter{e: e}
	w.str(r.path)
	w.str(r.value)
	return w.end()
}

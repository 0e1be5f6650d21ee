// Package records is the registry of uninstall log record kinds.
//
// Every record carries a Type tag, a flags word and a payload encoded with
// package codec. Decode maps a tag to its kind and never fails: unknown tags
// and payloads that do not parse become *Raw. Records are immutable once built.
package records

import "fmt"

// Type is the u16 tag in a record header.
type Type uint16

const (
	UserDefined          Type = 0x01
	StartInstall         Type = 0x10
	EndInstall           Type = 0x11
	CompiledCode         Type = 0x20
	Run                  Type = 0x80
	DeleteDirOrFiles     Type = 0x81
	DeleteFile           Type = 0x82
	DeleteGroupOrItem    Type = 0x83
	IniDeleteEntry       Type = 0x84
	IniDeleteSection     Type = 0x85
	RegDeleteEntireKey   Type = 0x86
	RegClearValue        Type = 0x87
	RegDeleteKeyIfEmpty  Type = 0x88
	RegDeleteValue       Type = 0x89
	DecrementSharedCount Type = 0x8A
	RefreshFileAssoc     Type = 0x8B
	MutexCheck           Type = 0x8C
)

var typeNames = map[Type]string{
	UserDefined:          "UserDefined",
	StartInstall:         "StartInstall",
	EndInstall:           "EndInstall",
	CompiledCode:         "CompiledCode",
	Run:                  "Run",
	DeleteDirOrFiles:     "DeleteDirOrFiles",
	DeleteFile:           "DeleteFile",
	DeleteGroupOrItem:    "DeleteGroupOrItem",
	IniDeleteEntry:       "IniDeleteEntry",
	IniDeleteSection:     "IniDeleteSection",
	RegDeleteEntireKey:   "RegDeleteEntireKey",
	RegClearValue:        "RegClearValue",
	RegDeleteKeyIfEmpty:  "RegDeleteKeyIfEmpty",
	RegDeleteValue:       "RegDeleteValue",
	DecrementSharedCount: "DecrementSharedCount",
	RefreshFileAssoc:     "RefreshFileAssoc",
	MutexCheck:           "MutexCheck",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(0x%02x)", uint16(t))
}

// Known reports whether t is one of the defined tags.
func (t Type) Known() bool {
	_, ok := typeNames[t]
	return ok
}

// ParseType resolves a tag by name, as printed by String.
func ParseType(name string) (Type, bool) {
	for t, n := range typeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

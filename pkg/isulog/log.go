// Package isulog reads and writes installer uninstall logs.
//
// A log is a 448-byte header followed by a block-framed stream (package block)
// of records, each a 10-byte RecordHeader and a payload decoded by package records.
//
//	lg, err := isulog.LoadFile("unins000.dat", false)
//	if err != nil {
//		return err
//	}
//	for _, rec := range lg.Records {
//		fmt.Println(rec)
//	}
package isulog

import (
	"io"
	"log/slog"
	"sort"

	"github.com/ssargent/isulog/pkg/records"
)

// Log is a loaded or constructed uninstall log.
// A Log is not safe for concurrent use.
type Log struct {
	Header  Header
	Records []records.Record
}

// New returns an empty log for the given application.
func New(appID, appName string, is64Bit bool) *Log {
	return &Log{
		Header: Header{
			Is64Bit: is64Bit,
			AppID:   appID,
			AppName: appName,
			Version: DefaultVersion,
		},
		Records: []records.Record{},
	}
}

// Append adds records to the end of the log.
func (l *Log) Append(recs ...records.Record) {
	l.Records = append(l.Records, recs...)
}

// TypeCount is the number of records of one type.
type TypeCount struct {
	Type  records.Type `json:"type" yaml:"type"`
	Name  string       `json:"name" yaml:"name"`
	Count int          `json:"count" yaml:"count"`
}

// Summary describes a log without its record payloads.
type Summary struct {
	AppID          string      `json:"app_id" yaml:"app_id"`
	AppName        string      `json:"app_name" yaml:"app_name"`
	Is64Bit        bool        `json:"is_64bit" yaml:"is_64bit"`
	Version        int32       `json:"version" yaml:"version"`
	RecordsCount   int32       `json:"records_count" yaml:"records_count"`
	FileEndOffset  int32       `json:"file_end_offset" yaml:"file_end_offset"`
	UninstallFlags int32       `json:"uninstall_flags" yaml:"uninstall_flags"`
	Records        int         `json:"records" yaml:"records"`
	Undecoded      int         `json:"undecoded" yaml:"undecoded"`
	Types          []TypeCount `json:"types" yaml:"types"`
}

// Summary returns the header fields and record counts by type, ordered by tag.
func (l *Log) Summary() Summary {
	s := Summary{
		AppID:          l.Header.AppID,
		AppName:        l.Header.AppName,
		Is64Bit:        l.Header.Is64Bit,
		Version:        l.Header.Version,
		RecordsCount:   l.Header.RecordsCount,
		FileEndOffset:  l.Header.FileEndOffset,
		UninstallFlags: l.Header.UninstallFlags,
		Records:        len(l.Records),
		Types:          []TypeCount{},
	}

	counts := make(map[records.Type]int)
	for _, rec := range l.Records {
		counts[rec.Type()]++
		if raw, ok := rec.(*records.Raw); ok && raw.Err() != nil {
			s.Undecoded++
		}
	}
	for t, n := range counts {
		s.Types = append(s.Types, TypeCount{Type: t, Name: t.String(), Count: n})
	}
	sort.Slice(s.Types, func(i, j int) bool { return s.Types[i].Type < s.Types[j].Type })

	return s
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

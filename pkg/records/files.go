package records

import (
	"fmt"
	"strings"

	"github.com/ssargent/isulog/pkg/codec"
)

// DeleteFileRecord deletes files installed by setup.
type DeleteFileRecord struct {
	base
	paths []string
}

// NewDeleteFile builds a DeleteFile record.
func NewDeleteFile(flags DeleteFileFlags, paths ...string) *DeleteFileRecord {
	return &DeleteFileRecord{
		base:  base{typ: DeleteFile, flags: int32(flags)},
		paths: append([]string{}, paths...),
	}
}

func parseDeleteFile(b base, d *codec.Decoder) (Record, error) {
	f := fieldReader{d: d}
	r := &DeleteFileRecord{base: b, paths: f.list()}
	return r, f.err
}

// Paths returns a copy of the paths.
func (r *DeleteFileRecord) Paths() []string            { return append([]string{}, r.paths...) }
func (r *DeleteFileRecord) FileFlags() DeleteFileFlags { return DeleteFileFlags(uint32(r.flags)) }

func (r *DeleteFileRecord) Description() string {
	return fmt.Sprintf("%s; %s", strings.Join(r.paths, ", "), r.FileFlags())
}

func (r *DeleteFileRecord) String() string { return describe(r) }

func (r *DeleteFileRecord) encodeFields(e *codec.Encoder) error {
	w := fieldWriter{e: e}
	w.list(r.paths)
	return w.done()
}

// DeleteDirOrFilesRecord deletes a directory or the files matching a pattern.
type DeleteDirOrFilesRecord struct {
	base
	paths []string
}

// NewDeleteDirOrFiles builds a DeleteDirOrFiles record.
func NewDeleteDirOrFiles(flags DeleteDirOrFilesFlags, paths ...string) *DeleteDirOrFilesRecord {
	return &DeleteDirOrFilesRecord{
		base:  base{typ: DeleteDirOrFiles, flags: int32(flags)},
		paths: append([]string{}, paths...),
	}
}

func parseDeleteDirOrFiles(b base, d *codec.Decoder) (Record, error) {
	f := fieldReader{d: d}
	r := &DeleteDirOrFilesRecord{base: b, paths: f.list()}
	return r, f.err
}

// Paths returns a copy of the paths.
func (r *DeleteDirOrFilesRecord) Paths() []string { return append([]string{}, r.paths...) }
func (r *DeleteDirOrFilesRecord) DirFlags() DeleteDirOrFilesFlags {
	return DeleteDirOrFilesFlags(uint32(r.flags))
}

func (r *DeleteDirOrFilesRecord) Description() string {
	return fmt.Sprintf("%s; %s", strings.Join(r.paths, ", "), r.DirFlags())
}

func (r *DeleteDirOrFilesRecord) String() string { return describe(r) }

func (r *DeleteDirOrFilesRecord) encodeFields(e *codec.Encoder) error {
	w := fieldWriter{e: e}
	w.list(r.paths)
	return w.done()
}

// DecrementSharedCountRecord decrements the shared DLL reference count of a file.
type DecrementSharedCountRecord struct {
	base
	path string
}

// NewDecrementSharedCount builds a DecrementSharedCount record.
func NewDecrementSharedCount(path string, flags SharedCountFlags) *DecrementSharedCountRecord {
	return &DecrementSharedCountRecord{
		base: base{typ: DecrementSharedCount, flags: int32(flags)},
		path: path,
	}
}

func parseDecrementSharedCount(b base, d *codec.Decoder) (Record, error) {
	f := fieldReader{d: d}
	r := &DecrementSharedCountRecord{base: b, path: f.str()}
	return r, f.err
}

func (r *DecrementSharedCountRecord) Path() string { return r.path }
func (r *DecrementSharedCountRecord) SharedCountFlags() SharedCountFlags {
	return SharedCountFlags(uint32(r.flags))
}

func (r *DecrementSharedCountRecord) Description() string {
	return fmt.Sprintf("Path: %s; %s", r.path, r.SharedCountFlags())
}

func (r *DecrementSharedCountRecord) String() string { return describe(r) }

func (r *DecrementSharedCountRecord) encodeFields(e *codec.Encoder) error {
	w := fieldWriter{e: e}
	w.str(r.path)
	return w.end()
}

package records

import (
	"fmt"

	"github.com/ssargent/isulog/pkg/codec"
)

// RunRecord runs a program at uninstall time.
type RunRecord struct {
	base
	path       string
	args       string
	workingDir string
	runOnceID  string
	verb       string
}

// NewRun builds a Run record.
func NewRun(path, args, workingDir, runOnceID, verb string, flags RunFlags) *RunRecord {
	return &RunRecord{
		base:       base{typ: Run, flags: int32(flags)},
		path:       path,
		args:       args,
		workingDir: workingDir,
		runOnceID:  runOnceID,
		verb:       verb,
	}
}

func parseRun(b base, d *codec.Decoder) (Record, error) {
	f := fieldReader{d: d}
	r := &RunRecord{
		base:       b,
		path:       f.str(),
		args:       f.str(),
		workingDir: f.str(),
		runOnceID:  f.str(),
		verb:       f.str(),
	}
	return r, f.err
}

func (r *RunRecord) Path() string       { return r.path }
func (r *RunRecord) Args() string       { return r.args }
func (r *RunRecord) WorkingDir() string { return r.workingDir }
func (r *RunRecord) RunOnceID() string  { return r.runOnceID }
func (r *RunRecord) Verb() string       { return r.verb }
func (r *RunRecord) RunFlags() RunFlags { return RunFlags(uint32(r.flags)) }

func (r *RunRecord) Description() string {
	return fmt.Sprintf("File: %q Args: %q; At %q; Flags: %s", r.path, r.args, r.workingDir, r.RunFlags())
}

func (r *RunRecord) String() string { return describe(r) }

func (r *RunRecord) encodeFields(e *codec.Encoder) error {
	w := fieldWriter{e: e}
	w.str(r.path)
	w.str(r.args)
	w.str(r.workingDir)
	w.str(r.runOnceID)
	w.str(r.verb)
	return w.end()
}

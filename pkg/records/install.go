package records

import (
	"fmt"
	"time"

	"github.com/ssargent/isulog/pkg/codec"
)

// StartInstallRecord marks the start of an installation session.
type StartInstallRecord struct {
	base
	computer string
	user     string
	appDir   string
	at       time.Time
}

// NewStartInstall builds a StartInstall record. The time is stored as UTC wall-clock fields.
func NewStartInstall(computer, user, appDir string, at time.Time) *StartInstallRecord {
	return &StartInstallRecord{
		base:     base{typ: StartInstall},
		computer: computer,
		user:     user,
		appDir:   appDir,
		at:       at,
	}
}

func parseStartInstall(b base, d *codec.Decoder) (Record, error) {
	f := fieldReader{d: d}
	r := &StartInstallRecord{
		base:     b,
		computer: f.str(),
		user:     f.str(),
		appDir:   f.str(),
		at:       f.time(),
	}
	return r, f.err
}

func (r *StartInstallRecord) ComputerName() string { return r.computer }
func (r *StartInstallRecord) UserName() string     { return r.user }
func (r *StartInstallRecord) AppDir() string       { return r.appDir }
func (r *StartInstallRecord) Time() time.Time      { return r.at }

func (r *StartInstallRecord) Description() string {
	return fmt.Sprintf("Computer: %s; User: %s; Dir: %s; At: %s", r.computer, r.user, r.appDir, formatTime(r.at))
}

func (r *StartInstallRecord) String() string { return describe(r) }

func (r *StartInstallRecord) encodeFields(e *codec.Encoder) error {
	w := fieldWriter{e: e}
	w.str(r.computer)
	w.str(r.user)
	w.str(r.appDir)
	w.time(r.at)
	return w.end()
}

// EndInstallRecord marks the end of an installation session.
type EndInstallRecord struct {
	base
	at time.Time
}

// NewEndInstall builds an EndInstall record.
func NewEndInstall(at time.Time) *EndInstallRecord {
	return &EndInstallRecord{base: base{typ: EndInstall}, at: at}
}

func parseEndInstall(b base, d *codec.Decoder) (Record, error) {
	f := fieldReader{d: d}
	r := &EndInstallRecord{base: b, at: f.time()}
	return r, f.err
}

func (r *EndInstallRecord) Time() time.Time { return r.at }

func (r *EndInstallRecord) Description() string {
	return fmt.Sprintf("At: %s", formatTime(r.at))
}

func (r *EndInstallRecord) String() string { return describe(r) }

func (r *EndInstallRecord) encodeFields(e *codec.Encoder) error {
	w := fieldWriter{e: e}
	w.time(r.at)
	return w.end()
}

// MutexCheckRecord names a mutex that blocks uninstall while held.
type MutexCheckRecord struct {
	base
	name string
}

// NewMutexCheck builds a MutexCheck record.
func NewMutexCheck(name string) *MutexCheckRecord {
	return &MutexCheckRecord{base: base{typ: MutexCheck}, name: name}
}

func parseMutexCheck(b base, d *codec.Decoder) (Record, error) {
	f := fieldReader{d: d}
	r := &MutexCheckRecord{base: b, name: f.str()}
	return r, f.err
}

func (r *MutexCheckRecord) MutexName() string { return r.name }

func (r *MutexCheckRecord) Description() string {
	return fmt.Sprintf("Mutex Name: %s", r.name)
}

func (r *MutexCheckRecord) String() string { return describe(r) }

func (r *MutexCheckRecord) encodeFields(e *codec.Encoder) error {
	w := fieldWriter{e: e}
	w.str(r.name)
	return w.end()
}

package records

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/isulog/pkg/codec"
	"github.com/ssargent/isulog/pkg/errs"
)

func mustRegKey(t *testing.T, typ Type, hive Hive, view View, path string) *RegistryKeyRecord {
	t.Helper()
	r, err := NewRegistryKey(typ, hive, view, path)
	require.NoError(t, err)
	return r
}

func mustRegValue(t *testing.T, typ Type, hive Hive, view View, path, value string) *RegistryValueRecord {
	t.Helper()
	r, err := NewRegistryValue(typ, hive, view, path, value)
	require.NoError(t, err)
	return r
}

func TestRecords_RoundTrip(t *testing.T) {
	at := time.Date(2024, time.March, 9, 14, 30, 5, 250*int(time.Millisecond), time.UTC)

	testCases := []struct {
		name   string
		record Record
		check  func(t *testing.T, got Record)
	}{
		{
			name:   "run",
			record: NewRun(`{app}\setup.exe`, "/uninstall", `{app}`, "cleanup", "open", RunNoWait|RunHidden),
			check: func(t *testing.T, got Record) {
				r := got.(*RunRecord)
				assert.Equal(t, `{app}\setup.exe`, r.Path())
				assert.Equal(t, "/uninstall", r.Args())
				assert.Equal(t, `{app}`, r.WorkingDir())
				assert.Equal(t, "cleanup", r.RunOnceID())
				assert.Equal(t, "open", r.Verb())
				assert.Equal(t, RunNoWait|RunHidden, r.RunFlags())
			},
		},
		{
			name:   "delete file",
			record: NewDeleteFile(DeleteFileDisableFsRedir, `C:\App\a.dll`, `C:\App\b.dll`),
			check: func(t *testing.T, got Record) {
				r := got.(*DeleteFileRecord)
				assert.Equal(t, []string{`C:\App\a.dll`, `C:\App\b.dll`}, r.Paths())
				assert.Equal(t, DeleteFileDisableFsRedir, r.FileFlags())
			},
		},
		{
			name:   "delete dir or files",
			record: NewDeleteDirOrFiles(DeleteDirIsDir|DeleteDirDisableFsRedir, `C:\App`),
			check: func(t *testing.T, got Record) {
				r := got.(*DeleteDirOrFilesRecord)
				assert.Equal(t, []string{`C:\App`}, r.Paths())
				assert.Equal(t, DeleteDirIsDir|DeleteDirDisableFsRedir, r.DirFlags())
			},
		},
		{
			name:   "ini section",
			record: NewIniDeleteSection(`{win}\app.ini`, "Settings", 0),
			check: func(t *testing.T, got Record) {
				r := got.(*IniDeleteSectionRecord)
				assert.Equal(t, `{win}\app.ini`, r.Filename())
				assert.Equal(t, "Settings", r.Section())
			},
		},
		{
			name:   "ini entry",
			record: NewIniDeleteEntry(`{win}\app.ini`, "Settings", "Theme", 2),
			check: func(t *testing.T, got Record) {
				r := got.(*IniDeleteEntryRecord)
				assert.Equal(t, `{win}\app.ini`, r.Filename())
				assert.Equal(t, "Settings", r.Section())
				assert.Equal(t, "Theme", r.Entry())
				assert.Equal(t, int32(2), r.Flags())
			},
		},
		{
			name:   "registry key",
			record: mustRegKey(t, RegDeleteKeyIfEmpty, HiveLocalMachine, View64, `Software\Vendor`),
			check: func(t *testing.T, got Record) {
				r := got.(*RegistryKeyRecord)
				assert.Equal(t, RegDeleteKeyIfEmpty, r.Type())
				assert.Equal(t, `Software\Vendor`, r.Path())
				assert.Equal(t, HiveLocalMachine, r.Hive())
				assert.Equal(t, View64, r.View())
			},
		},
		{
			name:   "registry value",
			record: mustRegValue(t, RegDeleteValue, HiveCurrentUser, View32, `Software\Vendor\App`, "InstallDir"),
			check: func(t *testing.T, got Record) {
				r := got.(*RegistryValueRecord)
				assert.Equal(t, `Software\Vendor\App`, r.Path())
				assert.Equal(t, "InstallDir", r.Value())
				assert.Equal(t, HiveCurrentUser, r.Hive())
				assert.Equal(t, View32, r.View())
			},
		},
		{
			name:   "start install",
			record: NewStartInstall("BUILD-01", "alice", `C:\Program Files\App`, at),
			check: func(t *testing.T, got Record) {
				r := got.(*StartInstallRecord)
				assert.Equal(t, "BUILD-01", r.ComputerName())
				assert.Equal(t, "alice", r.UserName())
				assert.Equal(t, `C:\Program Files\App`, r.AppDir())
				assert.True(t, at.Equal(r.Time()))
			},
		},
		{
			name:   "end install",
			record: NewEndInstall(at),
			check: func(t *testing.T, got Record) {
				assert.True(t, at.Equal(got.(*EndInstallRecord).Time()))
			},
		},
		{
			name:   "end install unset time",
			record: NewEndInstall(time.Time{}),
			check: func(t *testing.T, got Record) {
				assert.True(t, got.(*EndInstallRecord).Time().IsZero())
			},
		},
		{
			name:   "mutex check",
			record: NewMutexCheck("AppSetupMutex"),
			check: func(t *testing.T, got Record) {
				assert.Equal(t, "AppSetupMutex", got.(*MutexCheckRecord).MutexName())
			},
		},
		{
			name:   "decrement shared count",
			record: NewDecrementSharedCount(`{sys}\shared.dll`, SharedCount64BitKey),
			check: func(t *testing.T, got Record) {
				r := got.(*DecrementSharedCountRecord)
				assert.Equal(t, `{sys}\shared.dll`, r.Path())
				assert.Equal(t, SharedCount64BitKey, r.SharedCountFlags())
			},
		},
		{
			name: "compiled code",
			record: NewCompiledCode(CompiledCodeInfo{
				Code:          []byte{0x49, 0x46, 0x50, 0x53},
				LeadBytes:     []byte{},
				ExpandedApp:   `C:\App`,
				ExpandedGroup: "App Group",
				WizardGroup:   "App",
				Language:      "english",
				LanguageData:  []string{"a=b", "c=d"},
			}),
			check: func(t *testing.T, got Record) {
				info := got.(*CompiledCodeRecord).Info()
				assert.Equal(t, []byte{0x49, 0x46, 0x50, 0x53}, info.Code)
				assert.Empty(t, info.LeadBytes)
				assert.Equal(t, `C:\App`, info.ExpandedApp)
				assert.Equal(t, "App Group", info.ExpandedGroup)
				assert.Equal(t, "App", info.WizardGroup)
				assert.Equal(t, "english", info.Language)
				assert.Equal(t, []string{"a=b", "c=d"}, info.LanguageData)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, tc.record.Loaded())

			payload, err := Marshal(tc.record)
			require.NoError(t, err)

			got := Decode(tc.record.Type(), tc.record.Flags(), payload)
			if raw, ok := got.(*Raw); ok {
				t.Fatalf("decoded as raw: %v", raw.Err())
			}
			assert.True(t, got.Loaded())
			assert.Equal(t, tc.record.Type(), got.Type())
			assert.Equal(t, tc.record.Flags(), got.Flags())
			assert.Equal(t, tc.record.Description(), got.Description())
			tc.check(t, got)

			again, err := Marshal(got)
			require.NoError(t, err)
			assert.Equal(t, payload, again)
		})
	}
}

func TestRecords_WireBytes(t *testing.T) {
	payload, err := Marshal(NewMutexCheck("ab"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFE, 0xFC, 0xFF, 0xFF, 0xFF, 'a', 0, 'b', 0, 0xFF}, payload)

	payload, err = Marshal(NewDeleteFile(0, "x"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFE, 0xFE, 0xFF, 0xFF, 0xFF, 'x', 0, 0xFF}, payload)
}

func TestDecode_UnknownTagPreservesPayload(t *testing.T) {
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0xFF}
	rec := Decode(Type(0x42), 7, payload)

	raw, ok := rec.(*Raw)
	require.True(t, ok)
	assert.NoError(t, raw.Err())
	assert.Equal(t, Type(0x42), raw.Type())
	assert.Equal(t, int32(7), raw.Flags())
	assert.Equal(t, "Type(0x42)", raw.Type().String())

	out := make([]byte, 16)
	n, err := Encode(rec, out)
	require.NoError(t, err)
	assert.Equal(t, payload, out[:n])
}

func TestDecode_KnownTagWithoutKind(t *testing.T) {
	rec := Decode(RefreshFileAssoc, 0, nil)
	raw, ok := rec.(*Raw)
	require.True(t, ok)
	assert.NoError(t, raw.Err())

	n, err := Encode(rec, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestDecode_MalformedPayloadFallsBack(t *testing.T) {
	// narrow length 16 with no data behind it
	payload := []byte{0xFE, 0x10, 0x00, 0x00, 0x00}
	rec := Decode(Run, 0, payload)

	raw, ok := rec.(*Raw)
	require.True(t, ok)
	require.Error(t, raw.Err())
	assert.True(t, errors.Is(raw.Err(), errs.ErrTruncated))

	out, err := Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestDecode_MissingTrailingFields(t *testing.T) {
	buf := make([]byte, 32)
	e := codec.NewEncoder(buf)
	require.NoError(t, e.WriteString("only-path", codec.Wide))

	rec := Decode(Run, 0, e.Bytes())
	run, ok := rec.(*RunRecord)
	require.True(t, ok)
	assert.Equal(t, "only-path", run.Path())
	assert.Empty(t, run.Args())
	assert.Empty(t, run.Verb())
}

func TestDecode_NarrowLoadedStringsArePreserved(t *testing.T) {
	buf := make([]byte, 32)
	e := codec.NewEncoder(buf)
	require.NoError(t, e.WriteString("Global\\Mtx", codec.Narrow))
	require.NoError(t, e.WriteEnd())
	payload := append([]byte{}, e.Bytes()...)

	rec := Decode(MutexCheck, 0, payload)
	assert.Equal(t, "Global\\Mtx", rec.(*MutexCheckRecord).MutexName())

	out, err := Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, payload, out, "loaded records keep their original encoding")
}

func TestEncode_ShortBuffer(t *testing.T) {
	_, err := Encode(NewMutexCheck("a long mutex name"), make([]byte, 4))
	assert.True(t, errors.Is(err, errs.ErrShortBuffer))

	loaded := Decode(Type(0x99), 0, make([]byte, 10))
	_, err = Encode(loaded, make([]byte, 9))
	assert.True(t, errors.Is(err, errs.ErrShortBuffer))
}

func TestRegistry_FlagsAndConstructors(t *testing.T) {
	word := uint32(0x81000002)
	rec := Decode(RegDeleteEntireKey, int32(word), []byte{0xFE, 0xFE, 0xFF, 0xFF, 0xFF, 'k', 0, 0xFF})

	key, ok := rec.(*RegistryKeyRecord)
	require.True(t, ok)
	assert.Equal(t, HiveLocalMachine, key.Hive())
	assert.Equal(t, View64, key.View())
	assert.Equal(t, "k", key.Path())
	assert.Equal(t, "HKEY_LOCAL_MACHINE|Registry64", key.RegFlags().String())
	assert.Equal(t, RegFlags(word), NewRegFlags(HiveLocalMachine, View64))

	_, err := NewRegistryKey(RegDeleteValue, HiveUsers, View32, "x")
	assert.Error(t, err)
	_, err = NewRegistryValue(RegDeleteEntireKey, HiveUsers, View32, "x", "y")
	assert.Error(t, err)
	assert.Equal(t, "Hive(0x00000007)", Hive(7).String())
}

func TestType_Names(t *testing.T) {
	assert.Equal(t, "StartInstall", StartInstall.String())
	assert.Equal(t, "MutexCheck", MutexCheck.String())
	assert.True(t, CompiledCode.Known())
	assert.False(t, Type(0x7F).Known())

	typ, ok := ParseType("RegDeleteValue")
	require.True(t, ok)
	assert.Equal(t, RegDeleteValue, typ)
	_, ok = ParseType("Nope")
	assert.False(t, ok)
}

func TestFlags_String(t *testing.T) {
	assert.Equal(t, "0", RunFlags(0).String())
	assert.Equal(t, "NoWait|RunHidden", (RunNoWait | RunHidden).String())
	assert.Equal(t, "IsDir|0x100", (DeleteDirIsDir | 0x100).String())
	assert.Equal(t, "DisableFsRedir", DeleteFileDisableFsRedir.String())
	assert.Equal(t, "64BitKey", SharedCount64BitKey.String())
}

func TestRecord_String(t *testing.T) {
	rec := NewMutexCheck("m")
	assert.Equal(t, "MutexCheck: Mutex Name: m", rec.String())

	end := NewEndInstall(time.Time{})
	assert.Equal(t, "EndInstall: At: unset", end.String())
}

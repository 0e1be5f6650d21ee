package records

import (
	"fmt"
	"strings"
)

type flagName struct {
	bit  uint32
	name string
}

func formatFlags(v uint32, names []flagName) string {
	if v == 0 {
		return "0"
	}
	var parts []string
	for _, f := range names {
		if v&f.bit != 0 {
			parts = append(parts, f.name)
			v &^= f.bit
		}
	}
	if v != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", v))
	}
	return strings.Join(parts, "|")
}

// RunFlags are the flags of a Run record.
type RunFlags uint32

const (
	RunNoWait RunFlags = 1 << iota
	RunWaitUntilIdle
	RunShellExec
	RunMinimized
	RunMaximized
	RunSkipUninstall
	RunHidden
	RunShellExecRespectWaitFlags
	RunDisableFsRedir
	RunDontLogParameters
	RunLogOutput
)

var runFlagNames = []flagName{
	{uint32(RunNoWait), "NoWait"},
	{uint32(RunWaitUntilIdle), "WaitUntilIdle"},
	{uint32(RunShellExec), "ShellExec"},
	{uint32(RunMinimized), "RunMinimized"},
	{uint32(RunMaximized), "RunMaximized"},
	{uint32(RunSkipUninstall), "SkipUninstall"},
	{uint32(RunHidden), "RunHidden"},
	{uint32(RunShellExecRespectWaitFlags), "ShellExecRespectWaitFlags"},
	{uint32(RunDisableFsRedir), "DisableFsRedir"},
	{uint32(RunDontLogParameters), "DontLogParameters"},
	{uint32(RunLogOutput), "LogOutput"},
}

func (f RunFlags) String() string { return formatFlags(uint32(f), runFlagNames) }

// DeleteFileFlags are the flags of a DeleteFile record.
type DeleteFileFlags uint32

const (
	DeleteFileExistedBeforeInstall DeleteFileFlags = 1 << iota
	DeleteFileExtra
	DeleteFileIsFont
	DeleteFileSharedFile
	DeleteFileRegisteredServer
	DeleteFileCallChangeNotify
	DeleteFileRegisteredTypeLib
	DeleteFileRestartDelete
	DeleteFileRemoveReadOnly
	DeleteFileNoSharedFilePrompt
	DeleteFileSharedFileIn64BitKey
	DeleteFileDisableFsRedir
	DeleteFileGacInstalled
	DeleteFilePerUserFont
)

var deleteFileFlagNames = []flagName{
	{uint32(DeleteFileExistedBeforeInstall), "ExistedBeforeInstall"},
	{uint32(DeleteFileExtra), "Extra"},
	{uint32(DeleteFileIsFont), "IsFont"},
	{uint32(DeleteFileSharedFile), "SharedFile"},
	{uint32(DeleteFileRegisteredServer), "RegisteredServer"},
	{uint32(DeleteFileCallChangeNotify), "CallChangeNotify"},
	{uint32(DeleteFileRegisteredTypeLib), "RegisteredTypeLib"},
	{uint32(DeleteFileRestartDelete), "RestartDelete"},
	{uint32(DeleteFileRemoveReadOnly), "RemoveReadOnly"},
	{uint32(DeleteFileNoSharedFilePrompt), "NoSharedFilePrompt"},
	{uint32(DeleteFileSharedFileIn64BitKey), "SharedFileIn64BitKey"},
	{uint32(DeleteFileDisableFsRedir), "DisableFsRedir"},
	{uint32(DeleteFileGacInstalled), "GacInstalled"},
	{uint32(DeleteFilePerUserFont), "PerUserFont"},
}

func (f DeleteFileFlags) String() string { return formatFlags(uint32(f), deleteFileFlagNames) }

// DeleteDirOrFilesFlags are the flags of a DeleteDirOrFiles record.
type DeleteDirOrFilesFlags uint32

const (
	DeleteDirIsDir DeleteDirOrFilesFlags = 1 << iota
	DeleteDirDeleteFiles
	DeleteDirDeleteSubdirsAlso
	DeleteDirCallChangeNotify
	DeleteDirDisableFsRedir
)

var deleteDirFlagNames = []flagName{
	{uint32(DeleteDirIsDir), "IsDir"},
	{uint32(DeleteDirDeleteFiles), "DeleteFiles"},
	{uint32(DeleteDirDeleteSubdirsAlso), "DeleteSubdirsAlso"},
	{uint32(DeleteDirCallChangeNotify), "CallChangeNotify"},
	{uint32(DeleteDirDisableFsRedir), "DisableFsRedir"},
}

func (f DeleteDirOrFilesFlags) String() string { return formatFlags(uint32(f), deleteDirFlagNames) }

// SharedCountFlags are the flags of a DecrementSharedCount record.
type SharedCountFlags uint32

const SharedCount64BitKey SharedCountFlags = 1

func (f SharedCountFlags) String() string {
	return formatFlags(uint32(f), []flagName{{uint32(SharedCount64BitKey), "64BitKey"}})
}

// RegFlags is the flags word of a registry record: a root key handle plus a view bit.
type RegFlags uint32

const (
	RegKeyHandleMask RegFlags = 0x80FFFFFF
	Reg64BitKey      RegFlags = 0x01000000
)

// Hive is a predefined registry root key handle.
type Hive uint32

const (
	HiveClassesRoot     Hive = 0x80000000
	HiveCurrentUser     Hive = 0x80000001
	HiveLocalMachine    Hive = 0x80000002
	HiveUsers           Hive = 0x80000003
	HivePerformanceData Hive = 0x80000004
	HiveCurrentConfig   Hive = 0x80000005
)

func (h Hive) String() string {
	switch h {
	case HiveClassesRoot:
		return "HKEY_CLASSES_ROOT"
	case HiveCurrentUser:
		return "HKEY_CURRENT_USER"
	case HiveLocalMachine:
		return "HKEY_LOCAL_MACHINE"
	case HiveUsers:
		return "HKEY_USERS"
	case HivePerformanceData:
		return "HKEY_PERFORMANCE_DATA"
	case HiveCurrentConfig:
		return "HKEY_CURRENT_CONFIG"
	default:
		return fmt.Sprintf("Hive(0x%08x)", uint32(h))
	}
}

// View selects the 32-bit or 64-bit registry view.
type View int

const (
	View32 View = 32
	View64 View = 64
)

func (v View) String() string {
	if v == View64 {
		return "Registry64"
	}
	return "Registry32"
}

// NewRegFlags combines a hive and a view into a flags word.
func NewRegFlags(h Hive, v View) RegFlags {
	f := RegFlags(h) & RegKeyHandleMask
	if v == View64 {
		f |= Reg64BitKey
	}
	return f
}

// Hive returns the root key handle.
func (f RegFlags) Hive() Hive {
	return Hive(f & RegKeyHandleMask)
}

// View returns the registry view selected by the 64-bit bit.
func (f RegFlags) View() View {
	if f&Reg64BitKey != 0 {
		return View64
	}
	return View32
}

func (f RegFlags) String() string {
	return fmt.Sprintf("%s|%s", f.Hive(), f.View())
}

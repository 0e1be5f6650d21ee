package isulog_test

import (
	"bytes"
	"fmt"

	"github.com/ssargent/isulog/pkg/isulog"
	"github.com/ssargent/isulog/pkg/records"
)

func ExampleLog_Save() {
	lg := isulog.New("{{A1B2C3}}", "Example App", false)
	lg.Append(
		records.NewMutexCheck("ExampleAppMutex"),
		records.NewDeleteFile(records.DeleteFileDisableFsRedir, `C:\Example\app.exe`),
	)

	var buf bytes.Buffer
	if err := lg.Save(&buf); err != nil {
		fmt.Println(err)
		return
	}

	loaded, err := isulog.Load(&buf, false)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(loaded.Header.AppName, loaded.Header.RecordsCount)
	for _, rec := range loaded.Records {
		fmt.Println(rec)
	}
	// Output:
	// Example App 2
	// MutexCheck: Mutex Name: ExampleAppMutex
	// DeleteFile: C:\Example\app.exe; DisableFsRedir
}

package catalog

import (
	"bytes"
	"errors"
	"testing"

	"github.com/cockroachdb/pebble/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/isulog/pkg/errs"
	"github.com/ssargent/isulog/pkg/isulog"
	"github.com/ssargent/isulog/pkg/logger"
	"github.com/ssargent/isulog/pkg/records"
)

func openTestCatalog(t *testing.T, skipCRC bool) *Catalog {
	t.Helper()
	c, err := Open("catalog", Options{FS: vfs.NewMem(), Logger: logger.Discard(), SkipCRCCheck: skipCRC})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func sampleLog(t *testing.T, appID string) []byte {
	t.Helper()
	lg := isulog.New(appID, "Sample App", true)
	lg.Append(records.NewMutexCheck("SampleMutex"), records.NewDeleteFile(0, `C:\Sample\app.exe`))

	var buf bytes.Buffer
	require.NoError(t, lg.Save(&buf))
	return buf.Bytes()
}

func TestCatalog_PutGet(t *testing.T) {
	c := openTestCatalog(t, false)
	raw := sampleLog(t, "app-1")

	entry, err := c.Put("unins000.dat", raw)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "unins000.dat", entry.Name)
	assert.Equal(t, len(raw), entry.Size)
	assert.Equal(t, "app-1", entry.Summary.AppID)
	assert.Equal(t, 2, entry.Summary.Records)
	assert.False(t, entry.CreatedAt.IsZero())

	got, err := c.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, entry.Summary, got.Summary)
	assert.True(t, entry.CreatedAt.Equal(got.CreatedAt))

	stored, err := c.Raw(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, raw, stored)

	lg, err := c.Log(entry.ID)
	require.NoError(t, err)
	require.Len(t, lg.Records, 2)
	assert.Equal(t, records.MutexCheck, lg.Records[0].Type())
}

func TestCatalog_PutRejectsInvalidLog(t *testing.T) {
	c := openTestCatalog(t, false)

	_, err := c.Put("junk", []byte("not a log"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrTruncated))

	raw := sampleLog(t, "app-1")
	raw[len(raw)-2] ^= 0xFF
	_, err = c.Put("damaged", raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrChecksum))

	entries, err := c.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCatalog_SkipCRC(t *testing.T) {
	c := openTestCatalog(t, true)

	raw := sampleLog(t, "app-1")
	raw[len(raw)-2] ^= 0xFF
	entry, err := c.Put("damaged", raw)
	require.NoError(t, err)

	_, err = c.Log(entry.ID)
	assert.NoError(t, err)
}

func TestCatalog_ListAndDelete(t *testing.T) {
	c := openTestCatalog(t, false)

	var ids []string
	for _, app := range []string{"a", "b", "c"} {
		entry, err := c.Put(app+".dat", sampleLog(t, app))
		require.NoError(t, err)
		ids = append(ids, entry.ID)
	}

	entries, err := c.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	var listed []string
	for _, e := range entries {
		listed = append(listed, e.ID)
	}
	assert.ElementsMatch(t, ids, listed)

	require.NoError(t, c.Delete(ids[1]))

	_, err = c.Get(ids[1])
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.Raw(ids[1])
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, c.Delete(ids[1]), ErrNotFound)

	entries, err = c.List()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestCatalog_InvalidID(t *testing.T) {
	c := openTestCatalog(t, false)

	_, err := c.Get("not-a-ksuid")
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = c.Raw("")
	assert.ErrorIs(t, err, ErrInvalidID)
	assert.ErrorIs(t, c.Delete("nope"), ErrInvalidID)
}

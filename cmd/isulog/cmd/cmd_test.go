package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/isulog/pkg/config"
	"github.com/ssargent/isulog/pkg/isulog"
	"github.com/ssargent/isulog/pkg/records"
)

func writeSampleLog(t *testing.T, dir, name string) string {
	t.Helper()
	lg := isulog.New("{SAMPLE-APP}", "Sample App", true)
	lg.Append(
		records.NewStartInstall("HOST", "alice", `C:\Sample`, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)),
		records.NewMutexCheck("SampleMutex"),
		records.NewDeleteFile(0, `C:\Sample\sample.exe`),
	)

	path := filepath.Join(dir, name)
	require.NoError(t, lg.SaveFile(path))
	return path
}

func damage(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF

	out := path + ".damaged"
	require.NoError(t, os.WriteFile(out, data, 0644))
	return out
}

// executeCommand runs the root command with a config file rooted in a temp dir
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.Logging.Level = "error"
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.SaveConfig(cfg, configPath))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", configPath}, args...))
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestInitializeConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config", "config.yaml")
	dataDir := filepath.Join(tmpDir, "data")

	t.Run("Successful initialization", func(t *testing.T) {
		cfg, created, err := initializeConfig(configPath, dataDir, false)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, dataDir, cfg.DataDir)
		assert.Len(t, cfg.Server.APIKey, 64)
		assert.FileExists(t, configPath)
		assert.DirExists(t, dataDir)
	})

	t.Run("Existing config is kept", func(t *testing.T) {
		first, err := config.LoadConfig(configPath)
		require.NoError(t, err)

		cfg, created, err := initializeConfig(configPath, dataDir, false)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.Server.APIKey, cfg.Server.APIKey)
	})

	t.Run("Force reinitialization", func(t *testing.T) {
		first, err := config.LoadConfig(configPath)
		require.NoError(t, err)

		cfg, created, err := initializeConfig(configPath, dataDir, true)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEqual(t, first.Server.APIKey, cfg.Server.APIKey)
	})

	t.Run("Invalid config directory", func(t *testing.T) {
		blocker := filepath.Join(tmpDir, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		_, _, err := initializeConfig(filepath.Join(blocker, "config.yaml"), dataDir, false)
		assert.Error(t, err)
	})
}

func TestReadHeader(t *testing.T) {
	path := writeSampleLog(t, t.TempDir(), "unins000.dat")

	h, err := readHeader(path, false)
	require.NoError(t, err)
	assert.True(t, h.Is64Bit)
	assert.Equal(t, "{SAMPLE-APP}", h.AppID)
	assert.Equal(t, int32(3), h.RecordsCount)

	var out bytes.Buffer
	writeHeader(&out, h)
	assert.Contains(t, out.String(), "Signature:       "+isulog.Signature64)
	assert.Contains(t, out.String(), "Records:         3")

	short := filepath.Join(t.TempDir(), "short.dat")
	require.NoError(t, os.WriteFile(short, []byte("Inno"), 0644))
	_, err = readHeader(short, false)
	assert.Error(t, err)
}

func TestWriteDump(t *testing.T) {
	lg, err := isulog.LoadFile(writeSampleLog(t, t.TempDir(), "unins000.dat"), false)
	require.NoError(t, err)

	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, writeDump(&out, lg, "text"))
		assert.Contains(t, out.String(), "App name:        Sample App")
		assert.Contains(t, out.String(), "MutexCheck")
		assert.Contains(t, out.String(), `C:\Sample\sample.exe`)
	})

	t.Run("yaml", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, writeDump(&out, lg, "yaml"))

		var doc dumpDocument
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &doc))
		assert.Equal(t, "{SAMPLE-APP}", doc.Summary.AppID)
		require.Len(t, doc.Records, 3)
		assert.Equal(t, "StartInstall", doc.Records[0].Type)
		assert.Equal(t, "DeleteFile", doc.Records[2].Type)
	})

	t.Run("unknown format", func(t *testing.T) {
		assert.Error(t, writeDump(&bytes.Buffer{}, lg, "xml"))
	})
}

func TestVerifyAndRewrite(t *testing.T) {
	dir := t.TempDir()
	good := writeSampleLog(t, dir, "unins000.dat")
	bad := damage(t, good)
	repaired := filepath.Join(dir, "repaired.dat")

	out, err := executeCommand(t, "verify", good)
	require.NoError(t, err, out)
	assert.Contains(t, out, "OK   "+good)

	out, err = executeCommand(t, "verify", good, bad)
	assert.Error(t, err)
	assert.Contains(t, out, "FAIL "+bad)

	out, err = executeCommand(t, "rewrite", "--skip-crc", bad, repaired)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Wrote 3 records")

	out, err = executeCommand(t, "verify", repaired)
	require.NoError(t, err, out)
}

func TestCatalogCommands(t *testing.T) {
	path := writeSampleLog(t, t.TempDir(), "unins000.dat")

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.Logging.Level = "error"
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.SaveConfig(cfg, configPath))

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)
		rootCmd.SetArgs(append([]string{"--config", configPath}, args...))
		err := rootCmd.Execute()
		return out.String(), err
	}
	defer rootCmd.SetArgs(nil)

	out, err := run("catalog", "put", path)
	require.NoError(t, err, out)
	id := strings.Fields(out)[0]

	out, err = run("catalog", "ls")
	require.NoError(t, err, out)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "unins000.dat")

	exported := filepath.Join(dir, "exported.dat")
	out, err = run("catalog", "get", id, "--out", exported)
	require.NoError(t, err, out)
	original, err := os.ReadFile(path)
	require.NoError(t, err)
	stored, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Equal(t, original, stored)

	out, err = run("catalog", "rm", id)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Removed "+id)

	out, err = run("catalog", "ls")
	require.NoError(t, err, out)
	assert.NotContains(t, out, id)
}

package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ssargent/isulog/pkg/isulog"
	"github.com/ssargent/isulog/pkg/metrics"
)

// loadLog reads and parses the log at path, recording the load in m when set
func loadLog(path string, skipCRC bool, logger *slog.Logger, m *metrics.Metrics) (*isulog.Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	start := time.Now()
	lg, err := isulog.LoadWithOptions(bytes.NewReader(data), isulog.LoadOptions{
		SkipCRCCheck: skipCRC,
		Logger:       logger,
	})
	if m != nil {
		m.RecordLoad(lg, int64(len(data)), err, time.Since(start))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return lg, nil
}

// saveLog writes lg to path, recording the save in m when set
func saveLog(lg *isulog.Log, path string, scratchSize int, logger *slog.Logger, m *metrics.Metrics) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	start := time.Now()
	err = lg.SaveWithOptions(f, isulog.SaveOptions{Logger: logger, ScratchSize: scratchSize})
	var size int64
	if err == nil {
		size, err = f.Seek(0, io.SeekCurrent)
	}
	if m != nil {
		m.RecordSave(lg, size, err, time.Since(start))
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

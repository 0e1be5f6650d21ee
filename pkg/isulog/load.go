package isulog

import (
	"bytes"
	"io"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/ssargent/isulog/pkg/block"
	"github.com/ssargent/isulog/pkg/errs"
	"github.com/ssargent/isulog/pkg/records"
)

// payloads up to this size are read into an exact allocation
const directReadLimit = 1 << 20

// LoadOptions configure LoadWithOptions
type LoadOptions struct {
	SkipCRCCheck bool
	Logger       *slog.Logger
}

// Load reads a log from r. With skipCRC set, header and block checksums are not verified.
func Load(r io.Reader, skipCRC bool) (*Log, error) {
	return LoadWithOptions(r, LoadOptions{SkipCRCCheck: skipCRC})
}

// LoadFile reads the log at path.
func LoadFile(path string, skipCRC bool) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadWithOptions(f, LoadOptions{SkipCRCCheck: skipCRC})
}

// LoadWithOptions reads a log from r. r is not closed; it is left positioned
// after the last block that held record data.
func LoadWithOptions(r io.Reader, opts LoadOptions) (*Log, error) {
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}

	raw := make([]byte, HeaderSize)
	if n, err := io.ReadFull(r, raw); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errors.Wrapf(errs.ErrTruncated, "header: got %d of %d bytes", n, HeaderSize)
		}
		return nil, err
	}

	header, err := ParseHeader(raw, opts.SkipCRCCheck)
	if err != nil {
		return nil, err
	}
	if header.RecordsCount < 0 {
		return nil, errors.Wrapf(errs.ErrFormat, "negative record count %d", header.RecordsCount)
	}

	stream, err := block.NewReader(r, block.Config{LeaveOpen: true, SkipChecksum: opts.SkipCRCCheck})
	if err != nil {
		return nil, errors.Wrap(err, "open record stream")
	}
	defer stream.Close()

	lg := &Log{
		Header:  header,
		Records: make([]records.Record, 0, min(int(header.RecordsCount), 1024)),
	}

	var hdr [RecordHeaderSize]byte
	for i := 0; i < int(header.RecordsCount); i++ {
		if err := readFull(stream, hdr[:]); err != nil {
			return nil, errors.Wrapf(err, "record %d header", i)
		}
		rh := ParseRecordHeader(hdr[:])

		payload, err := readPayload(stream, rh.DataSize)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d (%s) payload", i, rh.Type)
		}

		rec := records.Decode(rh.Type, rh.ExtraData, payload)
		if raw, ok := rec.(*records.Raw); ok && raw.Err() != nil {
			logger.Warn("record kept undecoded", "index", i, "type", rh.Type.String(), "error", raw.Err())
		}
		lg.Records = append(lg.Records, rec)
	}

	logger.Debug("log loaded",
		"app_id", header.AppID,
		"records", len(lg.Records),
		"blocks", stream.Blocks())

	return lg, nil
}

func readFull(r io.Reader, p []byte) error {
	n, err := io.ReadFull(r, p)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.Wrapf(errs.ErrTruncated, "got %d of %d bytes", n, len(p))
	}
	return err
}

// readPayload reads size bytes without trusting size for the allocation of large payloads.
func readPayload(r io.Reader, size uint32) ([]byte, error) {
	if size <= directReadLimit {
		payload := make([]byte, size)
		if err := readFull(r, payload); err != nil {
			return nil, err
		}
		return payload, nil
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, int64(size)))
	if err != nil {
		return nil, err
	}
	if n < int64(size) {
		return nil, errors.Wrapf(errs.ErrTruncated, "got %d of %d bytes", n, size)
	}
	return buf.Bytes(), nil
}

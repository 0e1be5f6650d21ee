package isulog

import (
	"encoding/binary"
	"io"
	"log/slog"
	"math"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ssargent/isulog/pkg/block"
	"github.com/ssargent/isulog/pkg/errs"
	"github.com/ssargent/isulog/pkg/records"
)

// DefaultScratchSize is the size of the pooled buffer each Save call encodes records into
const DefaultScratchSize = 128 << 10

var scratchPool = sync.Pool{
	New: func() any {
		buf := make([]byte, DefaultScratchSize)
		return &buf
	},
}

// SaveOptions configure SaveWithOptions
type SaveOptions struct {
	Logger *slog.Logger

	// ScratchSize overrides the initial record buffer size. Zero uses the shared pool.
	ScratchSize int
}

// Save writes the log to w. See SaveWithOptions.
func (l *Log) Save(w io.Writer) error {
	return l.SaveWithOptions(w, SaveOptions{})
}

// SaveFile writes the log to path, replacing any existing file.
func (l *Log) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := l.SaveWithOptions(f, SaveOptions{}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SaveWithOptions writes the log to w.
//
// When w is an io.WriteSeeker that reports its position, the header is written
// last with FileEndOffset set to the stream length and w is left positioned at
// the end of the log. Bytes already past the log are not truncated.
// Otherwise the header is written first with FileEndOffset set to UnknownEndOffset.
// On success l.Header carries the RecordsCount, FileEndOffset and CRC32 written.
func (l *Log) SaveWithOptions(w io.Writer, opts SaveOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}

	if len(l.Records) > math.MaxInt32 {
		return errors.Wrapf(errs.ErrFormat, "%d records exceed the header count field", len(l.Records))
	}

	header := l.Header
	header.RecordsCount = int32(len(l.Records))

	seeker, start, seekable := seekableStart(w)
	if seekable {
		if _, err := seeker.Seek(HeaderSize, io.SeekCurrent); err != nil {
			return errors.Wrap(err, "reserve header")
		}
	} else {
		header.FileEndOffset = UnknownEndOffset
		if err := writeHeader(w, &header); err != nil {
			return err
		}
	}

	scratch := getScratch(opts.ScratchSize)
	defer putScratch(scratch)

	stream := block.NewWriter(w, block.Config{LeaveOpen: true})
	defer stream.Close()

	buf := *scratch
	for i, rec := range l.Records {
		var n int
		var err error
		for {
			n, err = records.Encode(rec, buf[RecordHeaderSize:])
			if !errors.Is(err, errs.ErrShortBuffer) {
				break
			}
			buf = make([]byte, 2*len(buf))
		}
		if err != nil {
			return errors.Wrapf(err, "encode record %d (%s)", i, rec.Type())
		}

		RecordHeader{Type: rec.Type(), ExtraData: rec.Flags(), DataSize: uint32(n)}.MarshalTo(buf)
		if _, err := stream.Write(buf[:RecordHeaderSize+n]); err != nil {
			return errors.Wrapf(err, "write record %d", i)
		}
	}

	if err := stream.FinalizeBlock(); err != nil {
		return errors.Wrap(err, "finalize block")
	}
	if err := stream.Flush(); err != nil {
		return err
	}

	if seekable {
		end, err := seeker.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}
		length, err := seeker.Seek(0, io.SeekEnd)
		if err != nil {
			return err
		}
		if length > math.MaxInt32 {
			return errors.Wrapf(errs.ErrFormat, "stream length %d exceeds the header end offset field", length)
		}
		header.FileEndOffset = int32(length)

		if _, err := seeker.Seek(start, io.SeekStart); err != nil {
			return err
		}
		if err := writeHeader(w, &header); err != nil {
			return err
		}
		if _, err := seeker.Seek(end, io.SeekStart); err != nil {
			return err
		}
	}

	l.Header = header

	logger.Debug("log saved",
		"app_id", header.AppID,
		"records", len(l.Records),
		"blocks", stream.Blocks(),
		"seekable", seekable)

	return nil
}

func seekableStart(w io.Writer) (io.WriteSeeker, int64, bool) {
	ws, ok := w.(io.WriteSeeker)
	if !ok {
		return nil, 0, false
	}
	pos, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, false
	}
	return ws, pos, true
}

// writeHeader encodes h, stores its CRC32 back into h and writes it to w.
func writeHeader(w io.Writer, h *Header) error {
	b, err := h.MarshalBinary()
	if err != nil {
		return err
	}
	h.CRC32 = binary.LittleEndian.Uint32(b[offCRC:])
	_, err = w.Write(b)
	return err
}

func getScratch(size int) *[]byte {
	if size > 0 && size != DefaultScratchSize {
		buf := make([]byte, max(size, RecordHeaderSize+1))
		return &buf
	}
	return scratchPool.Get().(*[]byte)
}

func putScratch(buf *[]byte) {
	if len(*buf) == DefaultScratchSize {
		scratchPool.Put(buf)
	}
}

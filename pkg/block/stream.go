package block

import (
	"hash/crc32"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/ssargent/isulog/pkg/errs"
)

// MaxBlockSize bounds the payload size accepted from a block header
const MaxBlockSize = 64 << 20

// Stream presents block-framed data as a plain byte stream. The mode is fixed at
// construction: a read-mode stream verifies and unwraps blocks, a write-mode stream
// stages bytes and emits blocks.
type Stream struct {
	mode   Mode
	config Config

	r     io.Reader
	w     io.Writer
	under any

	buf   []byte
	pos   int // read: next unread byte; write: bytes staged
	avail int // read: unread bytes in buf

	base     int64 // underlying position at construction
	consumed int64 // bytes taken from the underlying reader
	blocks   int
	eof      bool
	closed   bool
}

// NewReader creates a read-mode stream and loads the first block.
// An underlying stream that is already at its end is not an error.
func NewReader(r io.Reader, config Config) (*Stream, error) {
	s := &Stream{
		mode:   ModeRead,
		config: config,
		r:      r,
		under:  r,
		buf:    make([]byte, 0, DefaultBlockSize),
	}

	if seeker, ok := r.(io.Seeker); ok {
		if pos, err := seeker.Seek(0, io.SeekCurrent); err == nil {
			s.base = pos
		}
	}

	if err := s.fill(); err != nil {
		if err != io.EOF {
			return nil, err
		}
		s.eof = true
	}
	return s, nil
}

// NewWriter creates a write-mode stream
func NewWriter(w io.Writer, config Config) *Stream {
	size := config.BlockSize
	if size <= 0 {
		size = DefaultBlockSize
	}
	return &Stream{
		mode:   ModeWrite,
		config: config,
		w:      w,
		under:  w,
		buf:    make([]byte, size),
	}
}

// Mode returns the mode fixed at construction
func (s *Stream) Mode() Mode {
	return s.mode
}

// Blocks returns the number of blocks read or written so far
func (s *Stream) Blocks() int {
	return s.blocks
}

// Buffered returns the unread bytes (read mode) or staged bytes (write mode)
func (s *Stream) Buffered() int {
	if s.mode == ModeRead {
		return s.avail
	}
	return s.pos
}

// fill reads the next block into the buffer. io.EOF means a clean end of input.
func (s *Stream) fill() error {
	var hdr [HeaderSize]byte
	n, err := io.ReadFull(s.r, hdr[:])
	s.consumed += int64(n)
	switch {
	case err == io.EOF:
		return io.EOF
	case err == io.ErrUnexpectedEOF:
		return errors.Wrapf(errs.ErrTruncated, "block header: got %d of %d bytes", n, HeaderSize)
	case err != nil:
		return err
	}

	h := ParseHeader(hdr[:])
	if !s.config.SkipChecksum && !h.Valid() {
		return errors.Wrapf(errs.ErrFormat, "block size %d does not match complement of %d", h.Size, h.NotSize)
	}
	if h.Size > MaxBlockSize {
		return errors.Wrapf(errs.ErrFormat, "block size %d exceeds %d", h.Size, MaxBlockSize)
	}

	size := int(h.Size)
	if cap(s.buf) < size {
		s.buf = make([]byte, size)
	}
	s.buf = s.buf[:size]

	n, err = io.ReadFull(s.r, s.buf)
	s.consumed += int64(n)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errors.Wrapf(errs.ErrTruncated, "block payload: got %d of %d bytes", n, size)
		}
		return err
	}

	if !s.config.SkipChecksum {
		if sum := crc32.ChecksumIEEE(s.buf); sum != h.CRC32 {
			return errors.Wrapf(errs.ErrChecksum, "block %d crc %08x, expected %08x", s.blocks, sum, h.CRC32)
		}
	}

	s.pos = 0
	s.avail = size
	s.blocks++
	return nil
}

// Read copies unwrapped payload bytes into p, crossing block boundaries as needed.
func (s *Stream) Read(p []byte) (int, error) {
	if s.mode != ModeRead {
		return 0, errors.Wrap(errs.ErrMode, "read on a write-mode block stream")
	}

	n := 0
	for n < len(p) {
		if s.avail == 0 {
			if s.eof {
				break
			}
			if err := s.fill(); err != nil {
				if err == io.EOF {
					s.eof = true
					break
				}
				return n, err
			}
			continue
		}

		c := copy(p[n:], s.buf[s.pos:s.pos+s.avail])
		n += c
		s.pos += c
		s.avail -= c
	}

	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write stages p, emitting a block each time the staging buffer is full and more
// bytes remain. The last partial block is only emitted by FinalizeBlock.
func (s *Stream) Write(p []byte) (int, error) {
	if s.mode != ModeWrite {
		return 0, errors.Wrap(errs.ErrMode, "write on a read-mode block stream")
	}

	n := 0
	for n < len(p) {
		if s.pos == len(s.buf) {
			if err := s.FinalizeBlock(); err != nil {
				return n, err
			}
		}
		c := copy(s.buf[s.pos:], p[n:])
		s.pos += c
		n += c
	}
	return n, nil
}

// FinalizeBlock emits the staged bytes as one block, even when none are staged.
func (s *Stream) FinalizeBlock() error {
	if s.mode != ModeWrite {
		return errors.Wrap(errs.ErrMode, "finalize on a read-mode block stream")
	}

	payload := s.buf[:s.pos]
	var hdr [HeaderSize]byte
	NewHeader(payload).MarshalTo(hdr[:])

	if _, err := s.w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := s.w.Write(payload); err != nil {
		return err
	}

	s.pos = 0
	s.blocks++
	return nil
}

// Flush forwards to the underlying stream when it is flushable. It does not emit a block.
func (s *Stream) Flush() error {
	if f, ok := s.under.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Position returns the offset in the underlying stream of the next unread byte.
func (s *Stream) Position() (int64, error) {
	if s.mode != ModeRead {
		return 0, errors.Wrap(errs.ErrUnsupported, "position of a write-mode block stream")
	}
	return s.base + s.consumed - int64(s.avail), nil
}

// Seek is not supported; blocks are consumed or appended in order only.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	return 0, errors.Wrap(errs.ErrUnsupported, "seek on a block stream")
}

// Truncate is not supported.
func (s *Stream) Truncate(size int64) error {
	return errors.Wrap(errs.ErrUnsupported, "truncate on a block stream")
}

// Close closes the underlying stream unless the stream was created with LeaveOpen.
// Close does not emit a pending block.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.config.LeaveOpen {
		return nil
	}
	if c, ok := s.under.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

var (
	_ io.ReadWriteCloser = (*Stream)(nil)
	_ io.Seeker          = (*Stream)(nil)
)

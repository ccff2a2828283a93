package parser

import (
	"fmt"
	"io"
	"os"
)

// ByteSource is a random-access byte stream over a contiguous logical range
// [start, end) of some backing storage, with a movable position pos in
// [start, end]. Multiple Substream views may share the same backing storage;
// each carries its own independent start/pos/end triplet.
//
// A ByteSource is not safe for concurrent use. A Lexer holds an exclusive
// borrow of one for its lifetime; re-entering the source at a different
// offset is done by constructing a Substream and a fresh Lexer over it,
// never by sharing one Lexer across goroutines.
type ByteSource struct {
	backing backing
	start   int64
	pos     int64
	end     int64
}

// backing is the minimal random-access surface a ByteSource needs from its
// storage: read exactly len(p) bytes at a given absolute offset.
type backing interface {
	ReadAt(p []byte, off int64) (int, error)
	Size() int64
}

type byteSliceBacking []byte

func (b byteSliceBacking) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b byteSliceBacking) Size() int64 { return int64(len(b)) }

type fileBacking struct{ f *os.File }

func (b fileBacking) ReadAt(p []byte, off int64) (int, error) {
	return b.f.ReadAt(p, off)
}

func (b fileBacking) Size() int64 {
	info, err := b.f.Stat()
	if err != nil {
		return 0
	}
	return info.Size()
}

// NewByteSourceFromBytes wraps an in-memory buffer as a ByteSource spanning
// the whole buffer.
func NewByteSourceFromBytes(data []byte) *ByteSource {
	b := byteSliceBacking(data)
	return &ByteSource{backing: b, start: 0, pos: 0, end: b.Size()}
}

// NewByteSourceFromFile wraps an *os.File as a ByteSource spanning the whole
// file. The file must support ReadAt (regular files do).
func NewByteSourceFromFile(f *os.File) *ByteSource {
	b := fileBacking{f: f}
	return &ByteSource{backing: b, start: 0, pos: 0, end: b.Size()}
}

// GetByte returns the byte at pos and advances pos by one. ok is false at end.
func (s *ByteSource) GetByte() (b byte, ok bool) {
	if s.pos >= s.end {
		return 0, false
	}
	var buf [1]byte
	n, err := s.backing.ReadAt(buf[:], s.pos)
	if n < 1 || (err != nil && err != io.EOF) {
		return 0, false
	}
	s.pos++
	return buf[0], true
}

// PeekByte returns the byte at pos without advancing pos.
func (s *ByteSource) PeekByte() (b byte, ok bool) {
	if s.pos >= s.end {
		return 0, false
	}
	var buf [1]byte
	n, err := s.backing.ReadAt(buf[:], s.pos)
	if n < 1 || (err != nil && err != io.EOF) {
		return 0, false
	}
	return buf[0], true
}

// GetBytes returns up to n bytes starting at pos and advances pos by the
// number of bytes actually returned. The slice is truncated if end is nearer.
func (s *ByteSource) GetBytes(n int) []byte {
	out := s.PeekBytes(n)
	s.pos += int64(len(out))
	return out
}

// PeekBytes returns up to n bytes starting at pos without advancing pos.
func (s *ByteSource) PeekBytes(n int) []byte {
	if n <= 0 || s.pos >= s.end {
		return nil
	}
	avail := s.end - s.pos
	if int64(n) > avail {
		n = int(avail)
	}
	buf := make([]byte, n)
	read, err := s.backing.ReadAt(buf, s.pos)
	if err != nil && err != io.EOF {
		return nil
	}
	return buf[:read]
}

// GetUint16BE reads a big-endian 16-bit unsigned integer, advancing pos by 2.
// It fails if fewer than 2 bytes remain.
func (s *ByteSource) GetUint16BE() (uint16, error) {
	b := s.GetBytes(2)
	if len(b) != 2 {
		return 0, fmt.Errorf("bytesource: GetUint16BE: %w", errShortRead)
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// GetInt32BE reads a big-endian 32-bit signed integer, advancing pos by 4.
// It fails if fewer than 4 bytes remain.
func (s *ByteSource) GetInt32BE() (int32, error) {
	b := s.GetBytes(4)
	if len(b) != 4 {
		return 0, fmt.Errorf("bytesource: GetInt32BE: %w", errShortRead)
	}
	v := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	return int32(v), nil
}

// Pos returns the current position.
func (s *ByteSource) Pos() int64 { return s.pos }

// Start returns the start of the logical range.
func (s *ByteSource) Start() int64 { return s.start }

// End returns the end of the logical range (exclusive).
func (s *ByteSource) End() int64 { return s.end }

// Len returns end - start.
func (s *ByteSource) Len() int64 { return s.end - s.start }

// SetPos sets pos to an absolute position. Out-of-range values are clamped
// to [start, end] so callers never observe an out-of-bounds pos.
func (s *ByteSource) SetPos(p int64) {
	if p < s.start {
		p = s.start
	}
	if p > s.end {
		p = s.end
	}
	s.pos = p
}

// Skip moves pos by a relative amount, which may be negative.
func (s *ByteSource) Skip(n int64) {
	s.SetPos(s.pos + n)
}

// Reset sets pos back to start.
func (s *ByteSource) Reset() { s.pos = s.start }

// MoveStart sets start to the current pos, shrinking the logical window from
// the front. The Lexer, XRefResolver and Reader never call this.
func (s *ByteSource) MoveStart() { s.start = s.pos }

// Substream produces an independent view sharing the backing storage, with
// its own pos = newStart and end = this source's end.
func (s *ByteSource) Substream(newStart int64) *ByteSource {
	return &ByteSource{
		backing: s.backing,
		start:   newStart,
		pos:     newStart,
		end:     s.end,
	}
}

var errShortRead = fmt.Errorf("short read")

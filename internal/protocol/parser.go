package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrShortBuffer is returned when a body ends before all fields are read.
	ErrShortBuffer = errors.New("buffer too short")

	// ErrInvalidEnum is returned when an enumerated field holds an unknown code.
	ErrInvalidEnum = errors.New("invalid enum value")

	// ErrInvalidText is returned when a text field is not valid UTF-8.
	ErrInvalidText = errors.New("invalid utf-8 text")
)

// PacketReader reads big-endian fields from a command body. The first
// failure is sticky: later reads return zero values and Err reports it.
type PacketReader struct {
	data []byte
	off  int
	err  error
}

// NewPacketReader creates a reader over data.
func NewPacketReader(data []byte) *PacketReader {
	return &PacketReader{data: data}
}

// Err returns the first error encountered.
func (r *PacketReader) Err() error {
	return r.err
}

// Remaining returns the number of unread bytes.
func (r *PacketReader) Remaining() int {
	return len(r.data) - r.off
}

// Fail records err unless an earlier error is already held.
func (r *PacketReader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *PacketReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.data) {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortBuffer, n, r.off, len(r.data)-r.off)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

// Uint8 reads one byte.
func (r *PacketReader) Uint8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// Bool reads a one-byte flag. Any non-zero value is true.
func (r *PacketReader) Bool() bool {
	return r.Uint8() != 0
}

// Uint16 reads a big-endian uint16.
func (r *PacketReader) Uint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

// Int16 reads a big-endian int16.
func (r *PacketReader) Int16() int16 {
	return int16(r.Uint16())
}

// Uint32 reads a big-endian uint32.
func (r *PacketReader) Uint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// Skip discards n padding bytes.
func (r *PacketReader) Skip(n int) {
	r.take(n)
}

// Bytes reads n raw bytes, copied out of the buffer. It returns nil when
// n is 0.
func (r *PacketReader) Bytes(n int) []byte {
	b := r.take(n)
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// Rest reads every remaining byte.
func (r *PacketReader) Rest() []byte {
	return r.Bytes(r.Remaining())
}

// FixedString reads an n-byte text field trimmed at the first NUL.
func (r *PacketReader) FixedString(n int) string {
	b := r.take(n)
	if b == nil {
		return ""
	}
	for i, c := range b {
		if c == 0 {
			b = b[:i]
			break
		}
	}
	return r.text(b)
}

// NullString reads a NUL-terminated string.
func (r *PacketReader) NullString() string {
	if r.err != nil {
		return ""
	}
	for i := r.off; i < len(r.data); i++ {
		if r.data[i] == 0 {
			b := r.data[r.off:i]
			r.off = i + 1
			return r.text(b)
		}
	}
	r.err = fmt.Errorf("%w: unterminated string at offset %d", ErrShortBuffer, r.off)
	return ""
}

func (r *PacketReader) text(b []byte) string {
	if !utf8.Valid(b) {
		r.Fail(fmt.Errorf("%w: %x", ErrInvalidText, b))
		return ""
	}
	return string(b)
}

// VideoSource reads a uint16 video source, failing on unknown codes.
func (r *PacketReader) VideoSource() VideoSource {
	v := VideoSource(r.Uint16())
	if r.err == nil && !v.Valid() {
		r.Fail(fmt.Errorf("%w: video source %d", ErrInvalidEnum, uint16(v)))
	}
	return v
}

// Enum8 reads a one-byte enumeration, failing on unknown codes.
func Enum8[T interface {
	~uint8
	Valid() bool
}](r *PacketReader) T {
	v := T(r.Uint8())
	if r.err == nil && !v.Valid() {
		r.Fail(fmt.Errorf("%w: %T %d", ErrInvalidEnum, v, uint8(v)))
	}
	return v
}

// Enum16 reads a two-byte enumeration, failing on unknown codes.
func Enum16[T interface {
	~uint16
	Valid() bool
}](r *PacketReader) T {
	v := T(r.Uint16())
	if r.err == nil && !v.Valid() {
		r.Fail(fmt.Errorf("%w: %T %d", ErrInvalidEnum, v, uint16(v)))
	}
	return v
}

// Frame is one command frame sliced out of a datagram payload.
type Frame struct {
	Tag  string
	Body []byte
}

// IsPadding reports whether the frame carries the all-zero tag.
func (f Frame) IsPadding() bool {
	return f.Tag == "\x00\x00\x00\x00"
}

// SplitFrames slices a datagram payload into command frames. A final frame
// that is truncated or declares an impossible length stops the walk; the
// frames before it are returned together with the error.
func SplitFrames(payload []byte) ([]Frame, error) {
	var frames []Frame
	for len(payload) > 0 {
		if len(payload) < FrameHeaderSize {
			return frames, fmt.Errorf("%w: %d trailing bytes", ErrShortBuffer, len(payload))
		}
		length := int(binary.BigEndian.Uint16(payload[0:2]))
		if length < FrameHeaderSize {
			return frames, fmt.Errorf("%w: frame length %d", ErrPacketLength, length)
		}
		if length > len(payload) {
			return frames, fmt.Errorf("%w: frame length %d, have %d", ErrShortBuffer, length, len(payload))
		}
		frames = append(frames, Frame{
			Tag:  string(payload[4:8]),
			Body: payload[8:length],
		})
		payload = payload[length:]
	}
	return frames, nil
}

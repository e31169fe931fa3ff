package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// PacketBuilder constructs big-endian command bodies.
type PacketBuilder struct {
	buf bytes.Buffer
}

// NewPacketBuilder creates a new PacketBuilder.
func NewPacketBuilder() *PacketBuilder {
	return &PacketBuilder{}
}

// Reset clears the builder for reuse.
func (b *PacketBuilder) Reset() {
	b.buf.Reset()
}

// WriteUint8 writes a single byte.
func (b *PacketBuilder) WriteUint8(v uint8) *PacketBuilder {
	b.buf.WriteByte(v)
	return b
}

// WriteBool writes a one-byte flag.
func (b *PacketBuilder) WriteBool(v bool) *PacketBuilder {
	if v {
		b.buf.WriteByte(1)
	} else {
		b.buf.WriteByte(0)
	}
	return b
}

// WriteUint16 writes a uint16 in big-endian order.
func (b *PacketBuilder) WriteUint16(v uint16) *PacketBuilder {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	b.buf.Write(tmp[:])
	return b
}

// WriteInt16 writes an int16 in big-endian order.
func (b *PacketBuilder) WriteInt16(v int16) *PacketBuilder {
	return b.WriteUint16(uint16(v))
}

// WriteUint32 writes a uint32 in big-endian order.
func (b *PacketBuilder) WriteUint32(v uint32) *PacketBuilder {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	b.buf.Write(tmp[:])
	return b
}

// WriteVideoSource writes a video source as a uint16.
func (b *PacketBuilder) WriteVideoSource(v VideoSource) *PacketBuilder {
	return b.WriteUint16(uint16(v))
}

// WritePadding writes n zero bytes.
func (b *PacketBuilder) WritePadding(n int) *PacketBuilder {
	for i := 0; i < n; i++ {
		b.buf.WriteByte(0)
	}
	return b
}

// WriteFixedString writes s into a field of exactly n bytes, NUL padded.
// Longer strings are truncated at the last whole rune that fits.
func (b *PacketBuilder) WriteFixedString(s string, n int) *PacketBuilder {
	if len(s) > n {
		cut := n
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	data := []byte(s)
	b.buf.Write(data)
	return b.WritePadding(n - len(data))
}

// WriteNullString writes a null-terminated string.
func (b *PacketBuilder) WriteNullString(s string) *PacketBuilder {
	b.buf.WriteString(s)
	b.buf.WriteByte(0)
	return b
}

// WriteBytes writes raw bytes.
func (b *PacketBuilder) WriteBytes(data []byte) *PacketBuilder {
	b.buf.Write(data)
	return b
}

// Build returns the constructed bytes.
func (b *PacketBuilder) Build() []byte {
	return b.buf.Bytes()
}

// Len returns the current size of the body being built.
func (b *PacketBuilder) Len() int {
	return b.buf.Len()
}

// String returns a hex dump of the current body for debugging.
func (b *PacketBuilder) String() string {
	data := b.buf.Bytes()
	return fmt.Sprintf("PacketBuilder[%d bytes]: %x", len(data), data)
}

// ---- Command frames ----

// FrameHeaderSize is the length prefix, two reserved bytes and the tag.
const FrameHeaderSize = 8

// BuildFrame wraps a command body in its frame.
// Format: [length:2][reserved:2][tag:4][body...] where length covers the whole frame.
func BuildFrame(tag string, body []byte) []byte {
	frame := make([]byte, FrameHeaderSize+len(body))
	binary.BigEndian.PutUint16(frame[0:2], uint16(len(frame)))
	copy(frame[4:8], tag)
	copy(frame[8:], body)
	return frame
}

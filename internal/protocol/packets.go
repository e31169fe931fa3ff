// Package protocol implements the switcher wire format: the 12-byte UDP
// datagram header, the command frames carried in datagram payloads, and the
// big-endian readers and builders every command record is encoded with.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// PacketFlag is one bit of the 5-bit flag field in the datagram header.
type PacketFlag uint8

// Header flags.
const (
	FlagAckRequest PacketFlag = 0x01 // Peer must acknowledge this datagram
	FlagHello      PacketFlag = 0x02 // Session handshake
	FlagResend     PacketFlag = 0x04 // Retransmission of an earlier datagram
	FlagReserved   PacketFlag = 0x08 // Unused
	FlagAck        PacketFlag = 0x10 // Acknowledgement; AckID holds the acked sequence
)

// Has reports whether every bit of f is set.
func (p PacketFlag) Has(f PacketFlag) bool {
	return p&f == f
}

func (p PacketFlag) String() string {
	names := []struct {
		flag PacketFlag
		name string
	}{
		{FlagAckRequest, "ACK_REQUEST"},
		{FlagHello, "HELLO"},
		{FlagResend, "RESEND"},
		{FlagReserved, "RESERVED"},
		{FlagAck, "ACK"},
	}
	out := ""
	for _, n := range names {
		if p.Has(n.flag) {
			if out != "" {
				out += "|"
			}
			out += n.name
		}
	}
	if out == "" {
		return "NONE"
	}
	return out
}

const (
	// HeaderSize is the fixed size of the datagram header.
	HeaderSize = 12

	// MaxPacketSize is the largest datagram the 11-bit size field can describe.
	MaxPacketSize = 0x07FF

	// DefaultPort is the UDP port switchers listen on.
	DefaultPort = 9910

	// DefaultSessionID is the client-chosen session id sent with HELLO.
	DefaultSessionID uint16 = 0x1337

	sizeMask = 0x07FF
)

var (
	// ErrShortPacket is returned when a datagram is smaller than the header.
	ErrShortPacket = errors.New("packet shorter than header")

	// ErrPacketLength is returned when the header size field disagrees with the datagram.
	ErrPacketLength = errors.New("invalid packet length")
)

// HelloPayload is the capability block carried by a client HELLO.
var HelloPayload = []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

// Packet is one UDP datagram exchanged with the switcher.
// Format: [flags:5bit|size:11bit][session:2][ack_id:2][reserved:4][sequence:2][payload...]
type Packet struct {
	Flags     PacketFlag
	Size      uint16 // As read from the wire; recomputed by Encode
	SessionID uint16
	AckID     uint16
	Sequence  uint16
	Payload   []byte
}

// DecodePacket parses a datagram. The payload is copied out of data.
func DecodePacket(data []byte) (*Packet, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortPacket, len(data))
	}

	word := binary.BigEndian.Uint16(data[0:2])
	size := word & sizeMask
	if int(size) < HeaderSize || int(size) > len(data) {
		return nil, fmt.Errorf("%w: header says %d, datagram has %d", ErrPacketLength, size, len(data))
	}

	p := &Packet{
		Flags:     PacketFlag(word >> 11),
		Size:      size,
		SessionID: binary.BigEndian.Uint16(data[2:4]),
		AckID:     binary.BigEndian.Uint16(data[4:6]),
		Sequence:  binary.BigEndian.Uint16(data[10:12]),
	}
	if int(size) > HeaderSize {
		p.Payload = make([]byte, int(size)-HeaderSize)
		copy(p.Payload, data[HeaderSize:size])
	}
	return p, nil
}

// Encode serializes the packet, recomputing the size field from the payload.
func (p *Packet) Encode() ([]byte, error) {
	size := HeaderSize + len(p.Payload)
	if size > MaxPacketSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrPacketLength, size, MaxPacketSize)
	}

	out := make([]byte, size)
	binary.BigEndian.PutUint16(out[0:2], uint16(p.Flags)<<11|uint16(size))
	binary.BigEndian.PutUint16(out[2:4], p.SessionID)
	binary.BigEndian.PutUint16(out[4:6], p.AckID)
	binary.BigEndian.PutUint16(out[10:12], p.Sequence)
	copy(out[HeaderSize:], p.Payload)
	return out, nil
}

// IsHello reports whether the packet is part of the handshake.
func (p *Packet) IsHello() bool {
	return p.Flags.Has(FlagHello)
}

// NewHelloPacket builds the client handshake datagram.
func NewHelloPacket(sessionID uint16) *Packet {
	payload := make([]byte, len(HelloPayload))
	copy(payload, HelloPayload)
	return &Packet{
		Flags:     FlagHello,
		SessionID: sessionID,
		Payload:   payload,
	}
}

// NewAckPacket builds a pure acknowledgement of the peer's sequence number.
// Pure acks never consume a sequence slot.
func NewAckPacket(sessionID, ackID uint16) *Packet {
	return &Packet{
		Flags:     FlagAck,
		SessionID: sessionID,
		AckID:     ackID,
	}
}

// NewCommandPacket wraps encoded command frames in a datagram that asks
// the peer for an acknowledgement.
func NewCommandPacket(sessionID, sequence uint16, payload []byte) *Packet {
	return &Packet{
		Flags:     FlagAckRequest,
		SessionID: sessionID,
		Sequence:  sequence,
		Payload:   payload,
	}
}

func (p *Packet) String() string {
	return fmt.Sprintf("Packet[%s session=0x%04x ack=%d seq=%d payload=%d]",
		p.Flags, p.SessionID, p.AckID, p.Sequence, len(p.Payload))
}

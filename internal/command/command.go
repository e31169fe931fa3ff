// Package command defines every switcher record: its four-character tag,
// its byte-exact big-endian layout, and for inbound records the way it
// merges into the device state. The Registry and Parser turn datagram
// payloads into commands.
package command

import (
	"errors"
	"fmt"

	"github.com/avista-project/avista/internal/protocol"
)

var (
	// ErrUnknownCommand is returned for a tag with no registered decoder.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrIgnoredCommand is returned for a tag that is deliberately not modelled.
	ErrIgnoredCommand = errors.New("ignored command")

	// ErrNoCandidate is returned when no decoder supports the negotiated version.
	ErrNoCandidate = errors.New("no decoder for protocol version")
)

// Command is one switcher record.
type Command interface {
	Tag() string
	Encode(b *protocol.PacketBuilder)
}

// Versioned is implemented by records whose layout only exists in a range
// of protocol versions. A zero maximum means no upper bound.
type Versioned interface {
	VersionRange() (min, max protocol.Version)
}

// VersionRange returns the version bounds of cmd, zero when unbounded.
func VersionRange(cmd Command) (min, max protocol.Version) {
	if v, ok := cmd.(Versioned); ok {
		return v.VersionRange()
	}
	return protocol.Version{}, protocol.Version{}
}

// Supports reports whether cmd may be sent to a switcher speaking v.
// Every command is accepted while no version has been negotiated.
func Supports(cmd Command, v protocol.Version) bool {
	if v.IsZero() {
		return true
	}
	lo, hi := VersionRange(cmd)
	if !lo.IsZero() && v.Less(lo) {
		return false
	}
	if !hi.IsZero() && hi.Less(v) {
		return false
	}
	return true
}

// Body serializes the record body without its frame header.
func Body(cmd Command) []byte {
	b := protocol.NewPacketBuilder()
	cmd.Encode(b)
	return b.Build()
}

// Marshal serializes cmd as a complete command frame.
func Marshal(cmd Command) []byte {
	return protocol.BuildFrame(cmd.Tag(), Body(cmd))
}

// DecodeError describes a frame that could not be decoded.
type DecodeError struct {
	Tag string
	Raw []byte
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s (%x): %v", e.Tag, e.Raw, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Opt returns a pointer to v, for populating the optional fields of
// masked set commands.
func Opt[T any](v T) *T {
	return &v
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// maskOf packs present fields into a mask, the first argument being bit 0.
func maskOf(present ...bool) uint32 {
	var m uint32
	for i, set := range present {
		if set {
			m |= 1 << i
		}
	}
	return m
}

func optIf[T any](mask uint32, bit int, v T) *T {
	if mask&(1<<bit) == 0 {
		return nil
	}
	return &v
}

// recordDecoder is satisfied by pointers to record structs.
type recordDecoder[T any] interface {
	*T
	Command
	decode(r *protocol.PacketReader)
}

// DecodeFunc turns a frame body into a command.
type DecodeFunc func(body []byte) (Command, error)

func decoder[T any, P recordDecoder[T]]() DecodeFunc {
	return func(body []byte) (Command, error) {
		cmd := P(new(T))
		r := protocol.NewPacketReader(body)
		cmd.decode(r)
		if err := r.Err(); err != nil {
			return nil, err
		}
		return cmd, nil
	}
}

package command

import (
	"encoding/hex"

	"github.com/avista-project/avista/internal/protocol"
	"github.com/avista-project/avista/internal/state"
)

// MediaClip (MPCS) describes one clip slot of the media pool.
// Format: [clip:1][used:1][name:NUL-terminated][frames:2]
type MediaClip struct {
	Index      uint8
	Used       bool
	Name       string
	FrameCount uint16
}

func (*MediaClip) Tag() string { return "MPCS" }

func (c *MediaClip) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Index).WriteBool(c.Used).WriteNullString(c.Name).WriteUint16(c.FrameCount)
}

func (c *MediaClip) decode(r *protocol.PacketReader) {
	c.Index = r.Uint8()
	c.Used = r.Bool()
	c.Name = r.NullString()
	c.FrameCount = r.Uint16()
}

func (c *MediaClip) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditMediaPool().SetClip(int(c.Index), state.Clip{
		Used:       c.Used,
		Name:       c.Name,
		FrameCount: c.FrameCount,
	})
	return ns
}

// MediaFrameDescription (MPfe) describes one frame of the media pool.
// Format: [type:1][index:2][used:1][hash:16][filename:NUL-terminated]
type MediaFrameDescription struct {
	FileType protocol.MediaPoolFileType
	Index    uint16
	Used     bool
	Hash     [16]byte
	Filename string
}

func (*MediaFrameDescription) Tag() string { return "MPfe" }

func (c *MediaFrameDescription) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(uint8(c.FileType)).
		WriteUint16(c.Index).
		WriteBool(c.Used).
		WriteBytes(c.Hash[:]).
		WriteNullString(c.Filename)
}

func (c *MediaFrameDescription) decode(r *protocol.PacketReader) {
	c.FileType = protocol.Enum8[protocol.MediaPoolFileType](r)
	c.Index = r.Uint16()
	c.Used = r.Bool()
	copy(c.Hash[:], r.Bytes(len(c.Hash)))
	c.Filename = r.NullString()
}

// ApplyToState records still frames. Clip frames only carry upload
// bookkeeping and leave the state untouched.
func (c *MediaFrameDescription) ApplyToState(s *state.State) *state.State {
	if c.FileType != protocol.MediaStill {
		return s
	}
	st := state.Still{Used: c.Used}
	if c.Used {
		st.Hash = hex.EncodeToString(c.Hash[:])
		st.Filename = c.Filename
	}
	ns := s.Clone()
	ns.EditMediaPool().SetStill(int(c.Index), st)
	return ns
}

// MediaFrameInfo (MPfM) is sent during media pool transfers. Its body is
// kept raw and it has no state effect.
type MediaFrameInfo struct {
	Data []byte
}

func (*MediaFrameInfo) Tag() string { return "MPfM" }

func (c *MediaFrameInfo) Encode(b *protocol.PacketBuilder) {
	b.WriteBytes(c.Data)
}

func (c *MediaFrameInfo) decode(r *protocol.PacketReader) {
	c.Data = r.Rest()
}

func (*MediaFrameInfo) ApplyToState(s *state.State) *state.State { return s }

func (*MediaFrameInfo) Inert() {}

// MediaPlayerSource (MPCE) reports what a media player is loaded with.
// Format: [player:1][type:1][still:1][clip:1]
type MediaPlayerSource struct {
	Index      uint8
	SourceType protocol.MediaPlayerSourceType
	StillIndex uint8
	ClipIndex  uint8
}

func (*MediaPlayerSource) Tag() string { return "MPCE" }

func (c *MediaPlayerSource) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Index).WriteUint8(uint8(c.SourceType)).WriteUint8(c.StillIndex).WriteUint8(c.ClipIndex)
}

func (c *MediaPlayerSource) decode(r *protocol.PacketReader) {
	c.Index = r.Uint8()
	c.SourceType = protocol.Enum8[protocol.MediaPlayerSourceType](r)
	c.StillIndex = r.Uint8()
	c.ClipIndex = r.Uint8()
}

func (c *MediaPlayerSource) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	mp := ns.EditMediaPlayer(int(c.Index))
	mp.SourceType = c.SourceType
	mp.StillIndex = c.StillIndex
	mp.ClipIndex = c.ClipIndex
	return ns
}

// MediaPlayerStatus (RCPS) reports the clip transport of a media player.
// Format: [player:1][playing:1][loop:1][at_beginning:1][frame:2][pad:2]
type MediaPlayerStatus struct {
	Index       uint8
	Playing     bool
	Loop        bool
	AtBeginning bool
	ClipFrame   uint16
}

func (*MediaPlayerStatus) Tag() string { return "RCPS" }

func (c *MediaPlayerStatus) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Index).
		WriteBool(c.Playing).
		WriteBool(c.Loop).
		WriteBool(c.AtBeginning).
		WriteUint16(c.ClipFrame).
		WritePadding(2)
}

func (c *MediaPlayerStatus) decode(r *protocol.PacketReader) {
	c.Index = r.Uint8()
	c.Playing = r.Bool()
	c.Loop = r.Bool()
	c.AtBeginning = r.Bool()
	c.ClipFrame = r.Uint16()
	r.Skip(2)
}

func (c *MediaPlayerStatus) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	mp := ns.EditMediaPlayer(int(c.Index))
	mp.Playing = c.Playing
	mp.Loop = c.Loop
	mp.AtBeginning = c.AtBeginning
	mp.ClipFrame = c.ClipFrame
	return ns
}

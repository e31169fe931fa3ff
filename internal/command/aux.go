package command

import (
	"github.com/avista-project/avista/internal/protocol"
	"github.com/avista-project/avista/internal/state"
)

// AuxSource (AuxS) reports the source routed to an aux output.
// Format: [aux:1][pad:1][source:2]
type AuxSource struct {
	Index  uint8
	Source protocol.VideoSource
}

func (*AuxSource) Tag() string { return "AuxS" }

func (c *AuxSource) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Index).WritePadding(1).WriteVideoSource(c.Source)
}

func (c *AuxSource) decode(r *protocol.PacketReader) {
	c.Index = r.Uint8()
	r.Skip(1)
	c.Source = r.VideoSource()
}

func (c *AuxSource) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditAux(int(c.Index)).Source = c.Source
	return ns
}

// SetAuxSource (CAuS) routes a source to an aux output. The leading mask
// byte is always 1.
// Format: [mask:1][aux:1][source:2]
type SetAuxSource struct {
	Index  uint8
	Source protocol.VideoSource
}

func (*SetAuxSource) Tag() string { return "CAuS" }

func (c *SetAuxSource) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(1).WriteUint8(c.Index).WriteVideoSource(c.Source)
}

func (c *SetAuxSource) decode(r *protocol.PacketReader) {
	r.Skip(1)
	c.Index = r.Uint8()
	c.Source = r.VideoSource()
}

// TalkbackInputProperties (TMIP) reports the SDI mute setting of a source
// on a talkback channel.
// Format: [channel:1][pad:1][source:2][can_mute:1][supports_mute:1][mute:1][pad:1]
type TalkbackInputProperties struct {
	Channel                     uint8
	Source                      protocol.VideoSource
	CanMuteSDI                  bool
	CurrentInputSupportsMuteSDI bool
	MuteSDI                     bool
}

func (*TalkbackInputProperties) Tag() string { return "TMIP" }

func (c *TalkbackInputProperties) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Channel).WritePadding(1).
		WriteVideoSource(c.Source).
		WriteBool(c.CanMuteSDI).
		WriteBool(c.CurrentInputSupportsMuteSDI).
		WriteBool(c.MuteSDI).
		WritePadding(1)
}

func (c *TalkbackInputProperties) decode(r *protocol.PacketReader) {
	c.Channel = r.Uint8()
	r.Skip(1)
	c.Source = r.VideoSource()
	c.CanMuteSDI = r.Bool()
	c.CurrentInputSupportsMuteSDI = r.Bool()
	c.MuteSDI = r.Bool()
	r.Skip(1)
}

func (c *TalkbackInputProperties) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.SetTalkbackInput(int(c.Channel), c.Source, state.TalkbackInput{
		CanMuteSDI:                  c.CanMuteSDI,
		CurrentInputSupportsMuteSDI: c.CurrentInputSupportsMuteSDI,
		MuteSDI:                     c.MuteSDI,
	})
	return ns
}

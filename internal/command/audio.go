package command

import (
	"github.com/avista-project/avista/internal/protocol"
	"github.com/avista-project/avista/internal/state"
)

// AudioMixerInput (AMIP) reports one input of the classic audio mixer.
// Format: [source:2][type:1][pad:3][from_media_player:1][plug:1][mix:1][pad:1]
// [volume:2][balance:2][pad:1]
type AudioMixerInput struct {
	Source          protocol.AudioSource
	Type            protocol.AudioSourceType
	FromMediaPlayer bool
	PlugType        protocol.AudioPlugType
	MixOption       protocol.AudioMixOption
	Volume          uint16
	Balance         int16
}

func (*AudioMixerInput) Tag() string { return "AMIP" }

func (c *AudioMixerInput) Encode(b *protocol.PacketBuilder) {
	b.WriteUint16(uint16(c.Source)).
		WriteUint8(uint8(c.Type)).
		WritePadding(3).
		WriteBool(c.FromMediaPlayer).
		WriteUint8(uint8(c.PlugType)).
		WriteUint8(uint8(c.MixOption)).
		WritePadding(1).
		WriteUint16(c.Volume).
		WriteInt16(c.Balance).
		WritePadding(1)
}

func (c *AudioMixerInput) decode(r *protocol.PacketReader) {
	c.Source = protocol.Enum16[protocol.AudioSource](r)
	c.Type = protocol.Enum8[protocol.AudioSourceType](r)
	r.Skip(3)
	c.FromMediaPlayer = r.Bool()
	c.PlugType = protocol.Enum8[protocol.AudioPlugType](r)
	c.MixOption = protocol.Enum8[protocol.AudioMixOption](r)
	r.Skip(1)
	c.Volume = r.Uint16()
	c.Balance = r.Int16()
	r.Skip(1)
}

func (c *AudioMixerInput) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditAudio().SetInput(c.Source, state.AudioInput{
		Type:            c.Type,
		FromMediaPlayer: c.FromMediaPlayer,
		PlugType:        c.PlugType,
		MixOption:       c.MixOption,
		Volume:          c.Volume,
		Balance:         c.Balance,
	})
	return ns
}

// AudioMixerMaster (AMMO) reports the master output level.
// Format: [volume:2][pad:6]
type AudioMixerMaster struct {
	Volume uint16
}

func (*AudioMixerMaster) Tag() string { return "AMMO" }

func (c *AudioMixerMaster) Encode(b *protocol.PacketBuilder) {
	b.WriteUint16(c.Volume).WritePadding(6)
}

func (c *AudioMixerMaster) decode(r *protocol.PacketReader) {
	c.Volume = r.Uint16()
	r.Skip(6)
}

func (c *AudioMixerMaster) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditAudio().Master = &state.AudioMaster{Volume: c.Volume}
	return ns
}

// AudioMixerMonitor (AMmO) reports the monitor output. SoloInput is only
// meaningful while Solo is set and is kept raw.
// Format: [enabled:1][pad:1][volume:2][mute:1][solo:1][solo_input:2][dim:1][pad:3]
type AudioMixerMonitor struct {
	Enabled   bool
	Volume    uint16
	Mute      bool
	Solo      bool
	SoloInput protocol.AudioSource
	Dim       bool
}

func (*AudioMixerMonitor) Tag() string { return "AMmO" }

func (c *AudioMixerMonitor) Encode(b *protocol.PacketBuilder) {
	b.WriteBool(c.Enabled).WritePadding(1).
		WriteUint16(c.Volume).
		WriteBool(c.Mute).
		WriteBool(c.Solo).
		WriteUint16(uint16(c.SoloInput)).
		WriteBool(c.Dim).
		WritePadding(3)
}

func (c *AudioMixerMonitor) decode(r *protocol.PacketReader) {
	c.Enabled = r.Bool()
	r.Skip(1)
	c.Volume = r.Uint16()
	c.Mute = r.Bool()
	c.Solo = r.Bool()
	c.SoloInput = protocol.AudioSource(r.Uint16())
	c.Dim = r.Bool()
	r.Skip(3)
}

func (c *AudioMixerMonitor) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditAudio().Monitor = &state.AudioMonitor{
		Enabled:   c.Enabled,
		Volume:    c.Volume,
		Mute:      c.Mute,
		Solo:      c.Solo,
		SoloInput: c.SoloInput,
		Dim:       c.Dim,
	}
	return ns
}

// AudioTally is one entry of an AMTl record.
type AudioTally struct {
	Source    protocol.AudioSource
	IsMixedIn bool
}

// AudioMixerTally (AMTl) reports which audio inputs are mixed in.
// Format: [count:2] then count x [source:2][mixed_in:1]
type AudioMixerTally struct {
	Sources []AudioTally
}

func (*AudioMixerTally) Tag() string { return "AMTl" }

func (c *AudioMixerTally) Encode(b *protocol.PacketBuilder) {
	b.WriteUint16(uint16(len(c.Sources)))
	for _, t := range c.Sources {
		b.WriteUint16(uint16(t.Source)).WriteBool(t.IsMixedIn)
	}
}

func (c *AudioMixerTally) decode(r *protocol.PacketReader) {
	n := int(r.Uint16())
	if n == 0 {
		c.Sources = nil
		return
	}
	c.Sources = make([]AudioTally, 0, n)
	for i := 0; i < n; i++ {
		src := protocol.Enum16[protocol.AudioSource](r)
		mixed := r.Bool()
		if r.Err() != nil {
			return
		}
		c.Sources = append(c.Sources, AudioTally{Source: src, IsMixedIn: mixed})
	}
}

func (c *AudioMixerTally) ApplyToState(s *state.State) *state.State {
	tally := make(map[protocol.AudioSource]bool, len(c.Sources))
	for _, t := range c.Sources {
		tally[t.Source] = t.IsMixedIn
	}
	ns := s.Clone()
	ns.EditAudio().Tally = tally
	return ns
}

// ResetAudioPeaks (RAMP) clears the peak meters of the audio mixer.
// Format: [mask:1 bit0 all inputs, bit1 input, bit2 master, bit3 monitor]
// [pad:1][input:2][master:1][monitor:1][pad:2]
type ResetAudioPeaks struct {
	AllInputs bool
	Input     *protocol.AudioSource
	Master    bool
	Monitor   bool
}

func (*ResetAudioPeaks) Tag() string { return "RAMP" }

func (c *ResetAudioPeaks) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(uint8(maskOf(c.AllInputs, c.Input != nil, c.Master, c.Monitor))).
		WritePadding(1).
		WriteUint16(uint16(deref(c.Input))).
		WriteBool(c.Master).
		WriteBool(c.Monitor).
		WritePadding(2)
}

func (c *ResetAudioPeaks) decode(r *protocol.PacketReader) {
	mask := uint32(r.Uint8())
	r.Skip(1)
	input := protocol.AudioSource(r.Uint16())
	master := r.Bool()
	monitor := r.Bool()
	r.Skip(2)
	c.AllInputs = mask&0x01 != 0
	c.Input = optIf(mask, 1, input)
	c.Master = mask&0x04 != 0 && master
	c.Monitor = mask&0x08 != 0 && monitor
}

package command

import (
	"github.com/avista-project/avista/internal/protocol"
	"github.com/avista-project/avista/internal/state"
)

// Tally flag bits as sent by the switcher.
const (
	tallyProgram = 0x01
	tallyPreview = 0x02
)

func tallyFromByte(b uint8) state.TallyFlags {
	return state.TallyFlags{
		Program: b&tallyProgram != 0,
		Preview: b&tallyPreview != 0,
	}
}

func tallyByte(f state.TallyFlags) uint8 {
	var b uint8
	if f.Program {
		b |= tallyProgram
	}
	if f.Preview {
		b |= tallyPreview
	}
	return b
}

// SourceTally is one entry of a TlSr record.
type SourceTally struct {
	Source protocol.VideoSource
	Tally  state.TallyFlags
}

// TallyBySource (TlSr) reports the switcher's tally keyed by source.
// Format: [count:2] then count x [source:2][flags:1]
type TallyBySource struct {
	Sources []SourceTally
}

func (*TallyBySource) Tag() string { return "TlSr" }

func (c *TallyBySource) Encode(b *protocol.PacketBuilder) {
	b.WriteUint16(uint16(len(c.Sources)))
	for _, st := range c.Sources {
		b.WriteVideoSource(st.Source).WriteUint8(tallyByte(st.Tally))
	}
}

func (c *TallyBySource) decode(r *protocol.PacketReader) {
	n := int(r.Uint16())
	if n == 0 {
		c.Sources = nil
		return
	}
	c.Sources = make([]SourceTally, 0, n)
	for i := 0; i < n; i++ {
		src := r.VideoSource()
		flags := r.Uint8()
		if r.Err() != nil {
			return
		}
		c.Sources = append(c.Sources, SourceTally{Source: src, Tally: tallyFromByte(flags)})
	}
}

func (c *TallyBySource) ApplyToState(s *state.State) *state.State {
	bySource := make(map[protocol.VideoSource]state.TallyFlags, len(c.Sources))
	for _, st := range c.Sources {
		bySource[st.Source] = st.Tally
	}
	ns := s.Clone()
	ns.EditTally().BySource = bySource
	return state.RecalculateTally(ns)
}

// TallyByIndex (TlIn) reports the switcher's tally keyed by input index.
// Format: [count:2] then count x [flags:1]
type TallyByIndex struct {
	Sources []state.TallyFlags
}

func (*TallyByIndex) Tag() string { return "TlIn" }

func (c *TallyByIndex) Encode(b *protocol.PacketBuilder) {
	b.WriteUint16(uint16(len(c.Sources)))
	for _, f := range c.Sources {
		b.WriteUint8(tallyByte(f))
	}
}

func (c *TallyByIndex) decode(r *protocol.PacketReader) {
	n := int(r.Uint16())
	raw := r.Bytes(n)
	if len(raw) == 0 {
		c.Sources = nil
		return
	}
	c.Sources = make([]state.TallyFlags, len(raw))
	for i, f := range raw {
		c.Sources[i] = tallyFromByte(f)
	}
}

func (c *TallyByIndex) ApplyToState(s *state.State) *state.State {
	byIndex := make(map[int]state.TallyFlags, len(c.Sources))
	for i, f := range c.Sources {
		byIndex[i] = f
	}
	ns := s.Clone()
	ns.EditTally().ByIndex = byIndex
	return state.RecalculateTally(ns)
}

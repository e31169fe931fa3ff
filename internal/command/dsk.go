package command

import (
	"github.com/avista-project/avista/internal/protocol"
	"github.com/avista-project/avista/internal/state"
)

// DSKSources (DskB) reports the fill and key sources of a downstream keyer.
// Format: [dsk:1][pad:1][fill:2][key:2][pad:1]
type DSKSources struct {
	Index      uint8
	FillSource protocol.VideoSource
	KeySource  protocol.VideoSource
}

func (*DSKSources) Tag() string { return "DskB" }

func (c *DSKSources) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Index).WritePadding(1).
		WriteVideoSource(c.FillSource).
		WriteVideoSource(c.KeySource).
		WritePadding(1)
}

func (c *DSKSources) decode(r *protocol.PacketReader) {
	c.Index = r.Uint8()
	r.Skip(1)
	c.FillSource = r.VideoSource()
	c.KeySource = r.VideoSource()
	r.Skip(1)
}

func (c *DSKSources) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	d := ns.EditDSK(int(c.Index))
	d.FillSource = c.FillSource
	d.KeySource = c.KeySource
	return state.RecalculateTally(ns)
}

// DSKProperties (DskP) reports the key settings of a downstream keyer.
// Format: [dsk:1][tie:1][rate:1][premultiplied:1][clip:2][gain:2][invert:1]
// [mask_enabled:1][top:2][bottom:2][left:2][right:2][pad:1]
type DSKProperties struct {
	Index         uint8
	Tie           bool
	Rate          uint8
	PreMultiplied bool
	Clip          uint16
	Gain          uint16
	Invert        bool
	Mask          state.Mask
}

func (*DSKProperties) Tag() string { return "DskP" }

func (c *DSKProperties) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Index).
		WriteBool(c.Tie).
		WriteUint8(c.Rate).
		WriteBool(c.PreMultiplied).
		WriteUint16(c.Clip).
		WriteUint16(c.Gain).
		WriteBool(c.Invert).
		WriteBool(c.Mask.Enabled).
		WriteInt16(c.Mask.Top).
		WriteInt16(c.Mask.Bottom).
		WriteInt16(c.Mask.Left).
		WriteInt16(c.Mask.Right).
		WritePadding(1)
}

func (c *DSKProperties) decode(r *protocol.PacketReader) {
	c.Index = r.Uint8()
	c.Tie = r.Bool()
	c.Rate = r.Uint8()
	c.PreMultiplied = r.Bool()
	c.Clip = r.Uint16()
	c.Gain = r.Uint16()
	c.Invert = r.Bool()
	c.Mask.Enabled = r.Bool()
	c.Mask.Top = r.Int16()
	c.Mask.Bottom = r.Int16()
	c.Mask.Left = r.Int16()
	c.Mask.Right = r.Int16()
	r.Skip(1)
}

func (c *DSKProperties) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	d := ns.EditDSK(int(c.Index))
	d.Tie = c.Tie
	d.Rate = c.Rate
	d.PreMultiplied = c.PreMultiplied
	d.Clip = c.Clip
	d.Gain = c.Gain
	d.Invert = c.Invert
	d.Mask = c.Mask
	return state.RecalculateTally(ns)
}

// DSKState (DskS) reports whether a downstream keyer is on air.
// Format: [dsk:1][on_air:1][transitioning:1][auto_transitioning:1][frames_remaining:1][pad:3]
type DSKState struct {
	Index             uint8
	OnAir             bool
	InTransition      bool
	AutoTransitioning bool
	FramesRemaining   uint8
}

func (*DSKState) Tag() string { return "DskS" }

func (c *DSKState) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Index).
		WriteBool(c.OnAir).
		WriteBool(c.InTransition).
		WriteBool(c.AutoTransitioning).
		WriteUint8(c.FramesRemaining).
		WritePadding(3)
}

func (c *DSKState) decode(r *protocol.PacketReader) {
	c.Index = r.Uint8()
	c.OnAir = r.Bool()
	c.InTransition = r.Bool()
	c.AutoTransitioning = r.Bool()
	c.FramesRemaining = r.Uint8()
	r.Skip(3)
}

func (c *DSKState) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	d := ns.EditDSK(int(c.Index))
	d.OnAir = c.OnAir
	d.InTransition = c.InTransition
	d.AutoTransition = c.AutoTransitioning
	d.FramesRemaining = c.FramesRemaining
	return state.RecalculateTally(ns)
}

// SetDSKOnAir (CDsL) cuts a downstream keyer on or off air.
// Format: [dsk:1][on_air:1][pad:2]
type SetDSKOnAir struct {
	Index uint8
	OnAir bool
}

func (*SetDSKOnAir) Tag() string { return "CDsL" }

func (c *SetDSKOnAir) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Index).WriteBool(c.OnAir).WritePadding(2)
}

func (c *SetDSKOnAir) decode(r *protocol.PacketReader) {
	c.Index = r.Uint8()
	c.OnAir = r.Bool()
	r.Skip(2)
}

// SetDSKTie (CDsT) ties a downstream keyer to the next transition.
// Format: [dsk:1][tie:1][pad:2]
type SetDSKTie struct {
	Index uint8
	Tie   bool
}

func (*SetDSKTie) Tag() string { return "CDsT" }

func (c *SetDSKTie) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Index).WriteBool(c.Tie).WritePadding(2)
}

func (c *SetDSKTie) decode(r *protocol.PacketReader) {
	c.Index = r.Uint8()
	c.Tie = r.Bool()
	r.Skip(2)
}

// DSKAuto (DDsA) runs the auto transition of a downstream keyer.
// Format: [dsk:1][pad:3]
type DSKAuto struct {
	Index uint8
}

func (*DSKAuto) Tag() string { return "DDsA" }

func (c *DSKAuto) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Index).WritePadding(3)
}

func (c *DSKAuto) decode(r *protocol.PacketReader) {
	c.Index = r.Uint8()
	r.Skip(3)
}

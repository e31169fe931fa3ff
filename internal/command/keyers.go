package command

import (
	"github.com/avista-project/avista/internal/protocol"
	"github.com/avista-project/avista/internal/state"
)

// KeyerOnAir (KeOn) reports whether an upstream keyer is on air.
// Format: [me:1][keyer:1][on_air:1][pad:1]
type KeyerOnAir struct {
	Index    uint8
	KeyIndex uint8
	Enabled  bool
}

func (*KeyerOnAir) Tag() string { return "KeOn" }

func (c *KeyerOnAir) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Index).WriteUint8(c.KeyIndex).WriteBool(c.Enabled).WritePadding(1)
}

func (c *KeyerOnAir) decode(r *protocol.PacketReader) {
	c.Index = r.Uint8()
	c.KeyIndex = r.Uint8()
	c.Enabled = r.Bool()
	r.Skip(1)
}

func (c *KeyerOnAir) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditME(int(c.Index)).EditKeyer(int(c.KeyIndex)).OnAir = c.Enabled
	return state.RecalculateTally(ns)
}

// SetKeyerOnAir (CKOn) puts an upstream keyer on or off air.
// Format: [me:1][keyer:1][on_air:1][pad:1]
type SetKeyerOnAir struct {
	Index    uint8
	KeyIndex uint8
	Enabled  bool
}

func (*SetKeyerOnAir) Tag() string { return "CKOn" }

func (c *SetKeyerOnAir) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Index).WriteUint8(c.KeyIndex).WriteBool(c.Enabled).WritePadding(1)
}

func (c *SetKeyerOnAir) decode(r *protocol.PacketReader) {
	c.Index = r.Uint8()
	c.KeyIndex = r.Uint8()
	c.Enabled = r.Bool()
	r.Skip(1)
}

// KeyerBase (KeBP) reports the type, sources and mask of an upstream keyer.
// Format: [me:1][keyer:1][type:1][pad:1][can_fly:1][fly:1][fill:2][key:2]
// [mask_enabled:1][pad:1][top:2][bottom:2][left:2][right:2]
type KeyerBase struct {
	Index      uint8
	KeyIndex   uint8
	Type       protocol.KeyType
	CanFly     bool
	FlyEnabled bool
	FillSource protocol.VideoSource
	KeySource  protocol.VideoSource
	Mask       state.Mask
}

func (*KeyerBase) Tag() string { return "KeBP" }

func (c *KeyerBase) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Index).WriteUint8(c.KeyIndex).WriteUint8(uint8(c.Type)).WritePadding(1).
		WriteBool(c.CanFly).
		WriteBool(c.FlyEnabled).
		WriteVideoSource(c.FillSource).
		WriteVideoSource(c.KeySource)
	writeMask(b, c.Mask)
}

func (c *KeyerBase) decode(r *protocol.PacketReader) {
	c.Index = r.Uint8()
	c.KeyIndex = r.Uint8()
	c.Type = protocol.Enum8[protocol.KeyType](r)
	r.Skip(1)
	c.CanFly = r.Bool()
	c.FlyEnabled = r.Bool()
	c.FillSource = r.VideoSource()
	c.KeySource = r.VideoSource()
	c.Mask = readMask(r)
}

func (c *KeyerBase) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	k := ns.EditME(int(c.Index)).EditKeyer(int(c.KeyIndex))
	k.Type = c.Type
	k.CanFly = c.CanFly
	k.FlyEnabled = c.FlyEnabled
	k.FillSource = c.FillSource
	k.KeySource = c.KeySource
	k.Mask = c.Mask
	return state.RecalculateTally(ns)
}

// Format: [enabled:1][pad:1][top:2][bottom:2][left:2][right:2]
func writeMask(b *protocol.PacketBuilder, m state.Mask) {
	b.WriteBool(m.Enabled).WritePadding(1).
		WriteInt16(m.Top).
		WriteInt16(m.Bottom).
		WriteInt16(m.Left).
		WriteInt16(m.Right)
}

func readMask(r *protocol.PacketReader) state.Mask {
	var m state.Mask
	m.Enabled = r.Bool()
	r.Skip(1)
	m.Top = r.Int16()
	m.Bottom = r.Int16()
	m.Left = r.Int16()
	m.Right = r.Int16()
	return m
}

// SetKeyerType (CKTp) changes the type or fly mode of an upstream keyer.
// Format: [mask:1 bit0 type, bit1 fly][me:1][keyer:1][type:1][fly:1][pad:3]
type SetKeyerType struct {
	Index      uint8
	KeyIndex   uint8
	Type       *protocol.KeyType
	FlyEnabled *bool
}

func (*SetKeyerType) Tag() string { return "CKTp" }

func (c *SetKeyerType) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(uint8(maskOf(c.Type != nil, c.FlyEnabled != nil))).
		WriteUint8(c.Index).
		WriteUint8(c.KeyIndex).
		WriteUint8(uint8(deref(c.Type))).
		WriteBool(deref(c.FlyEnabled)).
		WritePadding(3)
}

func (c *SetKeyerType) decode(r *protocol.PacketReader) {
	mask := uint32(r.Uint8())
	c.Index = r.Uint8()
	c.KeyIndex = r.Uint8()
	kt := protocol.Enum8[protocol.KeyType](r)
	fly := r.Bool()
	r.Skip(3)
	c.Type = optIf(mask, 0, kt)
	c.FlyEnabled = optIf(mask, 1, fly)
}

// KeyerLuma (KeLm) reports the luma key settings of an upstream keyer.
// Format: [me:1][keyer:1][premultiplied:1][pad:1][clip:2][gain:2][invert:1][pad:3]
type KeyerLuma struct {
	Index         uint8
	KeyIndex      uint8
	PreMultiplied bool
	Clip          uint16
	Gain          uint16
	Invert        bool
}

func (*KeyerLuma) Tag() string { return "KeLm" }

func (c *KeyerLuma) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Index).WriteUint8(c.KeyIndex).WriteBool(c.PreMultiplied).WritePadding(1).
		WriteUint16(c.Clip).
		WriteUint16(c.Gain).
		WriteBool(c.Invert).
		WritePadding(3)
}

func (c *KeyerLuma) decode(r *protocol.PacketReader) {
	c.Index = r.Uint8()
	c.KeyIndex = r.Uint8()
	c.PreMultiplied = r.Bool()
	r.Skip(1)
	c.Clip = r.Uint16()
	c.Gain = r.Uint16()
	c.Invert = r.Bool()
	r.Skip(3)
}

func (c *KeyerLuma) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditME(int(c.Index)).EditKeyer(int(c.KeyIndex)).Luma = &state.LumaKey{
		PreMultiplied: c.PreMultiplied,
		Clip:          c.Clip,
		Gain:          c.Gain,
		Invert:        c.Invert,
	}
	return ns
}

// KeyerChroma (KeCk) reports the chroma key settings of an upstream keyer.
// Format: [me:1][keyer:1][hue:2][gain:2][y_suppress:2][lift:2][narrow:1][pad:1]
type KeyerChroma struct {
	Index     uint8
	KeyIndex  uint8
	Hue       uint16
	Gain      uint16
	YSuppress uint16
	Lift      uint16
	Narrow    bool
}

func (*KeyerChroma) Tag() string { return "KeCk" }

func (c *KeyerChroma) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Index).WriteUint8(c.KeyIndex).
		WriteUint16(c.Hue).
		WriteUint16(c.Gain).
		WriteUint16(c.YSuppress).
		WriteUint16(c.Lift).
		WriteBool(c.Narrow).
		WritePadding(1)
}

func (c *KeyerChroma) decode(r *protocol.PacketReader) {
	c.Index = r.Uint8()
	c.KeyIndex = r.Uint8()
	c.Hue = r.Uint16()
	c.Gain = r.Uint16()
	c.YSuppress = r.Uint16()
	c.Lift = r.Uint16()
	c.Narrow = r.Bool()
	r.Skip(1)
}

func (c *KeyerChroma) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditME(int(c.Index)).EditKeyer(int(c.KeyIndex)).Chroma = &state.ChromaKey{
		Hue:       c.Hue,
		Gain:      c.Gain,
		YSuppress: c.YSuppress,
		Lift:      c.Lift,
		Narrow:    c.Narrow,
	}
	return ns
}

// KeyerPattern (KePt) reports the pattern key settings of an upstream keyer.
// Format: [me:1][keyer:1][pattern:1][pad:1][size:2][symmetry:2][softness:2]
// [x:2][y:2][invert:1][pad:1]
type KeyerPattern struct {
	Index     uint8
	KeyIndex  uint8
	Pattern   protocol.PatternStyle
	Size      uint16
	Symmetry  uint16
	Softness  uint16
	PositionX uint16
	PositionY uint16
	Invert    bool
}

func (*KeyerPattern) Tag() string { return "KePt" }

func (c *KeyerPattern) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Index).WriteUint8(c.KeyIndex).WriteUint8(uint8(c.Pattern)).WritePadding(1).
		WriteUint16(c.Size).
		WriteUint16(c.Symmetry).
		WriteUint16(c.Softness).
		WriteUint16(c.PositionX).
		WriteUint16(c.PositionY).
		WriteBool(c.Invert).
		WritePadding(1)
}

func (c *KeyerPattern) decode(r *protocol.PacketReader) {
	c.Index = r.Uint8()
	c.KeyIndex = r.Uint8()
	c.Pattern = protocol.Enum8[protocol.PatternStyle](r)
	r.Skip(1)
	c.Size = r.Uint16()
	c.Symmetry = r.Uint16()
	c.Softness = r.Uint16()
	c.PositionX = r.Uint16()
	c.PositionY = r.Uint16()
	c.Invert = r.Bool()
	r.Skip(1)
}

func (c *KeyerPattern) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditME(int(c.Index)).EditKeyer(int(c.KeyIndex)).Pattern = &state.PatternKey{
		Pattern:   c.Pattern,
		Size:      c.Size,
		Symmetry:  c.Symmetry,
		Softness:  c.Softness,
		PositionX: c.PositionX,
		PositionY: c.PositionY,
		Invert:    c.Invert,
	}
	return ns
}

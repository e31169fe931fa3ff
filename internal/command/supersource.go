package command

import (
	"github.com/avista-project/avista/internal/protocol"
	"github.com/avista-project/avista/internal/state"
)

// lastClassicSuperSource is the newest version using the single super
// source layout with the border inline.
var lastClassicSuperSource = protocol.Version{Major: 2, Minor: 27}

// SuperSourceBorder is the art border shared by the classic SSrc layout
// and the SSBd record.
type SuperSourceBorder struct {
	ID             uint8
	Enabled        bool
	Bevel          protocol.BevelType
	OuterWidth     uint16
	InnerWidth     uint16
	OuterSoftness  uint8
	InnerSoftness  uint8
	BevelSoftness  uint8
	BevelPosition  uint8
	Hue            uint16
	Saturation     uint16
	Luma           uint16
	LightDirection uint16
	LightAltitude  uint8
}

func (*SuperSourceBorder) Tag() string { return "SSBd" }

func (*SuperSourceBorder) VersionRange() (min, max protocol.Version) {
	return protocol.Version8, none
}

// Format: [id:1][enabled:1][bevel:1][pad:1][border fields][pad:3]
func (c *SuperSourceBorder) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.ID).WriteBool(c.Enabled).WriteUint8(uint8(c.Bevel)).WritePadding(1)
	c.writeFields(b)
	b.WritePadding(3)
}

func (c *SuperSourceBorder) decode(r *protocol.PacketReader) {
	c.ID = r.Uint8()
	c.Enabled = r.Bool()
	c.Bevel = protocol.Enum8[protocol.BevelType](r)
	r.Skip(1)
	c.readFields(r)
	r.Skip(3)
}

// Format: [outer_width:2][inner_width:2][outer_soft:1][inner_soft:1][bevel_soft:1]
// [bevel_pos:1][hue:2][saturation:2][luma:2][light_direction:2][light_altitude:1]
func (c *SuperSourceBorder) writeFields(b *protocol.PacketBuilder) {
	b.WriteUint16(c.OuterWidth).
		WriteUint16(c.InnerWidth).
		WriteUint8(c.OuterSoftness).
		WriteUint8(c.InnerSoftness).
		WriteUint8(c.BevelSoftness).
		WriteUint8(c.BevelPosition).
		WriteUint16(c.Hue).
		WriteUint16(c.Saturation).
		WriteUint16(c.Luma).
		WriteUint16(c.LightDirection).
		WriteUint8(c.LightAltitude)
}

func (c *SuperSourceBorder) readFields(r *protocol.PacketReader) {
	c.OuterWidth = r.Uint16()
	c.InnerWidth = r.Uint16()
	c.OuterSoftness = r.Uint8()
	c.InnerSoftness = r.Uint8()
	c.BevelSoftness = r.Uint8()
	c.BevelPosition = r.Uint8()
	c.Hue = r.Uint16()
	c.Saturation = r.Uint16()
	c.Luma = r.Uint16()
	c.LightDirection = r.Uint16()
	c.LightAltitude = r.Uint8()
}

func (c *SuperSourceBorder) border() *state.Border {
	return &state.Border{
		Enabled:       c.Enabled,
		OuterWidth:    c.OuterWidth,
		InnerWidth:    c.InnerWidth,
		OuterSoftness: c.OuterSoftness,
		InnerSoftness: c.InnerSoftness,
		Hue:           c.Hue,
		Saturation:    c.Saturation,
		Luma:          c.Luma,
		Bevel: state.Bevel{
			Type:           c.Bevel,
			Softness:       c.BevelSoftness,
			Position:       c.BevelPosition,
			LightDirection: c.LightDirection,
			LightAltitude:  c.LightAltitude,
		},
	}
}

func (c *SuperSourceBorder) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditSuperSource(int(c.ID)).Border = c.border()
	return ns
}

// SuperSourceProperties (SSrc) is the classic single super source layout.
// Format: [fill:2][key:2][foreground:1][premultiplied:1][clip:2][gain:2]
// [invert:1][border_enabled:1][bevel:1][pad:1][border fields][pad:1]
type SuperSourceProperties struct {
	FillSource    protocol.VideoSource
	KeySource     protocol.VideoSource
	Foreground    bool
	PreMultiplied bool
	Clip          uint16
	Gain          uint16
	InvertKey     bool
	Border        SuperSourceBorder
}

func (*SuperSourceProperties) Tag() string { return "SSrc" }

func (*SuperSourceProperties) VersionRange() (min, max protocol.Version) {
	return protocol.Version7, lastClassicSuperSource
}

func (c *SuperSourceProperties) Encode(b *protocol.PacketBuilder) {
	b.WriteVideoSource(c.FillSource).
		WriteVideoSource(c.KeySource).
		WriteBool(c.Foreground).
		WriteBool(c.PreMultiplied).
		WriteUint16(c.Clip).
		WriteUint16(c.Gain).
		WriteBool(c.InvertKey).
		WriteBool(c.Border.Enabled).
		WriteUint8(uint8(c.Border.Bevel)).
		WritePadding(1)
	c.Border.writeFields(b)
	b.WritePadding(1)
}

func (c *SuperSourceProperties) decode(r *protocol.PacketReader) {
	c.FillSource = r.VideoSource()
	c.KeySource = r.VideoSource()
	c.Foreground = r.Bool()
	c.PreMultiplied = r.Bool()
	c.Clip = r.Uint16()
	c.Gain = r.Uint16()
	c.InvertKey = r.Bool()
	c.Border.Enabled = r.Bool()
	c.Border.Bevel = protocol.Enum8[protocol.BevelType](r)
	r.Skip(1)
	c.Border.readFields(r)
	r.Skip(1)
}

func (c *SuperSourceProperties) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ss := ns.EditSuperSource(0)
	ss.FillSource = c.FillSource
	ss.KeySource = c.KeySource
	ss.Foreground = c.Foreground
	ss.PreMultiplied = c.PreMultiplied
	ss.Clip = c.Clip
	ss.Gain = c.Gain
	ss.InvertKey = c.InvertKey
	ss.Border = c.Border.border()
	return state.RecalculateTally(ns)
}

// SuperSourcePropertiesV8 (SSrc) carries the compositor settings of one of
// several super sources.
// Format: [id:1][pad:1][fill:2][key:2][foreground:1][premultiplied:1]
// [clip:2][gain:2][invert:1][pad:3]
type SuperSourcePropertiesV8 struct {
	ID            uint8
	FillSource    protocol.VideoSource
	KeySource     protocol.VideoSource
	Foreground    bool
	PreMultiplied bool
	Clip          uint16
	Gain          uint16
	InvertKey     bool
}

func (*SuperSourcePropertiesV8) Tag() string { return "SSrc" }

func (*SuperSourcePropertiesV8) VersionRange() (min, max protocol.Version) {
	return protocol.Version8, none
}

func (c *SuperSourcePropertiesV8) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.ID).WritePadding(1).
		WriteVideoSource(c.FillSource).
		WriteVideoSource(c.KeySource).
		WriteBool(c.Foreground).
		WriteBool(c.PreMultiplied).
		WriteUint16(c.Clip).
		WriteUint16(c.Gain).
		WriteBool(c.InvertKey).
		WritePadding(3)
}

func (c *SuperSourcePropertiesV8) decode(r *protocol.PacketReader) {
	c.ID = r.Uint8()
	r.Skip(1)
	c.FillSource = r.VideoSource()
	c.KeySource = r.VideoSource()
	c.Foreground = r.Bool()
	c.PreMultiplied = r.Bool()
	c.Clip = r.Uint16()
	c.Gain = r.Uint16()
	c.InvertKey = r.Bool()
	r.Skip(3)
}

func (c *SuperSourcePropertiesV8) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ss := ns.EditSuperSource(int(c.ID))
	ss.FillSource = c.FillSource
	ss.KeySource = c.KeySource
	ss.Foreground = c.Foreground
	ss.PreMultiplied = c.PreMultiplied
	ss.Clip = c.Clip
	ss.Gain = c.Gain
	ss.InvertKey = c.InvertKey
	return state.RecalculateTally(ns)
}

// SetSuperSource (CSSc) changes the classic super source. Each field set
// contributes one mask bit, from fill source (bit 0) to light altitude
// (bit 19).
// Format: [mask:4][fill:2][key:2][foreground:1][premultiplied:1][clip:2]
// [gain:2][invert:1][border_enabled:1][bevel:1][pad:1][border fields][pad:1]
type SetSuperSource struct {
	FillSource     *protocol.VideoSource
	KeySource      *protocol.VideoSource
	Foreground     *bool
	PreMultiplied  *bool
	Clip           *uint16
	Gain           *uint16
	InvertKey      *bool
	BorderEnabled  *bool
	Bevel          *protocol.BevelType
	OuterWidth     *uint16
	InnerWidth     *uint16
	OuterSoftness  *uint8
	InnerSoftness  *uint8
	BevelSoftness  *uint8
	BevelPosition  *uint8
	BorderHue      *uint16
	Saturation     *uint16
	Luma           *uint16
	LightDirection *uint16
	LightAltitude  *uint8
}

func (*SetSuperSource) Tag() string { return "CSSc" }

func (*SetSuperSource) VersionRange() (min, max protocol.Version) {
	return protocol.Version7, lastClassicSuperSource
}

func (c *SetSuperSource) mask() uint32 {
	return maskOf(
		c.FillSource != nil,
		c.KeySource != nil,
		c.Foreground != nil,
		c.PreMultiplied != nil,
		c.Clip != nil,
		c.Gain != nil,
		c.InvertKey != nil,
		c.BorderEnabled != nil,
		c.Bevel != nil,
		c.OuterWidth != nil,
		c.InnerWidth != nil,
		c.OuterSoftness != nil,
		c.InnerSoftness != nil,
		c.BevelSoftness != nil,
		c.BevelPosition != nil,
		c.BorderHue != nil,
		c.Saturation != nil,
		c.Luma != nil,
		c.LightDirection != nil,
		c.LightAltitude != nil,
	)
}

func (c *SetSuperSource) Encode(b *protocol.PacketBuilder) {
	b.WriteUint32(c.mask()).
		WriteVideoSource(deref(c.FillSource)).
		WriteVideoSource(deref(c.KeySource)).
		WriteBool(deref(c.Foreground)).
		WriteBool(deref(c.PreMultiplied)).
		WriteUint16(deref(c.Clip)).
		WriteUint16(deref(c.Gain)).
		WriteBool(deref(c.InvertKey)).
		WriteBool(deref(c.BorderEnabled)).
		WriteUint8(uint8(deref(c.Bevel))).
		WritePadding(1).
		WriteUint16(deref(c.OuterWidth)).
		WriteUint16(deref(c.InnerWidth)).
		WriteUint8(deref(c.OuterSoftness)).
		WriteUint8(deref(c.InnerSoftness)).
		WriteUint8(deref(c.BevelSoftness)).
		WriteUint8(deref(c.BevelPosition)).
		WriteUint16(deref(c.BorderHue)).
		WriteUint16(deref(c.Saturation)).
		WriteUint16(deref(c.Luma)).
		WriteUint16(deref(c.LightDirection)).
		WriteUint8(deref(c.LightAltitude)).
		WritePadding(1)
}

func (c *SetSuperSource) decode(r *protocol.PacketReader) {
	mask := r.Uint32()
	c.FillSource = optIf(mask, 0, r.VideoSource())
	c.KeySource = optIf(mask, 1, r.VideoSource())
	c.Foreground = optIf(mask, 2, r.Bool())
	c.PreMultiplied = optIf(mask, 3, r.Bool())
	c.Clip = optIf(mask, 4, r.Uint16())
	c.Gain = optIf(mask, 5, r.Uint16())
	c.InvertKey = optIf(mask, 6, r.Bool())
	c.BorderEnabled = optIf(mask, 7, r.Bool())
	c.Bevel = optIf(mask, 8, protocol.Enum8[protocol.BevelType](r))
	r.Skip(1)
	c.OuterWidth = optIf(mask, 9, r.Uint16())
	c.InnerWidth = optIf(mask, 10, r.Uint16())
	c.OuterSoftness = optIf(mask, 11, r.Uint8())
	c.InnerSoftness = optIf(mask, 12, r.Uint8())
	c.BevelSoftness = optIf(mask, 13, r.Uint8())
	c.BevelPosition = optIf(mask, 14, r.Uint8())
	c.BorderHue = optIf(mask, 15, r.Uint16())
	c.Saturation = optIf(mask, 16, r.Uint16())
	c.Luma = optIf(mask, 17, r.Uint16())
	c.LightDirection = optIf(mask, 18, r.Uint16())
	c.LightAltitude = optIf(mask, 19, r.Uint8())
	r.Skip(1)
}

// SetSuperSourceV8 (CSSc) changes the compositor settings of one super
// source.
// Format: [mask:1][id:1][fill:2][key:2][foreground:1][premultiplied:1]
// [clip:2][gain:2][invert:1][pad:3]
type SetSuperSourceV8 struct {
	ID            uint8
	FillSource    *protocol.VideoSource
	KeySource     *protocol.VideoSource
	Foreground    *bool
	PreMultiplied *bool
	Clip          *uint16
	Gain          *uint16
	InvertKey     *bool
}

func (*SetSuperSourceV8) Tag() string { return "CSSc" }

func (*SetSuperSourceV8) VersionRange() (min, max protocol.Version) {
	return protocol.Version8, none
}

func (c *SetSuperSourceV8) Encode(b *protocol.PacketBuilder) {
	mask := maskOf(
		c.FillSource != nil,
		c.KeySource != nil,
		c.Foreground != nil,
		c.PreMultiplied != nil,
		c.Clip != nil,
		c.Gain != nil,
		c.InvertKey != nil,
	)
	b.WriteUint8(uint8(mask)).
		WriteUint8(c.ID).
		WriteVideoSource(deref(c.FillSource)).
		WriteVideoSource(deref(c.KeySource)).
		WriteBool(deref(c.Foreground)).
		WriteBool(deref(c.PreMultiplied)).
		WriteUint16(deref(c.Clip)).
		WriteUint16(deref(c.Gain)).
		WriteBool(deref(c.InvertKey)).
		WritePadding(3)
}

func (c *SetSuperSourceV8) decode(r *protocol.PacketReader) {
	mask := uint32(r.Uint8())
	c.ID = r.Uint8()
	c.FillSource = optIf(mask, 0, r.VideoSource())
	c.KeySource = optIf(mask, 1, r.VideoSource())
	c.Foreground = optIf(mask, 2, r.Bool())
	c.PreMultiplied = optIf(mask, 3, r.Bool())
	c.Clip = optIf(mask, 4, r.Uint16())
	c.Gain = optIf(mask, 5, r.Uint16())
	c.InvertKey = optIf(mask, 6, r.Bool())
	r.Skip(3)
}

// SetSuperSourceBorder (CSBd) changes the border of one super source.
// Format: [mask:2][id:1][enabled:1][bevel:1][pad:1][border fields][pad:1]
type SetSuperSourceBorder struct {
	ID             uint8
	Enabled        *bool
	Bevel          *protocol.BevelType
	OuterWidth     *uint16
	InnerWidth     *uint16
	OuterSoftness  *uint8
	InnerSoftness  *uint8
	BevelSoftness  *uint8
	BevelPosition  *uint8
	Hue            *uint16
	Saturation     *uint16
	Luma           *uint16
	LightDirection *uint16
	LightAltitude  *uint8
}

func (*SetSuperSourceBorder) Tag() string { return "CSBd" }

func (*SetSuperSourceBorder) VersionRange() (min, max protocol.Version) {
	return protocol.Version8, none
}

func (c *SetSuperSourceBorder) Encode(b *protocol.PacketBuilder) {
	mask := maskOf(
		c.Enabled != nil,
		c.Bevel != nil,
		c.OuterWidth != nil,
		c.InnerWidth != nil,
		c.OuterSoftness != nil,
		c.InnerSoftness != nil,
		c.BevelSoftness != nil,
		c.BevelPosition != nil,
		c.Hue != nil,
		c.Saturation != nil,
		c.Luma != nil,
		c.LightDirection != nil,
		c.LightAltitude != nil,
	)
	b.WriteUint16(uint16(mask)).
		WriteUint8(c.ID).
		WriteBool(deref(c.Enabled)).
		WriteUint8(uint8(deref(c.Bevel))).
		WritePadding(1).
		WriteUint16(deref(c.OuterWidth)).
		WriteUint16(deref(c.InnerWidth)).
		WriteUint8(deref(c.OuterSoftness)).
		WriteUint8(deref(c.InnerSoftness)).
		WriteUint8(deref(c.BevelSoftness)).
		WriteUint8(deref(c.BevelPosition)).
		WriteUint16(deref(c.Hue)).
		WriteUint16(deref(c.Saturation)).
		WriteUint16(deref(c.Luma)).
		WriteUint16(deref(c.LightDirection)).
		WriteUint8(deref(c.LightAltitude)).
		WritePadding(1)
}

func (c *SetSuperSourceBorder) decode(r *protocol.PacketReader) {
	mask := uint32(r.Uint16())
	c.ID = r.Uint8()
	c.Enabled = optIf(mask, 0, r.Bool())
	c.Bevel = optIf(mask, 1, protocol.Enum8[protocol.BevelType](r))
	r.Skip(1)
	c.OuterWidth = optIf(mask, 2, r.Uint16())
	c.InnerWidth = optIf(mask, 3, r.Uint16())
	c.OuterSoftness = optIf(mask, 4, r.Uint8())
	c.InnerSoftness = optIf(mask, 5, r.Uint8())
	c.BevelSoftness = optIf(mask, 6, r.Uint8())
	c.BevelPosition = optIf(mask, 7, r.Uint8())
	c.Hue = optIf(mask, 8, r.Uint16())
	c.Saturation = optIf(mask, 9, r.Uint16())
	c.Luma = optIf(mask, 10, r.Uint16())
	c.LightDirection = optIf(mask, 11, r.Uint16())
	c.LightAltitude = optIf(mask, 12, r.Uint8())
	r.Skip(1)
}

// SuperSourceBox (SSBP) reports one box of the classic super source.
// Format: [box:1][enabled:1][source:2][x:2][y:2][size:2][crop:1][pad:1]
// [crop_top:2][crop_bottom:2][crop_left:2][crop_right:2]
type SuperSourceBox struct {
	Index     uint8
	Enabled   bool
	Source    protocol.VideoSource
	PositionX int16
	PositionY int16
	Size      uint16
	Crop      state.Crop
}

func (*SuperSourceBox) Tag() string { return "SSBP" }

func (*SuperSourceBox) VersionRange() (min, max protocol.Version) {
	return protocol.Version7, none
}

func (c *SuperSourceBox) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Index).WriteBool(c.Enabled)
	writeBox(b, c.Source, c.PositionX, c.PositionY, c.Size, c.Crop)
}

func (c *SuperSourceBox) decode(r *protocol.PacketReader) {
	c.Index = r.Uint8()
	c.Enabled = r.Bool()
	c.Source, c.PositionX, c.PositionY, c.Size, c.Crop = readBox(r)
}

func (c *SuperSourceBox) ApplyToState(s *state.State) *state.State {
	return setBox(s, 0, c.Index, state.Box{
		Enabled:   c.Enabled,
		Source:    c.Source,
		PositionX: c.PositionX,
		PositionY: c.PositionY,
		Size:      c.Size,
		Crop:      c.Crop,
	})
}

// SuperSourceBoxV8 (SSBP) reports one box of a numbered super source.
// Format: [super_source:1][box:1][enabled:1][pad:1][box fields][pad:2]
type SuperSourceBoxV8 struct {
	SuperSource uint8
	Index       uint8
	Enabled     bool
	Source      protocol.VideoSource
	PositionX   int16
	PositionY   int16
	Size        uint16
	Crop        state.Crop
}

func (*SuperSourceBoxV8) Tag() string { return "SSBP" }

func (*SuperSourceBoxV8) VersionRange() (min, max protocol.Version) {
	return protocol.Version8, none
}

func (c *SuperSourceBoxV8) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.SuperSource).WriteUint8(c.Index).WriteBool(c.Enabled).WritePadding(1)
	writeBox(b, c.Source, c.PositionX, c.PositionY, c.Size, c.Crop)
	b.WritePadding(2)
}

func (c *SuperSourceBoxV8) decode(r *protocol.PacketReader) {
	c.SuperSource = r.Uint8()
	c.Index = r.Uint8()
	c.Enabled = r.Bool()
	r.Skip(1)
	c.Source, c.PositionX, c.PositionY, c.Size, c.Crop = readBox(r)
	r.Skip(2)
}

func (c *SuperSourceBoxV8) ApplyToState(s *state.State) *state.State {
	return setBox(s, c.SuperSource, c.Index, state.Box{
		Enabled:   c.Enabled,
		Source:    c.Source,
		PositionX: c.PositionX,
		PositionY: c.PositionY,
		Size:      c.Size,
		Crop:      c.Crop,
	})
}

func setBox(s *state.State, ssrc, idx uint8, box state.Box) *state.State {
	ns := s.Clone()
	ns.EditSuperSource(int(ssrc)).SetBox(int(idx), box)
	return state.RecalculateTally(ns)
}

// Format: [source:2][x:2][y:2][size:2][crop:1][pad:1][top:2][bottom:2][left:2][right:2]
func writeBox(b *protocol.PacketBuilder, src protocol.VideoSource, x, y int16, size uint16, crop state.Crop) {
	b.WriteVideoSource(src).
		WriteInt16(x).
		WriteInt16(y).
		WriteUint16(size).
		WriteBool(crop.Enabled).
		WritePadding(1).
		WriteUint16(crop.Top).
		WriteUint16(crop.Bottom).
		WriteUint16(crop.Left).
		WriteUint16(crop.Right)
}

func readBox(r *protocol.PacketReader) (src protocol.VideoSource, x, y int16, size uint16, crop state.Crop) {
	src = r.VideoSource()
	x = r.Int16()
	y = r.Int16()
	size = r.Uint16()
	crop.Enabled = r.Bool()
	r.Skip(1)
	crop.Top = r.Uint16()
	crop.Bottom = r.Uint16()
	crop.Left = r.Uint16()
	crop.Right = r.Uint16()
	return src, x, y, size, crop
}

package command

import (
	"github.com/avista-project/avista/internal/protocol"
	"github.com/avista-project/avista/internal/state"
)

// InputProperties (InPr) describes one video source.
// Format: [id:2][name:20][short_name:4][names_default:1][pad:1][external_ports:2]
// [external_type:2][internal_type:1][availability:1][me_availability:1]
type InputProperties struct {
	ID                 protocol.VideoSource
	Name               string
	ShortName          string
	NamesAreDefault    bool
	AvailableExternal  protocol.ExternalPortType
	ExternalPortType   protocol.ExternalPortType
	InternalPortType   protocol.InternalPortType
	SourceAvailability protocol.SourceAvailability
	MEAvailability     protocol.MEAvailability
}

func (*InputProperties) Tag() string { return "InPr" }

func (c *InputProperties) Encode(b *protocol.PacketBuilder) {
	b.WriteVideoSource(c.ID).
		WriteFixedString(c.Name, 20).
		WriteFixedString(c.ShortName, 4).
		WriteBool(c.NamesAreDefault).WritePadding(1).
		WriteUint16(uint16(c.AvailableExternal)).
		WriteUint16(uint16(c.ExternalPortType)).
		WriteUint8(uint8(c.InternalPortType)).
		WriteUint8(uint8(c.SourceAvailability)).
		WriteUint8(uint8(c.MEAvailability))
}

func (c *InputProperties) decode(r *protocol.PacketReader) {
	c.ID = r.VideoSource()
	c.Name = r.FixedString(20)
	c.ShortName = r.FixedString(4)
	c.NamesAreDefault = r.Bool()
	r.Skip(1)
	c.AvailableExternal = protocol.Enum16[protocol.ExternalPortType](r)
	c.ExternalPortType = protocol.Enum16[protocol.ExternalPortType](r)
	c.InternalPortType = protocol.Enum8[protocol.InternalPortType](r)
	c.SourceAvailability = protocol.Enum8[protocol.SourceAvailability](r)
	c.MEAvailability = protocol.Enum8[protocol.MEAvailability](r)
}

// ApplyToState records the source. Port capabilities change with every
// routing update and are left out of the tree.
func (c *InputProperties) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	src := ns.EditSource(c.ID)
	src.Name = c.Name
	src.ShortName = c.ShortName
	src.NamesAreDefault = c.NamesAreDefault
	src.InternalPortType = c.InternalPortType
	src.MEAvailability = c.MEAvailability
	return ns
}

// MultiviewVideoMode (MvVM) maps a core video mode to the multiviewer mode.
// Format: [core:1][multiview:1]
type MultiviewVideoMode struct {
	CoreMode      protocol.VideoMode
	MultiviewMode protocol.VideoMode
}

func (*MultiviewVideoMode) Tag() string { return "MvVM" }

func (c *MultiviewVideoMode) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(uint8(c.CoreMode)).WriteUint8(uint8(c.MultiviewMode))
}

func (c *MultiviewVideoMode) decode(r *protocol.PacketReader) {
	c.CoreMode = protocol.Enum8[protocol.VideoMode](r)
	c.MultiviewMode = protocol.Enum8[protocol.VideoMode](r)
}

func (c *MultiviewVideoMode) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	cfg := ns.EditConfig()
	modes := make(map[protocol.VideoMode]protocol.VideoMode, len(cfg.MultiviewVideoModes)+1)
	for k, v := range cfg.MultiviewVideoModes {
		modes[k] = v
	}
	modes[c.CoreMode] = c.MultiviewMode
	cfg.MultiviewVideoModes = modes
	return ns
}

// MultiviewLayout (MvPr) selects one of the four fixed layouts.
// Format: [multiviewer:1][layout:1]
type MultiviewLayout struct {
	Index  uint8
	Layout protocol.MultiviewLayout
}

func (*MultiviewLayout) Tag() string { return "MvPr" }

func (*MultiviewLayout) VersionRange() (min, max protocol.Version) {
	return protocol.Version7, none
}

func (c *MultiviewLayout) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Index).WriteUint8(uint8(c.Layout))
}

func (c *MultiviewLayout) decode(r *protocol.PacketReader) {
	c.Index = r.Uint8()
	c.Layout = protocol.Enum8[protocol.MultiviewLayout](r)
}

func (c *MultiviewLayout) ApplyToState(s *state.State) *state.State {
	return setMultiviewLayout(s, c.Index, uint8(c.Layout))
}

// MultiviewLayoutV8 (MvPr) carries the quadrant swap flags used from 2.28.
// Format: [multiviewer:1][layout:1]
type MultiviewLayoutV8 struct {
	Index  uint8
	Layout protocol.MultiviewLayoutV8
}

func (*MultiviewLayoutV8) Tag() string { return "MvPr" }

func (*MultiviewLayoutV8) VersionRange() (min, max protocol.Version) {
	return protocol.Version8, none
}

func (c *MultiviewLayoutV8) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Index).WriteUint8(uint8(c.Layout))
}

func (c *MultiviewLayoutV8) decode(r *protocol.PacketReader) {
	c.Index = r.Uint8()
	c.Layout = protocol.Enum8[protocol.MultiviewLayoutV8](r)
}

func (c *MultiviewLayoutV8) ApplyToState(s *state.State) *state.State {
	return setMultiviewLayout(s, c.Index, uint8(c.Layout))
}

func setMultiviewLayout(s *state.State, idx, layout uint8) *state.State {
	ns := s.Clone()
	ns.EditConfig().EditMultiviewer(int(idx)).Layout = layout
	return ns
}

// MultiviewVUMeter (VuMC) toggles the audio meter of a window.
// Format: [multiviewer:1][window:1][enabled:1]
type MultiviewVUMeter struct {
	Index       uint8
	WindowIndex uint8
	Enabled     bool
}

func (*MultiviewVUMeter) Tag() string { return "VuMC" }

func (c *MultiviewVUMeter) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Index).WriteUint8(c.WindowIndex).WriteBool(c.Enabled)
}

func (c *MultiviewVUMeter) decode(r *protocol.PacketReader) {
	c.Index = r.Uint8()
	c.WindowIndex = r.Uint8()
	c.Enabled = r.Bool()
}

func (c *MultiviewVUMeter) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditConfig().EditMultiviewer(int(c.Index)).EditWindow(int(c.WindowIndex)).VUMeterEnabled = c.Enabled
	return ns
}

// MultiviewSafeArea (SaMw) toggles the safe area overlay of a window.
// Format: [multiviewer:1][window:1][enabled:1]
type MultiviewSafeArea struct {
	Index       uint8
	WindowIndex uint8
	Enabled     bool
}

func (*MultiviewSafeArea) Tag() string { return "SaMw" }

func (c *MultiviewSafeArea) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Index).WriteUint8(c.WindowIndex).WriteBool(c.Enabled)
}

func (c *MultiviewSafeArea) decode(r *protocol.PacketReader) {
	c.Index = r.Uint8()
	c.WindowIndex = r.Uint8()
	c.Enabled = r.Bool()
}

func (c *MultiviewSafeArea) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditConfig().EditMultiviewer(int(c.Index)).EditWindow(int(c.WindowIndex)).SafeAreaEnabled = c.Enabled
	return ns
}

// MultiviewInput (MvIn) routes a source to a multiviewer window.
// Format: [multiviewer:1][window:1][source:2]
type MultiviewInput struct {
	Index       uint8
	WindowIndex uint8
	Source      protocol.VideoSource
}

func (*MultiviewInput) Tag() string { return "MvIn" }

func (c *MultiviewInput) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Index).WriteUint8(c.WindowIndex).WriteVideoSource(c.Source)
}

func (c *MultiviewInput) decode(r *protocol.PacketReader) {
	c.Index = r.Uint8()
	c.WindowIndex = r.Uint8()
	c.Source = r.VideoSource()
}

// ApplyToState leaves the state untouched when the window already shows
// Source; some firmware repeats MvIn continuously.
func (c *MultiviewInput) ApplyToState(s *state.State) *state.State {
	if cur, ok := multiviewWindow(s, int(c.Index), int(c.WindowIndex)); ok && cur.Source == c.Source {
		return s
	}
	ns := s.Clone()
	ns.EditConfig().EditMultiviewer(int(c.Index)).EditWindow(int(c.WindowIndex)).Source = c.Source
	return ns
}

func multiviewWindow(s *state.State, mv, window int) (*state.MultiviewWindow, bool) {
	if s.Config == nil {
		return nil, false
	}
	m := s.Config.Multiviewers[mv]
	if m == nil {
		return nil, false
	}
	w := m.Windows[window]
	return w, w != nil
}

// MultiviewOpacity (VuMo) sets the meter opacity of a multiviewer.
// Format: [multiviewer:1][opacity:1]
type MultiviewOpacity struct {
	Index   uint8
	Opacity uint8
}

func (*MultiviewOpacity) Tag() string { return "VuMo" }

func (c *MultiviewOpacity) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Index).WriteUint8(c.Opacity)
}

func (c *MultiviewOpacity) decode(r *protocol.PacketReader) {
	c.Index = r.Uint8()
	c.Opacity = r.Uint8()
}

func (c *MultiviewOpacity) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditConfig().EditMultiviewer(int(c.Index)).Opacity = c.Opacity
	return ns
}

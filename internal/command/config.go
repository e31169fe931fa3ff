package command

import (
	"strings"

	"github.com/avista-project/avista/internal/protocol"
	"github.com/avista-project/avista/internal/state"
)

// ProtocolVersion (_ver) announces the protocol version.
// Format: [major:2][minor:2]
type ProtocolVersion struct {
	Major uint16
	Minor uint16
}

func (*ProtocolVersion) Tag() string { return "_ver" }

func (c *ProtocolVersion) Encode(b *protocol.PacketBuilder) {
	b.WriteUint16(c.Major).WriteUint16(c.Minor)
}

func (c *ProtocolVersion) decode(r *protocol.PacketReader) {
	c.Major = r.Uint16()
	c.Minor = r.Uint16()
}

func (c *ProtocolVersion) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditConfig().Version = protocol.Version{Major: c.Major, Minor: c.Minor}
	return ns
}

// ProductName (_pin) carries the model name.
// Format: [name:44]
type ProductName struct {
	Name string
}

func (*ProductName) Tag() string { return "_pin" }

func (c *ProductName) Encode(b *protocol.PacketBuilder) {
	b.WriteFixedString(c.Name, 44)
}

func (c *ProductName) decode(r *protocol.PacketReader) {
	c.Name = r.FixedString(44)
}

func (c *ProductName) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditConfig().Name = strings.TrimSpace(c.Name)
	return ns
}

// Topology is the hardware inventory shared by every _top layout.
type Topology struct {
	MEs                     uint8
	Sources                 uint8
	DSKs                    uint8
	Auxes                   uint8
	MixMinusOutputs         uint8
	MediaPlayers            uint8
	Multiviewers            uint8
	SerialPorts             uint8
	HyperDecks              uint8
	DVEs                    uint8
	Stingers                uint8
	SuperSources            uint8
	TalkbackChannels        uint8
	CameraControl           bool
	AdvancedChromaKeyers    bool
	OnlyConfigurableOutputs bool
}

func (*Topology) Tag() string { return "_top" }

// ApplyToState records the inventory and resets the per-unit subtrees.
func (c *Topology) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()

	ns.MEs = make(map[int]*state.ME, c.MEs)
	for i := 0; i < int(c.MEs); i++ {
		ns.MEs[i] = &state.ME{Index: i}
	}
	ns.DSKs = make(map[int]*state.DSK, c.DSKs)
	for i := 0; i < int(c.DSKs); i++ {
		ns.DSKs[i] = &state.DSK{}
	}
	ns.Auxes = make(map[int]*state.Aux, c.Auxes)
	for i := 0; i < int(c.Auxes); i++ {
		ns.Auxes[i] = &state.Aux{}
	}
	ns.SuperSource = make(map[int]*state.SuperSource, c.SuperSources)
	for i := 0; i < int(c.SuperSources); i++ {
		ns.SuperSource[i] = &state.SuperSource{}
	}

	ns.EditConfig().Topology = &state.Topology{
		MEs:               c.MEs,
		Sources:           c.Sources,
		DSKs:              c.DSKs,
		Auxes:             c.Auxes,
		MixMinusOutputs:   c.MixMinusOutputs,
		MediaPlayers:      c.MediaPlayers,
		Multiviewers:      c.Multiviewers,
		SerialPorts:       c.SerialPorts,
		HyperDecks:        c.HyperDecks,
		DVEs:              c.DVEs,
		Stingers:          c.Stingers,
		SuperSources:      c.SuperSources,
		TalkbackChannels:  c.TalkbackChannels,
		CameraControl:     c.CameraControl,
		AdvancedChroma:    c.AdvancedChromaKeyers,
		OnlyConfigurables: c.OnlyConfigurableOutputs,
	}
	return ns
}

func (c *Topology) writeHead(b *protocol.PacketBuilder, multiviewers bool) {
	b.WriteUint8(c.MEs).WriteUint8(c.Sources).WriteUint8(c.DSKs).WriteUint8(c.Auxes).
		WriteUint8(c.MixMinusOutputs).WriteUint8(c.MediaPlayers)
	if multiviewers {
		b.WriteUint8(c.Multiviewers)
	}
	b.WriteUint8(c.SerialPorts).WriteUint8(c.HyperDecks).WriteUint8(c.DVEs).
		WriteUint8(c.Stingers).WriteUint8(c.SuperSources)
}

func (c *Topology) readHead(r *protocol.PacketReader, multiviewers bool) {
	c.MEs = r.Uint8()
	c.Sources = r.Uint8()
	c.DSKs = r.Uint8()
	c.Auxes = r.Uint8()
	c.MixMinusOutputs = r.Uint8()
	c.MediaPlayers = r.Uint8()
	if multiviewers {
		c.Multiviewers = r.Uint8()
	}
	c.SerialPorts = r.Uint8()
	c.HyperDecks = r.Uint8()
	c.DVEs = r.Uint8()
	c.Stingers = r.Uint8()
	c.SuperSources = r.Uint8()
}

// Format after the head: [pad:1][talkback:1][pad:4][camera_control:1][pad:3][advanced_chroma:1][configurable_outputs:1]
func (c *Topology) writeTail(b *protocol.PacketBuilder) {
	b.WritePadding(1).WriteUint8(c.TalkbackChannels).WritePadding(4).
		WriteBool(c.CameraControl).WritePadding(3).
		WriteBool(c.AdvancedChromaKeyers).WriteBool(c.OnlyConfigurableOutputs)
}

func (c *Topology) readTail(r *protocol.PacketReader) {
	r.Skip(1)
	c.TalkbackChannels = r.Uint8()
	r.Skip(4)
	c.CameraControl = r.Bool()
	r.Skip(3)
	c.AdvancedChromaKeyers = r.Bool()
	c.OnlyConfigurableOutputs = r.Bool()
}

// TopologyV7 (_top) is the inventory before protocol 2.28.
type TopologyV7 struct{ Topology }

func (*TopologyV7) VersionRange() (min, max protocol.Version) { return protocol.Version7, none }

func (c *TopologyV7) Encode(b *protocol.PacketBuilder) { c.writeHead(b, false) }

func (c *TopologyV7) decode(r *protocol.PacketReader) { c.readHead(r, false) }

// TopologyV8 (_top) adds talkback and capability flags.
type TopologyV8 struct{ Topology }

func (*TopologyV8) VersionRange() (min, max protocol.Version) { return protocol.Version8, none }

func (c *TopologyV8) Encode(b *protocol.PacketBuilder) {
	c.writeHead(b, false)
	c.writeTail(b)
}

func (c *TopologyV8) decode(r *protocol.PacketReader) {
	c.readHead(r, false)
	c.readTail(r)
}

// TopologyV811 (_top) adds the multiviewer count after the media players.
type TopologyV811 struct{ Topology }

func (*TopologyV811) VersionRange() (min, max protocol.Version) { return protocol.Version811, none }

func (c *TopologyV811) Encode(b *protocol.PacketBuilder) {
	c.writeHead(b, true)
	c.writeTail(b)
}

func (c *TopologyV811) decode(r *protocol.PacketReader) {
	c.readHead(r, true)
	c.readTail(r)
}

// MixEffectConfig (_MeC) announces the keyer count of an ME.
// Format: [me:1][keyers:1]
type MixEffectConfig struct {
	ID     uint8
	Keyers uint8
}

func (*MixEffectConfig) Tag() string { return "_MeC" }

func (c *MixEffectConfig) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.ID).WriteUint8(c.Keyers)
}

func (c *MixEffectConfig) decode(r *protocol.PacketReader) {
	c.ID = r.Uint8()
	c.Keyers = r.Uint8()
}

func (c *MixEffectConfig) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	me := ns.EditME(int(c.ID))
	me.Keyers = make(map[int]*state.Keyer, c.Keyers)
	for i := 0; i < int(c.Keyers); i++ {
		me.Keyers[i] = &state.Keyer{}
	}
	return ns
}

// MediaPoolConfig (_mpl) announces media pool capacity.
// Format: [stills:1][clips:1]
type MediaPoolConfig struct {
	Stills uint8
	Clips  uint8
}

func (*MediaPoolConfig) Tag() string { return "_mpl" }

func (c *MediaPoolConfig) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Stills).WriteUint8(c.Clips)
}

func (c *MediaPoolConfig) decode(r *protocol.PacketReader) {
	c.Stills = r.Uint8()
	c.Clips = r.Uint8()
}

func (c *MediaPoolConfig) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditConfig().MediaPool = &state.MediaPoolConfig{Stills: c.Stills, Clips: c.Clips}
	return ns
}

// MultiviewerConfigV7 (_MvC) describes multiviewer capabilities. It has no
// modelled state effect.
// Format: [count:1][windows:1][pad:1][route:1][pad:1][swap:1][pad:1][safe_area:1]
type MultiviewerConfigV7 struct {
	Count                 uint8
	WindowCount           uint8
	CanRouteInputs        bool
	CanSwapProgramPreview bool
	CanToggleSafeArea     bool
}

func (*MultiviewerConfigV7) Tag() string { return "_MvC" }

func (*MultiviewerConfigV7) VersionRange() (min, max protocol.Version) {
	return protocol.Version7, none
}

func (c *MultiviewerConfigV7) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Count).WriteUint8(c.WindowCount).WritePadding(1).
		WriteBool(c.CanRouteInputs).WritePadding(1).
		WriteBool(c.CanSwapProgramPreview).WritePadding(1).
		WriteBool(c.CanToggleSafeArea)
}

func (c *MultiviewerConfigV7) decode(r *protocol.PacketReader) {
	c.Count = r.Uint8()
	c.WindowCount = r.Uint8()
	r.Skip(1)
	c.CanRouteInputs = r.Bool()
	r.Skip(1)
	c.CanSwapProgramPreview = r.Bool()
	r.Skip(1)
	c.CanToggleSafeArea = r.Bool()
}

func (*MultiviewerConfigV7) ApplyToState(s *state.State) *state.State { return s }

func (*MultiviewerConfigV7) Inert() {}

// MultiviewerConfigV8 (_MvC) from protocol 2.28.
// Format: [count:1][windows:1][pad:1][route:1][pad:2][vu:1][safe_area:1][swap:1][quadrants:1]
type MultiviewerConfigV8 struct {
	Count                 uint8
	WindowCount           uint8
	CanRouteInputs        bool
	SupportsVUMeters      bool
	CanToggleSafeArea     bool
	CanSwapProgramPreview bool
	SupportsQuadrants     bool
}

func (*MultiviewerConfigV8) Tag() string { return "_MvC" }

func (*MultiviewerConfigV8) VersionRange() (min, max protocol.Version) {
	return protocol.Version8, none
}

func (c *MultiviewerConfigV8) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Count).WriteUint8(c.WindowCount).WritePadding(1).
		WriteBool(c.CanRouteInputs).WritePadding(2).
		WriteBool(c.SupportsVUMeters).WriteBool(c.CanToggleSafeArea).
		WriteBool(c.CanSwapProgramPreview).WriteBool(c.SupportsQuadrants)
}

func (c *MultiviewerConfigV8) decode(r *protocol.PacketReader) {
	c.Count = r.Uint8()
	c.WindowCount = r.Uint8()
	r.Skip(1)
	c.CanRouteInputs = r.Bool()
	r.Skip(2)
	c.SupportsVUMeters = r.Bool()
	c.CanToggleSafeArea = r.Bool()
	c.CanSwapProgramPreview = r.Bool()
	c.SupportsQuadrants = r.Bool()
}

func (*MultiviewerConfigV8) ApplyToState(s *state.State) *state.State { return s }

func (*MultiviewerConfigV8) Inert() {}

// MultiviewerConfigV811 (_MvC) from protocol 2.30.
// Format: [windows:1][change_layout:1][route:1][pad:2][vu:1][safe_area:1][swap:1][quadrants:1]
type MultiviewerConfigV811 struct {
	WindowCount           uint8
	CanChangeLayout       bool
	CanRouteInputs        bool
	SupportsVUMeters      bool
	CanToggleSafeArea     bool
	CanSwapProgramPreview bool
	SupportsQuadrants     bool
}

func (*MultiviewerConfigV811) Tag() string { return "_MvC" }

func (*MultiviewerConfigV811) VersionRange() (min, max protocol.Version) {
	return protocol.Version811, none
}

func (c *MultiviewerConfigV811) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.WindowCount).WriteBool(c.CanChangeLayout).
		WriteBool(c.CanRouteInputs).WritePadding(2).
		WriteBool(c.SupportsVUMeters).WriteBool(c.CanToggleSafeArea).
		WriteBool(c.CanSwapProgramPreview).WriteBool(c.SupportsQuadrants)
}

func (c *MultiviewerConfigV811) decode(r *protocol.PacketReader) {
	c.WindowCount = r.Uint8()
	c.CanChangeLayout = r.Bool()
	c.CanRouteInputs = r.Bool()
	r.Skip(2)
	c.SupportsVUMeters = r.Bool()
	c.CanToggleSafeArea = r.Bool()
	c.CanSwapProgramPreview = r.Bool()
	c.SupportsQuadrants = r.Bool()
}

func (*MultiviewerConfigV811) ApplyToState(s *state.State) *state.State { return s }

func (*MultiviewerConfigV811) Inert() {}

// AudioMixerConfig (_AMC) announces the audio mixer size.
// Format: [inputs:1][monitors:1][headphones:1]
type AudioMixerConfig struct {
	Inputs     uint8
	Monitors   uint8
	Headphones uint8
}

func (*AudioMixerConfig) Tag() string { return "_AMC" }

func (c *AudioMixerConfig) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Inputs).WriteUint8(c.Monitors).WriteUint8(c.Headphones)
}

func (c *AudioMixerConfig) decode(r *protocol.PacketReader) {
	c.Inputs = r.Uint8()
	c.Monitors = r.Uint8()
	c.Headphones = r.Uint8()
}

func (c *AudioMixerConfig) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditConfig().Audio = &state.AudioConfig{
		InputCount:      c.Inputs,
		MonitorCount:    c.Monitors,
		HeadphonesCount: c.Headphones,
	}
	return ns
}

// VideoModeConfig (VidM) reports the current video mode.
// Format: [mode:1]
type VideoModeConfig struct {
	Mode protocol.VideoMode
}

func (*VideoModeConfig) Tag() string { return "VidM" }

func (c *VideoModeConfig) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(uint8(c.Mode))
}

func (c *VideoModeConfig) decode(r *protocol.PacketReader) {
	c.Mode = protocol.Enum8[protocol.VideoMode](r)
}

func (c *VideoModeConfig) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditStatus().VideoMode = c.Mode
	return ns
}

// DownConvertVideoMode (DHVm) maps a core mode to its down-converted output.
// Format: [core:1][down:1]
type DownConvertVideoMode struct {
	CoreMode          protocol.VideoMode
	DownConvertedMode protocol.VideoMode
}

func (*DownConvertVideoMode) Tag() string { return "DHVm" }

func (c *DownConvertVideoMode) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(uint8(c.CoreMode)).WriteUint8(uint8(c.DownConvertedMode))
}

func (c *DownConvertVideoMode) decode(r *protocol.PacketReader) {
	c.CoreMode = protocol.Enum8[protocol.VideoMode](r)
	c.DownConvertedMode = protocol.Enum8[protocol.VideoMode](r)
}

func (c *DownConvertVideoMode) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	cfg := ns.EditConfig()
	modes := make(map[protocol.VideoMode]protocol.VideoMode, len(cfg.Downconverter)+1)
	for k, v := range cfg.Downconverter {
		modes[k] = v
	}
	modes[c.CoreMode] = c.DownConvertedMode
	cfg.Downconverter = modes
	return ns
}

// VideoMixerConfig (_VMC) lists the supported video modes.
// Format: [modes:4] one bit per mode
type VideoMixerConfig struct {
	AvailableModes protocol.VideoModeSet
}

func (*VideoMixerConfig) Tag() string { return "_VMC" }

func (c *VideoMixerConfig) Encode(b *protocol.PacketBuilder) {
	b.WriteUint32(uint32(c.AvailableModes))
}

func (c *VideoMixerConfig) decode(r *protocol.PacketReader) {
	c.AvailableModes = protocol.VideoModeSet(r.Uint32())
}

func (c *VideoMixerConfig) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditConfig().AvailableVideoModes = c.AvailableModes.Modes()
	return ns
}

// PowerState (Powr) reports the power supplies.
// Format: [supplies:1 bit0 main, bit1 backup][pad:3]
type PowerState struct {
	Main   bool
	Backup bool
}

func (*PowerState) Tag() string { return "Powr" }

func (c *PowerState) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(uint8(maskOf(c.Main, c.Backup))).WritePadding(3)
}

func (c *PowerState) decode(r *protocol.PacketReader) {
	bits := r.Uint8()
	c.Main = bits&0x01 != 0
	c.Backup = bits&0x02 != 0
	r.Skip(3)
}

func (c *PowerState) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditStatus().Power = state.Power{Main: c.Main, Backup: c.Backup}
	return ns
}

// SDI3GLevel (V3sl) reports the 3G-SDI output level.
// Format: [level:1]
type SDI3GLevel struct {
	Level protocol.SDI3GOutputLevel
}

func (*SDI3GLevel) Tag() string { return "V3sl" }

func (c *SDI3GLevel) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(uint8(c.Level))
}

func (c *SDI3GLevel) decode(r *protocol.PacketReader) {
	c.Level = protocol.Enum8[protocol.SDI3GOutputLevel](r)
}

func (c *SDI3GLevel) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditConfig().SDI3GOutputLevel = c.Level
	return ns
}

// MacroPoolConfig (_MAC) announces the number of macro slots.
// Format: [count:1][pad:3]
type MacroPoolConfig struct {
	Count uint8
}

func (*MacroPoolConfig) Tag() string { return "_MAC" }

func (c *MacroPoolConfig) Encode(b *protocol.PacketBuilder) {
	b.WriteUint8(c.Count).WritePadding(3)
}

func (c *MacroPoolConfig) decode(r *protocol.PacketReader) {
	c.Count = r.Uint8()
	r.Skip(3)
}

func (c *MacroPoolConfig) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditConfig().MacroPoolSize = c.Count
	return ns
}

// TallyChannelConfig (_TlC) announces the number of tally channels.
// Format: [pad:4][count:1][pad:3]
type TallyChannelConfig struct {
	Count uint8
}

func (*TallyChannelConfig) Tag() string { return "_TlC" }

func (c *TallyChannelConfig) Encode(b *protocol.PacketBuilder) {
	b.WritePadding(4).WriteUint8(c.Count).WritePadding(3)
}

func (c *TallyChannelConfig) decode(r *protocol.PacketReader) {
	r.Skip(4)
	c.Count = r.Uint8()
	r.Skip(3)
}

func (c *TallyChannelConfig) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditConfig().TallyChannels = c.Count
	return ns
}

// TimecodeLock (TcLk) reports whether the switcher is locked to timecode.
// Format: [locked:1][pad:3]
type TimecodeLock struct {
	Locked bool
}

func (*TimecodeLock) Tag() string { return "TcLk" }

func (c *TimecodeLock) Encode(b *protocol.PacketBuilder) {
	b.WriteBool(c.Locked).WritePadding(3)
}

func (c *TimecodeLock) decode(r *protocol.PacketReader) {
	c.Locked = r.Bool()
	r.Skip(3)
}

func (c *TimecodeLock) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditStatus().TimecodeLocked = c.Locked
	return ns
}

// InitComplete (InCm) marks the end of the initial state dump.
// Format: [complete:1][pad:3]
type InitComplete struct {
	Complete bool
}

func (*InitComplete) Tag() string { return "InCm" }

func (c *InitComplete) Encode(b *protocol.PacketBuilder) {
	b.WriteBool(c.Complete).WritePadding(3)
}

func (c *InitComplete) decode(r *protocol.PacketReader) {
	c.Complete = r.Bool()
	r.Skip(3)
}

func (c *InitComplete) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.EditStatus().Initialized = c.Complete
	return ns
}

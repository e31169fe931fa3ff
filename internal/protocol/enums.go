package protocol

import (
	"fmt"
	"strings"
)

func enumName[T ~uint8 | ~uint16](names map[T]string, v T) string {
	if n, ok := names[v]; ok {
		return n
	}
	return fmt.Sprintf("%T(%d)", v, uint64(v))
}

func flagNames[T ~uint8 | ~uint16 | ~uint32](names map[T]string, v T) string {
	if v == 0 {
		return "NONE"
	}
	var parts []string
	for bit := T(1); bit != 0 && bit <= v; bit <<= 1 {
		if v&bit == 0 {
			continue
		}
		if n, ok := names[bit]; ok {
			parts = append(parts, n)
		} else {
			parts = append(parts, fmt.Sprintf("0x%x", uint32(bit)))
		}
	}
	return strings.Join(parts, "|")
}

// ExternalPortType is a bit set of physical connector kinds.
type ExternalPortType uint16

const (
	PortNone      ExternalPortType = 0
	PortSDI       ExternalPortType = 1 << 0
	PortHDMI      ExternalPortType = 1 << 1
	PortComponent ExternalPortType = 1 << 2
	PortComposite ExternalPortType = 1 << 3
	PortSVideo    ExternalPortType = 1 << 4
	PortXLR       ExternalPortType = 1 << 5
	PortAESEBU    ExternalPortType = 1 << 6
	PortRCA       ExternalPortType = 1 << 7
	PortInternal  ExternalPortType = 1 << 8
	PortTSJack    ExternalPortType = 1 << 9
	PortMADI      ExternalPortType = 1 << 10
	PortTRSJack   ExternalPortType = 1 << 11
	PortRJ45      ExternalPortType = 1 << 12

	externalPortMask ExternalPortType = 1<<13 - 1
)

var externalPortNames = map[ExternalPortType]string{
	PortSDI: "SDI", PortHDMI: "HDMI", PortComponent: "COMPONENT", PortComposite: "COMPOSITE",
	PortSVideo: "SVIDEO", PortXLR: "XLR", PortAESEBU: "AES_EBU", PortRCA: "RCA",
	PortInternal: "INTERNAL", PortTSJack: "TS_JACK", PortMADI: "MADI", PortTRSJack: "TRS_JACK",
	PortRJ45: "RJ45",
}

func (p ExternalPortType) Valid() bool    { return p&^externalPortMask == 0 }
func (p ExternalPortType) String() string { return flagNames(externalPortNames, p) }

// InternalPortType classifies where a source comes from inside the switcher.
type InternalPortType uint8

const (
	InternalExternal        InternalPortType = 0
	InternalBlack           InternalPortType = 1
	InternalColourBars      InternalPortType = 2
	InternalColourGenerator InternalPortType = 3
	InternalMediaPlayerFill InternalPortType = 4
	InternalMediaPlayerKey  InternalPortType = 5
	InternalSuperSource     InternalPortType = 6
	InternalExternalDirect  InternalPortType = 7
	InternalMEOutput        InternalPortType = 128
	InternalAuxiliary       InternalPortType = 129
	InternalMask            InternalPortType = 130
	InternalMultiviewer     InternalPortType = 131
)

var internalPortNames = map[InternalPortType]string{
	InternalExternal: "EXTERNAL", InternalBlack: "BLACK", InternalColourBars: "COLOUR_BARS",
	InternalColourGenerator: "COLOUR_GENERATOR", InternalMediaPlayerFill: "MEDIA_PLAYER_FILL",
	InternalMediaPlayerKey: "MEDIA_PLAYER_KEY", InternalSuperSource: "SUPER_SOURCE",
	InternalExternalDirect: "EXTERNAL_DIRECT", InternalMEOutput: "ME_OUTPUT",
	InternalAuxiliary: "AUXILIARY", InternalMask: "MASK", InternalMultiviewer: "MULTIVIEWER",
}

func (p InternalPortType) Valid() bool    { _, ok := internalPortNames[p]; return ok }
func (p InternalPortType) String() string { return enumName(internalPortNames, p) }

// SourceAvailability is a bit set of the buses a source may be routed to.
type SourceAvailability uint8

const (
	AvailableAuxiliary      SourceAvailability = 1 << 0
	AvailableMultiviewer    SourceAvailability = 1 << 1
	AvailableSuperSourceArt SourceAvailability = 1 << 2
	AvailableSuperSourceBox SourceAvailability = 1 << 3
	AvailableKeySource      SourceAvailability = 1 << 4
	AvailableAux1           SourceAvailability = 1 << 5

	sourceAvailabilityMask SourceAvailability = 1<<6 - 1
)

var sourceAvailabilityNames = map[SourceAvailability]string{
	AvailableAuxiliary: "AUXILIARY", AvailableMultiviewer: "MULTIVIEWER",
	AvailableSuperSourceArt: "SUPER_SOURCE_ART", AvailableSuperSourceBox: "SUPER_SOURCE_BOX",
	AvailableKeySource: "KEY_SOURCE", AvailableAux1: "AUX_1",
}

func (a SourceAvailability) Valid() bool    { return a&^sourceAvailabilityMask == 0 }
func (a SourceAvailability) String() string { return flagNames(sourceAvailabilityNames, a) }

// MEAvailability is a bit set of the mix effect buses a source may feed.
type MEAvailability uint8

const (
	AvailableME1 MEAvailability = 1 << 0
	AvailableME2 MEAvailability = 1 << 1
	AvailableME3 MEAvailability = 1 << 2
	AvailableME4 MEAvailability = 1 << 3

	meAvailabilityMask MEAvailability = 1<<4 - 1
)

var meAvailabilityNames = map[MEAvailability]string{
	AvailableME1: "ME_1", AvailableME2: "ME_2", AvailableME3: "ME_3", AvailableME4: "ME_4",
}

func (a MEAvailability) Valid() bool    { return a&^meAvailabilityMask == 0 }
func (a MEAvailability) String() string { return flagNames(meAvailabilityNames, a) }

// VideoMode is an output video standard.
type VideoMode uint8

const (
	VideoModeNTSC525i    VideoMode = 0
	VideoModePAL625i     VideoMode = 1
	VideoModeNTSC525i169 VideoMode = 2
	VideoModePAL625i169  VideoMode = 3
	VideoMode720p50      VideoMode = 4
	VideoMode720p5994    VideoMode = 5
	VideoMode1080i50     VideoMode = 6
	VideoMode1080i5994   VideoMode = 7
	VideoMode1080p2398   VideoMode = 8
	VideoMode1080p24     VideoMode = 9
	VideoMode1080p25     VideoMode = 10
	VideoMode1080p2997   VideoMode = 11
	VideoMode1080p50     VideoMode = 12
	VideoMode1080p5994   VideoMode = 13
	VideoMode4K2398      VideoMode = 14
	VideoMode4K24        VideoMode = 15
	VideoMode4K25        VideoMode = 16
	VideoMode4K2997      VideoMode = 17
	VideoMode4K50        VideoMode = 18
	VideoMode4K5994      VideoMode = 19
	VideoMode8K2398      VideoMode = 20
	VideoMode8K24        VideoMode = 21
	VideoMode8K25        VideoMode = 22
	VideoMode8K2997      VideoMode = 23
	VideoMode8K50        VideoMode = 24
	VideoMode8K5994      VideoMode = 25
	VideoMode1080p30     VideoMode = 26
	VideoMode1080p60     VideoMode = 27
	videoModeCount                 = 28
)

var videoModeNames = [videoModeCount]string{
	"525i59.94 NTSC", "625i50 PAL", "525i59.94 NTSC 16:9", "625i50 PAL 16:9",
	"720p50", "720p59.94", "1080i50", "1080i59.94",
	"1080p23.98", "1080p24", "1080p25", "1080p29.97", "1080p50", "1080p59.94",
	"2160p23.98", "2160p24", "2160p25", "2160p29.97", "2160p50", "2160p59.94",
	"4320p23.98", "4320p24", "4320p25", "4320p29.97", "4320p50", "4320p59.94",
	"1080p30", "1080p60",
}

func (m VideoMode) Valid() bool { return int(m) < videoModeCount }

func (m VideoMode) String() string {
	if m.Valid() {
		return videoModeNames[m]
	}
	return fmt.Sprintf("VideoMode(%d)", uint8(m))
}

// VideoModeSet is a bit set of video modes, bit n standing for VideoMode n.
type VideoModeSet uint32

// Modes lists the modes in the set in ascending order.
func (s VideoModeSet) Modes() []VideoMode {
	var modes []VideoMode
	for m := VideoMode(0); m < VideoMode(videoModeCount); m++ {
		if s&(1<<m) != 0 {
			modes = append(modes, m)
		}
	}
	return modes
}

// Contains reports whether m is in the set.
func (s VideoModeSet) Contains(m VideoMode) bool {
	return m.Valid() && s&(1<<m) != 0
}

// SDI3GOutputLevel selects the 3G-SDI mapping level.
type SDI3GOutputLevel uint8

const (
	SDILevelB SDI3GOutputLevel = 0
	SDILevelA SDI3GOutputLevel = 1
)

func (l SDI3GOutputLevel) Valid() bool { return l <= SDILevelA }

func (l SDI3GOutputLevel) String() string {
	if l == SDILevelA {
		return "LEVEL_A"
	}
	if l == SDILevelB {
		return "LEVEL_B"
	}
	return fmt.Sprintf("SDI3GOutputLevel(%d)", uint8(l))
}

// TransitionStyle is the kind of transition an ME performs on auto.
type TransitionStyle uint8

const (
	TransitionMix   TransitionStyle = 0
	TransitionDip   TransitionStyle = 1
	TransitionWipe  TransitionStyle = 2
	TransitionDVE   TransitionStyle = 3
	TransitionSting TransitionStyle = 4
)

var transitionStyleNames = map[TransitionStyle]string{
	TransitionMix: "MIX", TransitionDip: "DIP", TransitionWipe: "WIPE",
	TransitionDVE: "DVE", TransitionSting: "STING",
}

func (s TransitionStyle) Valid() bool    { _, ok := transitionStyleNames[s]; return ok }
func (s TransitionStyle) String() string { return enumName(transitionStyleNames, s) }

// KeyType is the compositing method of an upstream keyer.
type KeyType uint8

const (
	KeyLuma    KeyType = 0
	KeyChroma  KeyType = 1
	KeyPattern KeyType = 2
	KeyDVE     KeyType = 3
)

var keyTypeNames = map[KeyType]string{
	KeyLuma: "LUMA", KeyChroma: "CHROMA", KeyPattern: "PATTERN", KeyDVE: "DVE",
}

func (k KeyType) Valid() bool    { _, ok := keyTypeNames[k]; return ok }
func (k KeyType) String() string { return enumName(keyTypeNames, k) }

// PatternStyle is the shape used by wipes and pattern keys.
type PatternStyle uint8

var patternStyleNames = []string{
	"LEFT_TO_RIGHT_BAR", "TOP_TO_BOTTOM_BAR", "HORIZONTAL_BARN_DOOR", "VERTICAL_BARN_DOOR",
	"CORNERS_IN_FOUR_BOX", "RECTANGLE_IRIS", "DIAMOND_IRIS", "CIRCLE_IRIS",
	"TOP_LEFT_BOX", "TOP_RIGHT_BOX", "BOTTOM_RIGHT_BOX", "BOTTOM_LEFT_BOX",
	"TOP_CENTRE_BOX", "RIGHT_CENTRE_BOX", "BOTTOM_CENTRE_BOX", "LEFT_CENTRE_BOX",
	"TOP_LEFT_DIAGONAL", "TOP_RIGHT_DIAGONAL",
}

func (p PatternStyle) Valid() bool { return int(p) < len(patternStyleNames) }

func (p PatternStyle) String() string {
	if p.Valid() {
		return patternStyleNames[p]
	}
	return fmt.Sprintf("PatternStyle(%d)", uint8(p))
}

// BevelType is the super source border bevel.
type BevelType uint8

const (
	BevelNone  BevelType = 0
	BevelInOut BevelType = 1
	BevelIn    BevelType = 2
	BevelOut   BevelType = 3
)

var bevelTypeNames = map[BevelType]string{
	BevelNone: "NONE", BevelInOut: "IN_OUT", BevelIn: "IN", BevelOut: "OUT",
}

func (b BevelType) Valid() bool    { _, ok := bevelTypeNames[b]; return ok }
func (b BevelType) String() string { return enumName(bevelTypeNames, b) }

// MultiviewLayout places the program and preview windows on older firmware.
type MultiviewLayout uint8

const (
	LayoutProgramTop    MultiviewLayout = 0
	LayoutProgramBottom MultiviewLayout = 1
	LayoutProgramLeft   MultiviewLayout = 2
	LayoutProgramRight  MultiviewLayout = 3
)

var multiviewLayoutNames = map[MultiviewLayout]string{
	LayoutProgramTop: "PROGRAM_TOP", LayoutProgramBottom: "PROGRAM_BOTTOM",
	LayoutProgramLeft: "PROGRAM_LEFT", LayoutProgramRight: "PROGRAM_RIGHT",
}

func (l MultiviewLayout) Valid() bool    { _, ok := multiviewLayoutNames[l]; return ok }
func (l MultiviewLayout) String() string { return enumName(multiviewLayoutNames, l) }

// MultiviewLayoutV8 is the quadrant bit set used from protocol 2.28.
type MultiviewLayoutV8 uint8

const (
	LayoutTopLeftSmall     MultiviewLayoutV8 = 1 << 0
	LayoutTopRightSmall    MultiviewLayoutV8 = 1 << 1
	LayoutBottomLeftSmall  MultiviewLayoutV8 = 1 << 2
	LayoutBottomRightSmall MultiviewLayoutV8 = 1 << 3
	LayoutSwapped          MultiviewLayoutV8 = 1 << 4

	multiviewLayoutV8Mask MultiviewLayoutV8 = 1<<5 - 1
)

var multiviewLayoutV8Names = map[MultiviewLayoutV8]string{
	LayoutTopLeftSmall: "TOP_LEFT_SMALL", LayoutTopRightSmall: "TOP_RIGHT_SMALL",
	LayoutBottomLeftSmall: "BOTTOM_LEFT_SMALL", LayoutBottomRightSmall: "BOTTOM_RIGHT_SMALL",
	LayoutSwapped: "PROGRAM_PREVIEW_SWAPPED",
}

func (l MultiviewLayoutV8) Valid() bool    { return l&^multiviewLayoutV8Mask == 0 }
func (l MultiviewLayoutV8) String() string { return flagNames(multiviewLayoutV8Names, l) }

// MediaPoolFileType is the media pool slot a file lives in.
type MediaPoolFileType uint8

const (
	MediaStill MediaPoolFileType = 0
	MediaClip1 MediaPoolFileType = 1
	MediaClip2 MediaPoolFileType = 2
	MediaClip3 MediaPoolFileType = 3
	MediaClip4 MediaPoolFileType = 4
)

func (t MediaPoolFileType) Valid() bool { return t <= MediaClip4 }

func (t MediaPoolFileType) String() string {
	switch {
	case t == MediaStill:
		return "STILL"
	case t.Valid():
		return fmt.Sprintf("CLIP_%d", uint8(t))
	}
	return fmt.Sprintf("MediaPoolFileType(%d)", uint8(t))
}

// MediaPlayerSourceType selects whether a media player plays a still or a clip.
type MediaPlayerSourceType uint8

const (
	MediaPlayerStill MediaPlayerSourceType = 1
	MediaPlayerClip  MediaPlayerSourceType = 2
)

func (t MediaPlayerSourceType) Valid() bool { return t == MediaPlayerStill || t == MediaPlayerClip }

func (t MediaPlayerSourceType) String() string {
	switch t {
	case MediaPlayerStill:
		return "STILL"
	case MediaPlayerClip:
		return "CLIP"
	}
	return fmt.Sprintf("MediaPlayerSourceType(%d)", uint8(t))
}

// MacroAction is an operation on a stored macro.
type MacroAction uint8

const (
	MacroRun           MacroAction = 0
	MacroStop          MacroAction = 1
	MacroStopRecording MacroAction = 2
	MacroInsertWait    MacroAction = 3
	MacroContinue      MacroAction = 4
	MacroDelete        MacroAction = 5
)

var macroActionNames = map[MacroAction]string{
	MacroRun: "RUN", MacroStop: "STOP", MacroStopRecording: "STOP_RECORDING",
	MacroInsertWait: "INSERT_WAIT", MacroContinue: "CONTINUE", MacroDelete: "DELETE",
}

func (a MacroAction) Valid() bool    { _, ok := macroActionNames[a]; return ok }
func (a MacroAction) String() string { return enumName(macroActionNames, a) }

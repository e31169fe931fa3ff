package command

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/avista-project/avista/internal/protocol"
	"github.com/avista-project/avista/internal/state"
)

const (
	u8  = math.MaxUint8
	u16 = math.MaxUint16
)

// Highest defined codes of the open-ended source enumerations.
const (
	lastVideoSource = protocol.VideoME4Preview
	lastAudioSource = protocol.AudioMediaPlayer4
)

var allLayers = protocol.TransitionSelection{Background: true, Key1: true, Key2: true, Key3: true, Key4: true}

// roundTrip encodes cmd, decodes it with the candidate for its lowest
// version and compares the result.
func roundTrip(t *testing.T, reg *Registry, cmd Command) {
	t.Helper()
	lo, _ := VersionRange(cmd)
	decode, err := reg.Lookup(cmd.Tag(), lo)
	if err != nil {
		t.Errorf("%T: lookup %s at %s: %v", cmd, cmd.Tag(), lo, err)
		return
	}
	got, err := decode(Body(cmd))
	if err != nil {
		t.Errorf("%T: decode: %v", cmd, err)
		return
	}
	if !reflect.DeepEqual(got, cmd) {
		t.Errorf("%T: round trip\n got %+v\nwant %+v", cmd, got, cmd)
	}
}

// extremes holds every decodable record with each integer at its maximum,
// signed fields at their limits, every flag set and every optional field
// present.
func extremes() []Command {
	topo := Topology{
		MEs: u8, Sources: u8, DSKs: u8, Auxes: u8, MixMinusOutputs: u8, MediaPlayers: u8,
		Multiviewers: u8, SerialPorts: u8, HyperDecks: u8, DVEs: u8, Stingers: u8, SuperSources: u8,
		TalkbackChannels: u8, CameraControl: true, AdvancedChromaKeyers: true, OnlyConfigurableOutputs: true,
	}
	topoV7 := topo
	topoV7.Multiviewers = 0
	topoV7.TalkbackChannels = 0
	topoV7.CameraControl, topoV7.AdvancedChromaKeyers, topoV7.OnlyConfigurableOutputs = false, false, false
	topoV8 := topo
	topoV8.Multiviewers = 0

	mask := state.Mask{Enabled: true, Top: math.MaxInt16, Bottom: math.MinInt16, Left: math.MinInt16, Right: math.MaxInt16}
	crop := state.Crop{Enabled: true, Top: u16, Bottom: u16, Left: u16, Right: u16}
	border := SuperSourceBorder{
		Enabled: true, Bevel: protocol.BevelOut, OuterWidth: u16, InnerWidth: u16,
		OuterSoftness: u8, InnerSoftness: u8, BevelSoftness: u8, BevelPosition: u8,
		Hue: u16, Saturation: u16, Luma: u16, LightDirection: u16, LightAltitude: u8,
	}
	borderV8 := border
	borderV8.ID = u8

	return []Command{
		&ProtocolVersion{Major: u16, Minor: u16},
		&ProductName{Name: strings.Repeat("W", 44)},
		&TopologyV7{topoV7},
		&TopologyV8{topoV8},
		&TopologyV811{topo},
		&MixEffectConfig{ID: u8, Keyers: u8},
		&MediaPoolConfig{Stills: u8, Clips: u8},
		&MultiviewerConfigV7{Count: u8, WindowCount: u8, CanRouteInputs: true, CanSwapProgramPreview: true, CanToggleSafeArea: true},
		&MultiviewerConfigV8{
			Count: u8, WindowCount: u8, CanRouteInputs: true, SupportsVUMeters: true,
			CanToggleSafeArea: true, CanSwapProgramPreview: true, SupportsQuadrants: true,
		},
		&MultiviewerConfigV811{
			WindowCount: u8, CanChangeLayout: true, CanRouteInputs: true, SupportsVUMeters: true,
			CanToggleSafeArea: true, CanSwapProgramPreview: true, SupportsQuadrants: true,
		},
		&AudioMixerConfig{Inputs: u8, Monitors: u8, Headphones: u8},
		&VideoModeConfig{Mode: protocol.VideoMode1080p60},
		&DownConvertVideoMode{CoreMode: protocol.VideoMode1080p60, DownConvertedMode: protocol.VideoMode1080p60},
		&VideoMixerConfig{AvailableModes: math.MaxUint32},
		&PowerState{Main: true, Backup: true},
		&SDI3GLevel{Level: protocol.SDILevelA},
		&MacroPoolConfig{Count: u8},
		&TallyChannelConfig{Count: u8},
		&TimecodeLock{Locked: true},
		&InitComplete{Complete: true},

		&InputProperties{
			ID: lastVideoSource, Name: strings.Repeat("N", 20), ShortName: "SHRT", NamesAreDefault: true,
			AvailableExternal: protocol.ExternalPortType(1<<13 - 1), ExternalPortType: protocol.PortRJ45,
			InternalPortType: protocol.InternalMultiviewer, SourceAvailability: protocol.SourceAvailability(1<<6 - 1),
			MEAvailability: protocol.MEAvailability(1<<4 - 1),
		},
		&MultiviewVideoMode{CoreMode: protocol.VideoMode1080p60, MultiviewMode: protocol.VideoMode1080p60},
		&MultiviewLayout{Index: u8, Layout: protocol.LayoutProgramRight},
		&MultiviewLayoutV8{Index: u8, Layout: protocol.MultiviewLayoutV8(1<<5 - 1)},
		&MultiviewVUMeter{Index: u8, WindowIndex: u8, Enabled: true},
		&MultiviewSafeArea{Index: u8, WindowIndex: u8, Enabled: true},
		&MultiviewInput{Index: u8, WindowIndex: u8, Source: lastVideoSource},
		&MultiviewOpacity{Index: u8, Opacity: u8},

		&PreviewInput{Index: u8, Source: lastVideoSource},
		&SetPreviewInput{Index: u8, Source: lastVideoSource},
		&ProgramInput{Index: u8, Source: lastVideoSource},
		&SetProgramInput{Index: u8, Source: lastVideoSource},
		&Cut{Index: u8},
		&Auto{Index: u8},
		&TransitionProperties{
			Index: u8, Style: protocol.TransitionSting, Next: allLayers,
			StyleNext: protocol.TransitionSting, NextTransition: allLayers,
		},
		&SetTransitionProperties{Index: u8, Style: Opt(protocol.TransitionSting), Next: Opt(allLayers)},
		&TransitionPreview{Index: u8, Enabled: true},
		&TransitionPosition{Index: u8, InTransition: true, FramesRemaining: u8, Position: u16},
		&SetTransitionPosition{Index: u8, Position: u16},
		&TransitionMix{Index: u8, Rate: u8},
		&SetTransitionMix{Index: u8, Rate: u8},
		&TransitionDip{Index: u8, Rate: u8, Source: lastVideoSource},
		&SetTransitionDip{Index: u8, Rate: Opt[uint8](u8), Source: Opt(lastVideoSource)},
		&TransitionWipe{
			Index: u8, Rate: u8, Pattern: protocol.PatternStyle(17), Width: u16, FillSource: lastVideoSource,
			Symmetry: u16, Softness: u16, PositionX: u16, PositionY: u16, Reverse: true, FlipFlop: true,
		},
		&TransitionDVE{
			Index: u8, Rate: u8, Style: u8, FillSource: lastVideoSource, KeySource: lastVideoSource,
			EnableKey: true, PreMultiplied: true, Clip: u16, Gain: u16, Invert: true, Reverse: true, FlipFlop: true,
		},
		&TransitionStinger{
			Index: u8, Source: u8, PreMultiplied: true, Clip: u16, Gain: u16, Invert: true,
			PreRoll: u16, Duration: u16, TriggerPoint: u16, MixRate: u16,
		},
		&FadeToBlackProperties{Index: u8, Rate: u8},
		&FadeToBlackStatus{Index: u8, FullyBlack: true, InTransition: true, FramesRemaining: u8},
		&SetFadeToBlackRate{Index: u8, Rate: u8},
		&FadeToBlackAuto{Index: u8},
		&ColorGenerator{Index: u8, Hue: u16, Saturation: u16, Luma: u16},

		&KeyerOnAir{Index: u8, KeyIndex: u8, Enabled: true},
		&SetKeyerOnAir{Index: u8, KeyIndex: u8, Enabled: true},
		&KeyerBase{
			Index: u8, KeyIndex: u8, Type: protocol.KeyDVE, CanFly: true, FlyEnabled: true,
			FillSource: lastVideoSource, KeySource: lastVideoSource, Mask: mask,
		},
		&SetKeyerType{Index: u8, KeyIndex: u8, Type: Opt(protocol.KeyDVE), FlyEnabled: Opt(true)},
		&KeyerLuma{Index: u8, KeyIndex: u8, PreMultiplied: true, Clip: u16, Gain: u16, Invert: true},
		&KeyerChroma{Index: u8, KeyIndex: u8, Hue: u16, Gain: u16, YSuppress: u16, Lift: u16, Narrow: true},
		&KeyerPattern{
			Index: u8, KeyIndex: u8, Pattern: protocol.PatternStyle(17), Size: u16,
			Symmetry: u16, Softness: u16, PositionX: u16, PositionY: u16, Invert: true,
		},

		&SuperSourceProperties{
			FillSource: lastVideoSource, KeySource: lastVideoSource, Foreground: true, PreMultiplied: true,
			Clip: u16, Gain: u16, InvertKey: true, Border: border,
		},
		&SuperSourcePropertiesV8{
			ID: u8, FillSource: lastVideoSource, KeySource: lastVideoSource, Foreground: true,
			PreMultiplied: true, Clip: u16, Gain: u16, InvertKey: true,
		},
		&SetSuperSource{
			FillSource: Opt(lastVideoSource), KeySource: Opt(lastVideoSource), Foreground: Opt(true),
			PreMultiplied: Opt(true), Clip: Opt[uint16](u16), Gain: Opt[uint16](u16), InvertKey: Opt(true),
			BorderEnabled: Opt(true), Bevel: Opt(protocol.BevelOut), OuterWidth: Opt[uint16](u16),
			InnerWidth: Opt[uint16](u16), OuterSoftness: Opt[uint8](u8), InnerSoftness: Opt[uint8](u8),
			BevelSoftness: Opt[uint8](u8), BevelPosition: Opt[uint8](u8), BorderHue: Opt[uint16](u16),
			Saturation: Opt[uint16](u16), Luma: Opt[uint16](u16), LightDirection: Opt[uint16](u16),
			LightAltitude: Opt[uint8](u8),
		},
		&SetSuperSourceV8{
			ID: u8, FillSource: Opt(lastVideoSource), KeySource: Opt(lastVideoSource), Foreground: Opt(true),
			PreMultiplied: Opt(true), Clip: Opt[uint16](u16), Gain: Opt[uint16](u16), InvertKey: Opt(true),
		},
		&borderV8,
		&SetSuperSourceBorder{
			ID: u8, Enabled: Opt(true), Bevel: Opt(protocol.BevelOut), OuterWidth: Opt[uint16](u16),
			InnerWidth: Opt[uint16](u16), OuterSoftness: Opt[uint8](u8), InnerSoftness: Opt[uint8](u8),
			BevelSoftness: Opt[uint8](u8), BevelPosition: Opt[uint8](u8), Hue: Opt[uint16](u16),
			Saturation: Opt[uint16](u16), Luma: Opt[uint16](u16), LightDirection: Opt[uint16](u16),
			LightAltitude: Opt[uint8](u8),
		},
		&SuperSourceBox{
			Index: u8, Enabled: true, Source: lastVideoSource,
			PositionX: math.MaxInt16, PositionY: math.MinInt16, Size: u16, Crop: crop,
		},
		&SuperSourceBoxV8{
			SuperSource: u8, Index: u8, Enabled: true, Source: lastVideoSource,
			PositionX: math.MinInt16, PositionY: math.MaxInt16, Size: u16, Crop: crop,
		},

		&DSKSources{Index: u8, FillSource: lastVideoSource, KeySource: lastVideoSource},
		&DSKProperties{
			Index: u8, Tie: true, Rate: u8, PreMultiplied: true, Clip: u16, Gain: u16, Invert: true, Mask: mask,
		},
		&DSKState{Index: u8, OnAir: true, InTransition: true, AutoTransitioning: true, FramesRemaining: u8},
		&SetDSKOnAir{Index: u8, OnAir: true},
		&SetDSKTie{Index: u8, Tie: true},
		&DSKAuto{Index: u8},

		&TallyBySource{Sources: []SourceTally{{Source: lastVideoSource, Tally: state.TallyFlags{Program: true, Preview: true}}}},
		&TallyByIndex{Sources: []state.TallyFlags{{Program: true, Preview: true}}},
		&AuxSource{Index: u8, Source: lastVideoSource},
		&SetAuxSource{Index: u8, Source: lastVideoSource},
		&TalkbackInputProperties{
			Channel: u8, Source: lastVideoSource, CanMuteSDI: true, CurrentInputSupportsMuteSDI: true, MuteSDI: true,
		},

		&MediaClip{Index: u8, Used: true, Name: strings.Repeat("c", 63), FrameCount: u16},
		&MediaFrameDescription{
			FileType: protocol.MediaClip4, Index: u16, Used: true,
			Hash:     [16]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
			Filename: strings.Repeat("f", 63),
		},
		&MediaFrameInfo{Data: bytes.Repeat([]byte{0xff}, 64)},
		&MediaPlayerSource{Index: u8, SourceType: protocol.MediaPlayerClip, StillIndex: u8, ClipIndex: u8},
		&MediaPlayerStatus{Index: u8, Playing: true, Loop: true, AtBeginning: true, ClipFrame: u16},

		&MacroProperties{
			Index: u16, Used: true, HasUnsupportedOps: true,
			Name: strings.Repeat("m", 64), Description: strings.Repeat("d", 255),
		},
		&MacroControl{Index: u16, Action: protocol.MacroDelete},

		&AudioMixerInput{
			Source: lastAudioSource, Type: protocol.AudioTypeExternalAudio, FromMediaPlayer: true,
			PlugType: protocol.AudioPlugRCA, MixOption: protocol.AudioMixAudioFollowVideo,
			Volume: u16, Balance: math.MinInt16,
		},
		&AudioMixerMaster{Volume: u16},
		&AudioMixerMonitor{Enabled: true, Volume: u16, Mute: true, Solo: true, SoloInput: protocol.AudioSource(u16), Dim: true},
		&AudioMixerTally{Sources: []AudioTally{{Source: lastAudioSource, IsMixedIn: true}}},
		&ResetAudioPeaks{AllInputs: true, Input: Opt(protocol.AudioSource(u16)), Master: true, Monitor: true},
	}
}

// undefinedZero lists records whose zero value holds an enumeration code
// the protocol does not define.
var undefinedZero = map[string]bool{
	"*command.MediaPlayerSource": true,
	"*command.AudioMixerInput":   true,
}

func TestRoundTrip_Extremes(t *testing.T) {
	reg := DefaultRegistry()
	for _, cmd := range extremes() {
		roundTrip(t, reg, cmd)
	}
	requireEveryRegistration(t, extremes())
}

func TestRoundTrip_ZeroValues(t *testing.T) {
	reg := DefaultRegistry()
	for _, cmd := range samples() {
		if undefinedZero[fmt.Sprintf("%T", cmd)] {
			continue
		}
		zero := reflect.New(reflect.TypeOf(cmd).Elem()).Interface().(Command)
		roundTrip(t, reg, zero)
	}
}

func TestRoundTrip_EnumMembers(t *testing.T) {
	reg := DefaultRegistry()

	tests := []struct {
		name  string
		count int
		valid func(v int) bool
		build func(v int) Command
	}{
		{
			name:  "video sources via PrgI",
			count: u16 + 1,
			valid: func(v int) bool { return protocol.VideoSource(v).Valid() },
			build: func(v int) Command { return &ProgramInput{Source: protocol.VideoSource(v)} },
		},
		{
			name:  "transition styles via TrSS",
			count: u8 + 1,
			valid: func(v int) bool { return protocol.TransitionStyle(v).Valid() },
			build: func(v int) Command {
				return &TransitionProperties{Style: protocol.TransitionStyle(v), StyleNext: protocol.TransitionStyle(v)}
			},
		},
		{
			name:  "transition selections via TrSS",
			count: 1 << 5,
			valid: func(int) bool { return true },
			build: func(v int) Command {
				sel := protocol.SelectionFromByte(uint8(v))
				return &TransitionProperties{Next: sel, NextTransition: sel}
			},
		},
		{
			name:  "key types via KeBP",
			count: u8 + 1,
			valid: func(v int) bool { return protocol.KeyType(v).Valid() },
			build: func(v int) Command { return &KeyerBase{Type: protocol.KeyType(v)} },
		},
		{
			name:  "pattern styles via TWpP",
			count: u8 + 1,
			valid: func(v int) bool { return protocol.PatternStyle(v).Valid() },
			build: func(v int) Command { return &TransitionWipe{Pattern: protocol.PatternStyle(v)} },
		},
		{
			name:  "pattern styles via KePt",
			count: u8 + 1,
			valid: func(v int) bool { return protocol.PatternStyle(v).Valid() },
			build: func(v int) Command { return &KeyerPattern{Pattern: protocol.PatternStyle(v)} },
		},
		{
			name:  "bevel types via SSBd",
			count: u8 + 1,
			valid: func(v int) bool { return protocol.BevelType(v).Valid() },
			build: func(v int) Command { return &SuperSourceBorder{Bevel: protocol.BevelType(v)} },
		},
		{
			name:  "video modes via VidM",
			count: u8 + 1,
			valid: func(v int) bool { return protocol.VideoMode(v).Valid() },
			build: func(v int) Command { return &VideoModeConfig{Mode: protocol.VideoMode(v)} },
		},
		{
			name:  "macro actions via MAct",
			count: u8 + 1,
			valid: func(v int) bool { return protocol.MacroAction(v).Valid() },
			build: func(v int) Command { return &MacroControl{Action: protocol.MacroAction(v)} },
		},
		{
			name:  "audio sources via AMIP",
			count: u16 + 1,
			valid: func(v int) bool { return protocol.AudioSource(v).Valid() },
			build: func(v int) Command { return &AudioMixerInput{Source: protocol.AudioSource(v)} },
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			members := 0
			for v := 0; v < tt.count; v++ {
				if !tt.valid(v) {
					continue
				}
				members++
				roundTrip(t, reg, tt.build(v))
			}
			if members == 0 {
				t.Fatal("no members")
			}
		})
	}
}

func TestRoundTrip_EnumMemberCounts(t *testing.T) {
	count := func(n int, valid func(int) bool) int {
		c := 0
		for v := 0; v < n; v++ {
			if valid(v) {
				c++
			}
		}
		return c
	}
	tests := []struct {
		name string
		got  int
		want int
	}{
		{"TransitionStyle", count(u8+1, func(v int) bool { return protocol.TransitionStyle(v).Valid() }), 5},
		{"KeyType", count(u8+1, func(v int) bool { return protocol.KeyType(v).Valid() }), 4},
		{"PatternStyle", count(u8+1, func(v int) bool { return protocol.PatternStyle(v).Valid() }), 18},
		{"BevelType", count(u8+1, func(v int) bool { return protocol.BevelType(v).Valid() }), 4},
		{"VideoMode", count(u8+1, func(v int) bool { return protocol.VideoMode(v).Valid() }), 28},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s has %d members, want %d", tt.name, tt.got, tt.want)
		}
	}
}

func TestMaskedCommands_AllOrNone(t *testing.T) {
	tests := []struct {
		name     string
		all      Command
		none     Command
		wantMask []byte
	}{
		{
			"CTTp",
			&SetTransitionProperties{Style: Opt(protocol.TransitionWipe), Next: Opt(allLayers)},
			&SetTransitionProperties{Index: 1},
			[]byte{0x03},
		},
		{
			"CTDp",
			&SetTransitionDip{Rate: Opt[uint8](0), Source: Opt(protocol.VideoBlack)},
			&SetTransitionDip{Index: 1},
			[]byte{0x03},
		},
		{
			"CKTp",
			&SetKeyerType{Type: Opt(protocol.KeyLuma), FlyEnabled: Opt(false)},
			&SetKeyerType{Index: 1, KeyIndex: 2},
			[]byte{0x03},
		},
		{
			"CSSc classic",
			&SetSuperSource{
				FillSource: Opt(protocol.VideoBlack), KeySource: Opt(protocol.VideoBlack), Foreground: Opt(false),
				PreMultiplied: Opt(false), Clip: Opt[uint16](0), Gain: Opt[uint16](0), InvertKey: Opt(false),
				BorderEnabled: Opt(false), Bevel: Opt(protocol.BevelNone), OuterWidth: Opt[uint16](0),
				InnerWidth: Opt[uint16](0), OuterSoftness: Opt[uint8](0), InnerSoftness: Opt[uint8](0),
				BevelSoftness: Opt[uint8](0), BevelPosition: Opt[uint8](0), BorderHue: Opt[uint16](0),
				Saturation: Opt[uint16](0), Luma: Opt[uint16](0), LightDirection: Opt[uint16](0),
				LightAltitude: Opt[uint8](0),
			},
			&SetSuperSource{},
			[]byte{0x00, 0x0f, 0xff, 0xff},
		},
		{
			"CSSc",
			&SetSuperSourceV8{
				FillSource: Opt(protocol.VideoBlack), KeySource: Opt(protocol.VideoBlack), Foreground: Opt(false),
				PreMultiplied: Opt(false), Clip: Opt[uint16](0), Gain: Opt[uint16](0), InvertKey: Opt(false),
			},
			&SetSuperSourceV8{ID: 1},
			[]byte{0x7f},
		},
		{
			"CSBd",
			&SetSuperSourceBorder{
				Enabled: Opt(false), Bevel: Opt(protocol.BevelNone), OuterWidth: Opt[uint16](0),
				InnerWidth: Opt[uint16](0), OuterSoftness: Opt[uint8](0), InnerSoftness: Opt[uint8](0),
				BevelSoftness: Opt[uint8](0), BevelPosition: Opt[uint8](0), Hue: Opt[uint16](0),
				Saturation: Opt[uint16](0), Luma: Opt[uint16](0), LightDirection: Opt[uint16](0),
				LightAltitude: Opt[uint8](0),
			},
			&SetSuperSourceBorder{ID: 1},
			[]byte{0x1f, 0xff},
		},
		{
			"RAMP",
			&ResetAudioPeaks{AllInputs: true, Input: Opt(protocol.AudioSource(0)), Master: true, Monitor: true},
			&ResetAudioPeaks{},
			[]byte{0x0f},
		},
	}

	reg := DefaultRegistry()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			// Fields set to zero values still count as present.
			if got := Body(tt.all)[:len(tt.wantMask)]; !bytes.Equal(got, tt.wantMask) {
				t.Errorf("all fields: mask = %x, want %x", got, tt.wantMask)
			}
			if got := Body(tt.none)[:len(tt.wantMask)]; !bytes.Equal(got, make([]byte, len(tt.wantMask))) {
				t.Errorf("no fields: mask = %x, want zero", got)
			}
			roundTrip(t, reg, tt.all)
			roundTrip(t, reg, tt.none)
		})
	}
}

func TestInputProperties_TruncatedNameDecodes(t *testing.T) {
	cmd, err := decoder[InputProperties]()(Body(&InputProperties{ID: protocol.VideoInput1, ShortName: "aéé"}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := cmd.(*InputProperties).ShortName; got != "aé" {
		t.Errorf("short name = %q, want %q", got, "aé")
	}
}

// requireEveryRegistration fails for each registered decoder that no
// command in cmds exercises.
func requireEveryRegistration(t *testing.T, cmds []Command) {
	t.Helper()
	type key struct {
		tag string
		min protocol.Version
	}
	have := make(map[key]bool)
	for _, cmd := range cmds {
		lo, _ := VersionRange(cmd)
		have[key{cmd.Tag(), lo}] = true
	}
	for _, reg := range builtin {
		if !have[key{reg.tag, reg.min}] {
			t.Errorf("no command for %s from %s", reg.tag, reg.min)
		}
	}
}

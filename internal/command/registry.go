package command

import (
	"fmt"
	"slices"
	"sort"

	"github.com/avista-project/avista/internal/protocol"
)

// Candidate is one version-specific decoder for a tag.
type Candidate struct {
	MinVersion protocol.Version
	Decode     DecodeFunc
}

// Registry maps tags to their decoders.
type Registry struct {
	entries map[string][]Candidate
	ignored map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string][]Candidate),
		ignored: make(map[string]struct{}),
	}
}

// Register adds a decoder for tag, valid from min onwards.
func (r *Registry) Register(tag string, min protocol.Version, fn DecodeFunc) {
	list := append(r.entries[tag], Candidate{MinVersion: min, Decode: fn})
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].MinVersion.Less(list[j].MinVersion)
	})
	r.entries[tag] = list
}

// Ignore marks tags that are known but deliberately not decoded.
func (r *Registry) Ignore(tags ...string) {
	for _, t := range tags {
		r.ignored[t] = struct{}{}
	}
}

// IsIgnored reports whether tag is on the ignore list.
func (r *Registry) IsIgnored(tag string) bool {
	_, ok := r.ignored[tag]
	return ok
}

// Tags returns every registered tag in sorted order.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.entries))
	for t := range r.entries {
		tags = append(tags, t)
	}
	slices.Sort(tags)
	return tags
}

// Candidates returns the decoders for tag, oldest first.
func (r *Registry) Candidates(tag string) []Candidate {
	return r.entries[tag]
}

// Lookup selects the decoder for tag under the negotiated version v. A
// single candidate is always used. Otherwise the candidate with the highest
// minimum version not newer than v wins, or the newest candidate when no
// version has been negotiated.
func (r *Registry) Lookup(tag string, v protocol.Version) (DecodeFunc, error) {
	list := r.entries[tag]
	switch {
	case len(list) == 0 && r.IsIgnored(tag):
		return nil, ErrIgnoredCommand
	case len(list) == 0:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, tag)
	case len(list) == 1:
		return list[0].Decode, nil
	case v.IsZero():
		return list[len(list)-1].Decode, nil
	}

	for i := len(list) - 1; i >= 0; i-- {
		if !v.Less(list[i].MinVersion) {
			return list[i].Decode, nil
		}
	}
	return nil, fmt.Errorf("%w: %q at %s", ErrNoCandidate, tag, v)
}

// IgnoredTags are sent by switchers but carry nothing this package models:
// camera control, Fairlight audio, diagnostics and the clock.
var IgnoredTags = []string{
	"CCdP", "CCdo", "CCmd",
	"RXSS", "RXCP", "RXMS", "RXCC",
	"_DVE",
	"AEBP", "AIXP", "AICP", "AILP",
	"FAIP", "FIEP", "FASP", "FMTl",
	"Time",
}

type registration struct {
	tag    string
	min    protocol.Version
	decode DecodeFunc
}

var none protocol.Version

// builtin is the static decoder table.
var builtin = []registration{
	// Settings and topology
	{"_ver", none, decoder[ProtocolVersion]()},
	{"_pin", none, decoder[ProductName]()},
	{"_top", protocol.Version7, decoder[TopologyV7]()},
	{"_top", protocol.Version8, decoder[TopologyV8]()},
	{"_top", protocol.Version811, decoder[TopologyV811]()},
	{"_MeC", none, decoder[MixEffectConfig]()},
	{"_mpl", none, decoder[MediaPoolConfig]()},
	{"_MvC", protocol.Version7, decoder[MultiviewerConfigV7]()},
	{"_MvC", protocol.Version8, decoder[MultiviewerConfigV8]()},
	{"_MvC", protocol.Version811, decoder[MultiviewerConfigV811]()},
	{"_AMC", none, decoder[AudioMixerConfig]()},
	{"VidM", none, decoder[VideoModeConfig]()},
	{"DHVm", none, decoder[DownConvertVideoMode]()},
	{"_VMC", none, decoder[VideoMixerConfig]()},
	{"Powr", none, decoder[PowerState]()},
	{"V3sl", none, decoder[SDI3GLevel]()},
	{"_MAC", none, decoder[MacroPoolConfig]()},
	{"_TlC", none, decoder[TallyChannelConfig]()},
	{"TcLk", none, decoder[TimecodeLock]()},
	{"InCm", none, decoder[InitComplete]()},

	// Inputs and multiviewers
	{"InPr", none, decoder[InputProperties]()},
	{"MvVM", none, decoder[MultiviewVideoMode]()},
	{"MvPr", protocol.Version7, decoder[MultiviewLayout]()},
	{"MvPr", protocol.Version8, decoder[MultiviewLayoutV8]()},
	{"VuMC", none, decoder[MultiviewVUMeter]()},
	{"SaMw", none, decoder[MultiviewSafeArea]()},
	{"MvIn", none, decoder[MultiviewInput]()},
	{"VuMo", none, decoder[MultiviewOpacity]()},

	// Mix effects
	{"PrvI", none, decoder[PreviewInput]()},
	{"CPvI", none, decoder[SetPreviewInput]()},
	{"PrgI", none, decoder[ProgramInput]()},
	{"CPgI", none, decoder[SetProgramInput]()},
	{"DCut", none, decoder[Cut]()},
	{"DAut", none, decoder[Auto]()},
	{"TrSS", none, decoder[TransitionProperties]()},
	{"CTTp", none, decoder[SetTransitionProperties]()},
	{"TrPr", none, decoder[TransitionPreview]()},
	{"TrPs", none, decoder[TransitionPosition]()},
	{"CTPs", none, decoder[SetTransitionPosition]()},
	{"TMxP", none, decoder[TransitionMix]()},
	{"CTMx", none, decoder[SetTransitionMix]()},
	{"TDpP", none, decoder[TransitionDip]()},
	{"CTDp", none, decoder[SetTransitionDip]()},
	{"TWpP", none, decoder[TransitionWipe]()},
	{"TDvP", none, decoder[TransitionDVE]()},
	{"TStP", none, decoder[TransitionStinger]()},
	{"FtbP", none, decoder[FadeToBlackProperties]()},
	{"FtbS", none, decoder[FadeToBlackStatus]()},
	{"FtbC", none, decoder[SetFadeToBlackRate]()},
	{"FtbA", none, decoder[FadeToBlackAuto]()},
	{"ColV", none, decoder[ColorGenerator]()},

	// Upstream keyers
	{"KeOn", none, decoder[KeyerOnAir]()},
	{"CKOn", none, decoder[SetKeyerOnAir]()},
	{"KeBP", none, decoder[KeyerBase]()},
	{"CKTp", none, decoder[SetKeyerType]()},
	{"KeLm", none, decoder[KeyerLuma]()},
	{"KeCk", none, decoder[KeyerChroma]()},
	{"KePt", none, decoder[KeyerPattern]()},

	// Super source
	{"SSrc", protocol.Version7, decoder[SuperSourceProperties]()},
	{"SSrc", protocol.Version8, decoder[SuperSourcePropertiesV8]()},
	{"CSSc", protocol.Version7, decoder[SetSuperSource]()},
	{"CSSc", protocol.Version8, decoder[SetSuperSourceV8]()},
	{"SSBd", protocol.Version8, decoder[SuperSourceBorder]()},
	{"CSBd", protocol.Version8, decoder[SetSuperSourceBorder]()},
	{"SSBP", protocol.Version7, decoder[SuperSourceBox]()},
	{"SSBP", protocol.Version8, decoder[SuperSourceBoxV8]()},

	// Downstream keyers
	{"DskB", none, decoder[DSKSources]()},
	{"DskP", none, decoder[DSKProperties]()},
	{"DskS", none, decoder[DSKState]()},
	{"CDsL", none, decoder[SetDSKOnAir]()},
	{"CDsT", none, decoder[SetDSKTie]()},
	{"DDsA", none, decoder[DSKAuto]()},

	// Tally, auxes and talkback
	{"TlSr", none, decoder[TallyBySource]()},
	{"TlIn", none, decoder[TallyByIndex]()},
	{"AuxS", none, decoder[AuxSource]()},
	{"CAuS", none, decoder[SetAuxSource]()},
	{"TMIP", none, decoder[TalkbackInputProperties]()},

	// Media
	{"MPCS", none, decoder[MediaClip]()},
	{"MPfe", none, decoder[MediaFrameDescription]()},
	{"MPfM", none, decoder[MediaFrameInfo]()},
	{"MPCE", none, decoder[MediaPlayerSource]()},
	{"RCPS", none, decoder[MediaPlayerStatus]()},

	// Macros
	{"MPrp", none, decoder[MacroProperties]()},
	{"MAct", none, decoder[MacroControl]()},

	// Audio
	{"AMIP", none, decoder[AudioMixerInput]()},
	{"AMMO", none, decoder[AudioMixerMaster]()},
	{"AMmO", none, decoder[AudioMixerMonitor]()},
	{"AMTl", none, decoder[AudioMixerTally]()},
	{"RAMP", none, decoder[ResetAudioPeaks]()},
}

// DefaultRegistry returns a registry holding every record this package
// defines, plus the ignore list.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, reg := range builtin {
		r.Register(reg.tag, reg.min, reg.decode)
	}
	r.Ignore(IgnoredTags...)
	return r
}

package state

import "github.com/avista-project/avista/internal/protocol"

// ME is one mix effect bus.
type ME struct {
	Index       int                  `json:"index"`
	Program     protocol.VideoSource `json:"program"`
	Preview     protocol.VideoSource `json:"preview"`
	Transition  *Transition          `json:"transition,omitempty"`
	Keyers      map[int]*Keyer       `json:"keyers,omitempty"`
	FadeToBlack *FadeToBlack         `json:"fade_to_black,omitempty"`
}

// Transition is the transition engine of an ME.
type Transition struct {
	Style          protocol.TransitionStyle     `json:"style"`
	Next           protocol.TransitionSelection `json:"next"`
	StyleNext      protocol.TransitionStyle     `json:"style_next"`
	NextTransition protocol.TransitionSelection `json:"next_transition"`
	Preview        bool                         `json:"preview"`
	Position       TransitionPosition           `json:"position"`
	Properties     TransitionProperties         `json:"properties"`
}

// TransitionPosition is the progress of the current transition.
type TransitionPosition struct {
	InTransition    bool   `json:"in_transition"`
	FramesRemaining uint8  `json:"frames_remaining"`
	Position        uint16 `json:"position"`
}

// TransitionProperties holds the per-style settings reported by the switcher.
type TransitionProperties struct {
	Mix     *MixTransition     `json:"mix,omitempty"`
	Dip     *DipTransition     `json:"dip,omitempty"`
	Wipe    *WipeTransition    `json:"wipe,omitempty"`
	DVE     *DVETransition     `json:"dve,omitempty"`
	Stinger *StingerTransition `json:"stinger,omitempty"`
}

type MixTransition struct {
	Rate uint8 `json:"rate"`
}

type DipTransition struct {
	Rate   uint8                `json:"rate"`
	Source protocol.VideoSource `json:"source"`
}

type WipeTransition struct {
	Rate       uint8                 `json:"rate"`
	Pattern    protocol.PatternStyle `json:"pattern"`
	Width      uint16                `json:"width"`
	FillSource protocol.VideoSource  `json:"fill_source"`
	Symmetry   uint16                `json:"symmetry"`
	Softness   uint16                `json:"softness"`
	PositionX  uint16                `json:"position_x"`
	PositionY  uint16                `json:"position_y"`
	Reverse    bool                  `json:"reverse"`
	FlipFlop   bool                  `json:"flip_flop"`
}

type DVETransition struct {
	Rate          uint8                `json:"rate"`
	Style         uint8                `json:"style"`
	FillSource    protocol.VideoSource `json:"fill_source"`
	KeySource     protocol.VideoSource `json:"key_source"`
	EnableKey     bool                 `json:"enable_key"`
	PreMultiplied bool                 `json:"pre_multiplied"`
	Clip          uint16               `json:"clip"`
	Gain          uint16               `json:"gain"`
	Invert        bool                 `json:"invert"`
	Reverse       bool                 `json:"reverse"`
	FlipFlop      bool                 `json:"flip_flop"`
}

type StingerTransition struct {
	Source        uint8  `json:"source"`
	PreMultiplied bool   `json:"pre_multiplied"`
	Clip          uint16 `json:"clip"`
	Gain          uint16 `json:"gain"`
	Invert        bool   `json:"invert"`
	PreRoll       uint16 `json:"pre_roll"`
	ClipDuration  uint16 `json:"clip_duration"`
	TriggerPoint  uint16 `json:"trigger_point"`
	MixRate       uint16 `json:"mix_rate"`
}

// Keyer is an upstream keyer on an ME.
type Keyer struct {
	OnAir      bool                 `json:"on_air"`
	Type       protocol.KeyType     `json:"type"`
	CanFly     bool                 `json:"can_fly"`
	FlyEnabled bool                 `json:"fly_enabled"`
	FillSource protocol.VideoSource `json:"fill_source"`
	KeySource  protocol.VideoSource `json:"key_source"`
	Mask       Mask                 `json:"mask"`
	Luma       *LumaKey             `json:"luma,omitempty"`
	Chroma     *ChromaKey           `json:"chroma,omitempty"`
	Pattern    *PatternKey          `json:"pattern,omitempty"`
}

// Mask is a rectangular key mask.
type Mask struct {
	Enabled bool  `json:"enabled"`
	Top     int16 `json:"top"`
	Bottom  int16 `json:"bottom"`
	Left    int16 `json:"left"`
	Right   int16 `json:"right"`
}

type LumaKey struct {
	PreMultiplied bool   `json:"pre_multiplied"`
	Clip          uint16 `json:"clip"`
	Gain          uint16 `json:"gain"`
	Invert        bool   `json:"invert"`
}

type ChromaKey struct {
	Hue       uint16 `json:"hue"`
	Gain      uint16 `json:"gain"`
	YSuppress uint16 `json:"y_suppress"`
	Lift      uint16 `json:"lift"`
	Narrow    bool   `json:"narrow"`
}

type PatternKey struct {
	Pattern   protocol.PatternStyle `json:"pattern"`
	Size      uint16                `json:"size"`
	Symmetry  uint16                `json:"symmetry"`
	Softness  uint16                `json:"softness"`
	PositionX uint16                `json:"position_x"`
	PositionY uint16                `json:"position_y"`
	Invert    bool                  `json:"invert"`
}

// FadeToBlack is the fade to black control of an ME.
type FadeToBlack struct {
	Rate  uint8             `json:"rate"`
	State *FadeToBlackState `json:"state,omitempty"`
}

type FadeToBlackState struct {
	FullyBlack      bool  `json:"fully_black"`
	InTransition    bool  `json:"in_transition"`
	FramesRemaining uint8 `json:"frames_remaining"`
}

// DSK is a downstream keyer.
type DSK struct {
	FillSource      protocol.VideoSource `json:"fill_source"`
	KeySource       protocol.VideoSource `json:"key_source"`
	Tie             bool                 `json:"tie"`
	Rate            uint8                `json:"rate"`
	PreMultiplied   bool                 `json:"pre_multiplied"`
	Clip            uint16               `json:"clip"`
	Gain            uint16               `json:"gain"`
	Invert          bool                 `json:"invert"`
	Mask            Mask                 `json:"mask"`
	OnAir           bool                 `json:"on_air"`
	InTransition    bool                 `json:"is_transitioning"`
	AutoTransition  bool                 `json:"is_auto_transitioning"`
	FramesRemaining uint8                `json:"frames_remaining"`
}

// Aux is an auxiliary output.
type Aux struct {
	Source protocol.VideoSource `json:"source"`
}

// SuperSource is one super source compositor.
type SuperSource struct {
	FillSource    protocol.VideoSource `json:"fill_source"`
	KeySource     protocol.VideoSource `json:"key_source"`
	Foreground    bool                 `json:"foreground"`
	PreMultiplied bool                 `json:"pre_multiplied"`
	Clip          uint16               `json:"clip"`
	Gain          uint16               `json:"gain"`
	InvertKey     bool                 `json:"invert_key"`
	Border        *Border              `json:"border,omitempty"`
	Boxes         map[int]*Box         `json:"boxes,omitempty"`
}

// Border is the art border drawn around super source boxes.
type Border struct {
	Enabled       bool   `json:"enabled"`
	OuterWidth    uint16 `json:"outer_width"`
	InnerWidth    uint16 `json:"inner_width"`
	OuterSoftness uint8  `json:"outer_softness"`
	InnerSoftness uint8  `json:"inner_softness"`
	Hue           uint16 `json:"hue"`
	Saturation    uint16 `json:"saturation"`
	Luma          uint16 `json:"luma"`
	Bevel         Bevel  `json:"bevel"`
}

type Bevel struct {
	Type           protocol.BevelType `json:"type"`
	Softness       uint8              `json:"softness"`
	Position       uint8              `json:"position"`
	LightDirection uint16             `json:"light_direction"`
	LightAltitude  uint8              `json:"light_altitude"`
}

// Box is one window of a super source.
type Box struct {
	Enabled   bool                 `json:"enabled"`
	Source    protocol.VideoSource `json:"source"`
	PositionX int16                `json:"position_x"`
	PositionY int16                `json:"position_y"`
	Size      uint16               `json:"size"`
	Crop      Crop                 `json:"crop"`
}

type Crop struct {
	Enabled bool   `json:"enabled"`
	Top     uint16 `json:"top"`
	Bottom  uint16 `json:"bottom"`
	Left    uint16 `json:"left"`
	Right   uint16 `json:"right"`
}

// Source describes one routable video source.
type Source struct {
	ID               protocol.VideoSource      `json:"id"`
	Name             string                    `json:"name"`
	ShortName        string                    `json:"short_name"`
	NamesAreDefault  bool                      `json:"names_are_default"`
	InternalPortType protocol.InternalPortType `json:"internal_port_type"`
	MEAvailability   protocol.MEAvailability   `json:"me_availability"`
}

// Audio is the classic audio mixer.
type Audio struct {
	Inputs  map[protocol.AudioSource]*AudioInput `json:"inputs,omitempty"`
	Master  *AudioMaster                         `json:"master,omitempty"`
	Monitor *AudioMonitor                        `json:"monitor,omitempty"`
	Tally   map[protocol.AudioSource]bool        `json:"tally,omitempty"`
}

type AudioInput struct {
	Type            protocol.AudioSourceType `json:"type"`
	FromMediaPlayer bool                     `json:"from_media_player"`
	PlugType        protocol.AudioPlugType   `json:"plug_type"`
	MixOption       protocol.AudioMixOption  `json:"mix_option"`
	Volume          uint16                   `json:"volume"`
	Balance         int16                    `json:"balance"`
}

type AudioMaster struct {
	Volume uint16 `json:"volume"`
}

type AudioMonitor struct {
	Enabled   bool                 `json:"enabled"`
	Volume    uint16               `json:"volume"`
	Mute      bool                 `json:"mute"`
	Solo      bool                 `json:"solo"`
	SoloInput protocol.AudioSource `json:"solo_input"`
	Dim       bool                 `json:"dim"`
}

// Macro is one stored macro slot.
type Macro struct {
	Used        bool   `json:"used"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MediaPool lists the stills and clips held by the switcher.
type MediaPool struct {
	Stills map[int]*Still `json:"stills,omitempty"`
	Clips  map[int]*Clip  `json:"clips,omitempty"`
}

type Still struct {
	Used     bool   `json:"used"`
	Hash     string `json:"hash,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type Clip struct {
	Used       bool   `json:"used"`
	Name       string `json:"name"`
	FrameCount uint16 `json:"frame_count"`
}

// MediaPlayer is the source and transport state of one media player.
type MediaPlayer struct {
	SourceType  protocol.MediaPlayerSourceType `json:"source_type"`
	StillIndex  uint8                          `json:"still_index"`
	ClipIndex   uint8                          `json:"clip_index"`
	Playing     bool                           `json:"playing"`
	Loop        bool                           `json:"loop"`
	AtBeginning bool                           `json:"at_beginning"`
	ClipFrame   uint16                         `json:"clip_frame"`
}

// Config holds capabilities and settings that rarely change.
type Config struct {
	Version             protocol.Version                          `json:"version"`
	Name                string                                    `json:"name,omitempty"`
	Topology            *Topology                                 `json:"topology,omitempty"`
	MediaPool           *MediaPoolConfig                          `json:"media_pool,omitempty"`
	Audio               *AudioConfig                              `json:"audio,omitempty"`
	Downconverter       map[protocol.VideoMode]protocol.VideoMode `json:"downconverter,omitempty"`
	AvailableVideoModes []protocol.VideoMode                      `json:"available_video_modes,omitempty"`
	SDI3GOutputLevel    protocol.SDI3GOutputLevel                 `json:"sdi_3g_output_level"`
	MacroPoolSize       uint8                                     `json:"macro_pool_size"`
	TallyChannels       uint8                                     `json:"tally_channels"`
	MultiviewVideoModes map[protocol.VideoMode]protocol.VideoMode `json:"multiview_video_modes,omitempty"`
	Multiviewers        map[int]*Multiviewer                      `json:"multiviewers,omitempty"`
}

// Topology is the hardware inventory announced at connection start.
type Topology struct {
	MEs               uint8 `json:"mes"`
	Sources           uint8 `json:"sources"`
	DSKs              uint8 `json:"dsks"`
	Auxes             uint8 `json:"auxes"`
	MixMinusOutputs   uint8 `json:"mix_minus_outputs"`
	MediaPlayers      uint8 `json:"media_players"`
	Multiviewers      uint8 `json:"multiviewers"`
	SerialPorts       uint8 `json:"serial_ports"`
	HyperDecks        uint8 `json:"hyperdecks"`
	DVEs              uint8 `json:"dves"`
	Stingers          uint8 `json:"stingers"`
	SuperSources      uint8 `json:"super_sources"`
	TalkbackChannels  uint8 `json:"talkback_channels"`
	CameraControl     bool  `json:"camera_control"`
	AdvancedChroma    bool  `json:"advanced_chroma_keyers"`
	OnlyConfigurables bool  `json:"only_configurable_outputs"`
}

type MediaPoolConfig struct {
	Stills uint8 `json:"stills"`
	Clips  uint8 `json:"clips"`
}

type AudioConfig struct {
	InputCount      uint8 `json:"input_count"`
	MonitorCount    uint8 `json:"monitor_count"`
	HeadphonesCount uint8 `json:"headphones_count"`
}

// Multiviewer is the layout and window routing of one multiviewer output.
type Multiviewer struct {
	Layout  uint8                    `json:"layout"`
	Opacity uint8                    `json:"opacity"`
	Windows map[int]*MultiviewWindow `json:"windows,omitempty"`
}

type MultiviewWindow struct {
	Source          protocol.VideoSource `json:"source"`
	VUMeterEnabled  bool                 `json:"vu_meter_enabled"`
	SafeAreaEnabled bool                 `json:"safe_area_enabled"`
}

// Status is the live operating state of the switcher.
type Status struct {
	VideoMode       protocol.VideoMode      `json:"video_mode"`
	Power           Power                   `json:"power"`
	TimecodeLocked  bool                    `json:"timecode_locked"`
	Initialized     bool                    `json:"initialized"`
	ColorGenerators map[int]*ColorGenerator `json:"color_generators,omitempty"`
}

type Power struct {
	Main   bool `json:"main"`
	Backup bool `json:"backup"`
}

type ColorGenerator struct {
	Hue        uint16 `json:"hue"`
	Saturation uint16 `json:"saturation"`
	Luma       uint16 `json:"luma"`
}

// TalkbackChannel maps sources to their talkback mixer settings.
type TalkbackChannel map[protocol.VideoSource]*TalkbackInput

type TalkbackInput struct {
	CanMuteSDI                  bool `json:"can_mute_sdi"`
	CurrentInputSupportsMuteSDI bool `json:"current_input_supports_mute_sdi"`
	MuteSDI                     bool `json:"mute_sdi"`
}

// Tally is both the switcher-reported and the computed on-air status.
type Tally struct {
	ByIndex  map[int]TallyFlags                          `json:"by_index,omitempty"`
	BySource map[protocol.VideoSource]TallyFlags         `json:"by_source,omitempty"`
	ByME     map[int]map[protocol.VideoSource]TallyFlags `json:"by_me,omitempty"`
}

// TallyFlags is the program/preview status of one source.
type TallyFlags struct {
	Program bool `json:"program"`
	Preview bool `json:"preview"`
}

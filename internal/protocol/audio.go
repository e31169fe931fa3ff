package protocol

import "fmt"

// AudioSource identifies an input of the classic audio mixer.
type AudioSource uint16

const (
	AudioInput1       AudioSource = 1
	AudioXLR          AudioSource = 1001
	AudioAESEBU       AudioSource = 1101
	AudioRCA          AudioSource = 1201
	AudioMic1         AudioSource = 1301
	AudioMic2         AudioSource = 1302
	AudioMediaPlayer1 AudioSource = 2001
	AudioMediaPlayer2 AudioSource = 2002
	AudioMediaPlayer3 AudioSource = 2003
	AudioMediaPlayer4 AudioSource = 2004
)

// AudioInput returns the audio channel of physical video input n (1-based).
func AudioInput(n int) AudioSource {
	return AudioSource(n)
}

func (s AudioSource) Valid() bool {
	n := int(s)
	switch {
	case n >= 1 && n <= maxInputs:
		return true
	case s == AudioXLR, s == AudioAESEBU, s == AudioRCA, s == AudioMic1, s == AudioMic2:
		return true
	case s >= AudioMediaPlayer1 && s <= AudioMediaPlayer4:
		return true
	}
	return false
}

func (s AudioSource) String() string {
	n := int(s)
	switch {
	case n >= 1 && n <= maxInputs:
		return fmt.Sprintf("INPUT_%d", n)
	case s == AudioXLR:
		return "XLR"
	case s == AudioAESEBU:
		return "AES_EBU"
	case s == AudioRCA:
		return "RCA"
	case s == AudioMic1, s == AudioMic2:
		return fmt.Sprintf("MIC_%d", n-1300)
	case s >= AudioMediaPlayer1 && s <= AudioMediaPlayer4:
		return fmt.Sprintf("MEDIA_PLAYER_%d", n-2000)
	}
	return fmt.Sprintf("AudioSource(%d)", n)
}

// AudioSourceType is the origin of an audio mixer input.
type AudioSourceType uint8

const (
	AudioTypeExternalVideo AudioSourceType = 0
	AudioTypeMediaPlayer   AudioSourceType = 1
	AudioTypeExternalAudio AudioSourceType = 2
)

var audioSourceTypeNames = map[AudioSourceType]string{
	AudioTypeExternalVideo: "EXTERNAL_VIDEO", AudioTypeMediaPlayer: "MEDIA_PLAYER",
	AudioTypeExternalAudio: "EXTERNAL_AUDIO",
}

func (t AudioSourceType) Valid() bool    { _, ok := audioSourceTypeNames[t]; return ok }
func (t AudioSourceType) String() string { return enumName(audioSourceTypeNames, t) }

// AudioPlugType is the connector an audio input arrives on.
type AudioPlugType uint8

const (
	AudioPlugInternal  AudioPlugType = 0
	AudioPlugSDI       AudioPlugType = 1
	AudioPlugHDMI      AudioPlugType = 2
	AudioPlugComponent AudioPlugType = 3
	AudioPlugComposite AudioPlugType = 4
	AudioPlugSVideo    AudioPlugType = 5
	AudioPlugXLR       AudioPlugType = 32
	AudioPlugAESEBU    AudioPlugType = 64
	AudioPlugRCA       AudioPlugType = 128
)

var audioPlugTypeNames = map[AudioPlugType]string{
	AudioPlugInternal: "INTERNAL", AudioPlugSDI: "SDI", AudioPlugHDMI: "HDMI",
	AudioPlugComponent: "COMPONENT", AudioPlugComposite: "COMPOSITE", AudioPlugSVideo: "SVIDEO",
	AudioPlugXLR: "XLR", AudioPlugAESEBU: "AES_EBU", AudioPlugRCA: "RCA",
}

func (t AudioPlugType) Valid() bool    { _, ok := audioPlugTypeNames[t]; return ok }
func (t AudioPlugType) String() string { return enumName(audioPlugTypeNames, t) }

// AudioMixOption controls how an input feeds the program mix.
type AudioMixOption uint8

const (
	AudioMixOff              AudioMixOption = 0
	AudioMixOn               AudioMixOption = 1
	AudioMixAudioFollowVideo AudioMixOption = 2
)

var audioMixOptionNames = map[AudioMixOption]string{
	AudioMixOff: "OFF", AudioMixOn: "ON", AudioMixAudioFollowVideo: "AUDIO_FOLLOW_VIDEO",
}

func (o AudioMixOption) Valid() bool    { _, ok := audioMixOptionNames[o]; return ok }
func (o AudioMixOption) String() string { return enumName(audioMixOptionNames, o) }

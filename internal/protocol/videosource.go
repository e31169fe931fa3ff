package protocol

import "fmt"

// VideoSource identifies anything that can be routed as video: physical
// inputs, generators, media players, masks, compositor outputs and the
// per-ME program and preview pseudo-sources.
type VideoSource uint16

// Physical inputs.
const (
	VideoBlack VideoSource = iota
	VideoInput1
	VideoInput2
	VideoInput3
	VideoInput4
	VideoInput5
	VideoInput6
	VideoInput7
	VideoInput8
	VideoInput9
	VideoInput10
	VideoInput11
	VideoInput12
	VideoInput13
	VideoInput14
	VideoInput15
	VideoInput16
	VideoInput17
	VideoInput18
	VideoInput19
	VideoInput20
)

// Internal sources.
const (
	VideoColourBars      VideoSource = 1000
	VideoColour1         VideoSource = 2001
	VideoColour2         VideoSource = 2002
	VideoMediaPlayer1    VideoSource = 3010
	VideoMediaPlayer1Key VideoSource = 3011
	VideoMediaPlayer2    VideoSource = 3020
	VideoMediaPlayer2Key VideoSource = 3021
	VideoMediaPlayer3    VideoSource = 3030
	VideoMediaPlayer3Key VideoSource = 3031
	VideoMediaPlayer4    VideoSource = 3040
	VideoMediaPlayer4Key VideoSource = 3041
	VideoKey1Mask        VideoSource = 4010
	VideoKey2Mask        VideoSource = 4020
	VideoKey3Mask        VideoSource = 4030
	VideoKey4Mask        VideoSource = 4040
	VideoDSK1Mask        VideoSource = 5010
	VideoDSK2Mask        VideoSource = 5020
	VideoDSK3Mask        VideoSource = 5030
	VideoDSK4Mask        VideoSource = 5040
	VideoSuperSource     VideoSource = 6000
	VideoSuperSource2    VideoSource = 6001
	VideoCleanFeed1      VideoSource = 7001
	VideoCleanFeed2      VideoSource = 7002
	VideoCleanFeed3      VideoSource = 7003
	VideoCleanFeed4      VideoSource = 7004
	VideoAux1            VideoSource = 8001
	VideoAux2            VideoSource = 8002
	VideoAux3            VideoSource = 8003
	VideoAux4            VideoSource = 8004
	VideoAux5            VideoSource = 8005
	VideoAux6            VideoSource = 8006
	VideoME1Program      VideoSource = 10010
	VideoME1Preview      VideoSource = 10011
	VideoME2Program      VideoSource = 10020
	VideoME2Preview      VideoSource = 10021
	VideoME3Program      VideoSource = 10030
	VideoME3Preview      VideoSource = 10031
	VideoME4Program      VideoSource = 10040
	VideoME4Preview      VideoSource = 10041
)

const (
	maxInputs = 40
	maxAuxes  = 24
	maxMEs    = 4
	maxKeyers = 16
)

// VideoInput returns the physical input n (1-based).
func VideoInput(n int) VideoSource {
	return VideoSource(n)
}

// SuperSourceIndex returns the compositor index for a super source
// pseudo-source, and false for every other source.
func (v VideoSource) SuperSourceIndex() (int, bool) {
	switch v {
	case VideoSuperSource:
		return 0, true
	case VideoSuperSource2:
		return 1, true
	}
	return 0, false
}

// Valid reports whether v is a source code the protocol defines.
func (v VideoSource) Valid() bool {
	_, ok := v.name()
	return ok
}

func (v VideoSource) String() string {
	if n, ok := v.name(); ok {
		return n
	}
	return fmt.Sprintf("VideoSource(%d)", uint16(v))
}

func (v VideoSource) name() (string, bool) {
	n := int(v)
	switch {
	case v == VideoBlack:
		return "BLACK", true
	case n >= 1 && n <= maxInputs:
		return fmt.Sprintf("INPUT_%d", n), true
	case v == VideoColourBars:
		return "COLOUR_BARS", true
	case v == VideoColour1 || v == VideoColour2:
		return fmt.Sprintf("COLOUR_%d", n-2000), true
	case n >= 3010 && n <= 3041 && n%10 <= 1:
		if n%10 == 1 {
			return fmt.Sprintf("MEDIA_PLAYER_%d_KEY", (n-3000)/10), true
		}
		return fmt.Sprintf("MEDIA_PLAYER_%d", (n-3000)/10), true
	case n >= 4010 && n <= 4000+maxKeyers*10 && n%10 == 0:
		return fmt.Sprintf("KEY_%d_MASK", (n-4000)/10), true
	case n >= 5010 && n <= 5040 && n%10 == 0:
		return fmt.Sprintf("DSK_%d_MASK", (n-5000)/10), true
	case v == VideoSuperSource:
		return "SUPER_SOURCE", true
	case v == VideoSuperSource2:
		return "SUPER_SOURCE_2", true
	case n >= 7001 && n <= 7004:
		return fmt.Sprintf("CLEAN_FEED_%d", n-7000), true
	case n >= 8001 && n <= 8000+maxAuxes:
		return fmt.Sprintf("AUX_%d", n-8000), true
	case n >= 10010 && n <= 10000+maxMEs*10+1 && n%10 <= 1:
		if n%10 == 1 {
			return fmt.Sprintf("ME_%d_PREVIEW", (n-10000)/10), true
		}
		return fmt.Sprintf("ME_%d_PROGRAM", (n-10000)/10), true
	}
	return "", false
}

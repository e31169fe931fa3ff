package protocol

import "testing"

func TestVideoSource_Valid(t *testing.T) {
	valid := []VideoSource{
		VideoBlack, VideoInput1, VideoInput20, VideoInput(40), VideoColourBars, VideoColour2,
		VideoMediaPlayer1Key, VideoMediaPlayer4, VideoKey4Mask, 4160, VideoDSK2Mask,
		VideoSuperSource, VideoSuperSource2, VideoCleanFeed1, VideoAux6, 8024,
		VideoME1Program, VideoME2Preview, VideoME4Preview,
	}
	for _, v := range valid {
		if !v.Valid() {
			t.Errorf("%d should be valid", uint16(v))
		}
	}

	invalid := []VideoSource{41, 999, 2003, 3012, 4015, 6002, 7005, 8025, 10012, 10050}
	for _, v := range invalid {
		if v.Valid() {
			t.Errorf("%d should be invalid", uint16(v))
		}
	}
}

func TestVideoSource_String(t *testing.T) {
	cases := map[VideoSource]string{
		VideoInput3:          "INPUT_3",
		VideoMediaPlayer2Key: "MEDIA_PLAYER_2_KEY",
		VideoSuperSource:     "SUPER_SOURCE",
		VideoME2Program:      "ME_2_PROGRAM",
		VideoAux1:            "AUX_1",
		12345:                "VideoSource(12345)",
	}
	for v, want := range cases {
		if got := v.String(); got != want {
			t.Errorf("String(%d) = %q, want %q", uint16(v), got, want)
		}
	}
}

func TestVideoSource_SuperSourceIndex(t *testing.T) {
	if i, ok := VideoSuperSource2.SuperSourceIndex(); !ok || i != 1 {
		t.Errorf("SuperSourceIndex = %d, %v", i, ok)
	}
	if _, ok := VideoInput1.SuperSourceIndex(); ok {
		t.Error("input 1 is not a super source")
	}
}

func TestFlagEnums(t *testing.T) {
	if got := (PortSDI | PortHDMI).String(); got != "SDI|HDMI" {
		t.Errorf("ports = %q", got)
	}
	if ExternalPortType(1 << 14).Valid() {
		t.Error("unknown port bit accepted")
	}
	if !(AvailableME1 | AvailableME2).Valid() {
		t.Error("ME1|ME2 rejected")
	}
	set := VideoModeSet(1<<VideoMode1080i50 | 1<<VideoMode1080p25)
	modes := set.Modes()
	if len(modes) != 2 || modes[0] != VideoMode1080i50 || modes[1] != VideoMode1080p25 {
		t.Errorf("modes = %v", modes)
	}
	if !set.Contains(VideoMode1080p25) || set.Contains(VideoMode720p50) {
		t.Error("Contains mismatch")
	}
}

func TestVersion_Compare(t *testing.T) {
	v, err := ParseVersion("2.30")
	if err != nil {
		t.Fatalf("ParseVersion() error = %v", err)
	}
	if v != Version811 {
		t.Errorf("ParseVersion = %v", v)
	}
	if !Version8.Less(Version811) || !Version7.Less(Version8) {
		t.Error("ordering wrong")
	}

	decimal := []struct {
		a, b Version
		want int
	}{
		{Version{2, 5}, Version811, 1},
		{Version{2, 8}, Version8, 1},
		{Version{2, 3}, Version811, 0},
		{Version{2, 27}, Version{2, 3}, -1},
		{Version{2, 0}, Version{2, 1}, -1},
		{Version{1, 99}, Version7, -1},
		{Version{2, 65535}, Version{2, 7}, -1},
	}
	for _, tt := range decimal {
		if got := tt.a.Compare(tt.b); got != tt.want {
			t.Errorf("%s.Compare(%s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
	if Version8.String() != "2.28" {
		t.Errorf("String() = %q", Version8.String())
	}
	if _, err := ParseVersion("2"); err == nil {
		t.Error("expected error for missing minor")
	}
}

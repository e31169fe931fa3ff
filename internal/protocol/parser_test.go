package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestPacketReader_Fields(t *testing.T) {
	b := NewPacketBuilder()
	b.WriteUint8(7).WriteBool(true).WriteUint16(0xBEEF).WriteInt16(-2).
		WriteUint32(0xDEADBEEF).WritePadding(2).WriteFixedString("Cam", 6).
		WriteNullString("clip.mov").WriteVideoSource(VideoSuperSource)

	r := NewPacketReader(b.Build())
	if v := r.Uint8(); v != 7 {
		t.Errorf("Uint8 = %d", v)
	}
	if !r.Bool() {
		t.Error("Bool = false")
	}
	if v := r.Uint16(); v != 0xBEEF {
		t.Errorf("Uint16 = %x", v)
	}
	if v := r.Int16(); v != -2 {
		t.Errorf("Int16 = %d", v)
	}
	if v := r.Uint32(); v != 0xDEADBEEF {
		t.Errorf("Uint32 = %x", v)
	}
	r.Skip(2)
	if v := r.FixedString(6); v != "Cam" {
		t.Errorf("FixedString = %q", v)
	}
	if v := r.NullString(); v != "clip.mov" {
		t.Errorf("NullString = %q", v)
	}
	if v := r.VideoSource(); v != VideoSuperSource {
		t.Errorf("VideoSource = %s", v)
	}
	if err := r.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if r.Remaining() != 0 {
		t.Errorf("Remaining = %d", r.Remaining())
	}
}

func TestPacketReader_ShortBufferIsSticky(t *testing.T) {
	r := NewPacketReader([]byte{1})
	r.Uint16()
	r.Uint8()
	if !errors.Is(r.Err(), ErrShortBuffer) {
		t.Errorf("Err() = %v, want ErrShortBuffer", r.Err())
	}
}

func TestPacketReader_InvalidText(t *testing.T) {
	r := NewPacketReader([]byte{'a', 0xff, 0xfe, 0})
	r.FixedString(4)
	if !errors.Is(r.Err(), ErrInvalidText) {
		t.Errorf("Err() = %v, want ErrInvalidText", r.Err())
	}
}

func TestWriteFixedString_TruncatesAtRuneBoundary(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"aéé", 4, "aé"},
		{"éé", 3, "é"},
		{"日本", 2, ""},
		{"abcd", 4, "abcd"},
		{"abcdef", 4, "abcd"},
	}
	for _, tt := range tests {
		body := NewPacketBuilder().WriteFixedString(tt.in, tt.n).Build()
		if len(body) != tt.n {
			t.Errorf("%q: field is %d bytes, want %d", tt.in, len(body), tt.n)
		}
		r := NewPacketReader(body)
		if got := r.FixedString(tt.n); got != tt.want || r.Err() != nil {
			t.Errorf("%q in %d bytes: got %q, err %v, want %q", tt.in, tt.n, got, r.Err(), tt.want)
		}
	}
}

func TestPacketReader_BytesZero(t *testing.T) {
	r := NewPacketReader([]byte{1, 2})
	if b := r.Bytes(0); b != nil {
		t.Errorf("Bytes(0) = %v, want nil", b)
	}
	r.Skip(2)
	if b := r.Rest(); b != nil || r.Err() != nil {
		t.Errorf("Rest() at end = %v, err %v", b, r.Err())
	}
}

func TestPacketReader_EnumFailsClosed(t *testing.T) {
	r := NewPacketReader([]byte{0x00, 0x63})
	r.VideoSource()
	if !errors.Is(r.Err(), ErrInvalidEnum) {
		t.Errorf("VideoSource(99) Err() = %v, want ErrInvalidEnum", r.Err())
	}

	r = NewPacketReader([]byte{9})
	Enum8[TransitionStyle](r)
	if !errors.Is(r.Err(), ErrInvalidEnum) {
		t.Errorf("TransitionStyle(9) Err() = %v, want ErrInvalidEnum", r.Err())
	}

	r = NewPacketReader([]byte{0x04, 0x00})
	if v := Enum16[AudioSource](r); v != 1024 || !errors.Is(r.Err(), ErrInvalidEnum) {
		t.Errorf("AudioSource(1024) = %d, Err() = %v", v, r.Err())
	}
}

func TestSplitFrames(t *testing.T) {
	var payload []byte
	payload = append(payload, BuildFrame("PrgI", []byte{0, 0, 0, 1})...)
	payload = append(payload, BuildFrame("\x00\x00\x00\x00", nil)...)
	payload = append(payload, BuildFrame("InCm", []byte{1, 0, 0, 0})...)

	frames, err := SplitFrames(payload)
	if err != nil {
		t.Fatalf("SplitFrames() error = %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}
	if frames[0].Tag != "PrgI" || !bytes.Equal(frames[0].Body, []byte{0, 0, 0, 1}) {
		t.Errorf("frame 0 = %+v", frames[0])
	}
	if !frames[1].IsPadding() {
		t.Errorf("frame 1 should be padding")
	}
	if frames[2].Tag != "InCm" {
		t.Errorf("frame 2 tag = %q", frames[2].Tag)
	}
}

func TestSplitFrames_Truncated(t *testing.T) {
	payload := BuildFrame("PrgI", []byte{0, 0, 0, 1})
	last := BuildFrame("PrvI", []byte{0, 0, 0, 2, 0, 0, 0, 0})
	payload = append(payload, last[:10]...)

	frames, err := SplitFrames(payload)
	if !errors.Is(err, ErrShortBuffer) {
		t.Errorf("error = %v, want ErrShortBuffer", err)
	}
	if len(frames) != 1 || frames[0].Tag != "PrgI" {
		t.Errorf("frames = %+v", frames)
	}
}

func TestBuildFrame_LengthCoversHeader(t *testing.T) {
	f := BuildFrame("DCut", []byte{0, 0, 0, 0})
	if f[0] != 0 || f[1] != 12 {
		t.Errorf("length = %d, want 12", int(f[0])<<8|int(f[1]))
	}
	if string(f[4:8]) != "DCut" {
		t.Errorf("tag = %q", f[4:8])
	}
}

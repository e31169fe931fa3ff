package command

import (
	"slices"
	"testing"

	"github.com/avista-project/avista/internal/protocol"
	"github.com/avista-project/avista/internal/state"
)

func apply(s *state.State, cmds ...state.Applier) *state.State {
	for _, c := range cmds {
		s = c.ApplyToState(s)
	}
	return s
}

func TestTopology_ResetsUnits(t *testing.T) {
	s := apply(state.New(),
		&ProgramInput{Index: 3, Source: protocol.VideoInput1},
		&TopologyV8{Topology{MEs: 2, DSKs: 2, Auxes: 3, SuperSources: 1, TalkbackChannels: 2}},
	)

	if len(s.MEs) != 2 || s.MEs[3] != nil {
		t.Errorf("mes = %v", s.MEs)
	}
	if len(s.DSKs) != 2 || len(s.Auxes) != 3 || len(s.SuperSource) != 1 {
		t.Errorf("dsks=%d auxes=%d super_source=%d", len(s.DSKs), len(s.Auxes), len(s.SuperSource))
	}
	if s.Config.Topology.TalkbackChannels != 2 {
		t.Errorf("topology = %+v", s.Config.Topology)
	}
}

func TestMixEffectConfig_CreatesKeyers(t *testing.T) {
	s := apply(state.New(), &MixEffectConfig{ID: 1, Keyers: 4})
	if len(s.MEs[1].Keyers) != 4 {
		t.Errorf("keyers = %d, want 4", len(s.MEs[1].Keyers))
	}
}

func TestMultiviewInput_RepeatIsNoop(t *testing.T) {
	cmd := &MultiviewInput{Index: 0, WindowIndex: 2, Source: protocol.VideoInput7}
	s := apply(state.New(), cmd)
	if got := s.Config.Multiviewers[0].Windows[2].Source; got != protocol.VideoInput7 {
		t.Fatalf("source = %s", got)
	}

	again := cmd.ApplyToState(s)
	if again != s {
		t.Error("repeated MvIn produced a new state")
	}

	changed := (&MultiviewInput{Index: 0, WindowIndex: 2, Source: protocol.VideoInput8}).ApplyToState(s)
	if changed == s {
		t.Error("new source did not produce a new state")
	}
	if s.Config.Multiviewers[0].Windows[2].Source != protocol.VideoInput7 {
		t.Error("earlier snapshot was modified")
	}
}

func TestMultiviewOpacity_Apply(t *testing.T) {
	cmd, err := decoder[MultiviewOpacity]()([]byte("\x01dPr"))
	if err != nil {
		t.Fatal(err)
	}
	s := cmd.(state.Applier).ApplyToState(state.New())
	if s.Config.Multiviewers[1].Opacity != 100 {
		t.Errorf("opacity = %d", s.Config.Multiviewers[1].Opacity)
	}
}

func TestTransitionProperties_KeepsPosition(t *testing.T) {
	s := apply(state.New(),
		&TransitionPosition{Index: 0, InTransition: true, FramesRemaining: 5, Position: 4000},
		&TransitionMix{Index: 0, Rate: 25},
		&TransitionProperties{Index: 0, Style: protocol.TransitionDip, Next: protocol.TransitionSelection{Background: true}},
	)
	tr := s.MEs[0].Transition
	if tr.Style != protocol.TransitionDip || !tr.Next.Background {
		t.Errorf("transition = %+v", tr)
	}
	if tr.Position.Position != 4000 || tr.Properties.Mix == nil || tr.Properties.Mix.Rate != 25 {
		t.Errorf("earlier fields lost: %+v", tr)
	}
}

func TestProgramInput_RecalculatesTally(t *testing.T) {
	s := apply(state.New(),
		&InputProperties{ID: protocol.VideoInput1, Name: "Camera 1", ShortName: "CAM1"},
		&InputProperties{ID: protocol.VideoInput2, Name: "Camera 2", ShortName: "CAM2"},
		&PreviewInput{Index: 0, Source: protocol.VideoInput2},
		&ProgramInput{Index: 0, Source: protocol.VideoInput1},
	)

	me := s.Tally.ByME[0]
	if !me[protocol.VideoInput1].Program || me[protocol.VideoInput1].Preview {
		t.Errorf("input 1 = %+v", me[protocol.VideoInput1])
	}
	if !me[protocol.VideoInput2].Preview || me[protocol.VideoInput2].Program {
		t.Errorf("input 2 = %+v", me[protocol.VideoInput2])
	}
}

func TestTallyByIndex_RecalculatesTally(t *testing.T) {
	s := apply(state.New(),
		&ProgramInput{Index: 0, Source: protocol.VideoInput1},
		&InputProperties{ID: protocol.VideoInput2, Name: "Camera 2", ShortName: "CAM2"},
	)
	if _, ok := s.Tally.ByME[0][protocol.VideoInput2]; ok {
		t.Fatal("InPr recalculated the tally")
	}

	s = apply(s, &TallyByIndex{Sources: []state.TallyFlags{{Program: true}, {}}})
	if _, ok := s.Tally.ByME[0][protocol.VideoInput2]; !ok {
		t.Errorf("input 2 missing from ME 0 tally after TlIn: %+v", s.Tally.ByME[0])
	}
	if !s.Tally.ByME[0][protocol.VideoInput1].Program {
		t.Errorf("input 1 = %+v", s.Tally.ByME[0][protocol.VideoInput1])
	}
	if !s.Tally.ByIndex[0].Program || s.Tally.ByIndex[1].Program {
		t.Errorf("by index = %+v", s.Tally.ByIndex)
	}
}

func TestDSKState_OnAirTally(t *testing.T) {
	s := apply(state.New(),
		&DSKSources{Index: 0, FillSource: protocol.VideoMediaPlayer1, KeySource: protocol.VideoMediaPlayer1Key},
		&ProgramInput{Index: 0, Source: protocol.VideoInput1},
		&DSKState{Index: 0, OnAir: true},
	)
	if !s.Tally.ByME[0][protocol.VideoMediaPlayer1].Program || !s.Tally.ByME[0][protocol.VideoMediaPlayer1Key].Program {
		t.Errorf("dsk sources not on program: %+v", s.Tally.ByME[0])
	}
}

func TestApply_ChangedKeys(t *testing.T) {
	r := state.NewReducer()
	s := state.New()

	s, changed := r.Apply(s, &AuxSource{Index: 0, Source: protocol.VideoInput1})
	if !slices.Equal(changed, []state.Key{state.KeyAuxes}) {
		t.Errorf("AuxS changed %v", changed)
	}

	s, changed = r.Apply(s, &ProgramInput{Index: 0, Source: protocol.VideoInput1})
	if !slices.Contains(changed, state.KeyMEs) || !slices.Contains(changed, state.KeyTally) {
		t.Errorf("PrgI changed %v", changed)
	}

	next, changed := r.Apply(s, &MultiviewerConfigV8{Count: 1})
	if next != s || len(changed) != 0 {
		t.Errorf("_MvC changed %v", changed)
	}
}

func TestAudio_Merges(t *testing.T) {
	s := apply(state.New(),
		&AudioMixerInput{Source: protocol.AudioInput(1), Type: protocol.AudioTypeExternalVideo, Volume: 100},
		&AudioMixerInput{Source: protocol.AudioXLR, Type: protocol.AudioTypeExternalAudio, PlugType: protocol.AudioPlugXLR},
		&AudioMixerMaster{Volume: 500},
		&AudioMixerTally{Sources: []AudioTally{{Source: protocol.AudioXLR, IsMixedIn: true}}},
	)
	if len(s.Audio.Inputs) != 2 || s.Audio.Master.Volume != 500 || !s.Audio.Tally[protocol.AudioXLR] {
		t.Errorf("audio = %+v", s.Audio)
	}
}

func TestMediaFrameDescription_StillsOnly(t *testing.T) {
	s := state.New()
	clip := &MediaFrameDescription{FileType: protocol.MediaClip1, Index: 0, Used: true}
	if clip.ApplyToState(s) != s {
		t.Error("clip frame changed the state")
	}

	still := &MediaFrameDescription{FileType: protocol.MediaStill, Index: 2, Used: true, Hash: [16]byte{0xab}, Filename: "bug.png"}
	s = still.ApplyToState(s)
	got := s.MediaPool.Stills[2]
	if got == nil || got.Filename != "bug.png" || got.Hash[:2] != "ab" {
		t.Errorf("still = %+v", got)
	}
}

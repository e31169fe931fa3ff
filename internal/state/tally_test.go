package state

import (
	"testing"

	"github.com/avista-project/avista/internal/protocol"
)

func withSources(ids ...protocol.VideoSource) *State {
	s := New()
	for _, id := range ids {
		s.EditSource(id)
	}
	return s
}

func assertTally(t *testing.T, flags map[protocol.VideoSource]TallyFlags, src protocol.VideoSource, program, preview bool) {
	t.Helper()
	f, ok := flags[src]
	if !ok {
		t.Errorf("%s has no tally entry", src)
		return
	}
	if f.Program != program || f.Preview != preview {
		t.Errorf("%s = %+v, want program=%v preview=%v", src, f, program, preview)
	}
}

func TestRecalculateTally_ProgramPreview(t *testing.T) {
	s := withSources(protocol.VideoBlack, protocol.VideoInput1, protocol.VideoInput2, protocol.VideoInput3, protocol.VideoColourBars)
	me := s.EditME(0)
	me.Program = protocol.VideoInput1
	me.Preview = protocol.VideoInput2

	s = RecalculateTally(s)
	flags := s.Tally.ByME[0]

	assertTally(t, flags, protocol.VideoInput1, true, false)
	assertTally(t, flags, protocol.VideoInput2, false, true)
	assertTally(t, flags, protocol.VideoBlack, false, false)
	assertTally(t, flags, protocol.VideoInput3, false, false)
	assertTally(t, flags, protocol.VideoColourBars, false, false)
	if len(flags) != 5 {
		t.Errorf("tally has %d entries, want 5", len(flags))
	}
}

func TestRecalculateTally_SuperSourceExpansion(t *testing.T) {
	s := withSources(protocol.VideoInput1, protocol.VideoInput3, protocol.VideoInput4,
		protocol.VideoInput5, protocol.VideoInput6, protocol.VideoInput7, protocol.VideoSuperSource)
	me := s.EditME(0)
	me.Program = protocol.VideoSuperSource
	me.Preview = protocol.VideoInput1

	ss := s.EditSuperSource(0)
	ss.FillSource = protocol.VideoInput3
	ss.KeySource = protocol.VideoInput7
	ss.SetBox(0, Box{Enabled: true, Source: protocol.VideoInput4})
	ss.SetBox(1, Box{Enabled: true, Source: protocol.VideoInput5})
	ss.SetBox(2, Box{Enabled: false, Source: protocol.VideoInput6})

	s = RecalculateTally(s)
	flags := s.Tally.ByME[0]

	assertTally(t, flags, protocol.VideoSuperSource, true, false)
	assertTally(t, flags, protocol.VideoInput3, true, false)
	assertTally(t, flags, protocol.VideoInput4, true, false)
	assertTally(t, flags, protocol.VideoInput5, true, false)
	assertTally(t, flags, protocol.VideoInput6, false, false)
	assertTally(t, flags, protocol.VideoInput7, false, false)
	assertTally(t, flags, protocol.VideoInput1, false, true)
}

func TestRecalculateTally_ForegroundAddsKey(t *testing.T) {
	s := withSources(protocol.VideoInput3, protocol.VideoInput7)
	s.EditME(0).Preview = protocol.VideoSuperSource
	ss := s.EditSuperSource(0)
	ss.FillSource = protocol.VideoInput3
	ss.KeySource = protocol.VideoInput7
	ss.Foreground = true

	flags := RecalculateTally(s).Tally.ByME[0]
	assertTally(t, flags, protocol.VideoInput3, false, true)
	assertTally(t, flags, protocol.VideoInput7, false, true)
}

func TestRecalculateTally_KeyersAndTransition(t *testing.T) {
	s := withSources(protocol.VideoInput1, protocol.VideoInput2, protocol.VideoInput3,
		protocol.VideoInput4, protocol.VideoInput5, protocol.VideoInput6)
	me := s.EditME(0)
	me.Program = protocol.VideoInput1
	me.Preview = protocol.VideoInput2

	k0 := me.EditKeyer(0)
	k0.OnAir = true
	k0.FillSource = protocol.VideoInput3
	k0.KeySource = protocol.VideoInput4

	k1 := me.EditKeyer(1)
	k1.FillSource = protocol.VideoInput5
	k1.KeySource = protocol.VideoInput6

	flags := RecalculateTally(s.Clone()).Tally.ByME[0]
	assertTally(t, flags, protocol.VideoInput3, true, false)
	assertTally(t, flags, protocol.VideoInput4, true, false)
	assertTally(t, flags, protocol.VideoInput5, false, false)

	tr := me.EditTransition()
	tr.Next = protocol.TransitionSelection{Background: true, Key2: true}
	tr.Position = TransitionPosition{InTransition: true, Position: 5000}

	flags = RecalculateTally(s).Tally.ByME[0]
	assertTally(t, flags, protocol.VideoInput2, true, true)
	assertTally(t, flags, protocol.VideoInput5, true, false)
	assertTally(t, flags, protocol.VideoInput6, true, false)
}

func TestRecalculateTally_DSKOnFirstMEOnly(t *testing.T) {
	s := withSources(protocol.VideoInput1, protocol.VideoInput2, protocol.VideoInput8, protocol.VideoInput9)
	s.EditME(0).Program = protocol.VideoInput1
	s.EditME(1).Program = protocol.VideoInput2

	d := s.EditDSK(0)
	d.FillSource = protocol.VideoInput8
	d.KeySource = protocol.VideoInput9
	d.InTransition = true

	s = RecalculateTally(s)
	assertTally(t, s.Tally.ByME[0], protocol.VideoInput8, true, false)
	assertTally(t, s.Tally.ByME[0], protocol.VideoInput9, true, false)
	assertTally(t, s.Tally.ByME[1], protocol.VideoInput8, false, false)
}

func TestRecalculateTally_NestedSuperSourceTerminates(t *testing.T) {
	s := withSources(protocol.VideoInput1)
	s.EditME(0).Program = protocol.VideoSuperSource
	ss := s.EditSuperSource(0)
	ss.FillSource = protocol.VideoInput1
	ss.SetBox(0, Box{Enabled: true, Source: protocol.VideoSuperSource})

	flags := RecalculateTally(s).Tally.ByME[0]
	assertTally(t, flags, protocol.VideoInput1, true, false)
}

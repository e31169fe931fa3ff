package state

import "github.com/avista-project/avista/internal/protocol"

// RecalculateTally recomputes the per-ME tally from the rest of the tree
// and stores it in Tally.ByME. s must be a root obtained from Clone.
//
// For each ME a source is on preview when it is the preview source. It is
// on program when it is the program source, the fill or key of an on-air
// keyer, or, while a transition runs, the preview source (background tied)
// or the fill or key of a tied keyer. On-air or transitioning downstream
// keyers feed ME 0. Super source pseudo-sources expand to their fill, their
// key when in foreground mode, and the source of every enabled box.
func RecalculateTally(s *State) *State {
	byME := make(map[int]map[protocol.VideoSource]TallyFlags, len(s.MEs))
	for idx, me := range s.MEs {
		byME[idx] = s.tallyForME(idx, me)
	}

	t := s.EditTally()
	t.ByME = byME
	return s
}

type tallyBuilder struct {
	state    *State
	flags    map[protocol.VideoSource]TallyFlags
	expanded map[int]bool
}

func (s *State) tallyForME(idx int, me *ME) map[protocol.VideoSource]TallyFlags {
	b := &tallyBuilder{
		state:    s,
		flags:    make(map[protocol.VideoSource]TallyFlags, len(s.Sources)),
		expanded: make(map[int]bool),
	}
	for id := range s.Sources {
		b.flags[id] = TallyFlags{}
	}
	if me == nil {
		return b.flags
	}

	b.mark(me.Preview, false)
	b.mark(me.Program, true)

	for _, k := range me.Keyers {
		if k != nil && k.OnAir {
			b.mark(k.FillSource, true)
			b.mark(k.KeySource, true)
		}
	}

	if tr := me.Transition; tr != nil && tr.Position.InTransition {
		if tr.Next.Background {
			b.mark(me.Preview, true)
		}
		for i, k := range me.Keyers {
			if k != nil && tr.Next.Key(i) {
				b.mark(k.FillSource, true)
				b.mark(k.KeySource, true)
			}
		}
	}

	if idx == 0 {
		for _, d := range s.DSKs {
			if d != nil && (d.OnAir || d.InTransition) {
				b.mark(d.FillSource, true)
				b.mark(d.KeySource, true)
			}
		}
	}
	return b.flags
}

func (b *tallyBuilder) mark(src protocol.VideoSource, program bool) {
	f := b.flags[src]
	if program {
		f.Program = true
	} else {
		f.Preview = true
	}
	b.flags[src] = f

	id, ok := src.SuperSourceIndex()
	if !ok {
		return
	}
	// Each compositor is expanded once per direction; its boxes may route
	// another super source.
	guard := id*2 + boolIndex(program)
	if b.expanded[guard] {
		return
	}
	b.expanded[guard] = true

	ss := b.state.SuperSource[id]
	if ss == nil {
		return
	}
	b.mark(ss.FillSource, program)
	if ss.Foreground {
		b.mark(ss.KeySource, program)
	}
	for _, box := range ss.Boxes {
		if box != nil && box.Enabled {
			b.mark(box.Source, program)
		}
	}
}

func boolIndex(v bool) int {
	if v {
		return 1
	}
	return 0
}

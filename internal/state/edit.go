package state

import "github.com/avista-project/avista/internal/protocol"

// The Edit methods below copy the path from a root to the node being
// changed and return the fresh node. They must only be called on a root
// obtained from Clone, never on a published snapshot.

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return new(T)
	}
	c := *p
	return &c
}

// EditME returns a writable copy of ME idx, creating it if needed.
func (s *State) EditME(idx int) *ME {
	s.MEs = cloneMap(s.MEs)
	me := clonePtr(s.MEs[idx])
	me.Index = idx
	s.MEs[idx] = me
	return me
}

// EditTransition returns a writable copy of the ME's transition.
func (me *ME) EditTransition() *Transition {
	me.Transition = clonePtr(me.Transition)
	return me.Transition
}

// EditKeyer returns a writable copy of upstream keyer idx.
func (me *ME) EditKeyer(idx int) *Keyer {
	me.Keyers = cloneMap(me.Keyers)
	k := clonePtr(me.Keyers[idx])
	me.Keyers[idx] = k
	return k
}

// EditFadeToBlack returns a writable copy of the ME's fade to black.
func (me *ME) EditFadeToBlack() *FadeToBlack {
	me.FadeToBlack = clonePtr(me.FadeToBlack)
	return me.FadeToBlack
}

// EditDSK returns a writable copy of downstream keyer idx.
func (s *State) EditDSK(idx int) *DSK {
	s.DSKs = cloneMap(s.DSKs)
	d := clonePtr(s.DSKs[idx])
	s.DSKs[idx] = d
	return d
}

// EditAux returns a writable copy of aux output idx.
func (s *State) EditAux(idx int) *Aux {
	s.Auxes = cloneMap(s.Auxes)
	a := clonePtr(s.Auxes[idx])
	s.Auxes[idx] = a
	return a
}

// EditSuperSource returns a writable copy of super source id.
func (s *State) EditSuperSource(id int) *SuperSource {
	s.SuperSource = cloneMap(s.SuperSource)
	ss := clonePtr(s.SuperSource[id])
	s.SuperSource[id] = ss
	return ss
}

// SetBox replaces one box of the super source.
func (ss *SuperSource) SetBox(idx int, box Box) {
	ss.Boxes = cloneMap(ss.Boxes)
	ss.Boxes[idx] = &box
}

// EditSource returns a writable copy of the source entry.
func (s *State) EditSource(id protocol.VideoSource) *Source {
	s.Sources = cloneMap(s.Sources)
	src := clonePtr(s.Sources[id])
	src.ID = id
	s.Sources[id] = src
	return src
}

// EditAudio returns a writable copy of the audio mixer.
func (s *State) EditAudio() *Audio {
	s.Audio = clonePtr(s.Audio)
	return s.Audio
}

// SetInput replaces one audio mixer input.
func (a *Audio) SetInput(src protocol.AudioSource, in AudioInput) {
	a.Inputs = cloneMap(a.Inputs)
	a.Inputs[src] = &in
}

// SetMacro replaces one macro slot.
func (s *State) SetMacro(idx int, m Macro) {
	s.Macros = cloneMap(s.Macros)
	s.Macros[idx] = &m
}

// EditMediaPool returns a writable copy of the media pool.
func (s *State) EditMediaPool() *MediaPool {
	s.MediaPool = clonePtr(s.MediaPool)
	return s.MediaPool
}

// SetStill replaces one still slot.
func (p *MediaPool) SetStill(idx int, st Still) {
	p.Stills = cloneMap(p.Stills)
	p.Stills[idx] = &st
}

// SetClip replaces one clip slot.
func (p *MediaPool) SetClip(idx int, c Clip) {
	p.Clips = cloneMap(p.Clips)
	p.Clips[idx] = &c
}

// EditMediaPlayer returns a writable copy of media player idx.
func (s *State) EditMediaPlayer(idx int) *MediaPlayer {
	s.MediaPlayer = cloneMap(s.MediaPlayer)
	mp := clonePtr(s.MediaPlayer[idx])
	s.MediaPlayer[idx] = mp
	return mp
}

// EditConfig returns a writable copy of the configuration subtree.
func (s *State) EditConfig() *Config {
	s.Config = clonePtr(s.Config)
	return s.Config
}

// EditMultiviewer returns a writable copy of multiviewer idx.
func (c *Config) EditMultiviewer(idx int) *Multiviewer {
	c.Multiviewers = cloneMap(c.Multiviewers)
	mv := clonePtr(c.Multiviewers[idx])
	c.Multiviewers[idx] = mv
	return mv
}

// EditWindow returns a writable copy of window idx.
func (mv *Multiviewer) EditWindow(idx int) *MultiviewWindow {
	mv.Windows = cloneMap(mv.Windows)
	w := clonePtr(mv.Windows[idx])
	mv.Windows[idx] = w
	return w
}

// EditStatus returns a writable copy of the status subtree.
func (s *State) EditStatus() *Status {
	s.Status = clonePtr(s.Status)
	return s.Status
}

// SetColorGenerator replaces one colour generator.
func (st *Status) SetColorGenerator(idx int, cg ColorGenerator) {
	st.ColorGenerators = cloneMap(st.ColorGenerators)
	st.ColorGenerators[idx] = &cg
}

// SetTalkbackInput replaces one source entry of a talkback channel.
func (s *State) SetTalkbackInput(channel int, src protocol.VideoSource, in TalkbackInput) {
	s.Talkback = cloneMap(s.Talkback)
	ch := cloneMap(s.Talkback[channel])
	ch[src] = &in
	s.Talkback[channel] = ch
}

// EditTally returns a writable copy of the tally subtree.
func (s *State) EditTally() *Tally {
	s.Tally = clonePtr(s.Tally)
	return s.Tally
}

// Package state holds the switcher's device state as an immutable tree.
// Every command application produces a new root that shares all untouched
// subtrees with its predecessor, so published snapshots never change.
package state

import (
	"reflect"

	"github.com/avista-project/avista/internal/protocol"
)

// Key names a top-level subtree of the state.
type Key string

// Top-level subtrees.
const (
	KeyMEs         Key = "mes"
	KeyDSKs        Key = "dsks"
	KeyAuxes       Key = "auxes"
	KeySuperSource Key = "super_source"
	KeySources     Key = "sources"
	KeyAudio       Key = "audio"
	KeyMacros      Key = "macros"
	KeyMediaPool   Key = "media_pool"
	KeyMediaPlayer Key = "media_player"
	KeyConfig      Key = "config"
	KeyState       Key = "state"
	KeyTalkback    Key = "talkback"
	KeyTally       Key = "tally"
)

// AllKeys lists every top-level key in broadcast order.
var AllKeys = []Key{
	KeyMEs, KeyDSKs, KeyAuxes, KeySuperSource, KeySources, KeyAudio, KeyMacros,
	KeyMediaPool, KeyMediaPlayer, KeyConfig, KeyState, KeyTalkback, KeyTally,
}

// State is one snapshot of the switcher. Treat a published State as
// read-only; derive changes with Clone and the Edit methods.
type State struct {
	MEs         map[int]*ME                      `json:"mes,omitempty"`
	DSKs        map[int]*DSK                     `json:"dsks,omitempty"`
	Auxes       map[int]*Aux                     `json:"auxes,omitempty"`
	SuperSource map[int]*SuperSource             `json:"super_source,omitempty"`
	Sources     map[protocol.VideoSource]*Source `json:"sources,omitempty"`
	Audio       *Audio                           `json:"audio,omitempty"`
	Macros      map[int]*Macro                   `json:"macros,omitempty"`
	MediaPool   *MediaPool                       `json:"media_pool,omitempty"`
	MediaPlayer map[int]*MediaPlayer             `json:"media_player,omitempty"`
	Config      *Config                          `json:"config,omitempty"`
	Status      *Status                          `json:"state,omitempty"`
	Talkback    map[int]TalkbackChannel          `json:"talkback,omitempty"`
	Tally       *Tally                           `json:"tally,omitempty"`
}

// New returns the empty state a connection starts from.
func New() *State {
	return &State{}
}

// Clone returns a new root sharing every subtree with s.
func (s *State) Clone() *State {
	c := *s
	return &c
}

// Get returns the subtree stored under key, or nil if it is absent.
func (s *State) Get(key Key) any {
	v := s.subtree(key)
	if isNil(v) {
		return nil
	}
	return v
}

func (s *State) subtree(key Key) any {
	switch key {
	case KeyMEs:
		return s.MEs
	case KeyDSKs:
		return s.DSKs
	case KeyAuxes:
		return s.Auxes
	case KeySuperSource:
		return s.SuperSource
	case KeySources:
		return s.Sources
	case KeyAudio:
		return s.Audio
	case KeyMacros:
		return s.Macros
	case KeyMediaPool:
		return s.MediaPool
	case KeyMediaPlayer:
		return s.MediaPlayer
	case KeyConfig:
		return s.Config
	case KeyState:
		return s.Status
	case KeyTalkback:
		return s.Talkback
	case KeyTally:
		return s.Tally
	}
	return nil
}

// Diff reports every key present in next whose subtree is absent from prev
// or is a different object. Content is not compared: a subtree that was
// rebuilt with identical values still counts as changed.
func Diff(prev, next *State) []Key {
	var changed []Key
	for _, key := range AllKeys {
		n := next.subtree(key)
		if isNil(n) {
			continue
		}
		if prev == nil || identity(prev.subtree(key)) != identity(n) {
			changed = append(changed, key)
		}
	}
	return changed
}

func identity(v any) uintptr {
	if isNil(v) {
		return 0
	}
	return reflect.ValueOf(v).Pointer()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).IsNil()
}

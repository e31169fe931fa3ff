package state

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Applier is implemented by every inbound command. ApplyToState returns a
// new root built from s, or s itself when the command has no state effect.
type Applier interface {
	Tag() string
	ApplyToState(s *State) *State
}

// Inert is implemented by commands that are decoded but deliberately carry
// no state, such as capability reports and media transfer chunks.
type Inert interface {
	Inert()
}

// Reducer folds commands into successive snapshots. It holds no state of
// its own; callers serialize Apply calls.
type Reducer struct {
	logger zerolog.Logger
}

// NewReducer creates a Reducer.
func NewReducer() *Reducer {
	return &Reducer{
		logger: log.With().Str("component", "reducer").Logger(),
	}
}

// Apply folds one command into prev and reports the top-level keys whose
// subtrees were replaced.
func (r *Reducer) Apply(prev *State, cmd Applier) (*State, []Key) {
	if prev == nil {
		prev = New()
	}

	next := cmd.ApplyToState(prev)
	if next == nil || next == prev {
		if _, ok := cmd.(Inert); ok {
			r.logger.Debug().Str("command", cmd.Tag()).Msg("default application, state unchanged")
		} else {
			r.logger.Warn().Str("command", cmd.Tag()).Msg("command changed no state")
		}
		return prev, nil
	}

	changed := Diff(prev, next)
	if len(changed) == 0 {
		r.logger.Warn().
			Str("command", cmd.Tag()).
			Msg("command produced a new state but changed nothing")
	}
	return next, changed
}

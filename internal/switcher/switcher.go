// Package switcher is the switcher device: it folds decoded commands into
// the state snapshot one at a time, batches the changed keys for
// broadcast, and turns control calls into outbound commands.
package switcher

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/avista-project/avista/internal/command"
	"github.com/avista-project/avista/internal/events"
	"github.com/avista-project/avista/internal/network"
	"github.com/avista-project/avista/internal/protocol"
	"github.com/avista-project/avista/internal/state"
)

// Transport delivers outbound commands. *network.Session satisfies it.
type Transport interface {
	Send(cmd command.Command) error
	Version() protocol.Version
}

// Observer is notified of reducer activity, typically for metrics.
type Observer interface {
	CommandApplied(tag string, changed int)
	StateFlushed(keys int)
}

// Options configures a Switcher.
type Options struct {
	Name          string
	Address       string
	FlushInterval time.Duration
}

// Switcher owns the state of one switcher connection.
type Switcher struct {
	opts      Options
	transport Transport
	bus       *events.EventBus
	reducer   *state.Reducer
	logger    zerolog.Logger
	now       func() time.Time

	mu           sync.Mutex // serializes command application
	snapshot     *state.State
	pending      []state.Key
	connState    network.ConnState
	connectionID string
	applied      uint64
	lastChange   time.Time
	observer     Observer

	flushMu sync.Mutex
}

// New creates a switcher that sends through transport and publishes on bus.
func New(opts Options, transport Transport, bus *events.EventBus) *Switcher {
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = 100 * time.Millisecond
	}
	return &Switcher{
		opts:         opts,
		transport:    transport,
		bus:          bus,
		reducer:      state.NewReducer(),
		snapshot:     state.New(),
		connectionID: uuid.NewString(),
		now:          time.Now,
		logger: log.With().
			Str("component", "switcher").
			Str("switcher", opts.Name).
			Logger(),
	}
}

// SetTransport replaces the transport. It must be called before Run.
func (s *Switcher) SetTransport(t Transport) {
	s.mu.Lock()
	s.transport = t
	s.mu.Unlock()
}

// SetObserver installs an observer for reducer activity.
func (s *Switcher) SetObserver(o Observer) {
	s.mu.Lock()
	s.observer = o
	s.mu.Unlock()
}

// Name returns the configured switcher name.
func (s *Switcher) Name() string {
	return s.opts.Name
}

// State returns the current snapshot. It is never modified afterwards.
func (s *Switcher) State() *state.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Status summarizes the connection.
type Status struct {
	Name         string            `json:"name"`
	Address      string            `json:"address"`
	ConnectionID string            `json:"connection_id"`
	State        network.ConnState `json:"state"`
	Version      protocol.Version  `json:"version"`
	Applied      uint64            `json:"commands_applied"`
	LastChange   time.Time         `json:"last_change"`
}

// Status returns the connection summary.
func (s *Switcher) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Name:         s.opts.Name,
		Address:      s.opts.Address,
		ConnectionID: s.connectionID,
		State:        s.connState,
		Applied:      s.applied,
		LastChange:   s.lastChange,
	}
	if s.transport != nil {
		st.Version = s.transport.Version()
	}
	return st
}

// HandleCommands folds cmds into the snapshot in order. Outbound-only
// records carry no state and are skipped.
func (s *Switcher) HandleCommands(cmds []command.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, cmd := range cmds {
		a, ok := cmd.(state.Applier)
		if !ok {
			s.logger.Debug().Str("command", cmd.Tag()).Msg("received record without state effect")
			continue
		}

		next, changed := s.reducer.Apply(s.snapshot, a)
		s.snapshot = next
		s.applied++
		if s.observer != nil {
			s.observer.CommandApplied(cmd.Tag(), len(changed))
		}
		if len(changed) == 0 {
			continue
		}

		s.lastChange = s.now()
		for _, k := range changed {
			if !slices.Contains(s.pending, k) {
				s.pending = append(s.pending, k)
			}
		}
		s.logger.Trace().
			Str("command", cmd.Tag()).
			Int("changed", len(changed)).
			Msg("applied command")
	}
}

// HandleStateChange tracks transport transitions. A new handshake starts
// from an empty snapshot because the switcher resends its full state.
func (s *Switcher) HandleStateChange(st network.ConnState) {
	s.mu.Lock()
	prev := s.connState
	s.connState = st
	if st == network.StateAwaitingHello && prev != network.StateAwaitingHello {
		s.snapshot = state.New()
		s.pending = nil
		s.connectionID = uuid.NewString()
	}
	payload := events.ConnectionStatePayload{
		ConnectionID: s.connectionID,
		State:        st.String(),
		Previous:     prev.String(),
		Address:      s.opts.Address,
		At:           s.now(),
	}
	s.mu.Unlock()

	if st == prev {
		return
	}
	s.logger.Info().
		Str("state", st.String()).
		Str("previous", prev.String()).
		Msg("connection state changed")

	if s.bus != nil {
		s.bus.Emit(context.Background(), events.Event{
			Type:    events.EventConnectionState,
			Source:  s.opts.Name,
			Payload: payload,
		})
	}
}

// Run flushes pending changes every flush interval until ctx is done.
func (s *Switcher) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Flush(context.Background())
			return
		case <-ticker.C:
			s.Flush(ctx)
		}
	}
}

// Flush publishes one EventStateChanged per pending key, in the order the
// keys first changed, and returns the number of keys published.
func (s *Switcher) Flush(ctx context.Context) int {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	keys := s.pending
	s.pending = nil
	snapshot := s.snapshot
	connID := s.connectionID
	obs := s.observer
	s.mu.Unlock()

	if len(keys) == 0 {
		return 0
	}

	now := s.now()
	for _, key := range keys {
		if s.bus == nil {
			break
		}
		err := s.bus.EmitSync(ctx, events.Event{
			Type:   events.EventStateChanged,
			Source: s.opts.Name,
			Payload: events.StateChangedPayload{
				ConnectionID: connID,
				Key:          string(key),
				Value:        snapshot.Get(key),
				At:           now,
			},
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("key", string(key)).Msg("state change subscriber failed")
		}
	}
	if obs != nil {
		obs.StateFlushed(len(keys))
	}
	return len(keys)
}

// Package network implements the reliable UDP session with a switcher:
// the HELLO handshake, acknowledgements, the liveness watchdog and
// version-gated command sends.
package network

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/avista-project/avista/internal/command"
	"github.com/avista-project/avista/internal/protocol"
)

// ConnState is the handshake state of a Session.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateAwaitingHello
	StateConnected
)

var connStateStrings = map[ConnState]string{
	StateDisconnected:  "disconnected",
	StateAwaitingHello: "awaiting_hello",
	StateConnected:     "connected",
}

func (s ConnState) String() string {
	if str, ok := connStateStrings[s]; ok {
		return str
	}
	return "unknown"
}

// MarshalJSON serializes ConnState as a JSON string (e.g. "connected").
func (s ConnState) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

var (
	// ErrVersionMismatch is returned when a command is not valid for the
	// negotiated protocol version.
	ErrVersionMismatch = errors.New("command not supported by protocol version")

	// ErrNotConnected is returned when sending on a session with no socket.
	ErrNotConnected = errors.New("session is not open")
)

// VersionError describes a send rejected by the version gate.
type VersionError struct {
	Tag        string
	Negotiated protocol.Version
	Min        protocol.Version
	Max        protocol.Version
}

func (e *VersionError) Error() string {
	bounds := fmt.Sprintf(">= %s", e.Min)
	if !e.Max.IsZero() {
		bounds += fmt.Sprintf(", <= %s", e.Max)
	}
	return fmt.Sprintf("%s requires protocol %s, switcher speaks %s", e.Tag, bounds, e.Negotiated)
}

func (e *VersionError) Unwrap() error {
	return ErrVersionMismatch
}

// Handler receives what the session decodes. HandleCommands is called from
// the receive path one datagram at a time, in arrival order.
type Handler interface {
	HandleCommands(cmds []command.Command)
	HandleStateChange(state ConnState)
}

// Observer is notified of transport events, typically for metrics.
type Observer interface {
	PacketReceived(flags protocol.PacketFlag)
	PacketSent(flags protocol.PacketFlag)
	PacketDropped()
	SessionTimedOut()
}

// PacketConn is the datagram socket a Session talks through.
// *net.UDPConn satisfies it.
type PacketConn interface {
	ReadFrom(p []byte) (n int, addr net.Addr, err error)
	WriteTo(p []byte, addr net.Addr) (n int, err error)
	Close() error
}

// Options configures a Session.
type Options struct {
	Address          string // host:port of the switcher
	LocalPort        int    // 0 picks an ephemeral port
	SessionID        uint16
	Timeout          time.Duration
	HelloRetry       time.Duration
	WatchdogInterval time.Duration
}

// DefaultOptions returns the protocol defaults for address.
func DefaultOptions(address string) Options {
	return Options{
		Address:          address,
		SessionID:        protocol.DefaultSessionID,
		Timeout:          10 * time.Second,
		HelloRetry:       10 * time.Second,
		WatchdogInterval: 10 * time.Second,
	}
}

// Session is one logical connection to a switcher.
type Session struct {
	opts    Options
	parser  *command.Parser
	handler Handler
	logger  zerolog.Logger
	seq     protocol.Sequencer
	now     func() time.Time

	mu           sync.Mutex
	conn         PacketConn
	remote       net.Addr
	observer     Observer
	state        ConnState
	sessionID    uint16
	lastReceived time.Time
	helloTimer   *time.Timer
	watchdogStop chan struct{}
	closed       bool
}

// NewSession creates a session that decodes with parser and reports to handler.
func NewSession(opts Options, parser *command.Parser, handler Handler) *Session {
	return &Session{
		opts:    opts,
		parser:  parser,
		handler: handler,
		now:     time.Now,
		logger: log.With().
			Str("component", "session").
			Str("switcher", opts.Address).
			Logger(),
	}
}

// SetObserver installs an observer for transport events.
func (s *Session) SetObserver(o Observer) {
	s.mu.Lock()
	s.observer = o
	s.mu.Unlock()
}

// State returns the current handshake state.
func (s *Session) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SessionID returns the session id currently used on the wire.
func (s *Session) SessionID() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// LastReceived returns the arrival time of the last valid datagram.
func (s *Session) LastReceived() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReceived
}

// Version returns the protocol version announced by the switcher.
func (s *Session) Version() protocol.Version {
	return s.parser.Version()
}

// Open attaches conn and starts the handshake with remote.
func (s *Session) Open(conn PacketConn, remote net.Addr) {
	s.mu.Lock()
	s.conn = conn
	s.remote = remote
	s.closed = false
	s.mu.Unlock()

	s.beginHandshake()
}

// Close stops the timers, closes the socket and reports Disconnected.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.stopTimersLocked()
	s.state = StateDisconnected
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	s.handler.HandleStateChange(StateDisconnected)
	s.logger.Info().Msg("session closed")

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// beginHandshake resets the session and sends the first HELLO.
func (s *Session) beginHandshake() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.stopTimersLocked()
	s.state = StateAwaitingHello
	s.sessionID = s.opts.SessionID
	s.seq.Reset()
	s.parser.Reset()
	s.sendHelloLocked()
	s.mu.Unlock()

	s.logger.Info().Msg("trying to connect to switcher")
	s.handler.HandleStateChange(StateAwaitingHello)
}

// sendHelloLocked writes a HELLO and arms the retry timer.
func (s *Session) sendHelloLocked() {
	if err := s.writeLocked(protocol.NewHelloPacket(s.sessionID)); err != nil {
		s.logger.Warn().Err(err).Msg("failed to send hello")
	}
	if s.helloTimer != nil {
		s.helloTimer.Stop()
	}
	s.helloTimer = time.AfterFunc(s.opts.HelloRetry, s.retryHello)
}

func (s *Session) retryHello() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state == StateConnected {
		return
	}
	s.logger.Debug().Msg("no answer to hello, retrying")
	s.sessionID = s.opts.SessionID
	s.sendHelloLocked()
}

func (s *Session) stopTimersLocked() {
	if s.helloTimer != nil {
		s.helloTimer.Stop()
		s.helloTimer = nil
	}
	if s.watchdogStop != nil {
		close(s.watchdogStop)
		s.watchdogStop = nil
	}
}

func (s *Session) startWatchdogLocked() {
	stop := make(chan struct{})
	s.watchdogStop = stop

	go func() {
		ticker := time.NewTicker(s.opts.WatchdogInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.CheckLiveness()
			}
		}
	}()
}

// CheckLiveness re-handshakes when nothing has been received for longer
// than the timeout. It reports whether a timeout was detected.
func (s *Session) CheckLiveness() bool {
	s.mu.Lock()
	if s.closed || s.state != StateConnected {
		s.mu.Unlock()
		return false
	}
	silent := s.now().Sub(s.lastReceived)
	if silent <= s.opts.Timeout {
		s.mu.Unlock()
		return false
	}
	s.stopTimersLocked()
	s.state = StateDisconnected
	obs := s.observer
	s.mu.Unlock()

	s.logger.Warn().
		Dur("silent", silent).
		Dur("timeout", s.opts.Timeout).
		Msg("switcher stopped responding")
	if obs != nil {
		obs.SessionTimedOut()
	}

	s.handler.HandleStateChange(StateDisconnected)
	s.beginHandshake()
	return true
}

// HandleDatagram processes one datagram from the switcher.
func (s *Session) HandleDatagram(data []byte) {
	pkt, err := protocol.DecodePacket(data)
	if err != nil {
		s.mu.Lock()
		obs := s.observer
		s.mu.Unlock()
		if obs != nil {
			obs.PacketDropped()
		}
		s.logger.Debug().Err(err).Int("bytes", len(data)).Msg("dropped malformed datagram")
		return
	}

	var transition *ConnState

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.lastReceived = s.now()
	if s.observer != nil {
		s.observer.PacketReceived(pkt.Flags)
	}
	s.logger.Trace().Str("packet", pkt.String()).Msg("received packet")

	if pkt.IsHello() {
		s.sessionID = pkt.SessionID
		if s.state == StateConnected {
			s.stopTimersLocked()
			s.state = StateAwaitingHello
			st := s.state
			transition = &st
		}
		if err := s.writeLocked(protocol.NewAckPacket(s.sessionID, pkt.Sequence)); err != nil {
			s.logger.Warn().Err(err).Msg("failed to acknowledge hello")
		}
	}

	if pkt.Flags.Has(protocol.FlagAckRequest) {
		s.sessionID = pkt.SessionID
		if s.state != StateConnected {
			if s.helloTimer != nil {
				s.helloTimer.Stop()
				s.helloTimer = nil
			}
			s.state = StateConnected
			s.startWatchdogLocked()
			st := s.state
			transition = &st
			s.logger.Info().Msg("connection to switcher established")
		}
		if err := s.writeLocked(protocol.NewAckPacket(s.sessionID, pkt.Sequence)); err != nil {
			s.logger.Warn().Err(err).Uint16("sequence", pkt.Sequence).Msg("failed to acknowledge packet")
		}
	}
	s.mu.Unlock()

	if transition != nil {
		s.handler.HandleStateChange(*transition)
	}

	if pkt.IsHello() || len(pkt.Payload) == 0 {
		return
	}
	if cmds := s.parser.ParseCommands(pkt.Payload); len(cmds) > 0 {
		s.handler.HandleCommands(cmds)
	}
}

// Send frames cmd into an acknowledged datagram. Commands outside the
// negotiated version's range fail with a *VersionError and are not sent.
func (s *Session) Send(cmd command.Command) error {
	return s.SendAll(cmd)
}

// SendAll frames every command into one datagram. The whole batch is
// rejected if any command fails the version gate.
func (s *Session) SendAll(cmds ...command.Command) error {
	version := s.parser.Version()
	var payload []byte
	for _, cmd := range cmds {
		if !command.Supports(cmd, version) {
			lo, hi := command.VersionRange(cmd)
			err := &VersionError{Tag: cmd.Tag(), Negotiated: version, Min: lo, Max: hi}
			s.logger.Warn().Err(err).Str("command", cmd.Tag()).Msg("refusing to send command")
			return err
		}
		payload = append(payload, command.Marshal(cmd)...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || s.closed {
		return ErrNotConnected
	}

	pkt := protocol.NewCommandPacket(s.sessionID, s.seq.Next(), payload)
	if err := s.writeLocked(pkt); err != nil {
		return fmt.Errorf("failed to send %d command(s): %w", len(cmds), err)
	}
	return nil
}

// writeLocked encodes and writes pkt. Callers hold s.mu, which also
// serializes sequence assignment.
func (s *Session) writeLocked(pkt *protocol.Packet) error {
	if s.conn == nil {
		return ErrNotConnected
	}
	data, err := pkt.Encode()
	if err != nil {
		return err
	}
	if _, err := s.conn.WriteTo(data, s.remote); err != nil {
		return fmt.Errorf("failed to write datagram: %w", err)
	}
	if s.observer != nil {
		s.observer.PacketSent(pkt.Flags)
	}
	s.logger.Trace().Str("packet", pkt.String()).Msg("sent packet")
	return nil
}

package command

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/avista-project/avista/internal/protocol"
)

// Observer receives parser outcomes, typically for metrics.
type Observer interface {
	CommandDecoded(tag string)
	CommandFailed(tag string)
	CommandUnknown(tag string)
}

// Parser splits datagram payloads into commands and tracks the protocol
// version announced by the switcher.
type Parser struct {
	registry *Registry
	logger   zerolog.Logger

	mu       sync.RWMutex
	version  protocol.Version
	observer Observer
}

// NewParser creates a parser over registry.
func NewParser(registry *Registry) *Parser {
	return &Parser{
		registry: registry,
		logger:   log.With().Str("component", "parser").Logger(),
	}
}

// SetObserver installs an observer for decode outcomes.
func (p *Parser) SetObserver(o Observer) {
	p.mu.Lock()
	p.observer = o
	p.mu.Unlock()
}

// Version returns the negotiated protocol version, zero if none yet.
func (p *Parser) Version() protocol.Version {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.version
}

// SetVersion overrides the negotiated protocol version.
func (p *Parser) SetVersion(v protocol.Version) {
	p.mu.Lock()
	p.version = v
	p.mu.Unlock()
}

// Reset forgets the negotiated version for a new session.
func (p *Parser) Reset() {
	p.SetVersion(protocol.Version{})
}

// ParseCommands decodes every frame in payload. Padding frames are skipped,
// unknown and malformed frames are logged and skipped, and a truncated final
// frame ends parsing without discarding the commands before it.
func (p *Parser) ParseCommands(payload []byte) []Command {
	frames, err := protocol.SplitFrames(payload)
	if err != nil {
		p.logger.Warn().Err(err).Int("frames", len(frames)).Msg("payload ended with an incomplete frame")
	}

	commands := make([]Command, 0, len(frames))
	for _, f := range frames {
		if f.IsPadding() {
			continue
		}
		cmd, err := p.ParseCommand(f.Tag, f.Body)
		if err != nil {
			continue
		}
		commands = append(commands, cmd)

		if v, ok := cmd.(*ProtocolVersion); ok {
			version := protocol.Version{Major: v.Major, Minor: v.Minor}
			p.SetVersion(version)
			p.logger.Info().Str("version", version.String()).Msg("set protocol version")
		}
	}
	return commands
}

// ParseCommand decodes a single frame body. Errors are logged here; callers
// only need to skip the frame.
func (p *Parser) ParseCommand(tag string, body []byte) (Command, error) {
	version := p.Version()

	p.mu.RLock()
	obs := p.observer
	p.mu.RUnlock()

	decode, err := p.registry.Lookup(tag, version)
	if err != nil {
		if errors.Is(err, ErrIgnoredCommand) {
			return nil, err
		}
		if obs != nil {
			obs.CommandUnknown(tag)
		}
		p.logger.Warn().
			Str("command", tag).
			Str("version", version.String()).
			Hex("raw", body).
			Msg("command not recognised")
		return nil, err
	}

	cmd, err := decode(body)
	if err != nil {
		if obs != nil {
			obs.CommandFailed(tag)
		}
		derr := &DecodeError{Tag: tag, Raw: body, Err: err}
		p.logger.Error().
			Str("command", tag).
			Hex("raw", body).
			Err(err).
			Msg("failed to parse command")
		return nil, derr
	}

	if obs != nil {
		obs.CommandDecoded(tag)
	}
	p.logger.Trace().Str("command", tag).Msg("decoded command")
	return cmd, nil
}

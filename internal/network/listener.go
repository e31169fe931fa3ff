package network

import (
	"context"
	"fmt"
	"net"
	"time"
)

// maxDatagram covers the largest size the 11-bit header field allows.
const maxDatagram = 2048

// readErrorBackoff is the pause after a failed read on a socket that is
// still open.
var readErrorBackoff = 100 * time.Millisecond

// Run binds a local UDP socket, handshakes with the switcher and processes
// datagrams until ctx is cancelled. Datagrams from other hosts are ignored.
func (s *Session) Run(ctx context.Context) error {
	remote, err := net.ResolveUDPAddr("udp4", s.opts.Address)
	if err != nil {
		return fmt.Errorf("failed to resolve switcher address %q: %w", s.opts.Address, err)
	}

	lc := ReuseAddrListenConfig()
	pc, err := lc.ListenPacket(ctx, "udp4", fmt.Sprintf(":%d", s.opts.LocalPort))
	if err != nil {
		return fmt.Errorf("failed to bind UDP port %d: %w", s.opts.LocalPort, err)
	}

	s.logger.Info().
		Str("local", pc.LocalAddr().String()).
		Str("remote", remote.String()).
		Msg("UDP session started")

	s.Open(pc, remote)

	go func() {
		<-ctx.Done()
		s.Close()
	}()

	return s.serve(ctx, pc, remote)
}

func (s *Session) serve(ctx context.Context, conn PacketConn, remote net.Addr) error {
	buf := make([]byte, maxDatagram)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				s.logger.Info().Msg("UDP session stopping")
				return nil
			default:
			}
			if s.isClosed() {
				return nil
			}
			s.logger.Error().Err(err).Msg("UDP read error")
			select {
			case <-ctx.Done():
				s.logger.Info().Msg("UDP session stopping")
				return nil
			case <-time.After(readErrorBackoff):
			}
			continue
		}

		if from != nil && from.String() != remote.String() {
			s.logger.Debug().Str("from", from.String()).Msg("ignoring datagram from unknown host")
			continue
		}

		s.HandleDatagram(buf[:n])
	}
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

package protocol

import "sync"

// SequenceSpace is the size of the 15-bit sequence number space.
const SequenceSpace = 1 << 15

// Sequencer hands out outbound sequence numbers. The first number after a
// reset is 1 and the counter wraps to 0 after SequenceSpace-1.
type Sequencer struct {
	mu   sync.Mutex
	last uint16
}

// Next returns the next sequence number.
func (s *Sequencer) Next() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = (s.last + 1) % SequenceSpace
	return s.last
}

// Reset restarts numbering for a new session.
func (s *Sequencer) Reset() {
	s.mu.Lock()
	s.last = 0
	s.mu.Unlock()
}

// Last returns the most recently assigned sequence number.
func (s *Sequencer) Last() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

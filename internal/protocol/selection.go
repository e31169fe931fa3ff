package protocol

// TransitionSelection is the set of layers that take part in the next
// transition. On the wire it is one byte: bit 0 background, bits 1-4 keys 1-4.
type TransitionSelection struct {
	Background bool `json:"background"`
	Key1       bool `json:"key_1"`
	Key2       bool `json:"key_2"`
	Key3       bool `json:"key_3"`
	Key4       bool `json:"key_4"`
}

// SelectionFromByte unpacks a wire selection byte. Bits above key 4 are ignored.
func SelectionFromByte(b uint8) TransitionSelection {
	return TransitionSelection{
		Background: b&0x01 != 0,
		Key1:       b&0x02 != 0,
		Key2:       b&0x04 != 0,
		Key3:       b&0x08 != 0,
		Key4:       b&0x10 != 0,
	}
}

// Byte packs the selection for the wire.
func (s TransitionSelection) Byte() uint8 {
	var b uint8
	for i, set := range []bool{s.Background, s.Key1, s.Key2, s.Key3, s.Key4} {
		if set {
			b |= 1 << i
		}
	}
	return b
}

// Key reports whether upstream keyer i (0-based) is selected.
func (s TransitionSelection) Key(i int) bool {
	switch i {
	case 0:
		return s.Key1
	case 1:
		return s.Key2
	case 2:
		return s.Key3
	case 3:
		return s.Key4
	}
	return false
}

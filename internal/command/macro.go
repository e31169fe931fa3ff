package command

import (
	"github.com/avista-project/avista/internal/protocol"
	"github.com/avista-project/avista/internal/state"
)

// MacroProperties (MPrp) describes one macro slot.
// Format: [macro:2][used:1][unsupported_ops:1][name_len:2][desc_len:2][name][description]
type MacroProperties struct {
	Index             uint16
	Used              bool
	HasUnsupportedOps bool
	Name              string
	Description       string
}

func (*MacroProperties) Tag() string { return "MPrp" }

func (c *MacroProperties) Encode(b *protocol.PacketBuilder) {
	b.WriteUint16(c.Index).
		WriteBool(c.Used).
		WriteBool(c.HasUnsupportedOps).
		WriteUint16(uint16(len(c.Name))).
		WriteUint16(uint16(len(c.Description))).
		WriteBytes([]byte(c.Name)).
		WriteBytes([]byte(c.Description))
}

func (c *MacroProperties) decode(r *protocol.PacketReader) {
	c.Index = r.Uint16()
	c.Used = r.Bool()
	c.HasUnsupportedOps = r.Bool()
	nameLen := int(r.Uint16())
	descLen := int(r.Uint16())
	c.Name = r.FixedString(nameLen)
	c.Description = r.FixedString(descLen)
}

func (c *MacroProperties) ApplyToState(s *state.State) *state.State {
	ns := s.Clone()
	ns.SetMacro(int(c.Index), state.Macro{
		Used:        c.Used,
		Name:        c.Name,
		Description: c.Description,
	})
	return ns
}

// MacroControl (MAct) runs, stops or edits a macro.
// Format: [macro:2][action:1][pad:1]
type MacroControl struct {
	Index  uint16
	Action protocol.MacroAction
}

func (*MacroControl) Tag() string { return "MAct" }

func (c *MacroControl) Encode(b *protocol.PacketBuilder) {
	b.WriteUint16(c.Index).WriteUint8(uint8(c.Action)).WritePadding(1)
}

func (c *MacroControl) decode(r *protocol.PacketReader) {
	c.Index = r.Uint16()
	c.Action = protocol.Enum8[protocol.MacroAction](r)
	r.Skip(1)
}

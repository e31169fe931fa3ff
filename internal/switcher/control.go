package switcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/avista-project/avista/internal/command"
	"github.com/avista-project/avista/internal/events"
	"github.com/avista-project/avista/internal/protocol"
)

// ErrInvalidArgument is returned when a control call has an out-of-range
// index or an unknown enumeration value.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrNoTransport is returned when control is attempted before a transport
// is attached.
var ErrNoTransport = errors.New("switcher has no transport")

func index8(name string, v int) (uint8, error) {
	if v < 0 || v > 0xFF {
		return 0, fmt.Errorf("%w: %s %d out of range", ErrInvalidArgument, name, v)
	}
	return uint8(v), nil
}

func source(v protocol.VideoSource) error {
	if !v.Valid() {
		return fmt.Errorf("%w: video source %d", ErrInvalidArgument, uint16(v))
	}
	return nil
}

// send hands cmd to the transport and reports the outcome on the bus.
func (s *Switcher) send(cmd command.Command) error {
	s.mu.Lock()
	t := s.transport
	connID := s.connectionID
	s.mu.Unlock()

	if t == nil {
		return ErrNoTransport
	}

	err := t.Send(cmd)
	payload := events.CommandSentPayload{ConnectionID: connID, Tag: cmd.Tag()}
	if err != nil {
		payload.Error = err.Error()
		s.logger.Warn().Err(err).Str("command", cmd.Tag()).Msg("command not sent")
	} else {
		s.logger.Debug().Str("command", cmd.Tag()).Msg("command sent")
	}
	if s.bus != nil {
		s.bus.Emit(context.Background(), events.Event{
			Type:    events.EventCommandSent,
			Source:  s.opts.Name,
			Payload: payload,
		})
	}
	return err
}

// classic reports whether the negotiated version predates the per-id super
// source records.
func (s *Switcher) classic() bool {
	s.mu.Lock()
	t := s.transport
	s.mu.Unlock()
	if t == nil {
		return false
	}
	v := t.Version()
	return !v.IsZero() && v.Less(protocol.Version8)
}

// SetPreviewInput selects the preview source of an ME.
func (s *Switcher) SetPreviewInput(me int, src protocol.VideoSource) error {
	idx, err := index8("me", me)
	if err != nil {
		return err
	}
	if err := source(src); err != nil {
		return err
	}
	return s.send(&command.SetPreviewInput{Index: idx, Source: src})
}

// SetProgramInput selects the program source of an ME.
func (s *Switcher) SetProgramInput(me int, src protocol.VideoSource) error {
	idx, err := index8("me", me)
	if err != nil {
		return err
	}
	if err := source(src); err != nil {
		return err
	}
	return s.send(&command.SetProgramInput{Index: idx, Source: src})
}

// Cut swaps program and preview immediately.
func (s *Switcher) Cut(me int) error {
	idx, err := index8("me", me)
	if err != nil {
		return err
	}
	return s.send(&command.Cut{Index: idx})
}

// Auto runs the selected transition.
func (s *Switcher) Auto(me int) error {
	idx, err := index8("me", me)
	if err != nil {
		return err
	}
	return s.send(&command.Auto{Index: idx})
}

// SetTransitionPosition moves the transition lever; 0 to 10000.
func (s *Switcher) SetTransitionPosition(me int, position int) error {
	idx, err := index8("me", me)
	if err != nil {
		return err
	}
	if position < 0 || position > 10000 {
		return fmt.Errorf("%w: transition position %d", ErrInvalidArgument, position)
	}
	return s.send(&command.SetTransitionPosition{Index: idx, Position: uint16(position)})
}

// SetTransitionProperties changes the transition style, the next
// transition selection, or both. Nil arguments are left unchanged.
func (s *Switcher) SetTransitionProperties(me int, style *protocol.TransitionStyle, next *protocol.TransitionSelection) error {
	idx, err := index8("me", me)
	if err != nil {
		return err
	}
	if style == nil && next == nil {
		return fmt.Errorf("%w: nothing to change", ErrInvalidArgument)
	}
	if style != nil && !style.Valid() {
		return fmt.Errorf("%w: transition style %d", ErrInvalidArgument, uint8(*style))
	}
	return s.send(&command.SetTransitionProperties{Index: idx, Style: style, Next: next})
}

// SetTransitionMixRate sets the mix transition duration in frames.
func (s *Switcher) SetTransitionMixRate(me int, rate uint8) error {
	idx, err := index8("me", me)
	if err != nil {
		return err
	}
	return s.send(&command.SetTransitionMix{Index: idx, Rate: rate})
}

// SetTransitionDipProperties changes the dip rate, the dip source, or both.
func (s *Switcher) SetTransitionDipProperties(me int, rate *uint8, src *protocol.VideoSource) error {
	idx, err := index8("me", me)
	if err != nil {
		return err
	}
	if rate == nil && src == nil {
		return fmt.Errorf("%w: nothing to change", ErrInvalidArgument)
	}
	if src != nil {
		if err := source(*src); err != nil {
			return err
		}
	}
	return s.send(&command.SetTransitionDip{Index: idx, Rate: rate, Source: src})
}

// SetKeyerOnAir puts an upstream keyer on or off air.
func (s *Switcher) SetKeyerOnAir(me, keyer int, onAir bool) error {
	idx, err := index8("me", me)
	if err != nil {
		return err
	}
	key, err := index8("keyer", keyer)
	if err != nil {
		return err
	}
	return s.send(&command.SetKeyerOnAir{Index: idx, KeyIndex: key, Enabled: onAir})
}

// SetKeyerType changes the key type, the fly setting, or both.
func (s *Switcher) SetKeyerType(me, keyer int, keyType *protocol.KeyType, fly *bool) error {
	idx, err := index8("me", me)
	if err != nil {
		return err
	}
	key, err := index8("keyer", keyer)
	if err != nil {
		return err
	}
	if keyType == nil && fly == nil {
		return fmt.Errorf("%w: nothing to change", ErrInvalidArgument)
	}
	if keyType != nil && !keyType.Valid() {
		return fmt.Errorf("%w: key type %d", ErrInvalidArgument, uint8(*keyType))
	}
	return s.send(&command.SetKeyerType{Index: idx, KeyIndex: key, Type: keyType, FlyEnabled: fly})
}

// SetFadeToBlackRate sets the fade to black duration in frames.
func (s *Switcher) SetFadeToBlackRate(me int, rate uint8) error {
	idx, err := index8("me", me)
	if err != nil {
		return err
	}
	return s.send(&command.SetFadeToBlackRate{Index: idx, Rate: rate})
}

// ToggleFadeToBlack starts or reverses a fade to black.
func (s *Switcher) ToggleFadeToBlack(me int) error {
	idx, err := index8("me", me)
	if err != nil {
		return err
	}
	return s.send(&command.FadeToBlackAuto{Index: idx})
}

// SetAuxSource routes src to an aux output.
func (s *Switcher) SetAuxSource(aux int, src protocol.VideoSource) error {
	idx, err := index8("aux", aux)
	if err != nil {
		return err
	}
	if err := source(src); err != nil {
		return err
	}
	return s.send(&command.SetAuxSource{Index: idx, Source: src})
}

// SetDSKOnAir cuts a downstream keyer on or off air.
func (s *Switcher) SetDSKOnAir(dsk int, onAir bool) error {
	idx, err := index8("dsk", dsk)
	if err != nil {
		return err
	}
	return s.send(&command.SetDSKOnAir{Index: idx, OnAir: onAir})
}

// SetDSKTie ties a downstream keyer to the next transition.
func (s *Switcher) SetDSKTie(dsk int, tie bool) error {
	idx, err := index8("dsk", dsk)
	if err != nil {
		return err
	}
	return s.send(&command.SetDSKTie{Index: idx, Tie: tie})
}

// DSKAuto runs the mix of a downstream keyer.
func (s *Switcher) DSKAuto(dsk int) error {
	idx, err := index8("dsk", dsk)
	if err != nil {
		return err
	}
	return s.send(&command.DSKAuto{Index: idx})
}

// RunMacro runs the macro stored at index.
func (s *Switcher) RunMacro(index int) error {
	if index < 0 || index > 0xFFFF {
		return fmt.Errorf("%w: macro %d out of range", ErrInvalidArgument, index)
	}
	return s.send(&command.MacroControl{Index: uint16(index), Action: protocol.MacroRun})
}

// StopMacro stops the running macro.
func (s *Switcher) StopMacro() error {
	return s.send(&command.MacroControl{Index: 0xFFFF, Action: protocol.MacroStop})
}

// ResetMasterAudioPeaks clears the master peak meters.
func (s *Switcher) ResetMasterAudioPeaks() error {
	return s.send(&command.ResetAudioPeaks{Master: true})
}

// ResetInputAudioPeaks clears the peak meters of one audio input.
func (s *Switcher) ResetInputAudioPeaks(src protocol.AudioSource) error {
	if !src.Valid() {
		return fmt.Errorf("%w: audio source %d", ErrInvalidArgument, uint16(src))
	}
	return s.send(&command.ResetAudioPeaks{Input: &src})
}

// SuperSourceChange is a partial update of a super source compositor.
// Nil fields are left unchanged.
type SuperSourceChange struct {
	FillSource    *protocol.VideoSource `json:"fill_source,omitempty"`
	KeySource     *protocol.VideoSource `json:"key_source,omitempty"`
	Foreground    *bool                 `json:"foreground,omitempty"`
	PreMultiplied *bool                 `json:"pre_multiplied,omitempty"`
	Clip          *uint16               `json:"clip,omitempty"`
	Gain          *uint16               `json:"gain,omitempty"`
	InvertKey     *bool                 `json:"invert_key,omitempty"`
}

func (c SuperSourceChange) empty() bool {
	return c == SuperSourceChange{}
}

// SetSuperSourceProperties applies c to super source id, using the classic
// record on switchers older than 2.28, where only id 0 exists.
func (s *Switcher) SetSuperSourceProperties(id int, c SuperSourceChange) error {
	ssID, err := index8("super source", id)
	if err != nil {
		return err
	}
	if c.empty() {
		return fmt.Errorf("%w: nothing to change", ErrInvalidArgument)
	}
	for _, src := range []*protocol.VideoSource{c.FillSource, c.KeySource} {
		if src != nil {
			if err := source(*src); err != nil {
				return err
			}
		}
	}

	if s.classic() {
		if ssID != 0 {
			return fmt.Errorf("%w: super source %d needs protocol %s", ErrInvalidArgument, ssID, protocol.Version8)
		}
		return s.send(&command.SetSuperSource{
			FillSource:    c.FillSource,
			KeySource:     c.KeySource,
			Foreground:    c.Foreground,
			PreMultiplied: c.PreMultiplied,
			Clip:          c.Clip,
			Gain:          c.Gain,
			InvertKey:     c.InvertKey,
		})
	}
	return s.send(&command.SetSuperSourceV8{
		ID:            ssID,
		FillSource:    c.FillSource,
		KeySource:     c.KeySource,
		Foreground:    c.Foreground,
		PreMultiplied: c.PreMultiplied,
		Clip:          c.Clip,
		Gain:          c.Gain,
		InvertKey:     c.InvertKey,
	})
}

// BorderChange is a partial update of a super source border.
type BorderChange struct {
	Enabled        *bool               `json:"enabled,omitempty"`
	Bevel          *protocol.BevelType `json:"bevel,omitempty"`
	OuterWidth     *uint16             `json:"outer_width,omitempty"`
	InnerWidth     *uint16             `json:"inner_width,omitempty"`
	OuterSoftness  *uint8              `json:"outer_softness,omitempty"`
	InnerSoftness  *uint8              `json:"inner_softness,omitempty"`
	BevelSoftness  *uint8              `json:"bevel_softness,omitempty"`
	BevelPosition  *uint8              `json:"bevel_position,omitempty"`
	Hue            *uint16             `json:"hue,omitempty"`
	Saturation     *uint16             `json:"saturation,omitempty"`
	Luma           *uint16             `json:"luma,omitempty"`
	LightDirection *uint16             `json:"light_direction,omitempty"`
	LightAltitude  *uint8              `json:"light_altitude,omitempty"`
}

func (c BorderChange) empty() bool {
	return c == BorderChange{}
}

// SetSuperSourceBorder applies c to the border of super source id. Older
// switchers carry the border in the classic properties record.
func (s *Switcher) SetSuperSourceBorder(id int, c BorderChange) error {
	ssID, err := index8("super source", id)
	if err != nil {
		return err
	}
	if c.empty() {
		return fmt.Errorf("%w: nothing to change", ErrInvalidArgument)
	}
	if c.Bevel != nil && !c.Bevel.Valid() {
		return fmt.Errorf("%w: bevel %d", ErrInvalidArgument, uint8(*c.Bevel))
	}

	if s.classic() {
		if ssID != 0 {
			return fmt.Errorf("%w: super source %d needs protocol %s", ErrInvalidArgument, ssID, protocol.Version8)
		}
		return s.send(&command.SetSuperSource{
			BorderEnabled:  c.Enabled,
			Bevel:          c.Bevel,
			OuterWidth:     c.OuterWidth,
			InnerWidth:     c.InnerWidth,
			OuterSoftness:  c.OuterSoftness,
			InnerSoftness:  c.InnerSoftness,
			BevelSoftness:  c.BevelSoftness,
			BevelPosition:  c.BevelPosition,
			BorderHue:      c.Hue,
			Saturation:     c.Saturation,
			Luma:           c.Luma,
			LightDirection: c.LightDirection,
			LightAltitude:  c.LightAltitude,
		})
	}
	return s.send(&command.SetSuperSourceBorder{
		ID:             ssID,
		Enabled:        c.Enabled,
		Bevel:          c.Bevel,
		OuterWidth:     c.OuterWidth,
		InnerWidth:     c.InnerWidth,
		OuterSoftness:  c.OuterSoftness,
		InnerSoftness:  c.InnerSoftness,
		BevelSoftness:  c.BevelSoftness,
		BevelPosition:  c.BevelPosition,
		Hue:            c.Hue,
		Saturation:     c.Saturation,
		Luma:           c.Luma,
		LightDirection: c.LightDirection,
		LightAltitude:  c.LightAltitude,
	})
}

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/avista-project/avista/internal/network"
	"github.com/avista-project/avista/internal/protocol"
	"github.com/avista-project/avista/internal/switcher"
)

// intParam parses a non-negative integer path parameter, writing a 400
// response when it is malformed.
func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name, name: c.Param(name)})
		return 0, false
	}
	return v, true
}

func bindBody(c *gin.Context, body any) bool {
	if err := c.ShouldBindJSON(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// respond maps a control error to a status code.
func respond(c *gin.Context, action string, err error) {
	operator, _ := c.Get("operator")
	if err == nil {
		log.Info().Str("action", action).Interface("operator", operator).Msg("API: control")
		c.JSON(http.StatusOK, gin.H{"status": "sent", "action": action})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, switcher.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, network.ErrVersionMismatch):
		status = http.StatusConflict
	case errors.Is(err, network.ErrNotConnected), errors.Is(err, switcher.ErrNoTransport):
		status = http.StatusServiceUnavailable
	}
	log.Warn().Err(err).Str("action", action).Msg("API: control failed")
	c.JSON(status, gin.H{"error": err.Error(), "action": action})
}

type sourceBody struct {
	Source *protocol.VideoSource `json:"source" binding:"required"`
}

type enabledBody struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type rateBody struct {
	Rate *uint8 `json:"rate" binding:"required"`
}

func (s *Server) handleSetPreview(c *gin.Context) {
	me, ok := intParam(c, "me")
	if !ok {
		return
	}
	var body sourceBody
	if !bindBody(c, &body) {
		return
	}
	respond(c, "preview", s.deps.Switcher.SetPreviewInput(me, *body.Source))
}

func (s *Server) handleSetProgram(c *gin.Context) {
	me, ok := intParam(c, "me")
	if !ok {
		return
	}
	var body sourceBody
	if !bindBody(c, &body) {
		return
	}
	respond(c, "program", s.deps.Switcher.SetProgramInput(me, *body.Source))
}

func (s *Server) handleCut(c *gin.Context) {
	me, ok := intParam(c, "me")
	if !ok {
		return
	}
	respond(c, "cut", s.deps.Switcher.Cut(me))
}

func (s *Server) handleAuto(c *gin.Context) {
	me, ok := intParam(c, "me")
	if !ok {
		return
	}
	respond(c, "auto", s.deps.Switcher.Auto(me))
}

func (s *Server) handleTransitionPosition(c *gin.Context) {
	me, ok := intParam(c, "me")
	if !ok {
		return
	}
	var body struct {
		Position *int `json:"position" binding:"required"`
	}
	if !bindBody(c, &body) {
		return
	}
	respond(c, "transition_position", s.deps.Switcher.SetTransitionPosition(me, *body.Position))
}

func (s *Server) handleTransitionProperties(c *gin.Context) {
	me, ok := intParam(c, "me")
	if !ok {
		return
	}
	var body struct {
		Style *protocol.TransitionStyle     `json:"style"`
		Next  *protocol.TransitionSelection `json:"next"`
	}
	if !bindBody(c, &body) {
		return
	}
	respond(c, "transition_properties", s.deps.Switcher.SetTransitionProperties(me, body.Style, body.Next))
}

func (s *Server) handleTransitionMix(c *gin.Context) {
	me, ok := intParam(c, "me")
	if !ok {
		return
	}
	var body rateBody
	if !bindBody(c, &body) {
		return
	}
	respond(c, "transition_mix", s.deps.Switcher.SetTransitionMixRate(me, *body.Rate))
}

func (s *Server) handleTransitionDip(c *gin.Context) {
	me, ok := intParam(c, "me")
	if !ok {
		return
	}
	var body struct {
		Rate   *uint8                `json:"rate"`
		Source *protocol.VideoSource `json:"source"`
	}
	if !bindBody(c, &body) {
		return
	}
	respond(c, "transition_dip", s.deps.Switcher.SetTransitionDipProperties(me, body.Rate, body.Source))
}

func (s *Server) handleKeyerOnAir(c *gin.Context) {
	me, ok := intParam(c, "me")
	if !ok {
		return
	}
	keyer, ok := intParam(c, "keyer")
	if !ok {
		return
	}
	var body enabledBody
	if !bindBody(c, &body) {
		return
	}
	respond(c, "keyer_on_air", s.deps.Switcher.SetKeyerOnAir(me, keyer, *body.Enabled))
}

func (s *Server) handleKeyerType(c *gin.Context) {
	me, ok := intParam(c, "me")
	if !ok {
		return
	}
	keyer, ok := intParam(c, "keyer")
	if !ok {
		return
	}
	var body struct {
		Type       *protocol.KeyType `json:"type"`
		FlyEnabled *bool             `json:"fly_enabled"`
	}
	if !bindBody(c, &body) {
		return
	}
	respond(c, "keyer_type", s.deps.Switcher.SetKeyerType(me, keyer, body.Type, body.FlyEnabled))
}

func (s *Server) handleFadeToBlack(c *gin.Context) {
	me, ok := intParam(c, "me")
	if !ok {
		return
	}
	respond(c, "fade_to_black", s.deps.Switcher.ToggleFadeToBlack(me))
}

func (s *Server) handleFadeToBlackRate(c *gin.Context) {
	me, ok := intParam(c, "me")
	if !ok {
		return
	}
	var body rateBody
	if !bindBody(c, &body) {
		return
	}
	respond(c, "fade_to_black_rate", s.deps.Switcher.SetFadeToBlackRate(me, *body.Rate))
}

func (s *Server) handleAuxSource(c *gin.Context) {
	aux, ok := intParam(c, "aux")
	if !ok {
		return
	}
	var body sourceBody
	if !bindBody(c, &body) {
		return
	}
	respond(c, "aux", s.deps.Switcher.SetAuxSource(aux, *body.Source))
}

func (s *Server) handleDSKOnAir(c *gin.Context) {
	dsk, ok := intParam(c, "dsk")
	if !ok {
		return
	}
	var body enabledBody
	if !bindBody(c, &body) {
		return
	}
	respond(c, "dsk_on_air", s.deps.Switcher.SetDSKOnAir(dsk, *body.Enabled))
}

func (s *Server) handleDSKTie(c *gin.Context) {
	dsk, ok := intParam(c, "dsk")
	if !ok {
		return
	}
	var body enabledBody
	if !bindBody(c, &body) {
		return
	}
	respond(c, "dsk_tie", s.deps.Switcher.SetDSKTie(dsk, *body.Enabled))
}

func (s *Server) handleDSKAuto(c *gin.Context) {
	dsk, ok := intParam(c, "dsk")
	if !ok {
		return
	}
	respond(c, "dsk_auto", s.deps.Switcher.DSKAuto(dsk))
}

func (s *Server) handleRunMacro(c *gin.Context) {
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	respond(c, "macro_run", s.deps.Switcher.RunMacro(index))
}

func (s *Server) handleStopMacro(c *gin.Context) {
	respond(c, "macro_stop", s.deps.Switcher.StopMacro())
}

// handleResetPeaks resets the master meters, or one input's when a source
// is given.
func (s *Server) handleResetPeaks(c *gin.Context) {
	var body struct {
		Input *protocol.AudioSource `json:"input"`
	}
	if c.Request.ContentLength > 0 && !bindBody(c, &body) {
		return
	}
	if body.Input != nil {
		respond(c, "reset_input_peaks", s.deps.Switcher.ResetInputAudioPeaks(*body.Input))
		return
	}
	respond(c, "reset_master_peaks", s.deps.Switcher.ResetMasterAudioPeaks())
}

func (s *Server) handleSuperSource(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var body switcher.SuperSourceChange
	if !bindBody(c, &body) {
		return
	}
	respond(c, "super_source", s.deps.Switcher.SetSuperSourceProperties(id, body))
}

func (s *Server) handleSuperSourceBorder(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var body switcher.BorderChange
	if !bindBody(c, &body) {
		return
	}
	respond(c, "super_source_border", s.deps.Switcher.SetSuperSourceBorder(id, body))
}

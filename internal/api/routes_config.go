package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/avista-project/avista/internal/config"
	"github.com/avista-project/avista/internal/events"
)

// handleGetConfig returns the current configuration with secrets masked.
func (s *Server) handleGetConfig(c *gin.Context) {
	app := s.cfg.GetApplicationData()
	if app.API.Token != "" {
		app.API.Token = "********"
	}
	c.JSON(http.StatusOK, gin.H{
		"switcher":         s.cfg.GetSwitcher(),
		"application_data": app,
	})
}

// validationResponse writes the validation errors and reports whether the
// candidate configuration is acceptable.
func validationResponse(c *gin.Context, candidate *config.Config) bool {
	result := config.Validate(candidate)
	if result.IsValid() {
		return true
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error":    "invalid configuration",
		"errors":   result.Errors,
		"warnings": result.Warnings,
	})
	return false
}

// handleSetSwitcher replaces the switcher settings. They take effect on the
// next start.
func (s *Server) handleSetSwitcher(c *gin.Context) {
	var sw config.SwitcherConfig
	if !bindBody(c, &sw) {
		return
	}

	candidate := &config.Config{Switcher: sw, ApplicationData: s.cfg.GetApplicationData()}
	if !validationResponse(c, candidate) {
		return
	}

	s.cfg.SetSwitcher(sw)
	if err := s.cfg.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save config"})
		return
	}

	s.eventBus.Emit(c.Request.Context(), events.Event{
		Type:    events.EventConfigChanged,
		Source:  "api",
		Payload: events.ConfigChangedPayload{Section: "switcher"},
	})

	operator, _ := c.Get("operator")
	log.Info().Interface("operator", operator).Msg("API: switcher settings updated")

	c.JSON(http.StatusOK, gin.H{
		"status":           "updated",
		"restart_required": true,
		"data":             s.cfg.GetSwitcher(),
	})
}

// handleSetAppData replaces the application settings.
func (s *Server) handleSetAppData(c *gin.Context) {
	var appData config.ApplicationData
	if !bindBody(c, &appData) {
		return
	}

	candidate := &config.Config{Switcher: s.cfg.GetSwitcher(), ApplicationData: appData}
	if !validationResponse(c, candidate) {
		return
	}

	s.cfg.SetApplicationData(appData)
	if err := s.cfg.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save config"})
		return
	}

	s.eventBus.Emit(c.Request.Context(), events.Event{
		Type:    events.EventConfigChanged,
		Source:  "api",
		Payload: events.ConfigChangedPayload{Section: "application_data"},
	})

	c.JSON(http.StatusOK, gin.H{
		"status":           "updated",
		"restart_required": true,
	})
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avista-project/avista/internal/util"
)

// handlePing returns a simple liveness response.
func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "avista",
		"version": s.deps.Version,
	})
}

// handleGetInfo returns the controller name, version and host.
func (s *Server) handleGetInfo(c *gin.Context) {
	sw := s.cfg.GetSwitcher()
	sysInfo := util.GetSystemInfo()

	info := gin.H{
		"name":      sw.Name,
		"version":   s.deps.Version,
		"platform":  sysInfo.Platform,
		"hostname":  sysInfo.Hostname,
		"cpu_cores": sysInfo.CPUCores,
	}
	if s.deps.Switcher != nil {
		info["connection"] = s.deps.Switcher.Status().State
	}
	c.JSON(http.StatusOK, info)
}

package api

import (
	"net/http"
	"slices"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/avista-project/avista/internal/state"
	"github.com/avista-project/avista/internal/util"
)

// handleGetStatus returns the switcher connection summary.
func (s *Server) handleGetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Switcher.Status())
}

// handleGetState returns the whole snapshot.
func (s *Server) handleGetState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connection_id": s.deps.Switcher.Status().ConnectionID,
		"state":         s.deps.Switcher.State(),
	})
}

// handleGetStateKey returns one top-level subtree.
func (s *Server) handleGetStateKey(c *gin.Context) {
	key := state.Key(c.Param("key"))
	if !slices.Contains(state.AllKeys, key) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown state key", "key": key})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"key":   key,
		"value": s.deps.Switcher.State().Get(key),
	})
}

// tallyEntry is one source in a tally listing.
type tallyEntry struct {
	Source  uint16 `json:"source"`
	Name    string `json:"name,omitempty"`
	Program bool   `json:"program"`
	Preview bool   `json:"preview"`
}

func tallyEntries(st *state.State, me int) []tallyEntry {
	if st.Tally == nil {
		return nil
	}
	flags := st.Tally.ByME[me]
	out := make([]tallyEntry, 0, len(flags))
	for src, f := range flags {
		e := tallyEntry{Source: uint16(src), Program: f.Program, Preview: f.Preview}
		if info, ok := st.Sources[src]; ok {
			e.Name = info.ShortName
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// handleGetTally returns the derived tally of every ME.
func (s *Server) handleGetTally(c *gin.Context) {
	st := s.deps.Switcher.State()
	tally := make(map[string][]tallyEntry)
	if st.Tally != nil {
		for me := range st.Tally.ByME {
			tally[strconv.Itoa(me)] = tallyEntries(st, me)
		}
	}
	c.JSON(http.StatusOK, gin.H{"tally": tally})
}

// handleGetTallyME returns the tally of one ME.
func (s *Server) handleGetTallyME(c *gin.Context) {
	me, ok := intParam(c, "me")
	if !ok {
		return
	}
	st := s.deps.Switcher.State()
	if st.Tally == nil || st.Tally.ByME[me] == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no tally for ME", "me": me})
		return
	}
	c.JSON(http.StatusOK, gin.H{"me": me, "tally": tallyEntries(st, me)})
}

// handleGetSources lists the video sources, ordered by id.
func (s *Server) handleGetSources(c *gin.Context) {
	st := s.deps.Switcher.State()
	sources := make([]*state.Source, 0, len(st.Sources))
	for _, src := range st.Sources {
		sources = append(sources, src)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].ID < sources[j].ID })
	c.JSON(http.StatusOK, gin.H{"sources": sources, "total": len(sources)})
}

// handleGetHealth returns the latest health check results.
func (s *Server) handleGetHealth(c *gin.Context) {
	if s.deps.Health == nil {
		c.JSON(http.StatusOK, gin.H{"healthy": true, "checks": gin.H{}})
		return
	}
	status := http.StatusOK
	healthy := s.deps.Health.Healthy()
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"healthy": healthy, "checks": s.deps.Health.Results()})
}

// handleGetSystem returns host information and load.
func (s *Server) handleGetSystem(c *gin.Context) {
	resp := gin.H{"system": util.GetSystemInfo()}
	if usage, err := util.GetResourceUsage(); err == nil {
		resp["resources"] = usage
	}
	c.JSON(http.StatusOK, resp)
}

// handleGetHistory returns journaled state changes, newest first.
func (s *Server) handleGetHistory(c *gin.Context) {
	if !s.requireJournal(c) {
		return
	}
	limit := queryLimit(c, 100)
	changes, err := s.deps.Journal.History(c.Query("key"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"changes": changes, "total": len(changes)})
}

// handleGetConnections returns journaled connections, newest first.
func (s *Server) handleGetConnections(c *gin.Context) {
	if !s.requireJournal(c) {
		return
	}
	conns, err := s.deps.Journal.Connections(queryLimit(c, 50))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"connections": conns})
}

// handleGetAlerts returns unacknowledged health alerts.
func (s *Server) handleGetAlerts(c *gin.Context) {
	if !s.requireJournal(c) {
		return
	}
	alerts, err := s.deps.Journal.UnacknowledgedAlerts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// handleAckAlert acknowledges one alert.
func (s *Server) handleAckAlert(c *gin.Context) {
	if !s.requireJournal(c) {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}
	if err := s.deps.Journal.AcknowledgeAlert(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "acknowledged", "id": id})
}

func (s *Server) requireJournal(c *gin.Context) bool {
	if s.deps.Journal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "journal disabled"})
		return false
	}
	return true
}

func queryLimit(c *gin.Context, def int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || limit < 1 {
		return def
	}
	return min(limit, 1000)
}

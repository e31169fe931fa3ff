package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/avista-project/avista/dashboard"
	"github.com/avista-project/avista/internal/config"
	"github.com/avista-project/avista/internal/db"
	"github.com/avista-project/avista/internal/events"
	"github.com/avista-project/avista/internal/health"
	"github.com/avista-project/avista/internal/network"
	"github.com/avista-project/avista/internal/switcher"
	"github.com/avista-project/avista/internal/util"
)

// Deps are the components the API serves. Journal, Health and Metrics are
// optional.
type Deps struct {
	Switcher *switcher.Switcher
	Journal  *db.Journal
	Health   *health.Manager
	Metrics  http.Handler
	Version  string
}

// Server is the REST API server.
type Server struct {
	cfg      *config.Config
	eventBus *events.EventBus
	deps     Deps
	stream   *Stream

	httpServer *http.Server
	router     *gin.Engine
}

// NewServer creates a new API server.
func NewServer(cfg *config.Config, eventBus *events.EventBus, deps Deps) *Server {
	if cfg.ApplicationData.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	return &Server{
		cfg:      cfg,
		eventBus: eventBus,
		deps:     deps,
		stream:   NewStream(eventBus, deps.Switcher),
	}
}

// Handler returns the router, building it on first use.
func (s *Server) Handler() http.Handler {
	if s.router == nil {
		s.router = s.buildRouter()
	}
	return s.router
}

// Start serves the API until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	api := s.cfg.ApplicationData.API
	addr := net.JoinHostPort(api.Listen, strconv.Itoa(api.Port))

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	security := s.cfg.ApplicationData.Security
	if security.TLSEnabled {
		tlsConfig, err := loadTLSConfig(security.TLSCertFile, security.TLSKeyFile)
		if err != nil {
			return err
		}
		s.httpServer.TLSConfig = tlsConfig
	}

	lc := network.ReuseAddrListenConfig()
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("API server error: %w", err)
	}

	log.Info().Str("addr", addr).Bool("tls", security.TLSEnabled).Msg("REST API server starting")

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	if s.httpServer.TLSConfig != nil {
		err = s.httpServer.Serve(tls.NewListener(ln, s.httpServer.TLSConfig))
	} else {
		err = s.httpServer.Serve(ln)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("API server error: %w", err)
	}
	return nil
}

// loadTLSConfig loads the certificate pair, generating a self-signed one
// when neither file exists yet.
func loadTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	_, certErr := os.Stat(certFile)
	_, keyErr := os.Stat(keyFile)
	if os.IsNotExist(certErr) && os.IsNotExist(keyErr) {
		hostname, _ := os.Hostname()
		log.Warn().Str("cert", certFile).Msg("no TLS certificate found, generating a self-signed one")
		if err := util.GenerateSelfSignedCert(certFile, keyFile, hostname, 365*24*time.Hour); err != nil {
			return nil, fmt.Errorf("failed to generate TLS certificate: %w", err)
		}
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}
	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
	}, nil
}

// buildRouter creates the Gin router with all routes and middleware.
func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(RequestLogger())
	router.Use(SecurityHeaders())

	allowedOrigins := s.cfg.ApplicationData.Security.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	auth := NewAuthMiddleware(s.cfg)
	router.Use(auth.IPWhitelist())

	rateLimiter := NewRateLimiter(s.cfg.ApplicationData.Security.RateLimitRPS)
	router.Use(rateLimiter.Middleware())

	if s.deps.Metrics != nil {
		router.GET(s.cfg.ApplicationData.Metrics.Path, gin.WrapH(s.deps.Metrics))
	}

	public := router.Group("/api/public")
	{
		public.GET("/ping", s.handlePing)
		public.GET("/info", s.handleGetInfo)
	}

	protected := router.Group("/api")
	protected.Use(auth.RequireAuth())

	protected.GET("/stream", s.stream.Handle)

	monitor := protected.Group("/monitor")
	{
		monitor.GET("/status", s.handleGetStatus)
		monitor.GET("/state", s.handleGetState)
		monitor.GET("/state/:key", s.handleGetStateKey)
		monitor.GET("/tally", s.handleGetTally)
		monitor.GET("/tally/:me", s.handleGetTallyME)
		monitor.GET("/sources", s.handleGetSources)
		monitor.GET("/health", s.handleGetHealth)
		monitor.GET("/system", s.handleGetSystem)
		monitor.GET("/journal/history", s.handleGetHistory)
		monitor.GET("/journal/connections", s.handleGetConnections)
		monitor.GET("/alerts", s.handleGetAlerts)
		monitor.POST("/alerts/:id/ack", s.handleAckAlert)
	}

	control := protected.Group("/control")
	{
		control.POST("/me/:me/preview", s.handleSetPreview)
		control.POST("/me/:me/program", s.handleSetProgram)
		control.POST("/me/:me/cut", s.handleCut)
		control.POST("/me/:me/auto", s.handleAuto)
		control.POST("/me/:me/transition/position", s.handleTransitionPosition)
		control.POST("/me/:me/transition/properties", s.handleTransitionProperties)
		control.POST("/me/:me/transition/mix", s.handleTransitionMix)
		control.POST("/me/:me/transition/dip", s.handleTransitionDip)
		control.POST("/me/:me/keyer/:keyer/on_air", s.handleKeyerOnAir)
		control.POST("/me/:me/keyer/:keyer/type", s.handleKeyerType)
		control.POST("/me/:me/ftb", s.handleFadeToBlack)
		control.POST("/me/:me/ftb/rate", s.handleFadeToBlackRate)
		control.POST("/aux/:aux", s.handleAuxSource)
		control.POST("/dsk/:dsk/on_air", s.handleDSKOnAir)
		control.POST("/dsk/:dsk/tie", s.handleDSKTie)
		control.POST("/dsk/:dsk/auto", s.handleDSKAuto)
		control.POST("/macro/:index/run", s.handleRunMacro)
		control.POST("/macro/stop", s.handleStopMacro)
		control.POST("/audio/reset_peaks", s.handleResetPeaks)
		control.POST("/super_source/:id", s.handleSuperSource)
		control.POST("/super_source/:id/border", s.handleSuperSourceBorder)
	}

	configure := protected.Group("/configure")
	{
		configure.GET("/config", s.handleGetConfig)
		configure.POST("/switcher", s.handleSetSwitcher)
		configure.POST("/app_data", s.handleSetAppData)
	}

	// The tally page is public; its stream connection authenticates with
	// the token from the page URL.
	assets := http.FileServer(http.FS(dashboard.FS()))
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
			return
		}
		if c.Request.Method != http.MethodGet {
			c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
			return
		}
		c.Header("Content-Security-Policy",
			"default-src 'self'; script-src 'unsafe-inline'; style-src 'unsafe-inline'; connect-src 'self' ws: wss:")
		c.Request.URL.Path = "/"
		assets.ServeHTTP(c.Writer, c.Request)
	})

	return router
}

// Stop gracefully stops the API server and closes open streams.
func (s *Server) Stop() error {
	s.stream.Close()
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Package api serves the clock's status and settings over HTTP.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tuffrabit/tinygo-nixie-clock/pkg/config"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/control"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/render"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/timesource"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/tz"
)

// Server exposes a Controller over HTTP.
type Server struct {
	addr   string
	ctl    *control.Controller
	router *gin.Engine
}

// NewServer builds the router. addr defaults to ":8080".
func NewServer(addr string, ctl *control.Controller) *Server {
	if addr == "" {
		addr = ":8080"
	}
	s := &Server{addr: addr, ctl: ctl}
	s.initRouter()
	return s
}

func (s *Server) initRouter() {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/status", s.handleStatus)
		api.GET("/config", s.handleGetConfig)
		api.PUT("/config", s.handlePutConfig)
		api.PUT("/dim", s.handlePutDim)
		api.POST("/time", s.handlePostTime)
		api.GET("/zones", s.handleZones)
		api.GET("/storage", s.handleStorage)
		api.POST("/reset", s.handleReset)
	}
	s.router = r
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// httpStatus maps controller errors to response codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, config.ErrInvalidDimLevel),
		errors.Is(err, config.ErrInvalidDateWindow),
		errors.Is(err, config.ErrInvalidBlink),
		errors.Is(err, config.ErrInvalidTZ),
		errors.Is(err, timesource.ErrZeroTime):
		return http.StatusBadRequest
	case errors.Is(err, timesource.ErrReadOnly):
		return http.StatusConflict
	case errors.Is(err, control.ErrNoStorage):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(httpStatus(err), gin.H{"error": err.Error()})
}

// configBody is the JSON form of ClockConfig. Absent fields keep their
// current value on PUT.
type configBody struct {
	DimLevel        *uint8  `json:"dim_level,omitempty"`
	DateWindowStart *uint8  `json:"date_window_start,omitempty"`
	DateWindowLen   *uint8  `json:"date_window_len,omitempty"`
	BlinkMs         *uint16 `json:"blink_ms,omitempty"`
	BlinkInTimeMode *bool   `json:"blink_in_time_mode,omitempty"`
	TZ              *string `json:"tz,omitempty"`
}

func toBody(cfg config.ClockConfig) configBody {
	blink := cfg.Flags&config.FlagBlinkInTimeMode != 0
	zone := cfg.GetTZ()
	return configBody{
		DimLevel:        &cfg.DimLevel,
		DateWindowStart: &cfg.DateWindowStart,
		DateWindowLen:   &cfg.DateWindowLen,
		BlinkMs:         &cfg.BlinkMs,
		BlinkInTimeMode: &blink,
		TZ:              &zone,
	}
}

func (b configBody) merge(cfg config.ClockConfig) (config.ClockConfig, error) {
	if b.DimLevel != nil {
		cfg.DimLevel = *b.DimLevel
	}
	if b.DateWindowStart != nil {
		cfg.DateWindowStart = *b.DateWindowStart
	}
	if b.DateWindowLen != nil {
		cfg.DateWindowLen = *b.DateWindowLen
	}
	if b.BlinkMs != nil {
		cfg.BlinkMs = *b.BlinkMs
	}
	if b.BlinkInTimeMode != nil {
		cfg.SetBlinkInTimeMode(*b.BlinkInTimeMode)
	}
	if b.TZ != nil {
		if len(*b.TZ) >= len(cfg.TZ) {
			return cfg, config.ErrInvalidTZ
		}
		cfg.SetTZ(*b.TZ)
	}
	return cfg, nil
}

type tubeJSON struct {
	Digit string `json:"digit"`
	Dot   bool   `json:"dot"`
}

func (s *Server) handleHealth(c *gin.Context) {
	st := s.ctl.Status()
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"uptime":  st.Uptime.Round(time.Second).String(),
		"version": st.Version,
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	st := s.ctl.Status()

	tubes := make([]tubeJSON, len(st.Frame))
	for i, ts := range st.Frame {
		tubes[i] = tubeJSON{Digit: ts.Digit.String(), Dot: ts.Dot}
	}

	var now, srcErr any
	if st.TimeValid {
		now = st.Now.UTC().Format(time.RFC3339)
	}
	if st.SourceErr != nil {
		srcErr = st.SourceErr.Error()
	}

	c.JSON(http.StatusOK, gin.H{
		"time":       now,
		"time_valid": st.TimeValid,
		"source_err": srcErr,
		"display":    st.Frame.String(),
		"tubes":      tubes,
		"dim_level":  st.Dim,
		"uptime_ms":  st.Uptime.Milliseconds(),
		"tz":         st.TZ,
		"version":    st.Version,
	})
}

func (s *Server) handleGetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, toBody(s.ctl.Config()))
}

func (s *Server) handlePutConfig(c *gin.Context) {
	var body configBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	cfg, err := body.merge(s.ctl.Config())
	if err != nil {
		fail(c, err)
		return
	}
	if err := s.ctl.Apply(cfg); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toBody(s.ctl.Config()))
}

func (s *Server) handlePutDim(c *gin.Context) {
	var req struct {
		Level *int `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body or missing level field"})
		return
	}
	if *req.Level < 0 || *req.Level > int(render.DimOn) {
		fail(c, config.ErrInvalidDimLevel)
		return
	}
	if err := s.ctl.SetDim(render.DimLevel(*req.Level)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dim_level": *req.Level})
}

// handlePostTime accepts {"unix": seconds} or {"time": RFC 3339}.
func (s *Server) handlePostTime(c *gin.Context) {
	var req struct {
		Unix *int64 `json:"unix"`
		Time string `json:"time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	var t time.Time
	switch {
	case req.Unix != nil:
		t = time.Unix(*req.Unix, 0)
	case req.Time != "":
		var err error
		if t, err = time.Parse(time.RFC3339, req.Time); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "time must be RFC 3339"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing unix or time field"})
		return
	}

	if err := s.ctl.SetTime(t); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"time": t.UTC().Format(time.RFC3339)})
}

func (s *Server) handleZones(c *gin.Context) {
	zones := make([]gin.H, len(tz.Presets))
	for i, p := range tz.Presets {
		zones[i] = gin.H{"label": p.Label, "tz": p.TZ}
	}
	c.JSON(http.StatusOK, gin.H{"zones": zones})
}

func (s *Server) handleStorage(c *gin.Context) {
	st, err := s.ctl.StorageStats()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_bytes":    st.TotalSpace,
		"used_bytes":     st.UsedSpace,
		"free_bytes":     st.FreeSpace,
		"config_present": st.ConfigPresent,
		"wiped_at_boot":  st.WipedAtBoot,
	})
}

func (s *Server) handleReset(c *gin.Context) {
	if err := s.ctl.FactoryReset(); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toBody(s.ctl.Config()))
}

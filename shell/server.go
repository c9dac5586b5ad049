package shell

import (
	"context"
	"embed"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/wwisetools/hdrscope/chart"
	"github.com/wwisetools/hdrscope/scan"
	"github.com/wwisetools/hdrscope/waapi"
	"github.com/wwisetools/hdrscope/wwise"
)

//go:embed page.html
var pageFS embed.FS

// A Server exposes the board to a local page: JSON reads of the laid-out
// points, commands for scanning, searching, toggling and revealing, and a
// WebSocket that pushes scan lifecycle events and dialog prompts.
type Server struct {
	Log     *slog.Logger
	Board   *chart.Board
	Session *scan.Session
	Client  *waapi.Client
	Dialogs *DialogQueue

	// Scan runs one full aggregation pass. The server never runs two
	// concurrently.
	Scan func(ctx context.Context) error

	upgrader websocket.Upgrader
	scanning atomic.Bool

	mu   sync.Mutex
	subs map[*websocket.Conn]bool
}

type pointView struct {
	Index       int         `json:"index"`
	Value       float64     `json:"value"`
	RangeMin    float64     `json:"rangeMin"`
	RangeMax    float64     `json:"rangeMax"`
	XOffset     float64     `json:"xOffset"`
	DisplayName string      `json:"displayName"`
	ObjectID    string      `json:"objectId"`
	Category    string      `json:"category"`
	Color       wwise.Color `json:"color"`
	Visible     bool        `json:"visible"`
}

type categoryView struct {
	Name    string      `json:"name"`
	Color   wwise.Color `json:"color"`
	Visible bool        `json:"visible"`
}

// Router builds the gin handler tree.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests)

	r.GET("/", s.page)
	r.GET("/ws", s.subscribe)

	api := r.Group("/api")
	api.GET("/points", s.points)
	api.GET("/categories", s.categories)
	api.GET("/status", s.status)
	api.POST("/scan", s.startScan)
	api.POST("/search", s.search)
	api.POST("/category/:name/visible", s.setCategoryVisible)
	api.POST("/reveal/:id", s.reveal)
	api.POST("/dialog/:id", s.answerDialog)
	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router()}
	errs := make(chan error, 1)
	go func() { errs <- srv.ListenAndServe() }()

	s.Log.Info("shell listening", "addr", addr)
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.Log.Debug("request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"elapsed", time.Since(start))
}

func (s *Server) page(c *gin.Context) {
	page, err := pageFS.ReadFile("page.html")
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (s *Server) points(c *gin.Context) {
	pts := s.Board.Points()
	views := make([]pointView, len(pts))
	for i, p := range pts {
		views[i] = pointView{
			Index:       p.Index,
			Value:       p.Value,
			RangeMin:    p.RangeMin,
			RangeMax:    p.RangeMax,
			XOffset:     p.XOffset,
			DisplayName: p.DisplayName,
			ObjectID:    p.SourceObjectID,
			Category:    p.Category.Name(),
			Color:       p.Category.Parent.Color,
			Visible:     p.Category.Visible,
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"points":    views,
		"overlays":  s.Board.Overlays(),
		"border":    s.Board.Border(),
		"dimmed":    s.Board.Dimmed(),
		"clickable": s.Board.Clickable(),
	})
}

func (s *Server) categories(c *gin.Context) {
	cats := s.Board.Categories()
	views := make([]categoryView, len(cats))
	for i, cat := range cats {
		views[i] = categoryView{
			Name:    cat.Parent.Name,
			Color:   cat.Parent.Color,
			Visible: cat.Visible,
		}
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connected": s.Client.Connected(),
		"dirty":     s.Session.ProjectDirty(),
		"stale":     s.Session.Stale(),
		"scanning":  s.scanning.Load(),
	})
}

// startScan kicks off one aggregation pass. A second request while one is
// running is rejected rather than queued; the page retries after the
// finished push.
func (s *Server) startScan(c *gin.Context) {
	if !s.scanning.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, gin.H{"error": "a scan is already running"})
		return
	}
	go func() {
		defer s.scanning.Store(false)
		s.Broadcast("scanStarted", nil)
		if err := s.Scan(context.Background()); err != nil {
			s.Broadcast("scanFailed", gin.H{"error": err.Error()})
			return
		}
		s.Broadcast("scanFinished", nil)
	}()
	c.JSON(http.StatusAccepted, gin.H{"started": true})
}

func (s *Server) search(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" {
		s.Board.ClearHighlights()
		c.JSON(http.StatusOK, gin.H{"matched": 0})
		return
	}
	matched := s.Board.AddHighlight(req.Name)
	c.JSON(http.StatusOK, gin.H{"matched": matched})
}

func (s *Server) setCategoryVisible(c *gin.Context) {
	var req struct {
		Visible bool `json:"visible"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.Board.SetCategoryVisible(c.Param("name"), req.Visible)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) reveal(c *gin.Context) {
	if err := s.Client.Reveal(c.Request.Context(), c.Param("id")); err != nil {
		s.Log.Warn("reveal failed", "object", c.Param("id"), "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) answerDialog(c *gin.Context) {
	var req struct {
		Accepted bool `json:"accepted"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !s.Dialogs.Answer(c.Param("id"), req.Accepted) {
		c.JSON(http.StatusGone, gin.H{"error": "prompt is no longer active"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) subscribe(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	if s.subs == nil {
		s.subs = make(map[*websocket.Conn]bool)
	}
	s.subs[conn] = true
	s.mu.Unlock()

	// A prompt may already be up when the page connects.
	if p, ok := s.Dialogs.Current(); ok {
		conn.WriteJSON(gin.H{"event": "dialog", "data": p})
	}

	// Reads are discarded; the socket exists to push. The read loop only
	// detects the page going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.mu.Lock()
				delete(s.subs, conn)
				s.mu.Unlock()
				conn.Close()
				return
			}
		}
	}()
}

// Broadcast pushes one event to every connected page.
func (s *Server) Broadcast(event string, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.subs {
		if err := conn.WriteJSON(gin.H{"event": event, "data": data}); err != nil {
			delete(s.subs, conn)
			conn.Close()
		}
	}
}

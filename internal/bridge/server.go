// Package bridge serves the editor to a browser-side diagram renderer over
// HTTP and WebSocket. Every client event is posted to a single editor loop;
// every resulting frame is broadcast to every connected client.
package bridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ha1tch/automata-diagram/internal/config"
	"github.com/ha1tch/automata-diagram/pkg/editor"
	"github.com/ha1tch/automata-diagram/pkg/export"
	"github.com/ha1tch/automata-diagram/pkg/layout"
	"github.com/ha1tch/automata-diagram/pkg/render"
)

// Message types sent to clients.
const (
	MsgSession = "session"
	MsgFrame   = "frame"
	MsgError   = "error"
)

// Message is the server-to-client envelope.
type Message struct {
	Type      string        `json:"type"`
	SessionID string        `json:"sessionId,omitempty"`
	Frame     *render.Frame `json:"frame,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Server is the HTTP side of the bridge.
type Server struct {
	loop   *editor.Loop
	cfg    config.Serve
	opts   export.Options
	log    *slog.Logger
	engine *gin.Engine

	upgrader websocket.Upgrader

	mu       sync.RWMutex
	latest   editor.Snapshot
	frame    render.Frame
	frameMsg []byte
	clients  map[string]*client
}

// New creates a bridge for ed, driven by loop. It must be called before
// loop.Run so it sees the mount snapshot.
func New(ed *editor.Editor, loop *editor.Loop, cfg config.Serve, opts export.Options, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		loop:    loop,
		cfg:     cfg,
		opts:    opts,
		log:     log,
		clients: make(map[string]*client),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  64 * 1024,
		WriteBufferSize: 64 * 1024,
		CheckOrigin: func(r *http.Request) bool {
			return cfg.OriginAllowed(r.Header.Get("Origin"), r.Host)
		},
	}

	s.publish(ed.Snapshot())
	ed.OnChange(s.publish)
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.cors())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "clients": s.clientCount()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", s.handleWebSocket)

	api := r.Group("/api")
	api.GET("/frame", s.handleFrame)
	api.POST("/states", s.handleAddState)
	api.POST("/arrange", s.handleArrange)
	api.GET("/export/:format", s.handleExport)
	return r
}

// cors mirrors the allow list onto browser preflights.
func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && s.cfg.OriginAllowed(origin, c.Request.Host) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type")
			c.Header("Access-Control-Max-Age", "3600")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// publish is the editor observer. It runs on the loop goroutine, so it only
// encodes and queues; socket writes happen on each client's writer.
func (s *Server) publish(snap editor.Snapshot) {
	f := render.Project(snap, s.opts.Render)
	data, err := sonic.Marshal(Message{Type: MsgFrame, Frame: &f})
	if err != nil {
		s.log.Error("encode frame", "error", err)
		return
	}

	s.mu.Lock()
	s.latest = snap
	s.frame = f
	s.frameMsg = data
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.enqueue(data)
	}
}

func (s *Server) snapshot() (editor.Snapshot, render.Frame) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.frame
}

func (s *Server) clientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) handleFrame(c *gin.Context) {
	_, f := s.snapshot()
	c.JSON(http.StatusOK, f)
}

func (s *Server) handleAddState(c *gin.Context) {
	s.post(c, editor.AddNode{})
}

// handleArrange lays out the diagram on the loop goroutine, so it sees the
// graph as of the moment it runs rather than the last published frame.
func (s *Server) handleArrange(c *gin.Context) {
	alg, err := layout.ParseAlgorithm(c.Query("algorithm"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.post(c, editor.CommandFunc(func(e *editor.Editor) error {
		return render.ArrangeNodes(e.Graph(), alg, s.arrangeOptions()).Apply(e)
	}))
}

func (s *Server) arrangeOptions() layout.Options {
	return layout.ForNodeSize(s.opts.Render.NodeWidth, s.opts.Render.NodeHeight)
}

func (s *Server) post(c *gin.Context, cmd editor.Command) {
	err := s.loop.Post(c.Request.Context(), cmd)
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
	case errors.Is(err, editor.ErrNotMounted), errors.Is(err, editor.ErrStopped):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (s *Server) handleExport(c *gin.Context) {
	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snap, _ := s.snapshot()

	var buf bytes.Buffer
	if err := export.Write(&buf, snap, format, s.opts); err != nil {
		if errors.Is(err, export.ErrCanvasTooLarge) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		s.log.Error("export failed", "format", format, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="diagram%s"`, format.Ext()))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("bridge listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.closeClients()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

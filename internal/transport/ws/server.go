// Package ws is the websocket edge of the engine. Clients send JSON
// requests; the driver goroutine drains them with Pump and the server pushes
// chunk snapshots and edit deltas back as zstd binary frames.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"voxcore/internal/voxel"
	"voxcore/internal/wire"
	"voxcore/internal/world"
)

// Engine is the part of the chunk system the transport drives.
type Engine interface {
	SetViewer(viewer mgl32.Vec3)
	Break(center world.Pos, radius, strength float32) int
	Place(center world.Pos, radius, strength float32, material uint16, shape voxel.Shape) (int, error)
	Snapshot(origin world.Pos) (wire.Payload, error)
	DrainEdits() []wire.Payload
}

// Request is a validated client message tagged with its session.
type Request struct {
	SessionID string
	Msg       ClientMsg
}

type frame struct {
	kind int
	data []byte
}

type session struct {
	id      string
	out     chan frame
	limiter *rate.Limiter
	sent    atomic.Uint64
}

// Options tunes a Server.
type Options struct {
	EditsPerSecond float64
	EditBurst      int
	OutQueue       int
}

type Server struct {
	log      *log.Logger
	upgrader websocket.Upgrader
	opts     Options

	inbox chan Request

	mu       sync.Mutex
	sessions map[string]*session
}

func NewServer(opts Options, logger *log.Logger) *Server {
	if opts.OutQueue <= 0 {
		opts.OutQueue = 64
	}
	if opts.EditBurst < 1 {
		opts.EditBurst = 1
	}
	return &Server{
		log:  logger,
		opts: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		inbox:    make(chan Request, 256),
		sessions: make(map[string]*session),
	}
}

// Sessions returns the number of connected clients.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess := s.register()
		defer s.unregister(sess)
		s.log.Printf("session %s connected from %s", sess.id, r.RemoteAddr)

		if err := writeJSON(conn, WelcomeMsg{Type: TypeWelcome, SessionID: sess.id, ChunkSize: world.ChunkSize}); err != nil {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case f := <-sess.out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(f.kind, f.data); err != nil {
						cancel()
						return
					}
					sess.sent.Add(uint64(len(f.data)))
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}
			msg, err := DecodeClientMsg(raw)
			if err != nil {
				s.sendError(sess, err.Error())
				continue
			}
			if msg.Type == TypeEdit && !sess.limiter.Allow() {
				s.sendError(sess, "edit rate exceeded")
				continue
			}
			select {
			case s.inbox <- Request{SessionID: sess.id, Msg: msg}:
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				break
			}
		}
		s.log.Printf("session %s closed, sent %s", sess.id, humanize.Bytes(sess.sent.Load()))
	}
}

func (s *Server) register() *session {
	sess := &session{
		id:      uuid.NewString(),
		out:     make(chan frame, s.opts.OutQueue),
		limiter: rate.NewLimiter(rate.Limit(s.opts.EditsPerSecond), s.opts.EditBurst),
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	return sess
}

func (s *Server) unregister(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
}

// enqueue drops the frame when the client falls behind; it can ask for a
// fresh snapshot.
func enqueue(sess *session, f frame) bool {
	select {
	case sess.out <- f:
		return true
	default:
		return false
	}
}

// Send queues a payload for one session.
func (s *Server) Send(sessionID string, p wire.Payload) bool {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	return enqueue(sess, frame{kind: websocket.BinaryMessage, data: wire.Encode(p)})
}

// Broadcast queues a payload for every session and returns how many
// accepted it.
func (s *Server) Broadcast(p wire.Payload) int {
	data := wire.Encode(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sess := range s.sessions {
		if enqueue(sess, frame{kind: websocket.BinaryMessage, data: data}) {
			n++
		}
	}
	return n
}

func (s *Server) sendError(sess *session, msg string) {
	b, _ := json.Marshal(ErrorMsg{Type: TypeError, Message: msg})
	enqueue(sess, frame{kind: websocket.TextMessage, data: b})
}

func (s *Server) sendErrorTo(sessionID, msg string) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if ok {
		s.sendError(sess, msg)
	}
}

// Pump applies every queued request to e and broadcasts the edits e
// recorded. It never blocks and must run on the driver goroutine. It returns
// the number of requests handled.
func (s *Server) Pump(e Engine) int {
	n := 0
loop:
	for {
		select {
		case r := <-s.inbox:
			s.handle(e, r)
			n++
		default:
			break loop
		}
	}
	for _, p := range e.DrainEdits() {
		s.Broadcast(p)
	}
	return n
}

func (s *Server) handle(e Engine, r Request) {
	m := r.Msg
	switch m.Type {
	case TypeViewer:
		e.SetViewer(mgl32.Vec3(m.Pos))
	case TypeChunk:
		origin := world.Pos{X: m.Origin[0], Y: m.Origin[1], Z: m.Origin[2]}
		p, err := e.Snapshot(origin)
		if err != nil {
			s.sendErrorTo(r.SessionID, err.Error())
			return
		}
		s.Send(r.SessionID, p)
	case TypeEdit:
		at := world.PosFromVec3(mgl32.Vec3(m.Pos))
		if m.Op == "break" {
			e.Break(at, m.Radius, m.Strength)
			return
		}
		shape, _ := voxel.ParseShape(m.Shape)
		if _, err := e.Place(at, m.Radius, m.Strength, m.Material, shape); err != nil {
			s.sendErrorTo(r.SessionID, err.Error())
		}
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}

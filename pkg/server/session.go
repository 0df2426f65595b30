package server

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/vango-dev/dragdrop/pkg/protocol"
)

// Session is one WebSocket connection and the Host it drives.
type Session struct {
	ID string

	conn    *websocket.Conn
	host    *Host
	config  *ServerConfig
	metrics *metrics
	logger  *slog.Logger
	moves   *rate.Limiter

	// mu serializes writes to conn.
	mu      sync.Mutex
	sendSeq uint64
	closed  atomic.Bool
	done    chan struct{}
}

func newSession(id string, conn *websocket.Conn, host *Host, config *ServerConfig, m *metrics, logger *slog.Logger) *Session {
	return &Session{
		ID:      id,
		conn:    conn,
		host:    host,
		config:  config,
		metrics: m,
		logger:  logger.With("session_id", id),
		moves:   newMoveLimiter(config),
		done:    make(chan struct{}),
	}
}

func newMoveLimiter(config *ServerConfig) *rate.Limiter {
	if config.MoveRate <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(config.MoveRate), config.MoveBurst)
}

// Done is closed when the session closes.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// ReadLoop reads frames until the connection fails or the session is
// closed. Events are applied in arrival order and every event's patches
// are sent before the next frame is read.
func (s *Session) ReadLoop() {
	defer func() {
		s.Close()
		s.host.Close()
	}()

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			switch {
			case errors.Is(err, websocket.ErrReadLimit):
				s.sendError(protocol.NewFatalError(protocol.ErrMessageTooLarge, "message exceeds read limit"))
			case websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure):
				s.logger.Error("read error", "error", err)
			}
			return
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.metrics.decodeError()
			s.logger.Warn("frame decode error", "error", err)
			s.sendError(protocol.NewError(protocol.ErrInvalidFrame, err.Error()))
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			s.handleEventFrame(frame.Payload)
		default:
			s.logger.Warn("unexpected frame type", "type", frame.Type)
			s.sendError(protocol.NewError(protocol.ErrInvalidFrame, "unexpected "+frame.Type.String()+" frame"))
		}
	}
}

func (s *Session) handleEventFrame(payload []byte) {
	ev, err := protocol.DecodeEvent(payload)
	if err != nil {
		s.metrics.decodeError()
		s.logger.Warn("event decode error", "error", err)
		s.sendError(protocol.NewError(protocol.ErrInvalidEvent, err.Error()))
		return
	}

	// The next accepted move repositions the entity, so a dropped one is
	// never visible for long.
	if ev.Type == protocol.EventPointerMove && !s.moves.Allow() {
		s.metrics.rateLimited()
		s.logger.Debug("pointer move dropped", "seq", ev.Seq)
		return
	}

	// The client suppresses default handling itself; see injectScript.
	if _, err := s.host.Apply(ev); err != nil {
		s.logger.Warn("event rejected", "type", ev.Type, "seq", ev.Seq, "error", err)
		s.sendError(protocol.NewError(protocol.ErrInvalidEvent, err.Error()))
		return
	}

	if patches := s.host.TakePatches(); len(patches) > 0 {
		if err := s.SendPatches(patches); err != nil {
			s.logger.Error("write error", "error", err)
			s.Close()
		}
	}
}

// SendPatches sends patches to the client, split over several frames when
// one would exceed the frame size limit.
func (s *Session) SendPatches(patches []protocol.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}
	return s.sendPatchesLocked(patches)
}

func (s *Session) sendPatchesLocked(patches []protocol.Patch) error {
	s.sendSeq++
	payload, err := protocol.EncodePatches(&protocol.PatchesFrame{Seq: s.sendSeq, Patches: patches})
	if err != nil {
		s.sendSeq--
		return err
	}
	if len(payload) > protocol.MaxPayloadSize {
		s.sendSeq--
		if len(patches) == 1 {
			return protocol.ErrFrameTooLarge
		}
		half := len(patches) / 2
		if err := s.sendPatchesLocked(patches[:half]); err != nil {
			return err
		}
		return s.sendPatchesLocked(patches[half:])
	}

	if err := s.writeFrameLocked(protocol.NewFrame(protocol.FramePatches, payload)); err != nil {
		return err
	}
	s.metrics.patches(len(patches))
	return nil
}

func (s *Session) sendError(em *protocol.ErrorMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return
	}
	if err := s.writeFrameLocked(protocol.NewFrame(protocol.FrameError, protocol.EncodeErrorMessage(em))); err != nil {
		s.logger.Debug("error frame not delivered", "code", em.Code, "error", err)
	}
}

func (s *Session) writeFrameLocked(f *protocol.Frame) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return s.conn.WriteMessage(websocket.BinaryMessage, data)
}

// Close closes the connection, which ends ReadLoop. It is safe to call
// more than once and from any goroutine.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}
	close(s.done)

	s.mu.Lock()
	s.conn.SetWriteDeadline(time.Now().Add(time.Second))
	s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
	s.mu.Unlock()
	s.conn.Close()
}

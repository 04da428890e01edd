package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pricestream/relay/internal/model"
)

// session wraps one downstream WebSocket connection as a hub subscriber.
type session struct {
	id           string
	conn         *websocket.Conn
	writeTimeout time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func newSession(conn *websocket.Conn, writeTimeout time.Duration) *session {
	return &session{
		id:           uuid.NewString(),
		conn:         conn,
		writeTimeout: writeTimeout,
	}
}

func (s *session) ID() string { return s.id }

// Send writes one price point as a JSON text frame. Writes are serialized
// so the catch-up path and the broadcaster never interleave frames.
func (s *session) Send(pt model.PricePoint) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	return s.conn.WriteJSON(pt)
}

// Close sends a close frame and tears the connection down. The read loop
// and a failed broadcast may both call it; only the first does the work.
func (s *session) Close() error {
	s.closeOnce.Do(func() {
		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

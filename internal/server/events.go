package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/store"
)

// subscriber is one websocket client. events is closed when the client is
// dropped.
type subscriber struct {
	events chan store.Event
}

// hub fans store events out to websocket subscribers. publish runs on the
// goroutine that mutated the store and never blocks: a subscriber whose
// buffer is full is dropped.
type hub struct {
	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	buffer int
	logger *zap.Logger
}

func newHub(buffer int, logger *zap.Logger) *hub {
	return &hub{
		subs:   make(map[*subscriber]struct{}),
		buffer: buffer,
		logger: logger,
	}
}

func (h *hub) subscribe() *subscriber {
	sub := &subscriber{events: make(chan store.Event, h.buffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *hub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.events)
	}
}

func (h *hub) publish(event store.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.events <- event:
		default:
			h.logger.Warn("dropping slow event subscriber", zap.Int("buffer", h.buffer))
			delete(h.subs, sub)
			close(sub.events)
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		delete(h.subs, sub)
		close(sub.events)
	}
}

func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// events upgrades to a websocket and streams store events as JSON messages
// until the client goes away or falls behind.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	// subscribe first so no event between the handshake and the loop is lost
	sub := s.hub.subscribe()
	defer s.hub.unsubscribe(sub)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case event, ok := <-sub.events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "subscriber dropped"))
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				s.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}

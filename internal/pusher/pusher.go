// Package pusher is the realtime notification channel: fire-and-forget,
// at-most-once delivery of lightweight battle events to subscribed
// spectators. The hub is constructed once at service start and injected
// into the battle service; nothing in the core depends on delivery
// success.
package pusher

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/Northern-Fayt/TheNinjaRPG/internal/constants"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/logging"
)

// Pusher publishes an event payload to every subscriber of a channel.
type Pusher interface {
	Publish(channel string, payload interface{})
}

// Event is the version-bump notification sent when a battle commits.
type Event struct {
	Type     string `json:"type"`
	BattleID uint   `json:"battle_id"`
	Version  int64  `json:"version"`
}

type subscriber struct {
	ch chan []byte
}

// Hub fans messages out to websocket subscribers per channel. Slow
// subscribers drop messages rather than block a publish.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// Publish implements Pusher.
func (h *Hub) Publish(channel string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("failed to marshal pusher payload", err, logging.Fields{constants.LogFieldChannel: channel})
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[channel] {
		select {
		case s.ch <- data:
		default:
			// subscriber is lagging; drop rather than block
		}
	}
}

func (h *Hub) subscribe(channel string) *subscriber {
	s := &subscriber{ch: make(chan []byte, 8)}
	h.mu.Lock()
	if h.subs[channel] == nil {
		h.subs[channel] = make(map[*subscriber]struct{})
	}
	h.subs[channel][s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *Hub) unsubscribe(channel string, s *subscriber) {
	h.mu.Lock()
	if set, ok := h.subs[channel]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, channel)
		}
	}
	h.mu.Unlock()
}

// ServeChannel upgrades the request to a websocket and streams the
// channel's events until the client goes away.
func (h *Hub) ServeChannel(w http.ResponseWriter, r *http.Request, channel string) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logging.Error("failed to accept websocket", err, logging.Fields{constants.LogFieldChannel: channel})
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	sub := h.subscribe(channel)
	defer h.unsubscribe(channel, sub)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-sub.ch:
			if err := writeWithTimeout(ctx, conn, msg); err != nil {
				return
			}
		}
	}
}

func writeWithTimeout(ctx context.Context, conn *websocket.Conn, msg []byte) error {
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(wctx, websocket.MessageText, msg)
}

const writeTimeout = 5 * time.Second

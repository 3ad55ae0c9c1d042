package server

import (
	"context"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// ReloadMessage is pushed to every observer after a successful rebuild.
const ReloadMessage = "reload"

const (
	// Time allowed to write a message to an observer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from an observer.
	pongWait = 60 * time.Second

	// Ping period, must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Pending messages per observer before it is dropped as unreachable.
	observerBuffer = 4
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // The page is served from another port
	},
}

type observer struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub keeps the connected reload observers and fans messages out to them.
// Attach, detach and broadcast are serialized by Run.
type Hub struct {
	register   chan *observer
	unregister chan *observer
	broadcast  chan []byte
	done       chan struct{}

	count atomic.Int64
}

// NewHub creates a Hub. Run must be called for it to deliver anything.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *observer),
		unregister: make(chan *observer),
		broadcast:  make(chan []byte, 8),
		done:       make(chan struct{}),
	}
}

// Count returns the number of attached observers.
func (h *Hub) Count() int {
	return int(h.count.Load())
}

// Broadcast queues msg for every attached observer. It never blocks: when
// the queue is full, an equivalent message is already pending.
func (h *Hub) Broadcast(msg string) {
	select {
	case h.broadcast <- []byte(msg):
	default:
	}
}

// Run owns the observer set until ctx is done, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) error {
	observers := make(map[*observer]struct{})
	defer close(h.done)

	drop := func(o *observer) {
		if _, ok := observers[o]; ok {
			delete(observers, o)
			close(o.send)
			h.count.Store(int64(len(observers)))
		}
	}

	for {
		select {
		case <-ctx.Done():
			for o := range observers {
				drop(o)
			}
			return nil

		case o := <-h.register:
			observers[o] = struct{}{}
			h.count.Store(int64(len(observers)))
			log.Printf("[Hub] Observer attached: %d active", len(observers))

		case o := <-h.unregister:
			drop(o)

		case msg := <-h.broadcast:
			sent := 0
			for o := range observers {
				select {
				case o.send <- msg:
					sent++
				default:
					// Stalled observer, drop it rather than wait
					drop(o)
				}
			}
			log.Printf("[Hub] Sent %q to %d observers", msg, sent)
		}
	}
}

// ServeHTTP upgrades the request and attaches the connection as an
// observer until it goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Hub] Upgrade failed: %v", err)
		return
	}

	o := &observer{conn: conn, send: make(chan []byte, observerBuffer)}
	select {
	case h.register <- o:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(o)
	h.readPump(o)
}

// readPump discards inbound messages and detaches the observer once the
// connection fails.
func (h *Hub) readPump(o *observer) {
	defer func() {
		select {
		case h.unregister <- o:
		case <-h.done:
		}
		o.conn.Close()
	}()

	o.conn.SetReadLimit(512)
	o.conn.SetReadDeadline(time.Now().Add(pongWait))
	o.conn.SetPongHandler(func(string) error {
		return o.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := o.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(o *observer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		o.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-o.send:
			o.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				o.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := o.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			o.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := o.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package ws

import (
	"log"
	"net/http"
	"sync"

	"github.com/luca0405/bean-stalker-app2-sub000/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// SyncFeed pushes catalog-sync progress events to connected operator UIs
// over WebSocket. It implements services.ProgressPublisher.
type SyncFeed struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan services.ProgressEvent
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.Mutex
}

func NewSyncFeed() *SyncFeed {
	return &SyncFeed{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan services.ProgressEvent, 64),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

// Run services register/unregister/broadcast until the process exits.
func (f *SyncFeed) Run() {
	for {
		select {
		case conn := <-f.register:
			f.mu.Lock()
			f.clients[conn] = true
			f.mu.Unlock()

		case conn := <-f.unregister:
			f.mu.Lock()
			if _, ok := f.clients[conn]; ok {
				delete(f.clients, conn)
				conn.Close()
			}
			f.mu.Unlock()

		case event := <-f.broadcast:
			f.mu.Lock()
			for conn := range f.clients {
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("ws write error: %v", err)
					conn.Close()
					delete(f.clients, conn)
				}
			}
			f.mu.Unlock()
		}
	}
}

// Publish queues an event for broadcast. A sync run must never block on a
// slow or absent feed, so events are dropped when the buffer is full.
func (f *SyncFeed) Publish(event services.ProgressEvent) {
	select {
	case f.broadcast <- event:
	default:
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WS route: /admin/sync/feed
func (f *SyncFeed) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	f.register <- conn
	go f.drain(conn)
}

// drain keeps the read side alive so close frames are noticed; the feed is
// one-directional and inbound payloads are discarded.
func (f *SyncFeed) drain(conn *websocket.Conn) {
	defer func() { f.unregister <- conn }()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

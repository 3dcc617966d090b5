package websocket

import (
	"log"
	"sync"
)

type HubInterface interface {
	BroadcastToGame(gameID string, msg OutgoingMessage)
	Close()
}

// Hub 按牌局分房间。同一局的 host 和 guest 挂在同一个 room，
// 状态变更整房广播
type Hub struct {
	rooms      map[string]map[*Client]bool // gameID -> clients
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastReq
	incoming   chan IncomingMessage
	OnIncoming func(IncomingMessage)
	// 房间第一个观众进来/最后一个走掉时回调，
	// GameManager 用它开关 store 的订阅
	OnFirstViewer func(gameID string)
	OnLastViewer  func(gameID string)
	quit          chan struct{}
	mu            sync.RWMutex
}

type broadcastReq struct {
	GameID  string
	Message OutgoingMessage
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastReq),
		incoming:   make(chan IncomingMessage),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {

	log.Println("Hub started")

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[c.GameID]
			if !ok {
				room = make(map[*Client]bool)
				h.rooms[c.GameID] = room
			}
			room[c] = true
			log.Printf("Hub.register -> game=%s role=%s (房间人数: %d)", c.GameID, c.Role, len(room))
			h.mu.Unlock()

			if !ok && h.OnFirstViewer != nil {
				h.OnFirstViewer(c.GameID)
			}

		case c := <-h.unregister:
			h.mu.Lock()
			var empty bool
			if room, ok := h.rooms[c.GameID]; ok {
				if _, in := room[c]; in {
					delete(room, c)
					close(c.Send)
					log.Printf("Hub.unregister -> game=%s role=%s (房间人数: %d)", c.GameID, c.Role, len(room))
				}
				if len(room) == 0 {
					delete(h.rooms, c.GameID)
					empty = true
				}
			}
			h.mu.Unlock()

			if empty && h.OnLastViewer != nil {
				h.OnLastViewer(c.GameID)
			}

		case req := <-h.broadcast:
			h.mu.RLock()
			for client := range h.rooms[req.GameID] {
				select {
				case client.Send <- req.Message:
				default:
					// 慢客户端直接丢，别拖住整局
				}
			}
			h.mu.RUnlock()

		case req := <-h.incoming:
			// !!!! 玩家消息统一转发给游戏层（GameManager）
			if h.OnIncoming != nil {
				h.OnIncoming(req)
			}

		case <-h.quit:
			h.mu.Lock()
			for _, room := range h.rooms {
				for c := range room {
					close(c.Send)
				}
			}
			h.rooms = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return
		}
	}
}

// BroadcastToGame 把消息推给整个房间
func (h *Hub) BroadcastToGame(gameID string, msg OutgoingMessage) {
	h.broadcast <- broadcastReq{
		GameID:  gameID,
		Message: msg,
	}
}

// ViewerCount 房间当前连接数
func (h *Hub) ViewerCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[gameID])
}

func (h *Hub) Close() {
	close(h.quit)
}

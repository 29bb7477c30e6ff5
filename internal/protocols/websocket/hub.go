// Package websocket - Whiteboard Chat Protocol Handler
// Implements real-time per-whiteboard chat rooms with message persistence
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"suitec/internal/core"
	"suitec/pkg/logger"
	"suitec/pkg/models"
)

const (
	maxMessageSize  = 8192
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	historyLimit    = 50
	maxRoomSize     = 200
	cleanupInterval = 5 * time.Minute
)

// Hub manages all whiteboard chat rooms and client connections
type Hub struct {
	roomsMu       sync.RWMutex
	rooms         map[string]*Room // whiteboard_id -> Room
	whiteboardSvc core.WhiteboardService
	stop          chan struct{}
	wg            sync.WaitGroup
}

// Room represents the chat room of a single whiteboard
type Room struct {
	whiteboardID string
	clientsMu    sync.RWMutex
	clients      map[*Client]bool
	broadcast    chan *Message
	register     chan *Client
	unregister   chan *Client
	stopped      bool
	stop         chan struct{}
}

// Client represents a WebSocket client connection
type Client struct {
	hub          *Hub
	room         *Room
	conn         *websocket.Conn
	send         chan *Message
	user         *models.User
	whiteboardID string
	lastActive   time.Time
}

// Message is the wire format for whiteboard chat frames
type Message struct {
	Type         string    `json:"type"` // "message", "join", "leave", "history", "error"
	UserID       string    `json:"user_id"`
	FullName     string    `json:"full_name"`
	WhiteboardID string    `json:"whiteboard_id"`
	Body         string    `json:"body"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewHub creates a new chat hub. Chat messages are persisted through the
// whiteboard service so websocket sends and REST sends follow the same
// membership and validation rules.
func NewHub(whiteboardSvc core.WhiteboardService) *Hub {
	hub := &Hub{
		rooms:         make(map[string]*Room),
		whiteboardSvc: whiteboardSvc,
		stop:          make(chan struct{}),
	}

	hub.wg.Add(1)
	go hub.cleanupRooms()

	return hub
}

// cleanupRooms periodically removes empty rooms
func (h *Hub) cleanupRooms() {
	defer h.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.roomsMu.Lock()
			for whiteboardID, room := range h.rooms {
				room.clientsMu.RLock()
				clientCount := len(room.clients)
				room.clientsMu.RUnlock()

				if clientCount == 0 {
					close(room.stop)
					delete(h.rooms, whiteboardID)
					logger.WebSocket(whiteboardID, "room_cleanup", "")
				}
			}
			h.roomsMu.Unlock()

		case <-h.stop:
			return
		}
	}
}

// GetOrCreateRoom returns the existing room or creates one for a whiteboard
func (h *Hub) GetOrCreateRoom(whiteboardID string) *Room {
	h.roomsMu.Lock()
	defer h.roomsMu.Unlock()

	if room, exists := h.rooms[whiteboardID]; exists {
		return room
	}

	room := &Room{
		whiteboardID: whiteboardID,
		clients:      make(map[*Client]bool),
		broadcast:    make(chan *Message, 256),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		stop:         make(chan struct{}),
	}

	h.rooms[whiteboardID] = room
	go room.run()

	logger.WebSocket(whiteboardID, "room_created", "")
	return room
}

// run handles room operations
func (r *Room) run() {
	for {
		select {
		case client := <-r.register:
			r.handleRegister(client)
		case client := <-r.unregister:
			r.handleUnregister(client)
		case message := <-r.broadcast:
			r.handleBroadcast(message)
		case <-r.stop:
			r.handleStop()
			return
		}
	}
}

func (r *Room) handleRegister(client *Client) {
	if r.stopped {
		return
	}

	r.clientsMu.Lock()
	if len(r.clients) >= maxRoomSize {
		r.clientsMu.Unlock()
		logger.Warnf("room %s full, rejecting client %s", r.whiteboardID, client.user.ID)
		return
	}
	r.clients[client] = true
	r.clientsMu.Unlock()

	logger.WebSocket(r.whiteboardID, "client_joined", client.user.ID)

	r.broadcastToAll(&Message{
		Type:         "join",
		UserID:       client.user.ID,
		FullName:     client.user.FullName,
		WhiteboardID: r.whiteboardID,
		Timestamp:    time.Now(),
	})
}

func (r *Room) handleUnregister(client *Client) {
	if r.stopped {
		return
	}

	r.clientsMu.Lock()
	if _, ok := r.clients[client]; ok {
		delete(r.clients, client)
		close(client.send)
	}
	r.clientsMu.Unlock()

	logger.WebSocket(r.whiteboardID, "client_left", client.user.ID)

	r.broadcastToAll(&Message{
		Type:         "leave",
		UserID:       client.user.ID,
		FullName:     client.user.FullName,
		WhiteboardID: r.whiteboardID,
		Timestamp:    time.Now(),
	})
}

func (r *Room) handleBroadcast(message *Message) {
	if r.stopped {
		return
	}
	r.broadcastToAll(message)
}

// handleStop cleans up room resources
func (r *Room) handleStop() {
	r.stopped = true

	r.clientsMu.Lock()
	for client := range r.clients {
		close(client.send)
		client.conn.Close()
	}
	r.clients = nil
	r.clientsMu.Unlock()

	logger.WebSocket(r.whiteboardID, "room_stopped", "")
}

// broadcastToAll sends a message to every client in the room
func (r *Room) broadcastToAll(message *Message) {
	r.clientsMu.RLock()
	defer r.clientsMu.RUnlock()

	for client := range r.clients {
		select {
		case client.send <- message:
		default:
			// Client send buffer full, remove client
			logger.Warnf("client %s send buffer full, disconnecting", client.user.ID)
			r.unregister <- client
		}
	}
}

// readPump reads messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.room.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.lastActive = time.Now()
		return nil
	})

	for {
		_, messageData, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warnf("websocket read error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(messageData, &msg); err != nil {
			c.sendError("invalid_format", "invalid JSON format")
			continue
		}

		if len(msg.Body) > models.MaxCommentLength {
			c.sendError("content_too_long", "message body too long")
			continue
		}

		// Persist through the whiteboard service so the message lands in
		// chat history and the daily digest window queries
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		saved, err := c.hub.whiteboardSvc.SendChatMessage(ctx, c.user, c.whiteboardID, &models.SendChatMessageRequest{
			Body: msg.Body,
		})
		cancel()
		if err != nil {
			logger.Errorf("failed to save chat message: %v", err)
			c.sendError("save_failed", "failed to save message")
			continue
		}

		c.room.broadcast <- &Message{
			Type:         "message",
			UserID:       c.user.ID,
			FullName:     c.user.FullName,
			WhiteboardID: c.whiteboardID,
			Body:         saved.Body,
			Timestamp:    saved.CreatedAt,
		}
	}
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Client was unregistered
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(message)
			if err != nil {
				logger.Errorf("failed to marshal message: %v", err)
				continue
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.room.stop:
			return
		}
	}
}

// sendError sends an error frame to the client
func (c *Client) sendError(code, message string) {
	errMsg := &Message{
		Type:         "error",
		UserID:       "system",
		FullName:     "System",
		WhiteboardID: c.whiteboardID,
		Body:         fmt.Sprintf("error [%s]: %s", code, message),
		Timestamp:    time.Now(),
	}

	select {
	case c.send <- errMsg:
	default:
		// Don't block if channel is full
	}
}

// ServeClient registers a connection with its whiteboard's room and starts
// the read/write pumps
func (h *Hub) ServeClient(conn *websocket.Conn, user *models.User, whiteboardID string) {
	room := h.GetOrCreateRoom(whiteboardID)

	client := &Client{
		hub:          h,
		room:         room,
		conn:         conn,
		send:         make(chan *Message, 256),
		user:         user,
		whiteboardID: whiteboardID,
		lastActive:   time.Now(),
	}

	room.register <- client

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()

	go h.sendChatHistory(client)
}

// sendChatHistory replays recent messages to a newly connected client
func (h *Hub) sendChatHistory(client *Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	history, err := h.whiteboardSvc.GetChatHistory(ctx, client.whiteboardID, historyLimit, 0)
	if err != nil {
		logger.Warnf("failed to get chat history for %s: %v", client.whiteboardID, err)
		return
	}

	// Oldest first so the client renders in order
	for i := len(history.Data) - 1; i >= 0; i-- {
		msg := history.Data[i]

		fullName := ""
		if msg.User != nil {
			fullName = msg.User.FullName
		}

		historyMsg := &Message{
			Type:         "history",
			UserID:       msg.UserID,
			FullName:     fullName,
			WhiteboardID: msg.WhiteboardID,
			Body:         msg.Body,
			Timestamp:    msg.CreatedAt,
		}

		select {
		case client.send <- historyMsg:
		case <-time.After(2 * time.Second):
			// Slow client, stop replaying history
			return
		}
	}
}

// GetRoomClientCount returns the number of clients in a room
func (h *Hub) GetRoomClientCount(whiteboardID string) int {
	h.roomsMu.RLock()
	defer h.roomsMu.RUnlock()

	if room, exists := h.rooms[whiteboardID]; exists {
		room.clientsMu.RLock()
		defer room.clientsMu.RUnlock()
		return len(room.clients)
	}
	return 0
}

// Stop gracefully shuts down the hub
func (h *Hub) Stop() {
	close(h.stop)

	h.roomsMu.Lock()
	for _, room := range h.rooms {
		close(room.stop)
	}
	h.roomsMu.Unlock()

	h.wg.Wait()
	logger.Info("websocket hub stopped")
}

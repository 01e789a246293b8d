// Package websocket pushes fresh statistics snapshots to connected users
// whenever one of their coins' statistics change.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/SAYREKAS/CryptoSphereAPI/internal/models"
)

type Client struct {
	Manager *Manager
	Conn    *websocket.Conn
	UserID  uint
	Send    chan []byte
}

type Manager struct {
	clients    map[uint]*Client
	mu         sync.RWMutex
	register   chan *Client
	unregister chan *Client
	log        *slog.Logger
}

func NewManager(log *slog.Logger) *Manager {
	return &Manager{
		clients:    make(map[uint]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Run processes client registrations and statistics updates until ctx is
// canceled. updates may be nil when redis fan-out is disabled.
func (m *Manager) Run(ctx context.Context, updates <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			m.log.Info("websocket manager stopping...")
			return
		case client := <-m.register:
			m.registerClient(client)
		case client := <-m.unregister:
			m.unregisterClient(client)
		case payload, ok := <-updates:
			if !ok {
				m.log.Warn("statistics update stream closed")
				updates = nil
				continue
			}
			m.dispatch(payload)
		}
	}
}

func (m *Manager) Register(client *Client) {
	m.register <- client
}

func (m *Manager) Unregister(client *Client) {
	m.unregister <- client
}

func (m *Manager) registerClient(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if oldClient, exists := m.clients[client.UserID]; exists {
		m.log.Warn("client re-registering, closing old connection", "userID", client.UserID)
		close(oldClient.Send)
		oldClient.Conn.Close()
	}

	m.clients[client.UserID] = client
	m.log.Info("new client registered", "userID", client.UserID)
}

func (m *Manager) unregisterClient(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.clients[client.UserID]; ok && current == client {
		delete(m.clients, client.UserID)
		m.log.Info("client unregistered", "userID", client.UserID)
	}
}

func (m *Manager) dispatch(payload []byte) {
	var event models.TransactionAppliedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		m.log.Error("failed to parse statistics update", "error", err)
		return
	}

	m.mu.RLock()
	client, ok := m.clients[event.UserID]
	m.mu.RUnlock()
	if !ok {
		return
	}

	snapshot, err := json.Marshal(event.Statistics)
	if err != nil {
		m.log.Error("failed to marshal statistics snapshot", "error", err)
		return
	}

	select {
	case client.Send <- snapshot:
	default:
		m.log.Warn("client send channel is full, dropping message", "userID", client.UserID)
	}
}

func (c *Client) Writer() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Manager.log.Warn("failed to write message to client", "userID", c.UserID)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) Reader() {
	defer func() {
		c.Manager.Unregister(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Manager.log.Warn("unexpected close error", "userID", c.UserID, "error", err)
			}
			break
		}
	}
}

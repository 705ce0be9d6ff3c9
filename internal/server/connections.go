package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// ConnectionManager maps connection IDs to live websockets. The connection ID
// doubles as the player ID everywhere else, so delivery to a player is a
// single map lookup.
type ConnectionManager struct {
	connections map[string]*websocket.Conn
	mu          sync.RWMutex
	logger      *slog.Logger
}

func NewConnectionManager(logger *slog.Logger) *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*websocket.Conn),
		logger:      logger,
	}
}

func (cm *ConnectionManager) AddConnection(id string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.connections[id] = conn
}

func (cm *ConnectionManager) RemoveConnection(id string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	delete(cm.connections, id)
}

func (cm *ConnectionManager) GetConnection(id string) *websocket.Conn {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.connections[id]
}

func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

// Send delivers one message to one connection. A missing or failed connection
// is logged and dropped; the room's timers provide forward progress when a
// recipient is gone.
func (cm *ConnectionManager) Send(playerID string, msg ServerMessage) {
	conn := cm.GetConnection(playerID)
	if conn == nil {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		cm.logger.Error("marshaling server message", "type", msg.Type, "error", err)
		return
	}

	if err := conn.Write(context.Background(), websocket.MessageText, data); err != nil {
		cm.logger.Warn("writing to connection", "player", playerID, "type", msg.Type, "error", err)
	}
}

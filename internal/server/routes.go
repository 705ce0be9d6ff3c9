package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"impostor-server/internal/game"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.corsMiddleware)

	r.Get("/", s.helloHandler)
	r.Get("/health", s.healthHandler)
	r.Get("/categories", s.categoriesHandler)
	r.Get("/websocket", s.websocketHandler)

	return r
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) helloHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s, map[string]string{"message": "impostor server"})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":      "ok",
		"rooms":       s.roomManager.RoomCount(),
		"connections": s.connectionManager.Count(),
	}
	writeJSON(w, s, resp)
}

func (s *Server) categoriesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s, map[string]any{"categories": game.Categories()})
}

func writeJSON(w http.ResponseWriter, s *Server, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("writing response", "error", err)
	}
}

func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	socket, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		http.Error(w, "Failed to open websocket", http.StatusInternalServerError)
		return
	}
	defer socket.Close(websocket.StatusGoingAway, "Server closing")

	ctx := r.Context()

	connectionID := uuid.New().String()
	s.logger.Info("new connection", "connection", connectionID)
	s.connectionManager.AddConnection(connectionID, socket)

	defer func() {
		s.connectionManager.RemoveConnection(connectionID)
		s.rateLimiter.RemoveConnection(connectionID)
		s.logger.Info("connection closed", "connection", connectionID)

		// Transport-level disconnect doubles as a leave: route it to the
		// player's room if they were in one.
		if m, err := s.playerRegistry.Get(connectionID); err == nil {
			s.roomManager.RemoveMember(m.RoomCode, connectionID)
			s.playerRegistry.Remove(connectionID)
		}
	}()

	for {
		msgType, data, err := socket.Read(ctx)
		if err != nil {
			return
		}

		if msgType != websocket.MessageText {
			continue
		}

		if !s.rateLimiter.Allow(connectionID) {
			s.sendError(socket, ctx, "RATE_LIMITED: Too many messages, slow down")
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("invalid JSON", "connection", connectionID, "error", err)
			s.sendError(socket, ctx, "Invalid JSON")
			continue
		}

		switch msg.Type {
		case "ping":
			s.handlePing(socket, ctx)

		case "createRoom":
			s.handleCreateRoom(socket, ctx, connectionID, msg.Payload)

		case "joinRoom":
			s.handleJoinRoom(socket, ctx, connectionID, msg.Payload)

		case "startGame":
			s.handleStartGame(socket, ctx, connectionID, msg.Payload)

		case "sendDescription":
			s.handleSendDescription(connectionID, msg.Payload)

		case "vote":
			s.handleVote(connectionID, msg.Payload)

		case "leaveRoom":
			s.handleLeaveRoom(connectionID)

		default:
			s.logger.Warn("unknown message type", "type", msg.Type, "connection", connectionID)
			s.sendError(socket, ctx, fmt.Sprintf("Unknown message type: %s", msg.Type))
		}
	}
}

func (s *Server) sendMessage(socket *websocket.Conn, ctx context.Context, msg ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}
	return socket.Write(ctx, websocket.MessageText, data)
}

func (s *Server) sendError(socket *websocket.Conn, ctx context.Context, msg string) {
	err := s.sendMessage(socket, ctx, ServerMessage{
		Type:    "error",
		Payload: ErrorMessage{Message: msg},
	})
	if err != nil {
		s.logger.Warn("sending error message", "error", err)
	}
}

func (s *Server) handlePing(socket *websocket.Conn, ctx context.Context) {
	if err := s.sendMessage(socket, ctx, ServerMessage{Type: "pong", Payload: struct{}{}}); err != nil {
		s.logger.Warn("sending pong", "error", err)
	}
}

func (s *Server) handleCreateRoom(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req CreateRoomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(socket, ctx, "Invalid createRoom payload")
		return
	}

	// A connection belongs to at most one room. Creating a new one implies
	// leaving the old one, the same as an explicit leaveRoom.
	s.leaveCurrentRoom(connectionID)

	created, err := s.roomManager.CreateRoom(connectionID, req.Nickname, req.Category, req.MaxPlayers)
	if err != nil {
		s.sendError(socket, ctx, err.Error())
		return
	}

	s.playerRegistry.Store(Membership{
		ConnID:   connectionID,
		RoomCode: created.RoomCode,
		Nickname: created.Player.Nickname,
	})

	if err := s.sendMessage(socket, ctx, ServerMessage{Type: "roomCreated", Payload: created}); err != nil {
		s.logger.Warn("sending roomCreated", "error", err)
	}
}

func (s *Server) handleJoinRoom(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req JoinRoomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(socket, ctx, "Invalid joinRoom payload")
		return
	}

	s.leaveCurrentRoom(connectionID)

	joined, err := s.roomManager.JoinRoom(req.RoomCode, connectionID, req.Nickname)
	if err != nil {
		s.sendError(socket, ctx, err.Error())
		return
	}

	s.playerRegistry.Store(Membership{
		ConnID:   connectionID,
		RoomCode: joined.RoomCode,
		Nickname: joined.Player.Nickname,
	})

	if err := s.sendMessage(socket, ctx, ServerMessage{Type: "roomJoined", Payload: joined}); err != nil {
		s.logger.Warn("sending roomJoined", "error", err)
	}
}

func (s *Server) handleStartGame(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req StartGameRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(socket, ctx, "Invalid startGame payload")
		return
	}

	if err := s.roomManager.StartGame(req.RoomCode, connectionID, req.Category, req.NumImpostors); err != nil {
		s.sendError(socket, ctx, err.Error())
	}
}

func (s *Server) handleSendDescription(connectionID string, payload json.RawMessage) {
	var req SendDescriptionRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}

	m, err := s.playerRegistry.Get(connectionID)
	if err != nil {
		return
	}

	// Off-turn and duplicate descriptions are dropped silently inside.
	s.roomManager.HandleDescription(m.RoomCode, connectionID, req.Description)
}

func (s *Server) handleVote(connectionID string, payload json.RawMessage) {
	var req VoteRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}

	m, err := s.playerRegistry.Get(connectionID)
	if err != nil {
		return
	}

	s.roomManager.HandleVote(m.RoomCode, connectionID, req.VotedPlayerID)
}

func (s *Server) handleLeaveRoom(connectionID string) {
	s.leaveCurrentRoom(connectionID)
}

// leaveCurrentRoom removes the connection from whatever room it is a member
// of. No-op for connections without a membership.
func (s *Server) leaveCurrentRoom(connectionID string) {
	m, err := s.playerRegistry.Get(connectionID)
	if err != nil {
		return
	}

	s.roomManager.RemoveMember(m.RoomCode, connectionID)
	s.playerRegistry.Remove(connectionID)
}

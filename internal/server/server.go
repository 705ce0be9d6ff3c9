package server

import (
	"log/slog"

	"impostor-server/internal/config"
)

type Server struct {
	cfg    *config.Config
	logger *slog.Logger

	connectionManager *ConnectionManager
	playerRegistry    *PlayerRegistry
	roomManager       *RoomManager
	rateLimiter       *RateLimiter
}

func New(cfg *config.Config, logger *slog.Logger) *Server {
	connectionManager := NewConnectionManager(logger)

	return &Server{
		cfg:               cfg,
		logger:            logger,
		connectionManager: connectionManager,
		playerRegistry:    NewPlayerRegistry(),
		roomManager:       NewRoomManager(cfg, connectionManager, logger),
		rateLimiter:       NewRateLimiter(cfg.RateLimitMessages, cfg.RateLimitWindow),
	}
}

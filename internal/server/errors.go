package server

import "errors"

// Error messages follow the CODE: description convention so clients can
// branch on the prefix while humans read the rest. Every one of these is
// recoverable: it is reported to the originating connection only and leaves
// room state untouched.
var (
	ErrRoomNotFound     = errors.New("ROOM_NOT_FOUND: Room not found")
	ErrRoomFull         = errors.New("ROOM_FULL: Room is full")
	ErrGameInProgress   = errors.New("GAME_IN_PROGRESS: Game already in progress")
	ErrNotHost          = errors.New("NOT_HOST: Only the host can start the game")
	ErrNotEnoughPlayers = errors.New("NOT_ENOUGH_PLAYERS: At least 4 players are required")
	ErrCodesExhausted   = errors.New("CODES_EXHAUSTED: No free room codes available")
	ErrNicknameInvalid  = errors.New("NICKNAME_INVALID: Nickname cannot be empty")
	ErrNicknameTooLong  = errors.New("NICKNAME_INVALID: Nickname too long (max 20 characters)")
	ErrNotInRoom        = errors.New("NOT_IN_ROOM: No active room membership")
)

package server

import "impostor-server/internal/game"

// ============================================================================
// ERROR RESPONSES
// ============================================================================
type ErrorMessage struct {
	Message string `json:"message"`
}

// ============================================================================
// CREATE ROOM (createRoom)
// ============================================================================
type CreateRoomRequest struct {
	Nickname   string `json:"nickname"`
	Category   string `json:"category"`
	MaxPlayers int    `json:"maxPlayers"`
}

type RoomCreatedPayload struct {
	RoomCode   string      `json:"roomCode"`
	Player     game.Player `json:"player"`
	Categories []string    `json:"categories"`
}

// ============================================================================
// JOIN ROOM (joinRoom)
// ============================================================================
type JoinRoomRequest struct {
	RoomCode string `json:"roomCode"`
	Nickname string `json:"nickname"`
}

type RoomJoinedPayload struct {
	RoomCode string      `json:"roomCode"`
	Player   game.Player `json:"player"`
}

// ============================================================================
// PLAYERS UPDATE (playersUpdate broadcast)
// ============================================================================
// Payload is a value snapshot of the member list; Role and IsImpostor never
// serialize.
type PlayersUpdatePayload struct {
	Players []game.Player `json:"players"`
}

// ============================================================================
// START GAME (startGame)
// ============================================================================
type StartGameRequest struct {
	RoomCode     string `json:"roomCode"`
	Category     string `json:"category"`
	NumImpostors int    `json:"numImpostors"`
}

// GameStartedPayload is per-recipient: crewmates get the drawn word as Role,
// impostors get the sentinel and never the word.
type GameStartedPayload struct {
	Role       string `json:"role"`
	IsImpostor bool   `json:"isImpostor"`
	Category   string `json:"category"`
}

// ============================================================================
// DESCRIBING PHASE (turnStart / playerDescription broadcasts)
// ============================================================================
type TurnStartPayload struct {
	PlayerID     string `json:"playerId"`
	Nickname     string `json:"nickname"`
	TurnNumber   int    `json:"turnNumber"`
	TotalPlayers int    `json:"totalPlayers"`
}

type SendDescriptionRequest struct {
	Description string `json:"description"`
}

type PlayerDescriptionPayload struct {
	PlayerID    string `json:"playerId"`
	Nickname    string `json:"nickname"`
	Description string `json:"description"`
}

// ============================================================================
// VOTING PHASE (votingPhase broadcast, vote intent)
// ============================================================================
type VotablePlayer struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

type VotingPhasePayload struct {
	Players []VotablePlayer `json:"players"`
}

type VoteRequest struct {
	VotedPlayerID string `json:"votedPlayerId"`
}

// ============================================================================
// GAME ENDED (gameEnded broadcast)
// ============================================================================
type MostVotedPlayer struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Votes    int    `json:"votes"`
}

type GameEndedPayload struct {
	Impostors        []VotablePlayer `json:"impostors"`
	MostVoted        MostVotedPlayer `json:"mostVoted"`
	GuessedCorrectly bool            `json:"guessedCorrectly"`
	Players          []game.Player   `json:"players"`
}

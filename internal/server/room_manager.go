package server

import (
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"impostor-server/internal/config"
	"impostor-server/internal/game"
)

// Sink delivers outbound messages to players by connection ID. The websocket
// ConnectionManager implements it in production; tests substitute a recorder.
type Sink interface {
	Send(playerID string, msg ServerMessage)
}

// RoomManager owns every live room: creation, membership, the phase state
// machine, and the timers that drive it. All timer-triggered transitions
// (turn timeouts, vote deadlines, post-game resets) originate here, so the
// manager broadcasts through the Sink itself rather than handing results back
// to a request handler.
type RoomManager struct {
	rooms     map[string]*roomState
	usedCodes map[string]bool
	mu        sync.RWMutex

	cfg    *config.Config
	sink   Sink
	logger *slog.Logger

	// Shared source for word draws and impostor picks; guarded because
	// handlers for different rooms run in parallel.
	rng   *rand.Rand
	rngMu sync.Mutex
}

// roomState pairs a Room with the mutex serializing every event against it
// and the handle of the phase timer currently in flight. Inbound intents and
// timer callbacks both take mu for their whole duration, so no two handlers
// for the same room ever interleave.
type roomState struct {
	room      *game.Room
	mu        sync.Mutex
	destroyed bool
	timer     *time.Timer
	timerGen  uint64
}

func NewRoomManager(cfg *config.Config, sink Sink, logger *slog.Logger) *RoomManager {
	return &RoomManager{
		rooms:     make(map[string]*roomState),
		usedCodes: make(map[string]bool),
		cfg:       cfg,
		sink:      sink,
		logger:    logger,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (rm *RoomManager) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

func (rm *RoomManager) getRoom(code string) *roomState {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[code]
}

// CreateRoom makes a new waiting room with the creator as sole member and
// host. The room code is unique among live rooms only.
func (rm *RoomManager) CreateRoom(connID, nickname, category string, maxPlayers int) (RoomCreatedPayload, error) {
	nickname, err := validateNickname(nickname)
	if err != nil {
		return RoomCreatedPayload{}, err
	}
	if maxPlayers <= 0 {
		maxPlayers = rm.cfg.DefaultMaxPlayers
	}

	rm.mu.Lock()
	code, err := GenerateRoomCode(rm.usedCodes)
	if err != nil {
		rm.mu.Unlock()
		return RoomCreatedPayload{}, err
	}
	rm.usedCodes[code] = true

	rs := &roomState{room: game.NewRoom(code, connID, nickname, maxPlayers)}
	rs.room.Category = game.ResolveCategory(category)
	rm.rooms[code] = rs
	rm.mu.Unlock()

	rm.logger.Info("room created", "room", code, "host", nickname, "maxPlayers", maxPlayers)

	rs.mu.Lock()
	defer rs.mu.Unlock()
	payload := RoomCreatedPayload{
		RoomCode:   code,
		Player:     *rs.room.Players[0],
		Categories: game.Categories(),
	}
	rm.broadcastPlayersUpdate(rs)
	return payload, nil
}

// JoinRoom appends a new non-host member; join order fixes the turn order.
func (rm *RoomManager) JoinRoom(code, connID, nickname string) (RoomJoinedPayload, error) {
	nickname, err := validateNickname(nickname)
	if err != nil {
		return RoomJoinedPayload{}, err
	}

	code = NormalizeRoomCode(code)
	if err := ValidateRoomCode(code); err != nil {
		return RoomJoinedPayload{}, err
	}

	rs := rm.getRoom(code)
	if rs == nil {
		return RoomJoinedPayload{}, ErrRoomNotFound
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.destroyed {
		return RoomJoinedPayload{}, ErrRoomNotFound
	}
	if rs.room.Phase != game.PhaseWaiting {
		return RoomJoinedPayload{}, ErrGameInProgress
	}
	if rs.room.IsFull() {
		return RoomJoinedPayload{}, ErrRoomFull
	}

	p := rs.room.AddPlayer(connID, nickname)
	rm.logger.Info("player joined", "room", code, "player", nickname)

	rm.broadcastPlayersUpdate(rs)
	return RoomJoinedPayload{RoomCode: code, Player: *p}, nil
}

// StartGame is host-only and only valid while waiting. On success roles are
// dealt, every member receives a personalized gameStarted message, and the
// first describe turn begins.
func (rm *RoomManager) StartGame(code, connID, category string, numImpostors int) error {
	rs := rm.getRoom(NormalizeRoomCode(code))
	if rs == nil {
		return ErrRoomNotFound
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.destroyed {
		return ErrRoomNotFound
	}
	if rs.room.HostID != connID {
		return ErrNotHost
	}
	if rs.room.Phase != game.PhaseWaiting {
		return ErrGameInProgress
	}
	if len(rs.room.Players) < 4 {
		return ErrNotEnoughPlayers
	}

	rs.room.Category = game.ResolveCategory(category)
	rs.room.NumImpostors = game.ImpostorCount(len(rs.room.Players), numImpostors)

	rm.rngMu.Lock()
	game.AssignRoles(rs.room, rm.rng)
	rm.rngMu.Unlock()

	rm.logger.Info("game started",
		"room", rs.room.Code,
		"category", rs.room.Category,
		"players", len(rs.room.Players),
		"impostors", rs.room.NumImpostors)

	// Roles are per-recipient: impostors never see the drawn word.
	for _, p := range rs.room.Players {
		rm.sink.Send(p.ID, ServerMessage{
			Type: "gameStarted",
			Payload: GameStartedPayload{
				Role:       p.Role,
				IsImpostor: p.IsImpostor,
				Category:   rs.room.Category,
			},
		})
	}

	rs.room.Phase = game.PhaseDescribing
	rs.room.TurnIndex = 0
	rm.startTurn(rs)
	return nil
}

// HandleDescription accepts the single allowed description from the on-turn
// player and advances the turn immediately instead of waiting out the clock.
// Off-turn and duplicate descriptions are dropped without a reply.
func (rm *RoomManager) HandleDescription(code, connID, description string) {
	rs := rm.getRoom(code)
	if rs == nil {
		return
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.destroyed || rs.room.Phase != game.PhaseDescribing {
		return
	}
	cur := rs.room.CurrentTurnPlayer()
	if cur == nil || cur.ID != connID || cur.HasDescribed {
		return
	}

	cur.HasDescribed = true
	rm.broadcast(rs, ServerMessage{
		Type: "playerDescription",
		Payload: PlayerDescriptionPayload{
			PlayerID:    cur.ID,
			Nickname:    cur.Nickname,
			Description: description,
		},
	})

	rm.advanceTurn(rs)
}

// HandleVote applies a vote and resolves the round early once everyone has
// voted. Invalid votes are silent no-ops.
func (rm *RoomManager) HandleVote(code, connID, targetID string) {
	rs := rm.getRoom(code)
	if rs == nil {
		return
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.destroyed {
		return
	}

	allVoted, ok := game.CastVote(rs.room, connID, targetID)
	if ok && allVoted {
		rm.finishVoting(rs)
	}
}

// RemoveMember takes a player out of their room in any phase. It reassigns
// the host, advances a turn the leaver was holding, resolves voting if the
// leaver was the last holdout, and destroys the room once empty. Calling it
// for an already-removed player is a no-op.
func (rm *RoomManager) RemoveMember(code, connID string) bool {
	rs := rm.getRoom(code)
	if rs == nil {
		return false
	}

	rs.mu.Lock()
	if rs.destroyed {
		rs.mu.Unlock()
		return false
	}

	cur := rs.room.CurrentTurnPlayer()
	wasOnTurn := rs.room.Phase == game.PhaseDescribing && cur != nil && cur.ID == connID

	if !rs.room.RemovePlayer(connID) {
		rs.mu.Unlock()
		return false
	}

	if len(rs.room.Players) == 0 {
		rm.destroyRoomLocked(rs)
		rs.mu.Unlock()
		return true
	}

	rm.broadcastPlayersUpdate(rs)

	switch {
	case wasOnTurn:
		// Treat the leaver's turn as expired. RemovePlayer left the cursor
		// pointing at the next player (or past the end).
		rm.resumeDescribing(rs)
	case rs.room.Phase == game.PhaseVoting && rm.allVoted(rs):
		rm.finishVoting(rs)
	}

	rs.mu.Unlock()
	return true
}

// destroyRoomLocked tears the room down: stale timers are cancelled so they
// can never fire against a dead room, and the code becomes reusable.
// Caller holds rs.mu.
func (rm *RoomManager) destroyRoomLocked(rs *roomState) {
	rs.destroyed = true
	rm.cancelTimer(rs)

	rm.mu.Lock()
	delete(rm.rooms, rs.room.Code)
	delete(rm.usedCodes, rs.room.Code)
	rm.mu.Unlock()

	rm.logger.Info("room destroyed", "room", rs.room.Code)
}

func (rm *RoomManager) allVoted(rs *roomState) bool {
	for _, p := range rs.room.Players {
		if !p.HasVoted {
			return false
		}
	}
	return true
}

// ============================================================================
// Phase transitions. All of these run with rs.mu held, either from an intent
// handler or from a timer callback that re-acquired the lock.
// ============================================================================

func (rm *RoomManager) startTurn(rs *roomState) {
	cur := rs.room.CurrentTurnPlayer()

	rm.broadcast(rs, ServerMessage{
		Type: "turnStart",
		Payload: TurnStartPayload{
			PlayerID:     cur.ID,
			Nickname:     cur.Nickname,
			TurnNumber:   rs.room.TurnIndex + 1,
			TotalPlayers: len(rs.room.Players),
		},
	})

	rm.armTimer(rs, rm.cfg.TurnDuration, rm.advanceTurn)
}

func (rm *RoomManager) advanceTurn(rs *roomState) {
	rs.room.TurnIndex++
	rm.resumeDescribing(rs)
}

// resumeDescribing re-dispatches on the current cursor: either the next turn
// starts, or everyone has described and voting begins.
func (rm *RoomManager) resumeDescribing(rs *roomState) {
	if rs.room.CurrentTurnPlayer() == nil {
		rm.startVoting(rs)
		return
	}
	rm.startTurn(rs)
}

func (rm *RoomManager) startVoting(rs *roomState) {
	rs.room.Phase = game.PhaseVoting
	for _, p := range rs.room.Players {
		p.HasVoted = false
		p.Votes = 0
	}

	voteable := make([]VotablePlayer, len(rs.room.Players))
	for i, p := range rs.room.Players {
		voteable[i] = VotablePlayer{ID: p.ID, Nickname: p.Nickname}
	}
	rm.broadcast(rs, ServerMessage{
		Type:    "votingPhase",
		Payload: VotingPhasePayload{Players: voteable},
	})

	rm.armTimer(rs, rm.cfg.VoteDuration, rm.finishVoting)
}

func (rm *RoomManager) finishVoting(rs *roomState) {
	rm.cancelTimer(rs)

	out := game.Resolve(rs.room)

	impostors := make([]VotablePlayer, len(out.Impostors))
	for i, p := range out.Impostors {
		impostors[i] = VotablePlayer{ID: p.ID, Nickname: p.Nickname}
	}

	rm.broadcast(rs, ServerMessage{
		Type: "gameEnded",
		Payload: GameEndedPayload{
			Impostors: impostors,
			MostVoted: MostVotedPlayer{
				ID:       out.MostVoted.ID,
				Nickname: out.MostVoted.Nickname,
				Votes:    out.MostVoted.Votes,
			},
			GuessedCorrectly: out.GuessedCorrectly,
			Players:          snapshotPlayers(rs.room),
		},
	})

	rm.logger.Info("game ended",
		"room", rs.room.Code,
		"mostVoted", out.MostVoted.Nickname,
		"guessedCorrectly", out.GuessedCorrectly)

	rm.armTimer(rs, rm.cfg.ResetDuration, rm.resetRoom)
}

// resetRoom returns an ended room to the waiting phase so it can be rejoined
// and restarted without being re-created.
func (rm *RoomManager) resetRoom(rs *roomState) {
	rs.timer = nil
	rs.room.ResetForLobby()
	rm.broadcastPlayersUpdate(rs)
}

// ============================================================================
// Timers. Each room owns at most one active timer; arming a new one stops the
// previous, and a generation counter makes any callback that already fired
// against an advanced or destroyed room a no-op.
// ============================================================================

// armTimer schedules fn to run after d with rs.mu held. Caller holds rs.mu.
func (rm *RoomManager) armTimer(rs *roomState, d time.Duration, fn func(*roomState)) {
	if rs.timer != nil {
		rs.timer.Stop()
	}
	rs.timerGen++
	gen := rs.timerGen

	rs.timer = time.AfterFunc(d, func() {
		rs.mu.Lock()
		defer rs.mu.Unlock()
		if rs.destroyed || rs.timerGen != gen {
			return
		}
		fn(rs)
	})
}

// cancelTimer invalidates any scheduled callback. Caller holds rs.mu.
func (rm *RoomManager) cancelTimer(rs *roomState) {
	if rs.timer != nil {
		rs.timer.Stop()
		rs.timer = nil
	}
	rs.timerGen++
}

// ============================================================================
// Broadcast helpers. Caller holds rs.mu.
// ============================================================================

func (rm *RoomManager) broadcast(rs *roomState, msg ServerMessage) {
	for _, p := range rs.room.Players {
		rm.sink.Send(p.ID, msg)
	}
}

func (rm *RoomManager) broadcastPlayersUpdate(rs *roomState) {
	rm.broadcast(rs, ServerMessage{
		Type:    "playersUpdate",
		Payload: PlayersUpdatePayload{Players: snapshotPlayers(rs.room)},
	})
}

// snapshotPlayers copies member state by value so payloads stay stable after
// the room lock is released.
func snapshotPlayers(r *game.Room) []game.Player {
	out := make([]game.Player, len(r.Players))
	for i, p := range r.Players {
		out[i] = *p
	}
	return out
}

func validateNickname(nickname string) (string, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return "", ErrNicknameInvalid
	}
	if len(nickname) > 20 {
		return "", ErrNicknameTooLong
	}
	return nickname, nil
}

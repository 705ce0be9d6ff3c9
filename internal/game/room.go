package game

// Room is one isolated session: a bounded player list plus the phase state
// machine's cursor. Player order is join order and fixes the turn sequence.
//
// Room carries no locking and no timers; the caller (the server's room
// manager) serializes all access and owns the phase timers.
type Room struct {
	Code         string
	HostID       string
	Players      []*Player
	Category     string
	NumImpostors int
	MaxPlayers   int
	Phase        Phase
	TurnIndex    int
}

func NewRoom(code, hostID, hostNickname string, maxPlayers int) *Room {
	return &Room{
		Code:       code,
		HostID:     hostID,
		Players:    []*Player{NewPlayer(hostID, hostNickname, true)},
		MaxPlayers: maxPlayers,
		Phase:      PhaseWaiting,
	}
}

func (r *Room) IsFull() bool {
	return len(r.Players) >= r.MaxPlayers
}

// AddPlayer appends a non-host member, preserving join order.
func (r *Room) AddPlayer(id, nickname string) *Player {
	p := NewPlayer(id, nickname, false)
	r.Players = append(r.Players, p)
	return p
}

// RemovePlayer removes the member with the given id. Returns false if the id
// is not a member, which makes repeated removal a no-op. If the removed
// player was host and members remain, the earliest-joined remaining member
// becomes host. An empty room is the caller's cue to destroy it.
func (r *Room) RemovePlayer(id string) bool {
	idx := -1
	for i, p := range r.Players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}

	wasHost := r.Players[idx].IsHost
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)

	if wasHost && len(r.Players) > 0 {
		r.HostID = r.Players[0].ID
		r.Players[0].IsHost = true
	}

	// Keep the turn cursor pointing at the same player when someone earlier
	// in the order leaves mid-round.
	if r.TurnIndex > idx {
		r.TurnIndex--
	}

	return true
}

func (r *Room) FindPlayer(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// CurrentTurnPlayer returns the member whose describe turn it is, or nil when
// the cursor has run past the end of the list.
func (r *Room) CurrentTurnPlayer() *Player {
	if r.TurnIndex < 0 || r.TurnIndex >= len(r.Players) {
		return nil
	}
	return r.Players[r.TurnIndex]
}

// Impostors returns the members holding the impostor role, in join order.
func (r *Room) Impostors() []*Player {
	var out []*Player
	for _, p := range r.Players {
		if p.IsImpostor {
			out = append(out, p)
		}
	}
	return out
}

// ResetForLobby returns the room to the waiting phase after a finished round.
// Scores and membership survive; roles and per-round flags do not.
func (r *Room) ResetForLobby() {
	r.Phase = PhaseWaiting
	r.TurnIndex = 0
	for _, p := range r.Players {
		p.ResetForRound()
	}
}

package game

// ImpostorRole is the sentinel shown to impostors instead of the real word.
const ImpostorRole = "???"

// Player is one member of a room. ID is the connection identity and is stable
// for the connection's lifetime; Nickname and ID are set at join and never
// change. The remaining fields are gameplay state owned by the room.
type Player struct {
	ID           string `json:"id"`
	Nickname     string `json:"nickname"`
	IsHost       bool   `json:"isHost"`
	Role         string `json:"-"` // the shared word, or ImpostorRole; hidden from broadcasts
	IsImpostor   bool   `json:"-"`
	Score        int    `json:"score"`
	XP           int    `json:"xp"`
	HasDescribed bool   `json:"hasDescribed"`
	HasVoted     bool   `json:"hasVoted"`
	Votes        int    `json:"votes"`
}

func NewPlayer(id, nickname string, isHost bool) *Player {
	return &Player{
		ID:       id,
		Nickname: nickname,
		IsHost:   isHost,
	}
}

// ResetForRound clears per-session state. Score and XP persist across rounds.
func (p *Player) ResetForRound() {
	p.Role = ""
	p.IsImpostor = false
	p.HasDescribed = false
	p.HasVoted = false
	p.Votes = 0
}

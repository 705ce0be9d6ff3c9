package game

// Phase is the current stage of a room's session. Rooms cycle
// waiting -> describing -> voting -> ended -> waiting.
type Phase string

const (
	PhaseWaiting    Phase = "waiting"
	PhaseDescribing Phase = "describing"
	PhaseVoting     Phase = "voting"
	PhaseEnded      Phase = "ended"
)

func (p Phase) String() string {
	return string(p)
}

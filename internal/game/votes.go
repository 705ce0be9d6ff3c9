package game

// Score and XP deltas applied at vote resolution.
const (
	ImpostorEscapedXP    = 150
	ImpostorEscapedScore = 3
	CrewmateCaughtXP     = 100
	CrewmateCaughtScore  = 2
	ParticipationXP      = 50
)

// Outcome is the result of resolving a voting phase.
type Outcome struct {
	MostVoted        *Player
	Impostors        []*Player
	GuessedCorrectly bool
}

// CastVote applies one vote. Invalid votes (wrong phase, double vote,
// self-vote, unknown target) change nothing and report ok=false; clients get
// no error for them. allVoted reports whether every member has now voted, the
// caller's cue to resolve early.
func CastVote(r *Room, voterID, targetID string) (allVoted, ok bool) {
	if r.Phase != PhaseVoting {
		return false, false
	}
	if voterID == targetID {
		return false, false
	}
	voter := r.FindPlayer(voterID)
	target := r.FindPlayer(targetID)
	if voter == nil || target == nil || voter.HasVoted {
		return false, false
	}

	target.Votes++
	voter.HasVoted = true

	allVoted = true
	for _, p := range r.Players {
		if !p.HasVoted {
			allVoted = false
			break
		}
	}
	return allVoted, true
}

// Resolve ends the round: picks the most-voted member (ties go to the
// earliest-joined member among those tied), decides whether the group caught
// an impostor, applies the scoring law to every member, and moves the room to
// the ended phase.
//
// Scoring: an impostor who escaped gains 150xp/+3, a crewmate whose group
// guessed correctly gains 100xp/+2, everyone else gains a flat 50xp.
func Resolve(r *Room) Outcome {
	mostVoted := r.Players[0]
	for _, p := range r.Players[1:] {
		if p.Votes > mostVoted.Votes {
			mostVoted = p
		}
	}

	guessedCorrectly := mostVoted.IsImpostor

	for _, p := range r.Players {
		switch {
		case p.IsImpostor && !guessedCorrectly:
			p.XP += ImpostorEscapedXP
			p.Score += ImpostorEscapedScore
		case !p.IsImpostor && guessedCorrectly:
			p.XP += CrewmateCaughtXP
			p.Score += CrewmateCaughtScore
		default:
			p.XP += ParticipationXP
		}
	}

	r.Phase = PhaseEnded

	return Outcome{
		MostVoted:        mostVoted,
		Impostors:        r.Impostors(),
		GuessedCorrectly: guessedCorrectly,
	}
}

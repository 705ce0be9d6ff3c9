package game

import "math/rand"

// ImpostorCount applies the impostor count policy: rooms of 5 or fewer always
// get one impostor; larger rooms use the requested count (default 2), capped
// below the player count so at least one crewmate holds the word.
func ImpostorCount(playerCount, requested int) int {
	if playerCount <= 5 {
		return 1
	}
	if requested <= 0 {
		requested = 2
	}
	if requested >= playerCount {
		requested = playerCount - 1
	}
	return requested
}

// AssignRoles deals a round: one word is drawn from the room's category and
// given to every crewmate (the same word for all of them, deliberately), and
// r.NumImpostors distinct players get the impostor sentinel instead. All
// per-round flags are reset.
//
// The caller must have validated the player count and set NumImpostors below
// len(r.Players); sampling via Perm cannot loop forever regardless.
func AssignRoles(r *Room, rng *rand.Rand) {
	r.Category = ResolveCategory(r.Category)
	words := Words(r.Category)
	word := words[rng.Intn(len(words))]

	impostor := make(map[int]bool, r.NumImpostors)
	for _, idx := range rng.Perm(len(r.Players))[:r.NumImpostors] {
		impostor[idx] = true
	}

	for i, p := range r.Players {
		p.ResetForRound()
		if impostor[i] {
			p.Role = ImpostorRole
			p.IsImpostor = true
		} else {
			p.Role = word
		}
	}
}

package server

import (
	"errors"
	"math/rand"
	"strings"
)

const (
	roomCodeLength = 4

	// Collision retry bound. 26^4 codes means hitting this in practice would
	// take hundreds of thousands of live rooms; the bound exists so code
	// exhaustion surfaces as an error instead of a spin.
	maxCodeAttempts = 1000
)

// GenerateRoomCode returns an uppercase code not present in usedCodes.
// Uniqueness is only against currently live rooms; codes are reusable after
// their room is destroyed.
func GenerateRoomCode(usedCodes map[string]bool) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := make([]byte, roomCodeLength)
		for i := range code {
			code[i] = 'A' + byte(rand.Intn(26))
		}
		roomCode := string(code)

		if !usedCodes[roomCode] {
			return roomCode, nil
		}
	}
	return "", ErrCodesExhausted
}

func ValidateRoomCode(code string) error {
	if len(code) != roomCodeLength {
		return errors.New("Room code must be exactly 4 characters")
	}

	code = strings.ToUpper(code)
	for _, ch := range code {
		if ch < 'A' || ch > 'Z' {
			return errors.New("Room code must contain only letters A-Z")
		}
	}

	return nil
}

func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

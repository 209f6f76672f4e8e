package game

import (
	"crypto/rand"
	"strings"
)

// codeAlphabet drops I, O, 0 and 1 so codes survive being read out loud.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func newRoomCode(length int) string {
	if length <= 0 {
		length = 6
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return strings.Repeat("A", length)
	}
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return string(buf)
}

// NormalizeCode uppercases and trims a user-typed room code for lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

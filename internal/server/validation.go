package server

import (
	"errors"
	"fmt"
	"strings"
)

const (
	maxNameLength     = 20
	maxRoomNameLength = 40
	maxAnswerLength   = 500
	maxResponseLength = 500
)

func validatePlayerName(name string) (string, error) {
	return validateText("player name", name, maxNameLength)
}

// validateRoomName allows empty: rooms do not have to be named.
func validateRoomName(name string) (string, error) {
	trimmed := normalizeText(name)
	if trimmed == "" {
		return "", nil
	}
	if len(trimmed) > maxRoomNameLength {
		return "", fmt.Errorf("room name must be %d characters or fewer", maxRoomNameLength)
	}
	return trimmed, nil
}

func validateAnswer(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", errors.New("answer is required")
	}
	if len(trimmed) > maxAnswerLength {
		return "", fmt.Errorf("answer must be %d characters or fewer", maxAnswerLength)
	}
	return trimmed, nil
}

func validateResponse(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) > maxResponseLength {
		return "", fmt.Errorf("response must be %d characters or fewer", maxResponseLength)
	}
	return trimmed, nil
}

func validateText(label, text string, maxLen int) (string, error) {
	trimmed := normalizeText(text)
	if trimmed == "" {
		return "", fmt.Errorf("%s is required", label)
	}
	if len(trimmed) > maxLen {
		return "", fmt.Errorf("%s must be %d characters or fewer", label, maxLen)
	}
	return trimmed, nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}

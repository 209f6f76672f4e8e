package game

import (
	"context"
	"sort"
)

// SkippedAnswerText is what the history shows in place of an answer the
// player passed on.
const SkippedAnswerText = "passed"

// HistoryEntry is one fully-answered prompt as the history screen shows it:
// the prompt plus both players' answers, skips rendered as passes.
type HistoryEntry struct {
	Question       Question
	PlayerAnswer   string
	PartnerAnswer  string
	PlayerSkipped  bool
	PartnerSkipped bool
}

// BuildHistory groups answers by prompt from the given player's perspective
// and returns entries in play order. Prompts with no recorded answer from
// either player are left out.
func BuildHistory(catalog *QuestionCatalog, answers []Answer, playerName string) []HistoryEntry {
	byQuestion := make(map[string][]Answer)
	for _, a := range answers {
		byQuestion[a.QuestionID] = append(byQuestion[a.QuestionID], a)
	}

	entries := make([]HistoryEntry, 0, len(byQuestion))
	for questionID, rows := range byQuestion {
		q := catalog.ByID(questionID)
		if q == nil {
			continue
		}
		entry := HistoryEntry{Question: *q}
		for _, a := range rows {
			text := a.Answer
			if a.Skipped {
				text = SkippedAnswerText
			}
			if a.PlayerName == playerName {
				entry.PlayerAnswer = text
				entry.PlayerSkipped = a.Skipped
			} else {
				entry.PartnerAnswer = text
				entry.PartnerSkipped = a.Skipped
			}
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Question.Level != entries[j].Question.Level {
			return entries[i].Question.Level < entries[j].Question.Level
		}
		return entries[i].Question.SortOrder < entries[j].Question.SortOrder
	})
	return entries
}

// History returns this room's answer history from the local player's
// perspective.
func (c *Client) History(ctx context.Context) ([]HistoryEntry, error) {
	room := c.session.Room()
	answers, err := c.store.AnswersForRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	return BuildHistory(c.questions, answers, c.playerName), nil
}

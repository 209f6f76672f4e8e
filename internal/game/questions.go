package game

import "sort"

// QuestionCatalog holds the prompt deck in play order: ascending level,
// then sort order within the level. Progression is a single global walk
// through this sequence; crossing a level boundary is what makes the
// level-up moment.
type QuestionCatalog struct {
	ordered []Question
	byID    map[string]int
}

func NewQuestionCatalog(questions []Question) *QuestionCatalog {
	ordered := append([]Question(nil), questions...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Level != ordered[j].Level {
			return ordered[i].Level < ordered[j].Level
		}
		return ordered[i].SortOrder < ordered[j].SortOrder
	})
	byID := make(map[string]int, len(ordered))
	for i, q := range ordered {
		byID[q.ID] = i
	}
	return &QuestionCatalog{ordered: ordered, byID: byID}
}

func (c *QuestionCatalog) Len() int { return len(c.ordered) }

func (c *QuestionCatalog) ByID(id string) *Question {
	i, ok := c.byID[id]
	if !ok {
		return nil
	}
	q := c.ordered[i]
	return &q
}

// First returns the opening prompt of the deck, or nil for an empty catalog.
func (c *QuestionCatalog) First() *Question {
	if len(c.ordered) == 0 {
		return nil
	}
	q := c.ordered[0]
	return &q
}

// Next returns the prompt after currentID in global play order. A nil
// return means the deck is exhausted and the game ends. An unknown
// currentID also returns nil rather than guessing a position.
func (c *QuestionCatalog) Next(currentID string) *Question {
	i, ok := c.byID[currentID]
	if !ok || i+1 >= len(c.ordered) {
		return nil
	}
	q := c.ordered[i+1]
	return &q
}

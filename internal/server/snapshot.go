package server

import (
	"entre-nous/internal/game"
)

// roomSnapshot is the payload pushed on the websocket feed and returned by
// the room GET. It carries the shared row plus the sync tunables remote
// clients run their own polling loops with.
func (s *Server) roomSnapshot(room game.Room) map[string]any {
	return map[string]any{
		"type":                   "room",
		"room":                   roomPayload(room),
		"answer_poll_seconds":    s.cfg.AnswerPollSeconds,
		"event_poll_seconds":     s.cfg.EventPollSeconds,
		"level_up_seconds":       s.cfg.LevelUpSeconds,
		"sync_countdown_seconds": s.cfg.SyncCountdownSeconds,
	}
}

func roomPayload(room game.Room) map[string]any {
	return map[string]any{
		"id":                  room.ID,
		"room_code":           room.RoomCode,
		"room_name":           room.RoomName,
		"player1_name":        room.Player1Name,
		"player2_name":        room.Player2Name,
		"player1_connected":   room.Player1Connected,
		"player2_connected":   room.Player2Connected,
		"status":              room.Status,
		"current_level":       room.CurrentLevel,
		"current_question_id": room.CurrentQuestion,
		"current_event_id":    room.CurrentEvent,
		"event_player_name":   room.EventPlayerName,
		"created_at":          room.CreatedAt,
		"updated_at":          room.UpdatedAt,
	}
}

func answerPayload(a game.Answer) map[string]any {
	return map[string]any{
		"id":          a.ID,
		"room_id":     a.RoomID,
		"question_id": a.QuestionID,
		"player_name": a.PlayerName,
		"answer":      a.Answer,
		"skipped":     a.Skipped,
		"created_at":  a.CreatedAt,
	}
}

func responsePayload(r game.EventResponse) map[string]any {
	return map[string]any{
		"id":          r.ID,
		"room_id":     r.RoomID,
		"event_id":    r.EventID,
		"player_name": r.PlayerName,
		"response":    r.Response,
		"completed":   r.Completed,
		"created_at":  r.CreatedAt,
		"updated_at":  r.UpdatedAt,
	}
}

func questionPayload(q game.Question) map[string]any {
	return map[string]any{
		"id":          q.ID,
		"text":        q.Text,
		"level":       q.Level,
		"sort_order":  q.SortOrder,
		"suggestions": q.Suggestions,
	}
}

func eventPayload(e game.Event) map[string]any {
	return map[string]any{
		"id":            e.ID,
		"type":          string(e.Type),
		"title":         e.Title,
		"description":   e.Description,
		"level":         e.Level,
		"requires_both": e.RequiresBoth,
		"is_private":    e.IsPrivate,
		"sort_order":    e.SortOrder,
	}
}

func historyPayload(entries []game.HistoryEntry) []map[string]any {
	payload := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		payload = append(payload, map[string]any{
			"question":        questionPayload(entry.Question),
			"player_answer":   entry.PlayerAnswer,
			"partner_answer":  entry.PartnerAnswer,
			"player_skipped":  entry.PlayerSkipped,
			"partner_skipped": entry.PartnerSkipped,
		})
	}
	return payload
}

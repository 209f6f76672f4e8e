package server

import (
	"errors"
	"log"
	"net/http"

	"entre-nous/internal/game"
)

type createRoomRequest struct {
	PlayerName string `json:"player_name"`
	RoomName   string `json:"room_name"`
}

type joinRoomRequest struct {
	Code       string `json:"code"`
	PlayerName string `json:"player_name"`
}

type resumeRoomRequest struct {
	PlayerName string `json:"player_name"`
}

type roomUpdateRequest struct {
	Status            *string `json:"status"`
	CurrentLevel      *int    `json:"current_level"`
	CurrentQuestionID *string `json:"current_question_id"`
	CurrentEventID    *string `json:"current_event_id"`
	EventPlayerName   *string `json:"event_player_name"`
}

type answerRequest struct {
	PlayerName string `json:"player_name"`
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
	Skipped    bool   `json:"skipped"`
}

type responseRequest struct {
	PlayerName string `json:"player_name"`
	EventID    string `json:"event_id"`
	Response   string `json:"response"`
	Completed  bool   `json:"completed"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	playerName, err := validatePlayerName(req.PlayerName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	roomName, err := validateRoomName(req.RoomName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	room, err := s.dir.CreateRoom(r.Context(), playerName, roomName)
	if err != nil {
		writeDirectoryError(w, err)
		return
	}
	log.Printf("room created room_id=%s room_code=%s", room.ID, room.RoomCode)
	writeJSON(w, http.StatusCreated, s.roomSnapshot(*room))
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	playerName, err := validatePlayerName(req.PlayerName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	room, err := s.dir.JoinRoom(r.Context(), req.Code, playerName)
	if err != nil {
		writeDirectoryError(w, err)
		return
	}
	log.Printf("room joined room_id=%s player=%s", room.ID, playerName)
	writeJSON(w, http.StatusOK, s.roomSnapshot(*room))
}

func (s *Server) handleMyRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.dir.MyRooms(r.Context())
	if err != nil {
		writeDirectoryError(w, err)
		return
	}
	payload := make([]map[string]any, 0, len(rooms))
	for _, room := range rooms {
		payload = append(payload, roomPayload(room))
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": payload})
}

func (s *Server) handleRoomSubroutes(w http.ResponseWriter, r *http.Request) {
	roomID, action, ok := parseRoomPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if action == "" {
		switch r.Method {
		case http.MethodGet:
			s.handleGetRoom(w, r, roomID)
		case http.MethodPatch:
			s.handleUpdateRoom(w, r, roomID)
		default:
			http.NotFound(w, r)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		switch action {
		case "answers":
			s.handleGetAnswers(w, r, roomID)
		case "responses":
			s.handleGetResponses(w, r, roomID)
		case "history":
			s.handleHistory(w, r, roomID)
		default:
			http.NotFound(w, r)
		}
	case http.MethodPost:
		switch action {
		case "resume":
			s.handleResumeRoom(w, r, roomID)
		case "leave":
			s.handleLeaveRoom(w, r, roomID)
		case "answers":
			s.handleSubmitAnswer(w, r, roomID)
		case "responses":
			s.handleSubmitResponse(w, r, roomID)
		default:
			http.NotFound(w, r)
		}
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	room, err := s.store.RoomByID(r.Context(), roomID)
	if err != nil {
		writeDirectoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.roomSnapshot(*room))
}

// handleUpdateRoom is the turn-boundary write path for remote clients. The
// caller owns the fields it sends; the server applies them verbatim and the
// change feed carries the result to both players.
func (s *Server) handleUpdateRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	var req roomUpdateRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	update := game.RoomUpdate{
		Status:          req.Status,
		CurrentLevel:    req.CurrentLevel,
		CurrentQuestion: req.CurrentQuestionID,
		CurrentEvent:    req.CurrentEventID,
		EventPlayerName: req.EventPlayerName,
	}
	room, err := s.store.UpdateRoom(r.Context(), roomID, update)
	if err != nil {
		writeDirectoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.roomSnapshot(*room))
}

func (s *Server) handleResumeRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	var req resumeRoomRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	playerName, err := validatePlayerName(req.PlayerName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	room, err := s.dir.ResumeRoom(r.Context(), roomID, playerName)
	if err != nil {
		writeDirectoryError(w, err)
		return
	}
	log.Printf("room resumed room_id=%s player=%s", room.ID, playerName)
	writeJSON(w, http.StatusOK, s.roomSnapshot(*room))
}

func (s *Server) handleLeaveRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	s.dir.LeaveRoom(roomID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request, roomID string) {
	var req answerRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	playerName, err := validatePlayerName(req.PlayerName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	text := ""
	if !req.Skipped {
		text, err = validateAnswer(req.Answer)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	room, err := s.store.RoomByID(r.Context(), roomID)
	if err != nil {
		writeDirectoryError(w, err)
		return
	}
	questionID := req.QuestionID
	if questionID == "" {
		questionID = room.CurrentQuestion
	}
	if questionID == "" {
		writeError(w, http.StatusConflict, "no active question")
		return
	}
	answer := game.Answer{
		RoomID:     roomID,
		QuestionID: questionID,
		PlayerName: playerName,
		Answer:     text,
		Skipped:    req.Skipped,
	}
	if err := s.store.InsertAnswer(r.Context(), &answer); err != nil {
		if errors.Is(err, game.ErrDuplicate) {
			// Double-submit is a silent no-op.
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	writeJSON(w, http.StatusCreated, answerPayload(answer))
}

func (s *Server) handleGetAnswers(w http.ResponseWriter, r *http.Request, roomID string) {
	questionID := r.URL.Query().Get("question_id")
	var (
		answers []game.Answer
		err     error
	)
	if questionID == "" {
		answers, err = s.store.AnswersForRoom(r.Context(), roomID)
	} else {
		answers, err = s.store.AnswersFor(r.Context(), roomID, questionID)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	payload := make([]map[string]any, 0, len(answers))
	for _, a := range answers {
		payload = append(payload, answerPayload(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"answers": payload})
}

func (s *Server) handleSubmitResponse(w http.ResponseWriter, r *http.Request, roomID string) {
	var req responseRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	playerName, err := validatePlayerName(req.PlayerName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.EventID == "" {
		writeError(w, http.StatusBadRequest, "event_id is required")
		return
	}
	text, err := validateResponse(req.Response)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	response := game.EventResponse{
		RoomID:     roomID,
		EventID:    req.EventID,
		PlayerName: playerName,
		Response:   text,
		Completed:  req.Completed,
	}
	if err := s.store.UpsertEventResponse(r.Context(), &response); err != nil {
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	writeJSON(w, http.StatusOK, responsePayload(response))
}

func (s *Server) handleGetResponses(w http.ResponseWriter, r *http.Request, roomID string) {
	eventID := r.URL.Query().Get("event_id")
	if eventID == "" {
		writeError(w, http.StatusBadRequest, "event_id is required")
		return
	}
	responses, err := s.store.EventResponsesFor(r.Context(), roomID, eventID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	payload := make([]map[string]any, 0, len(responses))
	for _, resp := range responses {
		payload = append(payload, responsePayload(resp))
	}
	writeJSON(w, http.StatusOK, map[string]any{"responses": payload})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, roomID string) {
	playerName := r.URL.Query().Get("player")
	if playerName == "" {
		writeError(w, http.StatusBadRequest, "player is required")
		return
	}
	answers, err := s.store.AnswersForRoom(r.Context(), roomID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	questions, err := s.store.Questions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	catalog := game.NewQuestionCatalog(questions)
	entries := game.BuildHistory(catalog, answers, playerName)
	writeJSON(w, http.StatusOK, map[string]any{"history": historyPayload(entries)})
}

func (s *Server) handleQuestionCatalog(w http.ResponseWriter, r *http.Request) {
	questions, err := s.store.Questions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	payload := make([]map[string]any, 0, len(questions))
	for _, q := range questions {
		payload = append(payload, questionPayload(q))
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": payload})
}

func (s *Server) handleEventCatalog(w http.ResponseWriter, r *http.Request) {
	events, err := s.store.Events(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	payload := make([]map[string]any, 0, len(events))
	for _, e := range events {
		payload = append(payload, eventPayload(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": payload})
}

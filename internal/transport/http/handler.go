package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"personquiz/internal/app"
	"personquiz/internal/domain"
)

// Handler exposes the quiz API over HTTP-JSON.
type Handler struct {
	service     *app.QuizService
	defaultLang domain.Lang
}

func NewHandler(service *app.QuizService, defaultLang domain.Lang) *Handler {
	if defaultLang == "" {
		defaultLang = domain.LangSwedish
	}
	return &Handler{service: service, defaultLang: defaultLang}
}

// Register wires all routes into mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", withLogging(h.handleHealth))
	mux.HandleFunc("/api/questions", withLogging(h.handleQuestions))
	mux.HandleFunc("/api/challenge", withLogging(h.handleChallenge))
	mux.HandleFunc("/api/check", withLogging(h.handleCheck))
	mux.HandleFunc("/api/submit", withLogging(h.handleSubmit))
	mux.HandleFunc("/api/leaderboard", withLogging(h.handleLeaderboard))
}

func (h *Handler) lang(r *http.Request) domain.Lang {
	if v := r.URL.Query().Get("lang"); v != "" {
		return domain.Lang(v)
	}
	return h.defaultLang
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	questions, err := h.service.Questions(r.Context(), h.lang(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

func (h *Handler) handleChallenge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	items, err := h.service.Challenge(r.Context(), h.lang(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var payload struct {
		ID       int              `json:"id"`
		Selected domain.OptionKey `json:"selected"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid check payload")
		return
	}
	res, err := h.service.Check(r.Context(), h.lang(r), payload.ID, payload.Selected)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var payload struct {
		Name    string          `json:"name"`
		Answers []domain.Answer `json:"answers"`
		Extra   []int           `json:"extra"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid submit payload")
		return
	}
	res, err := h.service.Submit(r.Context(), h.lang(r), payload.Name, payload.Answers, payload.Extra)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit := app.DefaultLeaderboardLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	items, err := h.service.Leaderboard(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if items == nil {
		items = []domain.LeaderboardItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": items})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuestionNotFound), errors.Is(err, domain.ErrContentNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidOption), errors.Is(err, domain.ErrEmptyName), errors.Is(err, domain.ErrNameTooLong):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

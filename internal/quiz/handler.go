package quiz

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/study-app/backend/internal/challenge"
	"github.com/study-app/backend/internal/models"
)

type Handler struct {
	store      *Store
	tokens     *challenge.TokenService
	challenges *challenge.Service
}

func NewHandler(store *Store, tokens *challenge.TokenService, challenges *challenge.Service) *Handler {
	return &Handler{store: store, tokens: tokens, challenges: challenges}
}

func getStudentID(r *http.Request) (int64, bool) {
	id, ok := r.Context().Value("student_id").(int64)
	return id, ok
}

// StartSession mints a signed quiz session token for an attempt starting
// now. The token is opaque to the client and is spent exactly once when
// the result is submitted.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	studentID, ok := getStudentID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.StartQuizSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.QuizType == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "quiz_type is required"})
		return
	}

	token, err := h.tokens.Mint(studentID, req.MaterialID, req.QuizType)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to start session"})
		return
	}

	writeJSON(w, http.StatusCreated, models.StartQuizSessionResponse{
		SessionToken:     token,
		ExpiresInSeconds: int(h.tokens.TTL().Seconds()),
	})
}

// SubmitResult saves the quiz result and then runs the challenge hook.
// The hook outcome is advisory: whatever it says, the result is already
// committed and this endpoint answers 201.
func (h *Handler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	studentID, ok := getStudentID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.SubmitQuizResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.QuizType == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "quiz_type is required"})
		return
	}
	if req.TotalQuestions < 0 || req.Score < 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "score and total_questions must not be negative"})
		return
	}

	result := models.QuizResult{
		StudentID:      studentID,
		QuizType:       req.QuizType,
		Score:          req.Score,
		TotalQuestions: req.TotalQuestions,
		ActiveSeconds:  req.ActiveSeconds,
	}
	if err := h.store.SaveResult(r.Context(), &result); err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to save quiz result"})
		return
	}

	outcome := h.challenges.ProcessSession(r.Context(), challenge.ProcessSessionInput{
		QuizResultID:   result.ID,
		StudentID:      studentID,
		QuizType:       req.QuizType,
		Score:          req.Score,
		TotalQuestions: req.TotalQuestions,
		ActiveSeconds:  req.ActiveSeconds,
		SessionToken:   req.SessionToken,
	})

	writeJSON(w, http.StatusCreated, models.SubmitQuizResultResponse{
		Result:    result,
		Challenge: outcome,
	})
}

func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	studentID, ok := getStudentID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	limit := intQueryParam(r.URL.Query(), "limit", 20)
	results, err := h.store.ListRecentResults(r.Context(), studentID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list quiz results"})
		return
	}

	writeJSON(w, http.StatusOK, models.QuizResultListResponse{Results: results})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	s := query.Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return defaultVal
	}
	return v
}

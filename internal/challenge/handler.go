package challenge

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/study-app/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func getStudentID(r *http.Request) (int64, bool) {
	id, ok := r.Context().Value("student_id").(int64)
	return id, ok
}

func (h *Handler) WeeklyStatus(w http.ResponseWriter, r *http.Request) {
	studentID, ok := getStudentID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	resp, err := h.service.GetWeeklyStatus(r.Context(), studentID)
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Student not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get weekly status"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

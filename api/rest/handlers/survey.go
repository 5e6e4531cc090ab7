package handlers

import (
	"encoding/json"
	"net/http"

	"doomsday-orchestrator/core/models"
	"doomsday-orchestrator/core/orchestrator"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SurveyHandler handles survey submission and result polling requests
type SurveyHandler struct {
	orch *orchestrator.Orchestrator
	log  *zap.Logger
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(orch *orchestrator.Orchestrator, log *zap.Logger) *SurveyHandler {
	return &SurveyHandler{orch: orch, log: log}
}

// SubmitSurveyRequest represents the request to submit a survey
type SubmitSurveyRequest struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	JobTitle  string `json:"job_title"`
	Strengths string `json:"strengths"`
	Hobbies   string `json:"hobbies"`
}

// SubmitSurveyResponse represents the response after submitting a survey
type SubmitSurveyResponse struct {
	SessionID string           `json:"session_id"`
	Status    models.JobStatus `json:"status"`
}

// ResultResponse represents the polled analysis result
type ResultResponse struct {
	SessionID   string              `json:"session_id"`
	Status      models.JobStatus    `json:"status"`
	DDay        *int                `json:"dday,omitempty"`
	SkillRisks  []models.SkillRisk  `json:"skill_risks,omitempty"`
	CareerCards []models.CareerCard `json:"career_cards,omitempty"`
}

// Submit handles POST /survey
func (h *SurveyHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitSurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request", Details: []string{"malformed JSON body"}})
		return
	}

	job, err := h.orch.Submit(r.Context(), req.SessionID, models.Survey{
		Name:      req.Name,
		JobTitle:  req.JobTitle,
		Strengths: req.Strengths,
		Hobbies:   req.Hobbies,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, SubmitSurveyResponse{
		SessionID: job.SessionID,
		Status:    job.Status,
	})
}

// GetResult handles GET /result/{sid}. While the job is analyzing it
// answers 202; completed and error are both 200 so the polling client
// can tell a terminal analysis failure apart from a transient fault.
func (h *SurveyHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sid"]

	job, err := h.orch.GetStatus(r.Context(), sessionID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	resp := ResultResponse{
		SessionID: job.SessionID,
		Status:    job.Status,
	}
	switch job.Status {
	case models.JobStatusAnalyzing:
		writeJSON(w, http.StatusAccepted, resp)
	case models.JobStatusCompleted:
		resp.DDay = &job.Verdict.DDay
		resp.SkillRisks = job.Verdict.SkillRisks
		resp.CareerCards = job.Verdict.CareerCards
		writeJSON(w, http.StatusOK, resp)
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

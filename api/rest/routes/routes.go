package routes

import (
	"doomsday-orchestrator/api/rest/handlers"
	"doomsday-orchestrator/core/guestbook"
	"doomsday-orchestrator/core/orchestrator"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *mux.Router, orch *orchestrator.Orchestrator, manager *guestbook.Manager, log *zap.Logger) {
	surveyHandler := handlers.NewSurveyHandler(orch, log)
	guestbookHandler := handlers.NewGuestbookHandler(manager, log)

	// Survey + result endpoints
	r.HandleFunc("/survey", surveyHandler.Submit).Methods("POST")
	r.HandleFunc("/result/{sid}", surveyHandler.GetResult).Methods("GET")

	// Guestbook endpoints
	r.HandleFunc("/guestbook", guestbookHandler.Post).Methods("POST")
	r.HandleFunc("/guestbook", guestbookHandler.List).Methods("GET")
	r.HandleFunc("/guestbook/{id}/reaction", guestbookHandler.React).Methods("POST")
}

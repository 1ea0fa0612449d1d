package handler

import (
	"net/http"

	"github.com/Dan9191/finance-tracker/internal/config"
	"github.com/Dan9191/finance-tracker/internal/middleware"
	"github.com/gorilla/mux"
)

// NewRouter wires every route. Routes other than registration, login, health and key rate
// require a Bearer token.
func NewRouter(h *Handler, cfg *config.Config) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(h.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.notAllowed)

	// Public routes
	r.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/key-rate", h.KeyRate).Methods(http.MethodGet)

	// Protected routes
	auth := r.NewRoute().Subrouter()
	auth.Use(middleware.AuthMiddleware(cfg))
	auth.HandleFunc("/obligations", h.ListObligations).Methods(http.MethodGet)
	auth.HandleFunc("/obligations", h.CreateObligation).Methods(http.MethodPost)
	auth.HandleFunc("/obligations/{id:[0-9]+}", h.GetObligation).Methods(http.MethodGet)
	auth.HandleFunc("/obligations/{id:[0-9]+}", h.UpdateObligation).Methods(http.MethodPut)
	auth.HandleFunc("/obligations/{id:[0-9]+}", h.DeleteObligation).Methods(http.MethodDelete)

	auth.HandleFunc("/obligations/{id:[0-9]+}/edit", h.StartEdit).Methods(http.MethodPost)
	auth.HandleFunc("/obligations/{id:[0-9]+}/edit", h.EditDraft).Methods(http.MethodGet)
	auth.HandleFunc("/obligations/{id:[0-9]+}/edit", h.CancelEdit).Methods(http.MethodDelete)
	auth.HandleFunc("/obligations/{id:[0-9]+}/edit/payments", h.AppendPayment).Methods(http.MethodPost)
	auth.HandleFunc("/obligations/{id:[0-9]+}/edit/payments/{n:[0-9]+}", h.UpdatePayment).Methods(http.MethodPatch)
	auth.HandleFunc("/obligations/{id:[0-9]+}/edit/payments/{n:[0-9]+}", h.RemovePayment).Methods(http.MethodDelete)
	auth.HandleFunc("/obligations/{id:[0-9]+}/edit/autofill", h.AutoFill).Methods(http.MethodPost)
	auth.HandleFunc("/obligations/{id:[0-9]+}/edit/save", h.SaveEdit).Methods(http.MethodPost)

	auth.HandleFunc("/upcoming", h.Upcoming).Methods(http.MethodGet)
	auth.HandleFunc("/overdue", h.Overdue).Methods(http.MethodGet)
	auth.HandleFunc("/summary/monthly", h.MonthlySummary).Methods(http.MethodGet)
	auth.HandleFunc("/summary/yearly", h.YearlySummary).Methods(http.MethodGet)

	return r
}

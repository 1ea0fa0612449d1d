package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Dan9191/finance-tracker/internal/middleware"
	"github.com/Dan9191/finance-tracker/internal/schedule"
	"github.com/Dan9191/finance-tracker/internal/service"
	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// KeyRateProvider returns the current central bank key rate in percent.
type KeyRateProvider interface {
	GetKeyRate(ctx context.Context) (float64, error)
}

type Handler struct {
	svc   *service.Service
	rates KeyRateProvider
	log   *logrus.Logger
}

func NewHandler(svc *service.Service, rates KeyRateProvider, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, rates: rates, log: log}
}

type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func statusOf(err error) int {
	var ve *schedule.ValidationError
	var nf *schedule.NotFoundError
	var te *schedule.TransientIOError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &te):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Errorf("Unhandled error: %v", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Status: status, Message: msg})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return schedule.Validationf("invalid request body: %v", err)
	}
	return nil
}

func userID(r *http.Request) int64 {
	id, _ := middleware.UserIDFromContext(r.Context())
	return id
}

func pathInt(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, schedule.Validationf("invalid %s %q", name, mux.Vars(r)[name])
	}
	return v, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, schedule.Validationf("invalid %s %q", name, raw)
	}
	return v, nil
}

// obligationPath reads {id} and, when present, {n}.
func obligationPath(r *http.Request) (id int64, n int, err error) {
	if id, err = pathInt(r, "id"); err != nil {
		return 0, 0, err
	}
	if _, ok := mux.Vars(r)["n"]; ok {
		var n64 int64
		if n64, err = pathInt(r, "n"); err != nil {
			return 0, 0, err
		}
		n = int(n64)
	}
	return id, n, nil
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	user, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// KeyRate reports the latest central bank key rate
func (h *Handler) KeyRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.rates.GetKeyRate(r.Context())
	if err != nil {
		h.writeError(w, &schedule.TransientIOError{Op: "get key rate", Err: err})
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"key_rate": rate})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) notAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
		Status:  http.StatusMethodNotAllowed,
		Message: fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path),
	})
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Status: http.StatusNotFound, Message: "route not found"})
}

package handler

import (
	"io"
	"net/http"

	"github.com/Dan9191/finance-tracker/internal/schedule"
)

func (h *Handler) StartEdit(w http.ResponseWriter, r *http.Request) {
	id, _, err := obligationPath(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	v, err := h.svc.StartEdit(r.Context(), userID(r), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) EditDraft(w http.ResponseWriter, r *http.Request) {
	id, _, err := obligationPath(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	v, err := h.svc.EditDraft(userID(r), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	id, _, err := obligationPath(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.svc.CancelEdit(userID(r), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AppendPayment(w http.ResponseWriter, r *http.Request) {
	id, _, err := obligationPath(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	p, err := h.svc.AppendPayment(userID(r), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, n, err := obligationPath(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, schedule.Validationf("failed to read request body: %v", err))
		return
	}
	patch, err := parsePatch(body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	p, err := h.svc.UpdatePayment(userID(r), id, n, patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) RemovePayment(w http.ResponseWriter, r *http.Request) {
	id, n, err := obligationPath(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.svc.RemovePayment(userID(r), id, n); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AutoFill(w http.ResponseWriter, r *http.Request) {
	id, _, err := obligationPath(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	payments, err := h.svc.AutoFill(userID(r), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (h *Handler) SaveEdit(w http.ResponseWriter, r *http.Request) {
	id, _, err := obligationPath(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	v, err := h.svc.SaveEdit(r.Context(), userID(r), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

package handler

import (
	"bytes"
	"net/http"

	"github.com/Dan9191/finance-tracker/internal/date"
	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/Dan9191/finance-tracker/internal/schedule"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// obligationBody is an obligation as sent by clients. The derived progress fields of a
// fetched obligation are accepted so it can be sent back as is; they are ignored.
type obligationBody struct {
	models.Obligation
	PaidTotal   json.RawMessage `json:"paidTotal,omitempty"`
	Remaining   json.RawMessage `json:"remaining,omitempty"`
	ProgressPct json.RawMessage `json:"progressPct,omitempty"`
}

func (h *Handler) ListObligations(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListObligations(r.Context(), userID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) CreateObligation(w http.ResponseWriter, r *http.Request) {
	var body obligationBody
	if err := decode(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	v, err := h.svc.CreateObligation(r.Context(), userID(r), body.Obligation)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *Handler) GetObligation(w http.ResponseWriter, r *http.Request) {
	id, _, err := obligationPath(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	v, err := h.svc.GetObligation(r.Context(), userID(r), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) UpdateObligation(w http.ResponseWriter, r *http.Request) {
	id, _, err := obligationPath(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var body obligationBody
	if err := decode(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	v, err := h.svc.UpdateObligation(r.Context(), userID(r), id, body.Obligation)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) DeleteObligation(w http.ResponseWriter, r *http.Request) {
	id, _, err := obligationPath(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.svc.DeleteObligation(r.Context(), userID(r), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Upcoming serves the reminder feed. ?window=N overrides the configured look-ahead.
func (h *Handler) Upcoming(w http.ResponseWriter, r *http.Request) {
	window, err := queryInt(r, "window", -1)
	if err == nil && window < -1 {
		err = schedule.Validationf("window must not be negative")
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	list, err := h.svc.Upcoming(r.Context(), userID(r), window)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) Overdue(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Overdue(r.Context(), userID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", 0)
	if err != nil {
		h.writeError(w, err)
		return
	}
	month, err := queryInt(r, "month", 0)
	if err != nil {
		h.writeError(w, err)
		return
	}
	s, err := h.svc.MonthlySummary(r.Context(), userID(r), year, month)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) YearlySummary(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", 0)
	if err != nil {
		h.writeError(w, err)
		return
	}
	s, err := h.svc.YearlySummary(r.Context(), userID(r), year)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// parsePatch reads a partial payment row. An explicit null date clears it.
func parsePatch(body []byte) (schedule.PaymentPatch, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return schedule.PaymentPatch{}, schedule.Validationf("invalid request body: %v", err)
	}
	var patch schedule.PaymentPatch
	for key, raw := range fields {
		var err error
		switch key {
		case "ok":
			patch.OK = new(bool)
			err = json.Unmarshal(raw, patch.OK)
		case "date":
			if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
				patch.ClearDate = true
				continue
			}
			patch.Date = new(date.Date)
			err = json.Unmarshal(raw, patch.Date)
		case "amount":
			patch.Amount = new(decimal.Decimal)
			err = json.Unmarshal(raw, patch.Amount)
		case "note":
			patch.Note = new(string)
			err = json.Unmarshal(raw, patch.Note)
		default:
			return schedule.PaymentPatch{}, schedule.Validationf("unknown field %q", key)
		}
		if err != nil {
			return schedule.PaymentPatch{}, schedule.Validationf("invalid %s: %v", key, err)
		}
	}
	return patch, nil
}

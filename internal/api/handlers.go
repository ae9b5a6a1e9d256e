package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Tiliavir/trivial-time-balance/internal/balance"
	"github.com/Tiliavir/trivial-time-balance/internal/daykey"
	"github.com/Tiliavir/trivial-time-balance/internal/model"
	"github.com/Tiliavir/trivial-time-balance/internal/storage"
	"github.com/Tiliavir/trivial-time-balance/internal/timecalc"
	"github.com/Tiliavir/trivial-time-balance/internal/validate"
)

// Handler serves the API from a calculator and the stores it reads.
type Handler struct {
	calc     *balance.Calculator
	entries  storage.EntryStore
	waivers  storage.WaiverStore
	validate *validate.Validator
	logger   *slog.Logger
	now      func() time.Time
}

// NewHandler returns a Handler. calc must read from entries and waivers.
func NewHandler(calc *balance.Calculator, entries storage.EntryStore, waivers storage.WaiverStore, logger *slog.Logger) *Handler {
	return &Handler{
		calc:     calc,
		entries:  entries,
		waivers:  waivers,
		validate: validate.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// BalanceResponse is returned by GET /api/balance.
type BalanceResponse struct {
	Until      string `json:"until"`
	Balance    string `json:"balance"`
	FirstInput string `json:"first_input,omitempty"`
}

// DayResponse describes one calendar day.
type DayResponse struct {
	Date    string `json:"date"`
	WorkDay bool   `json:"work_day"`
	Source  string `json:"source"`
	Total   string `json:"total"`
	Balance string `json:"balance"`
	Overall string `json:"overall,omitempty"`
}

// WaiverDTO is a waiver with its date.
type WaiverDTO struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
	Hours  string `json:"hours"`
}

type entryRequest struct {
	DayTotal string   `json:"day-total" validate:"omitempty,hhmm"`
	Values   []string `json:"values" validate:"omitempty,dive,punch"`
}

type waiverRequest struct {
	Reason string `json:"reason" validate:"required,max=200"`
	Hours  string `json:"hours" validate:"hhmm"`
}

// GetBalance returns the overall balance up to, and excluding, ?until.
// Without ?until the target is today, or tomorrow when count-today is set.
// GET /api/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	var until time.Time
	if s := r.URL.Query().Get("until"); s != "" {
		d, err := timecalc.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid until date", err)
			return
		}
		until = d
	} else {
		until = timecalc.Civil(h.now())
		if h.calc.Preferences().CountToday {
			until = until.AddDate(0, 0, 1)
		}
	}

	first, err := h.calc.FirstInput()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read entries", err)
		return
	}
	res := <-h.calc.UntilDayAsync(r.Context(), until)
	if res.Err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute balance", res.Err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{
		Until:      timecalc.DateStr(until),
		Balance:    res.Balance,
		FirstInput: first,
	})
}

// GetDay returns the total and balance of a single day.
// GET /api/days/{date}
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	prefs := h.calc.Preferences()
	total, src, err := h.calc.DayTotal(d)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read day", err)
		return
	}
	bal, err := h.calc.DayBalance(d)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute balance", err)
		return
	}
	writeJSON(w, http.StatusOK, DayResponse{
		Date:    timecalc.DateStr(d),
		WorkDay: prefs.WorksOn(d.Weekday()),
		Source:  src.String(),
		Total:   total.String(),
		Balance: bal,
	})
}

// GetWeek returns the week containing ?date (default today).
// GET /api/week
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	day := timecalc.Civil(h.now())
	if s := r.URL.Query().Get("date"); s != "" {
		d, err := timecalc.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
		day = d
	}
	week, err := h.calc.Week(r.Context(), day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute week", err)
		return
	}
	out := make([]DayResponse, len(week))
	for i, d := range week {
		out[i] = DayResponse{
			Date:    timecalc.DateStr(d.Date),
			WorkDay: d.WorkDay,
			Source:  d.Source.String(),
			Total:   d.Total.String(),
			Balance: d.Balance.String(),
			Overall: d.Overall,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// GetEntry returns the stored entry of a day.
// GET /api/entries/{date}
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	e, found, err := h.entries.Get(daykey.Entry(d))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read entry", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Entry not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// PutEntry replaces the entry of a day.
// PUT /api/entries/{date}
func (h *Handler) PutEntry(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	var req entryRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.DayTotal == "" && len(req.Values) == 0 {
		writeError(w, http.StatusBadRequest, "Either day-total or values is required", nil)
		return
	}
	e := model.DayEntry{DayTotal: req.DayTotal, Values: req.Values}
	if err := h.entries.Set(daykey.Entry(d), e); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save entry", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// DeleteEntry removes the entry of a day.
// DELETE /api/entries/{date}
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	if err := h.entries.Delete(daykey.Entry(d)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListWaivers returns every waiver ordered by date.
// GET /api/waivers
func (h *Handler) ListWaivers(w http.ResponseWriter, r *http.Request) {
	all, err := storage.All[model.WaivedDay](h.waivers)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read waivers", err)
		return
	}
	out := make([]WaiverDTO, 0, len(all))
	for k, v := range all {
		out = append(out, WaiverDTO{Date: k, Reason: v.Reason, Hours: v.Hours})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	writeJSON(w, http.StatusOK, out)
}

// GetWaiver returns the waiver of a day.
// GET /api/waivers/{date}
func (h *Handler) GetWaiver(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	key := daykey.Waiver(d)
	v, found, err := h.waivers.Get(key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read waiver", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Waiver not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, WaiverDTO{Date: key, Reason: v.Reason, Hours: v.Hours})
}

// PutWaiver creates or replaces the waiver of a day. Hours default to the
// configured hours per day.
// PUT /api/waivers/{date}
func (h *Handler) PutWaiver(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	var req waiverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Hours == "" {
		req.Hours = h.calc.Preferences().HoursPerDay
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}
	key := daykey.Waiver(d)
	if err := h.waivers.Set(key, model.WaivedDay{Reason: req.Reason, Hours: req.Hours}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save waiver", err)
		return
	}
	writeJSON(w, http.StatusOK, WaiverDTO{Date: key, Reason: req.Reason, Hours: req.Hours})
}

// DeleteWaiver removes the waiver of a day.
// DELETE /api/waivers/{date}
func (h *Handler) DeleteWaiver(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	if err := h.waivers.Delete(daykey.Waiver(d)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete waiver", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) dateParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	d, err := timecalc.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return time.Time{}, false
	}
	return d, true
}

// decode reads a JSON body into dst and validates it.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validate.Errors
		if errors.As(err, &verrs) {
			writeError(w, http.StatusBadRequest, "Validation failed", err)
			return false
		}
		writeError(w, http.StatusInternalServerError, "Validation error", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

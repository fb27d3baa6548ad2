/*
handlers.go - HTTP API handlers for the repayment schedule service

PURPOSE:
  Exposes the schedule engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the engine.

ENDPOINTS:
  Schedules:
    POST   /api/schedules           Compute a schedule from a request body
                                    ?format=json|csv|text selects the output
  Runs (archive):
    GET    /api/runs                List archived runs
    GET    /api/runs/{id}           Archived run header
    GET    /api/runs/{id}/rows      Archived installment table

  Health:
    GET    /api/health              Liveness probe

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Build and compute the schedule
  4. Archive the run (when an archive store is configured)
  5. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Unknown run id
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/repayment-engine/render"
	"github.com/warp/repayment-engine/schedule"
	"github.com/warp/repayment-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers. Archive may be nil, in
// which case computed runs are not persisted.
type Handler struct {
	Archive *sqlite.Store
}

// NewHandler creates a new handler with the given archive store.
func NewHandler(archive *sqlite.Store) *Handler {
	return &Handler{Archive: archive}
}

// =============================================================================
// SCHEDULE COMPUTATION
// =============================================================================

// ComputeSchedule builds, computes and optionally archives one schedule.
func (h *Handler) ComputeSchedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s, err := buildSchedule(req)
	if err != nil {
		// Everything buildSchedule rejects is the caller's input.
		writeError(w, http.StatusBadRequest, "Invalid schedule request", err)
		return
	}
	s.Calc()

	var runID *int64
	if h.Archive != nil {
		id, err := h.Archive.SaveRun(r.Context(), s)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to archive run", err)
			return
		}
		runID = &id
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, toScheduleResponse(s, runID))
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		if err := render.CSV(s, w); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to render csv", err)
		}
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, render.Text(s))
	default:
		writeError(w, http.StatusBadRequest, "Unknown format", nil)
	}
}

// buildSchedule turns a request into a computed-ready engine instance.
// Application order matters: extra payments and repayments land in the
// ledger before settings and style generation read it.
func buildSchedule(req ScheduleRequest) (*schedule.Schedule, error) {
	principal, err := decimal.NewFromString(req.Principal)
	if err != nil {
		return nil, fmt.Errorf("principal %q: %w", req.Principal, err)
	}
	annualRate, err := decimal.NewFromString(req.AnnualRate)
	if err != nil {
		return nil, fmt.Errorf("annual_rate %q: %w", req.AnnualRate, err)
	}
	funding, err := schedule.ParseDate(req.Funding)
	if err != nil {
		return nil, fmt.Errorf("funding: %w", err)
	}
	end, err := schedule.ParseDate(req.End)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}
	granularity, err := schedule.ParseGranularity(req.Granularity)
	if err != nil {
		return nil, err
	}

	s, err := schedule.New(principal, annualRate, funding, end, granularity)
	if err != nil {
		return nil, err
	}

	for _, p := range req.Payments {
		date, amount, err := parseFlowChange(p)
		if err != nil {
			return nil, fmt.Errorf("payment: %w", err)
		}
		if err := s.AddPayment(date, amount); err != nil {
			return nil, err
		}
	}
	for _, rp := range req.Repayments {
		date, amount, err := parseFlowChange(rp)
		if err != nil {
			return nil, fmt.Errorf("repayment: %w", err)
		}
		if err := s.AddRepayment(date, amount); err != nil {
			return nil, err
		}
	}
	for _, rc := range req.Rates {
		date, err := schedule.ParseDate(rc.Date)
		if err != nil {
			return nil, fmt.Errorf("rate date: %w", err)
		}
		rate, err := decimal.NewFromString(rc.Rate)
		if err != nil {
			return nil, fmt.Errorf("rate %q: %w", rc.Rate, err)
		}
		if err := s.AddRate(date, rate); err != nil {
			return nil, err
		}
	}

	if req.FirstRepaymentDate != "" {
		grace, err := schedule.ParseDate(req.FirstRepaymentDate)
		if err != nil {
			return nil, fmt.Errorf("first_repayment_date: %w", err)
		}
		if err := s.SetFirstRepaymentDate(grace); err != nil {
			return nil, err
		}
	}
	s.SetCalcDaily(req.DailyAccrual)

	switch schedule.Style(req.Style) {
	case schedule.StyleManual, "":
		// Repayments come only from the request body.
	case schedule.StyleLinear:
		if err := s.SetLinearStyle(); err != nil {
			return nil, err
		}
	case schedule.StyleAnnuity:
		places := int32(2)
		if req.AnnuityDecimalPlaces != nil {
			places = *req.AnnuityDecimalPlaces
		}
		if err := s.SetAnnuityStyle(places); err != nil {
			return nil, err
		}
	case schedule.StyleBalloon:
		if err := s.SetBalloonStyle(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown style %q", req.Style)
	}

	return s, nil
}

func parseFlowChange(dto FlowChangeDTO) (schedule.Date, decimal.Decimal, error) {
	date, err := schedule.ParseDate(dto.Date)
	if err != nil {
		return schedule.Date{}, decimal.Zero, err
	}
	amount, err := decimal.NewFromString(dto.Amount)
	if err != nil {
		return schedule.Date{}, decimal.Zero, fmt.Errorf("amount %q: %w", dto.Amount, err)
	}
	return date, amount, nil
}

// =============================================================================
// RUN ARCHIVE
// =============================================================================

// ListRuns returns the most recent archived runs.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.Archive == nil {
		writeError(w, http.StatusNotFound, "No archive configured", nil)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	runs, err := h.Archive.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}

	dtos := make([]RunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRun returns an archived run header.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookupRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toRunDTO(*run))
}

// GetRunRows returns the archived installment table of a run.
func (h *Handler) GetRunRows(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookupRun(w, r)
	if !ok {
		return
	}

	rows, err := h.Archive.RunInstallments(r.Context(), run.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load run rows", err)
		return
	}

	dtos := make([]InstallmentDTO, len(rows))
	for i, row := range rows {
		dtos[i] = InstallmentDTO{
			Order:    row.Order,
			Period:   row.Period,
			Start:    row.FirstDay,
			End:      row.LastDay,
			Length:   row.Length,
			Interest: row.Interest,
			Capital:  row.Capital,
			Whole:    row.Whole,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) lookupRun(w http.ResponseWriter, r *http.Request) (*sqlite.RunRecord, bool) {
	if h.Archive == nil {
		writeError(w, http.StatusNotFound, "No archive configured", nil)
		return nil, false
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid run id", err)
		return nil, false
	}

	run, err := h.Archive.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load run", err)
		return nil, false
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "Run not found", nil)
		return nil, false
	}
	return run, true
}

// =============================================================================
// HEALTH
// =============================================================================

// Health is the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

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

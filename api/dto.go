/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

MONEY ON THE WIRE:
  Amounts and rates travel as decimal strings ("120000", "0.02"), never as
  JSON numbers. Clients keep cent-exact values; the handler parses with
  shopspring/decimal and rejects anything unparsable.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - server.go: Route wiring
*/
package api

import (
	"time"

	"github.com/warp/repayment-engine/schedule"
	"github.com/warp/repayment-engine/store/sqlite"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ScheduleRequest describes one computation: the funded loan, the window,
// the conventions and the repayment style.
type ScheduleRequest struct {
	Principal  string `json:"principal"`
	AnnualRate string `json:"annual_rate"`

	// Funding is the day the principal moves; accrual starts the day after.
	Funding string `json:"funding"`
	End     string `json:"end"`

	Granularity string `json:"granularity"` // monthly, quarterly, yearly
	Style       string `json:"style"`       // manual, linear, annuity, balloon

	FirstRepaymentDate   string `json:"first_repayment_date,omitempty"`
	DailyAccrual         bool   `json:"daily_accrual,omitempty"`
	AnnuityDecimalPlaces *int32 `json:"annuity_decimal_places,omitempty"`

	// Extra flows and rate changes on top of the initial funding and rate.
	Payments   []FlowChangeDTO `json:"payments,omitempty"`
	Repayments []FlowChangeDTO `json:"repayments,omitempty"`
	Rates      []RateChangeDTO `json:"rates,omitempty"`
}

// FlowChangeDTO posts an amount on a date.
type FlowChangeDTO struct {
	Date   string `json:"date"`
	Amount string `json:"amount"`
}

// RateChangeDTO sets the annual rate from a date onward.
type RateChangeDTO struct {
	Date string `json:"date"`
	Rate string `json:"rate"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// InstallmentDTO is one row of the computed schedule.
type InstallmentDTO struct {
	Order    int    `json:"order"`
	Period   string `json:"period"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Length   int    `json:"length"`
	Interest string `json:"interest"`
	Capital  string `json:"capital"`
	Whole    string `json:"whole"`
}

// ScheduleResponse is the computed schedule plus its archive id when the
// service runs with an archive store.
type ScheduleResponse struct {
	RunID *int64 `json:"run_id,omitempty"`

	Start              string `json:"start"`
	End                string `json:"end"`
	FirstRepaymentDate string `json:"first_repayment_date,omitempty"`
	Granularity        string `json:"granularity"`
	Style              string `json:"style"`
	DailyAccrual       bool   `json:"daily_accrual"`

	Installments []InstallmentDTO `json:"installments"`

	SumOfPayments string `json:"sum_of_payments"`
	SumOfInterest string `json:"sum_of_interest"`
	SumOfCapital  string `json:"sum_of_capital"`
}

// RunDTO is an archived run header.
type RunDTO struct {
	ID          int64  `json:"id"`
	Start       string `json:"start"`
	End         string `json:"end"`
	GraceTill   string `json:"grace_till,omitempty"`
	Granularity string `json:"granularity"`
	Style       string `json:"style"`
	DailyCalc   bool   `json:"daily_calc"`
	SumPayments string `json:"sum_payments"`
	SumInterest string `json:"sum_interest"`
	SumCapital  string `json:"sum_capital"`
	CreatedAt   string `json:"created_at"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toScheduleResponse(s *schedule.Schedule, runID *int64) ScheduleResponse {
	resp := ScheduleResponse{
		RunID:         runID,
		Start:         s.Start().String(),
		End:           s.End().String(),
		Granularity:   s.Granularity().String(),
		Style:         string(s.Style()),
		DailyAccrual:  s.IsCalcDaily(),
		SumOfPayments: s.SumOfPayments().StringFixed(2),
		SumOfInterest: s.Installments().SumOfInterest().StringFixed(2),
		SumOfCapital:  s.Installments().SumOfCapital().StringFixed(2),
	}
	if !s.FirstRepaymentDate().IsZero() {
		resp.FirstRepaymentDate = s.FirstRepaymentDate().String()
	}

	resp.Installments = make([]InstallmentDTO, 0, s.Installments().Len())
	for _, inst := range s.Installments().All() {
		p := inst.Period
		resp.Installments = append(resp.Installments, InstallmentDTO{
			Order:    inst.Order,
			Period:   p.Label,
			Start:    p.FirstDay.String(),
			End:      p.LastDay.String(),
			Length:   p.Length,
			Interest: inst.Interest().StringFixed(2),
			Capital:  inst.Capital().StringFixed(2),
			Whole:    inst.Whole().StringFixed(2),
		})
	}
	return resp
}

func toRunDTO(r sqlite.RunRecord) RunDTO {
	return RunDTO{
		ID:          r.ID,
		Start:       r.StartDay,
		End:         r.EndDay,
		GraceTill:   r.GraceTill,
		Granularity: r.Granularity,
		Style:       r.Style,
		DailyCalc:   r.CalcDaily,
		SumPayments: r.SumPayments,
		SumInterest: r.SumInterest,
		SumCapital:  r.SumCapital,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
}

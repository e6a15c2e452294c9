/*
handlers.go - HTTP API handlers for the billing ledger

PURPOSE:
  Exposes the ledger core via REST. Every mutation wraps a full
  load-mutate-save cycle against the injected repository; the core itself
  never touches I/O.

ENDPOINTS:
  Accounts:
    POST   /api/accounts                          Bootstrap account with starter fees
    GET    /api/accounts/{student}/{term}         Statement (refreshes statuses first)

  Fees:
    POST   /api/accounts/{student}/{term}/fees            Add fee line
    DELETE /api/accounts/{student}/{term}/fees/{code}     Remove fee line (no-op if absent)
    POST   /api/accounts/{student}/{term}/scholarship     Apply/replace scholarship

  Payments:
    POST   /api/accounts/{student}/{term}/payments        Record payment
    POST   /api/accounts/{student}/{term}/refresh         Refresh payment statuses

  Eligibility:
    GET    /api/accounts/{student}/{term}/eligibility            All periods
    GET    /api/accounts/{student}/{term}/eligibility/{period}   One period

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Account not found
  - 409: Account already exists
  - 500: Persistence failures

  A rejected payment (amount <= 0) is NOT an HTTP error: the result
  object comes back 200 with success=false, mirroring the core contract.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/campuspay/billing-engine/billing"
	"github.com/campuspay/billing-engine/factory"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Repo   billing.Repository
	Audit  billing.AuditLog
	Policy billing.Policy

	// Now is the clock used for payment timestamps and status refreshes.
	// Overridable in tests.
	Now func() time.Time
}

// NewHandler creates a new handler with the given repository and audit
// log. policy provides the figures for newly created accounts.
func NewHandler(repo billing.Repository, audit billing.AuditLog, policy billing.Policy) *Handler {
	return &Handler{
		Repo:   repo,
		Audit:  audit,
		Policy: policy,
		Now:    time.Now,
	}
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// CreateAccount bootstraps a new ledger with starter fees.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Student == "" {
		writeError(w, http.StatusBadRequest, "student is required")
		return
	}

	schedule, err := factory.FromJSON(factory.ScheduleJSON{
		Term:   req.Term,
		Policy: req.Policy,
		Fees:   req.Fees,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Policy == nil {
		schedule.Policy = h.Policy
	}

	student := billing.StudentID(req.Student)
	if _, err := h.Repo.Load(r.Context(), student, schedule.Term); err == nil {
		writeError(w, http.StatusConflict, "account already exists")
		return
	} else if !billing.IsNotFound(err) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	account := schedule.NewAccount(student, h.Now())
	if err := h.Repo.Save(r.Context(), account); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, statementDTO(account))
}

// GetStatement returns the full account view. Payment statuses are
// refreshed against the current time first; the refresh is idempotent
// and persisted.
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	account, ok := h.loadAccount(w, r)
	if !ok {
		return
	}
	account.RefreshPaymentStatuses(h.Now())
	if err := h.Repo.Save(r.Context(), account); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statementDTO(account))
}

// =============================================================================
// FEE HANDLERS
// =============================================================================

// AddFee appends one fee line to the assessment.
func (h *Handler) AddFee(w http.ResponseWriter, r *http.Request) {
	var req AddFeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "fee code is required")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid fee amount")
		return
	}
	category := billing.FeeCategory(req.Category)
	if category == "" {
		category = billing.CategoryOther
	}

	account, ok := h.loadAccount(w, r)
	if !ok {
		return
	}
	account.AddFee(billing.NewFeeLine(req.Code, req.Description, billing.Amount{Value: amount}, category, h.Now()))
	if err := h.Repo.Save(r.Context(), account); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statementDTO(account))
}

// RemoveFee removes all fee lines with the given code. Removing an
// absent code is a success, not an error.
func (h *Handler) RemoveFee(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	account, ok := h.loadAccount(w, r)
	if !ok {
		return
	}
	account.RemoveFee(code)
	if err := h.Repo.Save(r.Context(), account); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statementDTO(account))
}

// ApplyScholarship replaces the account's discount line with a new one
// computed from the current tuition total.
func (h *Handler) ApplyScholarship(w http.ResponseWriter, r *http.Request) {
	var req ScholarshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	percentage, err := decimal.NewFromString(req.Percentage)
	if err != nil || percentage.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid scholarship percentage")
		return
	}

	account, ok := h.loadAccount(w, r)
	if !ok {
		return
	}
	account.ApplyScholarship(percentage, req.Name, h.Now())
	if err := h.Repo.Save(r.Context(), account); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statementDTO(account))
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// RecordPayment records one payment against the account.
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment amount")
		return
	}

	account, ok := h.loadAccount(w, r)
	if !ok {
		return
	}

	result := account.RecordPayment(billing.Amount{Value: amount}, req.Channel, req.Reference, h.Now())
	dto := PaymentResultDTO{
		Success:     result.Success,
		Message:     result.Message,
		Balance:     result.Balance.String(),
		Overpayment: result.Overpayment.String(),
	}
	if !result.Success {
		// Rejected payments leave the account unmutated; nothing to save.
		writeJSON(w, http.StatusOK, dto)
		return
	}

	if err := h.Repo.Save(r.Context(), account); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Fire-and-forget audit line; failure never rolls back the ledger.
	auditErr := h.Audit.AppendPayment(r.Context(), billing.AuditEntry{
		Student:   account.Student(),
		Channel:   result.Record.ChannelText,
		Amount:    result.Record.Amount,
		CreatedAt: result.Record.CreatedAt,
	})
	if auditErr != nil {
		log.Printf("audit append failed for student %s: %v", account.Student(), auditErr)
	}

	p := paymentDTO(result.Record)
	dto.Payment = &p
	writeJSON(w, http.StatusOK, dto)
}

// RefreshStatuses sweeps every payment through the settlement clock.
func (h *Handler) RefreshStatuses(w http.ResponseWriter, r *http.Request) {
	account, ok := h.loadAccount(w, r)
	if !ok {
		return
	}
	account.RefreshPaymentStatuses(h.Now())
	if err := h.Repo.Save(r.Context(), account); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statementDTO(account))
}

// =============================================================================
// ELIGIBILITY HANDLERS
// =============================================================================

// GetEligibility returns the gate state of all three exam periods.
func (h *Handler) GetEligibility(w http.ResponseWriter, r *http.Request) {
	account, ok := h.loadAccount(w, r)
	if !ok {
		return
	}
	account.RefreshPaymentStatuses(h.Now())

	eval := billing.NewEvaluator(account.Policy())
	out := make([]EligibilityDTO, 0, 3)
	for _, period := range billing.ExamPeriods() {
		out = append(out, eligibilityDTO(eval.Evaluate(account, period)))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetEligibilityPeriod returns the gate state of one exam period.
func (h *Handler) GetEligibilityPeriod(w http.ResponseWriter, r *http.Request) {
	period, err := billing.ParseExamPeriod(chi.URLParam(r, "period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	account, ok := h.loadAccount(w, r)
	if !ok {
		return
	}
	account.RefreshPaymentStatuses(h.Now())

	eval := billing.NewEvaluator(account.Policy())
	writeJSON(w, http.StatusOK, eligibilityDTO(eval.Evaluate(account, period)))
}

// =============================================================================
// HELPERS
// =============================================================================

// loadAccount resolves the student/term URL params and loads the
// account, writing the error response itself on failure.
func (h *Handler) loadAccount(w http.ResponseWriter, r *http.Request) (*billing.LedgerAccount, bool) {
	student := billing.StudentID(chi.URLParam(r, "student"))
	term, err := billing.ParseTermKey(chi.URLParam(r, "term"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	account, err := h.Repo.Load(r.Context(), student, term)
	if err != nil {
		if billing.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "account not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, false
	}
	return account, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

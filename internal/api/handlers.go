package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/savegress/bankpulse/internal/fraud"
	"github.com/savegress/bankpulse/internal/reporting"
	"github.com/savegress/bankpulse/internal/store"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	dashboard *reporting.Dashboard
	log       logrus.FieldLogger
}

// NewHandlers creates new handlers
func NewHandlers(dashboard *reporting.Dashboard, log logrus.FieldLogger) *Handlers {
	return &Handlers{
		dashboard: dashboard,
		log:       log.WithField("component", "api"),
	}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"status":  "healthy",
		"service": "bankpulse",
		"time":    time.Now().UTC().Format(time.RFC3339),
	}
	if info, err := h.dashboard.Snapshot(r.Context()); err == nil {
		status["snapshot"] = info.Version
	} else {
		status["status"] = "degraded"
	}
	respond(w, http.StatusOK, status)
}

// Snapshot handlers

// GetSnapshot describes the current snapshot
func (h *Handlers) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	info, err := h.dashboard.Snapshot(r.Context())
	h.result(w, info, err)
}

// RefreshSnapshot reloads the store
func (h *Handlers) RefreshSnapshot(w http.ResponseWriter, r *http.Request) {
	info, err := h.dashboard.Refresh(r.Context())
	h.result(w, info, err)
}

// Summary handlers

// GetSummary gets the executive summary
func (h *Handlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboard.Summary(r.Context())
	h.result(w, summary, err)
}

// GetTopCustomers ranks customers by total balance
func (h *Handlers) GetTopCustomers(w http.ResponseWriter, r *http.Request) {
	n := 3
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid n")
			return
		}
		n = parsed
	}

	top, err := h.dashboard.TopCustomers(r.Context(), n)
	h.result(w, top, err)
}

// Fraud handlers

// GetFraud gets the full fraud report
func (h *Handlers) GetFraud(w http.ResponseWriter, r *http.Request) {
	report, err := h.dashboard.Fraud(r.Context())
	h.result(w, report, err)
}

// GetLargeTransactions lists transactions above a threshold
func (h *Handlers) GetLargeTransactions(w http.ResponseWriter, r *http.Request) {
	var threshold *decimal.Decimal
	if v := r.URL.Query().Get("threshold"); v != "" {
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid threshold")
			return
		}
		threshold = &parsed
	}

	txns, err := h.dashboard.LargeTransactions(r.Context(), threshold)
	h.result(w, txns, err)
}

// GetMultiLoanCustomers lists customers with several loans
func (h *Handlers) GetMultiLoanCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.dashboard.MultiLoanCustomers(r.Context())
	h.result(w, customers, err)
}

// GetVelocity lists bursts of large transactions
func (h *Handlers) GetVelocity(w http.ResponseWriter, r *http.Request) {
	clusters, err := h.dashboard.Velocity(r.Context())
	h.result(w, clusters, err)
}

// GetGeographicAnomalies always answers 501
func (h *Handlers) GetGeographicAnomalies(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.dashboard.GeographicAnomalies(r.Context())
	h.result(w, alerts, err)
}

// Page handlers

// GetCustomers gets the customer analytics page
func (h *Handlers) GetCustomers(w http.ResponseWriter, r *http.Request) {
	page, err := h.dashboard.Customers(r.Context())
	h.result(w, page, err)
}

// GetOperations gets the operational metrics page
func (h *Handlers) GetOperations(w http.ResponseWriter, r *http.Request) {
	page, err := h.dashboard.Operations(r.Context())
	h.result(w, page, err)
}

// GetRisk gets the risk management page
func (h *Handlers) GetRisk(w http.ResponseWriter, r *http.Request) {
	page, err := h.dashboard.Risk(r.Context())
	h.result(w, page, err)
}

// ClassifyScore classifies a single credit score
func (h *Handlers) ClassifyScore(w http.ResponseWriter, r *http.Request) {
	score, err := strconv.ParseFloat(r.URL.Query().Get("score"), 64)
	if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
		respondError(w, http.StatusBadRequest, "Invalid score")
		return
	}
	respond(w, http.StatusOK, h.dashboard.Classify(score))
}

// GetCompliance gets the compliance page
func (h *Handlers) GetCompliance(w http.ResponseWriter, r *http.Request) {
	page, err := h.dashboard.Compliance(r.Context())
	h.result(w, page, err)
}

// GetAML gets the AML case summary
func (h *Handlers) GetAML(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboard.AML(r.Context())
	h.result(w, summary, err)
}

// GetRegulatory gets the regulatory metrics
func (h *Handlers) GetRegulatory(w http.ResponseWriter, r *http.Request) {
	m, err := h.dashboard.Regulatory(r.Context())
	h.result(w, m, err)
}

// Helper functions

func (h *Handlers) result(w http.ResponseWriter, data interface{}, err error) {
	if err == nil {
		respond(w, http.StatusOK, data)
		return
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		h.log.WithError(err).Error("Request failed")
	}
	respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, reporting.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNoSnapshot):
		return http.StatusServiceUnavailable
	case errors.Is(err, fraud.ErrNotImplemented):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]string{"error": message})
}

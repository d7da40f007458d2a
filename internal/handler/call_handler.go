package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/garasindo/voice-crm-service/internal/domain"
	"github.com/garasindo/voice-crm-service/internal/repository"
	callsvc "github.com/garasindo/voice-crm-service/internal/services/call"
	"github.com/garasindo/voice-crm-service/pkg/logger"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// CallHandler handles HTTP requests for outbound calls and call analytics.
type CallHandler struct {
	service *callsvc.Service
	repoMgr repository.RepositoryManager
}

// NewCallHandler creates a new call handler.
func NewCallHandler(service *callsvc.Service, repoMgr repository.RepositoryManager) *CallHandler {
	return &CallHandler{service: service, repoMgr: repoMgr}
}

// SetupCallRoutes registers the call management routes on the given router.
func (h *CallHandler) SetupCallRoutes(router *mux.Router) {
	router.HandleFunc("/calls/initiate", h.InitiateCall).Methods("POST")
	router.HandleFunc("/calls", h.ListCalls).Methods("GET")
	router.HandleFunc("/customers/{id}/calls", h.ListCustomerCalls).Methods("GET")
	router.HandleFunc("/analytics/calls", h.GetCallStatistics).Methods("GET")

	logger.Base().Info("call routes registered")
}

// InitiateCall places an outbound voice call to a customer.
// POST /api/calls/initiate
func (h *CallHandler) InitiateCall(w http.ResponseWriter, r *http.Request) {
	var req callsvc.InitiateCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CustomerID == 0 {
		http.Error(w, "customer_id is required", http.StatusBadRequest)
		return
	}
	if req.Purpose == "" {
		req.Purpose = domain.CallPurposeReminder
	}
	if !req.Purpose.Valid() {
		http.Error(w, "invalid call_type", http.StatusBadRequest)
		return
	}

	result, err := h.service.InitiateCall(r.Context(), req)
	if err != nil {
		h.writeInitiateError(w, req.CustomerID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}

// writeInitiateError maps call initiation failures onto HTTP statuses.
func (h *CallHandler) writeInitiateError(w http.ResponseWriter, customerID uint, err error) {
	switch {
	case errors.Is(err, domain.ErrCustomerNotFound):
		http.Error(w, "Customer not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrNoPhoneNumber):
		http.Error(w, "Customer has no phone number", http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrNoVehicle):
		http.Error(w, "Customer has no registered vehicle", http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrCallPlacementFailed):
		logger.Base().Error("call placement failed",
			zap.Uint("customer_id", customerID), zap.Error(err))
		http.Error(w, "Failed to place call", http.StatusBadGateway)
	default:
		logger.Base().Error("call initiation failed",
			zap.Uint("customer_id", customerID), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ListCalls returns recent call records, newest first.
// GET /api/calls
func (h *CallHandler) ListCalls(w http.ResponseWriter, r *http.Request) {
	offset, limit := parsePagination(r)

	records, err := h.repoMgr.CallRecord().ListRecent(r.Context(), offset, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// ListCustomerCalls returns a single customer's call records.
// GET /api/customers/{id}/calls
func (h *CallHandler) ListCustomerCalls(w http.ResponseWriter, r *http.Request) {
	customerID, err := parseUintVar(r, "id")
	if err != nil {
		http.Error(w, "Invalid customer ID", http.StatusBadRequest)
		return
	}
	offset, limit := parsePagination(r)

	customer, err := h.repoMgr.Customer().GetByID(r.Context(), customerID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if customer == nil {
		http.Error(w, "Customer not found", http.StatusNotFound)
		return
	}

	records, err := h.repoMgr.CallRecord().ListByCustomer(r.Context(), customerID, offset, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// GetCallStatistics returns aggregate call outcome statistics.
// GET /api/analytics/calls
func (h *CallHandler) GetCallStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// parsePagination reads offset/limit query parameters with sane defaults.
func parsePagination(r *http.Request) (offset, limit int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return offset, limit
}

// parseUintVar extracts a numeric path variable.
func parseUintVar(r *http.Request, name string) (uint, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

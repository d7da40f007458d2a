package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/garasindo/voice-crm-service/internal/domain"
	"github.com/garasindo/voice-crm-service/internal/repository"
	"github.com/garasindo/voice-crm-service/pkg/logger"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// CRMHandler handles HTTP requests for customers, vehicles, service history
// and service schedules.
type CRMHandler struct {
	repoMgr repository.RepositoryManager
}

// NewCRMHandler creates a new CRM handler.
func NewCRMHandler(repoMgr repository.RepositoryManager) *CRMHandler {
	return &CRMHandler{repoMgr: repoMgr}
}

// SetupCRMRoutes registers the CRM routes on the given router.
func (h *CRMHandler) SetupCRMRoutes(router *mux.Router) {
	router.HandleFunc("/customers", h.CreateCustomer).Methods("POST")
	router.HandleFunc("/customers", h.ListCustomers).Methods("GET")
	router.HandleFunc("/customers/{id}", h.GetCustomer).Methods("GET")
	router.HandleFunc("/customers/{id}/vehicles", h.ListCustomerVehicles).Methods("GET")

	router.HandleFunc("/vehicles", h.CreateVehicle).Methods("POST")
	router.HandleFunc("/vehicles/{id}", h.GetVehicle).Methods("GET")
	router.HandleFunc("/vehicles/{id}/service-history", h.ListServiceHistory).Methods("GET")
	router.HandleFunc("/vehicles/{id}/service-history", h.CreateServiceHistory).Methods("POST")
	router.HandleFunc("/vehicles/{id}/schedules", h.ListVehicleSchedules).Methods("GET")

	router.HandleFunc("/schedules", h.CreateSchedule).Methods("POST")
	router.HandleFunc("/schedules/pending", h.ListPendingSchedules).Methods("GET")
	router.HandleFunc("/schedules/{id}", h.GetSchedule).Methods("GET")
	router.HandleFunc("/schedules/{id}/status", h.UpdateScheduleStatus).Methods("PUT")

	logger.Base().Info("crm routes registered")
}

// CreateCustomer creates a new customer.
// POST /api/customers
func (h *CRMHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	customer, err := h.repoMgr.Customer().Create(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(customer)
}

// ListCustomers lists customers, optionally filtered by a search query on
// name, phone or single_id.
// GET /api/customers?q=...
func (h *CRMHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	offset, limit := parsePagination(r)

	var (
		customers []*domain.Customer
		err       error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		customers, err = h.repoMgr.Customer().Search(r.Context(), q, offset, limit)
	} else {
		customers, err = h.repoMgr.Customer().List(r.Context(), offset, limit)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(customers)
}

// GetCustomer returns a customer by internal ID, or by CRM single_id when the
// path variable is not numeric.
// GET /api/customers/{id}
func (h *CRMHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	var (
		customer *domain.Customer
		err      error
	)
	if id, parseErr := parseUintVar(r, "id"); parseErr == nil {
		customer, err = h.repoMgr.Customer().GetByID(r.Context(), id)
	} else {
		customer, err = h.repoMgr.Customer().GetBySingleID(r.Context(), mux.Vars(r)["id"])
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if customer == nil {
		http.Error(w, "Customer not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(customer)
}

// ListCustomerVehicles lists a customer's vehicles.
// GET /api/customers/{id}/vehicles
func (h *CRMHandler) ListCustomerVehicles(w http.ResponseWriter, r *http.Request) {
	customerID, err := parseUintVar(r, "id")
	if err != nil {
		http.Error(w, "Invalid customer ID", http.StatusBadRequest)
		return
	}

	vehicles, err := h.repoMgr.Vehicle().ListByCustomer(r.Context(), customerID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(vehicles)
}

// CreateVehicle registers a vehicle for a customer.
// POST /api/vehicles
func (h *CRMHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CustomerID == 0 || req.NoRangka == "" {
		http.Error(w, "customer_id and no_rangka are required", http.StatusBadRequest)
		return
	}

	owner, err := h.repoMgr.Customer().GetByID(r.Context(), req.CustomerID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if owner == nil {
		http.Error(w, "Customer not found", http.StatusNotFound)
		return
	}

	vehicle, err := h.repoMgr.Vehicle().Create(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(vehicle)
}

// GetVehicle returns a vehicle by ID.
// GET /api/vehicles/{id}
func (h *CRMHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := parseUintVar(r, "id")
	if err != nil {
		http.Error(w, "Invalid vehicle ID", http.StatusBadRequest)
		return
	}

	vehicle, err := h.repoMgr.Vehicle().GetByID(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if vehicle == nil {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(vehicle)
}

// ListServiceHistory lists a vehicle's service history, newest first.
// GET /api/vehicles/{id}/service-history
func (h *CRMHandler) ListServiceHistory(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := parseUintVar(r, "id")
	if err != nil {
		http.Error(w, "Invalid vehicle ID", http.StatusBadRequest)
		return
	}
	offset, limit := parsePagination(r)

	history, err := h.repoMgr.ServiceHistory().ListByVehicle(r.Context(), vehicleID, offset, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(history)
}

// CreateServiceHistory records a completed service visit.
// POST /api/vehicles/{id}/service-history
func (h *CRMHandler) CreateServiceHistory(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := parseUintVar(r, "id")
	if err != nil {
		http.Error(w, "Invalid vehicle ID", http.StatusBadRequest)
		return
	}

	var req domain.CreateServiceHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.VehicleID = vehicleID

	vehicle, err := h.repoMgr.Vehicle().GetByID(r.Context(), vehicleID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if vehicle == nil {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}

	history, err := h.repoMgr.ServiceHistory().Create(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(history)
}

// ListVehicleSchedules lists a vehicle's service schedules.
// GET /api/vehicles/{id}/schedules
func (h *CRMHandler) ListVehicleSchedules(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := parseUintVar(r, "id")
	if err != nil {
		http.Error(w, "Invalid vehicle ID", http.StatusBadRequest)
		return
	}

	schedules, err := h.repoMgr.ServiceSchedule().ListByVehicle(r.Context(), vehicleID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(schedules)
}

// CreateSchedule books a service schedule directly, outside any call flow.
// POST /api/schedules
func (h *CRMHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateServiceScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.VehicleID == 0 || req.ScheduledDate.IsZero() {
		http.Error(w, "vehicle_id and scheduled_date are required", http.StatusBadRequest)
		return
	}

	vehicle, err := h.repoMgr.Vehicle().GetByID(r.Context(), req.VehicleID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if vehicle == nil {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}

	schedule, err := h.repoMgr.ServiceSchedule().Create(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(schedule)
}

// ListPendingSchedules lists schedules still in the scheduled state.
// GET /api/schedules/pending
func (h *CRMHandler) ListPendingSchedules(w http.ResponseWriter, r *http.Request) {
	offset, limit := parsePagination(r)

	schedules, err := h.repoMgr.ServiceSchedule().ListPending(r.Context(), offset, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(schedules)
}

// GetSchedule returns a schedule by ID.
// GET /api/schedules/{id}
func (h *CRMHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := parseUintVar(r, "id")
	if err != nil {
		http.Error(w, "Invalid schedule ID", http.StatusBadRequest)
		return
	}

	schedule, err := h.repoMgr.ServiceSchedule().GetByID(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if schedule == nil {
		http.Error(w, "Schedule not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(schedule)
}

// UpdateScheduleStatus transitions a schedule to a new status.
// PUT /api/schedules/{id}/status
func (h *CRMHandler) UpdateScheduleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseUintVar(r, "id")
	if err != nil {
		http.Error(w, "Invalid schedule ID", http.StatusBadRequest)
		return
	}

	var body struct {
		Status domain.ScheduleStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !body.Status.Valid() {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	schedule, err := h.repoMgr.ServiceSchedule().UpdateStatus(r.Context(), id, body.Status)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrScheduleNotFound):
			http.Error(w, "Schedule not found", http.StatusNotFound)
		case errors.Is(err, domain.ErrInvalidTransition):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			logger.Base().Error("schedule status update failed",
				zap.Uint("schedule_id", id), zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(schedule)
}

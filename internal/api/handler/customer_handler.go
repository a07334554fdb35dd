package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"customer-service/internal/api/handler/dto"
	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

const customerIDParam = "customerID"

type CustomerHandler struct {
	service customer.CustomerService
	logger  *slog.Logger
}

func NewCustomerHandler(s customer.CustomerService, l *slog.Logger) *CustomerHandler {
	if s == nil {
		panic("customer service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CustomerHandler{
		service: s,
		logger:  l.With("component", "CustomerHandler"),
	}
}

// getCustomerIDFromURL reports a malformed id as a missing resource, since no such URL exists.
func getCustomerIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, customerIDParam)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid customer id %q in URL path", apperrors.ErrNotFound, idStr)
	}
	return id, nil
}

// readBody returns the decoded body, or nil when it is absent or not JSON so that the domain
// reports it as bad or no data after any existence checks.
func (h *CustomerHandler) readBody(r *http.Request) any {
	data, err := decodeJSON(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		return nil
	}
	return data
}

func (h *CustomerHandler) logServiceError(r *http.Request, msg string, err error) {
	level := slog.LevelError
	if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrValidation) {
		level = slog.LevelWarn
	}
	h.logger.Log(r.Context(), level, msg, slog.Any("error", err))
}

func customerLocation(r *http.Request, customerID int64) string {
	return fmt.Sprintf("%s/customers/%d", baseURL(r), customerID)
}

// CreateCustomer handles POST /customers
// @Summary Create a new customer
// @Description Creates a customer from the JSON body. Any id in the body is ignored and the customer starts active.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.CustomerRequest true "Customer to create"
// @Success 201 {object} dto.CustomerResponse "Customer created"
// @Header 201 {string} Location "URL of the new customer"
// @Failure 400 {object} dto.ErrorResponse "Missing field or malformed body"
// @Failure 415 {object} dto.ErrorResponse "Content-Type is not application/json"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers [post]
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received create customer request")

	created, err := h.service.CreateCustomer(r.Context(), h.readBody(r))
	if err != nil {
		h.logServiceError(r, "Service failed to create customer", err)
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer created successfully", slog.Int64("customerID", created.ID))
	w.Header().Set(headerLocation, customerLocation(r, created.ID))
	respondJSON(w, http.StatusCreated, dto.NewCustomerResponse(created))
}

// GetCustomer handles GET /customers/{customerID}
// @Summary Retrieve a customer
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID"
// @Success 200 {object} dto.CustomerResponse "Customer found"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [get]
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		NotFound(w, r)
		return
	}

	cust, err := h.service.GetCustomer(r.Context(), customerID)
	if err != nil {
		h.logServiceError(r, "Service failed to get customer", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(cust))
}

// ListCustomers handles GET /customers
// @Summary List customers
// @Description Lists every customer, or only those whose name matches the query exactly.
// @Tags Customers
// @Produce json
// @Param name query string false "Exact customer name"
// @Success 200 {array} dto.CustomerResponse "Customers in ascending id order"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers [get]
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	customers, err := h.service.ListCustomers(r.Context(), name)
	if err != nil {
		h.logServiceError(r, "Service failed to list customers", err)
		respondError(w, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Listed customers", slog.Int("count", len(customers)), slog.String("nameFilter", name))
	respondJSON(w, http.StatusOK, dto.NewCustomerListResponse(customers))
}

// UpdateCustomer handles PUT /customers/{customerID}
// @Summary Replace a customer
// @Description Replaces every field of an existing customer. The path id wins over any id in the body and the customer becomes active.
// @Tags Customers
// @Accept json
// @Produce json
// @Param customerID path int true "Customer ID"
// @Param request body dto.CustomerRequest true "Replacement customer"
// @Success 200 {object} dto.CustomerResponse "Customer updated"
// @Failure 400 {object} dto.ErrorResponse "Missing field or malformed body"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 415 {object} dto.ErrorResponse "Content-Type is not application/json"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [put]
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		NotFound(w, r)
		return
	}

	updated, err := h.service.UpdateCustomer(r.Context(), customerID, h.readBody(r))
	if err != nil {
		h.logServiceError(r, "Service failed to update customer", err)
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer updated successfully", slog.Int64("customerID", updated.ID))
	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(updated))
}

// DeleteCustomer handles DELETE /customers/{customerID}
// @Summary Delete a customer
// @Description Deletes the customer if it exists. Deleting an unknown id also succeeds.
// @Tags Customers
// @Param customerID path int true "Customer ID"
// @Success 204 "Customer deleted"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [delete]
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		NotFound(w, r)
		return
	}

	if err := h.service.DeleteCustomer(r.Context(), customerID); err != nil {
		h.logServiceError(r, "Service failed to delete customer", err)
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ActivateCustomer handles PUT /customers/{customerID}/activate
// @Summary Activate a customer
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID"
// @Success 200 {object} dto.CustomerResponse "Customer is active"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/activate [put]
func (h *CustomerHandler) ActivateCustomer(w http.ResponseWriter, r *http.Request) {
	h.setActiveStatus(w, r, true)
}

// DeactivateCustomer handles PUT /customers/{customerID}/deactivate
// @Summary Deactivate a customer
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID"
// @Success 200 {object} dto.CustomerResponse "Customer is inactive"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/deactivate [put]
func (h *CustomerHandler) DeactivateCustomer(w http.ResponseWriter, r *http.Request) {
	h.setActiveStatus(w, r, false)
}

func (h *CustomerHandler) setActiveStatus(w http.ResponseWriter, r *http.Request, active bool) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		NotFound(w, r)
		return
	}

	cust, err := h.service.SetActiveStatus(r.Context(), customerID, active)
	if err != nil {
		h.logServiceError(r, "Service failed to set active status", err)
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer active status set", slog.Int64("customerID", cust.ID), slog.Bool("active", cust.Active))
	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(cust))
}

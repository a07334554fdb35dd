package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"customer-service/internal/event"
	"customer-service/internal/infrastructure/monitoring"
	"customer-service/internal/pkg/apperrors"
)

const (
	resourceName     = "Customer"
	customerNotFound = "Customer not found by repository"

	operationCreated     = "created"
	operationUpdated     = "updated"
	operationDeleted     = "deleted"
	operationActivated   = "activated"
	operationDeactivated = "deactivated"
)

type CustomerService interface {
	CreateCustomer(ctx context.Context, data any) (*Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
	ListCustomers(ctx context.Context, name string) ([]*Customer, error)
	UpdateCustomer(ctx context.Context, customerID int64, data any) (*Customer, error)
	DeleteCustomer(ctx context.Context, customerID int64) error
	SetActiveStatus(ctx context.Context, customerID int64, active bool) (*Customer, error)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   Repository
	pub    event.EventPublisher
	logger *slog.Logger
}

func NewCustomerService(repo Repository, eventPublisher event.EventPublisher, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	if eventPublisher == nil {
		logger.Warn("Warning: No event publisher provided to NewCustomerService, events will be dropped")
		eventPublisher = event.NoopPublisher{}
	}

	return &customerService{
		repo:   repo,
		pub:    eventPublisher,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func NewCustomerEventPayload(cust *Customer) event.CustomerEventPayload {
	if cust == nil {
		return event.CustomerEventPayload{}
	}
	return event.CustomerEventPayload{
		CustomerID:  cust.ID,
		Name:        cust.Name,
		Address:     cust.Address,
		PhoneNumber: cust.PhoneNumber,
		Email:       cust.Email,
		Active:      cust.Active,
		CreatedAt:   cust.CreatedAt,
		UpdatedAt:   cust.UpdatedAt,
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, data any) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to create new customer")

	customer, err := Deserialize(data)
	if err != nil {
		s.logger.WarnContext(ctx, "Validation failed for new customer", slog.Any("error", err))
		return nil, err
	}
	customer.ID = 0

	logCtx := s.logger.With(slog.String("name", customer.Name))
	logCtx.DebugContext(ctx, "Calling repository Create")
	if err := s.repo.Create(ctx, customer); err != nil {
		logCtx.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	logCtx = logCtx.With(slog.Int64("customerID", customer.ID))
	monitoring.RecordCustomerOperation(operationCreated)
	if pubErr := s.pub.PublishCustomerCreated(ctx, event.NewCustomerCreatedEvent(NewCustomerEventPayload(customer))); pubErr != nil {
		logCtx.ErrorContext(ctx, "Customer created, but FAILED to publish creation event", slog.Any("error", pubErr))
	}

	logCtx.InfoContext(ctx, "Successfully created new customer")
	return customer, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	logCtx := s.logger.With(slog.Int64("customerID", customerID))
	logCtx.InfoContext(ctx, "Attempting to get customer by ID")

	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFound)
			return nil, apperrors.NewNotFoundError(resourceName, customerID)
		}
		logCtx.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	logCtx.InfoContext(ctx, "Successfully retrieved customer")
	return customer, nil
}

func (s *customerService) ListCustomers(ctx context.Context, name string) ([]*Customer, error) {
	logCtx := s.logger.With(slog.String("nameFilter", name))
	logCtx.InfoContext(ctx, "Attempting to list customers")

	customers, err := s.repo.FindAll(ctx, name)
	if err != nil {
		logCtx.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	if customers == nil {
		customers = []*Customer{}
	}

	logCtx.InfoContext(ctx, "Successfully retrieved customers", slog.Int("count", len(customers)))
	return customers, nil
}

// UpdateCustomer replaces every field of an existing customer. The id always comes from customerID and the
// deserialized payload resets active to true.
func (s *customerService) UpdateCustomer(ctx context.Context, customerID int64, data any) (*Customer, error) {
	logCtx := s.logger.With(slog.Int64("customerID", customerID))
	logCtx.InfoContext(ctx, "Attempting to update customer")

	existing, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, "Customer not found by repository for update")
			return nil, apperrors.NewNotFoundError(resourceName, customerID)
		}
		logCtx.ErrorContext(ctx, "Repository error finding customer for update", slog.Any("error", err))
		return nil, fmt.Errorf("cannot find customer %d to update: %w", customerID, err)
	}

	customer, err := Deserialize(data)
	if err != nil {
		logCtx.WarnContext(ctx, "Validation failed for customer update", slog.Any("error", err))
		return nil, err
	}
	customer.ID = customerID
	customer.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, customer); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, "Customer disappeared before update completed")
			return nil, apperrors.NewNotFoundError(resourceName, customerID)
		}
		logCtx.ErrorContext(ctx, "Repository failed to save updated customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save updated customer %d: %w", customerID, err)
	}

	monitoring.RecordCustomerOperation(operationUpdated)
	s.publishCustomerUpdated(ctx, customer)

	logCtx.InfoContext(ctx, "Successfully updated customer")
	return customer, nil
}

// DeleteCustomer removes the customer. Deleting an unknown id is not an error.
func (s *customerService) DeleteCustomer(ctx context.Context, customerID int64) error {
	logCtx := s.logger.With(slog.Int64("customerID", customerID))
	logCtx.InfoContext(ctx, "Attempting to delete customer")

	removed, err := s.repo.Delete(ctx, customerID)
	if err != nil {
		logCtx.ErrorContext(ctx, "Repository error deleting customer", slog.Any("error", err))
		return fmt.Errorf("failed to delete customer %d: %w", customerID, err)
	}
	if !removed {
		logCtx.InfoContext(ctx, "Customer did not exist, nothing to delete")
		return nil
	}

	monitoring.RecordCustomerOperation(operationDeleted)
	if pubErr := s.pub.PublishCustomerDeleted(ctx, event.NewCustomerDeletedEvent(customerID)); pubErr != nil {
		logCtx.ErrorContext(ctx, "Customer deleted, but FAILED to publish deletion event", slog.Any("error", pubErr))
	}

	logCtx.InfoContext(ctx, "Successfully deleted customer")
	return nil
}

func (s *customerService) SetActiveStatus(ctx context.Context, customerID int64, active bool) (*Customer, error) {
	logCtx := s.logger.With(slog.Int64("customerID", customerID), slog.Bool("isActive", active))
	logCtx.InfoContext(ctx, "Attempting to set customer active status")

	customer, err := s.repo.SetActiveStatus(ctx, customerID, active)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFound)
			return nil, apperrors.NewNotFoundError(resourceName, customerID)
		}
		logCtx.ErrorContext(ctx, "Repository error setting active status", slog.Any("error", err))
		return nil, fmt.Errorf("failed to set active status for customer %d: %w", customerID, err)
	}

	operation := operationDeactivated
	if active {
		operation = operationActivated
	}
	monitoring.RecordCustomerOperation(operation)
	s.publishCustomerUpdated(ctx, customer)

	logCtx.InfoContext(ctx, "Successfully set customer active status")
	return customer, nil
}

func (s *customerService) publishCustomerUpdated(ctx context.Context, customer *Customer) {
	if err := s.pub.PublishCustomerUpdated(ctx, event.NewCustomerUpdatedEvent(NewCustomerEventPayload(customer))); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish customer update event", slog.Int64("customerID", customer.ID), slog.Any("error", err))
	}
}

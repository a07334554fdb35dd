package customer_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"customer-service/internal/domain/customer"
	"customer-service/internal/event"
	"customer-service/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishCustomerCreated(ctx context.Context, evt event.CustomerCreatedEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishCustomerUpdated(ctx context.Context, evt event.CustomerUpdatedEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishCustomerDeleted(ctx context.Context, evt event.CustomerDeletedEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func setupTest(t *testing.T) (*customer.MockCustomerRepository, *MockEventPublisher, customer.CustomerService) {
	mockRepo := customer.NewMockCustomerRepository(t)
	mockPub := new(MockEventPublisher)
	t.Cleanup(func() { mockPub.AssertExpectations(t) })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := customer.NewCustomerService(mockRepo, mockPub, logger)
	return mockRepo, mockPub, service
}

func validPayload() map[string]any {
	return map[string]any{
		"name":         "  Jane Doe ",
		"address":      " 1 Main St ",
		"phone_number": "555-0100",
		"email":        "jane@example.com",
		"credit_card":  "4111111111111111",
	}
}

func TestCustomerService_CreateCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo, mockPub, service := setupTest(t)
		payload := validPayload()
		payload["id"] = float64(999)
		payload["active"] = false

		mockRepo.On("Create", ctx, mock.MatchedBy(func(c *customer.Customer) bool {
			match := c.ID == 0 && c.Name == "Jane Doe" && c.Address == "1 Main St" && c.Active
			if match {
				c.ID = 1
				c.CreatedAt = time.Now()
				c.UpdatedAt = c.CreatedAt
			}
			return match
		})).Return(nil).Once()
		mockPub.On("PublishCustomerCreated", ctx, mock.MatchedBy(func(evt event.CustomerCreatedEvent) bool {
			return evt.Payload.CustomerID == 1 && evt.Payload.Email == "jane@example.com" && evt.EventID != ""
		})).Return(nil).Once()

		created, err := service.CreateCustomer(ctx, payload)

		require.NoError(t, err)
		assert.Equal(t, int64(1), created.ID)
		assert.Equal(t, "Jane Doe", created.Name)
		assert.Equal(t, "4111111111111111", created.CreditCard)
		assert.True(t, created.Active)
	})

	t.Run("Error - Missing Field", func(t *testing.T) {
		mockRepo, _, service := setupTest(t)
		payload := validPayload()
		delete(payload, "email")

		created, err := service.CreateCustomer(ctx, payload)

		assert.Nil(t, created)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		var ve *apperrors.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "Invalid Customer: missing email", ve.Message)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Error - Repository Failure", func(t *testing.T) {
		mockRepo, mockPub, service := setupTest(t)
		dbError := errors.New("database connection failed")
		mockRepo.On("Create", ctx, mock.AnythingOfType("*customer.Customer")).Return(dbError).Once()

		created, err := service.CreateCustomer(ctx, validPayload())

		assert.Nil(t, created)
		assert.ErrorIs(t, err, dbError)
		assert.Contains(t, err.Error(), "failed to save new customer")
		mockPub.AssertNotCalled(t, "PublishCustomerCreated", mock.Anything, mock.Anything)
	})

	t.Run("Success - Publish Failure Is Ignored", func(t *testing.T) {
		mockRepo, mockPub, service := setupTest(t)
		mockRepo.On("Create", ctx, mock.AnythingOfType("*customer.Customer")).Return(nil).Once()
		mockPub.On("PublishCustomerCreated", ctx, mock.Anything).Return(errors.New("broker down")).Once()

		created, err := service.CreateCustomer(ctx, validPayload())

		assert.NoError(t, err)
		assert.NotNil(t, created)
	})
}

func TestCustomerService_GetCustomer(t *testing.T) {
	ctx := context.Background()
	customerID := int64(42)

	t.Run("Success", func(t *testing.T) {
		mockRepo, _, service := setupTest(t)
		expected := &customer.Customer{ID: customerID, Name: "Test", Active: true}
		mockRepo.On("FindByID", ctx, customerID).Return(expected, nil).Once()

		cust, err := service.GetCustomer(ctx, customerID)

		assert.NoError(t, err)
		assert.Equal(t, expected, cust)
	})

	t.Run("Error - Not Found", func(t *testing.T) {
		mockRepo, _, service := setupTest(t)
		mockRepo.On("FindByID", ctx, customerID).Return(nil, apperrors.ErrNotFound).Once()

		cust, err := service.GetCustomer(ctx, customerID)

		assert.Nil(t, cust)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.EqualError(t, err, "Customer with id '42' was not found.")
	})

	t.Run("Error - Repository Failure", func(t *testing.T) {
		mockRepo, _, service := setupTest(t)
		dbError := errors.New("internal server error")
		mockRepo.On("FindByID", ctx, customerID).Return(nil, dbError).Once()

		cust, err := service.GetCustomer(ctx, customerID)

		assert.Nil(t, cust)
		assert.ErrorIs(t, err, dbError)
		assert.Contains(t, err.Error(), fmt.Sprintf("failed to get customer %d", customerID))
	})
}

func TestCustomerService_ListCustomers(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - All", func(t *testing.T) {
		mockRepo, _, service := setupTest(t)
		expected := []*customer.Customer{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob"}}
		mockRepo.On("FindAll", ctx, "").Return(expected, nil).Once()

		customers, err := service.ListCustomers(ctx, "")

		assert.NoError(t, err)
		assert.Equal(t, expected, customers)
	})

	t.Run("Success - Filter Passed Through", func(t *testing.T) {
		mockRepo, _, service := setupTest(t)
		expected := []*customer.Customer{{ID: 2, Name: "Bob"}}
		mockRepo.On("FindAll", ctx, "Bob").Return(expected, nil).Once()

		customers, err := service.ListCustomers(ctx, "Bob")

		assert.NoError(t, err)
		assert.Equal(t, expected, customers)
	})

	t.Run("Success - Nil Becomes Empty", func(t *testing.T) {
		mockRepo, _, service := setupTest(t)
		mockRepo.On("FindAll", ctx, "nobody").Return(nil, nil).Once()

		customers, err := service.ListCustomers(ctx, "nobody")

		assert.NoError(t, err)
		assert.NotNil(t, customers)
		assert.Empty(t, customers)
	})

	t.Run("Error - Repository Failure", func(t *testing.T) {
		mockRepo, _, service := setupTest(t)
		dbError := errors.New("query failed")
		mockRepo.On("FindAll", ctx, "").Return(nil, dbError).Once()

		customers, err := service.ListCustomers(ctx, "")

		assert.Nil(t, customers)
		assert.ErrorIs(t, err, dbError)
		assert.Contains(t, err.Error(), "failed to list customers")
	})
}

func TestCustomerService_UpdateCustomer(t *testing.T) {
	ctx := context.Background()
	customerID := int64(55)
	createdAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("Success - Path ID Wins And Active Resets", func(t *testing.T) {
		mockRepo, mockPub, service := setupTest(t)
		existing := &customer.Customer{ID: customerID, Name: "Old", Active: false, CreatedAt: createdAt}
		payload := validPayload()
		payload["id"] = float64(7)
		payload["active"] = false

		mockRepo.On("FindByID", ctx, customerID).Return(existing, nil).Once()
		mockRepo.On("Update", ctx, mock.MatchedBy(func(c *customer.Customer) bool {
			return c.ID == customerID && c.Name == "Jane Doe" && c.Active && c.CreatedAt.Equal(createdAt)
		})).Return(nil).Once()
		mockPub.On("PublishCustomerUpdated", ctx, mock.MatchedBy(func(evt event.CustomerUpdatedEvent) bool {
			return evt.Payload.CustomerID == customerID && evt.Payload.Active
		})).Return(nil).Once()

		updated, err := service.UpdateCustomer(ctx, customerID, payload)

		require.NoError(t, err)
		assert.Equal(t, customerID, updated.ID)
		assert.True(t, updated.Active)
	})

	t.Run("Error - Not Found Before Validation", func(t *testing.T) {
		mockRepo, _, service := setupTest(t)
		mockRepo.On("FindByID", ctx, customerID).Return(nil, apperrors.ErrNotFound).Once()

		updated, err := service.UpdateCustomer(ctx, customerID, "not an object")

		assert.Nil(t, updated)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.NotErrorIs(t, err, apperrors.ErrValidation)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Error - Validation", func(t *testing.T) {
		mockRepo, _, service := setupTest(t)
		mockRepo.On("FindByID", ctx, customerID).Return(&customer.Customer{ID: customerID}, nil).Once()
		payload := validPayload()
		payload["address"] = "   "

		updated, err := service.UpdateCustomer(ctx, customerID, payload)

		assert.Nil(t, updated)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Error - Row Vanished During Update", func(t *testing.T) {
		mockRepo, _, service := setupTest(t)
		mockRepo.On("FindByID", ctx, customerID).Return(&customer.Customer{ID: customerID}, nil).Once()
		mockRepo.On("Update", ctx, mock.Anything).Return(apperrors.ErrNotFound).Once()

		updated, err := service.UpdateCustomer(ctx, customerID, validPayload())

		assert.Nil(t, updated)
		var nf *apperrors.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, customerID, nf.ID)
	})

	t.Run("Error - FindByID Failure", func(t *testing.T) {
		mockRepo, _, service := setupTest(t)
		dbError := errors.New("find failed")
		mockRepo.On("FindByID", ctx, customerID).Return(nil, dbError).Once()

		updated, err := service.UpdateCustomer(ctx, customerID, validPayload())

		assert.Nil(t, updated)
		assert.ErrorIs(t, err, dbError)
		assert.Contains(t, err.Error(), "cannot find customer 55 to update")
	})
}

func TestCustomerService_DeleteCustomer(t *testing.T) {
	ctx := context.Background()
	customerID := int64(9)

	t.Run("Success - Publishes When Removed", func(t *testing.T) {
		mockRepo, mockPub, service := setupTest(t)
		mockRepo.On("Delete", ctx, customerID).Return(true, nil).Once()
		mockPub.On("PublishCustomerDeleted", ctx, mock.MatchedBy(func(evt event.CustomerDeletedEvent) bool {
			return evt.CustomerID == customerID
		})).Return(nil).Once()

		assert.NoError(t, service.DeleteCustomer(ctx, customerID))
	})

	t.Run("Success - Unknown ID Is Silent", func(t *testing.T) {
		mockRepo, mockPub, service := setupTest(t)
		mockRepo.On("Delete", ctx, customerID).Return(false, nil).Once()

		assert.NoError(t, service.DeleteCustomer(ctx, customerID))
		mockPub.AssertNotCalled(t, "PublishCustomerDeleted", mock.Anything, mock.Anything)
	})

	t.Run("Error - Repository Failure", func(t *testing.T) {
		mockRepo, _, service := setupTest(t)
		dbError := errors.New("delete failed")
		mockRepo.On("Delete", ctx, customerID).Return(false, dbError).Once()

		err := service.DeleteCustomer(ctx, customerID)

		assert.ErrorIs(t, err, dbError)
	})
}

func TestCustomerService_SetActiveStatus(t *testing.T) {
	ctx := context.Background()
	customerID := int64(3)

	for _, active := range []bool{true, false} {
		t.Run(fmt.Sprintf("Success - active=%t", active), func(t *testing.T) {
			mockRepo, mockPub, service := setupTest(t)
			stored := &customer.Customer{ID: customerID, Name: "Toggle", Active: active}
			mockRepo.On("SetActiveStatus", ctx, customerID, active).Return(stored, nil).Once()
			mockPub.On("PublishCustomerUpdated", ctx, mock.MatchedBy(func(evt event.CustomerUpdatedEvent) bool {
				return evt.Payload.Active == active
			})).Return(nil).Once()

			cust, err := service.SetActiveStatus(ctx, customerID, active)

			require.NoError(t, err)
			assert.Equal(t, active, cust.Active)
		})
	}

	t.Run("Error - Not Found", func(t *testing.T) {
		mockRepo, _, service := setupTest(t)
		mockRepo.On("SetActiveStatus", ctx, customerID, false).Return(nil, apperrors.ErrNotFound).Once()

		cust, err := service.SetActiveStatus(ctx, customerID, false)

		assert.Nil(t, cust)
		assert.EqualError(t, err, "Customer with id '3' was not found.")
	})

	t.Run("Error - Repository Failure", func(t *testing.T) {
		mockRepo, _, service := setupTest(t)
		dbError := errors.New("update failed")
		mockRepo.On("SetActiveStatus", ctx, customerID, true).Return(nil, dbError).Once()

		cust, err := service.SetActiveStatus(ctx, customerID, true)

		assert.Nil(t, cust)
		assert.ErrorIs(t, err, dbError)
	})
}

func TestNewCustomerService_NilDependencies(t *testing.T) {
	assert.Panics(t, func() { customer.NewCustomerService(nil, nil, nil) })
	assert.NotPanics(t, func() {
		customer.NewCustomerService(new(customer.MockCustomerRepository), nil, nil)
	})
}

// Package memory provides an in-process customer store used by the memory database driver and by
// end-to-end router tests.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"
)

// CustomerRepository keeps customers in insertion order. All access goes through mu so that
// id assignment and insert happen atomically.
type CustomerRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   []*customer.Customer
	index  map[int64]int
	logger *slog.Logger
}

var _ customer.Repository = (*CustomerRepository)(nil)

func NewCustomerRepository(logger *slog.Logger) *CustomerRepository {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to memory.NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		nextID: 1,
		index:  make(map[int64]int),
		logger: logger.With("component", "MemoryCustomerRepository"),
	}
}

func clone(c *customer.Customer) *customer.Customer {
	cp := *c
	return &cp
}

func (r *CustomerRepository) Create(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	cust.ID = r.nextID
	cust.CreatedAt = now
	cust.UpdatedAt = now
	r.nextID++

	r.index[cust.ID] = len(r.rows)
	r.rows = append(r.rows, clone(cust))

	r.logger.DebugContext(ctx, "Customer inserted", slog.Int64("customerID", cust.ID))
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	pos, ok := r.index[customerID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return clone(r.rows[pos]), nil
}

func (r *CustomerRepository) FindAll(ctx context.Context, name string) ([]*customer.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	customers := make([]*customer.Customer, 0, len(r.rows))
	for _, row := range r.rows {
		if name != "" && row.Name != name {
			continue
		}
		customers = append(customers, clone(row))
	}
	return customers, nil
}

func (r *CustomerRepository) Update(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pos, ok := r.index[cust.ID]
	if !ok {
		return apperrors.ErrNotFound
	}

	cust.CreatedAt = r.rows[pos].CreatedAt
	cust.UpdatedAt = time.Now().UTC()
	r.rows[pos] = clone(cust)

	r.logger.DebugContext(ctx, "Customer updated", slog.Int64("customerID", cust.ID))
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, customerID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pos, ok := r.index[customerID]
	if !ok {
		return false, nil
	}

	r.rows = append(r.rows[:pos], r.rows[pos+1:]...)
	delete(r.index, customerID)
	for i := pos; i < len(r.rows); i++ {
		r.index[r.rows[i].ID] = i
	}

	r.logger.DebugContext(ctx, "Customer deleted", slog.Int64("customerID", customerID))
	return true, nil
}

func (r *CustomerRepository) SetActiveStatus(ctx context.Context, customerID int64, isActive bool) (*customer.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pos, ok := r.index[customerID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	r.rows[pos].SetActive(isActive)
	return clone(r.rows[pos]), nil
}

func (r *CustomerRepository) Count(ctx context.Context) (active int64, inactive int64, err error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, row := range r.rows {
		if row.Active {
			active++
		} else {
			inactive++
		}
	}
	return active, inactive, nil
}

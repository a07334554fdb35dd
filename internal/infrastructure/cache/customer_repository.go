// Package cache holds a Redis read-through cache for customers by id.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"customer-service/internal/domain/customer"
)

// cachedCustomer carries the bookkeeping timestamps that customer.Customer hides from JSON.
type cachedCustomer struct {
	customer.Customer
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CustomerRepository decorates another customer.Repository. Lookups by id are served from the
// store when possible and every write refreshes or evicts the affected key. Store failures are
// logged and never surface to callers.
type CustomerRepository struct {
	next   customer.Repository
	store  Store
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

var _ customer.Repository = (*CustomerRepository)(nil)

func NewCustomerRepository(next customer.Repository, store Store, ttl time.Duration, prefix string, logger *slog.Logger) *CustomerRepository {
	if next == nil || store == nil {
		panic("cache.NewCustomerRepository requires a repository and a store")
	}
	return &CustomerRepository{
		next:   next,
		store:  store,
		ttl:    ttl,
		prefix: prefix,
		logger: logger.With("component", "CachedCustomerRepository"),
	}
}

func (r *CustomerRepository) key(customerID int64) string {
	return r.prefix + strconv.FormatInt(customerID, 10)
}

func decode(data []byte) (*customer.Customer, error) {
	var cached cachedCustomer
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	cust := cached.Customer
	cust.CreatedAt = cached.CreatedAt
	cust.UpdatedAt = cached.UpdatedAt
	return &cust, nil
}

func (r *CustomerRepository) put(ctx context.Context, cust *customer.Customer) {
	data, err := json.Marshal(cachedCustomer{Customer: *cust, CreatedAt: cust.CreatedAt, UpdatedAt: cust.UpdatedAt})
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to encode customer for cache", slog.Int64("customerID", cust.ID), slog.Any("error", err))
		return
	}
	if err := r.store.Set(ctx, r.key(cust.ID), data, r.ttl); err != nil {
		r.logger.WarnContext(ctx, "Failed to cache customer", slog.Int64("customerID", cust.ID), slog.Any("error", err))
	}
}

func (r *CustomerRepository) evict(ctx context.Context, customerID int64) {
	if err := r.store.Delete(ctx, r.key(customerID)); err != nil {
		r.logger.WarnContext(ctx, "Failed to evict cached customer", slog.Int64("customerID", customerID), slog.Any("error", err))
	}
}

func (r *CustomerRepository) Create(ctx context.Context, cust *customer.Customer) error {
	if err := r.next.Create(ctx, cust); err != nil {
		return err
	}
	r.put(ctx, cust)
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	data, err := r.store.Get(ctx, r.key(customerID))
	switch {
	case err == nil:
		cust, decodeErr := decode(data)
		if decodeErr == nil {
			r.logger.DebugContext(ctx, "Customer served from cache", slog.Int64("customerID", customerID))
			return cust, nil
		}
		r.logger.WarnContext(ctx, "Discarding undecodable cache entry", slog.Int64("customerID", customerID), slog.Any("error", decodeErr))
		r.evict(ctx, customerID)
	case !errors.Is(err, ErrMiss):
		r.logger.WarnContext(ctx, "Cache lookup failed, falling back to store", slog.Int64("customerID", customerID), slog.Any("error", err))
	}

	cust, err := r.next.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	r.put(ctx, cust)
	return cust, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context, name string) ([]*customer.Customer, error) {
	return r.next.FindAll(ctx, name)
}

func (r *CustomerRepository) Update(ctx context.Context, cust *customer.Customer) error {
	if err := r.next.Update(ctx, cust); err != nil {
		r.evict(ctx, cust.ID)
		return err
	}
	r.put(ctx, cust)
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, customerID int64) (bool, error) {
	removed, err := r.next.Delete(ctx, customerID)
	r.evict(ctx, customerID)
	return removed, err
}

func (r *CustomerRepository) SetActiveStatus(ctx context.Context, customerID int64, isActive bool) (*customer.Customer, error) {
	cust, err := r.next.SetActiveStatus(ctx, customerID, isActive)
	if err != nil {
		r.evict(ctx, customerID)
		return nil, err
	}
	r.put(ctx, cust)
	return cust, nil
}

func (r *CustomerRepository) Count(ctx context.Context) (int64, int64, error) {
	return r.next.Count(ctx)
}

package customer

import (
	"context"
)

// Repository is the storage capability set for customers. Implementations return apperrors.ErrNotFound
// for unknown ids.
type Repository interface {
	Create(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	// FindAll returns customers in insertion order. An empty name returns every customer,
	// otherwise only exact name matches.
	FindAll(ctx context.Context, name string) ([]*Customer, error)

	Update(ctx context.Context, customer *Customer) error

	// Delete reports whether a row was removed.
	Delete(ctx context.Context, customerID int64) (bool, error)

	SetActiveStatus(ctx context.Context, customerID int64, isActive bool) (*Customer, error)

	Count(ctx context.Context) (active int64, inactive int64, err error)
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"customer-service/internal/domain/customer"
	"customer-service/internal/infrastructure/monitoring"
	"customer-service/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const customerColumns = `id, name, address, phone_number, email, credit_card, active, created_at, updated_at`

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.Repository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {

		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var cust customer.Customer
	err := row.Scan(
		&cust.ID,
		&cust.Name,
		&cust.Address,
		&cust.PhoneNumber,
		&cust.Email,
		&cust.CreditCard,
		&cust.Active,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cust, nil
}

func (r *CustomerRepository) Create(ctx context.Context, cust *customer.Customer) (err error) {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	start := time.Now()
	defer func() { monitoring.ObserveDBQuery("create_customer", start, err) }()

	r.logger.InfoContext(ctx, "Attempting to insert new customer", slog.String("name", cust.Name))

	query := `
        INSERT INTO customers (name, address, phone_number, email, credit_card, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	err = r.db.QueryRow(ctx, query,
		cust.Name,
		cust.Address,
		cust.PhoneNumber,
		cust.Email,
		cust.CreditCard,
		cust.Active,
	).Scan(
		&cust.ID,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)

	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrInvalidArgument) {
			r.logger.WarnContext(ctx, "Customer rejected by table constraints", slog.Any("error", err))
			return translatedErr
		}
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to insert customer: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Customer inserted successfully", slog.Int64("customerID", cust.ID))
	return nil
}

func (r *CustomerRepository) Update(ctx context.Context, cust *customer.Customer) (err error) {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	start := time.Now()
	defer func() { monitoring.ObserveDBQuery("update_customer", start, err) }()

	logCtx := r.logger.With(slog.Int64("customerID", cust.ID))
	logCtx.InfoContext(ctx, "Attempting to update customer")

	query := `
        UPDATE customers
        SET name = $1,
            address = $2,
            phone_number = $3,
            email = $4,
            credit_card = $5,
            active = $6,
            updated_at = NOW()
        WHERE id = $7
        RETURNING created_at, updated_at`

	err = r.db.QueryRow(ctx, query,
		cust.Name,
		cust.Address,
		cust.PhoneNumber,
		cust.Email,
		cust.CreditCard,
		cust.Active,
		cust.ID,
	).Scan(&cust.CreatedAt, &cust.UpdatedAt)

	if err != nil {
		translatedErr := translateDBError(err, logCtx)
		switch {
		case errors.Is(translatedErr, apperrors.ErrNotFound):
			logCtx.WarnContext(ctx, "Update affected zero rows, customer likely not found")
			return apperrors.ErrNotFound
		case errors.Is(translatedErr, apperrors.ErrInvalidArgument):
			logCtx.WarnContext(ctx, "Customer update rejected by table constraints", slog.Any("error", err))
			return translatedErr
		}
		logCtx.ErrorContext(ctx, "Failed to update customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to update customer: %w", apperrors.ErrDatabase, err)
	}

	logCtx.InfoContext(ctx, "Customer updated successfully")
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (cust *customer.Customer, err error) {
	start := time.Now()
	defer func() { monitoring.ObserveDBQuery("find_customer_by_id", start, err) }()

	logCtx := r.logger.With(slog.Int64("customerID", customerID))
	logCtx.InfoContext(ctx, "Attempting to find customer by ID")

	query := `
        SELECT ` + customerColumns + `
        FROM customers
        WHERE id = $1`

	cust, err = scanCustomer(r.db.QueryRow(ctx, query, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logCtx.WarnContext(ctx, "Customer not found")
			return nil, apperrors.ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Failed to query/scan customer by ID", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get customer by ID: %w", apperrors.ErrDatabase, err)
	}

	logCtx.InfoContext(ctx, "Customer found successfully")
	return cust, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context, name string) (customers []*customer.Customer, err error) {
	start := time.Now()
	defer func() { monitoring.ObserveDBQuery("find_all_customers", start, err) }()

	r.logger.InfoContext(ctx, "Attempting to find all customers", slog.String("nameFilter", name))

	baseQuery := `
        SELECT ` + customerColumns + `
        FROM customers`
	args := []any{}
	query := baseQuery
	if name != "" {
		query += " WHERE name = $1"
		args = append(args, name)
	}
	query += " ORDER BY id ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {

		r.logger.ErrorContext(ctx, "Failed to query customers", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query customers: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	customers = make([]*customer.Customer, 0)
	for rows.Next() {
		cust, scanErr := scanCustomer(rows)
		if scanErr != nil {
			err = scanErr
			r.logger.ErrorContext(ctx, "Failed to scan customer row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan customer row: %w", apperrors.ErrDatabase, err)
		}
		customers = append(customers, cust)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating customer rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating customer rows: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Finished finding customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, customerID int64) (removed bool, err error) {
	start := time.Now()
	defer func() { monitoring.ObserveDBQuery("delete_customer", start, err) }()

	logCtx := r.logger.With(slog.Int64("customerID", customerID))
	logCtx.InfoContext(ctx, "Attempting to delete customer")

	query := `DELETE FROM customers WHERE id = $1`

	cmdTag, err := r.db.Exec(ctx, query, customerID)
	if err != nil {

		logCtx.ErrorContext(ctx, "Failed to execute delete customer", slog.Any("error", err))
		return false, fmt.Errorf("%w: failed to delete customer: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		logCtx.InfoContext(ctx, "Delete affected zero rows, customer did not exist")
		return false, nil
	}

	logCtx.InfoContext(ctx, "Customer deleted successfully")
	return true, nil
}

func (r *CustomerRepository) SetActiveStatus(ctx context.Context, customerID int64, isActive bool) (cust *customer.Customer, err error) {
	start := time.Now()
	defer func() { monitoring.ObserveDBQuery("set_customer_active", start, err) }()

	logCtx := r.logger.With(slog.Int64("customerID", customerID), slog.Bool("isActive", isActive))
	logCtx.InfoContext(ctx, "Attempting to set active status")

	query := `
        UPDATE customers SET active = $1, updated_at = NOW()
        WHERE id = $2
        RETURNING ` + customerColumns

	cust, err = scanCustomer(r.db.QueryRow(ctx, query, isActive, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logCtx.WarnContext(ctx, "Update active status affected zero rows, customer likely not found")
			return nil, apperrors.ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Failed to execute update active status", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to update active status: %w", apperrors.ErrDatabase, err)
	}

	logCtx.InfoContext(ctx, "Customer active status updated successfully")
	return cust, nil
}

func (r *CustomerRepository) Count(ctx context.Context) (active int64, inactive int64, err error) {
	start := time.Now()
	defer func() { monitoring.ObserveDBQuery("count_customers", start, err) }()

	query := `
        SELECT COUNT(*) FILTER (WHERE active), COUNT(*) FILTER (WHERE NOT active)
        FROM customers`

	if err = r.db.QueryRow(ctx, query).Scan(&active, &inactive); err != nil {
		r.logger.ErrorContext(ctx, "Failed to count customers", slog.Any("error", err))
		return 0, 0, fmt.Errorf("%w: failed to count customers: %w", apperrors.ErrDatabase, err)
	}

	r.logger.DebugContext(ctx, "Counted customers", slog.Int64("active", active), slog.Int64("inactive", inactive))
	return active, inactive, nil
}

package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"customer-service/internal/pkg/apperrors"
)

// createCustomersTable mirrors the column limits enforced by customer.Validate.
const createCustomersTable = `
        CREATE TABLE IF NOT EXISTS customers (
            id BIGSERIAL PRIMARY KEY,
            name VARCHAR(63) NOT NULL DEFAULT '',
            address VARCHAR(256) NOT NULL,
            phone_number VARCHAR(63) NOT NULL,
            email VARCHAR(63) NOT NULL,
            credit_card VARCHAR(63) NOT NULL,
            active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`

const createCustomersNameIndex = `CREATE INDEX IF NOT EXISTS idx_customers_name ON customers (name)`

// EnsureSchema creates the customers table and its name index when they do not exist yet.
func EnsureSchema(ctx context.Context, db DBPool, logger *slog.Logger) error {
	logger.Info("Ensuring customers schema exists")

	for _, stmt := range []string{createCustomersTable, createCustomersNameIndex} {
		if _, err := db.Exec(ctx, stmt); err != nil {
			logger.Error("Failed to initialise customers schema", "error", err)
			return apperrors.WrapDatabaseError(err, fmt.Sprintf("failed to initialise schema: %v", err))
		}
	}

	logger.Info("Customers schema ready")
	return nil
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/campushq/onboard/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository wires a repository backed by pgxpool. Create and
// AssignRole run against the caller-supplied Querier so they can join the
// row-local provisioning transaction.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

func (r *accountRepository) Create(ctx context.Context, q Querier, account domain.Account) (domain.Account, error) {
	_, err := q.Exec(
		ctx,
		`INSERT INTO accounts (id, tenant_id, email, password_hash, must_change_password, disabled, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		account.ID,
		account.TenantID,
		strings.ToLower(account.Email),
		account.PasswordHash,
		account.MustChangePassword,
		account.Disabled,
		account.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err, "accounts_tenant_email_key") {
			return domain.Account{}, ErrAccountEmailTaken
		}
		return domain.Account{}, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

func (r *accountRepository) AssignRole(ctx context.Context, q Querier, accountID uuid.UUID, role string) error {
	_, err := q.Exec(
		ctx,
		`INSERT INTO account_roles (account_id, role) VALUES ($1, $2)`,
		accountID,
		role,
	)
	if err != nil {
		return fmt.Errorf("failed to assign role %s: %w", role, err)
	}

	return nil
}

func (r *accountRepository) EmailExists(ctx context.Context, tenantID uuid.UUID, email string) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("account repository not initialized")
	}

	var exists bool
	err := r.pool.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE tenant_id = $1 AND email = $2)`,
		tenantID,
		strings.ToLower(email),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check account email: %w", err)
	}

	return exists, nil
}

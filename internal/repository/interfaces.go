package repository

import (
	"context"

	"github.com/campushq/onboard/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx satisfied by both *pgxpool.Pool and pgx.Tx.
// Provisioning methods take it explicitly so account, role, and profile
// inserts for one row can share a single transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UploadJobRepository defines the interface for upload job records.
type UploadJobRepository interface {
	Create(ctx context.Context, job domain.UploadJob) (domain.UploadJob, error)
	Finalize(ctx context.Context, id uuid.UUID, succeeded, failed int, status domain.JobStatus, errorSummary string) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (domain.UploadJob, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]domain.UploadJob, error)
}

// RowOutcomeRepository defines the interface for per-row audit records.
// Outcomes are append-only; there is no update path.
type RowOutcomeRepository interface {
	Append(ctx context.Context, outcome domain.RowOutcome) (domain.RowOutcome, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.RowOutcome, error)
}

// AccountRepository defines the interface for authentication accounts.
type AccountRepository interface {
	Create(ctx context.Context, q Querier, account domain.Account) (domain.Account, error)
	AssignRole(ctx context.Context, q Querier, accountID uuid.UUID, role string) error
	EmailExists(ctx context.Context, tenantID uuid.UUID, email string) (bool, error)
}

// StudentRepository defines the interface for student profiles.
type StudentRepository interface {
	Create(ctx context.Context, q Querier, student domain.Student) (domain.Student, error)
	RollNumberExists(ctx context.Context, tenantID uuid.UUID, rollNumber string) (bool, error)
}

// TrainerRepository defines the interface for trainer profiles.
type TrainerRepository interface {
	Create(ctx context.Context, q Querier, trainer domain.Trainer) (domain.Trainer, error)
	EmployeeIDExists(ctx context.Context, tenantID uuid.UUID, employeeID string) (bool, error)
}

package upload

import (
	"context"
	"fmt"

	"github.com/campushq/onboard/internal/domain"
	"github.com/campushq/onboard/internal/repository"
	"github.com/campushq/onboard/internal/roster"

	"github.com/google/uuid"
)

// DuplicateChecker rejects rows whose natural key already exists within the
// tenant. It reads current durable state, so within one sequentially processed
// job it also sees rows committed earlier in the same file.
type DuplicateChecker interface {
	Check(ctx context.Context, tenantID uuid.UUID, kind domain.MemberKind, row domain.MemberRow) error
}

type dbDuplicateChecker struct {
	accounts repository.AccountRepository
	students repository.StudentRepository
	trainers repository.TrainerRepository
}

// NewDuplicateChecker wires a checker over the tenant-scoped repositories.
func NewDuplicateChecker(
	accounts repository.AccountRepository,
	students repository.StudentRepository,
	trainers repository.TrainerRepository,
) DuplicateChecker {
	return &dbDuplicateChecker{accounts: accounts, students: students, trainers: trainers}
}

func (c *dbDuplicateChecker) Check(ctx context.Context, tenantID uuid.UUID, kind domain.MemberKind, row domain.MemberRow) error {
	email := row.Value(roster.ColEmail)
	taken, err := c.accounts.EmailExists(ctx, tenantID, email)
	if err != nil {
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if taken {
		return repository.ErrAccountEmailTaken
	}

	switch kind {
	case domain.MemberKindStudent:
		taken, err = c.students.RollNumberExists(ctx, tenantID, row.Value(roster.ColRollNumber))
		if err != nil {
			return fmt.Errorf("failed to check roll number uniqueness: %w", err)
		}
		if taken {
			return repository.ErrRollNumberTaken
		}
	case domain.MemberKindTrainer:
		taken, err = c.trainers.EmployeeIDExists(ctx, tenantID, row.Value(roster.ColEmployeeID))
		if err != nil {
			return fmt.Errorf("failed to check employee id uniqueness: %w", err)
		}
		if taken {
			return repository.ErrEmployeeIDTaken
		}
	}

	return nil
}

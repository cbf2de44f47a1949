package provision

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/campushq/onboard/internal/domain"
	"github.com/campushq/onboard/internal/notify"
	"github.com/campushq/onboard/internal/repository"
	"github.com/campushq/onboard/internal/roster"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// DefaultNotifyTimeout bounds the best-effort welcome dispatch so a slow
// notification channel cannot stall row throughput.
const DefaultNotifyTimeout = 2 * time.Second

// TxRunner runs a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(pgx.Tx) error) error
}

// Result describes a successfully provisioned row.
type Result struct {
	AccountID    uuid.UUID
	TempPassword string
}

// Service materializes one accepted roster row into a usable account: the
// authentication account, its role, and the domain profile are created inside
// a single transaction; the welcome notification is dispatched afterwards and
// never fails the row.
type Service struct {
	tx            TxRunner
	accounts      repository.AccountRepository
	students      repository.StudentRepository
	trainers      repository.TrainerRepository
	notifier      notify.Notifier
	notifyTimeout time.Duration
	logger        zerolog.Logger
}

// NewService creates a new provisioning service.
func NewService(
	tx TxRunner,
	accounts repository.AccountRepository,
	students repository.StudentRepository,
	trainers repository.TrainerRepository,
	notifier notify.Notifier,
	logger zerolog.Logger,
) *Service {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Service{
		tx:            tx,
		accounts:      accounts,
		students:      students,
		trainers:      trainers,
		notifier:      notifier,
		notifyTimeout: DefaultNotifyTimeout,
		logger:        logger,
	}
}

// Provision runs the ordered creation sequence for one validated row. When it
// returns an error nothing was persisted for the row.
func (s *Service) Provision(ctx context.Context, tenantID uuid.UUID, kind domain.MemberKind, row domain.MemberRow) (Result, error) {
	password, err := GenerateTempPassword()
	if err != nil {
		return Result{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Result{}, fmt.Errorf("failed to hash temporary password: %w", err)
	}

	account := domain.NewAccount(tenantID, row.Value(roster.ColEmail), string(hash))

	err = s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.accounts.Create(ctx, tx, account); err != nil {
			return err
		}
		if err := s.accounts.AssignRole(ctx, tx, account.ID, kind.Role()); err != nil {
			return err
		}

		switch kind {
		case domain.MemberKindStudent:
			_, err := s.students.Create(ctx, tx, studentFromRow(tenantID, account.ID, row))
			return err
		case domain.MemberKindTrainer:
			_, err := s.trainers.Create(ctx, tx, trainerFromRow(tenantID, account.ID, row))
			return err
		default:
			return fmt.Errorf("unsupported member kind %q", kind)
		}
	})
	if err != nil {
		return Result{}, err
	}

	s.sendWelcome(ctx, account, kind, row, password)

	return Result{AccountID: account.ID, TempPassword: password}, nil
}

func (s *Service) sendWelcome(ctx context.Context, account domain.Account, kind domain.MemberKind, row domain.MemberRow, password string) {
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	msg := notify.WelcomeMessage{
		TenantID:          account.TenantID,
		AccountID:         account.ID,
		Email:             account.Email,
		FullName:          row.Value(roster.ColFullName),
		Role:              kind.Role(),
		TemporaryPassword: password,
	}
	if err := s.notifier.SendWelcome(notifyCtx, msg); err != nil {
		s.logger.Warn().
			Err(err).
			Str("email", account.Email).
			Stringer("account_id", account.ID).
			Msg("welcome notification failed")
	}
}

func studentFromRow(tenantID, accountID uuid.UUID, row domain.MemberRow) domain.Student {
	// year_of_study was range-checked by the row validator.
	year, _ := strconv.Atoi(row.Value(roster.ColYearOfStudy))
	return domain.Student{
		ID:          uuid.New(),
		TenantID:    tenantID,
		AccountID:   accountID,
		FullName:    row.Value(roster.ColFullName),
		RollNumber:  row.Value(roster.ColRollNumber),
		Department:  row.Value(roster.ColDepartment),
		YearOfStudy: year,
		Phone:       row.Value(roster.ColPhone),
		CreatedAt:   time.Now(),
	}
}

func trainerFromRow(tenantID, accountID uuid.UUID, row domain.MemberRow) domain.Trainer {
	return domain.Trainer{
		ID:             uuid.New(),
		TenantID:       tenantID,
		AccountID:      accountID,
		FullName:       row.Value(roster.ColFullName),
		EmployeeID:     row.Value(roster.ColEmployeeID),
		Specialization: row.Value(roster.ColSpecialization),
		Phone:          row.Value(roster.ColPhone),
		CreatedAt:      time.Now(),
	}
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/campushq/onboard/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type studentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository wires a student profile repository backed by pgxpool.
func NewStudentRepository(pool *pgxpool.Pool) StudentRepository {
	return &studentRepository{pool: pool}
}

func (r *studentRepository) Create(ctx context.Context, q Querier, student domain.Student) (domain.Student, error) {
	_, err := q.Exec(
		ctx,
		`INSERT INTO students (id, tenant_id, account_id, full_name, roll_number, department, year_of_study, phone, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		student.ID,
		student.TenantID,
		student.AccountID,
		student.FullName,
		strings.ToUpper(student.RollNumber),
		student.Department,
		student.YearOfStudy,
		nullableText(student.Phone),
		student.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err, "students_tenant_roll_number_key") {
			return domain.Student{}, ErrRollNumberTaken
		}
		return domain.Student{}, fmt.Errorf("failed to create student profile: %w", err)
	}

	return student, nil
}

func (r *studentRepository) RollNumberExists(ctx context.Context, tenantID uuid.UUID, rollNumber string) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("student repository not initialized")
	}

	var exists bool
	err := r.pool.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM students WHERE tenant_id = $1 AND roll_number = $2)`,
		tenantID,
		strings.ToUpper(rollNumber),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check roll number: %w", err)
	}

	return exists, nil
}

type trainerRepository struct {
	pool *pgxpool.Pool
}

// NewTrainerRepository wires a trainer profile repository backed by pgxpool.
func NewTrainerRepository(pool *pgxpool.Pool) TrainerRepository {
	return &trainerRepository{pool: pool}
}

func (r *trainerRepository) Create(ctx context.Context, q Querier, trainer domain.Trainer) (domain.Trainer, error) {
	_, err := q.Exec(
		ctx,
		`INSERT INTO trainers (id, tenant_id, account_id, full_name, employee_id, specialization, phone, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		trainer.ID,
		trainer.TenantID,
		trainer.AccountID,
		trainer.FullName,
		strings.ToUpper(trainer.EmployeeID),
		trainer.Specialization,
		nullableText(trainer.Phone),
		trainer.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err, "trainers_tenant_employee_id_key") {
			return domain.Trainer{}, ErrEmployeeIDTaken
		}
		return domain.Trainer{}, fmt.Errorf("failed to create trainer profile: %w", err)
	}

	return trainer, nil
}

func (r *trainerRepository) EmployeeIDExists(ctx context.Context, tenantID uuid.UUID, employeeID string) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("trainer repository not initialized")
	}

	var exists bool
	err := r.pool.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM trainers WHERE tenant_id = $1 AND employee_id = $2)`,
		tenantID,
		strings.ToUpper(employeeID),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check employee id: %w", err)
	}

	return exists, nil
}

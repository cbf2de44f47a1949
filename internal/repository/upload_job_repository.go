package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/campushq/onboard/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type uploadJobRepository struct {
	pool *pgxpool.Pool
}

// NewUploadJobRepository wires a repository backed by pgxpool.
func NewUploadJobRepository(pool *pgxpool.Pool) UploadJobRepository {
	return &uploadJobRepository{pool: pool}
}

const uploadJobColumns = `id, tenant_id, created_by, member_kind, file_name,
	total_rows, succeeded_rows, failed_rows, status, error_summary, created_at, completed_at`

func (r *uploadJobRepository) Create(ctx context.Context, job domain.UploadJob) (domain.UploadJob, error) {
	if r.pool == nil {
		return domain.UploadJob{}, fmt.Errorf("upload job repository not initialized")
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO upload_jobs (id, tenant_id, created_by, member_kind, file_name,
			total_rows, succeeded_rows, failed_rows, status, error_summary, created_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		job.ID,
		job.TenantID,
		job.CreatedBy,
		string(job.MemberKind),
		job.FileName,
		job.TotalRows,
		job.SucceededRows,
		job.FailedRows,
		string(job.Status),
		nullableText(job.ErrorSummary),
		job.CreatedAt,
		job.CompletedAt,
	)
	if err != nil {
		return domain.UploadJob{}, fmt.Errorf("failed to create upload job: %w", err)
	}

	return job, nil
}

func (r *uploadJobRepository) Finalize(ctx context.Context, id uuid.UUID, succeeded, failed int, status domain.JobStatus, errorSummary string) error {
	if r.pool == nil {
		return fmt.Errorf("upload job repository not initialized")
	}

	tag, err := r.pool.Exec(
		ctx,
		`UPDATE upload_jobs
		 SET succeeded_rows = $2, failed_rows = $3, status = $4, error_summary = $5, completed_at = now()
		 WHERE id = $1`,
		id,
		succeeded,
		failed,
		string(status),
		nullableText(errorSummary),
	)
	if err != nil {
		return fmt.Errorf("failed to finalize upload job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrJobNotFound
	}

	return nil
}

func (r *uploadJobRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (domain.UploadJob, error) {
	if r.pool == nil {
		return domain.UploadJob{}, fmt.Errorf("upload job repository not initialized")
	}

	row := r.pool.QueryRow(
		ctx,
		`SELECT `+uploadJobColumns+`
		 FROM upload_jobs
		 WHERE tenant_id = $1 AND id = $2`,
		tenantID,
		id,
	)

	job, err := scanUploadJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UploadJob{}, ErrJobNotFound
		}
		return domain.UploadJob{}, fmt.Errorf("failed to get upload job: %w", err)
	}

	return job, nil
}

func (r *uploadJobRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]domain.UploadJob, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("upload job repository not initialized")
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT `+uploadJobColumns+`
		 FROM upload_jobs
		 WHERE tenant_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		tenantID,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list upload jobs: %w", err)
	}
	defer rows.Close()

	jobs := []domain.UploadJob{}
	for rows.Next() {
		job, scanErr := scanUploadJob(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan upload job: %w", scanErr)
		}
		jobs = append(jobs, job)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate upload jobs: %w", rowsErr)
	}

	return jobs, nil
}

func scanUploadJob(row pgx.Row) (domain.UploadJob, error) {
	var (
		job          domain.UploadJob
		memberKind   string
		status       string
		errorSummary pgtype.Text
		completedAt  pgtype.Timestamptz
	)

	if err := row.Scan(
		&job.ID,
		&job.TenantID,
		&job.CreatedBy,
		&memberKind,
		&job.FileName,
		&job.TotalRows,
		&job.SucceededRows,
		&job.FailedRows,
		&status,
		&errorSummary,
		&job.CreatedAt,
		&completedAt,
	); err != nil {
		return domain.UploadJob{}, err
	}

	job.MemberKind = domain.MemberKind(memberKind)
	job.Status = domain.JobStatus(status)
	if errorSummary.Valid {
		job.ErrorSummary = errorSummary.String
	}
	if completedAt.Valid {
		completed := completedAt.Time
		job.CompletedAt = &completed
	}

	return job, nil
}

func nullableText(value string) any {
	if value == "" {
		return nil
	}
	return value
}

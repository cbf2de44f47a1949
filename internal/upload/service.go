package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/campushq/onboard/internal/domain"
	"github.com/campushq/onboard/internal/provision"
	"github.com/campushq/onboard/internal/repository"
	"github.com/campushq/onboard/internal/roster"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Provisioner materializes one accepted row into an account with a profile.
type Provisioner interface {
	Provision(ctx context.Context, tenantID uuid.UUID, kind domain.MemberKind, row domain.MemberRow) (provision.Result, error)
}

// Request describes one submitted roster upload.
type Request struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Kind     domain.MemberKind
	FileName string
	Data     io.Reader
}

// RowFailure is the caller-facing record of one failed row: the row number and
// original values are enough to correct and resubmit just the failed subset.
type RowFailure struct {
	RowNumber int               `json:"rowNumber"`
	Message   string            `json:"message"`
	Values    map[string]string `json:"values"`
}

// IssuedCredential carries the generated temporary password for a provisioned
// row back to the submitting administrator. Only the hash is stored.
type IssuedCredential struct {
	RowNumber         int    `json:"rowNumber"`
	Email             string `json:"email"`
	TemporaryPassword string `json:"temporaryPassword"`
}

// Result is the summary returned after a job finishes.
type Result struct {
	Job         domain.UploadJob   `json:"job"`
	Failures    []RowFailure       `json:"failures"`
	Credentials []IssuedCredential `json:"credentials"`
}

// JobDetail is a job with its full row outcome trail.
type JobDetail struct {
	Job      domain.UploadJob    `json:"job"`
	Outcomes []domain.RowOutcome `json:"outcomes"`
}

// Service orchestrates one upload job: it parses the roster, drives every row
// through validation, duplicate checking, and provisioning, records exactly one
// outcome per row, and finalizes the job record. Rows are processed
// sequentially in file order so duplicate detection for row K observes rows
// 1..K-1 of the same file.
type Service struct {
	jobs        repository.UploadJobRepository
	outcomes    repository.RowOutcomeRepository
	dupes       DuplicateChecker
	provisioner Provisioner
	logger      zerolog.Logger
}

// NewService creates a new upload orchestration service.
func NewService(
	jobs repository.UploadJobRepository,
	outcomes repository.RowOutcomeRepository,
	dupes DuplicateChecker,
	provisioner Provisioner,
	logger zerolog.Logger,
) *Service {
	return &Service{
		jobs:        jobs,
		outcomes:    outcomes,
		dupes:       dupes,
		provisioner: provisioner,
		logger:      logger,
	}
}

// Run processes a whole upload synchronously and returns its summary. A
// header or decode problem fails the job before any row is processed; row
// problems never abort the loop. The returned error is reserved for
// infrastructure failures: the job record or a row outcome could not be
// written.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	if req.TenantID == uuid.Nil {
		return Result{}, errors.New("tenant id is required")
	}
	if req.UserID == uuid.Nil {
		return Result{}, errors.New("user id is required")
	}
	if req.Data == nil {
		return Result{}, errors.New("data reader is required")
	}

	payload, err := io.ReadAll(req.Data)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read upload: %w", err)
	}

	ros, parseErr := roster.Parse(req.FileName, payload, req.Kind)
	if parseErr != nil {
		job := domain.NewUploadJob(req.TenantID, req.UserID, req.Kind, req.FileName, 0)
		job.Status = domain.JobStatusParseFailed
		job.ErrorSummary = parseErr.Error()
		now := time.Now()
		job.CompletedAt = &now

		if _, createErr := s.jobs.Create(ctx, job); createErr != nil {
			return Result{}, createErr
		}

		s.logger.Warn().
			Stringer("job_id", job.ID).
			Str("file", req.FileName).
			Err(parseErr).
			Msg("upload rejected before row processing")

		return Result{Job: job, Failures: []RowFailure{}, Credentials: []IssuedCredential{}}, nil
	}

	job := domain.NewUploadJob(req.TenantID, req.UserID, req.Kind, req.FileName, len(ros.Rows))
	if _, err := s.jobs.Create(ctx, job); err != nil {
		return Result{}, err
	}

	result := Result{Failures: []RowFailure{}, Credentials: []IssuedCredential{}}
	succeeded, failed := 0, 0
	canceled := false

	for _, row := range ros.Rows {
		if ctx.Err() != nil {
			canceled = true
			break
		}

		// The row in flight always runs to completion, even if the caller
		// goes away; cancellation is honored between rows.
		rowCtx := context.WithoutCancel(ctx)

		outcome, credential := s.processRow(rowCtx, job, row)
		if _, err := s.outcomes.Append(rowCtx, outcome); err != nil {
			// The tallies must stay derivable from the stored outcomes, so a
			// row whose outcome could not be persisted is never counted.
			s.logger.Error().
				Stringer("job_id", job.ID).
				Int("row", outcome.RowNumber).
				Err(err).
				Msg("failed to record row outcome")
			return Result{}, fmt.Errorf("failed to record outcome for row %d: %w", outcome.RowNumber, err)
		}

		if outcome.Status == domain.OutcomeStatusSuccess {
			succeeded++
			if credential != nil {
				result.Credentials = append(result.Credentials, *credential)
			}
		} else {
			failed++
			result.Failures = append(result.Failures, RowFailure{
				RowNumber: outcome.RowNumber,
				Message:   outcome.ErrorMessage,
				Values:    outcome.Fields,
			})
		}
	}

	summary := ""
	if canceled {
		summary = fmt.Sprintf("upload canceled after processing %d of %d rows", succeeded+failed, len(ros.Rows))
	}

	finalCtx := context.WithoutCancel(ctx)
	if err := s.jobs.Finalize(finalCtx, job.ID, succeeded, failed, domain.JobStatusCompleted, summary); err != nil {
		return Result{}, err
	}

	job.SucceededRows = succeeded
	job.FailedRows = failed
	job.Status = domain.JobStatusCompleted
	job.ErrorSummary = summary
	now := time.Now()
	job.CompletedAt = &now
	result.Job = job

	s.logger.Info().
		Stringer("job_id", job.ID).
		Str("file", req.FileName).
		Int("total", job.TotalRows).
		Int("succeeded", succeeded).
		Int("failed", failed).
		Bool("canceled", canceled).
		Msg("upload job completed")

	return result, nil
}

// processRow runs one row through validation, duplicate checking, and
// provisioning, and produces exactly one outcome. No path here may abort the
// enclosing loop.
func (s *Service) processRow(ctx context.Context, job domain.UploadJob, row roster.Row) (domain.RowOutcome, *IssuedCredential) {
	fields := row.Member.Snapshot()

	if row.Err != nil {
		return domain.NewFailedOutcome(job.ID, row.Member.Number, fields, row.Err.Error()), nil
	}

	if err := roster.ValidateRow(job.MemberKind, row.Member); err != nil {
		return domain.NewFailedOutcome(job.ID, row.Member.Number, fields, err.Error()), nil
	}

	if err := s.dupes.Check(ctx, job.TenantID, job.MemberKind, row.Member); err != nil {
		return domain.NewFailedOutcome(job.ID, row.Member.Number, fields, err.Error()), nil
	}

	res, err := s.provisioner.Provision(ctx, job.TenantID, job.MemberKind, row.Member)
	if err != nil {
		return domain.NewFailedOutcome(job.ID, row.Member.Number, fields, err.Error()), nil
	}

	outcome := domain.NewSuccessOutcome(job.ID, row.Member.Number, res.AccountID, fields)
	credential := &IssuedCredential{
		RowNumber:         row.Member.Number,
		Email:             row.Member.Value(roster.ColEmail),
		TemporaryPassword: res.TempPassword,
	}
	return outcome, credential
}

// History lists prior jobs for the tenant, most recent first.
func (s *Service) History(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]domain.UploadJob, error) {
	return s.jobs.ListByTenant(ctx, tenantID, limit, offset)
}

// Job fetches one job with its row outcomes.
func (s *Service) Job(ctx context.Context, tenantID, id uuid.UUID) (JobDetail, error) {
	job, err := s.jobs.GetByID(ctx, tenantID, id)
	if err != nil {
		return JobDetail{}, err
	}

	outcomes, err := s.outcomes.ListByJob(ctx, job.ID)
	if err != nil {
		return JobDetail{}, err
	}

	return JobDetail{Job: job, Outcomes: outcomes}, nil
}

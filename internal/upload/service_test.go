package upload

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/campushq/onboard/internal/domain"
	"github.com/campushq/onboard/internal/provision"
	"github.com/campushq/onboard/internal/repository"
	"github.com/campushq/onboard/internal/roster"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type stubJobRepo struct {
	created   []domain.UploadJob
	finalized bool
	succeeded int
	failed    int
	status    domain.JobStatus
	summary   string
}

func (s *stubJobRepo) Create(_ context.Context, job domain.UploadJob) (domain.UploadJob, error) {
	s.created = append(s.created, job)
	return job, nil
}

func (s *stubJobRepo) Finalize(_ context.Context, _ uuid.UUID, succeeded, failed int, status domain.JobStatus, summary string) error {
	s.finalized = true
	s.succeeded = succeeded
	s.failed = failed
	s.status = status
	s.summary = summary
	return nil
}

func (s *stubJobRepo) GetByID(_ context.Context, _, id uuid.UUID) (domain.UploadJob, error) {
	for _, job := range s.created {
		if job.ID == id {
			return job, nil
		}
	}
	return domain.UploadJob{}, repository.ErrJobNotFound
}

func (s *stubJobRepo) ListByTenant(_ context.Context, _ uuid.UUID, _, _ int) ([]domain.UploadJob, error) {
	return s.created, nil
}

type stubOutcomeRepo struct {
	outcomes  []domain.RowOutcome
	failOnRow int
	appendErr error
}

func (s *stubOutcomeRepo) Append(_ context.Context, outcome domain.RowOutcome) (domain.RowOutcome, error) {
	if s.appendErr != nil && outcome.RowNumber == s.failOnRow {
		return domain.RowOutcome{}, s.appendErr
	}
	s.outcomes = append(s.outcomes, outcome)
	return outcome, nil
}

func (s *stubOutcomeRepo) ListByJob(_ context.Context, _ uuid.UUID) ([]domain.RowOutcome, error) {
	return s.outcomes, nil
}

// stubDirectory plays both the duplicate checker and the provisioner over one
// shared in-memory state, mirroring how both read the same durable store.
type stubDirectory struct {
	emails       map[string]bool
	rollNumbers  map[string]bool
	provisionErr error
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{
		emails:      map[string]bool{},
		rollNumbers: map[string]bool{},
	}
}

func (s *stubDirectory) Check(_ context.Context, _ uuid.UUID, kind domain.MemberKind, row domain.MemberRow) error {
	if s.emails[strings.ToLower(row.Value(roster.ColEmail))] {
		return errors.New("an account with this email already exists")
	}
	if kind == domain.MemberKindStudent && s.rollNumbers[row.Value(roster.ColRollNumber)] {
		return errors.New("a student with this roll number already exists")
	}
	return nil
}

func (s *stubDirectory) Provision(_ context.Context, _ uuid.UUID, _ domain.MemberKind, row domain.MemberRow) (provision.Result, error) {
	if s.provisionErr != nil {
		return provision.Result{}, s.provisionErr
	}
	s.emails[strings.ToLower(row.Value(roster.ColEmail))] = true
	s.rollNumbers[row.Value(roster.ColRollNumber)] = true
	return provision.Result{AccountID: uuid.New(), TempPassword: "Secret234pw"}, nil
}

func newTestService(jobs *stubJobRepo, outcomes *stubOutcomeRepo, dir *stubDirectory) *Service {
	return NewService(jobs, outcomes, dir, dir, zerolog.Nop())
}

const studentHeader = "full_name,email,roll_number,department,year_of_study,phone\n"

func studentRequest(data string) Request {
	return Request{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Kind:     domain.MemberKindStudent,
		FileName: "students.csv",
		Data:     strings.NewReader(data),
	}
}

func TestRunMixedBatch(t *testing.T) {
	jobs := &stubJobRepo{}
	outcomes := &stubOutcomeRepo{}
	dir := newStubDirectory()
	service := newTestService(jobs, outcomes, dir)

	// Row 3 has an invalid email, row 5 duplicates row 1's email.
	data := studentHeader +
		"Alice Kumar,alice@example.edu,CS101,CSE,2,9000000001\n" +
		"Bob Rao,bob@example.edu,CS102,CSE,2,9000000002\n" +
		"Carol Iyer,not-an-email,CS103,CSE,2,\n" +
		"Dan Shah,dan@example.edu,CS104,ECE,3,\n" +
		"Eve Alias,alice@example.edu,CS105,CSE,2,\n"

	result, err := service.Run(context.Background(), studentRequest(data))
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	job := result.Job
	if job.TotalRows != 5 || job.SucceededRows != 3 || job.FailedRows != 2 {
		t.Fatalf("unexpected counts: %+v", job)
	}
	if job.Status != domain.JobStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", job.Status)
	}
	if job.SucceededRows+job.FailedRows != job.TotalRows {
		t.Fatalf("count invariant violated: %+v", job)
	}

	if len(outcomes.outcomes) != 5 {
		t.Fatalf("expected 5 outcomes, got %d", len(outcomes.outcomes))
	}

	byRow := map[int]domain.RowOutcome{}
	for _, outcome := range outcomes.outcomes {
		if _, dup := byRow[outcome.RowNumber]; dup {
			t.Fatalf("row %d has more than one outcome", outcome.RowNumber)
		}
		byRow[outcome.RowNumber] = outcome
	}

	if byRow[3].Status != domain.OutcomeStatusFailed || !strings.Contains(byRow[3].ErrorMessage, "email") {
		t.Fatalf("expected row 3 to fail on email format, got %+v", byRow[3])
	}
	if byRow[5].Status != domain.OutcomeStatusFailed || !strings.Contains(byRow[5].ErrorMessage, "already exists") {
		t.Fatalf("expected row 5 to fail on conflict, got %+v", byRow[5])
	}
	if byRow[5].Fields[roster.ColEmail] != "alice@example.edu" {
		t.Fatalf("expected failed outcome to keep original values, got %+v", byRow[5].Fields)
	}

	for _, row := range []int{1, 2, 4} {
		if byRow[row].Status != domain.OutcomeStatusSuccess {
			t.Fatalf("expected row %d to succeed, got %+v", row, byRow[row])
		}
		if byRow[row].CreatedAccountID == nil {
			t.Fatalf("expected row %d to carry a created account id", row)
		}
	}

	if len(result.Credentials) != 3 {
		t.Fatalf("expected 3 issued credentials, got %d", len(result.Credentials))
	}
	if len(result.Failures) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(result.Failures))
	}
}

func TestRunHeaderMismatchFailsJobBeforeAnyRow(t *testing.T) {
	jobs := &stubJobRepo{}
	outcomes := &stubOutcomeRepo{}
	service := newTestService(jobs, outcomes, newStubDirectory())

	data := "full_name,email,department,year_of_study,phone\n" + // roll_number missing
		"Alice Kumar,alice@example.edu,CSE,2,\n"

	result, err := service.Run(context.Background(), studentRequest(data))
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if result.Job.Status != domain.JobStatusParseFailed {
		t.Fatalf("expected PARSE_FAILED, got %s", result.Job.Status)
	}
	if !strings.Contains(result.Job.ErrorSummary, "roll_number") {
		t.Fatalf("expected error summary to name the missing column, got %q", result.Job.ErrorSummary)
	}
	if len(outcomes.outcomes) != 0 {
		t.Fatalf("expected zero outcomes, got %d", len(outcomes.outcomes))
	}
	if jobs.finalized {
		t.Fatalf("parse-failed job must not go through finalize")
	}
}

func TestRunProvisioningFailureDoesNotAbortSiblings(t *testing.T) {
	jobs := &stubJobRepo{}
	outcomes := &stubOutcomeRepo{}
	dir := newStubDirectory()
	service := newTestService(jobs, outcomes, dir)

	// Fail provisioning for every row, then confirm each row still got its
	// own FAILED outcome and the job completed.
	dir.provisionErr = errors.New("store unavailable")

	data := studentHeader +
		"Alice Kumar,alice@example.edu,CS101,CSE,2,\n" +
		"Bob Rao,bob@example.edu,CS102,CSE,2,\n"

	result, err := service.Run(context.Background(), studentRequest(data))
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if result.Job.Status != domain.JobStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", result.Job.Status)
	}
	if result.Job.FailedRows != 2 || result.Job.SucceededRows != 0 {
		t.Fatalf("unexpected counts: %+v", result.Job)
	}
	if len(outcomes.outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes.outcomes))
	}
	for _, outcome := range outcomes.outcomes {
		if !strings.Contains(outcome.ErrorMessage, "store unavailable") {
			t.Fatalf("expected provisioning error message, got %q", outcome.ErrorMessage)
		}
	}
}

func TestRunIdempotentResubmission(t *testing.T) {
	dir := newStubDirectory()

	first := studentHeader +
		"Alice Kumar,alice@example.edu,CS101,CSE,2,\n" +
		"Carol Iyer,not-an-email,CS103,CSE,2,\n"

	service := newTestService(&stubJobRepo{}, &stubOutcomeRepo{}, dir)
	result, err := service.Run(context.Background(), studentRequest(first))
	if err != nil {
		t.Fatalf("first run returned error: %v", err)
	}
	if result.Job.SucceededRows != 1 || result.Job.FailedRows != 1 {
		t.Fatalf("unexpected first-run counts: %+v", result.Job)
	}

	// Corrected file: only the previously failed row, fixed. The previously
	// successful row is not duplicated because it is not resubmitted; if it
	// were, the duplicate checker would reject it.
	corrected := studentHeader + "Carol Iyer,carol@example.edu,CS103,CSE,2,\n"
	service = newTestService(&stubJobRepo{}, &stubOutcomeRepo{}, dir)
	result, err = service.Run(context.Background(), studentRequest(corrected))
	if err != nil {
		t.Fatalf("second run returned error: %v", err)
	}
	if result.Job.SucceededRows != 1 || result.Job.FailedRows != 0 {
		t.Fatalf("unexpected second-run counts: %+v", result.Job)
	}

	// Resubmitting the full original file only re-creates nothing: both rows
	// now conflict on their natural keys.
	full := studentHeader +
		"Alice Kumar,alice@example.edu,CS101,CSE,2,\n" +
		"Carol Iyer,carol@example.edu,CS103,CSE,2,\n"
	service = newTestService(&stubJobRepo{}, &stubOutcomeRepo{}, dir)
	result, err = service.Run(context.Background(), studentRequest(full))
	if err != nil {
		t.Fatalf("third run returned error: %v", err)
	}
	if result.Job.SucceededRows != 0 || result.Job.FailedRows != 2 {
		t.Fatalf("expected both rows to be rejected as duplicates: %+v", result.Job)
	}
}

func TestRunCancellationFinalizesWithAccumulatedCounts(t *testing.T) {
	jobs := &stubJobRepo{}
	outcomes := &stubOutcomeRepo{}
	service := newTestService(jobs, outcomes, newStubDirectory())

	data := studentHeader +
		"Alice Kumar,alice@example.edu,CS101,CSE,2,\n" +
		"Bob Rao,bob@example.edu,CS102,CSE,2,\n"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := service.Run(ctx, studentRequest(data))
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if result.Job.Status != domain.JobStatusCompleted {
		t.Fatalf("expected COMPLETED after cancellation, got %s", result.Job.Status)
	}
	if len(outcomes.outcomes) != 0 {
		t.Fatalf("expected no rows processed after pre-canceled context, got %d", len(outcomes.outcomes))
	}
	if !strings.Contains(result.Job.ErrorSummary, "canceled") {
		t.Fatalf("expected cancellation to be noted, got %q", result.Job.ErrorSummary)
	}
	if !jobs.finalized {
		t.Fatalf("canceled job must still be finalized")
	}
}

func TestRunOutcomeWriteFailureIsInfrastructureError(t *testing.T) {
	jobs := &stubJobRepo{}
	outcomes := &stubOutcomeRepo{failOnRow: 2, appendErr: errors.New("audit store down")}
	service := newTestService(jobs, outcomes, newStubDirectory())

	data := studentHeader +
		"Alice Kumar,alice@example.edu,CS101,CSE,2,\n" +
		"Bob Rao,bob@example.edu,CS102,CSE,2,\n" +
		"Carol Iyer,carol@example.edu,CS103,CSE,2,\n"

	_, err := service.Run(context.Background(), studentRequest(data))
	if err == nil {
		t.Fatal("expected an error when an outcome cannot be recorded")
	}
	if !strings.Contains(err.Error(), "row 2") {
		t.Fatalf("expected the error to name the failing row, got %v", err)
	}

	// Only the persisted outcome remains and no final counts were written, so
	// the stored tallies never drift from the outcome trail.
	if len(outcomes.outcomes) != 1 {
		t.Fatalf("expected 1 persisted outcome, got %d", len(outcomes.outcomes))
	}
	if jobs.finalized {
		t.Fatal("job must not be finalized after an outcome write failure")
	}
}

func TestRunMalformedQuotedLineIsRowLevel(t *testing.T) {
	jobs := &stubJobRepo{}
	outcomes := &stubOutcomeRepo{}
	service := newTestService(jobs, outcomes, newStubDirectory())

	data := studentHeader +
		"Alice Kumar,alice@example.edu,CS101,CSE,2,\n" +
		"Bob \"Rao,bob@example.edu,CS102,CSE,2,\n" +
		"Carol Iyer,carol@example.edu,CS103,CSE,2,\n"

	result, err := service.Run(context.Background(), studentRequest(data))
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if result.Job.Status != domain.JobStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", result.Job.Status)
	}
	if result.Job.SucceededRows != 2 || result.Job.FailedRows != 1 {
		t.Fatalf("unexpected counts: %+v", result.Job)
	}
	if len(result.Failures) != 1 || result.Failures[0].RowNumber != 2 {
		t.Fatalf("expected row 2 to carry the failure, got %+v", result.Failures)
	}
	if !strings.Contains(result.Failures[0].Message, "malformed line") {
		t.Fatalf("expected a malformed-line message, got %q", result.Failures[0].Message)
	}
}

func TestRunRowParseErrorIsRowLevel(t *testing.T) {
	jobs := &stubJobRepo{}
	outcomes := &stubOutcomeRepo{}
	service := newTestService(jobs, outcomes, newStubDirectory())

	data := studentHeader +
		"Alice Kumar,alice@example.edu,CS101,CSE,2,\n" +
		"Bob Rao,bob@example.edu,CS102,CSE,2,9000000002,stray-cell\n"

	result, err := service.Run(context.Background(), studentRequest(data))
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if result.Job.SucceededRows != 1 || result.Job.FailedRows != 1 {
		t.Fatalf("unexpected counts: %+v", result.Job)
	}
	if len(result.Failures) != 1 || !strings.Contains(result.Failures[0].Message, "extra cell") {
		t.Fatalf("expected a row-level extra-cell failure, got %+v", result.Failures)
	}
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of an upload job.
type JobStatus string

const (
	JobStatusProcessing  JobStatus = "PROCESSING"
	JobStatusCompleted   JobStatus = "COMPLETED"
	JobStatusParseFailed JobStatus = "PARSE_FAILED"
)

// Terminal reports whether the status is final.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusParseFailed
}

// UploadJob is the durable record of one roster upload attempt.
// Once the status is terminal, SucceededRows+FailedRows == TotalRows.
type UploadJob struct {
	ID            uuid.UUID  `json:"id"`
	TenantID      uuid.UUID  `json:"tenant_id"`
	CreatedBy     uuid.UUID  `json:"created_by"`
	MemberKind    MemberKind `json:"member_kind"`
	FileName      string     `json:"file_name"`
	TotalRows     int        `json:"total_rows"`
	SucceededRows int        `json:"succeeded_rows"`
	FailedRows    int        `json:"failed_rows"`
	Status        JobStatus  `json:"status"`
	ErrorSummary  string     `json:"error_summary,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// NewUploadJob creates a job in PROCESSING for the given roster file.
func NewUploadJob(tenantID, createdBy uuid.UUID, kind MemberKind, fileName string, totalRows int) UploadJob {
	return UploadJob{
		ID:         uuid.New(),
		TenantID:   tenantID,
		CreatedBy:  createdBy,
		MemberKind: kind,
		FileName:   fileName,
		TotalRows:  totalRows,
		Status:     JobStatusProcessing,
		CreatedAt:  time.Now(),
	}
}

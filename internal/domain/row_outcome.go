package domain

import (
	"time"

	"github.com/google/uuid"
)

// OutcomeStatus is the result of processing a single roster row.
type OutcomeStatus string

const (
	OutcomeStatusSuccess OutcomeStatus = "SUCCESS"
	OutcomeStatusFailed  OutcomeStatus = "FAILED"
)

// RowOutcome records the result of exactly one data row of an upload job.
// Outcomes are append-only; they are never updated after creation.
type RowOutcome struct {
	ID               uuid.UUID         `json:"id"`
	JobID            uuid.UUID         `json:"job_id"`
	RowNumber        int               `json:"row_number"`
	Status           OutcomeStatus     `json:"status"`
	CreatedAccountID *uuid.UUID        `json:"created_account_id,omitempty"`
	Fields           map[string]string `json:"fields"`
	ErrorMessage     string            `json:"error_message,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

// NewSuccessOutcome builds a SUCCESS outcome pointing at the created account.
func NewSuccessOutcome(jobID uuid.UUID, rowNumber int, accountID uuid.UUID, fields map[string]string) RowOutcome {
	return RowOutcome{
		ID:               uuid.New(),
		JobID:            jobID,
		RowNumber:        rowNumber,
		Status:           OutcomeStatusSuccess,
		CreatedAccountID: &accountID,
		Fields:           fields,
		CreatedAt:        time.Now(),
	}
}

// NewFailedOutcome builds a FAILED outcome carrying the original row values
// so the caller can correct and resubmit just the failed subset.
func NewFailedOutcome(jobID uuid.UUID, rowNumber int, fields map[string]string, message string) RowOutcome {
	return RowOutcome{
		ID:           uuid.New(),
		JobID:        jobID,
		RowNumber:    rowNumber,
		Status:       OutcomeStatusFailed,
		Fields:       fields,
		ErrorMessage: message,
		CreatedAt:    time.Now(),
	}
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/campushq/onboard/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type rowOutcomeRepository struct {
	pool *pgxpool.Pool
}

// NewRowOutcomeRepository wires a repository backed by pgxpool.
func NewRowOutcomeRepository(pool *pgxpool.Pool) RowOutcomeRepository {
	return &rowOutcomeRepository{pool: pool}
}

func (r *rowOutcomeRepository) Append(ctx context.Context, outcome domain.RowOutcome) (domain.RowOutcome, error) {
	if r.pool == nil {
		return domain.RowOutcome{}, fmt.Errorf("row outcome repository not initialized")
	}

	fieldsJSON, err := json.Marshal(outcome.Fields)
	if err != nil {
		return domain.RowOutcome{}, fmt.Errorf("failed to marshal row fields: %w", err)
	}

	_, err = r.pool.Exec(
		ctx,
		`INSERT INTO row_outcomes (id, job_id, row_number, status, created_account_id, fields, error_message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		outcome.ID,
		outcome.JobID,
		outcome.RowNumber,
		string(outcome.Status),
		outcome.CreatedAccountID,
		fieldsJSON,
		nullableText(outcome.ErrorMessage),
		outcome.CreatedAt,
	)
	if err != nil {
		return domain.RowOutcome{}, fmt.Errorf("failed to append row outcome: %w", err)
	}

	return outcome, nil
}

func (r *rowOutcomeRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.RowOutcome, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("row outcome repository not initialized")
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, job_id, row_number, status, created_account_id, fields, error_message, created_at
		 FROM row_outcomes
		 WHERE job_id = $1
		 ORDER BY row_number ASC`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list row outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []domain.RowOutcome{}
	for rows.Next() {
		var (
			outcome      domain.RowOutcome
			status       string
			accountID    pgtype.UUID
			fieldsJSON   []byte
			errorMessage pgtype.Text
		)
		if scanErr := rows.Scan(
			&outcome.ID,
			&outcome.JobID,
			&outcome.RowNumber,
			&status,
			&accountID,
			&fieldsJSON,
			&errorMessage,
			&outcome.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan row outcome: %w", scanErr)
		}

		outcome.Status = domain.OutcomeStatus(status)
		if accountID.Valid {
			id := uuid.UUID(accountID.Bytes)
			outcome.CreatedAccountID = &id
		}
		if errorMessage.Valid {
			outcome.ErrorMessage = errorMessage.String
		}
		if len(fieldsJSON) > 0 {
			if unmarshalErr := json.Unmarshal(fieldsJSON, &outcome.Fields); unmarshalErr != nil {
				return nil, fmt.Errorf("failed to unmarshal row fields: %w", unmarshalErr)
			}
		}

		outcomes = append(outcomes, outcome)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate row outcomes: %w", rowsErr)
	}

	return outcomes, nil
}

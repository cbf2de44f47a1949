package roster

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	"github.com/campushq/onboard/internal/domain"
)

// Year-of-study bounds accepted on student rows.
const (
	MinYearOfStudy = 1
	MaxYearOfStudy = 6
)

// FieldError describes a single invalid field on a row.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidationError aggregates every field failure of one row.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	messages := make([]string, len(e.Fields))
	for i, fieldErr := range e.Fields {
		messages[i] = fieldErr.Error()
	}
	return strings.Join(messages, "; ")
}

// ValidateRow applies per-field constraints to a single parsed row. It does no
// I/O and never consults other rows; uniqueness is the duplicate checker's job.
// A nil return means the row is accepted.
func ValidateRow(kind domain.MemberKind, row domain.MemberRow) error {
	verr := &ValidationError{}

	requireField(verr, row, ColFullName)
	if email := requireField(verr, row, ColEmail); email != "" {
		// The cell becomes the login identity verbatim, so display-name forms
		// like `Bob <bob@x.edu>` are rejected, not unwrapped.
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email || !strings.Contains(email, "@") {
			verr.Fields = append(verr.Fields, FieldError{Field: ColEmail, Reason: fmt.Sprintf("%q is not a valid email address", email)})
		}
	}

	switch kind {
	case domain.MemberKindStudent:
		requireField(verr, row, ColRollNumber)
		requireField(verr, row, ColDepartment)
		if raw := requireField(verr, row, ColYearOfStudy); raw != "" {
			year, err := strconv.Atoi(raw)
			if err != nil {
				verr.Fields = append(verr.Fields, FieldError{Field: ColYearOfStudy, Reason: fmt.Sprintf("%q is not a number", raw)})
			} else if year < MinYearOfStudy || year > MaxYearOfStudy {
				verr.Fields = append(verr.Fields, FieldError{
					Field:  ColYearOfStudy,
					Reason: fmt.Sprintf("%d is outside the allowed range %d-%d", year, MinYearOfStudy, MaxYearOfStudy),
				})
			}
		}
	case domain.MemberKindTrainer:
		requireField(verr, row, ColEmployeeID)
		requireField(verr, row, ColSpecialization)
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func requireField(verr *ValidationError, row domain.MemberRow, column string) string {
	value := row.Value(column)
	if value == "" {
		verr.Fields = append(verr.Fields, FieldError{Field: column, Reason: "is required"})
	}
	return value
}

package domain

import (
	"fmt"
	"strings"
)

// MemberKind selects which roster schema and profile type an upload targets.
type MemberKind string

const (
	MemberKindStudent MemberKind = "STUDENT"
	MemberKindTrainer MemberKind = "TRAINER"
)

// ParseMemberKind maps user input onto a MemberKind.
func ParseMemberKind(raw string) (MemberKind, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(MemberKindStudent), "STUDENTS":
		return MemberKindStudent, nil
	case string(MemberKindTrainer), "TRAINERS":
		return MemberKindTrainer, nil
	default:
		return "", fmt.Errorf("unknown member kind %q", raw)
	}
}

// MemberRow is one parsed data row of a roster file. Values is keyed by the
// normalized column name; Number is the 1-based data row number matching the
// source file (header excluded).
type MemberRow struct {
	Number int
	Values map[string]string
}

// Value returns the trimmed cell for a column, empty when absent.
func (r MemberRow) Value(column string) string {
	return strings.TrimSpace(r.Values[column])
}

// Snapshot copies the row values for durable storage, so the outcome record
// never aliases parser-owned state.
func (r MemberRow) Snapshot() map[string]string {
	snap := make(map[string]string, len(r.Values))
	for k, v := range r.Values {
		snap[k] = v
	}
	return snap
}

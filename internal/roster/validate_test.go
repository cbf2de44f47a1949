package roster

import (
	"testing"

	"github.com/campushq/onboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func studentRow(overrides map[string]string) domain.MemberRow {
	values := map[string]string{
		ColFullName:    "Alice Kumar",
		ColEmail:       "alice@example.edu",
		ColRollNumber:  "CS101",
		ColDepartment:  "CSE",
		ColYearOfStudy: "2",
		ColPhone:       "",
	}
	for k, v := range overrides {
		values[k] = v
	}
	return domain.MemberRow{Number: 1, Values: values}
}

func trainerRow(overrides map[string]string) domain.MemberRow {
	values := map[string]string{
		ColFullName:       "Ravi Menon",
		ColEmail:          "ravi@example.edu",
		ColEmployeeID:     "EMP01",
		ColSpecialization: "Networks",
		ColPhone:          "",
	}
	for k, v := range overrides {
		values[k] = v
	}
	return domain.MemberRow{Number: 1, Values: values}
}

func TestValidateRowAcceptsValidRows(t *testing.T) {
	assert.NoError(t, ValidateRow(domain.MemberKindStudent, studentRow(nil)))
	assert.NoError(t, ValidateRow(domain.MemberKindTrainer, trainerRow(nil)))
}

func TestValidateStudentRow(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
		wantField string
	}{
		{"missing full name", map[string]string{ColFullName: ""}, ColFullName},
		{"missing email", map[string]string{ColEmail: ""}, ColEmail},
		{"malformed email", map[string]string{ColEmail: "not-an-email"}, ColEmail},
		{"display-name email", map[string]string{ColEmail: "Bob <bob@example.edu>"}, ColEmail},
		{"missing roll number", map[string]string{ColRollNumber: ""}, ColRollNumber},
		{"missing department", map[string]string{ColDepartment: ""}, ColDepartment},
		{"year not a number", map[string]string{ColYearOfStudy: "second"}, ColYearOfStudy},
		{"year below range", map[string]string{ColYearOfStudy: "0"}, ColYearOfStudy},
		{"year above range", map[string]string{ColYearOfStudy: "7"}, ColYearOfStudy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRow(domain.MemberKindStudent, studentRow(tt.overrides))
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.wantField, verr.Fields[0].Field)
		})
	}
}

func TestValidateTrainerRow(t *testing.T) {
	err := ValidateRow(domain.MemberKindTrainer, trainerRow(map[string]string{
		ColEmployeeID:     "",
		ColSpecialization: "",
	}))
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
}

func TestValidateRowAggregatesAllFieldFailures(t *testing.T) {
	err := ValidateRow(domain.MemberKindStudent, studentRow(map[string]string{
		ColFullName: "",
		ColEmail:    "bad",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ColFullName)
	assert.Contains(t, err.Error(), ColEmail)
}

func TestValidateRowDoesNotBlockOnOptionalPhone(t *testing.T) {
	assert.NoError(t, ValidateRow(domain.MemberKindStudent, studentRow(map[string]string{ColPhone: ""})))
}

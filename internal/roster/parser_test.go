package roster

import (
	"bytes"
	"testing"

	"github.com/campushq/onboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStudentCSV(t *testing.T) {
	data := []byte("full_name,email,roll_number,department,year_of_study,phone\n" +
		"Alice Kumar,alice@example.edu,CS101,CSE,2,9000000001\n" +
		"Bob Rao,bob@example.edu,CS102,ECE,3,\n")

	ros, err := Parse("students.csv", data, domain.MemberKindStudent)
	require.NoError(t, err)

	require.Len(t, ros.Rows, 2)
	first := ros.Rows[0]
	require.NoError(t, first.Err)
	assert.Equal(t, 1, first.Member.Number)
	assert.Equal(t, "Alice Kumar", first.Member.Value(ColFullName))
	assert.Equal(t, "alice@example.edu", first.Member.Value(ColEmail))
	assert.Equal(t, "CS101", first.Member.Value(ColRollNumber))
	assert.Equal(t, "", ros.Rows[1].Member.Value(ColPhone))
}

func TestParseNormalizesHeaderLabels(t *testing.T) {
	data := []byte("Full Name,Email,Roll-Number,Department,Year.Of.Study,Phone\n" +
		"Alice Kumar,alice@example.edu,CS101,CSE,2,\n")

	ros, err := Parse("students.csv", data, domain.MemberKindStudent)
	require.NoError(t, err)
	assert.Equal(t, Columns(domain.MemberKindStudent), ros.Headers)
}

func TestParseStripsByteOrderMark(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF},
		[]byte("full_name,email,employee_id,specialization,phone\n"+
			"Ravi Menon,ravi@example.edu,EMP01,Networks,\n")...)

	ros, err := Parse("trainers.csv", data, domain.MemberKindTrainer)
	require.NoError(t, err)
	require.Len(t, ros.Rows, 1)
	assert.Equal(t, "Ravi Menon", ros.Rows[0].Member.Value(ColFullName))
}

func TestParseMissingColumnIsJobLevel(t *testing.T) {
	data := []byte("full_name,email,department,year_of_study,phone\n" +
		"Alice Kumar,alice@example.edu,CSE,2,\n")

	_, err := Parse("students.csv", data, domain.MemberKindStudent)
	require.Error(t, err)

	var headerErr *HeaderError
	require.ErrorAs(t, err, &headerErr)
	assert.Equal(t, []string{ColRollNumber}, headerErr.Missing)
}

func TestParseUnknownColumnIsJobLevel(t *testing.T) {
	data := []byte("full_name,email,roll_number,department,year_of_study,phone,shoe_size\n" +
		"Alice Kumar,alice@example.edu,CS101,CSE,2,,42\n")

	_, err := Parse("students.csv", data, domain.MemberKindStudent)
	var headerErr *HeaderError
	require.ErrorAs(t, err, &headerErr)
	assert.Equal(t, []string{"shoe_size"}, headerErr.Unknown)
}

func TestParseExtraCellIsRowLevel(t *testing.T) {
	data := []byte("full_name,email,roll_number,department,year_of_study,phone\n" +
		"Alice Kumar,alice@example.edu,CS101,CSE,2,,stray\n" +
		"Bob Rao,bob@example.edu,CS102,ECE,3,\n")

	ros, err := Parse("students.csv", data, domain.MemberKindStudent)
	require.NoError(t, err)
	require.Len(t, ros.Rows, 2)
	assert.Error(t, ros.Rows[0].Err)
	assert.NoError(t, ros.Rows[1].Err)
}

func TestParseBrokenQuotingIsRowLevel(t *testing.T) {
	data := []byte("full_name,email,roll_number,department,year_of_study,phone\n" +
		"Alice Kumar,alice@example.edu,CS101,CSE,2,\n" +
		"Bob \"Rao,bob@example.edu,CS102,ECE,3,\n" +
		"Carol Iyer,carol@example.edu,CS103,CSE,2,\n")

	ros, err := Parse("students.csv", data, domain.MemberKindStudent)
	require.NoError(t, err)
	require.Len(t, ros.Rows, 3)

	assert.NoError(t, ros.Rows[0].Err)
	require.Error(t, ros.Rows[1].Err)
	assert.Contains(t, ros.Rows[1].Err.Error(), "malformed line")
	assert.Equal(t, 2, ros.Rows[1].Member.Number)

	// The line after the broken one still parses.
	assert.NoError(t, ros.Rows[2].Err)
	assert.Equal(t, "Carol Iyer", ros.Rows[2].Member.Value(ColFullName))
}

func TestParseBrokenQuotingInHeaderIsJobLevel(t *testing.T) {
	data := []byte("full_name,\"email,roll_number,department,year_of_study,phone\n" +
		"Alice Kumar,alice@example.edu,CS101,CSE,2,\n")

	_, err := Parse("students.csv", data, domain.MemberKindStudent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header")
}

func TestParseSkipsBlankLinesKeepingRowNumbers(t *testing.T) {
	data := []byte("full_name,email,roll_number,department,year_of_study,phone\n" +
		"Alice Kumar,alice@example.edu,CS101,CSE,2,\n" +
		",,,,,\n" +
		"Bob Rao,bob@example.edu,CS102,ECE,3,\n")

	ros, err := Parse("students.csv", data, domain.MemberKindStudent)
	require.NoError(t, err)
	require.Len(t, ros.Rows, 2)
	assert.Equal(t, 1, ros.Rows[0].Member.Number)
	assert.Equal(t, 3, ros.Rows[1].Member.Number)
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := Parse("students.pdf", []byte("junk"), domain.MemberKindStudent)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseEmptyFile(t *testing.T) {
	_, err := Parse("students.csv", nil, domain.MemberKindStudent)
	require.Error(t, err)
}

func TestParseXLSXTemplateRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplateXLSX(&buf, domain.MemberKindTrainer))

	ros, err := Parse("template.xlsx", buf.Bytes(), domain.MemberKindTrainer)
	require.NoError(t, err)
	assert.Equal(t, Columns(domain.MemberKindTrainer), ros.Headers)
	assert.Empty(t, ros.Rows)
}
